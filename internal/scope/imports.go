// Package scope tracks which names are bound where, and decides how an
// inserted identifier must be printed so it can never be captured by a
// local binding or land in a module that was not imported.
package scope

import (
	"sort"

	"github.com/fernlang/flin/internal/ast"
)

// FuncIdent identifies a function or constructor by its defining module
// and short name. Operators use their symbol as the name.
type FuncIdent struct {
	Module string
	Name   string
}

func (f FuncIdent) String() string {
	if f.Module == "" {
		return f.Name
	}
	return f.Module + "." + f.Name
}

// moduleImport is the per-module import record: the alias under which the
// module is reachable and the set of names it exposes unqualified.
type moduleImport struct {
	module    string
	alias     string
	exposeAll bool
	exposed   map[string]struct{}
}

// ImportTable records every module reachable from the analyzed module,
// seeded with the implicit default imports and merged with the explicit
// ones. A later import of an already-imported module may widen what it
// exposes but never replaces an existing alias.
type ImportTable struct {
	byModule map[string]*moduleImport
	byAlias  map[string]string
}

// NewImportTable builds the table for one module's import list.
func NewImportTable(imports []ast.Import) *ImportTable {
	t := &ImportTable{
		byModule: make(map[string]*moduleImport),
		byAlias:  make(map[string]string),
	}
	for _, di := range defaultImports {
		mi := &moduleImport{
			module:    di.module,
			alias:     di.alias,
			exposeAll: di.exposeAll,
			exposed:   make(map[string]struct{}),
		}
		for _, n := range di.expose {
			mi.exposed[n] = struct{}{}
		}
		t.register(mi)
	}
	for _, imp := range imports {
		t.merge(imp)
	}
	return t
}

func (t *ImportTable) register(mi *moduleImport) {
	t.byModule[mi.module] = mi
	if mi.alias != "" {
		t.byAlias[mi.alias] = mi.module
	}
}

func (t *ImportTable) merge(imp ast.Import) {
	mi, seen := t.byModule[imp.Module]
	if !seen {
		mi = &moduleImport{module: imp.Module, exposed: make(map[string]struct{})}
		t.byModule[imp.Module] = mi
	}
	if imp.Alias != "" && mi.alias == "" {
		mi.alias = imp.Alias
		t.byAlias[imp.Alias] = imp.Module
	}
	if imp.Exposing != nil {
		if imp.Exposing.All {
			mi.exposeAll = true
		}
		for _, n := range imp.Exposing.Names {
			mi.exposed[n] = struct{}{}
		}
	}
}

// Imported reports whether the module is reachable at all.
func (t *ImportTable) Imported(module string) bool {
	_, ok := t.byModule[module]
	return ok
}

// ResolveModule maps a written qualifier (alias or module name) to the
// actual module it refers to.
func (t *ImportTable) ResolveModule(qualifier string) (string, bool) {
	if m, ok := t.byAlias[qualifier]; ok {
		return m, true
	}
	if _, ok := t.byModule[qualifier]; ok {
		return qualifier, true
	}
	return "", false
}

// Exposes reports whether the given module exposes name unqualified
// here. Expose-all imports count only for modules with a known member
// surface.
func (t *ImportTable) Exposes(module, name string) bool {
	mi, ok := t.byModule[module]
	if !ok {
		return false
	}
	if _, ok := mi.exposed[name]; ok {
		return true
	}
	if mi.exposeAll {
		for _, m := range knownMembers[module] {
			if m == name {
				return true
			}
		}
	}
	return false
}

// WhoExposes finds the unique module exposing a bare name. Ambiguous
// names resolve to nothing.
func (t *ImportTable) WhoExposes(name string) (string, bool) {
	var found []string
	for module := range t.byModule {
		if t.Exposes(module, name) {
			found = append(found, module)
		}
	}
	if len(found) != 1 {
		return "", false
	}
	return found[0], true
}

// Reference prints the qualified reference for a member of module:
// through the alias when one exists, else the module name itself.
func (t *ImportTable) Reference(module, name string) string {
	if mi, ok := t.byModule[module]; ok && mi.alias != "" {
		return mi.alias + "." + name
	}
	return module + "." + name
}

// Modules returns every imported module name, sorted.
func (t *ImportTable) Modules() []string {
	out := make([]string, 0, len(t.byModule))
	for m := range t.byModule {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Package project holds the cross-module knowledge the per-module
// analysis may consult: which union variants each module exposes and
// which record aliases it declares, plus whether the module belongs to
// the analyzed project or to an external dependency. The summary is
// built in a prior read-only pass and never mutated during analysis,
// which is what makes cross-module parallelism safe for hosts.
package project

import (
	"github.com/fernlang/flin/internal/ast"
)

// ModuleSummary is one module's contribution to the project summary.
type ModuleSummary struct {
	Name string

	// Local marks modules defined in the analyzed project itself. A
	// case over a locally defined type is never collapsed, so adding a
	// variant later cannot be silently hidden by an earlier fix.
	Local bool

	// UnionVariants maps a union type name to its variant names.
	UnionVariants map[string][]string

	// RecordAliases maps a record alias name to its field names in
	// declaration order.
	RecordAliases map[string][]string
}

// Summary is the immutable project-wide lookup table.
type Summary struct {
	modules map[string]*ModuleSummary
}

// New returns a summary seeded with the core language types that every
// project depends on. They count as external: collapsing a case over
// Bool or Order is always allowed.
func New() *Summary {
	s := &Summary{modules: make(map[string]*ModuleSummary)}
	s.Add(&ModuleSummary{
		Name: "Basics",
		UnionVariants: map[string][]string{
			"Bool":  {"True", "False"},
			"Order": {"LT", "EQ", "GT"},
		},
	})
	s.Add(&ModuleSummary{
		Name:          "Maybe",
		UnionVariants: map[string][]string{"Maybe": {"Just", "Nothing"}},
	})
	s.Add(&ModuleSummary{
		Name:          "Result",
		UnionVariants: map[string][]string{"Result": {"Ok", "Err"}},
	})
	return s
}

// Add registers a module summary, replacing any previous entry for the
// same module name.
func (s *Summary) Add(ms *ModuleSummary) {
	s.modules[ms.Name] = ms
}

// Module looks up one module's summary.
func (s *Summary) Module(name string) (*ModuleSummary, bool) {
	ms, ok := s.modules[name]
	return ms, ok
}

// HasType reports whether the summary knows a union type, given its
// defining module and type name.
func (s *Summary) HasType(module, typeName string) bool {
	ms, ok := s.modules[module]
	if !ok {
		return false
	}
	_, ok = ms.UnionVariants[typeName]
	return ok
}

// TypeOfVariant finds the union type a variant belongs to within one
// module.
func (s *Summary) TypeOfVariant(module, variant string) (typeName string, local bool, ok bool) {
	ms, found := s.modules[module]
	if !found {
		return "", false, false
	}
	for tn, variants := range ms.UnionVariants {
		for _, v := range variants {
			if v == variant {
				return tn, ms.Local, true
			}
		}
	}
	return "", false, false
}

// AliasFields returns the field list of a record alias.
func (s *Summary) AliasFields(module, alias string) ([]string, bool) {
	ms, ok := s.modules[module]
	if !ok {
		return nil, false
	}
	fields, ok := ms.RecordAliases[alias]
	return fields, ok
}

// Summarize extracts one parsed module's summary. Local marks it as
// belonging to the analyzed project.
func Summarize(mod *ast.Module, local bool) *ModuleSummary {
	ms := &ModuleSummary{
		Name:          mod.Name,
		Local:         local,
		UnionVariants: make(map[string][]string),
		RecordAliases: make(map[string][]string),
	}
	for _, d := range mod.Decls {
		switch decl := d.(type) {
		case *ast.UnionDecl:
			names := make([]string, 0, len(decl.Variants))
			for _, v := range decl.Variants {
				names = append(names, v.Name)
			}
			ms.UnionVariants[decl.Name] = names
		case *ast.AliasDecl:
			if decl.Fields != nil {
				ms.RecordAliases[decl.Name] = decl.Fields
			}
		}
	}
	return ms
}

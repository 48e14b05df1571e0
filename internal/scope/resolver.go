package scope

import (
	"github.com/fernlang/flin/internal/ast"
)

// Resolver combines the import table and the binding stack into the two
// operations the engine needs: resolving what a written identifier
// refers to, and printing a reference the engine wants to insert.
type Resolver struct {
	Imports  *ImportTable
	Bindings *Stack

	// TopLevel holds the names declared by the module under analysis.
	TopLevel map[string]struct{}
}

// NewResolver builds a resolver for one module.
func NewResolver(mod *ast.Module) *Resolver {
	top := make(map[string]struct{})
	for _, d := range mod.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok {
			top[fd.Name] = struct{}{}
		}
	}
	return &Resolver{
		Imports:  NewImportTable(mod.Imports),
		Bindings: NewStack(),
		TopLevel: top,
	}
}

// ResolveCall resolves the identifier in call position to the function
// it denotes. A bare name shadowed by a local binding or by a top-level
// declaration of this module resolves to nothing: the engine must never
// misfire on a lookalike local function.
func (r *Resolver) ResolveCall(id *ast.Ident) (FuncIdent, bool) {
	if id.Module != "" {
		module, ok := r.Imports.ResolveModule(id.Module)
		if !ok {
			return FuncIdent{}, false
		}
		return FuncIdent{Module: module, Name: id.Name}, true
	}
	if r.Bindings.Bound(id.Name) {
		return FuncIdent{}, false
	}
	if _, local := r.TopLevel[id.Name]; local {
		return FuncIdent{}, false
	}
	module, ok := r.Imports.WhoExposes(id.Name)
	if !ok {
		return FuncIdent{}, false
	}
	return FuncIdent{Module: module, Name: id.Name}, true
}

// Qualify prints a reference to fn valid at the engine's current
// position. The bare name is used only when the defining module exposes
// it here and nothing in scope shadows it; shadowing always wins over
// how the original source spelled the reference, because inserted text
// may land at a different scope. Qualification cannot fail: the worst
// case is an overly verbose but correct module-qualified reference.
func (r *Resolver) Qualify(fn FuncIdent) string {
	if fn.Module == "" {
		return fn.Name
	}
	if !r.Imports.Imported(fn.Module) {
		return fn.Module + "." + fn.Name
	}
	if r.shadowed(fn.Name) || !r.Imports.Exposes(fn.Module, fn.Name) {
		return r.Imports.Reference(fn.Module, fn.Name)
	}
	return fn.Name
}

func (r *Resolver) shadowed(name string) bool {
	if r.Bindings.Bound(name) {
		return true
	}
	_, local := r.TopLevel[name]
	return local
}

package checks

import (
	"sort"

	"github.com/fernlang/flin/internal/scope"
)

// Registry is the immutable rule table the walker consults. Build it
// once with NewRegistry and share it across modules and goroutines; it
// is only ever read after construction.
type Registry struct {
	calls  map[scope.FuncIdent][]CallCheck
	ops    map[string][]OpCheck
	comps  []CompCheck
	ifs    []IfCheck
	cases  []CaseCheck
	access []AccessCheck
}

// NewRegistry assembles the full rule set.
func NewRegistry() *Registry {
	return &Registry{
		calls:  callChecks(),
		ops:    opChecks(),
		comps:  compChecks(),
		ifs:    ifChecks(),
		cases:  caseChecks(),
		access: accessChecks(),
	}
}

// Rules lists every rule name the registry can emit, for config
// validation.
func (r *Registry) Rules() []string {
	// The names are static; enumerating the check functions would need
	// a probe run, so the list is maintained by hand next to the rules.
	names := []string{
		"always-application",
		"append-empty",
		"boolean-identity",
		"call-on-empty",
		"composition-identity",
		"condition-already-bool",
		"cons-to-literal",
		"constant-case",
		"constant-comparison",
		"constant-condition",
		"double-negation",
		"equal-branches",
		"field-of-constructor",
		"field-of-literal",
		"fold-absorbing",
		"fold-aggregate",
		"fold-over-to-list",
		"from-list-literal",
		"identity-application",
		"identity-map",
		"involution",
		"map-over-wrap",
		"unwrap-empty",
		"unwrap-wrap",
	}
	sort.Strings(names)
	return names
}

// KnownRule reports whether a rule name can ever be emitted.
func (r *Registry) KnownRule(name string) bool {
	for _, n := range r.Rules() {
		if n == name {
			return true
		}
	}
	return false
}

package checks

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernlang/flin/internal/types"
)

func TestRulesAreSortedAndKnown(t *testing.T) {
	reg := NewRegistry()
	rules := reg.Rules()
	require.NotEmpty(t, rules)
	assert.True(t, sort.StringsAreSorted(rules))

	for _, name := range rules {
		assert.True(t, reg.KnownRule(name), name)
	}
	assert.False(t, reg.KnownRule("no-such-rule"))
}

func TestEveryEmittedRuleIsListed(t *testing.T) {
	// Walk a source that trips a spread of rule families and make sure
	// each reported rule name is present in the public listing.
	src := `import List exposing (map, foldl)
import Set

a xs = map identity xs

b xs = foldl (&&) True xs

c = "x" == "y"

d x = not (not x)

e f x = List.foldl f x << Set.toList

g = { n = 1 }.n
`
	reg := NewRegistry()
	diags := analyze(t, src, types.Config{})
	require.NotEmpty(t, diags)
	for _, d := range diags {
		assert.True(t, reg.KnownRule(d.Rule), d.Rule)
	}
}

package nolint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fernlang/flin/internal/types"
)

func onLine(rule string, line int) types.Diagnostic {
	return types.Diagnostic{
		Rule:  rule,
		Range: types.Range{Start: types.Pos{Line: line}},
	}
}

func TestTrailingCommentSuppressesOwnLine(t *testing.T) {
	m := Parse(`process xs = map identity xs -- flin:ignore
other = "a" == "b"
`)
	assert.True(t, m.Suppressed(onLine("identity-map", 1)))
	assert.False(t, m.Suppressed(onLine("constant-comparison", 2)))
}

func TestOwnLineCommentGuardsNextLine(t *testing.T) {
	m := Parse(`-- flin:ignore
process xs = map identity xs
`)
	assert.True(t, m.Suppressed(onLine("identity-map", 2)))
	assert.False(t, m.Suppressed(onLine("identity-map", 1)))
	assert.False(t, m.Suppressed(onLine("identity-map", 3)))
}

func TestRuleListRestrictsSuppression(t *testing.T) {
	m := Parse(`v = f x -- flin:ignore identity-map, double-negation
`)
	assert.True(t, m.Suppressed(onLine("identity-map", 1)))
	assert.True(t, m.Suppressed(onLine("double-negation", 1)))
	assert.False(t, m.Suppressed(onLine("constant-comparison", 1)))
}

func TestOrdinaryCommentsDoNotSuppress(t *testing.T) {
	m := Parse(`v = f x -- explains the call
-- another note
w = g y
`)
	assert.False(t, m.Suppressed(onLine("identity-map", 1)))
	assert.False(t, m.Suppressed(onLine("identity-map", 3)))
}

func TestFilter(t *testing.T) {
	m := Parse(`a = f x -- flin:ignore identity-map
b = g y
`)
	diags := []types.Diagnostic{
		onLine("identity-map", 1),
		onLine("double-negation", 1),
		onLine("identity-map", 2),
	}
	kept := m.Filter(diags)
	assert.Len(t, kept, 2)
	assert.Equal(t, 1, kept[0].Range.Start.Line)
	assert.Equal(t, "double-negation", kept[0].Rule)
	assert.Equal(t, 2, kept[1].Range.Start.Line)
}

func TestFilterWithoutScopesIsIdentity(t *testing.T) {
	m := Parse("a = f x\n")
	diags := []types.Diagnostic{onLine("identity-map", 1)}
	assert.Equal(t, diags, m.Filter(diags))
}

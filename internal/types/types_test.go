package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func span(start, end int) Range {
	return Range{Start: Pos{Offset: start}, End: Pos{Offset: end}}
}

func TestRangePredicates(t *testing.T) {
	r := span(10, 20)

	assert.False(t, r.Empty())
	assert.True(t, span(10, 10).Empty())

	assert.True(t, r.Contains(span(12, 18)))
	assert.True(t, r.Contains(r), "a range contains itself")
	assert.False(t, r.Contains(span(5, 15)))

	assert.True(t, r.Overlaps(span(15, 25)))
	assert.True(t, r.Overlaps(span(19, 30)))
	assert.False(t, r.Overlaps(span(20, 30)), "touching ranges share no byte")
	assert.False(t, r.Overlaps(span(0, 10)))
}

func TestRangeCover(t *testing.T) {
	assert.Equal(t, span(5, 25), span(10, 20).Cover(span(5, 25)))
	assert.Equal(t, span(10, 25), span(10, 20).Cover(span(15, 25)))
	assert.Equal(t, span(10, 20), span(10, 20).Cover(span(12, 18)))
}

func TestDiagnosticFixable(t *testing.T) {
	assert.False(t, Diagnostic{Rule: "config"}.Fixable())
	d := Diagnostic{Rule: "identity-map", Edits: []TextEdit{{Range: span(0, 3)}}}
	assert.True(t, d.Fixable())
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "off", SeverityOff.String())
}

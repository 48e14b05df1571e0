package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernlang/flin/internal/parser"
	"github.com/fernlang/flin/internal/types"
)

func TestAnalyzeSource(t *testing.T) {
	e := NewEngine(nil, types.Config{})
	diags, err := e.AnalyzeSource("main.fern", `import List exposing (map)

process xs = map identity xs
`)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "identity-map", diags[0].Rule)
	assert.Equal(t, "main.fern", diags[0].Filename)
	assert.True(t, diags[0].Fixable())
}

func TestAnalyzeSourceParseError(t *testing.T) {
	e := NewEngine(nil, types.Config{})
	_, err := e.AnalyzeSource("broken.fern", "v = (1 + \n")
	assert.Error(t, err)
}

func TestIgnoreComments(t *testing.T) {
	e := NewEngine(nil, types.Config{})
	diags, err := e.AnalyzeSource("main.fern", `import List exposing (map)

process xs = map identity xs -- flin:ignore identity-map

other xs = map identity xs
`)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, 5, diags[0].Range.Start.Line)
}

func TestFixReachesFixedPoint(t *testing.T) {
	e := NewEngine(nil, types.Config{})
	src := `import List exposing (map)

run xs = identity (map identity xs)
`
	// The outer identity consumes the site on the first pass; a second
	// analysis of the patched text finds the inner one.
	for range [3]int{} {
		diags, err := e.AnalyzeSource("main.fern", src)
		require.NoError(t, err)
		if len(diags) == 0 {
			break
		}
		src = e.Fix(src, diags)
	}
	assert.Contains(t, src, "run xs = xs")

	diags, err := e.AnalyzeSource("main.fern", src)
	require.NoError(t, err)
	assert.Empty(t, diags, "the fixed text is clean")
}

func TestCrossModuleSummary(t *testing.T) {
	e := NewEngine(nil, types.Config{})

	shapes, err := parser.ParseModule(`module Shapes exposing (..)

type Shape = Circle | Square
`)
	require.NoError(t, err)
	e.Summarize(shapes)

	typeName, local, ok := e.Summary().TypeOfVariant("Shapes", "Circle")
	require.True(t, ok)
	assert.Equal(t, "Shape", typeName)
	assert.True(t, local)

	// A case over a union the project itself declares is never
	// collapsed, so adding a variant later cannot be hidden by a fix.
	mod := `module Use exposing (..)

import Shapes exposing (Circle, Square)

v = case Circle of
    Circle ->
        1

    Square ->
        2
`
	diags, err := e.AnalyzeSource("use.fern", mod)
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestValidateConfig(t *testing.T) {
	e := NewEngine(nil, types.Config{})
	assert.Nil(t, e.ValidateConfig(), "an empty configuration is valid")

	e = NewEngine(nil, types.Config{
		Rules: map[string]types.Severity{
			"identity-map": types.SeverityOff,
			"no-such-rule": types.SeverityError,
			"also-wrong":   types.SeverityWarning,
		},
		IgnoredCaseOfTypes: []string{"Basics.Bool", "Bare"},
	})
	d := e.ValidateConfig()
	require.NotNil(t, d)
	assert.Equal(t, "config", d.Rule)
	assert.False(t, d.Fixable())
	assert.Equal(t, []string{
		`ignored type "Bare" is not fully qualified (expected Module.Type)`,
		`unknown rule "also-wrong"`,
		`unknown rule "no-such-rule"`,
	}, d.Details)
}

func TestValidateConfigMatchesIgnoredTypesAgainstSummary(t *testing.T) {
	e := NewEngine(nil, types.Config{IgnoredCaseOfTypes: []string{"Shapes.Shape"}})

	d := e.ValidateConfig()
	require.NotNil(t, d)
	assert.Equal(t, []string{
		`ignored type "Shapes.Shape" does not match any known type`,
	}, d.Details)

	shapes, err := parser.ParseModule(`module Shapes exposing (..)

type Shape = Circle | Square
`)
	require.NoError(t, err)
	e.Summarize(shapes)
	assert.Nil(t, e.ValidateConfig(), "entry matches once the module is summarized")
}

func TestEngineIsReusableAcrossFiles(t *testing.T) {
	e := NewEngine(nil, types.Config{})
	for _, name := range []string{"a.fern", "b.fern"} {
		diags, err := e.AnalyzeSource(name, "v = \"a\" == \"b\"\n")
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, name, diags[0].Filename)
	}
}

package formatter

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernlang/flin/internal"
	"github.com/fernlang/flin/internal/types"
)

func init() {
	color.NoColor = true
}

func analyze(t *testing.T, src string) []types.Diagnostic {
	t.Helper()
	e := internal.NewEngine(nil, types.Config{})
	diags, err := e.AnalyzeSource("main.fern", src)
	require.NoError(t, err)
	return diags
}

func TestGenerate(t *testing.T) {
	src := `import List exposing (map)

process xs = map identity xs
`
	diags := analyze(t, src)
	require.Len(t, diags, 1)

	out := Generate(diags, map[string]*SourceCode{"main.fern": NewSourceCode(src)}, types.Config{})
	assert.Contains(t, out, "warning: identity-map")
	assert.Contains(t, out, "--> main.fern:3:14")
	assert.Contains(t, out, "process xs = map identity xs")
	assert.Contains(t, out, "~~~~~~~~~~~~~~~")
	assert.Contains(t, out, "Fix:")
	assert.Contains(t, out, "| xs")
}

func TestGenerateRespectsConfiguredSeverity(t *testing.T) {
	src := `v = "a" == "b"
`
	diags := analyze(t, src)
	require.Len(t, diags, 1)

	cfg := types.Config{Rules: map[string]types.Severity{"constant-comparison": types.SeverityError}}
	out := Generate(diags, map[string]*SourceCode{"main.fern": NewSourceCode(src)}, cfg)
	assert.Contains(t, out, "error: constant-comparison")
}

func TestGenerateProjectDiagnostic(t *testing.T) {
	d := types.Diagnostic{
		Rule:    "config",
		Message: "configuration references unknown names",
		Details: []string{`unknown rule "no-such-rule"`},
	}
	out := Generate([]types.Diagnostic{d}, nil, types.Config{})
	assert.Contains(t, out, "error: config")
	assert.Contains(t, out, "configuration references unknown names")
	assert.Contains(t, out, `- unknown rule "no-such-rule"`)
	assert.NotContains(t, out, "Fix:")
}

func TestGenerateWithoutSourceStillRendersHeader(t *testing.T) {
	src := `v x = not (not x)
`
	diags := analyze(t, src)
	require.Len(t, diags, 1)

	out := Generate(diags, nil, types.Config{})
	assert.Contains(t, out, "double-negation")
	assert.Contains(t, out, "main.fern:1:7")
}

func TestGenerateMultipleDiagnosticsInOrder(t *testing.T) {
	src := `a xs = List.map identity xs

b = "x" == "y"
`
	diags := analyze(t, src)
	require.Len(t, diags, 2)

	out := Generate(diags, map[string]*SourceCode{"main.fern": NewSourceCode(src)}, types.Config{})
	first := strings.Index(out, "identity-map")
	second := strings.Index(out, "constant-comparison")
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	assert.Less(t, first, second)
}

func TestFixPreviewMultipleEdits(t *testing.T) {
	src := `import String

shout = String.trim >> identity >> String.toUpper
`
	diags := analyze(t, src)
	require.Len(t, diags, 1)

	// The pair's range is "String.trim >> identity"; the preview shows
	// what survives its deletions.
	out := Generate(diags, map[string]*SourceCode{"main.fern": NewSourceCode(src)}, types.Config{})
	assert.Contains(t, out, "Fix:")
	assert.Contains(t, out, "| String.trim\n")
}

func TestFindCommonIndent(t *testing.T) {
	assert.Equal(t, "    ", findCommonIndent([]string{"    a", "    b"}))
	assert.Equal(t, "  ", findCommonIndent([]string{"  a", "    b"}))
	assert.Equal(t, "", findCommonIndent([]string{"a", "    b"}))
	assert.Equal(t, "    ", findCommonIndent([]string{"    a", "", "    b"}), "blank lines are ignored")
}

func TestVisualColumn(t *testing.T) {
	assert.Equal(t, 4, visualColumn("abcdef", 5))
	assert.Equal(t, 8, visualColumn("\tx", 2), "a tab expands to the next stop")
	assert.Equal(t, 0, visualColumn("abc", -1))
}

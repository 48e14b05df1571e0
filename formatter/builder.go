// Package formatter renders diagnostics for terminals: a rustc-style
// header, the offending source lines with an underline, and a preview
// of the fix computed from the diagnostic's edits.
package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/fatih/color"

	"github.com/fernlang/flin/internal/fixer"
	"github.com/fernlang/flin/internal/types"
)

const tabWidth = 8

var (
	errorStyle      = color.New(color.FgRed, color.Bold)
	warningStyle    = color.New(color.FgHiYellow, color.Bold)
	ruleStyle       = color.New(color.FgYellow, color.Bold)
	fileStyle       = color.New(color.FgCyan, color.Bold)
	lineStyle       = color.New(color.FgHiBlue, color.Bold)
	messageStyle    = color.New(color.FgRed, color.Bold)
	suggestionStyle = color.New(color.FgGreen, color.Bold)
)

// SourceCode is one file split into lines for snippet rendering.
type SourceCode struct {
	Text  string
	Lines []string
}

// NewSourceCode splits a file's text.
func NewSourceCode(text string) *SourceCode {
	return &SourceCode{Text: text, Lines: strings.Split(text, "\n")}
}

// diagnosticFormatter picks the template for one diagnostic shape.
type diagnosticFormatter interface {
	DiagnosticTemplate() string
}

func getDiagnosticFormatter(d types.Diagnostic) diagnosticFormatter {
	if d.Range.Empty() {
		// Config and read/parse failures have no source position.
		return &projectDiagnosticFormatter{}
	}
	return &generalDiagnosticFormatter{}
}

// Generate formats diagnostics into a human-readable report. Sources
// maps filenames to their text; a diagnostic whose file is absent is
// rendered without a snippet.
func Generate(diags []types.Diagnostic, sources map[string]*SourceCode, cfg types.Config) string {
	var builder strings.Builder
	for _, d := range diags {
		builder.WriteString(buildDiagnostic(d, sources[d.Filename], cfg))
	}
	return builder.String()
}

type diagnosticData struct {
	Severity        string
	Rule            string
	Filename        string
	Padding         string
	StartLine       int
	StartColumn     int
	EndLine         int
	EndColumn       int
	MaxLineNumWidth int
	Message         string
	Details         []string
	Suggestion      string
	SnippetLines    []string
	CommonIndent    string
}

func buildDiagnostic(d types.Diagnostic, src *SourceCode, cfg types.Config) string {
	if src == nil {
		src = &SourceCode{}
	}
	startLine := d.Range.Start.Line
	endLine := d.Range.End.Line
	if d.Range.End.Column == 1 && endLine > startLine {
		// A range ending at a line start does not occupy that line.
		endLine--
	}
	maxLineNumWidth := len(fmt.Sprintf("%d", endLine))
	padding := strings.Repeat(" ", maxLineNumWidth+1)

	var commonIndent string
	if startLine >= 1 && endLine <= len(src.Lines) && startLine <= endLine {
		commonIndent = findCommonIndent(src.Lines[startLine-1 : endLine])
	}

	data := diagnosticData{
		Severity:        severityOf(d, cfg).String(),
		Rule:            d.Rule,
		Filename:        d.Filename,
		StartLine:       startLine,
		StartColumn:     d.Range.Start.Column,
		EndLine:         endLine,
		EndColumn:       d.Range.End.Column,
		Message:         d.Message,
		Details:         d.Details,
		Suggestion:      fixPreview(d, src),
		MaxLineNumWidth: maxLineNumWidth,
		Padding:         padding,
		CommonIndent:    commonIndent,
		SnippetLines:    src.Lines,
	}

	funcMap := template.FuncMap{
		"header":              header,
		"snippet":             codeSnippet,
		"underlineAndMessage": underlineAndMessage,
		"suggestion":          suggestion,
		"details":             detailLines,
	}

	tmpl := template.Must(template.New("diagnostic").
		Funcs(funcMap).
		Parse(getDiagnosticFormatter(d).DiagnosticTemplate()))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("error formatting diagnostic: %v\n", err)
	}
	return buf.String()
}

// severityOf resolves the reporting severity: configured per rule, with
// project-level problems always errors and everything else a warning.
func severityOf(d types.Diagnostic, cfg types.Config) types.Severity {
	if d.Rule == "config" || d.Rule == "parse" {
		return types.SeverityError
	}
	if sev, ok := cfg.Rules[d.Rule]; ok {
		return sev
	}
	return types.SeverityWarning
}

// fixPreview renders what the diagnostic's range looks like after its
// edits are applied. Edits always fall within the range, so the patched
// region can be cut back out by offset arithmetic.
func fixPreview(d types.Diagnostic, src *SourceCode) string {
	if !d.Fixable() || src.Text == "" {
		return ""
	}
	patched := fixer.Apply(src.Text, sortedEdits(d.Edits))
	delta := len(patched) - len(src.Text)
	start := d.Range.Start.Offset
	end := d.Range.End.Offset + delta
	if start < 0 || end > len(patched) || start > end {
		return ""
	}
	return patched[start:end]
}

func sortedEdits(edits []types.TextEdit) []types.TextEdit {
	normalized, err := fixer.Normalize(append([]types.TextEdit{}, edits...))
	if err != nil {
		return nil
	}
	return normalized
}

/* template functions */

func header(rule string, severity string, maxLineNumWidth int, filename string, startLine, startColumn int) string {
	var out string
	switch severity {
	case "error":
		out = errorStyle.Sprint("error: ")
	case "info":
		out = messageStyle.Sprint("info: ")
	default:
		out = warningStyle.Sprint("warning: ")
	}
	out += ruleStyle.Sprintf("%s\n", rule)
	padding := strings.Repeat(" ", maxLineNumWidth)
	out += lineStyle.Sprintf("%s--> ", padding)
	out += fileStyle.Sprintf("%s:%d:%d", filename, startLine, startColumn)
	return out
}

func codeSnippet(snippetLines []string, startLine, endLine, maxLineNumWidth int, commonIndent, padding string) string {
	out := lineStyle.Sprintf("%s|\n", padding)
	for i := startLine; i <= endLine; i++ {
		if i-1 < 0 || i-1 >= len(snippetLines) {
			continue
		}
		line := strings.TrimPrefix(snippetLines[i-1], commonIndent)
		lineNum := fmt.Sprintf("%*d", maxLineNumWidth, i)
		out += lineStyle.Sprintf("%s | %s\n", lineNum, line)
	}
	return out
}

func underlineAndMessage(message, padding string, startLine, endLine, startColumn, endColumn int, snippetLines []string, commonIndent string) string {
	out := lineStyle.Sprintf("%s| ", padding)
	if !validLineRange(startLine, endLine, snippetLines) {
		out += messageStyle.Sprintf("%s\n", message)
		return out
	}

	commonIndentWidth := visualColumn(commonIndent, len(commonIndent)+1)
	underlineStart := visualColumn(snippetLines[startLine-1], startColumn) - commonIndentWidth
	if underlineStart < 0 {
		underlineStart = 0
	}
	var underlineLen int
	if startLine == endLine {
		underlineLen = visualColumn(snippetLines[endLine-1], endColumn) - commonIndentWidth - underlineStart
	} else {
		// Multi-line finding: underline to the end of the first line.
		underlineLen = visualColumn(snippetLines[startLine-1], len(snippetLines[startLine-1])+1) - commonIndentWidth - underlineStart
	}
	if underlineLen < 1 {
		underlineLen = 1
	}

	out += strings.Repeat(" ", underlineStart)
	out += messageStyle.Sprintf("%s\n", strings.Repeat("~", underlineLen))
	out += lineStyle.Sprintf("%s= ", padding)
	out += messageStyle.Sprintf("%s\n", message)
	return out
}

func suggestion(text, padding string, maxLineNumWidth, startLine int) string {
	if text == "" {
		return ""
	}
	out := suggestionStyle.Sprint("Fix:\n")
	out += lineStyle.Sprintf("%s|\n", padding)
	for i, line := range strings.Split(text, "\n") {
		lineNum := fmt.Sprintf("%*d", maxLineNumWidth, startLine+i)
		out += lineStyle.Sprintf("%s | %s\n", lineNum, line)
	}
	out += lineStyle.Sprintf("%s|\n", padding)
	return out
}

func detailLines(details []string) string {
	var out string
	for _, d := range details {
		out += lineStyle.Sprintf("  - %s\n", d)
	}
	return out
}

func validLineRange(startLine, endLine int, snippetLines []string) bool {
	return startLine > 0 && endLine > 0 &&
		startLine <= endLine &&
		startLine <= len(snippetLines) &&
		endLine <= len(snippetLines)
}

// visualColumn converts a 1-based byte column into a screen column,
// expanding tabs.
func visualColumn(line string, column int) int {
	if column < 0 {
		return 0
	}
	visual := 0
	for i, ch := range line {
		if i+1 == column {
			break
		}
		if ch == '\t' {
			visual += tabWidth - (visual % tabWidth)
		} else {
			visual++
		}
	}
	return visual
}

// findCommonIndent finds the indent shared by all non-empty lines.
func findCommonIndent(lines []string) string {
	var first []rune
	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed != "" {
			first = []rune(line[:len(line)-len(trimmed)])
			break
		}
	}
	if len(first) == 0 {
		return ""
	}
	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed == "" {
			continue
		}
		first = commonPrefix(first, []rune(line[:len(line)-len(trimmed)]))
		if len(first) == 0 {
			break
		}
	}
	return string(first)
}

func commonPrefix(a, b []rune) []rune {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}

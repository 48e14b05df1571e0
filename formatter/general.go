package formatter

// generalDiagnosticFormatter renders a positioned finding: header,
// snippet, underline, and the fix preview.
type generalDiagnosticFormatter struct{}

func (f *generalDiagnosticFormatter) DiagnosticTemplate() string {
	return `{{header .Rule .Severity .MaxLineNumWidth .Filename .StartLine .StartColumn}}
{{snippet .SnippetLines .StartLine .EndLine .MaxLineNumWidth .CommonIndent .Padding}}{{underlineAndMessage .Message .Padding .StartLine .EndLine .StartColumn .EndColumn .SnippetLines .CommonIndent}}{{details .Details}}{{suggestion .Suggestion .Padding .MaxLineNumWidth .StartLine}}
`
}

// projectDiagnosticFormatter renders findings without a source
// position: configuration problems and unreadable files.
type projectDiagnosticFormatter struct{}

func (f *projectDiagnosticFormatter) DiagnosticTemplate() string {
	return `{{header .Rule .Severity 0 .Filename .StartLine .StartColumn}}
{{.Message}}
{{details .Details}}`
}

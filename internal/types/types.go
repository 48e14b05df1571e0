package types

import "fmt"

// Pos is a position in a source file. Offset is a byte offset from the
// start of the file; Line and Column are 1-based and kept for display.
type Pos struct {
	Offset int
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Range is a half-open span of source text: [Start.Offset, End.Offset).
type Range struct {
	Start Pos
	End   Pos
}

func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// Empty reports whether the range covers no text.
func (r Range) Empty() bool {
	return r.Start.Offset >= r.End.Offset
}

// Contains reports whether other lies entirely inside r.
func (r Range) Contains(other Range) bool {
	return r.Start.Offset <= other.Start.Offset && other.End.Offset <= r.End.Offset
}

// Overlaps reports whether r and other share at least one byte.
func (r Range) Overlaps(other Range) bool {
	return r.Start.Offset < other.End.Offset && other.Start.Offset < r.End.Offset
}

// Cover returns the smallest range containing both r and other.
func (r Range) Cover(other Range) Range {
	if other.Start.Offset < r.Start.Offset {
		r.Start = other.Start
	}
	if other.End.Offset > r.End.Offset {
		r.End = other.End
	}
	return r
}

// TextEdit replaces the text covered by Range with NewText.
type TextEdit struct {
	Range   Range
	NewText string
}

// Diagnostic reports one simplification opportunity together with the
// text edits that resolve it. Except for the project-level configuration
// error, every diagnostic carries at least one edit.
type Diagnostic struct {
	Rule     string
	Filename string
	Message  string
	Details  []string
	Range    Range
	Edits    []TextEdit
}

// Fixable reports whether the diagnostic carries edits to apply.
func (d Diagnostic) Fixable() bool {
	return len(d.Edits) > 0
}

// Severity controls whether a rule runs and how it is reported.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityOff
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityOff:
		return "off"
	default:
		return "unknown"
	}
}

// Config carries the analysis options supplied by the host.
type Config struct {
	// ExpectNaN widens float semantics: commutative reordering and
	// self-equality reasoning are disabled for expressions that could
	// evaluate to NaN.
	ExpectNaN bool

	// IgnoredCaseOfTypes lists fully-qualified union type names whose
	// case expressions must never be collapsed.
	IgnoredCaseOfTypes []string

	// Rules maps rule names to severities; SeverityOff disables a rule.
	Rules map[string]Severity
}

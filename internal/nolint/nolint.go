// Package nolint implements diagnostic suppression through source
// comments. A line comment of the form
//
//	-- flin:ignore
//	-- flin:ignore rule-one, rule-two
//
// suppresses findings on its own line, or on the following line when
// the comment stands alone. Without a rule list every rule is
// suppressed.
package nolint

import (
	"strings"

	"github.com/fernlang/flin/internal/types"
)

const ignorePrefix = "flin:ignore"

// scope is one suppression: a line it covers and the rules it silences.
type scope struct {
	line  int
	rules map[string]struct{} // empty means all rules
}

// Manager holds the suppressions parsed from one file.
type Manager struct {
	scopes []scope
}

// Parse scans source text for suppression comments.
func Parse(src string) *Manager {
	m := &Manager{}
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		idx := strings.Index(line, "--")
		if idx < 0 {
			continue
		}
		comment := strings.TrimSpace(line[idx+2:])
		if !strings.HasPrefix(comment, ignorePrefix) {
			continue
		}
		ruleList := strings.TrimSpace(strings.TrimPrefix(comment, ignorePrefix))
		s := scope{line: i + 1, rules: parseRules(ruleList)}
		if strings.TrimSpace(line[:idx]) == "" {
			// A comment on its own line guards the next line.
			s.line = i + 2
		}
		m.scopes = append(m.scopes, s)
	}
	return m
}

func parseRules(list string) map[string]struct{} {
	rules := make(map[string]struct{})
	for _, r := range strings.Split(list, ",") {
		r = strings.TrimSpace(r)
		if r != "" {
			rules[r] = struct{}{}
		}
	}
	return rules
}

// Suppressed reports whether a diagnostic is silenced.
func (m *Manager) Suppressed(d types.Diagnostic) bool {
	for _, s := range m.scopes {
		if s.line != d.Range.Start.Line {
			continue
		}
		if len(s.rules) == 0 {
			return true
		}
		if _, ok := s.rules[d.Rule]; ok {
			return true
		}
	}
	return false
}

// Filter drops suppressed diagnostics.
func (m *Manager) Filter(diags []types.Diagnostic) []types.Diagnostic {
	if len(m.scopes) == 0 {
		return diags
	}
	kept := diags[:0]
	for _, d := range diags {
		if !m.Suppressed(d) {
			kept = append(kept, d)
		}
	}
	return kept
}

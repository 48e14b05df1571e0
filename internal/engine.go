// Package internal wires the analysis pipeline together: parsing a
// module, walking it with the rule registry, and validating the host
// configuration before any rule runs.
package internal

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fernlang/flin/internal/ast"
	"github.com/fernlang/flin/internal/checks"
	"github.com/fernlang/flin/internal/fixer"
	"github.com/fernlang/flin/internal/nolint"
	"github.com/fernlang/flin/internal/parser"
	"github.com/fernlang/flin/internal/project"
	"github.com/fernlang/flin/internal/types"
)

// Engine analyzes modules against one project summary and one
// configuration. It is safe for concurrent use once built: the registry
// and summary are only read, and each analysis owns its own traversal
// state.
type Engine struct {
	registry *checks.Registry
	summary  *project.Summary
	cfg      types.Config
}

// NewEngine builds an engine over the given project summary.
func NewEngine(summary *project.Summary, cfg types.Config) *Engine {
	if summary == nil {
		summary = project.New()
	}
	return &Engine{
		registry: checks.NewRegistry(),
		summary:  summary,
		cfg:      cfg,
	}
}

// AnalyzeSource parses and analyzes one module source.
func (e *Engine) AnalyzeSource(filename, src string) ([]types.Diagnostic, error) {
	mod, err := parser.ParseModule(src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return e.AnalyzeModule(mod, filename, src), nil
}

// AnalyzeModule analyzes an already parsed module. The source text must
// be the exact text the module was parsed from; edits are expressed as
// byte offsets into it. Findings silenced by flin:ignore comments are
// dropped here.
func (e *Engine) AnalyzeModule(mod *ast.Module, filename, src string) []types.Diagnostic {
	diags := checks.Walk(e.registry, mod, filename, src, e.summary, e.cfg)
	return nolint.Parse(src).Filter(diags)
}

// Fix applies every non-conflicting fix to the source and returns the
// patched text. Diagnostics whose ranges overlap an earlier one are
// skipped; a later run picks up whatever they would have rewritten.
func (e *Engine) Fix(src string, diags []types.Diagnostic) string {
	return fixer.ApplyAll(src, diags)
}

// ValidateConfig checks the configuration for references to things that
// do not exist: unknown rule names, malformed ignored-type entries, and
// well-formed entries naming a type the project summary has never seen.
// Call it after every module has been summarized, or known project
// types will be reported as unmatched. Problems come back as a single
// non-fixable diagnostic with one detail line per problem, sorted and
// deduplicated, so the host can print it like any other finding. A
// valid configuration yields nil.
func (e *Engine) ValidateConfig() *types.Diagnostic {
	seen := make(map[string]struct{})
	var details []string
	add := func(d string) {
		if _, dup := seen[d]; dup {
			return
		}
		seen[d] = struct{}{}
		details = append(details, d)
	}

	for name := range e.cfg.Rules {
		if !e.registry.KnownRule(name) {
			add(fmt.Sprintf("unknown rule %q", name))
		}
	}
	for _, t := range e.cfg.IgnoredCaseOfTypes {
		dot := strings.LastIndex(t, ".")
		if dot <= 0 || dot == len(t)-1 {
			add(fmt.Sprintf("ignored type %q is not fully qualified (expected Module.Type)", t))
			continue
		}
		if !e.summary.HasType(t[:dot], t[dot+1:]) {
			add(fmt.Sprintf("ignored type %q does not match any known type", t))
		}
	}
	if len(details) == 0 {
		return nil
	}
	sort.Strings(details)
	return &types.Diagnostic{
		Rule:    "config",
		Message: "configuration references unknown names",
		Details: details,
	}
}

// Summarize adds one project module to the engine's summary. Call it
// for every module before analyzing any of them, so cross-module type
// information is complete.
func (e *Engine) Summarize(mod *ast.Module) {
	e.summary.Add(project.Summarize(mod, true))
}

// Summary exposes the engine's project summary.
func (e *Engine) Summary() *project.Summary {
	return e.summary
}

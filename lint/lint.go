// Package lint is the host-facing facade: it loads configuration,
// gathers source files, builds the project summary, and fans analysis
// out over worker goroutines.
package lint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fernlang/flin/internal"
	"github.com/fernlang/flin/internal/ast"
	"github.com/fernlang/flin/internal/parser"
	"github.com/fernlang/flin/internal/project"
	"github.com/fernlang/flin/internal/types"
)

const fileExtension = ".fern"

// maxFixPasses bounds repeated fixing. Fixes are designed to converge;
// the bound only guards against a rewrite cycle slipping in.
const maxFixPasses = 5

// Runner drives analysis over files and directories.
type Runner struct {
	engine *internal.Engine
	logger *zap.Logger

	// ShowProgress draws a progress bar while directories are analyzed.
	ShowProgress bool
}

// NewRunner builds a runner from the file configuration.
func NewRunner(cfg Config, logger *zap.Logger) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	analysisCfg, err := cfg.Analysis()
	if err != nil {
		return nil, err
	}
	summary := project.New()
	if cfg.Deps != "" {
		if err := project.LoadDeps(summary, cfg.Deps); err != nil {
			return nil, fmt.Errorf("load deps manifest: %w", err)
		}
	}
	return &Runner{
		engine: internal.NewEngine(summary, analysisCfg),
		logger: logger,
	}, nil
}

// Engine exposes the underlying engine, mainly for tests.
func (r *Runner) Engine() *internal.Engine { return r.engine }

type sourceFile struct {
	path string
	text string
	mod  *ast.Module
}

// Run analyzes the given paths. Directories are walked for source
// files. The whole project is summarized before any file is analyzed,
// so cross-module type information is complete, then files are analyzed
// in parallel. Diagnostics come back sorted by file and position; a
// configuration problem, if any, is the first diagnostic.
func (r *Runner) Run(ctx context.Context, paths []string) ([]types.Diagnostic, error) {
	files, err := collectFiles(paths)
	if err != nil {
		return nil, err
	}

	sources, parseDiags := r.loadAndSummarize(files)

	// Validated only now: ignored-type entries are matched against the
	// freshly built project summary.
	var diags []types.Diagnostic
	if d := r.engine.ValidateConfig(); d != nil {
		diags = append(diags, *d)
	}
	diags = append(diags, parseDiags...)

	var bar *progressbar.ProgressBar
	if r.ShowProgress && len(sources) > 1 {
		bar = newProgressBar(len(sources))
	}

	results := make([][]types.Diagnostic, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = r.engine.AnalyzeModule(src.mod, src.path, src.text)
			if bar != nil {
				bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if bar != nil {
		fmt.Println()
	}

	for _, rs := range results {
		diags = append(diags, rs...)
	}
	sortDiagnostics(diags)
	return diags, nil
}

// Fix analyzes the given paths and writes every applicable fix back to
// disk, re-analyzing until nothing fixable remains. It returns the
// diagnostics that were fixed.
func (r *Runner) Fix(ctx context.Context, paths []string) ([]types.Diagnostic, error) {
	files, err := collectFiles(paths)
	if err != nil {
		return nil, err
	}
	// Summarize once up front; fixes never change type declarations.
	r.loadAndSummarize(files)
	var fixed []types.Diagnostic

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return fixed, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fixed, err
		}
		text := string(data)
		changed := false
		for pass := 0; pass < maxFixPasses; pass++ {
			diags, err := r.engine.AnalyzeSource(path, text)
			if err != nil {
				r.logger.Warn("skipping unparseable file", zap.String("file", path), zap.Error(err))
				break
			}
			var fixable []types.Diagnostic
			for _, d := range diags {
				if d.Fixable() {
					fixable = append(fixable, d)
				}
			}
			if len(fixable) == 0 {
				break
			}
			text = r.engine.Fix(text, fixable)
			fixed = append(fixed, fixable...)
			changed = true
		}
		if changed {
			if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
				return fixed, err
			}
			r.logger.Info("fixed", zap.String("file", path))
		}
	}
	return fixed, nil
}

// loadAndSummarize reads and parses every file, feeding parsed modules
// into the project summary. Unparseable files become non-fixable
// diagnostics rather than aborting the run.
func (r *Runner) loadAndSummarize(files []string) ([]sourceFile, []types.Diagnostic) {
	var (
		sources []sourceFile
		diags   []types.Diagnostic
	)
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			r.logger.Error("read failed", zap.String("file", path), zap.Error(err))
			diags = append(diags, types.Diagnostic{
				Rule: "parse", Filename: path, Message: err.Error(),
			})
			continue
		}
		text := string(data)
		mod, err := parser.ParseModule(text)
		if err != nil {
			r.logger.Warn("parse failed", zap.String("file", path), zap.Error(err))
			diags = append(diags, types.Diagnostic{
				Rule: "parse", Filename: path, Message: err.Error(),
			})
			continue
		}
		r.engine.Summarize(mod)
		sources = append(sources, sourceFile{path: path, text: text, mod: mod})
	}
	return sources, diags
}

// collectFiles expands paths into the list of source files to analyze,
// in stable order.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("access %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fi.IsDir() && filepath.Ext(p) == fileExtension {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

func sortDiagnostics(diags []types.Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Filename != diags[j].Filename {
			return diags[i].Filename < diags[j].Filename
		}
		return diags[i].Range.Start.Offset < diags[j].Range.Start.Offset
	})
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("analyzing"),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

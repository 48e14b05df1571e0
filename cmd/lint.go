package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fernlang/flin/formatter"
	"github.com/fernlang/flin/internal/types"
	"github.com/fernlang/flin/lint"
)

var (
	lintJSONOutput bool
	outPath        string
	noProgress     bool
)

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Analyze source files and report simplification opportunities",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: please provide file or directory paths")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		runner, cfg, err := newRunner()
		if err != nil {
			logger.Fatal("failed to initialize", zap.Error(err))
		}
		runner.ShowProgress = !noProgress && !lintJSONOutput

		diags, err := runner.Run(ctx, args)
		if err != nil {
			logger.Error("analysis failed", zap.Error(err))
			os.Exit(1)
		}

		analysisCfg, _ := cfg.Analysis()
		printDiagnostics(diags, analysisCfg, lintJSONOutput, outPath)
		if len(diags) > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	lintCmd.Flags().BoolVar(&lintJSONOutput, "json", false, "Output diagnostics in JSON format")
	lintCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	lintCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
}

func newRunner() (*lint.Runner, lint.Config, error) {
	cfg, err := lint.LoadConfig(cfgFile)
	if err != nil {
		return nil, cfg, err
	}
	runner, err := lint.NewRunner(cfg, logger)
	return runner, cfg, err
}

func printDiagnostics(diags []types.Diagnostic, cfg types.Config, asJSON bool, jsonPath string) {
	byFile := make(map[string][]types.Diagnostic)
	for _, d := range diags {
		byFile[d.Filename] = append(byFile[d.Filename], d)
	}

	if asJSON {
		data, err := json.MarshalIndent(byFile, "", "  ")
		if err != nil {
			logger.Error("marshalling diagnostics failed", zap.Error(err))
			return
		}
		if jsonPath == "" {
			fmt.Println(string(data))
			return
		}
		if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
			logger.Error("writing JSON output failed", zap.Error(err))
		}
		return
	}

	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	sources := make(map[string]*formatter.SourceCode, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		sources[f] = formatter.NewSourceCode(string(data))
	}
	fmt.Print(formatter.Generate(diags, sources, cfg))
}

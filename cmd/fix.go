package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixDryRun bool

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Apply every safe simplification in place",
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

		if fixDryRun {
			// Show what would change without touching any file.
			diags, err := runner.Run(ctx, args)
			if err != nil {
				logger.Error("analysis failed", zap.Error(err))
				os.Exit(1)
			}
			analysisCfg, _ := cfg.Analysis()
			printDiagnostics(diags, analysisCfg, false, "")
			return
		}

		fixed, err := runner.Fix(ctx, args)
		if err != nil {
			logger.Error("fixing failed", zap.Error(err))
			os.Exit(1)
		}
		fmt.Printf("applied %d fixes\n", len(fixed))
	},
}

func init() {
	fixCmd.Flags().BoolVar(&fixDryRun, "dry-run", false, "Show fixes without applying them")
}

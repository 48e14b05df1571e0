package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fernlang/flin/internal/checks"
)

// rulesCmd: flin rules
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List every rule the analyzer can emit",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range checks.NewRegistry().Rules() {
			fmt.Println(name)
		}
	},
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/fernlang/flin/lint"
)

// initCmd: flin init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		if err := initConfigurationFile(cfgFile); err != nil {
			logger.Error("error initializing config file", zap.Error(err))
			return
		}
		path := cfgFile
		if path == "" {
			path = lint.DefaultConfigName
		}
		fmt.Printf("Configuration file created: %s\n", path)
	},
}

func initConfigurationFile(path string) error {
	if path == "" {
		path = lint.DefaultConfigName
	}
	config := lint.Config{
		Name:  "flin",
		Rules: map[string]string{},
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

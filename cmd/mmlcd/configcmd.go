package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const _defaultConfigFile = "mmlcd.yaml"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "manage the mmlcd configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "write the effective configuration to a YAML file",
	Long: `Writes the configuration in effect (defaults, the --config file and
MMLCD_* environment overrides folded together) to file, or to the --config
path, or to mmlcd.yaml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			path = _defaultConfigFile
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		logger.Info("config written", zap.String("file", path))
		out("Config written to " + path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/scigo-housing/config"
	"github.com/YuminosukeSato/scigo-housing/pkg/log"
)

// app carries the global flags and the loaded configuration to subcommands.
type app struct {
	configPath string
	envFile    string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "housing",
		Short: "Housing price regression pipeline",
		Long: `housing trains regression models on the housing dataset, persists the
best one with its feature codec, and predicts prices for single listings.

Examples:
  housing train --data Housing.csv --out artifacts
  housing predict --area 6000 --bedrooms 3 --furnishing furnished
  housing eda --data Housing.csv --plots plots`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the config")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	root.AddCommand(newTrainCmd(a))
	root.AddCommand(newPredictCmd(a))
	root.AddCommand(newEDACmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if err := config.LoadEnv(a.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := log.SetupLogger(cfg.LogLevel, cmd.ErrOrStderr(), true); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

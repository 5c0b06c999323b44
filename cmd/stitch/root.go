package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/stitch/internal/config"
	"github.com/aretw0/stitch/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "stitch",
	Short: "Stitch runs configuration-driven multi-step form wizards",
	Long: `Stitch loads wizard definitions (steps, fields, validation rules and
visibility conditions) from YAML/JSON files or a Loam directory and serves
them over HTTP, MCP or an interactive terminal.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a stitch.yaml configuration file")
	rootCmd.PersistentFlags().StringP("definitions", "d", "", "Wizard definitions file or directory (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json (overrides config)")
}

// loadConfig resolves the configuration for a command: .env files, the
// optional config file, STITCH_* variables and finally command line flags.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	if err := config.LoadEnvFiles(".env"); err != nil {
		return nil, nil, err
	}

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if _, err := os.Stat("stitch.yaml"); err == nil {
			path = "stitch.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	if v, _ := cmd.Flags().GetString("definitions"); v != "" {
		cfg.Definitions = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.Log.Format = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(level, cfg.Log.Format), nil
}

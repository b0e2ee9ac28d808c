package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/assetbot/internal/cli"
	"github.com/aretw0/assetbot/internal/config"
	"github.com/aretw0/assetbot/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "assetbot",
	Short: "Assetbot is a conversational assistant for IT asset requests",
	Long: `Assetbot walks employees through requesting IT equipment: asset type, configuration and reason.
Settings come from ASSETBOT_* environment variables; the flags below override them.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("store", "", "Session store: memory or redis")
	rootCmd.PersistentFlags().String("redis-addr", "", "Redis address for the redis store")
	rootCmd.PersistentFlags().String("dialogue", "", "YAML file with vocabulary, wording, stock and flow")
	rootCmd.PersistentFlags().String("sqlite", "", "SQLite file recording completed requests")
	rootCmd.PersistentFlags().String("inventory-url", "", "Base URL of the inventory service")
}

// loadConfig reads the environment, then applies the flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	override := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	override("log-level", &cfg.LogLevel)
	override("store", &cfg.Store)
	override("redis-addr", &cfg.RedisAddr)
	override("dialogue", &cfg.DialogueFile)
	override("sqlite", &cfg.SQLitePath)
	override("inventory-url", &cfg.InventoryURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp builds the configured engine. Callers must Close the result.
func newApp(ctx context.Context, cmd *cobra.Command) (*cli.App, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(cfg.Level())
	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return app, logger, nil
}

package main

import (
	"fmt"
	"log"
	"os"

	"school-meal/internal/config"
	"school-meal/internal/database"
	"school-meal/internal/metrics"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "school-meal",
	Short: "Look up the school lunch menu from the NEIS meal service.",
	Long: `school-meal queries the NEIS meal information API for one school ` +
		`and shows the lunch menu of a chosen day in a web page, on the ` +
		`command line or through a Telegram bot.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg
}

// openMetricsStore returns nil when the diagnostics store is disabled.
func openMetricsStore(cfg *config.Config) (*metrics.Store, error) {
	if cfg.MetricsDBPath == "" {
		return nil, nil
	}
	db, err := database.NewDB(cfg.MetricsDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return metrics.NewStore(db.SQL), nil
}

package main

import (
	"fmt"

	"school-meal/internal/metrics"
	"school-meal/internal/telegram"

	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show the fetch diagnostics of the last days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		cfg := loadConfig()
		store, err := openMetricsStore(cfg)
		if err != nil {
			return err
		}
		if store == nil {
			return fmt.Errorf("METRICS_DB_PATH environment variable not set")
		}
		defer store.Close()

		usage, err := store.GetDailyUsage(days)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), telegram.FormatReport(usage, metrics.GetSysHealth(cfg.MetricsDBPath)))
		return nil
	},
}

var metricsCleanupCmd = &cobra.Command{
	Use:   "metrics-cleanup",
	Short: "Remove old fetch diagnostics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		cfg := loadConfig()
		store, err := openMetricsStore(cfg)
		if err != nil {
			return err
		}
		if store == nil {
			return fmt.Errorf("METRICS_DB_PATH environment variable not set")
		}
		defer store.Close()

		affected, err := store.Cleanup(days)
		if err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Successfully removed %d old metric records.\n", affected)
		return nil
	},
}

func init() {
	metricsCmd.Flags().Int("days", 7, "Show the last N days")
	metricsCleanupCmd.Flags().Int("days", 30, "Keep records for the last N days")
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(metricsCleanupCmd)
}

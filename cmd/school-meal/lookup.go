package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"school-meal/internal/app"
	"school-meal/internal/meal"
	"school-meal/internal/neis"

	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Print the lunch menu for a date (default: today)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		date, _ := cmd.Flags().GetString("date")
		if !cmd.Flags().Changed("date") {
			date = meal.Today(time.Now(), cfg.Location)
		}

		metricsStore, err := openMetricsStore(cfg)
		if err != nil {
			return err
		}
		var recorder app.Recorder
		if metricsStore != nil {
			defer metricsStore.Close()
			recorder = metricsStore
		}

		controller := app.NewController(cfg, neis.NewClient(cfg), textView(cmd.OutOrStdout(), cmd.ErrOrStderr()), recorder)
		defer controller.Close()

		if st := controller.Submit(context.Background(), date); st.Kind() == meal.KindError {
			return fmt.Errorf("lookup failed for %q", date)
		}
		return nil
	},
}

func init() {
	lookupCmd.Flags().StringP("date", "d", "", "date to look up (YYYY-MM-DD)")
	rootCmd.AddCommand(lookupCmd)
}

// textView prints Loading to errOut and every other state to out.
func textView(out, errOut io.Writer) app.Renderer {
	return app.RendererFunc(func(s meal.State) {
		if s.Kind() == meal.KindLoading {
			fmt.Fprintln(errOut, meal.RenderText(s))
			return
		}
		fmt.Fprintln(out, meal.RenderText(s))
	})
}

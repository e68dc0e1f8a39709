package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"school-meal/internal/app"
	"school-meal/internal/neis"
	"school-meal/internal/telegram"
	"school-meal/internal/web"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the meal lookup page (and the Telegram webhook when configured)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		openBrowser, _ := cmd.Flags().GetBool("open")
		return serve(openBrowser)
	},
}

func init() {
	serveCmd.Flags().Bool("open", false, "open the page in the default browser once the server is up")
	rootCmd.AddCommand(serveCmd)
}

func serve(openBrowser bool) error {
	cfg := loadConfig()

	metricsStore, err := openMetricsStore(cfg)
	if err != nil {
		return err
	}
	var recorder app.Recorder
	if metricsStore != nil {
		defer metricsStore.Close()
		recorder = metricsStore
	}

	client := neis.NewClient(cfg)

	page, err := web.NewPage()
	if err != nil {
		return fmt.Errorf("failed to parse page template: %w", err)
	}
	controller := app.NewController(cfg, client, page, recorder)
	server := web.NewServer(controller, page)

	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBot(cfg, client, metricsStore)
		if err != nil {
			return fmt.Errorf("failed to initialize Telegram Bot: %w", err)
		}
		bot.RegisterHandlers(server.Router())
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Handler(),
	}

	go func() {
		log.Printf("Meal lookup server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Default query for today, as if the search button had been pressed.
	controller.Mount()

	if openBrowser {
		if err := browser.OpenURL("http://localhost:" + cfg.Port + "/"); err != nil {
			log.Printf("Warning: failed to open browser: %v", err)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	controller.Close()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exiting")
	return nil
}

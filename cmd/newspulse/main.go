package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"newspulse/internal/app"
	"newspulse/internal/config"
	"newspulse/internal/logging"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "newspulse",
		Short: "AI-enriched news pipeline with live subscriber updates",
		Long:  "newspulse periodically ingests articles from configured sources, enriches them with AI-derived metadata, and pushes snapshot updates to live subscribers.",
	}
	root.AddCommand(newServeCmd(), newCycleCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ingestion scheduler and API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := logging.New(cfg.Logging.Level)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application := app.New(cfg, logger)
			if err := application.Run(ctx); err != nil {
				logger.Error("application stopped", "error", err)
				return err
			}
			return nil
		},
	}
}

func newCycleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cycle",
		Short: "Run a single fetch-enrich cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := logging.New(cfg.Logging.Level)

			application := app.New(cfg, logger)
			snap, err := application.RunCycle(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("processed %d articles, %d trending topics (snapshot version %d)\n",
				len(snap.Articles), len(snap.Trending), snap.Version)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("newspulse " + version)
		},
	}
}

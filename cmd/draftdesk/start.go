// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/draftdesk-dev/draftdesk/internal/config"
)

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the draftdesk gateway",
		Long:  "Load configuration, wire the provider orchestrator, and start the HTTP server.",
		RunE:  runStart,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")
	_ = viper.BindPFlag("networking.listen", cmd.Flags().Lookup("listen"))

	return cmd
}

func runStart(cmd *cobra.Command, _ []string) error {
	setupLogging(viper.GetBool("verbose"))

	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	gw, err := WireGateway(cfg)
	if err != nil {
		return fmt.Errorf("wiring gateway: %w", err)
	}
	defer func() { _ = gw.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting draftdesk gateway",
		"listen", cfg.Networking.Listen,
		"providers", len(cfg.Providers),
		"wordpress", cfg.WordPressConfigured(),
	)

	if err := gw.Start(ctx); err != nil {
		return fmt.Errorf("running gateway: %w", err)
	}

	slog.Info("draftdesk gateway stopped")
	return nil
}

// setupLogging configures the process-wide slog default.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

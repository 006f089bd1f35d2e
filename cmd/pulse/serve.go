package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lumenfin/pulse/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API over HTTP",
		Long: `Start an HTTP server exposing accounts, transactions, and the financial
analysis as JSON. Analysis results are cached so dashboard refreshes don't
consume provider quota; pass ?refresh=true to force a new run.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("failed to close storage", "error", closeErr)
		}
	}()

	engine, err := buildEngine(store, slog.Default())
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Addr:     viper.GetString("server.addr"),
		CacheTTL: viper.GetDuration("server.cache_ttl"),
	}, store, engine, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Run(ctx)
}

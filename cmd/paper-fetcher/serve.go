// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-fetcher/internal/cache"
	"github.com/pdiddy/paper-fetcher/internal/httputil"
	"github.com/pdiddy/paper-fetcher/internal/server"
	"github.com/pdiddy/paper-fetcher/internal/sources"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP resolution service",
	Long: `Serve starts the HTTP service exposing /fetch (resolve a reference to a
PDF URL), /download (stream the PDF), and /health. Resolutions and raw
provider responses are cached in a local SQLite database.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().String("cache-db", "", "path to the SQLite cache database (default ./cache.sqlite)")
	serveCmd.Flags().Bool("pretty-log", false, "human-readable log output instead of JSON")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if dbPath, _ := cmd.Flags().GetString("cache-db"); dbPath != "" {
		cfg.Cache.Path = dbPath
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if pretty, _ := cmd.Flags().GetBool("pretty-log"); pretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	store, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer store.Close()

	client := httputil.NewClient(cfg.HTTP, store, cfg.Cache.TTL)
	pipeline := sources.NewPipeline(client, cfg.Sources, logger)
	resolver := server.NewResolver(pipeline, store, cfg.Cache.TTL, logger)
	srv := server.New(cfg.Server, resolver, client, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

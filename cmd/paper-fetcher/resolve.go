// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-fetcher/internal/cache"
	"github.com/pdiddy/paper-fetcher/internal/httputil"
	"github.com/pdiddy/paper-fetcher/internal/server"
	"github.com/pdiddy/paper-fetcher/internal/sources"
	"github.com/pdiddy/paper-fetcher/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a single reference to an open-access PDF URL",
	Long: `Resolve looks up one paper by DOI, title, or both, and prints the first
open-access PDF URL found across the configured sources. Results are
cached, so repeated lookups of the same reference are instant.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("doi", "", "paper DOI (bare or as a doi.org URL)")
	resolveCmd.Flags().String("title", "", "paper title")
	resolveCmd.Flags().String("authors", "", "author names, used in the cache key")
	resolveCmd.Flags().Int("year", 0, "publication year, used in the cache key")
	resolveCmd.Flags().String("output", "table", "output format: table, json, or yaml")
	resolveCmd.Flags().Bool("no-cache", false, "bypass the local cache for this lookup")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	doi, _ := cmd.Flags().GetString("doi")
	title, _ := cmd.Flags().GetString("title")
	authors, _ := cmd.Flags().GetString("authors")
	year, _ := cmd.Flags().GetInt("year")
	output, _ := cmd.Flags().GetString("output")
	noCache, _ := cmd.Flags().GetBool("no-cache")

	req := types.FetchRequest{DOI: doi, Title: title, Authors: authors, Year: year}
	if req.IsEmpty() {
		return fmt.Errorf("provide --doi or --title")
	}

	cfg := loadConfig()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	var store *cache.Store
	if !noCache {
		s, err := cache.Open(cfg.Cache.Path)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer s.Close()
		store = s
	}

	client := httputil.NewClient(cfg.HTTP, store, cfg.Cache.TTL)
	pipeline := sources.NewPipeline(client, cfg.Sources, logger)
	resolver := server.NewResolver(pipeline, store, cfg.Cache.TTL, logger)

	resp := resolver.Resolve(context.Background(), req)
	return formatResolveOutput(resp, output)
}

func formatResolveOutput(resp types.FetchResponse, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "yaml":
		data, err := yaml.Marshal(resp)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	case "table", "":
		if !resp.Found {
			fmt.Println("No open-access PDF found.")
			return nil
		}
		fmt.Fprintf(os.Stdout, "%-10s  %s\n", "Source", resp.Source)
		fmt.Fprintf(os.Stdout, "%-10s  %s\n", "PDF URL", resp.PDFURL)
		if resp.Cached {
			fmt.Fprintf(os.Stdout, "%-10s  %s\n", "Cached", "yes")
		}
		if title, ok := resp.Metadata["title"].(string); ok && title != "" {
			fmt.Fprintf(os.Stdout, "%-10s  %s\n", "Title", title)
		}
		return nil
	default:
		return fmt.Errorf("unsupported output %q: use table, json, or yaml", format)
	}
}

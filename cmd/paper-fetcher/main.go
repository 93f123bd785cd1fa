// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-fetcher CLI. It resolves
// bibliographic references to open-access PDF URLs, either as a one-shot
// resolve command or as a long-running HTTP service.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-fetcher/internal/secrets"
	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the paper-fetcher CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-fetcher",
	Short: "Resolve bibliographic references to open-access PDFs",
	Long: `paper-fetcher locates open-access PDFs for academic papers. Given a DOI,
a title, or both, it consults arXiv, Semantic Scholar, OpenAlex, PubMed
Central, CORE, Crossref, and Unpaywall in order, stopping at the first
source that yields a direct PDF link.

Use "resolve" for one-shot lookups from the command line and "serve" to
run the HTTP resolution service.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-fetcher.yaml or ~/.config/paper-fetcher/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-fetcher")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-fetcher"))
		}
	}

	viper.SetEnvPrefix("PAPER_FETCHER")
	viper.AutomaticEnv()

	// Bare env names used by deployments that predate the prefix.
	_ = viper.BindEnv("semantic_scholar_api_key", "PAPER_FETCHER_SEMANTIC_SCHOLAR_API_KEY", "SEMANTIC_SCHOLAR_API_KEY")
	_ = viper.BindEnv("core_api_key", "PAPER_FETCHER_CORE_API_KEY", "CORE_API_KEY")
	_ = viper.BindEnv("unpaywall_email", "PAPER_FETCHER_UNPAYWALL_EMAIL", "UNPAYWALL_EMAIL")
	_ = viper.BindEnv("cache_db_path", "PAPER_FETCHER_CACHE_DB_PATH", "CACHE_DB_PATH")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

const (
	defaultTimeout   = 20 * time.Second
	defaultCachePath = "./cache.sqlite"
	defaultCacheTTL  = 7 * 24 * time.Hour
	defaultUserAgent = "paper-fetcher/0.1 (mailto:contact@example.com)"
)

// loadConfig assembles the runtime configuration from viper (config file
// and environment) and the loaded secrets, with defaults filled in.
func loadConfig() types.Config {
	cfg := types.Config{
		HTTP: types.HTTPConfig{
			Timeout:   viper.GetDuration("http_timeout"),
			UserAgent: viper.GetString("user_agent"),
		},
		Cache: types.CacheConfig{
			Path: viper.GetString("cache_db_path"),
			TTL:  viper.GetDuration("cache_ttl"),
		},
		Sources: types.SourcesConfig{
			SemanticScholarAPIKey: secretDefault("semantic-scholar-api-key", viper.GetString("semantic_scholar_api_key")),
			CoreAPIKey:            secretDefault("core-api-key", viper.GetString("core_api_key")),
			UnpaywallEmail:        secretDefault("unpaywall-email", viper.GetString("unpaywall_email")),
		},
		Server: types.ServerConfig{
			Addr:            viper.GetString("listen_addr"),
			ReadTimeout:     viper.GetDuration("read_timeout"),
			IdleTimeout:     viper.GetDuration("idle_timeout"),
			ShutdownTimeout: viper.GetDuration("shutdown_timeout"),
		},
	}

	if cfg.HTTP.Timeout == 0 {
		cfg.HTTP.Timeout = defaultTimeout
	}
	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = defaultUserAgent
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = defaultCachePath
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = defaultCacheTTL
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

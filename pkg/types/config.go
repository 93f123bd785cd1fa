// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for outbound API requests.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout (default 20s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with every outbound request
	// (e.g. "paper-fetcher/0.1 (mailto:contact@example.com)"). Scholarly
	// APIs use it for polite-pool routing.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CacheConfig holds settings for the persistent response/resolution cache.
type CacheConfig struct {
	// Path is the SQLite database file backing the cache (default "./cache.sqlite").
	Path string `json:"path" yaml:"path"`

	// TTL is how long cached provider responses and resolved results stay
	// fresh (default 7 days). Zero means entries never expire.
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// SourcesConfig holds credentials for the metadata providers. Every field
// is optional; a missing credential disables the provider that needs it
// rather than causing an error.
type SourcesConfig struct {
	// SemanticScholarAPIKey raises Semantic Scholar rate limits when set.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// CoreAPIKey authenticates against the CORE v3 API. Without it the
	// CORE source is skipped.
	CoreAPIKey string `json:"core_api_key,omitempty" yaml:"core_api_key,omitempty"`

	// UnpaywallEmail is the contact address Unpaywall requires on every
	// request. Without it the Unpaywall source is skipped.
	UnpaywallEmail string `json:"unpaywall_email,omitempty" yaml:"unpaywall_email,omitempty"`
}

// ServerConfig holds settings for the HTTP API server.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// ReadTimeout bounds reading an incoming request (default 10s).
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`

	// IdleTimeout bounds idle keep-alive connections (default 60s).
	IdleTimeout time.Duration `json:"idle_timeout" yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM (default 10s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Config groups all service configuration. It is built once at startup
// from flags, config file, environment, and the secrets directory, then
// passed explicitly to the components that need it.
type Config struct {
	HTTP    HTTPConfig    `json:"http" yaml:"http"`
	Cache   CacheConfig   `json:"cache" yaml:"cache"`
	Sources SourcesConfig `json:"sources" yaml:"sources"`
	Server  ServerConfig  `json:"server" yaml:"server"`
}

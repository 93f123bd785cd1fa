// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the resolution service over HTTP: resolve a
// bibliographic reference to an open-access PDF URL, stream the PDF
// itself, and report health. It wraps the source pipeline with
// request-level caching so identical queries short-circuit the whole
// provider chain.
package server

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-fetcher/internal/cache"
	"github.com/pdiddy/paper-fetcher/internal/norm"
	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// PDFResolver is the pipeline-facing dependency of the service. The
// production implementation is *sources.Pipeline; tests inject fakes.
type PDFResolver interface {
	Resolve(ctx context.Context, doi, title string) *types.Resolution
}

// Resolver answers fetch requests, consulting the resolution cache before
// running the pipeline and storing the shaped response afterwards.
type Resolver struct {
	pipeline PDFResolver
	cache    *cache.Store
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewResolver builds a Resolver. store may be nil to disable resolution
// caching.
func NewResolver(pipeline PDFResolver, store *cache.Store, ttl time.Duration, logger zerolog.Logger) *Resolver {
	return &Resolver{pipeline: pipeline, cache: store, ttl: ttl, logger: logger}
}

// Resolve returns the fetch response for a request. A cache hit is
// returned as-is with Cached set; a miss runs the pipeline and persists
// the outcome, including not-found.
func (r *Resolver) Resolve(ctx context.Context, req types.FetchRequest) types.FetchResponse {
	key := "resolve:" + norm.QueryKey(req.DOI, req.Title, req.Authors, req.Year)

	if r.cache != nil {
		var cached types.FetchResponse
		if ok, err := r.cache.Get(key, &cached); err == nil && ok {
			cached.Cached = true
			return cached
		}
	}

	res := r.pipeline.Resolve(ctx, norm.DOI(req.DOI), req.Title)

	resp := types.FetchResponse{Found: res.Terminal()}
	if res.Terminal() {
		resp.PDFURL = res.PDFURL
		resp.Source = res.Source
		resp.Metadata = res.Metadata
	}

	if r.cache != nil {
		if err := r.cache.Set(key, resp, r.ttl); err != nil {
			r.logger.Warn().Err(err).Msg("caching resolution failed")
		}
	}
	return resp
}

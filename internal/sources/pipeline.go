// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-fetcher/internal/httputil"
	"github.com/pdiddy/paper-fetcher/internal/norm"
	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// Pipeline chains sources in a fixed priority order. The primary tier is
// ordered by how reliably open the returned PDF links are: preprint
// servers and aggregators first, OA-locator services last. The fallback
// tier holds DOI-only sources, unlocked once a DOI is known, whether
// supplied by the caller or discovered by a primary source along the way.
type Pipeline struct {
	primary  []Source
	fallback []Source
	logger   zerolog.Logger
}

// NewPipeline wires the production source chain: arXiv, Semantic Scholar,
// OpenAlex, PubMed, and CORE in the primary tier, then Crossref and
// Unpaywall for DOI-only fallback.
func NewPipeline(client *httputil.Client, cfg types.SourcesConfig, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		primary: []Source{
			&Arxiv{Client: client},
			&SemanticScholar{Client: client, APIKey: cfg.SemanticScholarAPIKey},
			&OpenAlex{Client: client},
			&PubMed{Client: client},
			&Core{Client: client, APIKey: cfg.CoreAPIKey},
		},
		fallback: []Source{
			&Crossref{Client: client},
			&Unpaywall{Client: client, Email: cfg.UnpaywallEmail},
		},
		logger: logger,
	}
}

// NewPipelineWithSources builds a pipeline over explicit source lists.
// Tests use it to inject fakes without touching the pipeline logic.
func NewPipelineWithSources(primary, fallback []Source, logger zerolog.Logger) *Pipeline {
	return &Pipeline{primary: primary, fallback: fallback, logger: logger}
}

// Resolve runs the query through both tiers and returns the first
// terminal resolution, or nil when no source produced a PDF link.
//
// A failing source is logged and skipped; one provider's outage never
// aborts the pipeline. A primary source that returns a partial result
// contributes its DOI to the fallback tier, first discovery wins, and a
// DOI supplied by the caller is never overwritten.
func (p *Pipeline) Resolve(ctx context.Context, doi, title string) *types.Resolution {
	inputDOI := norm.DOI(doi)
	foundDOI := inputDOI
	foundBy := ""

	for _, src := range p.primary {
		res, err := src.Fetch(ctx, inputDOI, title)
		if err != nil {
			p.logger.Debug().Err(err).Str("source", src.Name()).Msg("source lookup failed")
			continue
		}
		if res == nil {
			continue
		}
		if res.Terminal() {
			p.logger.Info().Str("source", src.Name()).Str("pdf_url", res.PDFURL).Msg("resolved")
			return res
		}
		if res.DOI != "" && foundDOI == "" {
			foundDOI = norm.DOI(res.DOI)
			foundBy = src.Name()
			p.logger.Debug().Str("source", src.Name()).Str("doi", foundDOI).Msg("discovered doi")
		}
	}

	if foundDOI == "" {
		return nil
	}

	for _, src := range p.fallback {
		res, err := src.Fetch(ctx, foundDOI, "")
		if err != nil {
			p.logger.Debug().Err(err).Str("source", src.Name()).Msg("source lookup failed")
			continue
		}
		if !res.Terminal() {
			continue
		}
		if foundBy != "" {
			if res.Metadata == nil {
				res.Metadata = map[string]any{}
			}
			res.Metadata["doi_found_by"] = foundBy
		}
		p.logger.Info().Str("source", src.Name()).Str("pdf_url", res.PDFURL).Msg("resolved via doi fallback")
		return res
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"

	"github.com/pdiddy/paper-fetcher/internal/httputil"
	"github.com/pdiddy/paper-fetcher/internal/norm"
	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// coreAPIBase is the CORE v3 works search endpoint. Declared as a var so
// tests can substitute an httptest server.
var coreAPIBase = "https://api.core.ac.uk/v3/search/works"

// Core queries the CORE aggregator. It needs an API key; without one it
// self-excludes. DOI and title queries both go through the search
// endpoint, and a hit without a download link still yields a partial
// result when it carries a DOI.
type Core struct {
	Client *httputil.Client
	APIKey string
}

// Name returns the source identifier.
func (s *Core) Name() string { return "core" }

// Fetch searches CORE for the DOI or title and extracts a full-text link.
func (s *Core) Fetch(ctx context.Context, doi, title string) (*types.Resolution, error) {
	if s.APIKey == "" {
		return nil, nil
	}

	var query string
	switch {
	case doi != "":
		query = doi
	case title != "":
		query = title
	default:
		return nil, nil
	}

	url := fmt.Sprintf("%s?q=%s&limit=1", coreAPIBase, norm.TitleQuery(query))
	headers := map[string]string{"Authorization": "Bearer " + s.APIKey}

	var sr coreSearchResponse
	if err := s.Client.GetJSON(ctx, url, headers, &sr); err != nil {
		return nil, err
	}
	if len(sr.Results) == 0 {
		return nil, nil
	}

	hit := sr.Results[0]
	metadata := map[string]any{"title": hit.Title}
	if hit.DOI != "" {
		metadata["doi"] = hit.DOI
	}

	pdf := hit.DownloadURL
	if pdf == "" {
		pdf = hit.FullTextLink
	}
	if pdf != "" {
		return &types.Resolution{PDFURL: pdf, Metadata: metadata, Source: s.Name()}, nil
	}
	if hit.DOI != "" {
		return &types.Resolution{DOI: hit.DOI, Metadata: metadata, Source: s.Name()}, nil
	}
	return nil, nil
}

// CORE API JSON structures.
type coreSearchResponse struct {
	Results []coreWork `json:"results"`
}

type coreWork struct {
	Title        string `json:"title"`
	DOI          string `json:"doi"`
	DownloadURL  string `json:"downloadUrl"`
	FullTextLink string `json:"fullTextLink"`
}

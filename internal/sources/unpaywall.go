// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"

	"github.com/pdiddy/paper-fetcher/internal/httputil"
	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// unpaywallAPIBase is the Unpaywall v2 endpoint. Declared as a var so
// tests can substitute an httptest server.
var unpaywallAPIBase = "https://api.unpaywall.org/v2"

// Unpaywall locates legal open-access copies by DOI. It requires a
// configured contact email (Unpaywall's terms) and self-excludes without
// one; title queries are not supported.
type Unpaywall struct {
	Client *httputil.Client
	Email  string
}

// Name returns the source identifier.
func (s *Unpaywall) Name() string { return "unpaywall" }

// Fetch looks up the DOI and returns the best open-access location.
func (s *Unpaywall) Fetch(ctx context.Context, doi, _ string) (*types.Resolution, error) {
	if doi == "" || s.Email == "" {
		return nil, nil
	}

	url := fmt.Sprintf("%s/%s?email=%s", unpaywallAPIBase, doi, s.Email)
	var work unpaywallResponse
	if err := s.Client.GetJSON(ctx, url, nil, &work); err != nil {
		return nil, err
	}

	if work.BestOALocation == nil {
		return nil, nil
	}
	pdf := work.BestOALocation.URLForPDF
	if pdf == "" {
		pdf = work.BestOALocation.URL
	}
	if pdf == "" {
		return nil, nil
	}

	return &types.Resolution{
		PDFURL:   pdf,
		Metadata: map[string]any{"doi": work.DOI, "title": work.Title},
		Source:   s.Name(),
	}, nil
}

// Unpaywall API JSON structures.
type unpaywallResponse struct {
	DOI            string             `json:"doi"`
	Title          string             `json:"title"`
	BestOALocation *unpaywallLocation `json:"best_oa_location"`
}

type unpaywallLocation struct {
	URL       string `json:"url"`
	URLForPDF string `json:"url_for_pdf"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"

	"github.com/pdiddy/paper-fetcher/internal/httputil"
	"github.com/pdiddy/paper-fetcher/internal/norm"
	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// openAlexAPIBase is the OpenAlex works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org/works"

// OpenAlex queries the OpenAlex works API. DOI lookups address the work
// directly through the doi.org-prefixed path; title lookups take the
// first search hit and require a title match. Works without an
// open-access link still yield a partial result when they carry a DOI.
type OpenAlex struct {
	Client *httputil.Client
}

// Name returns the source identifier.
func (s *OpenAlex) Name() string { return "openalex" }

// Fetch resolves via direct work lookup or title search.
func (s *OpenAlex) Fetch(ctx context.Context, doi, title string) (*types.Resolution, error) {
	if doi != "" {
		url := fmt.Sprintf("%s/https://doi.org/%s", openAlexAPIBase, doi)
		var work openAlexWork
		if err := s.Client.GetJSON(ctx, url, nil, &work); err != nil {
			return nil, err
		}
		return s.resolution(work), nil
	}

	if title == "" {
		return nil, nil
	}

	url := fmt.Sprintf("%s?search=%s&per-page=1", openAlexAPIBase, norm.TitleQuery(title))
	var sr openAlexSearchResponse
	if err := s.Client.GetJSON(ctx, url, nil, &sr); err != nil {
		return nil, err
	}
	if len(sr.Results) == 0 {
		return nil, nil
	}

	hit := sr.Results[0]
	if !norm.TitleMatch(title, hit.Title) {
		return nil, nil
	}
	return s.resolution(hit), nil
}

// resolution maps a work to a terminal or partial result, or nil when it
// has neither an open-access link nor a DOI.
func (s *OpenAlex) resolution(work openAlexWork) *types.Resolution {
	metadata := map[string]any{"id": work.ID, "title": work.Title}
	if work.DOI != "" {
		metadata["doi"] = work.DOI
	}

	if pdf := work.pdfURL(); pdf != "" {
		return &types.Resolution{PDFURL: pdf, Metadata: metadata, Source: s.Name()}
	}
	if work.DOI != "" {
		return &types.Resolution{DOI: work.DOI, Metadata: metadata, Source: s.Name()}
	}
	return nil
}

// OpenAlex API JSON structures.
type openAlexSearchResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID              string           `json:"id"`
	DOI             string           `json:"doi"`
	Title           string           `json:"title"`
	OpenAccess      openAlexOA       `json:"open_access"`
	PrimaryLocation openAlexLocation `json:"primary_location"`
}

type openAlexOA struct {
	OAURL string `json:"oa_url"`
}

type openAlexLocation struct {
	PDFURL string `json:"pdf_url"`
}

// pdfURL prefers the open-access URL over the primary location's PDF link.
func (w openAlexWork) pdfURL() string {
	if w.OpenAccess.OAURL != "" {
		return w.OpenAccess.OAURL
	}
	return w.PrimaryLocation.PDFURL
}

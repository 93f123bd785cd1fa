// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"

	"github.com/pdiddy/paper-fetcher/internal/httputil"
	"github.com/pdiddy/paper-fetcher/internal/norm"
	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// semanticAPIBase is the Semantic Scholar Graph API paper endpoint.
// Declared as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper"

const semanticFields = "title,openAccessPdf,externalIds,url"

// SemanticScholar queries the Semantic Scholar Graph API. DOI lookups hit
// the direct paper endpoint; title lookups search up to five candidates
// and require a title match, since the search endpoint happily returns
// loosely related papers. A hit without an open-access PDF still yields a
// partial result when it carries a DOI.
type SemanticScholar struct {
	Client *httputil.Client
	APIKey string
}

// Name returns the source identifier.
func (s *SemanticScholar) Name() string { return "semantic_scholar" }

// Fetch resolves via DOI lookup or title search.
func (s *SemanticScholar) Fetch(ctx context.Context, doi, title string) (*types.Resolution, error) {
	if doi != "" {
		return s.fetchByDOI(ctx, doi)
	}
	if title != "" {
		return s.fetchByTitle(ctx, title)
	}
	return nil, nil
}

func (s *SemanticScholar) fetchByDOI(ctx context.Context, doi string) (*types.Resolution, error) {
	url := fmt.Sprintf("%s/DOI:%s?fields=%s", semanticAPIBase, doi, semanticFields)

	var paper semanticPaper
	if err := s.Client.GetJSON(ctx, url, s.headers(), &paper); err != nil {
		return nil, err
	}
	return s.resolution(paper), nil
}

func (s *SemanticScholar) fetchByTitle(ctx context.Context, title string) (*types.Resolution, error) {
	url := fmt.Sprintf("%s/search?query=%s&limit=5&fields=%s",
		semanticAPIBase, norm.TitleQuery(title), semanticFields)

	var sr semanticSearchResponse
	if err := s.Client.GetJSON(ctx, url, s.headers(), &sr); err != nil {
		return nil, err
	}

	// First pass: a title-matched hit with an open-access PDF.
	for _, hit := range sr.Data {
		if !norm.TitleMatch(title, hit.Title) {
			continue
		}
		if hit.OpenAccessPDF != nil && hit.OpenAccessPDF.URL != "" {
			return s.resolution(hit), nil
		}
	}
	// Second pass: a title-matched hit with at least a DOI.
	for _, hit := range sr.Data {
		if !norm.TitleMatch(title, hit.Title) {
			continue
		}
		if hit.ExternalIDs.DOI != "" {
			return s.resolution(hit), nil
		}
	}
	return nil, nil
}

// resolution maps a paper record to a terminal or partial result, or nil
// when it carries neither a PDF link nor a DOI.
func (s *SemanticScholar) resolution(paper semanticPaper) *types.Resolution {
	metadata := map[string]any{"title": paper.Title, "url": paper.URL}
	if paper.ExternalIDs.DOI != "" {
		metadata["doi"] = paper.ExternalIDs.DOI
	}

	if paper.OpenAccessPDF != nil && paper.OpenAccessPDF.URL != "" {
		return &types.Resolution{
			PDFURL:   paper.OpenAccessPDF.URL,
			Metadata: metadata,
			Source:   s.Name(),
		}
	}
	if paper.ExternalIDs.DOI != "" {
		return &types.Resolution{
			DOI:      paper.ExternalIDs.DOI,
			Metadata: metadata,
			Source:   s.Name(),
		}
	}
	return nil
}

func (s *SemanticScholar) headers() map[string]string {
	if s.APIKey == "" {
		return nil
	}
	return map[string]string{"x-api-key": s.APIKey}
}

// Semantic Scholar API JSON structures.
type semanticSearchResponse struct {
	Data []semanticPaper `json:"data"`
}

type semanticPaper struct {
	Title         string             `json:"title"`
	URL           string             `json:"url"`
	OpenAccessPDF *semanticOAPDF     `json:"openAccessPdf"`
	ExternalIDs   semanticExternalID `json:"externalIds"`
}

type semanticOAPDF struct {
	URL string `json:"url"`
}

type semanticExternalID struct {
	DOI string `json:"DOI"`
}

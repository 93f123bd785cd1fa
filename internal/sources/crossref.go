// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"

	"github.com/pdiddy/paper-fetcher/internal/httputil"
	"github.com/pdiddy/paper-fetcher/internal/norm"
	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// crossrefAPIBase is the Crossref works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// Crossref queries the Crossref works API for a publisher-hosted PDF
// link. Only a link with content-type application/pdf counts; Crossref
// records always carry the DOI the caller already has, so there is no
// partial-DOI fallback.
type Crossref struct {
	Client *httputil.Client
}

// Name returns the source identifier.
func (s *Crossref) Name() string { return "crossref" }

// Fetch resolves a DOI directly or searches by title and takes the
// first hit.
func (s *Crossref) Fetch(ctx context.Context, doi, title string) (*types.Resolution, error) {
	if doi != "" {
		url := fmt.Sprintf("%s/%s", crossrefAPIBase, doi)
		var cr crossrefWorkResponse
		if err := s.Client.GetJSON(ctx, url, nil, &cr); err != nil {
			return nil, err
		}
		return s.resolution(cr.Message), nil
	}

	if title == "" {
		return nil, nil
	}

	url := fmt.Sprintf("%s?query.title=%s&rows=1", crossrefAPIBase, norm.TitleQuery(title))
	var sr crossrefSearchResponse
	if err := s.Client.GetJSON(ctx, url, nil, &sr); err != nil {
		return nil, err
	}
	if len(sr.Message.Items) == 0 {
		return nil, nil
	}
	return s.resolution(sr.Message.Items[0]), nil
}

// resolution returns a terminal result for the first application/pdf
// link, or nil when the work has none.
func (s *Crossref) resolution(work crossrefWork) *types.Resolution {
	for _, link := range work.Link {
		if link.ContentType == "application/pdf" && link.URL != "" {
			metadata := map[string]any{"doi": work.DOI}
			if len(work.Title) > 0 {
				metadata["title"] = work.Title[0]
			}
			return &types.Resolution{PDFURL: link.URL, Metadata: metadata, Source: s.Name()}
		}
	}
	return nil
}

// Crossref API JSON structures.
type crossrefWorkResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefSearchResponse struct {
	Message crossrefItems `json:"message"`
}

type crossrefItems struct {
	Items []crossrefWork `json:"items"`
}

type crossrefWork struct {
	DOI   string         `json:"DOI"`
	Title []string       `json:"title"`
	Link  []crossrefLink `json:"link"`
}

type crossrefLink struct {
	URL         string `json:"URL"`
	ContentType string `json:"content-type"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/pdiddy/paper-fetcher/internal/httputil"
	"github.com/pdiddy/paper-fetcher/internal/norm"
	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// arxivAPIBase is the arXiv Atom search endpoint. Declared as a var so
// tests can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// Arxiv queries the arXiv API by DOI or title. arXiv hosts the PDF
// itself, so a hit always yields a terminal result; there is no
// partial-DOI fallback.
type Arxiv struct {
	Client *httputil.Client
}

// Name returns the source identifier.
func (s *Arxiv) Name() string { return "arxiv" }

// Fetch looks up the first matching arXiv entry and synthesizes its PDF
// URL from the abstract-page id.
func (s *Arxiv) Fetch(ctx context.Context, doi, title string) (*types.Resolution, error) {
	var query string
	switch {
	case doi != "":
		query = "doi:" + doi
	case title != "":
		query = fmt.Sprintf("ti:%q", title)
	default:
		return nil, nil
	}

	url := fmt.Sprintf("%s?search_query=%s&max_results=1", arxivAPIBase, norm.TitleQuery(query))
	text, err := s.Client.GetText(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	var feed arxivFeed
	if err := xml.Unmarshal([]byte(text), &feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}
	if len(feed.Entries) == 0 {
		return nil, nil
	}

	entry := feed.Entries[0]
	_, arxivID, found := strings.Cut(entry.ID, "/abs/")
	if !found {
		return nil, nil
	}

	return &types.Resolution{
		PDFURL:   "https://arxiv.org/pdf/" + arxivID + ".pdf",
		Metadata: map[string]any{"title": strings.TrimSpace(entry.Title)},
		Source:   s.Name(),
	}, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID    string `xml:"id"`
	Title string `xml:"title"`
}

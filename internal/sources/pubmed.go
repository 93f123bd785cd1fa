// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/pdiddy/paper-fetcher/internal/httputil"
	"github.com/pdiddy/paper-fetcher/internal/norm"
	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// PubMed endpoints. Declared as vars so tests can substitute httptest
// servers.
var (
	pubmedESearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedIDConvBase  = "https://www.ncbi.nlm.nih.gov/pmc/utils/idconv/v1.0/"
	pmcArticleBase    = "https://www.ncbi.nlm.nih.gov/pmc/articles/"
)

// PubMed resolves through PubMed Central: a DOI (or a PMID found via
// esearch for title queries) is run through the NCBI id converter, and a
// PMCID means the full text is freely available at a synthesized PMC
// article URL. No PMCID means no result; there is no partial-DOI
// fallback.
type PubMed struct {
	Client *httputil.Client
}

// Name returns the source identifier.
func (s *PubMed) Name() string { return "pubmed" }

// Fetch resolves a DOI directly through the id converter, or searches
// PubMed by title first to obtain a PMID.
func (s *PubMed) Fetch(ctx context.Context, doi, title string) (*types.Resolution, error) {
	if doi != "" {
		pmcid, err := s.pmcidFromIDs(ctx, doi)
		if err != nil {
			return nil, err
		}
		if pmcid == "" {
			return nil, nil
		}
		return &types.Resolution{
			PDFURL:   pmcPDFURL(pmcid),
			Metadata: map[string]any{"pmcid": pmcid},
			Source:   s.Name(),
		}, nil
	}

	if title == "" {
		return nil, nil
	}

	url := fmt.Sprintf("%s?db=pubmed&retmax=1&term=%s", pubmedESearchBase, norm.TitleQuery(title))
	text, err := s.Client.GetText(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	var sr esearchResponse
	if err := xml.Unmarshal([]byte(text), &sr); err != nil {
		return nil, fmt.Errorf("parsing esearch response: %w", err)
	}
	if len(sr.IDs) == 0 {
		return nil, nil
	}
	pmid := sr.IDs[0]

	pmcid, err := s.pmcidFromIDs(ctx, pmid)
	if err != nil {
		return nil, err
	}
	if pmcid == "" {
		return nil, nil
	}
	return &types.Resolution{
		PDFURL:   pmcPDFURL(pmcid),
		Metadata: map[string]any{"pmcid": pmcid, "pmid": pmid},
		Source:   s.Name(),
	}, nil
}

// pmcidFromIDs runs an identifier (DOI or PMID) through the NCBI id
// converter and returns the PMCID, or "" when the record has none.
func (s *PubMed) pmcidFromIDs(ctx context.Context, ids string) (string, error) {
	url := fmt.Sprintf("%s?ids=%s", pubmedIDConvBase, ids)
	text, err := s.Client.GetText(ctx, url, nil)
	if err != nil {
		return "", err
	}

	var conv idconvResponse
	if err := xml.Unmarshal([]byte(text), &conv); err != nil {
		return "", fmt.Errorf("parsing id converter response: %w", err)
	}
	if conv.Record == nil {
		return "", nil
	}
	return conv.Record.PMCID, nil
}

func pmcPDFURL(pmcid string) string {
	return pmcArticleBase + pmcid + "/pdf/"
}

// NCBI XML structures.
type esearchResponse struct {
	IDs []string `xml:"IdList>Id"`
}

type idconvResponse struct {
	Record *idconvRecord `xml:"record"`
}

type idconvRecord struct {
	PMCID string `xml:"pmcid,attr"`
}

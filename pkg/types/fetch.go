// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-fetcher service:
// the fetch request/response shapes exposed over HTTP and the resolution
// result passed between the source pipeline and the API boundary.
package types

// FetchRequest identifies a paper to resolve. At least one of DOI or Title
// must be set for a resolution to have any chance of succeeding; Authors
// and Year only contribute to the cache fingerprint.
type FetchRequest struct {
	// DOI is the Digital Object Identifier, with or without a doi.org prefix.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Title is the paper title, used for search-endpoint lookups.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Authors is a free-form author string. Not sent to providers.
	Authors string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the publication year. Not sent to providers.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`
}

// IsEmpty reports whether the request carries neither a DOI nor a title.
func (r FetchRequest) IsEmpty() bool {
	return r.DOI == "" && r.Title == ""
}

// Resolution is the outcome of querying a single source, or of the whole
// pipeline. A resolution with PDFURL set is terminal: the pipeline stops
// and returns it. One with only DOI set is partial: it feeds the DOI-only
// fallback sources but does not stop the pipeline by itself.
type Resolution struct {
	// PDFURL is a directly downloadable open-access PDF link.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// DOI is a DOI discovered by the source when no PDF link was available.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Metadata carries provider-specific fields (title, ids, locations).
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Source names the provider that produced this resolution
	// (e.g. "arxiv", "semantic_scholar").
	Source string `json:"source" yaml:"source"`
}

// Terminal reports whether the resolution carries a usable PDF URL.
func (r *Resolution) Terminal() bool {
	return r != nil && r.PDFURL != ""
}

// FetchResponse is the API-level resolution outcome. It is also the shape
// persisted in the cache, so a later identical request can short-circuit
// the pipeline entirely.
type FetchResponse struct {
	// Found reports whether any source produced a downloadable PDF link.
	Found bool `json:"found" yaml:"found"`

	// PDFURL is the resolved open-access PDF link when Found is true.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// Source names the provider that supplied the link.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Metadata carries the winning provider's metadata.
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Cached reports whether this response was served from the resolution
	// cache rather than a fresh pipeline run.
	Cached bool `json:"cached" yaml:"cached"`
}

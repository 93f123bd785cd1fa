// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAlexFetchByDOIPrefersOAURL(t *testing.T) {
	var captured *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(r.Context())
		fmt.Fprint(w, `{"id":"https://openalex.org/W123","doi":"https://doi.org/10.1/x",
			"title":"Some Work",
			"open_access":{"oa_url":"https://oa.example/x.pdf"},
			"primary_location":{"pdf_url":"https://publisher.example/x.pdf"}}`)
	}))
	defer ts.Close()
	swapBase(t, &openAlexAPIBase, ts.URL)

	s := &OpenAlex{Client: newTestClient()}
	res, err := s.Fetch(context.Background(), "10.1/x", "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if !strings.Contains(captured.URL.Path, "doi.org/10.1/x") {
		t.Errorf("path = %q, want doi.org-prefixed work lookup", captured.URL.Path)
	}
	if res.PDFURL != "https://oa.example/x.pdf" {
		t.Errorf("PDFURL = %q, want oa_url preferred over primary_location", res.PDFURL)
	}
}

func TestOpenAlexFallsBackToPrimaryLocation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"https://openalex.org/W123","doi":"https://doi.org/10.1/x",
			"title":"Some Work",
			"open_access":{},
			"primary_location":{"pdf_url":"https://publisher.example/x.pdf"}}`)
	}))
	defer ts.Close()
	swapBase(t, &openAlexAPIBase, ts.URL)

	s := &OpenAlex{Client: newTestClient()}
	res, err := s.Fetch(context.Background(), "10.1/x", "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.PDFURL != "https://publisher.example/x.pdf" {
		t.Errorf("PDFURL = %q", res.PDFURL)
	}
}

func TestOpenAlexFetchByDOIPartial(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"https://openalex.org/W123","doi":"https://doi.org/10.1/x",
			"title":"Closed Work","open_access":{},"primary_location":{}}`)
	}))
	defer ts.Close()
	swapBase(t, &openAlexAPIBase, ts.URL)

	s := &OpenAlex{Client: newTestClient()}
	res, err := s.Fetch(context.Background(), "10.1/x", "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Terminal() {
		t.Fatalf("result should be partial, got %+v", res)
	}
	if res.DOI != "https://doi.org/10.1/x" {
		t.Errorf("DOI = %q, want raw doi field for pipeline canonicalization", res.DOI)
	}
}

func TestOpenAlexTitleSearchRequiresMatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"id":"https://openalex.org/W9","doi":"https://doi.org/10.1/y",
			"title":"Entirely Different Subject Matter",
			"open_access":{"oa_url":"https://oa.example/y.pdf"}}]}`)
	}))
	defer ts.Close()
	swapBase(t, &openAlexAPIBase, ts.URL)

	s := &OpenAlex{Client: newTestClient()}
	res, err := s.Fetch(context.Background(), "", "Deep Learning for Protein Folding")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res != nil {
		t.Errorf("Fetch = %+v, want nil for mismatched first hit", res)
	}
}

func TestOpenAlexTitleSearchMatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"id":"https://openalex.org/W9","doi":"https://doi.org/10.1/y",
			"title":"Deep Learning for Protein Folding",
			"open_access":{"oa_url":"https://oa.example/y.pdf"}}]}`)
	}))
	defer ts.Close()
	swapBase(t, &openAlexAPIBase, ts.URL)

	s := &OpenAlex{Client: newTestClient()}
	res, err := s.Fetch(context.Background(), "", "Deep Learning for Protein Folding")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.PDFURL != "https://oa.example/y.pdf" {
		t.Errorf("PDFURL = %q", res.PDFURL)
	}
}

func TestOpenAlexNoInput(t *testing.T) {
	s := &OpenAlex{Client: newTestClient()}
	res, err := s.Fetch(context.Background(), "", "")
	if err != nil || res != nil {
		t.Errorf("Fetch(no input) = (%+v, %v), want (nil, nil)", res, err)
	}
}

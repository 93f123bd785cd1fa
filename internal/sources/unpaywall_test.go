// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestUnpaywallWithoutEmailSelfExcludes(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer ts.Close()
	swapBase(t, &unpaywallAPIBase, ts.URL)

	s := &Unpaywall{Client: newTestClient()}
	res, err := s.Fetch(context.Background(), "10.1/x", "")
	if err != nil || res != nil {
		t.Errorf("Fetch = (%+v, %v), want (nil, nil) without contact email", res, err)
	}
	if calls != 0 {
		t.Errorf("Unpaywall was queried %d times without an email", calls)
	}
}

func TestUnpaywallDOIOnly(t *testing.T) {
	s := &Unpaywall{Client: newTestClient(), Email: "oa@example.com"}
	res, err := s.Fetch(context.Background(), "", "a title is not enough")
	if err != nil || res != nil {
		t.Errorf("Fetch(title only) = (%+v, %v), want (nil, nil)", res, err)
	}
}

func TestUnpaywallPrefersURLForPDF(t *testing.T) {
	var captured *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(r.Context())
		fmt.Fprint(w, `{"doi":"10.1/x","title":"Some Paper",
			"best_oa_location":{"url":"https://oa.example/landing","url_for_pdf":"https://oa.example/x.pdf"}}`)
	}))
	defer ts.Close()
	swapBase(t, &unpaywallAPIBase, ts.URL)

	s := &Unpaywall{Client: newTestClient(), Email: "oa@example.com"}
	res, err := s.Fetch(context.Background(), "10.1/x", "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if got := captured.URL.Query().Get("email"); got != "oa@example.com" {
		t.Errorf("email param = %q", got)
	}
	if res.PDFURL != "https://oa.example/x.pdf" {
		t.Errorf("PDFURL = %q, want url_for_pdf preferred", res.PDFURL)
	}
}

func TestUnpaywallFallsBackToLocationURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"doi":"10.1/x","best_oa_location":{"url":"https://oa.example/landing"}}`)
	}))
	defer ts.Close()
	swapBase(t, &unpaywallAPIBase, ts.URL)

	s := &Unpaywall{Client: newTestClient(), Email: "oa@example.com"}
	res, err := s.Fetch(context.Background(), "10.1/x", "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.PDFURL != "https://oa.example/landing" {
		t.Errorf("PDFURL = %q", res.PDFURL)
	}
}

func TestUnpaywallNoOALocation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"doi":"10.1/x","best_oa_location":null}`)
	}))
	defer ts.Close()
	swapBase(t, &unpaywallAPIBase, ts.URL)

	s := &Unpaywall{Client: newTestClient(), Email: "oa@example.com"}
	res, err := s.Fetch(context.Background(), "10.1/x", "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res != nil {
		t.Errorf("Fetch = %+v, want nil", res)
	}
}

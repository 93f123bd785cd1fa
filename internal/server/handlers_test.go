// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-fetcher/internal/httputil"
	"github.com/pdiddy/paper-fetcher/pkg/types"
)

func newTestServer(t *testing.T, fp *fakePipeline) *httptest.Server {
	t.Helper()
	resolver := NewResolver(fp, openTestCache(t), time.Hour, zerolog.Nop())
	client := httputil.NewClient(types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "paper-fetcher-test/0.1"}, nil, 0)
	s := New(types.ServerConfig{Addr: ":0"}, resolver, client, zerolog.Nop())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, wantStatus int) map[string]any {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &fakePipeline{})
	out := getJSON(t, ts.URL+"/health", http.StatusOK)
	assert.Equal(t, "ok", out["status"])
}

func TestFetchGetFound(t *testing.T) {
	fp := &fakePipeline{res: &types.Resolution{
		PDFURL:   "https://arxiv.org/pdf/0801.2156.pdf",
		Source:   "arxiv",
		Metadata: map[string]any{"title": "Casimir Forces"},
	}}
	ts := newTestServer(t, fp)

	out := getJSON(t, ts.URL+"/fetch?doi=10.1038/nphys1170", http.StatusOK)
	assert.Equal(t, true, out["found"])
	assert.Equal(t, "arxiv", out["source"])
	assert.Equal(t, "https://arxiv.org/pdf/0801.2156.pdf", out["pdf_url"])
	assert.Equal(t, false, out["cached"])

	out = getJSON(t, ts.URL+"/fetch?doi=10.1038/nphys1170", http.StatusOK)
	assert.Equal(t, true, out["cached"], "repeat request should come from cache")
}

func TestFetchGetNotFound(t *testing.T) {
	ts := newTestServer(t, &fakePipeline{})
	out := getJSON(t, ts.URL+"/fetch?title=unknown+paper", http.StatusOK)
	assert.Equal(t, false, out["found"])
	_, hasURL := out["pdf_url"]
	assert.False(t, hasURL)
}

func TestFetchGetInvalidYear(t *testing.T) {
	ts := newTestServer(t, &fakePipeline{})
	out := getJSON(t, ts.URL+"/fetch?title=x&year=abc", http.StatusBadRequest)
	assert.Contains(t, out["error"], "year")
}

func TestFetchPost(t *testing.T) {
	fp := &fakePipeline{res: &types.Resolution{PDFURL: "https://oa.example/x.pdf", Source: "openalex"}}
	ts := newTestServer(t, fp)

	body := `{"doi":"10.1/x","title":"Some Paper","year":2020}`
	resp, err := http.Post(ts.URL+"/fetch", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, true, out["found"])
	assert.Equal(t, "openalex", out["source"])
}

func TestFetchPostMalformedBody(t *testing.T) {
	ts := newTestServer(t, &fakePipeline{})
	resp, err := http.Post(ts.URL+"/fetch", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDownloadNotFound(t *testing.T) {
	ts := newTestServer(t, &fakePipeline{})
	out := getJSON(t, ts.URL+"/download?title=unknown", http.StatusNotFound)
	assert.Equal(t, "PDF not found", out["error"])
}

func TestDownloadStreamsPDF(t *testing.T) {
	pdf := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "%PDF-1.4 fake body")
	}))
	defer pdf.Close()

	fp := &fakePipeline{res: &types.Resolution{PDFURL: pdf.URL, Source: "unpaywall"}}
	ts := newTestServer(t, fp)

	resp, err := http.Get(ts.URL + "/download?doi=10.1/x")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake body", string(body))
}

func TestDownloadUpstreamErrorIsBadGateway(t *testing.T) {
	pdf := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	defer pdf.Close()

	fp := &fakePipeline{res: &types.Resolution{PDFURL: pdf.URL, Source: "core"}}
	ts := newTestServer(t, fp)

	out := getJSON(t, ts.URL+"/download?doi=10.1/x", http.StatusBadGateway)
	assert.Contains(t, out["error"], "fetching resolved PDF failed")
}

func TestDownloadUnreachableUpstreamIsBadGateway(t *testing.T) {
	pdf := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := pdf.URL
	pdf.Close()

	fp := &fakePipeline{res: &types.Resolution{PDFURL: url, Source: "core"}}
	ts := newTestServer(t, fp)

	getJSON(t, ts.URL+"/download?doi=10.1/x", http.StatusBadGateway)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/pdiddy/paper-fetcher/pkg/types"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFetchGet(w http.ResponseWriter, r *http.Request) {
	req, err := requestFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.resolver.Resolve(r.Context(), req))
}

func (s *Server) handleFetchPost(w http.ResponseWriter, r *http.Request) {
	var req types.FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	writeJSON(w, http.StatusOK, s.resolver.Resolve(r.Context(), req))
}

// handleDownload resolves the reference and streams the PDF back. A
// failed resolution is a 404; a failed fetch of the already-resolved URL
// is a 502, since resolution succeeded but retrieval did not.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	req, err := requestFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := s.resolver.Resolve(r.Context(), req)
	if !resp.Found || resp.PDFURL == "" {
		writeError(w, http.StatusNotFound, "PDF not found")
		return
	}

	upstream, err := s.client.Get(r.Context(), resp.PDFURL)
	if err != nil {
		s.logger.Warn().Err(err).Str("pdf_url", resp.PDFURL).Msg("pdf download failed")
		writeError(w, http.StatusBadGateway, "fetching resolved PDF failed")
		return
	}
	defer upstream.Body.Close()

	if upstream.StatusCode != http.StatusOK {
		s.logger.Warn().Int("status", upstream.StatusCode).Str("pdf_url", resp.PDFURL).Msg("pdf download failed")
		writeError(w, http.StatusBadGateway, "fetching resolved PDF failed")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, upstream.Body); err != nil {
		// Headers are gone; all we can do is log the broken stream.
		s.logger.Warn().Err(err).Msg("pdf stream interrupted")
	}
}

func requestFromQuery(r *http.Request) (types.FetchRequest, error) {
	q := r.URL.Query()
	req := types.FetchRequest{
		DOI:     q.Get("doi"),
		Title:   q.Get("title"),
		Authors: q.Get("authors"),
	}
	if yearStr := q.Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return types.FetchRequest{}, errInvalidYear
		}
		req.Year = year
	}
	return req, nil
}

var errInvalidYear = errors.New("year must be an integer")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

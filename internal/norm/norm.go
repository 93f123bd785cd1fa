// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package norm provides identifier and title normalization shared by the
// source adapters, the resolution pipeline, and the cache: DOI
// canonicalization, cache-key fingerprinting, URL-safe query encoding,
// and token-set title similarity scoring.
package norm

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

// MatchThreshold is the minimum Jaccard similarity for a search hit to be
// accepted as the paper the caller asked about. Providers that search by
// free text (Semantic Scholar, OpenAlex) return loosely related papers;
// this is the sole defense against handing back the wrong paper's PDF.
const MatchThreshold = 0.5

// DOI canonicalizes a DOI string: whitespace trimmed, the doi.org URL
// prefixes removed, lowercased. Two DOIs are equivalent iff their
// canonical forms are equal. Idempotent and total on any input.
func DOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.ReplaceAll(doi, "https://doi.org/", "")
	doi = strings.ReplaceAll(doi, "http://doi.org/", "")
	return strings.ToLower(doi)
}

// QueryKey fingerprints a lookup request for caching. The key is the
// SHA-256 hex digest of the pipe-joined, lowercased tuple
// (doi, title, authors, year), so two requests that differ only in
// casing or surrounding whitespace share a cache entry. Stable across
// process restarts.
func QueryKey(doi, title, authors string, year int) string {
	yearStr := ""
	if year != 0 {
		yearStr = strconv.Itoa(year)
	}
	payload := strings.Join([]string{
		DOI(doi),
		strings.ToLower(strings.TrimSpace(title)),
		strings.ToLower(strings.TrimSpace(authors)),
		yearStr,
	}, "|")
	return fmt.Sprintf("%x", sha256.Sum256([]byte(payload)))
}

// TitleQuery collapses runs of whitespace to single spaces, trims, and
// percent-encodes the result for inclusion in a URL query string.
func TitleQuery(title string) string {
	collapsed := strings.Join(strings.Fields(title), " ")
	return strings.ReplaceAll(url.QueryEscape(collapsed), "+", "%20")
}

// Title returns a lowercased form of title with every non-word character
// replaced by a space and whitespace collapsed. Empty input yields "".
func Title(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// TitleSimilarity scores how alike two titles are as the Jaccard
// similarity of their word sets. Tokens of one or two runes are noise
// (articles, initials) and are excluded. Returns 0.0 when either title
// has no tokens left after filtering.
func TitleSimilarity(a, b string) float64 {
	setA := tokenSet(Title(a))
	setB := tokenSet(Title(b))
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// TitleMatch reports whether a search hit's title is similar enough to
// the searched title to be treated as the same paper.
func TitleMatch(search, result string) bool {
	return TitleSimilarity(search, result) >= MatchThreshold
}

func tokenSet(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(normalized) {
		if len([]rune(w)) > 2 {
			set[w] = struct{}{}
		}
	}
	return set
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"testing"
	"time"

	"github.com/pdiddy/paper-fetcher/internal/httputil"
	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// newTestClient returns an outbound client without response memoization,
// so every test request reaches the httptest server.
func newTestClient() *httputil.Client {
	return httputil.NewClient(types.HTTPConfig{
		Timeout:   5 * time.Second,
		UserAgent: "paper-fetcher-test/0.1",
	}, nil, 0)
}

// swapBase substitutes an API base URL var for the duration of a test.
func swapBase(t *testing.T, base *string, url string) {
	t.Helper()
	old := *base
	*base = url
	t.Cleanup(func() { *base = old })
}

// fakeSource is a scriptable Source for pipeline tests.
type fakeSource struct {
	name    string
	res     *types.Resolution
	err     error
	calls   int
	lastDOI string
	fetchFn func(ctx context.Context, doi, title string) (*types.Resolution, error)
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context, doi, title string) (*types.Resolution, error) {
	f.calls++
	f.lastDOI = doi
	if f.fetchFn != nil {
		return f.fetchFn(ctx, doi, title)
	}
	return f.res, f.err
}

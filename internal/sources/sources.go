// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources queries scholarly metadata providers for open-access PDF
// links and chains them into a fixed-priority resolution pipeline. Each
// provider implements the Source interface; the Pipeline tries them in
// order, swallows individual failures, and falls back to DOI-only
// providers when an earlier source discovered a DOI without a PDF.
package sources

import (
	"context"

	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// Source resolves a (doi, title) query against one provider. A nil
// resolution with a nil error means the source has nothing for this
// query (missing input, missing credential, or no hit); an error means
// the lookup itself failed and the pipeline should move on.
type Source interface {
	Name() string
	Fetch(ctx context.Context, doi, title string) (*types.Resolution, error)
}

package fetcher

import (
	"context"

	"github.com/storefront-tools/prodcrawl/internal/types"
)

// Fetcher retrieves a single URL. Implementations do not retry: every
// failure is permanent for that URL within a run.
type Fetcher interface {
	// Fetch executes a GET request and returns the response. A non-2xx
	// status is returned as a *types.FetchError carrying the status code.
	Fetch(ctx context.Context, rawURL string) (*types.Response, error)

	// Close releases resources.
	Close() error
}

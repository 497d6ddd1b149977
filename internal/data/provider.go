// Package data is the acquisition boundary: providers fetch per-symbol
// metrics records, with caching, rate limiting and circuit breaking kept on
// this side of the pipeline. The core treats an explicitly unavailable
// symbol exactly like a record with every field absent.
package data

import (
	"context"

	"github.com/voltrun/voltrun/internal/domain/metrics"
)

// Batch maps symbol to record. A nil entry is the explicit "unavailable"
// marker for that symbol.
type Batch map[string]*metrics.Record

// Provider fetches metrics for a set of symbols. Implementations must
// return an entry for every requested symbol, nil when the symbol could not
// be resolved, and only return an error when the whole batch failed.
type Provider interface {
	Fetch(ctx context.Context, symbols []string) (Batch, error)
}

package data

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/voltrun/voltrun/internal/domain/metrics"
)

// FileProvider serves records from a JSON snapshot file, for offline runs
// and reproducible fixtures. The file holds either an array of records or a
// symbol-keyed object.
type FileProvider struct {
	records map[string]*metrics.Record
}

// NewFileProvider loads a snapshot file eagerly so malformed input fails at
// startup, not mid-run.
func NewFileProvider(path string) (*FileProvider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metrics snapshot: %w", err)
	}

	records := make(map[string]*metrics.Record)
	var list []metrics.Record
	if err := json.Unmarshal(raw, &list); err == nil {
		for i := range list {
			rec := list[i]
			if rec.Symbol == "" {
				return nil, fmt.Errorf("parse metrics snapshot %s: entry %d has no symbol", path, i)
			}
			records[rec.Symbol] = &rec
		}
		return &FileProvider{records: records}, nil
	}

	var keyed map[string]*metrics.Record
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, fmt.Errorf("parse metrics snapshot %s: %w", path, err)
	}
	for sym, rec := range keyed {
		if rec != nil && rec.Symbol == "" {
			rec.Symbol = sym
		}
		records[sym] = rec
	}
	return &FileProvider{records: records}, nil
}

// Fetch returns the snapshot's record for each symbol, nil for symbols the
// snapshot does not know.
func (p *FileProvider) Fetch(_ context.Context, symbols []string) (Batch, error) {
	batch := make(Batch, len(symbols))
	for _, sym := range symbols {
		batch[sym] = p.records[sym]
	}
	return batch, nil
}

// Symbols lists every symbol in the snapshot, for runs that screen the
// whole file.
func (p *FileProvider) Symbols() []string {
	out := make([]string, 0, len(p.records))
	for sym := range p.records {
		out = append(out, sym)
	}
	return out
}

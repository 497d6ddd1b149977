// Package screen runs the filter/score/vote pipeline over one batch of
// metrics records and produces the ranked candidate list.
package screen

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voltrun/voltrun/internal/config"
)

// Rejection is one symbol's recorded rejection reason.
type Rejection struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// Counters are the running diagnostics for one run.
type Counters struct {
	Inspected int `json:"inspected"`
	Rejected  int `json:"rejected"`
	Accepted  int `json:"accepted"`
}

// Context holds the per-run state: resolved configuration, the injected
// clock, the rejection log and diagnostic counters. Created at run start,
// discarded at run end; never persisted. Safe for concurrent use by the
// worker pool.
type Context struct {
	RunID  string
	Config *config.ScreeningConfig

	// Now anchors earnings-window checks. Injected rather than read from a
	// global clock so two runs over the same batch are byte-identical.
	Now time.Time

	// Debug enables rejection logging and per-check explain output.
	Debug bool

	mu         sync.Mutex
	rejections []Rejection
	counters   Counters
}

// NewContext builds a run context. Validate the config before calling:
// the pipeline assumes thresholds are already sane.
func NewContext(cfg *config.ScreeningConfig, now time.Time, debug bool) *Context {
	return &Context{
		RunID:  uuid.NewString(),
		Config: cfg,
		Now:    now,
		Debug:  debug,
	}
}

// Reject records a rejection reason for a symbol (insertion-ordered) and
// bumps the counter. Reasons are only retained in debug mode; the counter
// always moves.
func (c *Context) Reject(symbol, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters.Rejected++
	if c.Debug {
		c.rejections = append(c.rejections, Rejection{Symbol: symbol, Reason: reason})
	}
}

// Accept bumps the accepted counter.
func (c *Context) Accept() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters.Accepted++
}

// Inspect bumps the inspected counter.
func (c *Context) Inspect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters.Inspected++
}

// Rejections returns a copy of the rejection log.
func (c *Context) Rejections() []Rejection {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Rejection, len(c.rejections))
	copy(out, c.rejections)
	return out
}

// Counters returns a snapshot of the run counters.
func (c *Context) Counters() Counters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters
}

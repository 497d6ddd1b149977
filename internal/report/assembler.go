// Package report serializes a finished screening run for consumers: JSON
// for machines, a plain table for terminals.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/voltrun/voltrun/internal/screen"
)

// Report is the output contract of one run: candidates ordered by
// descending score, plus the rejection log when debug mode was on.
type Report struct {
	RunID       string                 `json:"run_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Counters    screen.Counters        `json:"counters"`
	Candidates  []screen.CandidateView `json:"candidates"`
	Rejections  []screen.Rejection     `json:"rejections,omitempty"`
}

// Assemble builds the report from a run's context and ranked candidates.
// The candidate slice is assumed already sorted by the pipeline.
func Assemble(ctx *screen.Context, candidates []screen.CandidateView) *Report {
	r := &Report{
		RunID:       ctx.RunID,
		GeneratedAt: ctx.Now,
		Counters:    ctx.Counters(),
		Candidates:  candidates,
	}
	if ctx.Debug {
		r.Rejections = ctx.Rejections()
	}
	return r
}

// WriteJSON renders the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteTable renders the ranked candidates as an aligned text table,
// followed by the rejection log when present.
func (r *Report) WriteTable(w io.Writer) error {
	fmt.Fprintf(w, "run %s: inspected %d, accepted %d, rejected %d\n\n",
		r.RunID, r.Counters.Inspected, r.Counters.Accepted, r.Counters.Rejected)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tSCORE\tVOTE\tSIGNAL\tVRP-S\tVRP-T\tCOMP\tPRICE")
	for _, c := range r.Candidates {
		fmt.Fprintf(tw, "%s\t%.1f\t%s\t%s\t%s\t%s\t%s\t%.2f\n",
			c.Symbol, c.Score, c.Vote, c.Signal,
			fmtRatio(c.Analytics.StructuralVRP),
			fmtRatio(c.Analytics.TacticalVRP),
			fmtRatio(c.Analytics.Compression),
			c.Price)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Rejections) > 0 {
		fmt.Fprintf(w, "\nrejections (%d):\n", len(r.Rejections))
		for _, rej := range r.Rejections {
			fmt.Fprintf(w, "  %-8s %s\n", rej.Symbol, rej.Reason)
		}
	}
	return nil
}

func fmtRatio(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

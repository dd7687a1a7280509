package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tinkerbelle-io/tb-fingerprint/internal/document"
)

// Result holds the assembled fingerprint.
type Result struct {
	Document *document.Map
	Reports  []SectionReport
	Duration time.Duration
}

// Degraded returns the reports of sections that lost data.
func (r *Result) Degraded() []SectionReport {
	var out []SectionReport
	for _, rep := range r.Reports {
		if rep.Degraded() {
			out = append(out, rep)
		}
	}
	return out
}

// Collect runs the scanners in order and assembles their sections. A failing
// section never stops the run; skipped sections are left out of the document.
// Only cancellation of ctx aborts collection.
func Collect(ctx context.Context, runner CommandRunner, scanners []Scanner) (*Result, error) {
	start := time.Now()
	res := &Result{Document: document.NewMap()}

	for _, s := range scanners {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("collect %s: %w", s.Name(), err)
		}

		began := time.Now()
		out := s.Scan(ctx, runner)
		res.Reports = append(res.Reports, SectionReport{Name: s.Name(), Status: out.Status, Reason: out.Reason})

		log := slog.With("section", s.Name(), "status", out.Status.String(), "duration", time.Since(began))
		switch out.Status {
		case StatusSkipped:
			log.Debug("section skipped", "reason", out.Reason)
			continue
		case StatusOK:
			log.Debug("section collected")
		default:
			log.Warn("section degraded", "reason", out.Reason)
		}
		res.Document.Set(s.Name(), out.Value)
	}

	res.Duration = time.Since(start)
	return res, nil
}

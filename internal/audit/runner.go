package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tinkerbelle-io/tb-fingerprint/internal/ssh"
)

type commandRunner interface {
	Run(ctx context.Context, cmd string) ([]byte, error)
}

// Runner records every command it passes to Next in the audit log.
// Audit write failures are logged and never fail the command.
type Runner struct {
	next   commandRunner
	logger *Logger
	runID  string
	target string
}

// NewRunner wraps next. target names the host being fingerprinted
// ("local", "nsenter" or user@host).
func NewRunner(next commandRunner, logger *Logger, target string) *Runner {
	return &Runner{next: next, logger: logger, runID: uuid.NewString(), target: target}
}

// RunID identifies this run's entries in the log.
func (r *Runner) RunID() string { return r.runID }

// Run executes cmd on the wrapped runner and appends a COMMAND entry, or a
// BLOCKED entry when the allowlist rejected it.
func (r *Runner) Run(ctx context.Context, cmd string) ([]byte, error) {
	start := time.Now()
	out, err := r.next.Run(ctx, cmd)

	entry := Entry{
		RunID:      r.runID,
		EventType:  EventCommand,
		Target:     r.target,
		Input:      cmd,
		Status:     "ok",
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Status = "failed"
		entry.Reason = err.Error()
		if errors.Is(err, ssh.ErrCommandNotAllowed) {
			entry.EventType = EventBlocked
		}
	}
	r.record(entry)
	return out, err
}

// Start appends the RUN_START entry.
func (r *Runner) Start(version string) {
	r.record(Entry{RunID: r.runID, EventType: EventRunStart, Target: r.target, Input: version})
}

// End appends the RUN_END entry. reason summarizes degraded sections.
func (r *Runner) End(status, reason string, d time.Duration) {
	r.record(Entry{
		RunID:      r.runID,
		EventType:  EventRunEnd,
		Target:     r.target,
		Status:     status,
		Reason:     reason,
		DurationMS: d.Milliseconds(),
	})
}

func (r *Runner) record(e Entry) {
	if err := r.logger.Log(e); err != nil {
		slog.Warn("audit write failed", "event", e.EventType, "error", err)
	}
}

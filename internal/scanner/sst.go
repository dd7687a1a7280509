package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultSSTExecutable is the Intel Speed Select tool looked up on PATH.
const DefaultSSTExecutable = "intel-speed-select"

// NotSupported replaces an empty Speed Select report in the document.
const NotSupported = "Not-supported"

// TimestampLayout formats the timestamps embedded in generated file names.
const TimestampLayout = "20060102-150405"

// SSTReportPrefix starts the name of the temporary perf-profile report. mktemp
// on the target host completes it with the run timestamp and a random suffix.
const SSTReportPrefix = "/tmp/out-sst-info-"

var errEmptyReport = errors.New("empty perf-profile report")

// SSTScanner builds "Intel SST" from the intel-speed-select perf-profile
// report. Hosts without the tool or without SST support get NotSupported.
type SSTScanner struct {
	Executable string
	Now        func() time.Time
}

func NewSSTScanner(executable string) *SSTScanner {
	if executable == "" {
		executable = DefaultSSTExecutable
	}
	return &SSTScanner{Executable: executable, Now: time.Now}
}

func (s *SSTScanner) Name() string { return SectionSST }

func (s *SSTScanner) Scan(ctx context.Context, runner CommandRunner) Outcome {
	report, err := s.collect(ctx, runner)
	if err != nil {
		slog.Warn("speed select report unavailable", "executable", s.Executable, "error", err)
		return empty(NotSupported, err)
	}
	return collected(report)
}

// collect creates the report file, runs the tool into it, reads it back and
// removes it. The report is returned as raw JSON so its key order survives
// encoding.
func (s *SSTScanner) collect(ctx context.Context, runner CommandRunner) (json.RawMessage, error) {
	prefix := SSTReportPrefix + s.Now().Format(TimestampLayout) + "-"
	out, err := runner.Run(ctx, "mktemp "+prefix+"XXXXXX")
	if err != nil {
		return nil, fmt.Errorf("create report file: %w", err)
	}
	tmp := trimOutput(out)
	if !strings.HasPrefix(tmp, prefix) || !shellSafe.MatchString(tmp) {
		return nil, fmt.Errorf("create report file: unexpected mktemp output %q", tmp)
	}
	defer func() {
		if _, err := runner.Run(ctx, "rm -f "+tmp); err != nil {
			slog.Warn("could not remove speed select report", "path", tmp, "error", err)
		}
	}()

	cmd := fmt.Sprintf("%s -o %s -f json perf-profile info", shellQuote(s.Executable), tmp)
	if _, err := runner.Run(ctx, cmd); err != nil {
		return nil, err
	}

	if !FileExists(ctx, runner, tmp) {
		return nil, fmt.Errorf("%s was removed before it could be read", tmp)
	}
	data, err := ReadFile(ctx, runner, tmp)
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, fmt.Errorf("%s: %w", tmp, errEmptyReport)
	}

	var report any
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, fmt.Errorf("parse %s: %w", tmp, err)
	}
	if obj, ok := report.(map[string]any); ok && len(obj) == 0 {
		return nil, fmt.Errorf("%s: %w", tmp, errEmptyReport)
	}
	return json.RawMessage(data), nil
}

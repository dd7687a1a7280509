package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strconv"
	"strings"

	"github.com/tinkerbelle-io/tb-fingerprint/internal/document"
	"github.com/tinkerbelle-io/tb-fingerprint/internal/scanner/parser"
)

// CPUSysfsRoot is where per-cpu and driver attributes are read from.
var CPUSysfsRoot = "/sys/devices/system/cpu"

// CPUScanner builds "Cpu Info": lscpu topology, SMT state, intel_pstate
// settings and per-cpu frequency and microcode.
type CPUScanner struct {
	Root string
}

func NewCPUScanner() *CPUScanner { return &CPUScanner{Root: CPUSysfsRoot} }

func (s *CPUScanner) Name() string { return SectionCPU }

func (s *CPUScanner) Scan(ctx context.Context, runner CommandRunner) Outcome {
	var problems []string
	fail := func(what string, err error) {
		slog.Warn("cpu info incomplete", "step", what, "error", err)
		problems = append(problems, fmt.Sprintf("%s: %v", what, err))
	}

	info := document.NewMap()
	if out, err := runner.Run(ctx, "lscpu"); err != nil {
		fail("lscpu", err)
	} else {
		info = parser.ParseLscpu(string(out))
	}

	smt := path.Join(s.Root, "smt", "active")
	if FileExists(ctx, runner, smt) {
		if v, err := ReadFile(ctx, runner, smt); err != nil {
			fail("hyperthreading", err)
		} else {
			info.Set("Hyperthreading", enabled(v == "1"))
		}
	} else {
		slog.Debug("smt control not present", "path", smt)
	}

	if DirExists(ctx, runner, path.Join(s.Root, "intel_pstate")) {
		pstate, err := collectPstate(ctx, runner, s.Root)
		if err != nil {
			fail("intel_pstate", err)
		}
		info.Set("Intel Pstate", pstate)
	}

	if n, ok := cpuCount(info); ok && DirExists(ctx, runner, path.Join(s.Root, "cpu0", "cpufreq")) {
		freq, microcode, err := collectFrequency(ctx, runner, s.Root, n)
		if err != nil {
			fail("frequency", err)
		}
		info.Set("Frequency", freq)
		info.Set("Microcode", microcode)
	}

	switch {
	case len(problems) == 0:
		return collected(info)
	case info.Len() == 0:
		return Outcome{Value: info, Status: StatusEmpty, Reason: strings.Join(problems, "; ")}
	default:
		return Outcome{Value: info, Status: StatusPartial, Reason: strings.Join(problems, "; ")}
	}
}

// cpuCount returns the lscpu "CPUs" value when it is a usable integer.
func cpuCount(info *document.Map) (int, bool) {
	raw := info.GetString("CPUs")
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		slog.Warn("unexpected cpu count, skipping frequency", "value", raw)
		return 0, false
	}
	return n, true
}

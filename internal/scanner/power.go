package scanner

import (
	"context"
	"fmt"
	"path"

	"github.com/tinkerbelle-io/tb-fingerprint/internal/document"
	"github.com/tinkerbelle-io/tb-fingerprint/internal/scanner/parser"
)

var pstateFiles = []string{"status", "num_pstates", "max_perf_pct", "min_perf_pct", "turbo_pct"}

var cpufreqFiles = []string{
	"cpuinfo_max_freq", "cpuinfo_min_freq", "base_frequency",
	"scaling_max_freq", "scaling_min_freq", "scaling_cur_freq",
	"scaling_driver", "scaling_governor",
}

// readPresent copies each named file that exists under dir into m, keyed by
// its titleized name. Missing files are skipped; the first failed read stops
// the walk and is returned.
func readPresent(ctx context.Context, runner CommandRunner, dir string, names []string, m *document.Map) error {
	for _, name := range names {
		p := path.Join(dir, name)
		if !FileExists(ctx, runner, p) {
			continue
		}
		v, err := ReadFile(ctx, runner, p)
		if err != nil {
			return err
		}
		m.Set(parser.Titleize(name), v)
	}
	return nil
}

// collectPstate reads the intel_pstate driver settings under root.
// On error the returned map holds what was read before the failure.
func collectPstate(ctx context.Context, runner CommandRunner, root string) (*document.Map, error) {
	dir := path.Join(root, "intel_pstate")
	info := document.NewMap()

	noTurbo := path.Join(dir, "no_turbo")
	if FileExists(ctx, runner, noTurbo) {
		v, err := ReadFile(ctx, runner, noTurbo)
		if err != nil {
			return info, err
		}
		info.Set("Turbo Boost", enabled(v == "0"))
	}

	return info, readPresent(ctx, runner, dir, pstateFiles, info)
}

// collectFrequency reads cpufreq and microcode details for cpus 0..n-1.
// Every cpu gets a Frequency entry, possibly empty; Microcode only lists cpus
// that expose a version. On error both maps hold the cpus completed so far.
func collectFrequency(ctx context.Context, runner CommandRunner, root string, n int) (freq, microcode *document.Map, err error) {
	freq = document.NewMap()
	microcode = document.NewMap()

	for i := 0; i < n; i++ {
		key := fmt.Sprintf("Cpu %d", i)
		cpuDir := path.Join(root, fmt.Sprintf("cpu%d", i))

		entry := document.NewMap()
		if err := readPresent(ctx, runner, path.Join(cpuDir, "cpufreq"), cpufreqFiles, entry); err != nil {
			return freq, microcode, err
		}
		freq.Set(key, entry)

		version := path.Join(cpuDir, "microcode", "version")
		if !FileExists(ctx, runner, version) {
			continue
		}
		v, err := ReadFile(ctx, runner, version)
		if err != nil {
			return freq, microcode, err
		}
		mc := document.NewMap()
		mc.Set("Version", v)
		microcode.Set(key, mc)
	}
	return freq, microcode, nil
}

package scanner

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tinkerbelle-io/tb-fingerprint/internal/document"
)

const sysCPU = "/sys/devices/system/cpu"

func cpuHost(t *testing.T) *fakeRunner {
	t.Helper()
	r := newFakeRunner()
	r.set("lscpu", loadTestData(t, "lscpu.txt"))
	r.file(sysCPU+"/smt/active", "1")

	r.dir(sysCPU + "/intel_pstate")
	r.file(sysCPU+"/intel_pstate/no_turbo", "0")
	r.file(sysCPU+"/intel_pstate/status", "active")
	r.file(sysCPU+"/intel_pstate/num_pstates", "32")

	r.dir(sysCPU + "/cpu0/cpufreq")
	r.file(sysCPU+"/cpu0/cpufreq/cpuinfo_max_freq", "3900000")
	for _, cpu := range []string{"cpu0", "cpu1", "cpu2", "cpu3"} {
		r.file(sysCPU+"/"+cpu+"/cpufreq/scaling_driver", "intel_pstate")
	}
	r.file(sysCPU+"/cpu0/microcode/version", "0x5003604")
	r.file(sysCPU+"/cpu2/microcode/version", "0x5003604")
	return r
}

func TestCPUScanner(t *testing.T) {
	r := cpuHost(t)
	out := NewCPUScanner().Scan(context.Background(), r)

	if out.Status != StatusOK {
		t.Fatalf("status = %s (%s), want ok", out.Status, out.Reason)
	}
	info := out.Value.(*document.Map)

	wantKeys := []string{
		"Architecture", "CPUs", "Threads per core", "Cores per socket", "Sockets",
		"NUMA nodes", "Vendor ID", "Model name",
		"L1d cache", "L1i cache", "L2 cache", "L3 cache", "NUMA node0 CPU(s)",
		"Hyperthreading", "Intel Pstate", "Frequency", "Microcode",
	}
	if diff := cmp.Diff(wantKeys, info.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if got := info.GetString("Hyperthreading"); got != "Enabled" {
		t.Errorf("Hyperthreading = %q, want Enabled", got)
	}

	pstate, _ := info.Get("Intel Pstate")
	if got := mustJSON(t, pstate); got != `{"Turbo Boost":"Enabled","Status":"active","Num Pstates":"32"}` {
		t.Errorf("Intel Pstate = %s", got)
	}

	freq, _ := info.Get("Frequency")
	wantFreq := `{"Cpu 0":{"Cpuinfo Max Freq":"3900000","Scaling Driver":"intel_pstate"},` +
		`"Cpu 1":{"Scaling Driver":"intel_pstate"},"Cpu 2":{"Scaling Driver":"intel_pstate"},` +
		`"Cpu 3":{"Scaling Driver":"intel_pstate"}}`
	if got := mustJSON(t, freq); got != wantFreq {
		t.Errorf("Frequency = %s", got)
	}

	microcode, _ := info.Get("Microcode")
	if got := mustJSON(t, microcode); got != `{"Cpu 0":{"Version":"0x5003604"},"Cpu 2":{"Version":"0x5003604"}}` {
		t.Errorf("Microcode = %s", got)
	}
}

func TestCPUScanner_AbsentFilesOmitKeys(t *testing.T) {
	r := newFakeRunner()
	r.set("lscpu", loadTestData(t, "lscpu.txt"))

	out := NewCPUScanner().Scan(context.Background(), r)
	if out.Status != StatusOK {
		t.Fatalf("status = %s (%s), want ok", out.Status, out.Reason)
	}
	info := out.Value.(*document.Map)
	for _, k := range []string{"Hyperthreading", "Intel Pstate", "Frequency", "Microcode"} {
		if info.Has(k) {
			t.Errorf("unexpected key %q", k)
		}
	}
}

func TestCPUScanner_TurboDisabled(t *testing.T) {
	r := cpuHost(t)
	r.file(sysCPU+"/intel_pstate/no_turbo", "1")
	r.file(sysCPU+"/smt/active", "0")

	info := NewCPUScanner().Scan(context.Background(), r).Value.(*document.Map)
	if got := info.GetString("Hyperthreading"); got != "Disabled" {
		t.Errorf("Hyperthreading = %q, want Disabled", got)
	}
	pstate, _ := info.Get("Intel Pstate")
	if got := pstate.(*document.Map).GetString("Turbo Boost"); got != "Disabled" {
		t.Errorf("Turbo Boost = %q, want Disabled", got)
	}
}

func TestCPUScanner_FailedReadKeepsPartialFrequency(t *testing.T) {
	r := cpuHost(t)
	r.fail("cat " + sysCPU + "/cpu1/cpufreq/scaling_driver")

	out := NewCPUScanner().Scan(context.Background(), r)
	if out.Status != StatusPartial {
		t.Fatalf("status = %s, want partial", out.Status)
	}
	info := out.Value.(*document.Map)

	freq, _ := info.Get("Frequency")
	if diff := cmp.Diff([]string{"Cpu 0"}, freq.(*document.Map).Keys()); diff != "" {
		t.Errorf("frequency cpus mismatch (-want +got):\n%s", diff)
	}
	if got := info.GetString("CPUs"); got != "4" {
		t.Errorf("lscpu data lost: CPUs = %q", got)
	}
}

func TestCPUScanner_LscpuFailure(t *testing.T) {
	r := newFakeRunner()
	r.fail("lscpu")

	out := NewCPUScanner().Scan(context.Background(), r)
	if out.Status != StatusEmpty {
		t.Fatalf("status = %s, want empty", out.Status)
	}
	if got := mustJSON(t, out.Value); got != "{}" {
		t.Errorf("value = %s, want {}", got)
	}
}

func TestCPUScanner_NonNumericCPUsSkipsFrequency(t *testing.T) {
	r := cpuHost(t)
	r.set("lscpu", "CPU(s): many\n")

	info := NewCPUScanner().Scan(context.Background(), r).Value.(*document.Map)
	if info.Has("Frequency") {
		t.Error("Frequency should be skipped when CPUs is not an integer")
	}
}

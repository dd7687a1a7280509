package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
)

// fakeRunner answers commands from a fixed table. Unknown commands fail the
// way a missing file or tool does.
type fakeRunner struct {
	outputs  map[string]string
	failures map[string]error
	calls    []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{outputs: map[string]string{}, failures: map[string]error{}}
}

func (f *fakeRunner) Run(_ context.Context, cmd string) ([]byte, error) {
	f.calls = append(f.calls, cmd)
	if err, ok := f.failures[cmd]; ok {
		return nil, err
	}
	if out, ok := f.outputs[cmd]; ok {
		return []byte(out), nil
	}
	return nil, fmt.Errorf("command %q failed: exit status 1", cmd)
}

func (f *fakeRunner) set(cmd, out string) { f.outputs[cmd] = out }

func (f *fakeRunner) fail(cmd string) { f.failures[cmd] = fmt.Errorf("command %q failed: exit status 2", cmd) }

// file makes path exist with the given contents.
func (f *fakeRunner) file(path, contents string) {
	f.set("test -f "+path, "")
	f.set("cat "+path, contents+"\n")
}

// dir makes path an existing directory listing entries.
func (f *fakeRunner) dir(path string, entries ...string) {
	f.set("test -d "+path, "")
	f.set("ls -1 "+path, strings.Join(entries, "\n")+"\n")
}

func (f *fakeRunner) called(cmd string) bool {
	for _, c := range f.calls {
		if c == cmd {
			return true
		}
	}
	return false
}

func loadTestData(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("../../test/testdata/" + name)
	if err != nil {
		t.Fatalf("failed to load test data %s: %v", name, err)
	}
	return string(data)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestLocalRunner_SeparatesStderr(t *testing.T) {
	out, err := LocalRunner{}.Run(context.Background(), "echo out; echo noise >&2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "out\n" {
		t.Errorf("stdout = %q, want %q", out, "out\n")
	}
}

func TestLocalRunner_FailureCarriesStderr(t *testing.T) {
	_, err := LocalRunner{}.Run(context.Background(), "echo broken >&2; exit 3")
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error %q should include stderr", err)
	}
}

func TestFileProbes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(dir+"/level", []byte("1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	r := LocalRunner{}

	if !DirExists(ctx, r, dir) {
		t.Error("DirExists = false for temp dir")
	}
	if DirExists(ctx, r, dir+"/level") {
		t.Error("DirExists = true for a regular file")
	}
	if !FileExists(ctx, r, dir+"/level") {
		t.Error("FileExists = false for existing file")
	}
	if FileExists(ctx, r, dir+"/missing") {
		t.Error("FileExists = true for missing file")
	}
	v, err := ReadFile(ctx, r, dir+"/level")
	if err != nil || v != "1" {
		t.Errorf("ReadFile = %q, %v; want 1", v, err)
	}
	names, err := ListDir(ctx, r, dir)
	if err != nil || len(names) != 1 || names[0] != "level" {
		t.Errorf("ListDir = %v, %v", names, err)
	}
}

func TestShellQuote(t *testing.T) {
	tests := map[string]string{
		"/sys/devices/system/cpu/cpu0/cache": "/sys/devices/system/cpu/cpu0/cache",
		"/opt/my tools/sst":                  "'/opt/my tools/sst'",
		"it's":                               `'it'\''s'`,
	}
	for in, want := range tests {
		if got := shellQuote(in); got != want {
			t.Errorf("shellQuote(%q) = %q, want %q", in, got, want)
		}
	}
}

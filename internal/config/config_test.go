package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tinkerbelle-io/tb-fingerprint/internal/scanner"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultMatchesScannerDefaults(t *testing.T) {
	cfg := Default()
	if cfg.SSTExecutable != scanner.DefaultSSTExecutable {
		t.Errorf("SSTExecutable = %q, want %q", cfg.SSTExecutable, scanner.DefaultSSTExecutable)
	}
	if cfg.CacheDir != scanner.DefaultCacheDir {
		t.Errorf("CacheDir = %q, want %q", cfg.CacheDir, scanner.DefaultCacheDir)
	}
}

func TestLoadMissingOptionalFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingRequiredFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), true); err == nil {
		t.Error("expected error for missing required config")
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
sst_executable: /opt/intel/intel-speed-select
output_dir: /var/lib/tb-fingerprint
format: yaml
audit_log: /var/log/tb-fingerprint/audit.log
`)
	cfg, err := Load(path, true)
	if err != nil {
		t.Fatal(err)
	}

	want := Default()
	want.SSTExecutable = "/opt/intel/intel-speed-select"
	want.OutputDir = "/var/lib/tb-fingerprint"
	want.Format = "yaml"
	want.AuditLog = "/var/log/tb-fingerprint/audit.log"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	if _, err := Load(writeConfig(t, "sst_exe: foo\n"), true); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.Format = "yaml"
	err := cfg.ApplyEnv(envMap(map[string]string{
		"TB_SST_EXECUTABLE": "/usr/sbin/intel-speed-select",
		"TB_FORMAT":         "json",
		"TB_LOG_LEVEL":      "",
		"TB_MODE_K8S":       "true",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SSTExecutable != "/usr/sbin/intel-speed-select" {
		t.Errorf("SSTExecutable = %q", cfg.SSTExecutable)
	}
	if cfg.Format != "json" {
		t.Errorf("env should override file: Format = %q", cfg.Format)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("empty env value should be ignored: LogLevel = %q", cfg.LogLevel)
	}
	if !cfg.ModeK8s {
		t.Error("ModeK8s = false, want true")
	}
}

func TestApplyEnvInvalidBool(t *testing.T) {
	cfg := Default()
	if err := cfg.ApplyEnv(envMap(map[string]string{"TB_MODE_K8S": "sometimes"})); err == nil {
		t.Error("expected error for invalid TB_MODE_K8S")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"yaml format", func(c *Config) { c.Format = "yaml" }, false},
		{"bad format", func(c *Config) { c.Format = "xml" }, true},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"empty sst", func(c *Config) { c.SSTExecutable = "" }, true},
		{"ssh target", func(c *Config) { c.SSHTarget = "root@node1:2222" }, false},
		{"bad ssh target", func(c *Config) { c.SSHTarget = "node1" }, true},
		{"k8s and ssh", func(c *Config) { c.ModeK8s = true; c.SSHTarget = "root@node1" }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

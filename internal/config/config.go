// Package config handles configuration for tb-fingerprint.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/tinkerbelle-io/tb-fingerprint/internal/logging"
	"github.com/tinkerbelle-io/tb-fingerprint/internal/output"
	"github.com/tinkerbelle-io/tb-fingerprint/internal/scanner"
	"github.com/tinkerbelle-io/tb-fingerprint/internal/ssh"
)

// DefaultPath is read when no --config flag is given. It may be absent.
const DefaultPath = "/etc/tb-fingerprint/config.yaml"

// Config holds all tb-fingerprint configuration.
type Config struct {
	SSTExecutable string `yaml:"sst_executable"`
	OutputDir     string `yaml:"output_dir"`
	Format        string `yaml:"format"`
	LogLevel      string `yaml:"log_level"`
	ModeK8s       bool   `yaml:"mode_k8s"`
	SSHTarget     string `yaml:"ssh_target"`
	AuditLog      string `yaml:"audit_log"`
	CacheDir      string `yaml:"cache_dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SSTExecutable: scanner.DefaultSSTExecutable,
		OutputDir:     ".",
		Format:        "json",
		LogLevel:      "info",
		CacheDir:      scanner.DefaultCacheDir,
	}
}

// Load reads the YAML file at path over the defaults. A missing file is only
// an error when required is set.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from TB_* environment variables. lookup is
// usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"TB_SST_EXECUTABLE": &c.SSTExecutable,
		"TB_OUTPUT_DIR":     &c.OutputDir,
		"TB_FORMAT":         &c.Format,
		"TB_LOG_LEVEL":      &c.LogLevel,
		"TB_SSH_TARGET":     &c.SSHTarget,
		"TB_AUDIT_LOG":      &c.AuditLog,
	}
	for key, field := range str {
		if v, ok := lookup(key); ok && v != "" {
			*field = v
		}
	}

	if v, ok := lookup("TB_MODE_K8S"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TB_MODE_K8S: %w", err)
		}
		c.ModeK8s = b
	}
	return nil
}

// Validate checks values that would otherwise fail late in a run.
func (c *Config) Validate() error {
	if c.SSTExecutable == "" {
		return errors.New("sst_executable must not be empty")
	}
	if _, err := output.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.ModeK8s && c.SSHTarget != "" {
		return errors.New("mode_k8s and ssh_target are mutually exclusive")
	}
	if c.SSHTarget != "" {
		if _, err := ssh.ParseTarget(c.SSHTarget); err != nil {
			return err
		}
	}
	return nil
}

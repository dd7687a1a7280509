// Package output encodes a fingerprint document and writes it to disk.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tinkerbelle-io/tb-fingerprint/internal/document"
)

// Format is a document encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// FilePrefix starts every generated fingerprint file name.
const FilePrefix = "platform_fingerprint_"

// ParseFormat converts a string to a Format. An empty string is JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json", "":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (valid: json, yaml)", s)
	}
}

// DefaultPath returns dir/platform_fingerprint_<YYYYmmdd-HHMMSS>.<format>.
func DefaultPath(dir string, f Format, now time.Time) string {
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, FilePrefix+now.Format("20060102-150405")+"."+string(f))
}

// Encode renders doc in format f.
func Encode(doc *document.Map, f Format) ([]byte, error) {
	switch f {
	case JSON:
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(out, '\n'), nil
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
}

// Write encodes doc and writes it to path. The file is written to a temporary
// name in the same directory and renamed, so a failed write leaves no partial
// document behind.
func Write(path string, f Format, doc *document.Map) error {
	data, err := Encode(doc, f)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

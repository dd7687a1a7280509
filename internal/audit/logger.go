package audit

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger writes append-only, hash-chained audit entries to a JSON-lines file.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	prevHash string
}

// NewLogger opens (or creates) the audit log file at path.
// The directory is created with 0700; the file with 0600.
// It reads existing entries to recover the last hash for chain continuity.
func NewLogger(path string) (*Logger, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("audit: create dir %s: %w", dir, err)
	}

	prevHash := ""
	if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
		lines := splitLines(data)
		for i := len(lines) - 1; i >= 0; i-- {
			if len(lines[i]) == 0 {
				continue
			}
			var entry Entry
			if json.Unmarshal(lines[i], &entry) == nil {
				prevHash = entry.EntryHash
			}
			break
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", path, err)
	}

	return &Logger{file: f, prevHash: prevHash}, nil
}

// Log writes an audit entry, computing its hash chain value.
func (l *Logger) Log(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	hash, err := chainHash(l.prevHash, entry)
	if err != nil {
		return fmt.Errorf("audit: marshal: %w", err)
	}
	entry.EntryHash = hash
	l.prevHash = hash

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("audit: marshal final: %w", err)
	}
	line = append(line, '\n')

	if _, err := l.file.Write(line); err != nil {
		return fmt.Errorf("audit: write: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// chainHash returns SHA256(prev + entry encoded without its hash).
func chainHash(prev string, entry Entry) (string, error) {
	entry.EntryHash = ""
	raw, err := json.Marshal(entry)
	if err != nil {
		return "", err
	}
	h := sha256.Sum256(append([]byte(prev), raw...))
	return fmt.Sprintf("%x", h), nil
}

// Verify walks the log at path and checks every entry against the hash of
// its predecessor. It returns the number of entries verified.
func Verify(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("audit: read %s: %w", path, err)
	}

	prev := ""
	n := 0
	for _, ln := range splitLines(data) {
		if len(ln) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(ln, &entry); err != nil {
			return n, fmt.Errorf("audit: entry %d: %w", n, err)
		}
		want, err := chainHash(prev, entry)
		if err != nil {
			return n, fmt.Errorf("audit: entry %d: %w", n, err)
		}
		if entry.EntryHash != want {
			return n, fmt.Errorf("audit: entry %d: hash chain broken", n)
		}
		prev = entry.EntryHash
		n++
	}
	return n, nil
}

// splitLines splits data into JSON-lines (byte slices).
func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, data[start:i])
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}

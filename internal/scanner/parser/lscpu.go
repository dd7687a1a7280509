package parser

import (
	"strings"

	"github.com/tinkerbelle-io/tb-fingerprint/internal/document"
)

// LineRule maps one kind of tagged line to a document key.
// Match decides whether the rule applies; Key names the entry.
type LineRule struct {
	Match func(line string) bool
	Key   func(line string) string
}

func prefix(p string) func(string) bool {
	return func(line string) bool { return strings.HasPrefix(line, p) }
}

func contains(s string) func(string) bool {
	return func(line string) bool { return strings.Contains(line, s) }
}

func fixed(key string) func(string) string {
	return func(string) string { return key }
}

// label returns the text before the first colon, e.g. "NUMA node0 CPU(s)".
func label(line string) string {
	k, _, _ := strings.Cut(line, ":")
	return strings.TrimSpace(k)
}

// LscpuRules is the lscpu grammar. Rules are tried in order; the first match wins,
// so the exact "NUMA node(s):" label is checked before the per-node lines.
var LscpuRules = []LineRule{
	{Match: prefix("Architecture:"), Key: fixed("Architecture")},
	{Match: prefix("CPU(s):"), Key: fixed("CPUs")},
	{Match: prefix("Thread(s) per core:"), Key: fixed("Threads per core")},
	{Match: prefix("Core(s) per socket:"), Key: fixed("Cores per socket")},
	{Match: prefix("Socket(s):"), Key: fixed("Sockets")},
	{Match: prefix("NUMA node(s):"), Key: fixed("NUMA nodes")},
	{Match: prefix("Vendor ID:"), Key: fixed("Vendor ID")},
	{Match: prefix("Model name:"), Key: fixed("Model name")},
	{Match: prefix("NUMA node"), Key: label},
	{Match: contains("cache:"), Key: label},
}

// ParseLscpu extracts the CPU summary fields from `lscpu` output.
// Newer util-linux releases indent nested fields, so leading whitespace is
// ignored before matching. Unmatched lines are skipped.
func ParseLscpu(output string) *document.Map {
	return ParseTagged(output, LscpuRules)
}

// ParseTagged applies rules to every line of output. The value is the text after
// the last colon, trimmed.
func ParseTagged(output string, rules []LineRule) *document.Map {
	info := document.NewMap()
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, r := range rules {
			if !r.Match(line) {
				continue
			}
			info.Set(r.Key(line), lastField(line, ":"))
			break
		}
	}
	return info
}

// lastField returns the trimmed text after the last sep in line.
func lastField(line, sep string) string {
	if i := strings.LastIndex(line, sep); i >= 0 {
		return strings.TrimSpace(line[i+len(sep):])
	}
	return strings.TrimSpace(line)
}

package parser

import (
	"strings"

	"github.com/tinkerbelle-io/tb-fingerprint/internal/document"
)

// ParseLSBRelease reads KEY=VALUE lines from /etc/lsb-release. Keys are
// titleized ("DISTRIB_ID" -> "Distrib Id"); values are kept verbatim, quotes
// included. Lines without "=" are skipped.
func ParseLSBRelease(output string) *document.Map {
	distro := document.NewMap()
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		k, _, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		distro.Set(Titleize(k), line[strings.LastIndex(line, "=")+1:])
	}
	return distro
}

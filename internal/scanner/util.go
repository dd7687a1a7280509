package scanner

import (
	"regexp"
	"strings"
)

// trimOutput removes whitespace from command output.
func trimOutput(out []byte) string {
	return strings.TrimSpace(string(out))
}

var shellSafe = regexp.MustCompile(`^[A-Za-z0-9_./:@%+=,-]+$`)

// shellQuote returns s unchanged when it needs no quoting, otherwise wrapped
// in single quotes for sh.
func shellQuote(s string) string {
	if shellSafe.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// enabled renders a boolean sysfs flag the way the fingerprint reports it.
func enabled(on bool) string {
	if on {
		return "Enabled"
	}
	return "Disabled"
}

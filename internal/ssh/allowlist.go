package ssh

import (
	"regexp"
	"strings"
)

// allowedPrefixes are the read-only commands a fingerprint run issues.
var allowedPrefixes = []string{
	// CPU topology and platform metadata
	"lscpu", "uname -r",
	"dmidecode -t memory", "dmidecode -s bios-version",
	"cat /proc/cmdline", "cat /etc/lsb-release",

	// Hardware inventory
	"lshw -class network -xml", "lshw -class memory -xml",
	"lshw -class storage -class disk -xml",

	// sysfs probes (cpu, pstate, cpufreq, microcode, cache)
	"test -f /sys/devices/system/cpu/", "test -d /sys/devices/system/cpu/",
	"ls -1 /sys/devices/system/cpu/", "cat /sys/devices/system/cpu/",

	// Speed Select report
	"intel-speed-select ",
	"test -f /tmp/out-sst-info-", "cat /tmp/out-sst-info-",
}

// sstReportFile admits the only mutations a run makes: creating the temporary
// Speed Select report with mktemp and removing the file mktemp returned.
var sstReportFile = []*regexp.Regexp{
	regexp.MustCompile(`^mktemp /tmp/out-sst-info-\d{8}-\d{6}-XXXXXX$`),
	regexp.MustCompile(`^rm -f /tmp/out-sst-info-\d{8}-\d{6}-[A-Za-z0-9]{6}$`),
}

// blockedPatterns match dangerous operations even within allowed commands.
var blockedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\brm\b`),
	regexp.MustCompile(`\bmv\b`),
	regexp.MustCompile(`\bchmod\b`),
	regexp.MustCompile(`\bchown\b`),
	regexp.MustCompile(`\bmkdir\b`),
	regexp.MustCompile(`\btouch\b`),
	regexp.MustCompile(`\bsudo\b`),
	regexp.MustCompile(`\bdd\b`),
	regexp.MustCompile(`\.\./`),
	regexp.MustCompile("[|&;<>$`\n]"),
}

// IsCommandAllowed checks if a command is safe to execute remotely.
// It must match an allowed prefix (built-in or extra) AND not contain any
// blocked patterns. Creation and removal of the Speed Select report are
// admitted as exact matches only.
func IsCommandAllowed(cmd string, extra ...string) bool {
	trimmed := strings.TrimSpace(cmd)

	for _, pat := range sstReportFile {
		if pat.MatchString(trimmed) {
			return true
		}
	}

	for _, pat := range blockedPatterns {
		if pat.MatchString(trimmed) {
			return false
		}
	}

	for _, prefix := range allowedPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	for _, prefix := range extra {
		if prefix != "" && strings.HasPrefix(trimmed, prefix+" ") {
			return true
		}
	}

	return false
}

package scanner

import (
	"context"
	"log/slog"

	"github.com/tinkerbelle-io/tb-fingerprint/internal/document"
	"github.com/tinkerbelle-io/tb-fingerprint/internal/scanner/parser"
)

// CommandScanner fills a section from the output of a single command.
type CommandScanner struct {
	section string
	command string
	parse   func(string) any
	zero    func() any
}

func (s *CommandScanner) Name() string { return s.section }

func (s *CommandScanner) Scan(ctx context.Context, runner CommandRunner) Outcome {
	out, err := runner.Run(ctx, s.command)
	if err != nil {
		slog.Warn("command failed", "section", s.section, "command", s.command, "error", err)
		return empty(s.zero(), err)
	}
	return collected(s.parse(string(out)))
}

func trimmed(out string) any { return trimOutput([]byte(out)) }
func emptyString() any      { return "" }

// NewBIOSScanner returns the "BIOS Version" scanner.
func NewBIOSScanner() *CommandScanner {
	return &CommandScanner{section: SectionBIOS, command: "dmidecode -s bios-version", parse: trimmed, zero: emptyString}
}

// NewCmdlineScanner returns the "Command Line" scanner.
func NewCmdlineScanner() *CommandScanner {
	return &CommandScanner{section: SectionCmdline, command: "cat /proc/cmdline", parse: trimmed, zero: emptyString}
}

// NewKernelScanner returns the "Kernel Version" scanner.
func NewKernelScanner() *CommandScanner {
	return &CommandScanner{section: SectionKernel, command: "uname -r", parse: trimmed, zero: emptyString}
}

// NewDistroScanner returns the "Distribution Info" scanner.
func NewDistroScanner() *CommandScanner {
	return &CommandScanner{
		section: SectionDistro,
		command: "cat /etc/lsb-release",
		parse:   func(out string) any { return parser.ParseLSBRelease(out) },
		zero:    func() any { return document.NewMap() },
	}
}

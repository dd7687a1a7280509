package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tinkerbelle-io/tb-fingerprint/internal/document"
	"github.com/tinkerbelle-io/tb-fingerprint/internal/scanner/parser"
)

const dmiMemory = "dmidecode -t memory"

// MemoryScanner builds "Memory Info" from the lshw memory class and the
// dmidecode memory device table.
type MemoryScanner struct{}

func NewMemoryScanner() *MemoryScanner { return &MemoryScanner{} }

func (s *MemoryScanner) Name() string { return SectionMemory }

func (s *MemoryScanner) Scan(ctx context.Context, runner CommandRunner) Outcome {
	var problems []string

	memories, err := collectInventory(ctx, runner, lshwMemory, memoryPath)
	if err != nil {
		slog.Warn("memory inventory failed", "command", lshwMemory, "error", err)
		problems = append(problems, fmt.Sprintf("lshw: %v", err))
	}

	devices := make([]*document.Map, 0)
	if out, err := runner.Run(ctx, dmiMemory); err != nil {
		slog.Warn("memory device table failed", "command", dmiMemory, "error", err)
		problems = append(problems, fmt.Sprintf("dmidecode: %v", err))
	} else {
		var dups []parser.DuplicateField
		devices, dups = parser.ParseDMIMemory(string(out))
		for _, d := range dups {
			slog.Warn("duplicate dmi field, keeping last value", "handle", d.Handle, "key", d.Key)
		}
	}

	info := document.NewMap()
	info.Set("Memory", memories)
	info.Set("Memory Devices", devices)

	switch len(problems) {
	case 0:
		return collected(info)
	case 1:
		return Outcome{Value: info, Status: StatusPartial, Reason: problems[0]}
	default:
		return Outcome{Value: info, Status: StatusEmpty, Reason: strings.Join(problems, "; ")}
	}
}

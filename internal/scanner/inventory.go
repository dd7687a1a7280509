package scanner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tinkerbelle-io/tb-fingerprint/internal/scanner/parser"
)

// lshw invocations and the element paths that select one device each.
const (
	lshwNetwork = "lshw -class network -xml -sanitize"
	lshwMemory  = "lshw -class memory -xml -sanitize"
	lshwStorage = "lshw -class storage -class disk -xml -sanitize"

	networkPath = "node[@class='network']"
	memoryPath  = "node[@class='memory']"
	diskPath    = "node/node[@class='disk']"
)

// InventoryScanner converts the devices lshw reports for one class into a
// list of mappings.
type InventoryScanner struct {
	section string
	command string
	path    string
}

// NewNetworkScanner returns the "Network Info" scanner.
func NewNetworkScanner() *InventoryScanner {
	return &InventoryScanner{section: SectionNetwork, command: lshwNetwork, path: networkPath}
}

// NewStorageScanner returns the "Storage Info" scanner. Only disks nested
// under a controller are reported.
func NewStorageScanner() *InventoryScanner {
	return &InventoryScanner{section: SectionStorage, command: lshwStorage, path: diskPath}
}

func (s *InventoryScanner) Name() string { return s.section }

func (s *InventoryScanner) Scan(ctx context.Context, runner CommandRunner) Outcome {
	devices, err := collectInventory(ctx, runner, s.command, s.path)
	if err != nil {
		slog.Warn("hardware inventory failed", "section", s.section, "command", s.command, "error", err)
		return empty(devices, err)
	}
	return collected(devices)
}

// collectInventory runs an lshw XML command and converts every element
// selected by path. The result is never nil.
func collectInventory(ctx context.Context, runner CommandRunner, command, path string) ([]any, error) {
	devices := make([]any, 0)

	out, err := runner.Run(ctx, command)
	if err != nil {
		return devices, err
	}
	root, err := parser.ParseXML(out)
	if err != nil {
		return devices, fmt.Errorf("%s: %w", command, err)
	}
	nodes, err := root.Find(path)
	if err != nil {
		return devices, err
	}
	for _, n := range nodes {
		devices = append(devices, parser.ToValue(n))
	}
	return devices, nil
}

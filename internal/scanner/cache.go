package scanner

import (
	"context"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/tinkerbelle-io/tb-fingerprint/internal/document"
)

// DefaultCacheDir is the cache hierarchy of the first cpu.
const DefaultCacheDir = "/sys/devices/system/cpu/cpu0/cache"

var cacheFiles = []string{
	"coherency_line_size", "level", "number_of_sets", "physical_line_partition",
	"size", "type", "ways_of_associativity",
}

// CacheScanner builds "Caches Info" from the cache index directories of one cpu.
// The section is skipped when Dir does not exist.
type CacheScanner struct {
	Dir string
}

func NewCacheScanner(dir string) *CacheScanner { return &CacheScanner{Dir: dir} }

func (s *CacheScanner) Name() string { return SectionCaches }

func (s *CacheScanner) Scan(ctx context.Context, runner CommandRunner) Outcome {
	if !DirExists(ctx, runner, s.Dir) {
		return skipped("no cache directory at " + s.Dir)
	}
	caches, err := CollectCaches(ctx, runner, s.Dir)
	if err != nil {
		slog.Warn("cache info incomplete", "dir", s.Dir, "error", err)
		if caches.Len() == 0 {
			return empty(caches, err)
		}
		return Outcome{Value: caches, Status: StatusPartial, Reason: err.Error()}
	}
	return collected(caches)
}

// CollectCaches maps each index* directory under dir, in name order, to its
// attribute files keyed by titleized name. On error the map holds what was
// read so far.
func CollectCaches(ctx context.Context, runner CommandRunner, dir string) (*document.Map, error) {
	caches := document.NewMap()

	names, err := ListDir(ctx, runner, dir)
	if err != nil {
		return caches, err
	}
	sort.Strings(names)

	for _, name := range names {
		p := path.Join(dir, name)
		if !strings.Contains(name, "index") || !DirExists(ctx, runner, p) {
			continue
		}
		attrs := document.NewMap()
		caches.Set(name, attrs)
		if err := readPresent(ctx, runner, p, cacheFiles, attrs); err != nil {
			return caches, err
		}
	}
	return caches, nil
}

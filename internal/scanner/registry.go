package scanner

import "time"

// Section keys of the fingerprint document.
const (
	SectionCPU     = "Cpu Info"
	SectionBIOS    = "BIOS Version"
	SectionCaches  = "Caches Info"
	SectionCmdline = "Command Line"
	SectionDistro  = "Distribution Info"
	SectionKernel  = "Kernel Version"
	SectionNetwork = "Network Info"
	SectionMemory  = "Memory Info"
	SectionStorage = "Storage Info"
	SectionSST     = "Intel SST"
)

// Options tunes the scanners a Registry builds.
type Options struct {
	// SSTExecutable is the intel-speed-select binary (default DefaultSSTExecutable).
	SSTExecutable string
	// CacheDir is the cache hierarchy directory (default DefaultCacheDir).
	CacheDir string
	// Now stamps the temporary SST report name (default time.Now).
	Now func() time.Time
}

// Registry holds the fingerprint scanners in document order.
type Registry struct {
	scanners []Scanner
}

// NewRegistry creates a registry with every section scanner.
func NewRegistry(opts Options) *Registry {
	if opts.CacheDir == "" {
		opts.CacheDir = DefaultCacheDir
	}
	sst := NewSSTScanner(opts.SSTExecutable)
	if opts.Now != nil {
		sst.Now = opts.Now
	}

	return &Registry{
		scanners: []Scanner{
			NewCPUScanner(),
			NewBIOSScanner(),
			NewCacheScanner(opts.CacheDir),
			NewCmdlineScanner(),
			NewDistroScanner(),
			NewKernelScanner(),
			NewNetworkScanner(),
			NewMemoryScanner(),
			NewStorageScanner(),
			sst,
		},
	}
}

// Scanners returns the scanners in the order their sections appear.
func (r *Registry) Scanners() []Scanner {
	out := make([]Scanner, len(r.scanners))
	copy(out, r.scanners)
	return out
}

package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tinkerbelle-io/tb-fingerprint/internal/document"
)

// writeCacheTree lays out a sysfs-like cache directory.
func writeCacheTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"index1/level":                 "1",
		"index1/type":                  "Instruction",
		"index0/level":                 "1",
		"index0/type":                  "Data",
		"index0/size":                  "48K",
		"index0/ways_of_associativity": "12",
		"index2/level":                 "2",
		"index2/number_of_sets":        "2048",
		"uevent":                       "",
	}
	for name, contents := range files {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(contents+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(root, "power"), 0o755); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestCollectCaches(t *testing.T) {
	root := writeCacheTree(t)

	caches, err := CollectCaches(context.Background(), LocalRunner{}, root)
	if err != nil {
		t.Fatalf("CollectCaches: %v", err)
	}
	if diff := cmp.Diff([]string{"index0", "index1", "index2"}, caches.Keys()); diff != "" {
		t.Errorf("index dirs mismatch (-want +got):\n%s", diff)
	}

	want := `{"index0":{"Level":"1","Size":"48K","Type":"Data","Ways Of Associativity":"12"},` +
		`"index1":{"Level":"1","Type":"Instruction"},` +
		`"index2":{"Level":"2","Number Of Sets":"2048"}}`
	if got := mustJSON(t, caches); got != want {
		t.Errorf("caches:\n got %s\nwant %s", got, want)
	}
}

func TestCollectCaches_Idempotent(t *testing.T) {
	root := writeCacheTree(t)
	ctx := context.Background()

	first, err := CollectCaches(ctx, LocalRunner{}, root)
	if err != nil {
		t.Fatal(err)
	}
	second, err := CollectCaches(ctx, LocalRunner{}, root)
	if err != nil {
		t.Fatal(err)
	}
	if a, b := mustJSON(t, first), mustJSON(t, second); a != b {
		t.Errorf("repeated collection differs:\n%s\n%s", a, b)
	}
}

func TestCacheScanner_SkippedWithoutDirectory(t *testing.T) {
	out := NewCacheScanner(filepath.Join(t.TempDir(), "missing")).Scan(context.Background(), LocalRunner{})
	if out.Status != StatusSkipped {
		t.Errorf("status = %s, want skipped", out.Status)
	}
}

func TestCacheScanner_ListFailure(t *testing.T) {
	r := newFakeRunner()
	r.set("test -d "+DefaultCacheDir, "")

	out := NewCacheScanner(DefaultCacheDir).Scan(context.Background(), r)
	if out.Status != StatusEmpty {
		t.Fatalf("status = %s, want empty", out.Status)
	}
	if out.Value.(*document.Map).Len() != 0 {
		t.Error("expected empty cache map")
	}
}

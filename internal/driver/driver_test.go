package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"natsu/internal/diag"
	"natsu/internal/metadata"
)

func writeImage(t *testing.T, dir, file string, mod *metadata.Module) string {
	t.Helper()
	path := filepath.Join(dir, file)
	if err := metadata.WriteFile(path, mod); err != nil {
		t.Fatalf("write image: %v", err)
	}
	return path
}

func TestLoadImagesKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"C", "A", "B"} {
		paths = append(paths, writeImage(t, dir, name+".nmd", &metadata.Module{Name: name}))
	}
	paths = append(paths, writeImage(t, dir, "D.cbor", &metadata.Module{Name: "D"}))

	images, err := LoadImages(context.Background(), paths, 2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for i, want := range []string{"C", "A", "B", "D"} {
		if images[i].Module.Name != want || images[i].Path != paths[i] {
			t.Fatalf("image %d = %s (%s), want %s", i, images[i].Module.Name, images[i].Path, want)
		}
	}
	if images[0].Digest == images[1].Digest {
		t.Fatalf("distinct images share a digest")
	}
}

func TestLoadImageErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadImage(filepath.Join(dir, "missing.nmd"))
	if code, ok := diag.CodeOf(err); !ok || code != diag.IOLoadImage {
		t.Fatalf("expected load error, got %v", err)
	}

	junk := filepath.Join(dir, "junk.nmd")
	if err := os.WriteFile(junk, []byte{0xc1, 0xc1}, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err = LoadImages(context.Background(), []string{junk}, 0)
	if code, ok := diag.CodeOf(err); !ok || code != diag.IODecodeImage {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestClosureRejectsDuplicateModules(t *testing.T) {
	a := &Image{Path: "a.nmd", Module: &metadata.Module{Name: "Same"}}
	b := &Image{Path: "b.nmd", Module: &metadata.Module{Name: "Same"}}
	_, err := Closure([]*Image{a}, []*Image{b})
	if code, ok := diag.CodeOf(err); !ok || code != diag.CfgDuplicateName {
		t.Fatalf("expected duplicate name, got %v", err)
	}
}

func TestOutputCacheFreshness(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenOutputCache(filepath.Join(dir, ".natsu-cache"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	header, source := filepath.Join(dir, "Demo.h"), filepath.Join(dir, "Demo.cpp")
	if err := os.WriteFile(header, []byte("h"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(source, []byte("cpp"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	deps := []Digest{DigestOf("corlib")}
	key := Key(DigestOf("image"), deps, "0.1.0", "x86_64")

	if cache.Fresh("Demo", key, header, source) {
		t.Fatalf("empty cache reported fresh")
	}
	err = cache.Put(&CachePayload{Module: "Demo", Key: key, HeaderDigest: DigestOf("h"), SourceDigest: DigestOf("cpp"), Types: 3})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if !cache.Fresh("Demo", key, header, source) {
		t.Fatalf("expected fresh outputs")
	}
	if cache.Fresh("Demo", Key(DigestOf("image"), deps, "0.1.0", "riscv32"), header, source) {
		t.Fatalf("another target must miss")
	}
	if cache.Fresh("Demo", Key(DigestOf("image"), []Digest{DigestOf("corlib v2")}, "0.1.0", "x86_64"), header, source) {
		t.Fatalf("a changed reference must miss")
	}
	if err := os.WriteFile(source, []byte("edited"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if cache.Fresh("Demo", key, header, source) {
		t.Fatalf("edited output must not be fresh")
	}

	payload, ok, err := cache.Get("Demo")
	if err != nil || !ok || payload.Types != 3 {
		t.Fatalf("get: %+v ok=%v err=%v", payload, ok, err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, ok, _ := cache.Get("Demo"); ok {
		t.Fatalf("entry survived DropAll")
	}
}

func TestDependenciesSkipSelf(t *testing.T) {
	a := &Image{Path: "a", Digest: DigestOf("a")}
	b := &Image{Path: "b", Digest: DigestOf("b")}
	c := &Image{Path: "c", Digest: DigestOf("c")}
	got := Dependencies(b, []*Image{a, b}, []*Image{c})
	if len(got) != 2 || got[0] != a.Digest || got[1] != c.Digest {
		t.Fatalf("Dependencies = %v", got)
	}
	if Key(a.Digest, got, "t", "x86_64") == Key(a.Digest, got[:1], "t", "x86_64") {
		t.Fatalf("dependency list must change the key")
	}
}

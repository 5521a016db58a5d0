package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when CachePayload format changes
const cacheSchemaVersion uint16 = 2

// OutputCache remembers, per module, which image produced the files in the
// output directory so an unchanged module can be skipped.
// Thread-safe for concurrent access.
type OutputCache struct {
	mu  sync.RWMutex
	dir string
}

// CachePayload is stored per module as msgpack.
type CachePayload struct {
	Schema uint16

	Module     string
	Translator string
	// Key covers the image bytes, the closure, the translator version and the target.
	Key Digest

	HeaderDigest Digest
	SourceDigest Digest

	Types   int
	Methods int
	Strings int
}

// OpenOutputCache opens (creating if needed) a cache rooted at dir.
func OpenOutputCache(dir string) (*OutputCache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return &OutputCache{dir: dir}, nil
}

// Key derives the cache key of one module translation. deps are the digests
// of every other image in the closure, in load order: a referenced module
// decides field kinds, vtable slots and stack types of the output too.
func Key(image Digest, deps []Digest, translator, target string) Digest {
	h := sha256.New()
	_, _ = h.Write(image[:])
	_, _ = h.Write([]byte{byte(len(deps) >> 8), byte(len(deps))})
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(translator))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(target))
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Dependencies lists the digests of every image in images except self.
func Dependencies(self *Image, images ...[]*Image) []Digest {
	var out []Digest
	for _, group := range images {
		for _, img := range group {
			if img != self {
				out = append(out, img.Digest)
			}
		}
	}
	return out
}

func (c *OutputCache) pathFor(module string) string {
	return filepath.Join(c.dir, module+".mp")
}

// Put serializes and writes a payload.
func (c *OutputCache) Put(payload *CachePayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload.Schema = cacheSchemaVersion
	p := c.pathFor(payload.Module)
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the payload of module; ok is false when there is none or it was
// written by another schema.
func (c *OutputCache) Get(module string) (*CachePayload, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(module))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var payload CachePayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	return &payload, true, nil
}

// Fresh reports whether module's outputs in outDir were produced for key
// and are still intact on disk.
func (c *OutputCache) Fresh(module string, key Digest, headerPath, sourcePath string) bool {
	payload, ok, err := c.Get(module)
	if err != nil {
		logDriver.Warningf("cache entry for %s unreadable: %v", module, err)
		return false
	}
	if !ok || payload.Key != key {
		return false
	}
	return fileDigestIs(headerPath, payload.HeaderDigest) && fileDigestIs(sourcePath, payload.SourceDigest)
}

// DropAll removes every cache entry.
func (c *OutputCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.RemoveAll(c.dir); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o750)
}

func fileDigestIs(path string, want Digest) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return sha256.Sum256(data) == want
}

// DigestOf hashes generated text.
func DigestOf(text string) Digest {
	return sha256.Sum256([]byte(text))
}

// Short renders the first bytes of a digest for logs.
func (d Digest) Short() string {
	return hex.EncodeToString(d[:6])
}

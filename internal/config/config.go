// Package config loads natsu.toml, the optional project file naming the
// module images to translate and where the generated sources go.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"natsu/internal/diag"
)

const FileName = "natsu.toml"

// File is the decoded natsu.toml. Relative paths are resolved against Root.
type File struct {
	Path      string    `toml:"-"`
	Root      string    `toml:"-"`
	Translate Translate `toml:"translate"`
	Target    Target    `toml:"target"`
}

type Translate struct {
	Output     string   `toml:"output"`
	Modules    []string `toml:"modules"`
	References []string `toml:"references"`
	Jobs       int      `toml:"jobs"`
}

type Target struct {
	PointerSize int `toml:"pointer_size"`
}

// Find walks up from startDir to locate natsu.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes and validates one natsu.toml.
func Load(path string) (*File, error) {
	var f File
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, diag.Errorf(diag.CfgBadManifest, diag.Location{Module: path}, "failed to parse TOML: %v", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, diag.Errorf(diag.CfgBadManifest, diag.Location{Module: path}, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if f.Translate.Jobs < 0 {
		return nil, diag.Errorf(diag.CfgBadManifest, diag.Location{Module: path}, "[translate].jobs must not be negative")
	}
	switch f.Target.PointerSize {
	case 0, 4, 8:
	default:
		return nil, diag.Errorf(diag.CfgBadManifest, diag.Location{Module: path}, "[target].pointer_size must be 4 or 8, got %d", f.Target.PointerSize)
	}
	f.Path = path
	f.Root = filepath.Dir(path)
	seen := make(map[string]bool, len(f.Translate.Modules))
	for i, m := range f.Translate.Modules {
		if strings.TrimSpace(m) == "" {
			return nil, diag.Errorf(diag.CfgBadManifest, diag.Location{Module: path}, "[translate].modules[%d] is empty", i)
		}
		if seen[m] {
			return nil, diag.Errorf(diag.CfgDuplicateName, diag.Location{Module: path}, "module %q listed twice", m)
		}
		seen[m] = true
	}
	return &f, nil
}

// Discover finds and loads natsu.toml starting at startDir. A missing file is
// not an error: ok reports whether one was found.
func Discover(startDir string) (f *File, ok bool, err error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	f, err = Load(path)
	if err != nil {
		return nil, true, err
	}
	return f, true, nil
}

// Resolve makes a path from the file absolute relative to its directory.
func (f *File) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(f.Root, filepath.FromSlash(p))
}

// ModulePaths returns the configured input images, resolved.
func (f *File) ModulePaths() []string {
	return f.resolveAll(f.Translate.Modules)
}

// ReferencePaths returns the configured reference-only images, resolved.
func (f *File) ReferencePaths() []string {
	return f.resolveAll(f.Translate.References)
}

// OutputDir returns the resolved output directory, if configured.
func (f *File) OutputDir() string {
	return f.Resolve(f.Translate.Output)
}

func (f *File) resolveAll(in []string) []string {
	out := make([]string, len(in))
	for i, p := range in {
		out[i] = f.Resolve(p)
	}
	return out
}

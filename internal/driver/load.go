// Package driver loads module images for a translation run and keeps the
// on-disk output cache.
package driver

import (
	"context"
	"crypto/sha256"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"natsu/internal/diag"
	"natsu/internal/metadata"
)

// Digest is a sha256 of image bytes or generated output.
type Digest [sha256.Size]byte

// Image is one decoded module image.
type Image struct {
	Path   string
	Module *metadata.Module
	Digest Digest
	Size   int
}

// LoadImages reads and decodes paths concurrently, at most jobs at a time.
// The result keeps the order of paths.
func LoadImages(ctx context.Context, paths []string, jobs int) ([]*Image, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	images := make([]*Image, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			img, err := LoadImage(path)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, img := range images {
		logDriver.Debugf("loaded %s (%s, %d types, %d bytes)", img.Path, img.Module.Name, len(img.Module.Types), img.Size)
	}
	return images, nil
}

// LoadImage reads and decodes one image.
func LoadImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.Errorf(diag.IOLoadImage, diag.Location{Module: path}, "%v", err)
	}
	mod, err := metadata.Decode(data, metadata.FormatFor(path))
	if err != nil {
		return nil, diag.Errorf(diag.IODecodeImage, diag.Location{Module: path}, "%v", err)
	}
	return &Image{Path: path, Module: mod, Digest: sha256.Sum256(data), Size: len(data)}, nil
}

// Closure indexes images in order. Duplicate module names are a
// configuration error.
func Closure(images ...[]*Image) (*metadata.Closure, error) {
	cl, err := metadata.NewClosure()
	if err != nil {
		return nil, err
	}
	for _, set := range images {
		for _, img := range set {
			if err := cl.Add(img.Module); err != nil {
				return nil, diag.Errorf(diag.CfgDuplicateName, diag.Location{Module: img.Path}, "%v", err)
			}
		}
	}
	return cl, nil
}

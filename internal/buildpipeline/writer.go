package buildpipeline

import (
	"os"
	"path/filepath"

	"natsu/internal/backend/cpp"
	"natsu/internal/diag"
)

// WriteOutput writes the header and source of one module. Both files are
// staged next to their final paths and renamed only once both are written.
func WriteOutput(dir string, out *cpp.Output) error {
	loc := diag.Location{Module: out.Module}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return diag.Errorf(diag.IOWriteOutput, loc, "create output directory: %v", err)
	}
	files := []struct{ name, text string }{
		{out.HeaderName(), out.Header},
		{out.SourceName(), out.Source},
	}
	staged := make([]string, 0, len(files))
	cleanup := func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}
	for _, f := range files {
		tmp, err := os.CreateTemp(dir, "."+f.name+".tmp-*")
		if err != nil {
			cleanup()
			return diag.Errorf(diag.IOWriteOutput, loc, "stage %s: %v", f.name, err)
		}
		staged = append(staged, tmp.Name())
		if _, err := tmp.WriteString(f.text); err != nil {
			_ = tmp.Close()
			cleanup()
			return diag.Errorf(diag.IOWriteOutput, loc, "write %s: %v", f.name, err)
		}
		if err := tmp.Close(); err != nil {
			cleanup()
			return diag.Errorf(diag.IOWriteOutput, loc, "write %s: %v", f.name, err)
		}
	}
	for i, f := range files {
		if err := os.Rename(staged[i], filepath.Join(dir, f.name)); err != nil {
			cleanup()
			return diag.Errorf(diag.IOWriteOutput, loc, "rename %s: %v", f.name, err)
		}
	}
	return nil
}

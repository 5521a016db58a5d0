package metadata

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Format selects the image encoding.
type Format uint8

const (
	FormatMsgpack Format = iota
	FormatCBOR
)

func (f Format) String() string {
	if f == FormatCBOR {
		return "cbor"
	}
	return "msgpack"
}

// FormatFor picks the encoding from the file extension; .cbor selects CBOR,
// everything else is msgpack.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		return FormatCBOR
	}
	return FormatMsgpack
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("metadata: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Encode serializes a module image. CBOR output is canonical.
func Encode(m *Module, f Format) ([]byte, error) {
	switch f {
	case FormatCBOR:
		return cborEncMode.Marshal(m)
	default:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetSortMapKeys(true)
		if err := enc.Encode(m); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

// Decode parses a module image.
func Decode(data []byte, f Format) (*Module, error) {
	var m Module
	switch f {
	case FormatCBOR:
		if err := cbor.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("metadata: unmarshal cbor image: %w", err)
		}
	default:
		if err := msgpack.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("metadata: unmarshal msgpack image: %w", err)
		}
	}
	if m.Name == "" {
		return nil, fmt.Errorf("metadata: image has no module name")
	}
	return &m, nil
}

// ReadFile loads an image from disk and returns the raw bytes alongside the
// decoded module; callers hash the bytes for caching.
func ReadFile(path string) (*Module, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	m, err := Decode(data, FormatFor(path))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, data, nil
}

// WriteFile encodes an image next to its final path and renames it in place.
func WriteFile(path string, m *Module) error {
	data, err := Encode(m, FormatFor(path))
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

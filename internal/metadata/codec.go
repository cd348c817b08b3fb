package metadata

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format selects the image encoding.
type Format uint8

const (
	FormatAuto Format = iota
	FormatMsgpack
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatMsgpack:
		return "msgpack"
	case FormatYAML:
		return "yaml"
	default:
		return "auto"
	}
}

// FormatForPath picks the format from the file extension: .yaml/.yml are YAML, everything else msgpack.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatMsgpack
	}
}

// Decode decodes and validates an image. FormatAuto sniffs the first byte:
// msgpack images are maps (0x80-0x8f, 0xde, 0xdf), anything else is read as YAML.
func Decode(data []byte, format Format) (*Image, error) {
	if format == FormatAuto {
		format = sniff(data)
	}
	img := &Image{}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, img)
	default:
		err = msgpack.NewDecoder(bytes.NewReader(data)).Decode(img)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, format, err)
	}
	// рукописные YAML-образы могут не указывать schema
	if img.Schema == 0 {
		img.Schema = ImageSchema
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

func sniff(data []byte) Format {
	if len(data) == 0 {
		return FormatMsgpack
	}
	b := data[0]
	if (b >= 0x80 && b <= 0x8f) || b == 0xde || b == 0xdf {
		return FormatMsgpack
	}
	return FormatYAML
}

// Encode serializes an image.
func Encode(img *Image, format Format) ([]byte, error) {
	if img.Schema == 0 {
		cp := *img
		cp.Schema = ImageSchema
		img = &cp
	}
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(img); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetSortMapKeys(true)
		if err := enc.Encode(img); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

// WriteFile encodes img next to path and atomically renames it into place.
func WriteFile(path string, img *Image) error {
	data, err := Encode(img, FormatForPath(path))
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*.cvm")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, path)
}

// SameContent reports whether two images encode identically.
func SameContent(a, b *Image) bool {
	if a == b {
		return true
	}
	ea, errA := Encode(a, FormatMsgpack)
	eb, errB := Encode(b, FormatMsgpack)
	return errA == nil && errB == nil && bytes.Equal(ea, eb)
}

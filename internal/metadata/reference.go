package metadata

import (
	"fmt"
	"os"
	"slices"
)

// Reference points at one external image. References are compared by pointer:
// two References built from the same path are still two references.
type Reference struct {
	display string
	aliases []string
	format  Format
	load    func() ([]byte, error)
}

// FromFile references an image on disk; the file is read when a Reference Manager binds it.
func FromFile(path string) *Reference {
	return &Reference{
		display: path,
		format:  FormatForPath(path),
		load:    func() ([]byte, error) { return os.ReadFile(path) },
	}
}

// FromBytes references an in-memory image.
func FromBytes(display string, data []byte, format Format) *Reference {
	data = slices.Clone(data)
	return &Reference{
		display: display,
		format:  format,
		load:    func() ([]byte, error) { return data, nil },
	}
}

// FromImage references an already built image (for example the output of Emit).
func FromImage(display string, img *Image) *Reference {
	return &Reference{
		display: display,
		format:  FormatMsgpack,
		load: func() ([]byte, error) {
			return Encode(img, FormatMsgpack)
		},
	}
}

// FromLoader references an image produced by an arbitrary loader.
func FromLoader(display string, format Format, load func() ([]byte, error)) *Reference {
	return &Reference{display: display, format: format, load: load}
}

// WithAliases returns a new reference reachable only through the given extern aliases.
// The result is a different reference: snapshots using it do not share resolution with
// snapshots using r.
func (r *Reference) WithAliases(aliases ...string) *Reference {
	cp := *r
	cp.aliases = slices.Clone(aliases)
	return &cp
}

func (r *Reference) Display() string   { return r.display }
func (r *Reference) Aliases() []string { return slices.Clone(r.aliases) }
func (r *Reference) Format() Format    { return r.format }

// Global reports whether the reference contributes to the global namespace,
// i.e. it has no aliases or lists the "global" alias.
func (r *Reference) Global() bool {
	return len(r.aliases) == 0 || slices.Contains(r.aliases, "global")
}

// Load reads and decodes the image. Callers cache the result.
func (r *Reference) Load() (*Image, error) {
	if r.load == nil {
		return nil, fmt.Errorf("%w: reference %s has no source", ErrMalformed, r.display)
	}
	data, err := r.load()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.display, err)
	}
	img, err := Decode(data, r.format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.display, err)
	}
	return img, nil
}

func (r *Reference) String() string { return r.display }

// SameReferences reports element-wise pointer equality.
func SameReferences(a, b []*Reference) bool {
	return slices.Equal(a, b)
}

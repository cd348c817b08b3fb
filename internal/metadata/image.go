// Package metadata describes compiled assembly images (.cvm) and the
// references that point at them.
package metadata

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Current image schema - increment when Image layout changes.
const ImageSchema uint16 = 1

// ErrMalformed is wrapped by every decoding or validation failure.
var ErrMalformed = errors.New("malformed metadata image")

// Identity names an assembly.
type Identity struct {
	Name           string `msgpack:"name" yaml:"name"`
	Version        string `msgpack:"version,omitempty" yaml:"version,omitempty"`
	Culture        string `msgpack:"culture,omitempty" yaml:"culture,omitempty"`
	PublicKeyToken string `msgpack:"token,omitempty" yaml:"token,omitempty"`
}

func (id Identity) String() string {
	var b strings.Builder
	b.WriteString(id.Name)
	b.WriteString(", Version=")
	b.WriteString(ParseVersion(id.Version).String())
	if id.Culture != "" {
		b.WriteString(", Culture=" + id.Culture)
	}
	if id.PublicKeyToken != "" {
		b.WriteString(", PublicKeyToken=" + id.PublicKeyToken)
	}
	return b.String()
}

// Version is a four-part assembly version.
type Version struct {
	Major, Minor, Build, Revision uint16
}

// ParseVersion reads "1", "1.2", "1.2.3" or "1.2.3.4"; malformed parts read as 0.
func ParseVersion(s string) Version {
	var parts [4]uint16
	for i, f := range strings.SplitN(s, ".", 4) {
		n, err := strconv.ParseUint(strings.TrimSpace(f), 10, 16)
		if err != nil {
			continue
		}
		parts[i] = uint16(n)
	}
	return Version{parts[0], parts[1], parts[2], parts[3]}
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
}

// Image is the serialized form of one assembly.
type Image struct {
	Schema     uint16     `msgpack:"schema" yaml:"schema"`
	Identity   Identity   `msgpack:"identity" yaml:"identity"`
	References []Identity `msgpack:"references,omitempty" yaml:"references,omitempty"`
	Types      []TypeDef  `msgpack:"types,omitempty" yaml:"types,omitempty"`
	// EntryPoint is "Namespace.Type.Method" for executables.
	EntryPoint string `msgpack:"entry,omitempty" yaml:"entry,omitempty"`
}

// TypeDef is a top-level or nested type.
type TypeDef struct {
	Namespace string      `msgpack:"ns,omitempty" yaml:"namespace,omitempty"`
	Name      string      `msgpack:"name" yaml:"name"`
	Arity     int         `msgpack:"arity,omitempty" yaml:"arity,omitempty"`
	Kind      string      `msgpack:"kind" yaml:"kind"`
	Public    bool        `msgpack:"public,omitempty" yaml:"public,omitempty"`
	Methods   []MethodDef `msgpack:"methods,omitempty" yaml:"methods,omitempty"`
	Nested    []TypeDef   `msgpack:"nested,omitempty" yaml:"nested,omitempty"`
}

// MethodDef is a method signature.
type MethodDef struct {
	Name   string   `msgpack:"name" yaml:"name"`
	Arity  int      `msgpack:"arity,omitempty" yaml:"arity,omitempty"`
	Static bool     `msgpack:"static,omitempty" yaml:"static,omitempty"`
	Async  bool     `msgpack:"async,omitempty" yaml:"async,omitempty"`
	Return string   `msgpack:"ret" yaml:"returns"`
	Params []string `msgpack:"params,omitempty" yaml:"params,omitempty"`
}

// Validate checks structural invariants of a decoded image.
func (img *Image) Validate() error {
	if img == nil {
		return fmt.Errorf("%w: empty image", ErrMalformed)
	}
	if img.Schema != ImageSchema {
		return fmt.Errorf("%w: unsupported schema %d", ErrMalformed, img.Schema)
	}
	if strings.TrimSpace(img.Identity.Name) == "" {
		return fmt.Errorf("%w: missing assembly name", ErrMalformed)
	}
	for i, ref := range img.References {
		if strings.TrimSpace(ref.Name) == "" {
			return fmt.Errorf("%w: reference #%d has no name", ErrMalformed, i)
		}
	}
	return validateTypes(img.Types, "")
}

func validateTypes(types []TypeDef, outer string) error {
	for _, t := range types {
		if t.Name == "" {
			return fmt.Errorf("%w: unnamed type in %q", ErrMalformed, outer)
		}
		if t.Arity < 0 {
			return fmt.Errorf("%w: type %s has negative arity", ErrMalformed, t.Name)
		}
		if err := validateTypes(t.Nested, t.Name); err != nil {
			return err
		}
	}
	return nil
}

// Defines reports whether the image declares a top-level type ns.name.
func (img *Image) Defines(ns, name string) bool {
	for _, t := range img.Types {
		if t.Namespace == ns && t.Name == name && t.Arity == 0 {
			return true
		}
	}
	return false
}

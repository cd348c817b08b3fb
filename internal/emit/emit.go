// Package emit turns a bound source assembly into a metadata image.
package emit

import (
	"context"
	"fmt"

	"corvid/internal/metadata"
	"corvid/internal/symbols"
)

// Input is everything an Emitter receives. The compilation only calls an emitter
// after the declaration and compile stages are free of errors.
type Input struct {
	Assembly *symbols.Assembly
	// EntryPoint is nil for libraries, modules and scripts.
	EntryPoint *symbols.Method
	Format     metadata.Format
}

// Emitter produces the output artifact.
type Emitter interface {
	Emit(ctx context.Context, in Input) ([]byte, error)
}

// Default writes the assembly's public surface as an image, msgpack unless
// Input.Format asks for YAML. The result is directly usable as a reference.
type Default struct{}

var _ Emitter = Default{}

func (Default) Emit(ctx context.Context, in Input) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := Image(in)
	if err != nil {
		return nil, err
	}
	format := in.Format
	if format == metadata.FormatAuto {
		format = metadata.FormatMsgpack
	}
	return metadata.Encode(img, format)
}

// Image builds the metadata image without encoding it.
func Image(in Input) (*metadata.Image, error) {
	if in.Assembly == nil {
		return nil, fmt.Errorf("emit: no assembly")
	}
	img := symbols.ToImage(in.Assembly)
	img.Types = mergePartials(img.Types)
	if m := in.EntryPoint; m != nil && m.Containing != nil {
		img.EntryPoint = m.Containing.Display() + "." + m.Name
	}
	if err := img.Validate(); err != nil {
		return nil, fmt.Errorf("emit: %w", err)
	}
	return img, nil
}

// mergePartials folds declarations of the same type (partial types spread over
// several units) into one definition, keeping the first position.
func mergePartials(types []metadata.TypeDef) []metadata.TypeDef {
	if len(types) == 0 {
		return nil
	}
	type key struct {
		ns, name string
		arity    int
	}
	index := make(map[key]int, len(types))
	out := make([]metadata.TypeDef, 0, len(types))
	for _, t := range types {
		k := key{t.Namespace, t.Name, t.Arity}
		if i, ok := index[k]; ok {
			out[i].Methods = append(out[i].Methods, t.Methods...)
			out[i].Nested = mergePartials(append(out[i].Nested, t.Nested...))
			out[i].Public = out[i].Public || t.Public
			continue
		}
		index[k] = len(out)
		t.Nested = mergePartials(t.Nested)
		out = append(out, t)
	}
	return out
}

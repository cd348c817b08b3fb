package metadata

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Comparer decides when two identities denote the same logical assembly.
type Comparer interface {
	Name() string
	// Key is equal for exactly the identities the comparer treats as equivalent.
	Key(id Identity) string
}

// Equivalent reports whether a and b are the same assembly under c.
func Equivalent(c Comparer, a, b Identity) bool {
	return c.Key(a) == c.Key(b)
}

type strictComparer struct{}

// Strict requires name, full version, culture and public key token to match.
var Strict Comparer = strictComparer{}

func (strictComparer) Name() string { return "strict" }

func (strictComparer) Key(id Identity) string {
	return norm.NFC.String(id.Name) + "\x00" + ParseVersion(id.Version).String() + "\x00" +
		norm.NFC.String(id.Culture) + "\x00" + strings.ToLower(id.PublicKeyToken)
}

type lenientComparer struct{}

// Lenient folds case in name and culture and only compares the major version.
var Lenient Comparer = lenientComparer{}

func (lenientComparer) Name() string { return "lenient" }

func (lenientComparer) Key(id Identity) string {
	// cases.Caser keeps state, one per call
	fold := cases.Fold()
	major := strconv.FormatUint(uint64(ParseVersion(id.Version).Major), 10)
	return fold.String(norm.NFC.String(id.Name)) + "\x00" + fold.String(norm.NFC.String(id.Culture)) + "\x00" + major
}

// ComparerByName maps "strict"/"lenient" ("" means strict).
func ComparerByName(name string) (Comparer, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "strict":
		return Strict, true
	case "lenient":
		return Lenient, true
	}
	return nil, false
}

package values

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Identifier is a name that is valid as a target-language identifier:
// ASCII letters, digits and underscores, not starting with a digit.
type Identifier struct {
	value string
}

// NewIdentifier folds an arbitrary host name into an Identifier.
// Diacritics are stripped ("Café" becomes "Cafe"), every other character outside
// [A-Za-z0-9_] becomes an underscore, and a leading digit gets an underscore prefix.
func NewIdentifier(name string) Identifier {
	folded := foldDiacritics(name)

	var b strings.Builder
	b.Grow(len(folded) + 1)
	for _, r := range folded {
		switch {
		case r == '_', r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	s := b.String()
	if s == "" {
		return Identifier{value: "_"}
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}
	return Identifier{value: s}
}

// IsIdentifier reports whether s is already a valid identifier.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r < unicode.MaxASCII && unicode.IsLetter(r):
		case i > 0 && r < unicode.MaxASCII && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// String returns the identifier text
func (i Identifier) String() string {
	return i.value
}

// Scoped joins the identifier with an owner identifier, as in "speed_Cube".
func (i Identifier) Scoped(owner Identifier) Identifier {
	return Identifier{value: i.value + "_" + owner.value}
}

// Equals checks if two identifiers are equal
func (i Identifier) Equals(other Identifier) bool {
	return i.value == other.value
}

// Package division defines the value types shared by the matching pipeline:
// OCD division identifiers, jurisdictions, census type codes and reference entries.
package division

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrInvalidIdentifier is returned when a string is not a Canadian census OCD identifier.
var ErrInvalidIdentifier = eris.New("division: invalid identifier")

// Prefix is the OCD namespace prepended to every identifier.
const Prefix = "ocd-division/"

const countryPart = "country:ca/"

// Kind is the census division level an identifier names.
type Kind string

const (
	// CensusDivision identifies a census division ("cd").
	CensusDivision Kind = "cd"
	// CensusSubdivision identifies a census subdivision ("csd").
	CensusSubdivision Kind = "csd"
)

// codeLen is the number of SGC digits in a code of each kind.
var codeLen = map[Kind]int{
	CensusDivision:    4,
	CensusSubdivision: 7,
}

// ParseKind converts "cd" or "csd" into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case CensusDivision, CensusSubdivision:
		return Kind(s), nil
	default:
		return "", eris.Errorf("division: unknown kind %q (valid: cd, csd)", s)
	}
}

// Identifier is an OCD division identifier such as
// "ocd-division/country:ca/csd:3520005". The zero value is invalid.
type Identifier struct {
	kind Kind
	code string
}

// ParseIdentifier parses an identifier with or without the "ocd-division/" prefix.
func ParseIdentifier(s string) (Identifier, error) {
	rest := strings.TrimPrefix(strings.TrimSpace(s), Prefix)
	if !strings.HasPrefix(rest, countryPart) {
		return Identifier{}, eris.Wrapf(ErrInvalidIdentifier, "%q", s)
	}
	rest = strings.TrimPrefix(rest, countryPart)

	kindStr, code, ok := strings.Cut(rest, ":")
	if !ok {
		return Identifier{}, eris.Wrapf(ErrInvalidIdentifier, "%q", s)
	}
	kind, err := ParseKind(kindStr)
	if err != nil {
		return Identifier{}, eris.Wrapf(ErrInvalidIdentifier, "%q: unknown kind", s)
	}
	if len(code) != codeLen[kind] || !isDigits(code) {
		return Identifier{}, eris.Wrapf(ErrInvalidIdentifier, "%q: code must be %d digits", s, codeLen[kind])
	}
	return Identifier{kind: kind, code: code}, nil
}

// MustParseIdentifier is ParseIdentifier for literals; it panics on error.
func MustParseIdentifier(s string) Identifier {
	id, err := ParseIdentifier(s)
	if err != nil {
		panic(err)
	}
	return id
}

// NewIdentifier builds an identifier from a kind and an SGC code.
func NewIdentifier(kind Kind, code string) (Identifier, error) {
	return ParseIdentifier(countryPart + string(kind) + ":" + code)
}

// Kind returns the census level of the identifier.
func (id Identifier) Kind() Kind { return id.kind }

// Code returns the SGC code, e.g. "3520005".
func (id Identifier) Code() string { return id.code }

// SGCProvinceCode returns the first two digits of the code, e.g. "35".
func (id Identifier) SGCProvinceCode() string {
	if len(id.code) < 2 {
		return ""
	}
	return id.code[:2]
}

// CensusDivisionCode returns the first four digits of the code, e.g. "3520".
func (id Identifier) CensusDivisionCode() string {
	if len(id.code) < 4 {
		return ""
	}
	return id.code[:4]
}

// IsZero reports whether the identifier is the zero value.
func (id Identifier) IsZero() bool { return id.code == "" }

// String returns the full identifier including the "ocd-division/" prefix.
func (id Identifier) String() string {
	if id.IsZero() {
		return ""
	}
	return Prefix + countryPart + string(id.kind) + ":" + id.code
}

// Entry is a reference (identifier, canonical name) pair.
type Entry struct {
	ID   Identifier
	Name string
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

package division

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// Jurisdiction is a province or territory postal abbreviation in lower case ("on", "qc").
type Jurisdiction string

// ParseJurisdiction lower-cases and trims s. It does not check membership in an SGC table.
func ParseJurisdiction(s string) Jurisdiction {
	return Jurisdiction(strings.ToLower(strings.TrimSpace(s)))
}

// SGC maps two-digit Standard Geographical Classification province codes to jurisdictions.
type SGC struct {
	byCode map[string]Jurisdiction
}

// DefaultSGC returns the SGC table for the thirteen provinces and territories.
func DefaultSGC() *SGC {
	return NewSGC(map[string]Jurisdiction{
		"10": "nl",
		"11": "pe",
		"12": "ns",
		"13": "nb",
		"24": "qc",
		"35": "on",
		"46": "mb",
		"47": "sk",
		"48": "ab",
		"59": "bc",
		"60": "yt",
		"61": "nt",
		"62": "nu",
	})
}

// NewSGC copies the given code table.
func NewSGC(byCode map[string]Jurisdiction) *SGC {
	m := make(map[string]Jurisdiction, len(byCode))
	for k, v := range byCode {
		m[k] = v
	}
	return &SGC{byCode: m}
}

// Jurisdiction returns the jurisdiction for a two-digit SGC code.
func (s *SGC) Jurisdiction(code string) (Jurisdiction, error) {
	j, ok := s.byCode[code]
	if !ok {
		return "", eris.Errorf("division: unknown SGC province code %q", code)
	}
	return j, nil
}

// JurisdictionOf returns the jurisdiction containing the identifier.
func (s *SGC) JurisdictionOf(id Identifier) (Jurisdiction, error) {
	j, err := s.Jurisdiction(id.SGCProvinceCode())
	if err != nil {
		return "", eris.Wrapf(err, "division: %s", id)
	}
	return j, nil
}

// Jurisdictions returns every known jurisdiction, sorted.
func (s *SGC) Jurisdictions() []Jurisdiction {
	out := make([]Jurisdiction, 0, len(s.byCode))
	for _, j := range s.byCode {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i] < out[k] })
	return out
}

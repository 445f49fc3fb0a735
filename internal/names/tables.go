// Package names normalizes, fingerprints and classifies Canadian division names
// so that names scraped from different sources can be compared with official
// census names.
package names

import (
	_ "embed"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/opencivicdata/ocdid-ca/internal/division"
)

//go:embed data/types.yaml
var defaultTypesYAML []byte

//go:embed data/corrections.yaml
var defaultCorrectionsYAML []byte

// KindTypes holds the type names of one kind, by jurisdiction.
type KindTypes struct {
	// SuffixOnly names are recognized at the end of a name but never stripped.
	SuffixOnly    []string                                                  `yaml:"suffix_only"`
	Jurisdictions map[division.Jurisdiction]map[string]division.TypeCode `yaml:"jurisdictions"`
}

// Corrections holds scraped-name overrides of one kind, by jurisdiction.
type Corrections struct {
	Identifiers map[division.Jurisdiction]map[string]division.Identifier
	Names       map[division.Jurisdiction]map[string]string
}

type correctionsYAML struct {
	Identifiers map[division.Jurisdiction]map[string]string `yaml:"identifiers"`
	Names       map[division.Jurisdiction]map[string]string `yaml:"names"`
}

// Tables is the static configuration injected into normalizers and type resolvers.
type Tables struct {
	Types       map[division.Kind]KindTypes
	Corrections map[division.Kind]Corrections
}

// DefaultTables parses the embedded type and correction tables.
func DefaultTables() (*Tables, error) {
	return ParseTables(defaultTypesYAML, defaultCorrectionsYAML)
}

// ParseTables parses and validates YAML type and correction tables. Every type
// code must belong to its kind's closed code set and every override identifier
// must parse and be of the matching kind.
func ParseTables(typesData, correctionsData []byte) (*Tables, error) {
	var types map[division.Kind]KindTypes
	if err := yaml.Unmarshal(typesData, &types); err != nil {
		return nil, eris.Wrap(err, "names: parse type tables")
	}
	var raw map[division.Kind]correctionsYAML
	if err := yaml.Unmarshal(correctionsData, &raw); err != nil {
		return nil, eris.Wrap(err, "names: parse correction tables")
	}

	for kind, kt := range types {
		codes := division.TypeCodesFor(kind)
		if codes == nil {
			return nil, eris.Errorf("names: type tables: unknown kind %q", kind)
		}
		for j, names := range kt.Jurisdictions {
			for name, code := range names {
				if !codes.Contains(code) {
					return nil, eris.Wrapf(ErrUnknownTypeName, "%s/%s: %q has code %q outside the %s code set", kind, j, name, code, kind)
				}
			}
		}
	}

	corrections := make(map[division.Kind]Corrections, len(raw))
	for kind, c := range raw {
		out := Corrections{
			Identifiers: make(map[division.Jurisdiction]map[string]division.Identifier, len(c.Identifiers)),
			Names:       c.Names,
		}
		for j, m := range c.Identifiers {
			ids := make(map[string]division.Identifier, len(m))
			for name, s := range m {
				id, err := division.ParseIdentifier(s)
				if err != nil {
					return nil, eris.Wrapf(err, "names: correction %q", name)
				}
				if id.Kind() != kind {
					return nil, eris.Errorf("names: correction %q: %s is not a %s identifier", name, id, kind)
				}
				ids[name] = id
			}
			out.Identifiers[j] = ids
		}
		corrections[kind] = out
	}

	return &Tables{Types: types, Corrections: corrections}, nil
}

// TypeNames returns the type names of a kind in a jurisdiction, sorted.
func (t *Tables) TypeNames(kind division.Kind, j division.Jurisdiction) []string {
	m := t.Types[kind].Jurisdictions[j]
	out := make([]string, 0, len(m))
	for name := range m {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

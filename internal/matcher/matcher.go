// Package matcher resolves scraped (jurisdiction, name) pairs to reference
// census entries. A Matcher keys reference entries and scraped names the same
// way, so a scraped name matches when its key is in the reference index.
package matcher

import (
	"github.com/rotisserie/eris"

	"github.com/opencivicdata/ocdid-ca/internal/division"
	"github.com/opencivicdata/ocdid-ca/internal/index"
	"github.com/opencivicdata/ocdid-ca/internal/names"
)

// Strategy selects the parts of a key.
type Strategy int

const (
	// NameOnly keys on jurisdiction and name fingerprint.
	NameOnly Strategy = iota
	// NameType keys on jurisdiction, type code and name fingerprint.
	NameType
)

// String returns the strategy name used in logs.
func (s Strategy) String() string {
	switch s {
	case NameOnly:
		return "name"
	case NameType:
		return "name_type"
	default:
		return "unknown"
	}
}

// Deps are the read-only inputs of a matcher.
type Deps struct {
	Tables  *names.Tables
	SGC     *division.SGC
	Entries []division.Entry
	// Types is required by the NameType strategy.
	Types division.TypeTable
	Order names.WordOrder
}

// Matcher looks up scraped names in a reference index built with one strategy.
type Matcher struct {
	kind       division.Kind
	strategy   Strategy
	order      names.WordOrder
	sgc        *division.SGC
	types      division.TypeTable
	official   map[division.Identifier]string
	normalizer *names.Normalizer
	resolver   *names.TypeResolver
	// divisions recognizes census division type names; set for subdivisions only.
	divisions *names.TypeResolver
	index     *index.Index
}

// New builds the reference index of kind under strategy.
func New(kind division.Kind, strategy Strategy, deps Deps) (*Matcher, error) {
	if deps.Tables == nil || deps.SGC == nil {
		return nil, eris.New("matcher: tables and SGC codes are required")
	}
	if strategy == NameType && deps.Types == nil {
		return nil, eris.Errorf("matcher: %s %s strategy requires a type table", kind, strategy)
	}

	official := make(map[division.Identifier]string, len(deps.Entries))
	for _, e := range deps.Entries {
		official[e.ID] = e.Name
	}

	resolver, err := names.NewTypeResolver(deps.Tables, kind)
	if err != nil {
		return nil, eris.Wrap(err, "matcher")
	}

	m := &Matcher{
		kind:       kind,
		strategy:   strategy,
		order:      deps.Order,
		sgc:        deps.SGC,
		types:      deps.Types,
		official:   official,
		normalizer: names.NewNormalizer(deps.Tables.Corrections[kind], official),
		resolver:   resolver,
	}

	if kind == division.CensusSubdivision {
		m.divisions, err = names.NewTypeResolver(deps.Tables, division.CensusDivision)
		if err != nil {
			return nil, eris.Wrap(err, "matcher")
		}
	}

	m.index, err = index.Build(deps.Entries, m.entryKey)
	if err != nil {
		return nil, eris.Wrapf(err, "matcher: build %s %s index", kind, strategy)
	}
	return m, nil
}

// Kind returns the census level matched.
func (m *Matcher) Kind() division.Kind { return m.kind }

// Strategy returns the key strategy.
func (m *Matcher) Strategy() Strategy { return m.strategy }

// Index returns the reference index.
func (m *Matcher) Index() *index.Index { return m.index }

// entryKey keys a trusted reference entry. Its jurisdiction and type come from
// the identifier, never from the name.
func (m *Matcher) entryKey(e division.Entry) (string, bool, error) {
	if e.ID.Kind() != m.kind {
		return "", false, eris.Errorf("matcher: %s is not a %s identifier", e.ID, m.kind)
	}
	j, err := m.sgc.JurisdictionOf(e.ID)
	if err != nil {
		return "", false, err
	}
	fp := names.Fingerprint(m.normalizer.Normalize(e.Name, j), m.order)

	if m.strategy == NameOnly {
		return index.Key(string(j), fp), true, nil
	}
	code, err := m.types.TypeOf(e.ID)
	if err != nil {
		return "", false, err
	}
	return index.Key(string(j), string(code), fp), true, nil
}

// Key returns the lookup key of a scraped name. ok is false when the name
// carries a census division type and so cannot name a subdivision.
func (m *Matcher) Key(j division.Jurisdiction, name string) (key string, ok bool, err error) {
	if id, pinned := m.normalizer.Override(name, j); pinned {
		official, known := m.official[id]
		if !known {
			official = name
		}
		return m.entryKey(division.Entry{ID: id, Name: official})
	}

	normalized := m.normalizer.Normalize(name, j)

	if m.divisions != nil {
		isDivision, err := m.divisions.HasType(normalized, j)
		if err != nil {
			return "", false, eris.Wrap(err, "matcher")
		}
		if isDivision {
			return "", false, nil
		}
	}

	bare, err := m.resolver.StripType(normalized, j)
	if err != nil {
		return "", false, eris.Wrap(err, "matcher")
	}
	fp := names.Fingerprint(bare, m.order)

	if m.strategy == NameOnly {
		return index.Key(string(j), fp), true, nil
	}
	code, err := m.resolver.ExtractType(normalized, j)
	if err != nil {
		return "", false, eris.Wrap(err, "matcher")
	}
	return index.Key(string(j), string(code.Fold()), fp), true, nil
}

// Lookup returns the reference entry for a key.
func (m *Matcher) Lookup(key string) (division.Entry, bool) {
	return m.index.Lookup(key)
}

// Match keys a scraped name and looks it up. The key is returned even when
// nothing matched, for the unmatched report.
func (m *Matcher) Match(j division.Jurisdiction, name string) (division.Entry, string, bool, error) {
	key, ok, err := m.Key(j, name)
	if err != nil || !ok {
		return division.Entry{}, "", false, err
	}
	e, found := m.Lookup(key)
	return e, key, found, nil
}

package names

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/opencivicdata/ocdid-ca/internal/division"
)

var (
	// ErrUnknownJurisdiction is returned for a jurisdiction absent from the type tables.
	ErrUnknownJurisdiction = eris.New("names: unknown jurisdiction")
	// ErrUnknownTypeName is returned for a type name absent from a jurisdiction's table.
	ErrUnknownTypeName = eris.New("names: unknown type name")
)

// typePattern captures a jurisdiction's type names at the start of a name,
// optionally followed by a linking word, or at the end of a name.
type typePattern struct {
	codes      map[string]division.TypeCode
	re         *regexp.Regexp // nil when the jurisdiction has no type names
	suffixOnly []string
}

// TypeResolver extracts and strips census type names for one kind.
type TypeResolver struct {
	kind     division.Kind
	patterns map[division.Jurisdiction]*typePattern
}

// NewTypeResolver compiles one pattern per jurisdiction of kind.
func NewTypeResolver(tables *Tables, kind division.Kind) (*TypeResolver, error) {
	kt, ok := tables.Types[kind]
	if !ok {
		return nil, eris.Errorf("names: no type tables for kind %q", kind)
	}

	suffixOnly := make(map[string]bool, len(kt.SuffixOnly))
	for _, name := range kt.SuffixOnly {
		suffixOnly[name] = true
	}

	patterns := make(map[division.Jurisdiction]*typePattern, len(kt.Jurisdictions))
	for j, codes := range kt.Jurisdictions {
		p := &typePattern{codes: codes}
		if len(codes) == 0 {
			patterns[j] = p
			continue
		}

		var leading, trailing []string
		for _, name := range longestFirst(codes) {
			quoted := regexp.QuoteMeta(name)
			leading = append(leading, quoted)
			if suffixOnly[name] {
				p.suffixOnly = append(p.suffixOnly, name)
				continue
			}
			trailing = append(trailing, quoted)
		}

		expr := `\A(` + strings.Join(leading, "|") + `) (?:d'|de |des |of )?`
		if len(trailing) > 0 {
			expr += `| (` + strings.Join(trailing, "|") + `)\z`
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, eris.Wrapf(err, "names: compile %s/%s type pattern", kind, j)
		}
		p.re = re
		patterns[j] = p
	}

	return &TypeResolver{kind: kind, patterns: patterns}, nil
}

// longestFirst orders names so that "Municipality of the District" is tried
// before "Municipality".
func longestFirst(codes map[string]division.TypeCode) []string {
	out := make([]string, 0, len(codes))
	for name := range codes {
		out = append(out, name)
	}
	sort.Slice(out, func(i, k int) bool {
		if len(out[i]) != len(out[k]) {
			return len(out[i]) > len(out[k])
		}
		return out[i] < out[k]
	})
	return out
}

// Kind returns the kind whose type names the resolver recognizes.
func (r *TypeResolver) Kind() division.Kind { return r.kind }

func (r *TypeResolver) pattern(j division.Jurisdiction) (*typePattern, error) {
	p, ok := r.patterns[j]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownJurisdiction, "%s type names for %q", r.kind, j)
	}
	return p, nil
}

// HasType reports whether name starts or ends with one of j's type names.
func (r *TypeResolver) HasType(name string, j division.Jurisdiction) (bool, error) {
	p, err := r.pattern(j)
	if err != nil {
		return false, err
	}
	return p.re != nil && p.re.MatchString(name), nil
}

// ExtractType returns the type code named in name, or "" when name is typeless.
// A suffix-only name ("County") yields its code when it is the final word.
func (r *TypeResolver) ExtractType(name string, j division.Jurisdiction) (division.TypeCode, error) {
	p, err := r.pattern(j)
	if err != nil {
		return "", err
	}
	if p.re != nil {
		if m := p.re.FindStringSubmatch(name); m != nil {
			typeName := m[1]
			if typeName == "" {
				typeName = m[2]
			}
			code, ok := p.codes[typeName]
			if !ok {
				return "", eris.Wrapf(ErrUnknownTypeName, "%s/%s: %q", r.kind, j, typeName)
			}
			return code, nil
		}
	}
	for _, typeName := range p.suffixOnly {
		if strings.HasSuffix(name, " "+typeName) {
			return p.codes[typeName], nil
		}
	}
	return "", nil
}

// StripType removes the first type name match from name, returning the bare place name.
func (r *TypeResolver) StripType(name string, j division.Jurisdiction) (string, error) {
	p, err := r.pattern(j)
	if err != nil {
		return "", err
	}
	if p.re == nil {
		return name, nil
	}
	loc := p.re.FindStringIndex(name)
	if loc == nil {
		return name, nil
	}
	return name[:loc[0]] + name[loc[1]:], nil
}

package matcher

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/opencivicdata/ocdid-ca/internal/division"
)

// Result is the outcome of matching one scraped name.
type Result struct {
	Entry    division.Entry
	Matched  bool
	Strategy Strategy
	// Key is the last key tried; empty when the name was skipped.
	Key string
}

// Set pairs the name-only and name+type matchers of one kind.
type Set struct {
	kind       division.Kind
	byName     *Matcher
	byNameType *Matcher // nil without a type table
}

// NewSet builds both indexes of kind concurrently. Without deps.Types only the
// name-only matcher is built.
func NewSet(ctx context.Context, kind division.Kind, deps Deps) (*Set, error) {
	s := &Set{kind: kind}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := New(kind, NameOnly, deps)
		if err != nil {
			return err
		}
		s.byName = m
		return nil
	})
	if deps.Types != nil {
		g.Go(func() error {
			m, err := New(kind, NameType, deps)
			if err != nil {
				return err
			}
			s.byNameType = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrapf(err, "matcher: build %s set", kind)
	}

	zap.L().Debug("matcher: built indexes",
		zap.String("kind", string(kind)),
		zap.Int("entries", len(deps.Entries)),
		zap.Int("name_keys", s.byName.Index().Len()),
		zap.Int("name_collisions", len(s.byName.Index().Collisions())),
	)
	return s, nil
}

// Kind returns the census level matched.
func (s *Set) Kind() division.Kind { return s.kind }

// ByName returns the name-only matcher.
func (s *Set) ByName() *Matcher { return s.byName }

// ByNameType returns the name+type matcher, or nil.
func (s *Set) ByNameType() *Matcher { return s.byNameType }

// LookupByName matches a scraped name with the name-only strategy.
func (s *Set) LookupByName(j division.Jurisdiction, name string) (division.Entry, bool, error) {
	e, _, ok, err := s.byName.Match(j, name)
	return e, ok, err
}

// LookupByNameAndType matches a scraped name with the name+type strategy.
func (s *Set) LookupByNameAndType(j division.Jurisdiction, name string) (division.Entry, bool, error) {
	if s.byNameType == nil {
		return division.Entry{}, false, nil
	}
	e, _, ok, err := s.byNameType.Match(j, name)
	return e, ok, err
}

// Match tries the name-only matcher, then the name+type matcher.
func (s *Set) Match(j division.Jurisdiction, name string) (Result, error) {
	e, key, ok, err := s.byName.Match(j, name)
	if err != nil {
		return Result{}, err
	}
	if ok {
		return Result{Entry: e, Matched: true, Strategy: NameOnly, Key: key}, nil
	}
	if s.byNameType == nil {
		return Result{Strategy: NameOnly, Key: key}, nil
	}

	e, key, ok, err = s.byNameType.Match(j, name)
	if err != nil {
		return Result{}, err
	}
	return Result{Entry: e, Matched: ok, Strategy: NameType, Key: key}, nil
}

package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/opencivicdata/ocdid-ca/internal/config"
	"github.com/opencivicdata/ocdid-ca/internal/division"
	"github.com/opencivicdata/ocdid-ca/internal/fetcher"
	"github.com/opencivicdata/ocdid-ca/internal/matcher"
	"github.com/opencivicdata/ocdid-ca/internal/names"
	"github.com/opencivicdata/ocdid-ca/internal/refdata"
)

// reference is the loaded reference data with a matcher set per kind.
type reference struct {
	sgc  *division.SGC
	sets map[division.Kind]*matcher.Set
}

// loadReference reads the reference data under c.Data.Dir and builds the
// matcher sets of both kinds.
func loadReference(ctx context.Context, c *config.Config) (*reference, error) {
	tables, err := names.DefaultTables()
	if err != nil {
		return nil, err
	}

	store := &refdata.Store{Dir: c.Data.Dir, Charset: c.Data.Encoding}
	data, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	ref := &reference{sgc: data.SGC, sets: make(map[division.Kind]*matcher.Set)}
	for _, kind := range []division.Kind{division.CensusDivision, division.CensusSubdivision} {
		set, err := matcher.NewSet(ctx, kind, matcher.Deps{
			Tables:  tables,
			SGC:     data.SGC,
			Entries: data.Entries[kind],
			Types:   data.Types[kind],
			Order:   c.WordOrder(),
		})
		if err != nil {
			return nil, eris.Wrapf(err, "load %s reference", kind)
		}
		ref.sets[kind] = set
	}
	return ref, nil
}

func newFetcher(c *config.Config) *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:         c.Fetch.UserAgent,
		Timeout:           time.Duration(c.Fetch.TimeoutSecs) * time.Second,
		MaxRetries:        c.Fetch.MaxRetries,
		RequestsPerSecond: c.Fetch.RequestsPerSecond,
	})
}

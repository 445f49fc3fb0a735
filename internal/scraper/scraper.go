// Package scraper defines the scrapers that produce identifier CSV files and
// the registry the CLI dispatches on.
package scraper

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/opencivicdata/ocdid-ca/internal/division"
	"github.com/opencivicdata/ocdid-ca/internal/fetcher"
	"github.com/opencivicdata/ocdid-ca/internal/matcher"
	"github.com/opencivicdata/ocdid-ca/internal/ocdid"
)

// Env carries what a scraper run needs. Sets and Report are only required by
// scrapers that match names.
type Env struct {
	Fetcher fetcher.Fetcher
	Writer  *ocdid.Writer
	SGC     *division.SGC
	Sets    map[division.Kind]*matcher.Set
	Report  *matcher.Report
	TempDir string
}

// set returns the matcher set of kind or an error naming the scraper.
func (e Env) set(name string, kind division.Kind) (*matcher.Set, error) {
	s, ok := e.Sets[kind]
	if !ok || s == nil {
		return nil, eris.Errorf("scraper: %s needs %s reference data", name, kind)
	}
	return s, nil
}

// Scraper produces one identifier CSV file.
type Scraper interface {
	// Name returns the command name, e.g. "census-subdivisions".
	Name() string

	// Description returns a one-line summary for help output.
	Description() string

	// OutputPath returns where the output conventionally lives, relative to the data directory.
	OutputPath() string

	// Run writes the CSV rows to env.Writer.
	Run(ctx context.Context, env Env) error
}

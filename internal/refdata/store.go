package refdata

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/opencivicdata/ocdid-ca/internal/division"
)

const sgcFile = "mappings/country-ca-sgc/ca_provinces_and_territories.csv"

var fileNames = map[division.Kind]string{
	division.CensusDivision:    "ca_census_divisions.csv",
	division.CensusSubdivision: "ca_census_subdivisions.csv",
}

// EntriesPath returns the identifiers file of kind relative to the data directory.
func EntriesPath(kind division.Kind) string {
	return filepath.Join("identifiers", "country-ca", fileNames[kind])
}

// TypesPath returns the type mapping file of kind relative to the data directory.
func TypesPath(kind division.Kind) string {
	return filepath.Join("mappings", "country-ca-types", fileNames[kind])
}

// Data is the loaded reference data.
type Data struct {
	SGC     *division.SGC
	Entries map[division.Kind][]division.Entry
	// Types has no entry for a kind whose mapping file is absent.
	Types map[division.Kind]division.TypeTable
}

// Store reads reference data from a directory tree.
type Store struct {
	Dir     string
	Charset string
}

// Load reads the SGC table and the entries and types of both kinds. The
// identifier files are required; a missing SGC file falls back to
// division.DefaultSGC and a missing types file leaves that kind without types.
func (s *Store) Load(ctx context.Context) (*Data, error) {
	log := zap.L().With(zap.String("dir", s.Dir))
	data := &Data{
		Entries: make(map[division.Kind][]division.Entry),
		Types:   make(map[division.Kind]division.TypeTable),
	}

	found, err := s.open(sgcFile, func(f *os.File) error {
		sgc, err := LoadSGC(ctx, f, s.Charset)
		data.SGC = sgc
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		log.Debug("refdata: no SGC file, using built-in table")
		data.SGC = division.DefaultSGC()
	}

	for _, kind := range []division.Kind{division.CensusDivision, division.CensusSubdivision} {
		found, err := s.open(EntriesPath(kind), func(f *os.File) error {
			entries, err := LoadEntries(ctx, f, kind, s.Charset)
			data.Entries[kind] = entries
			return err
		})
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, eris.Wrapf(ErrNotFound, "%s in %s", EntriesPath(kind), s.Dir)
		}

		found, err = s.open(TypesPath(kind), func(f *os.File) error {
			types, err := LoadTypes(ctx, f, kind, s.Charset)
			data.Types[kind] = types
			return err
		})
		if err != nil {
			return nil, err
		}
		if !found {
			log.Warn("refdata: no type mapping, name+type matching disabled", zap.String("kind", string(kind)))
		}

		log.Info("refdata: loaded",
			zap.String("kind", string(kind)),
			zap.Int("entries", len(data.Entries[kind])),
			zap.Int("types", len(data.Types[kind])),
		)
	}

	return data, nil
}

// open calls fn with the file at rel. It reports false without error when the
// file does not exist.
func (s *Store) open(rel string, fn func(*os.File) error) (bool, error) {
	path := filepath.Join(s.Dir, rel)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "refdata: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	if err := fn(f); err != nil {
		return true, eris.Wrapf(err, "refdata: load %s", rel)
	}
	return true, nil
}

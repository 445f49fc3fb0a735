package scraper

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/opencivicdata/ocdid-ca/internal/division"
	"github.com/opencivicdata/ocdid-ca/internal/fetcher"
)

// Source formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatSHP  = "shp"
	FormatZIP  = "zip" // zipped shapefile
)

// Source describes a file of (jurisdiction, name) pairs.
type Source struct {
	// Location is a local path or an http(s) URL.
	Location string
	// Format is inferred from the extension when empty.
	Format            string
	JurisdictionField string
	NameField         string
	Charset           string
}

func (s Source) format() string {
	if s.Format != "" {
		return strings.ToLower(s.Format)
	}
	return strings.TrimPrefix(strings.ToLower(path.Ext(s.Location)), ".")
}

// MatchedNames matches every pair of a source against the reference data and
// prints the identifiers found.
type MatchedNames struct {
	Kind   division.Kind
	Source Source
}

// Name implements Scraper.
func (s *MatchedNames) Name() string { return "matched-names" }

// Description implements Scraper.
func (s *MatchedNames) Description() string {
	return "Prints a CSV of identifiers matched from a file of names"
}

// OutputPath implements Scraper.
func (s *MatchedNames) OutputPath() string { return "-" }

// Run implements Scraper.
func (s *MatchedNames) Run(ctx context.Context, env Env) error {
	set, err := env.set(s.Name(), s.Kind)
	if err != nil {
		return err
	}

	local, err := s.localPath(ctx, env)
	if err != nil {
		return err
	}
	pairs, err := s.read(ctx, env, local)
	if err != nil {
		return err
	}

	if err := env.Writer.WriteHeader("id", "name"); err != nil {
		return err
	}
	matched := 0
	for i, p := range pairs {
		if p[0] == "" || p[1] == "" {
			continue
		}
		j, err := ResolveJurisdiction(p[0], env.SGC)
		if err != nil {
			return eris.Wrapf(err, "%s: record %d", s.Name(), i+1)
		}
		res, err := set.Match(j, p[1])
		if err != nil {
			return eris.Wrapf(err, "%s: record %d", s.Name(), i+1)
		}
		if env.Report != nil {
			env.Report.Record(j, p[1], res)
		}
		if !res.Matched {
			continue
		}
		if err := env.Writer.Write("", res.Entry.ID.String(), p[1]); err != nil {
			return err
		}
		matched++
	}

	zap.L().Info("matched-names: done",
		zap.String("source", s.Source.Location),
		zap.Int("records", len(pairs)),
		zap.Int("matched", matched),
	)
	return env.Writer.Flush()
}

// localPath downloads a remote source into env.TempDir.
func (s *MatchedNames) localPath(ctx context.Context, env Env) (string, error) {
	loc := s.Source.Location
	if !strings.HasPrefix(loc, "http://") && !strings.HasPrefix(loc, "https://") {
		return loc, nil
	}
	if env.Fetcher == nil {
		return "", eris.Errorf("%s: no fetcher for %s", s.Name(), loc)
	}
	dir, err := os.MkdirTemp(env.TempDir, "matched-names-*")
	if err != nil {
		return "", eris.Wrap(err, "matched-names: temp dir")
	}
	dest := filepath.Join(dir, "source."+s.Source.format())
	if _, err := env.Fetcher.DownloadToFile(ctx, loc, dest); err != nil {
		return "", eris.Wrapf(err, "%s: download %s", s.Name(), loc)
	}
	return dest, nil
}

// read returns (jurisdiction, name) pairs.
func (s *MatchedNames) read(ctx context.Context, env Env, local string) ([][2]string, error) {
	fields := []string{s.Source.JurisdictionField, s.Source.NameField}
	if fields[0] == "" || fields[1] == "" {
		return nil, eris.Errorf("%s: jurisdiction and name fields are required", s.Name())
	}

	var rows [][]string
	var err error
	switch s.Source.format() {
	case FormatCSV:
		rows, err = s.readCSV(ctx, local, fields)
	case FormatXLSX:
		rows, err = s.readXLSX(local, fields)
	case FormatSHP:
		rows, err = fetcher.ReadShapefileAttributes(local, fields)
	case FormatZIP:
		var shpPath string
		dir, mkErr := os.MkdirTemp(env.TempDir, "matched-names-shp-*")
		if mkErr != nil {
			return nil, eris.Wrap(mkErr, "matched-names: temp dir")
		}
		shpPath, err = fetcher.ExtractZIPByExt(local, ".shp", dir)
		if err == nil {
			rows, err = fetcher.ReadShapefileAttributes(shpPath, fields)
		}
	default:
		return nil, eris.Errorf("%s: unsupported format %q", s.Name(), s.Source.format())
	}
	if err != nil {
		return nil, eris.Wrapf(err, "%s: read %s", s.Name(), s.Source.Location)
	}

	pairs := make([][2]string, len(rows))
	for i, r := range rows {
		pairs[i] = [2]string{r[0], r[1]}
	}
	return pairs, nil
}

func (s *MatchedNames) readCSV(ctx context.Context, local string, fields []string) ([][]string, error) {
	f, err := os.Open(local)
	if err != nil {
		return nil, eris.Wrap(err, "open")
	}
	defer f.Close() //nolint:errcheck

	rows, err := fetcher.ReadCSV(ctx, f, fetcher.CSVOptions{TrimSpace: true, Charset: s.Source.Charset})
	if err != nil {
		return nil, err
	}
	return project(rows, fields)
}

func (s *MatchedNames) readXLSX(local string, fields []string) ([][]string, error) {
	rows, err := fetcher.ReadXLSX(local, fetcher.XLSXOptions{SkipBlank: true})
	if err != nil {
		return nil, err
	}
	return project(rows, fields)
}

// project treats the first row as a header and keeps the named columns.
func project(rows [][]string, fields []string) ([][]string, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	cols := columnIndex(rows[0])
	idx := make([]int, len(fields))
	for i, name := range fields {
		c, ok := cols[strings.ToLower(name)]
		if !ok {
			return nil, eris.Errorf("no %q column", name)
		}
		idx[i] = c
	}

	out := make([][]string, 0, len(rows)-1)
	for _, r := range rows[1:] {
		rec := make([]string, len(idx))
		for i, c := range idx {
			if c < len(r) {
				rec[i] = r[c]
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

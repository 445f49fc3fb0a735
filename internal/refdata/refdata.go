// Package refdata loads the reference census identifiers, their type codes and
// the SGC province table from flat CSV files.
package refdata

import (
	"context"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/opencivicdata/ocdid-ca/internal/division"
	"github.com/opencivicdata/ocdid-ca/internal/fetcher"
)

// ErrMalformedRow is returned for reference rows that cannot be trusted.
var ErrMalformedRow = eris.New("refdata: malformed row")

// ErrNotFound is returned by Store.Load when a required file is absent.
var ErrNotFound = eris.New("refdata: not found")

// row is one data row with its 1-based line number in the source file.
type row struct {
	line   int
	fields []string
}

// readRows streams a CSV with a header row and returns the data rows. Rows
// with fewer than two fields or an empty first or second field are malformed.
func readRows(ctx context.Context, r io.Reader, charset string) ([]row, error) {
	rowCh, errCh := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{
		HasHeader: true,
		TrimSpace: true,
		Charset:   charset,
	})

	var rows []row
	var bad error
	line := 1
	for fields := range rowCh {
		line++
		if bad != nil {
			continue
		}
		if len(fields) < 2 || fields[0] == "" || fields[1] == "" {
			bad = eris.Wrapf(ErrMalformedRow, "line %d: want id and value, got %q", line, fields)
			continue
		}
		rows = append(rows, row{line: line, fields: fields})
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrap(err, "refdata")
	}
	if bad != nil {
		return nil, bad
	}
	return rows, nil
}

func parseID(r row, kind division.Kind) (division.Identifier, error) {
	id, err := division.ParseIdentifier(r.fields[0])
	if err != nil {
		return division.Identifier{}, eris.Wrapf(ErrMalformedRow, "line %d: %v", r.line, err)
	}
	if id.Kind() != kind {
		return division.Identifier{}, eris.Wrapf(ErrMalformedRow, "line %d: %s is not a %s identifier", r.line, id, kind)
	}
	return id, nil
}

// LoadEntries reads an "id,name[,...]" file of kind.
func LoadEntries(ctx context.Context, r io.Reader, kind division.Kind, charset string) ([]division.Entry, error) {
	rows, err := readRows(ctx, r, charset)
	if err != nil {
		return nil, err
	}
	entries := make([]division.Entry, 0, len(rows))
	for _, rw := range rows {
		id, err := parseID(rw, kind)
		if err != nil {
			return nil, err
		}
		entries = append(entries, division.Entry{ID: id, Name: rw.fields[1]})
	}
	return entries, nil
}

// LoadTypes reads an "id,type_code" file of kind. Codes outside the kind's
// closed set are malformed.
func LoadTypes(ctx context.Context, r io.Reader, kind division.Kind, charset string) (division.TypeTable, error) {
	rows, err := readRows(ctx, r, charset)
	if err != nil {
		return nil, err
	}
	codes := division.TypeCodesFor(kind)
	types := make(division.TypeTable, len(rows))
	for _, rw := range rows {
		id, err := parseID(rw, kind)
		if err != nil {
			return nil, err
		}
		code := division.TypeCode(rw.fields[1])
		if !codes.Contains(code) {
			return nil, eris.Wrapf(ErrMalformedRow, "line %d: unknown %s type code %q", rw.line, kind, code)
		}
		types[id] = code
	}
	return types, nil
}

// LoadSGC reads an "id,sgc_code" file whose ids end in "province:xx" or
// "territory:xx".
func LoadSGC(ctx context.Context, r io.Reader, charset string) (*division.SGC, error) {
	rows, err := readRows(ctx, r, charset)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]division.Jurisdiction, len(rows))
	for _, rw := range rows {
		i := strings.LastIndex(rw.fields[0], ":")
		if i < 0 || i == len(rw.fields[0])-1 {
			return nil, eris.Wrapf(ErrMalformedRow, "line %d: no jurisdiction in %q", rw.line, rw.fields[0])
		}
		code := rw.fields[1]
		if len(code) != 2 {
			return nil, eris.Wrapf(ErrMalformedRow, "line %d: SGC code %q is not two digits", rw.line, code)
		}
		byCode[code] = division.ParseJurisdiction(rw.fields[0][i+1:])
	}
	return division.NewSGC(byCode), nil
}

package fetcher

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
)

// ReadShapefileAttributes returns the DBF attributes of every record, one
// slice per record in the order of fields. Field names are matched case
// insensitively. Geometry is ignored.
func ReadShapefileAttributes(path string, fields []string) ([][]string, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "shapefile: open %s", path)
	}
	defer func() { _ = reader.Close() }()

	fieldIdx := make(map[string]int)
	for i, f := range reader.Fields() {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	cols := make([]int, len(fields))
	for i, name := range fields {
		idx, ok := fieldIdx[strings.ToLower(name)]
		if !ok {
			return nil, eris.Errorf("shapefile: field %q not in %s", name, path)
		}
		cols[i] = idx
	}

	var rows [][]string
	for reader.Next() {
		row := make([]string, len(cols))
		for i, idx := range cols {
			row[i] = strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
		}
		rows = append(rows, row)
	}

	return rows, nil
}

package fetcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				cell := row.AddCell()
				cell.SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSX_Basic(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {
			{"Province", "Municipality"},
			{"ON", "City of Toronto"},
			{"NS", " Town of Shelburne "},
		},
	})

	rows, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Province", "Municipality"}, rows[0])
	assert.Equal(t, []string{"ON", "City of Toronto"}, rows[1])
	assert.Equal(t, []string{"NS", "Town of Shelburne"}, rows[2])
}

func TestReadXLSX_SkipRowsAndBlank(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {
			{"Province", "Municipality"},
			{"ON", "Ottawa"},
			{"", ""},
			{"QC", "Lévis"},
		},
	})

	rows, err := ReadXLSX(path, XLSXOptions{SkipRows: 1, SkipBlank: true})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"ON", "Ottawa"}, rows[0])
	assert.Equal(t, []string{"QC", "Lévis"}, rows[1])
}

func TestReadXLSX_SheetName(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Notes":   {{"see other sheet"}},
		"Members": {{"x", "y"}, {"1", "2"}},
	})

	rows, err := ReadXLSX(path, XLSXOptions{SheetName: "Members"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "2"}, rows[1])
}

func TestReadXLSX_SheetNameNotFound(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{"Sheet1": {{"a"}}})

	_, err := ReadXLSX(path, XLSXOptions{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReadXLSX_SheetIndexOutOfRange(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{"Sheet1": {{"a"}}})

	_, err := ReadXLSX(path, XLSXOptions{SheetIndex: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestReadXLSX_MissingFile(t *testing.T) {
	_, err := ReadXLSX(filepath.Join(t.TempDir(), "nope.xlsx"), XLSXOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xlsx: open file")
}

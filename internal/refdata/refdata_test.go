package refdata

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencivicdata/ocdid-ca/internal/division"
)

func TestLoadEntries(t *testing.T) {
	input := `id,name,name_fr
ocd-division/country:ca/csd:3520005,Toronto,
country:ca/csd:2466023,Montréal,Montréal
`
	entries, err := LoadEntries(context.Background(), strings.NewReader(input), division.CensusSubdivision, "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "3520005", entries[0].ID.Code())
	assert.Equal(t, "Toronto", entries[0].Name)
	assert.Equal(t, "Montréal", entries[1].Name)
}

func TestLoadEntries_Latin1(t *testing.T) {
	input := "id,name\ncountry:ca/csd:2425213,L\xe9vis\n"
	entries, err := LoadEntries(context.Background(), strings.NewReader(input), division.CensusSubdivision, "latin-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Lévis", entries[0].Name)
}

func TestLoadEntries_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  string
	}{
		{"one column", "id,name\ncountry:ca/csd:3520005\n", "line 2"},
		{"empty name", "id,name\ncountry:ca/csd:3520005,Toronto\ncountry:ca/csd:3506008,\n", "line 3"},
		{"empty id", "id,name\n,Toronto\n", "line 2"},
		{"bad identifier", "id,name\ncountry:us/csd:3520005,Toronto\n", "line 2"},
		{"wrong kind", "id,name\ncountry:ca/cd:3520,Toronto\n", "line 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadEntries(context.Background(), strings.NewReader(tt.input), division.CensusSubdivision, "")
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrMalformedRow))
			assert.Contains(t, err.Error(), tt.line)
		})
	}
}

func TestLoadTypes(t *testing.T) {
	input := "id,classification\ncountry:ca/csd:3520005,C\ncountry:ca/csd:1201008,T\n"
	types, err := LoadTypes(context.Background(), strings.NewReader(input), division.CensusSubdivision, "")
	require.NoError(t, err)
	require.Len(t, types, 2)

	code, err := types.TypeOf(division.MustParseIdentifier("country:ca/csd:3520005"))
	require.NoError(t, err)
	assert.Equal(t, division.TypeCode("CY"), code)
}

func TestLoadTypes_UnknownCode(t *testing.T) {
	input := "id,classification\ncountry:ca/cd:3520,XYZ\n"
	_, err := LoadTypes(context.Background(), strings.NewReader(input), division.CensusDivision, "")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMalformedRow))
	assert.Contains(t, err.Error(), `"XYZ"`)
}

func TestLoadSGC(t *testing.T) {
	input := `id,sgc
ocd-division/country:ca/province:on,35
ocd-division/country:ca/territory:yt,60
`
	sgc, err := LoadSGC(context.Background(), strings.NewReader(input), "")
	require.NoError(t, err)

	j, err := sgc.Jurisdiction("35")
	require.NoError(t, err)
	assert.Equal(t, division.Jurisdiction("on"), j)
	assert.Equal(t, []division.Jurisdiction{"on", "yt"}, sgc.Jurisdictions())

	_, err = sgc.Jurisdiction("24")
	assert.Error(t, err)
}

func TestLoadSGC_Malformed(t *testing.T) {
	_, err := LoadSGC(context.Background(), strings.NewReader("id,sgc\nocd-division/country:ca/province:on,350\n"), "")
	assert.True(t, eris.Is(err, ErrMalformedRow))

	_, err = LoadSGC(context.Background(), strings.NewReader("id,sgc\nontario,35\n"), "")
	assert.True(t, eris.Is(err, ErrMalformedRow))
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestStore_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, EntriesPath(division.CensusDivision), "id,name\ncountry:ca/cd:3520,Toronto\n")
	writeFile(t, dir, EntriesPath(division.CensusSubdivision), "id,name\ncountry:ca/csd:3520005,Toronto\n")
	writeFile(t, dir, TypesPath(division.CensusSubdivision), "id,type\ncountry:ca/csd:3520005,C\n")

	s := &Store{Dir: dir}
	data, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, data.Entries[division.CensusDivision], 1)
	assert.Len(t, data.Entries[division.CensusSubdivision], 1)
	assert.Len(t, data.Types[division.CensusSubdivision], 1)
	_, ok := data.Types[division.CensusDivision]
	assert.False(t, ok)

	// Built-in SGC table.
	assert.Len(t, data.SGC.Jurisdictions(), 13)
}

func TestStore_LoadSGCFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, EntriesPath(division.CensusDivision), "id,name\n")
	writeFile(t, dir, EntriesPath(division.CensusSubdivision), "id,name\n")
	writeFile(t, dir, sgcFile, "id,sgc\nocd-division/country:ca/province:on,35\n")

	data, err := (&Store{Dir: dir}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []division.Jurisdiction{"on"}, data.SGC.Jurisdictions())
}

func TestStore_MissingEntries(t *testing.T) {
	_, err := (&Store{Dir: t.TempDir()}).Load(context.Background())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "not found")
}

func TestStore_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, EntriesPath(division.CensusDivision), "id,name\ncountry:ca/cd:3520\n")

	_, err := (&Store{Dir: dir}).Load(context.Background())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMalformedRow))
	assert.Contains(t, err.Error(), "ca_census_divisions.csv")
}

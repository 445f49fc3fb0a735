package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencivicdata/ocdid-ca/internal/config"
	"github.com/opencivicdata/ocdid-ca/internal/division"
	"github.com/opencivicdata/ocdid-ca/internal/refdata"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	registered := make(map[string]bool)
	for _, c := range cmds {
		registered[c.Name()] = true
	}

	for _, name := range []string{"fingerprint", "match", "scrape", "scrapers"} {
		assert.True(t, registered[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "ocdid-ca", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestMatchCommand_Flags(t *testing.T) {
	for _, name := range []string{"kind", "input", "format", "jurisdiction-field", "name-field", "encoding"} {
		assert.NotNil(t, matchCmd.Flags().Lookup(name), "match should have --%s flag", name)
	}
	assert.Equal(t, "csd", matchCmd.Flags().Lookup("kind").DefValue)
}

func TestFingerprintCommand_Flags(t *testing.T) {
	flag := fingerprintCmd.Flags().Lookup("jurisdiction")
	require.NotNil(t, flag)
	assert.Equal(t, "j", flag.Shorthand)
}

// testConfig returns a configuration reading reference data from dir.
func testConfig(dir string) *config.Config {
	c := &config.Config{}
	c.Log.Level = "info"
	c.Log.Format = "json"
	c.Data.Dir = dir
	c.Data.Encoding = "utf-8"
	c.Match.WordOrder = "sorted"
	c.Fetch.TimeoutSecs = 5
	c.Fetch.MaxRetries = 1
	c.Fetch.RequestsPerSecond = 100
	return c
}

// writeReference writes a small reference data tree under dir.
func writeReference(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		refdata.EntriesPath(division.CensusDivision): "id,name\n" +
			"ocd-division/country:ca/cd:3520,Toronto\n" +
			"ocd-division/country:ca/cd:1201,Shelburne\n",
		refdata.EntriesPath(division.CensusSubdivision): "id,name\n" +
			"ocd-division/country:ca/csd:3520005,Toronto\n" +
			"ocd-division/country:ca/csd:3506008,Ottawa\n" +
			"ocd-division/country:ca/csd:1201006,Shelburne\n" +
			"ocd-division/country:ca/csd:1201008,Shelburne\n",
		refdata.TypesPath(division.CensusSubdivision): "id,type\n" +
			"ocd-division/country:ca/csd:3520005,C\n" +
			"ocd-division/country:ca/csd:3506008,CV\n" +
			"ocd-division/country:ca/csd:1201006,MD\n" +
			"ocd-division/country:ca/csd:1201008,T\n",
	}
	for rel, content := range files {
		writeTestFile(t, filepath.Join(dir, rel), content)
	}
}

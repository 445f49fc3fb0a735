package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencivicdata/ocdid-ca/internal/division"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newMatchFlagsCmd creates a fresh cobra.Command with the same flags as
// matchCmd, so tests don't share mutable flag state.
func newMatchFlagsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test-match"}
	cmd.Flags().String("kind", "csd", "")
	cmd.Flags().String("input", "", "")
	cmd.Flags().String("format", "", "")
	cmd.Flags().String("jurisdiction-field", "province", "")
	cmd.Flags().String("name-field", "name", "")
	cmd.Flags().String("encoding", "", "")
	return cmd
}

func TestParseMatchOpts(t *testing.T) {
	cmd := newMatchFlagsCmd()
	require.NoError(t, cmd.Flags().Set("input", "members.xlsx"))
	require.NoError(t, cmd.Flags().Set("name-field", "Municipality"))

	opts, err := parseMatchOpts(cmd)
	require.NoError(t, err)
	assert.Equal(t, division.CensusSubdivision, opts.kind)
	assert.Equal(t, "members.xlsx", opts.source.Location)
	assert.Equal(t, "province", opts.source.JurisdictionField)
	assert.Equal(t, "Municipality", opts.source.NameField)
}

func TestParseMatchOpts_InvalidKind(t *testing.T) {
	cmd := newMatchFlagsCmd()
	require.NoError(t, cmd.Flags().Set("kind", "ward"))

	_, err := parseMatchOpts(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestRunMatch(t *testing.T) {
	dir := t.TempDir()
	writeReference(t, dir)
	input := filepath.Join(dir, "members.csv")
	writeTestFile(t, input, "province,name\n"+
		"ON,City of Toronto\n"+
		"Ontario,Ottawa\n"+
		"NS,Town of Shelburne\n"+
		"NS,Town of Springfield\n")

	cmd := newMatchFlagsCmd()
	require.NoError(t, cmd.Flags().Set("input", input))
	opts, err := parseMatchOpts(cmd)
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	require.NoError(t, runMatch(context.Background(), testConfig(dir), opts, &stdout, &stderr))

	assert.Equal(t, "id,name\n"+
		"ocd-division/country:ca/csd:3520005,City of Toronto\n"+
		"ocd-division/country:ca/csd:3506008,Ottawa\n"+
		"ocd-division/country:ca/csd:1201008,Town of Shelburne\n",
		stdout.String())
	assert.Contains(t, stderr.String(), "Town of Springfield")
	assert.Contains(t, stderr.String(), "ns:T:SPRINGFIELD")
}

func TestRunMatch_MissingReference(t *testing.T) {
	cmd := newMatchFlagsCmd()
	require.NoError(t, cmd.Flags().Set("input", "members.csv"))
	opts, err := parseMatchOpts(cmd)
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	err = runMatch(context.Background(), testConfig(t.TempDir()), opts, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

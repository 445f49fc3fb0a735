package main

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/opencivicdata/ocdid-ca/internal/division"
	"github.com/opencivicdata/ocdid-ca/internal/names"
)

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint NAME...",
	Short: "Show how names are normalized and keyed",
	Long: `Show each step of name matching for the given names: the normalized
name, the type found in it, the name without its type and both fingerprints.

No reference data is read, so identifier overrides keep the scraped name.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jurisdiction, _ := cmd.Flags().GetString("jurisdiction")
		kindStr, _ := cmd.Flags().GetString("kind")

		kind, err := division.ParseKind(kindStr)
		if err != nil {
			return err
		}
		tables, err := names.DefaultTables()
		if err != nil {
			return err
		}
		return runFingerprint(cmd.OutOrStdout(), tables, kind, division.ParseJurisdiction(jurisdiction), args)
	},
}

func init() {
	fingerprintCmd.Flags().StringP("jurisdiction", "j", "", "province or territory postal code, e.g. on")
	fingerprintCmd.Flags().String("kind", string(division.CensusSubdivision), "census level: cd or csd")
	_ = fingerprintCmd.MarkFlagRequired("jurisdiction")
	rootCmd.AddCommand(fingerprintCmd)
}

func runFingerprint(w io.Writer, tables *names.Tables, kind division.Kind, j division.Jurisdiction, args []string) error {
	resolver, err := names.NewTypeResolver(tables, kind)
	if err != nil {
		return err
	}
	normalizer := names.NewNormalizer(tables.Corrections[kind], nil)

	for i, name := range args {
		normalized := normalizer.Normalize(name, j)
		code, err := resolver.ExtractType(normalized, j)
		if err != nil {
			return eris.Wrapf(err, "fingerprint %q", name)
		}
		bare, err := resolver.StripType(normalized, j)
		if err != nil {
			return eris.Wrapf(err, "fingerprint %q", name)
		}

		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "name:        %s\n", name)
		fmt.Fprintf(w, "normalized:  %s\n", normalized)
		fmt.Fprintf(w, "type:        %s\n", code)
		fmt.Fprintf(w, "stripped:    %s\n", bare)
		fmt.Fprintf(w, "sorted:      %s\n", names.Fingerprint(bare, names.Sorted))
		fmt.Fprintf(w, "ordered:     %s\n", names.Fingerprint(bare, names.Ordered))
	}
	return nil
}

package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opencivicdata/ocdid-ca/internal/config"
	"github.com/opencivicdata/ocdid-ca/internal/division"
	"github.com/opencivicdata/ocdid-ca/internal/matcher"
	"github.com/opencivicdata/ocdid-ca/internal/ocdid"
	"github.com/opencivicdata/ocdid-ca/internal/scraper"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match a file of names to identifiers",
	Long: `Match the (jurisdiction, name) pairs of a CSV, XLSX or shapefile source
against the reference data under data.dir.

Matched identifiers are written to stdout as an id,name CSV. Unmatched names
are logged and listed on stderr with their lookup keys.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		opts, err := parseMatchOpts(cmd)
		if err != nil {
			return err
		}
		return runMatch(ctx, cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	matchCmd.Flags().String("kind", string(division.CensusSubdivision), "census level: cd or csd")
	matchCmd.Flags().String("input", "", "source file path or http(s) URL")
	matchCmd.Flags().String("format", "", "source format: csv, xlsx, shp, zip (default: from the extension)")
	matchCmd.Flags().String("jurisdiction-field", "province", "column holding the province or territory")
	matchCmd.Flags().String("name-field", "name", "column holding the name")
	matchCmd.Flags().String("encoding", "", "CSV source encoding (default utf-8)")
	_ = matchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(matchCmd)
}

type matchOpts struct {
	kind   division.Kind
	source scraper.Source
}

// parseMatchOpts extracts the match options from the cobra command flags.
func parseMatchOpts(cmd *cobra.Command) (matchOpts, error) {
	kindStr, _ := cmd.Flags().GetString("kind")
	input, _ := cmd.Flags().GetString("input")
	format, _ := cmd.Flags().GetString("format")
	jurisdictionField, _ := cmd.Flags().GetString("jurisdiction-field")
	nameField, _ := cmd.Flags().GetString("name-field")
	encoding, _ := cmd.Flags().GetString("encoding")

	kind, err := division.ParseKind(kindStr)
	if err != nil {
		return matchOpts{}, err
	}
	return matchOpts{
		kind: kind,
		source: scraper.Source{
			Location:          input,
			Format:            format,
			JurisdictionField: jurisdictionField,
			NameField:         nameField,
			Charset:           encoding,
		},
	}, nil
}

func runMatch(ctx context.Context, c *config.Config, opts matchOpts, stdout, stderr io.Writer) error {
	log := zap.L().With(zap.String("command", "match"))

	ref, err := loadReference(ctx, c)
	if err != nil {
		return err
	}

	report := &matcher.Report{}
	env := scraper.Env{
		Fetcher: newFetcher(c),
		Writer:  ocdid.NewWriter(stdout),
		SGC:     ref.sgc,
		Sets:    ref.sets,
		Report:  report,
		TempDir: c.Scrape.TempDir,
	}
	if env.TempDir == "" {
		env.TempDir = os.TempDir()
	}

	log.Info("matching names",
		zap.String("kind", string(opts.kind)),
		zap.String("input", opts.source.Location),
	)
	s := &scraper.MatchedNames{Kind: opts.kind, Source: opts.source}
	if err := s.Run(ctx, env); err != nil {
		return err
	}

	report.Log()
	return report.Print(stderr)
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opencivicdata/ocdid-ca/internal/config"
	"github.com/opencivicdata/ocdid-ca/internal/division"
	"github.com/opencivicdata/ocdid-ca/internal/matcher"
	"github.com/opencivicdata/ocdid-ca/internal/ocdid"
	"github.com/opencivicdata/ocdid-ca/internal/refdata"
	"github.com/opencivicdata/ocdid-ca/internal/scraper"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape NAME",
	Short: "Run a registered scraper",
	Long: `Run a registered scraper and write its CSV under data.dir.

Use --output to write elsewhere, or --output - for stdout. Scrapers that
match names read the reference data under data.dir first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		output, _ := cmd.Flags().GetString("output")
		return runScrape(ctx, cfg, args[0], output, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

var scrapersCmd = &cobra.Command{
	Use:   "scrapers",
	Short: "List the registered scrapers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return listScrapers(cmd.OutOrStdout(), registry(cfg))
	},
}

func init() {
	scrapeCmd.Flags().StringP("output", "o", "", "output file, - for stdout (default: the scraper's path under data.dir)")
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(scrapersCmd)
}

func registry(c *config.Config) *scraper.Registry {
	return scraper.DefaultRegistry(scraper.URLs{
		CensusDivisions:    c.Scrape.URLs.CensusDivisions,
		CensusSubdivisions: c.Scrape.URLs.CensusSubdivisions,
		FCMMembers:         c.Scrape.URLs.FCMMembers,
	}, c.Scrape.URLOverrides)
}

func runScrape(ctx context.Context, c *config.Config, name, output string, stdout, stderr io.Writer) error {
	log := zap.L().With(zap.String("command", "scrape"), zap.String("scraper", name))

	s, err := registry(c).Get(name)
	if err != nil {
		return err
	}

	env := scraper.Env{
		Fetcher: newFetcher(c),
		SGC:     division.DefaultSGC(),
		Report:  &matcher.Report{},
		TempDir: c.Scrape.TempDir,
	}
	if env.TempDir == "" {
		env.TempDir = os.TempDir()
	}
	ref, err := loadReference(ctx, c)
	switch {
	case eris.Is(err, refdata.ErrNotFound):
		// Scrapers that match names fail on the missing set.
		log.Warn("reference data unavailable", zap.Error(err))
	case err != nil:
		return err
	default:
		env.SGC = ref.sgc
		env.Sets = ref.sets
	}

	if output == "" {
		output = filepath.Join(c.Data.Dir, s.OutputPath())
	}
	if output == "-" {
		env.Writer = ocdid.NewWriter(stdout)
		if err := s.Run(ctx, env); err != nil {
			return err
		}
	} else if err := scrapeToFile(ctx, s, env, output); err != nil {
		return err
	}

	log.Info("scrape complete", zap.String("output", output))
	if env.Report.Matched()+env.Report.Skipped()+len(env.Report.Unmatched()) > 0 {
		env.Report.Log()
		return env.Report.Print(stderr)
	}
	return nil
}

// scrapeToFile writes to a temporary file renamed over path on success.
func scrapeToFile(ctx context.Context, s scraper.Scraper, env scraper.Env, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "scrape: create dir for %s", path)
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return eris.Wrapf(err, "scrape: create %s", path)
	}
	defer os.Remove(f.Name()) //nolint:errcheck

	env.Writer = ocdid.NewWriter(f)
	if err := s.Run(ctx, env); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "scrape: close %s", path)
	}
	return eris.Wrapf(os.Rename(f.Name(), path), "scrape: write %s", path)
}

func listScrapers(w io.Writer, reg *scraper.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, s := range reg.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name(), s.Description(), s.OutputPath())
	}
	return tw.Flush()
}

package scraper

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/opencivicdata/ocdid-ca/internal/division"
)

// cdTypeNames maps lower-cased Statistics Canada census division type names to codes.
var cdTypeNames = map[string]division.TypeCode{
	"census division":                 "CDR",
	"comté":                           "CT",
	"county":                          "CTY",
	"district":                        "DIS",
	"district municipality":           "DM",
	"municipalité régionale de comté": "MRC",
	"region":                          "REG",
	"regional district":               "RD",
	"regional municipality":           "RM",
	"territoire équivalent":           "TÉ",
	"territory":                       "TER",
	"united counties":                 "UC",
}

// CensusDivisions scrapes census division codes and names from the Statistics
// Canada population and dwelling counts file.
type CensusDivisions struct {
	URL string
}

// Name implements Scraper.
func (s *CensusDivisions) Name() string { return "census-divisions" }

// Description implements Scraper.
func (s *CensusDivisions) Description() string {
	return "Prints a CSV of census division identifiers and names"
}

// OutputPath implements Scraper.
func (s *CensusDivisions) OutputPath() string {
	return "identifiers/country-ca/ca_census_divisions.csv"
}

// Run implements Scraper.
func (s *CensusDivisions) Run(ctx context.Context, env Env) error {
	if err := env.Writer.WriteHeader("id", "name", "name_fr", "classification"); err != nil {
		return err
	}

	rows, err := streamStatCan(ctx, env, s.Name(), s.URL, func(row []string, cols map[string]int) error {
		var vals [4]string
		for i, name := range []string{
			"geographic code",
			"geographic name, english",
			"geographic name, french",
			"geographic type, english",
		} {
			v, err := field(row, cols, name)
			if err != nil {
				return err
			}
			vals[i] = v
		}
		typ, ok := cdTypeNames[strings.ToLower(vals[3])]
		if !ok {
			return eris.Errorf("%s: unknown type %q", vals[0], vals[3])
		}
		return env.Writer.Write("cd:", vals[0],
			spacesRe.ReplaceAllString(vals[1], " "),
			spacesRe.ReplaceAllString(vals[2], " "),
			string(typ))
	})
	if err != nil {
		return err
	}

	zap.L().Info("census-divisions: done", zap.Int("rows", rows))
	return env.Writer.Flush()
}

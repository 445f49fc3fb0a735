package scraper

import (
	"context"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/opencivicdata/ocdid-ca/internal/division"
	"github.com/opencivicdata/ocdid-ca/internal/fetcher"
)

// csdTypeNames maps lower-cased Statistics Canada type names to codes. Types
// named differently in French are keyed "english / french".
var csdTypeNames = map[string]division.TypeCode{
	"city / cité":                          "C",
	"chartered community":                  "CC",
	"community government":                 "CG",
	"crown colony / colonie de la couronne": "CN",
	"community":                            "COM",
	"canton (municipalité de)":             "CT",
	"cantons unis (municipalité de)":       "CU",
	"city / ville":                         "CV",
	"city":                                 "CY",
	"district municipality":                "DM",
	"hamlet":                               "HAM",
	"improvement district":                 "ID",
	"indian government district":           "IGD",
	"island municipality":                  "IM",
	"indian reserve / réserve indienne":    "IRI",
	"local government district":            "LGD",
	"township and royalty":                 "LOT",
	"municipality / municipalité":          "M",
	"municipal district":                   "MD",
	"municipalité":                         "MÉ",
	"municipality":                         "MU",
	"northern hamlet":                      "NH",
	"nisga'a land":                         "NL",
	"unorganized / non organisé":           "NO",
	"northern village":                     "NV",
	"parish / paroisse (municipalité de)":  "P",
	"paroisse (municipalité de)":           "PE",
	"rural community / communauté rurale":  "RCR",
	"regional district electoral area":     "RDA",
	"region":                               "RG",
	"regional municipality":                "RGM",
	"rural municipality":                   "RM",
	"resort village":                       "RV",
	"indian settlement / établissement indien":                             "S-É",
	"special area":                                                         "SA",
	"subdivision of county municipality / subdivision municipalité de comté": "SC",
	"settlement / établissement":                                           "SÉ",
	"settlement":                                                           "SET",
	"self-government / autonomie gouvernementale":                          "SG",
	"specialized municipality":                                             "SM",
	"subdivision of unorganized / subdivision non organisée":               "SNO",
	"summer village":                                                       "SV",
	"town":                                                                 "T",
	"terre réservée aux cris":                                              "TC",
	"terre inuite":                                                         "TI",
	"terre réservée aux naskapis":                                          "TK",
	"teslin land":                                                          "TL",
	"township":                                                             "TP",
	"town / ville":                                                         "TV",
	"ville":                                                                "V",
	"village cri":                                                          "VC",
	"village naskapi":                                                      "VK",
	"village":                                                              "VL",
	"village nordique":                                                     "VN",
}

// Types whose councils are named "<type> of <name>" ("<type> de <name>" in Québec).
var namedTypes = map[division.TypeCode]bool{
	"C": true, "CV": true, "CY": true, "M": true, "MU": true,
	"T": true, "TP": true, "TV": true, "V": true, "VL": true,
}

var (
	spacesRe    = regexp.MustCompile(` {2,}`)
	partRe      = regexp.MustCompile(` \(Part\)`)
	noSpaceRe   = regexp.MustCompile(`No\.(\S)`)
	labradorRe  = regexp.MustCompile(`(?:, Labrador| \(Labrador\))$`)
	saintAbbrRe = regexp.MustCompile(`\bSt(e)?\.`)
	rmNumberRe  = regexp.MustCompile(`No\. (\d+)$`)
)

// Statistics Canada truncates one Prince Edward Island name.
const (
	abbreviatedResort = "Resort Mun. Stan.B.-Hope R.-Bayv.-Cavend.-N.Rust."
	expandedResort    = "Resort Municipality of Stanley Bridge-Hope River-Bayview-Cavendish-North Rustico"
)

// CensusSubdivisions scrapes census subdivision codes and names from the
// Statistics Canada population and dwelling counts file.
type CensusSubdivisions struct {
	URL string
}

// Name implements Scraper.
func (s *CensusSubdivisions) Name() string { return "census-subdivisions" }

// Description implements Scraper.
func (s *CensusSubdivisions) Description() string {
	return "Prints a CSV of identifiers and canonical names"
}

// OutputPath implements Scraper.
func (s *CensusSubdivisions) OutputPath() string {
	return "identifiers/country-ca/ca_census_subdivisions.csv"
}

// Run implements Scraper.
func (s *CensusSubdivisions) Run(ctx context.Context, env Env) error {
	if err := env.Writer.WriteHeader("id", "name", "name_fr", "classification", "organization_name", "number"); err != nil {
		return err
	}

	rows, err := streamStatCan(ctx, env, s.Name(), s.URL, func(row []string, cols map[string]int) error {
		rec, err := parseCSDRow(row, cols)
		if err != nil {
			return err
		}
		return env.Writer.Write("csd:", rec.code, rec.nameEN, rec.nameFR, string(rec.typ), rec.organization, rec.number)
	})
	if err != nil {
		return err
	}

	zap.L().Info("census-subdivisions: done", zap.Int("rows", rows))
	return env.Writer.Flush()
}

// streamStatCan downloads a Statistics Canada Latin-1 CSV file and calls fn
// with each data row and the lower-cased header index. Rows stop at the footer.
func streamStatCan(ctx context.Context, env Env, name, url string, fn func(row []string, cols map[string]int) error) (int, error) {
	body, err := env.Fetcher.Download(ctx, url)
	if err != nil {
		return 0, eris.Wrapf(err, "%s: download", name)
	}
	defer body.Close() //nolint:errcheck

	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, body, fetcher.CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
		Charset:   "latin-1",
		TrimSpace: true,
	})

	var cols map[string]int
	var rowErr error
	footer := false
	rows := 0
	for row := range rowCh {
		if rowErr != nil || footer {
			continue
		}
		if cols == nil {
			cols = columnIndex(<-headerCh)
		}
		// The footer starts at the first short row.
		if len(row) < len(cols) {
			footer = true
			continue
		}
		if err := fn(row, cols); err != nil {
			rowErr = eris.Wrap(err, name)
			continue
		}
		rows++
	}
	if err := <-errCh; err != nil {
		return rows, eris.Wrap(err, name)
	}
	return rows, rowErr
}

type csdRecord struct {
	code         string
	nameEN       string
	nameFR       string
	typ          division.TypeCode
	organization string
	number       string
}

func columnIndex(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, h := range header {
		m[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return m
}

func field(row []string, cols map[string]int, name string) (string, error) {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return "", eris.Errorf("no %q column", name)
	}
	return row[i], nil
}

func parseCSDRow(row []string, cols map[string]int) (csdRecord, error) {
	var vals [5]string
	for i, name := range []string{
		"geographic code",
		"geographic name, english",
		"geographic name, french",
		"csd type, english",
		"csd type, french",
	} {
		v, err := field(row, cols, name)
		if err != nil {
			return csdRecord{}, err
		}
		vals[i] = v
	}
	code, typeEN, typeFR := vals[0], vals[3], vals[4]

	typeName := typeEN
	if typeEN != typeFR {
		typeName = typeEN + " / " + typeFR
	}
	typ, ok := csdTypeNames[strings.ToLower(typeName)]
	if !ok {
		return csdRecord{}, eris.Errorf("%s: unknown type %q", code, typeName)
	}

	rec := csdRecord{
		code:   code,
		nameEN: cleanCSDName(vals[1], code),
		nameFR: cleanCSDName(vals[2], code),
		typ:    typ,
	}

	quebec := strings.HasPrefix(code, "24")
	switch {
	case typ == "RGM":
		rec.organization = rec.nameEN + " Regional Municipality"
	case typ == "MD":
		rec.organization = "Municipality of " + rec.nameEN
	case namedTypes[typ] && quebec:
		rec.organization = typeFR + " de " + rec.nameFR
	case namedTypes[typ]:
		rec.organization = typeEN + " of " + rec.nameEN
	}

	if typ == "RM" && strings.HasPrefix(code, "47") {
		m := rmNumberRe.FindStringSubmatch(rec.nameEN)
		if m == nil {
			return csdRecord{}, eris.Errorf("%s: no number in rural municipality %q", code, rec.nameEN)
		}
		rec.number = m[1]
	}
	return rec, nil
}

// cleanCSDName removes Statistics Canada annotations from a subdivision name.
func cleanCSDName(name, code string) string {
	if name == abbreviatedResort {
		return expandedResort
	}
	name = spacesRe.ReplaceAllString(name, " ")
	name = replaceFirst(partRe, name, "")
	name = replaceFirst(noSpaceRe, name, "No. ${1}")
	name = labradorRe.ReplaceAllString(name, "")
	if strings.HasPrefix(code, "13") || strings.HasPrefix(code, "24") {
		name = replaceFirst(saintAbbrRe, name, "Saint${1}")
	}
	return name
}

// replaceFirst replaces the leftmost match of re only.
func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return s
	}
	var dst []byte
	dst = re.ExpandString(dst, repl, s, loc)
	return s[:loc[0]] + string(dst) + s[loc[1]:]
}

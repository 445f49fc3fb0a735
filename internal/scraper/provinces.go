package scraper

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/opencivicdata/ocdid-ca/internal/division"
	"github.com/opencivicdata/ocdid-ca/internal/names"
)

// provinceNames are the English and French names of the provinces and territories.
var provinceNames = map[string]division.Jurisdiction{
	"Newfoundland and Labrador": "nl",
	"Terre-Neuve-et-Labrador":   "nl",
	"Prince Edward Island":      "pe",
	"Île-du-Prince-Édouard":     "pe",
	"Nova Scotia":               "ns",
	"Nouvelle-Écosse":           "ns",
	"New Brunswick":             "nb",
	"Nouveau-Brunswick":         "nb",
	"Quebec":                    "qc",
	"Ontario":                   "on",
	"Manitoba":                  "mb",
	"Saskatchewan":              "sk",
	"Alberta":                   "ab",
	"British Columbia":          "bc",
	"Colombie-Britannique":      "bc",
	"Yukon":                     "yt",
	"Northwest Territories":     "nt",
	"Territoires du Nord-Ouest": "nt",
	"Nunavut":                   "nu",
}

var provinceFingerprints = func() map[string]division.Jurisdiction {
	m := make(map[string]division.Jurisdiction, len(provinceNames))
	for name, j := range provinceNames {
		m[provinceFingerprint(name)] = j
	}
	return m
}()

// provinceFingerprint ignores accents, case, word order and the word
// "Territory", which "Yukon" dropped in 2008.
func provinceFingerprint(name string) string {
	return names.Fingerprint(strings.Replace(name, " Territory", "", 1), names.Sorted)
}

// ResolveJurisdiction accepts a postal abbreviation ("ON"), a two-digit SGC
// code ("35") or a province or territory name ("Québec").
func ResolveJurisdiction(s string, sgc *division.SGC) (division.Jurisdiction, error) {
	s = strings.TrimSpace(s)
	if len(s) == 2 {
		if s[0] >= '0' && s[0] <= '9' {
			return sgc.Jurisdiction(s)
		}
		j := division.ParseJurisdiction(s)
		for _, known := range sgc.Jurisdictions() {
			if j == known {
				return j, nil
			}
		}
	}
	if j, ok := provinceFingerprints[provinceFingerprint(s)]; ok {
		return j, nil
	}
	return "", eris.Errorf("scraper: unknown province or territory %q", s)
}

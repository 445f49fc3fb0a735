package scraper

import (
	_ "embed"
	"regexp"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed data/url_overrides.yaml
var defaultURLOverridesYAML []byte

var (
	csdCodeRe        = regexp.MustCompile(`^\d{7}$`)
	defaultOverrides = mustParseURLOverrides(defaultURLOverridesYAML)
)

// ParseURLOverrides parses a YAML map of census subdivision codes to member URLs.
func ParseURLOverrides(data []byte) (map[string]string, error) {
	var m map[string]string
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrap(err, "scraper: parse url overrides")
	}
	for code, url := range m {
		if !csdCodeRe.MatchString(code) {
			return nil, eris.Errorf("scraper: url override %q is not a census subdivision code", code)
		}
		if url == "" {
			return nil, eris.Errorf("scraper: url override %s is empty", code)
		}
	}
	return m, nil
}

func mustParseURLOverrides(data []byte) map[string]string {
	m, err := ParseURLOverrides(data)
	if err != nil {
		panic(err)
	}
	return m
}

// DefaultURLOverrides returns the built-in member URL overrides.
func DefaultURLOverrides() map[string]string {
	return MergeURLOverrides(nil)
}

// MergeURLOverrides layers extra over the built-in overrides. Entries in extra win.
func MergeURLOverrides(extra map[string]string) map[string]string {
	out := make(map[string]string, len(defaultOverrides)+len(extra))
	for code, url := range defaultOverrides {
		out[code] = url
	}
	for code, url := range extra {
		out[code] = url
	}
	return out
}

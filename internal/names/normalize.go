package names

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/opencivicdata/ocdid-ca/internal/division"
)

// maxPasses bounds the rewrite loop; every rule shortens or fixes its match, so
// names settle in one or two passes.
const maxPasses = 4

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	numberSpaceRe  = regexp.MustCompile(`No\.(\S)`)
	numberZeroRe   = regexp.MustCompile(`No\. 0+(\d)`)
	countyOfRe     = regexp.MustCompile(`^County of (.+?)( No\. \d+)?$`)
	provinceRe     = regexp.MustCompile(` \((?:AB|BC|MB|NB|NL|NS|NT|NU|ON|PE|QC|SK|YT)\)$`)
	linkingWordRe  = regexp.MustCompile(`[ -](?:and|de|et)[ -]`)
	saintRe        = regexp.MustCompile(`(?i)st(e)?\.?`)
	hundredReplace = strings.NewReplacer(" 100 ", " One Hundred ")
)

// Normalizer rewrites scraped names into the spelling conventions of the
// official census names. It is safe for concurrent use.
type Normalizer struct {
	corrections Corrections
	official    map[division.Identifier]string
}

// NewNormalizer returns a normalizer applying the given corrections. official
// maps identifiers to official names and resolves identifier overrides; it may
// be nil, in which case identifier overrides leave the name unchanged.
func NewNormalizer(corrections Corrections, official map[division.Identifier]string) *Normalizer {
	return &Normalizer{corrections: corrections, official: official}
}

// Override returns the identifier a scraped name is pinned to, if any.
func (n *Normalizer) Override(name string, j division.Jurisdiction) (division.Identifier, bool) {
	id, ok := n.corrections.Identifiers[j][name]
	return id, ok
}

// Normalize returns the canonical comparable form of name. It never fails and
// Normalize(Normalize(x)) == Normalize(x).
func (n *Normalizer) Normalize(name string, j division.Jurisdiction) string {
	for range maxPasses {
		next := rewrite(n.correct(name, j))
		if next == name {
			break
		}
		name = next
	}
	return name
}

// correct substitutes the official name of a pinned identifier or a corrected spelling.
func (n *Normalizer) correct(name string, j division.Jurisdiction) string {
	if id, ok := n.Override(name, j); ok {
		if official, ok := n.official[id]; ok {
			return official
		}
		return name
	}
	if alt, ok := n.corrections.Names[j][name]; ok {
		return alt
	}
	return name
}

// rewrite applies the spelling rules in order.
func rewrite(name string) string {
	// "Municipalité de  Baie-James"
	name = strings.TrimSpace(whitespaceRe.ReplaceAllString(name, " "))
	// "Rural Municipality of Maple Creek No.111"
	name = numberSpaceRe.ReplaceAllString(name, "No. ${1}")
	// "Rural Municipality of Coalfields No. 04"
	name = numberZeroRe.ReplaceAllString(name, "No. ${1}")
	// "County of Barrhead No. 11"
	name = countyOfRe.ReplaceAllString(name, "${1} County${2}")
	// "Cochrane (AB)"
	name = provinceRe.ReplaceAllString(name, "")
	// "District of 100 Mile House"
	name = hundredReplace.Replace(name)
	name = removeLinkingWords(name)
	return expandSaints(name)
}

// removeLinkingWords drops "and", "de" and "et" between spaces or hyphens.
// Adjacent linking words share a delimiter, so it repeats until none is left.
func removeLinkingWords(name string) string {
	for {
		next := linkingWordRe.ReplaceAllString(name, " ")
		if next == name {
			return name
		}
		name = next
	}
}

// expandSaints replaces the abbreviations "St" and "Ste", with or without a
// period, when they stand as whole words. Word boundaries are Unicode-aware so
// that "Stéphane" is left alone.
func expandSaints(name string) string {
	var b strings.Builder
	last := 0
	for _, loc := range saintRe.FindAllStringIndex(name, -1) {
		start, end := loc[0], loc[1]
		abbr := strings.TrimSuffix(name[start:end], ".")
		if isWordRune(lastRune(name[:start])) || isWordRune(firstRune(name[start+len(abbr):])) {
			continue
		}
		b.WriteString(name[last:start])
		if len(abbr) == 3 {
			b.WriteString("Sainte")
		} else {
			b.WriteString("Saint")
		}
		last = end
	}
	if last == 0 {
		return name
	}
	b.WriteString(name[last:])
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

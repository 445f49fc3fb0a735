package names

import (
	"sort"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"
)

// WordOrder selects whether a fingerprint depends on word order.
type WordOrder int

const (
	// Sorted fingerprints ignore word order. "Saint-Esprit" and "Esprit-Saint"
	// collide; the index builder drops such keys instead of picking one.
	Sorted WordOrder = iota
	// Ordered fingerprints keep word order.
	Ordered
)

// String returns the configuration name of the word order.
func (o WordOrder) String() string {
	if o == Ordered {
		return "ordered"
	}
	return "sorted"
}

// ParseWordOrder converts "sorted" or "ordered" into a WordOrder.
func ParseWordOrder(s string) (WordOrder, error) {
	switch s {
	case "sorted", "":
		return Sorted, nil
	case "ordered":
		return Ordered, nil
	default:
		return 0, eris.Errorf("names: unknown word order %q (valid: sorted, ordered)", s)
	}
}

// separator joins words in a fingerprint. It is a symbol, not punctuation, so
// it survives the final strip and keeps "VILLE~MARIE" apart from "MARIEVILLE".
const separator = "~"

// unaccented lists, for each plain letter, the accented Latin letters folded into it.
var unaccented = map[string]string{
	"a": "ÀÁÂÃÄÅàáâãäåĀāĂăĄą",
	"c": "ÇçĆćĈĉĊċČč",
	"d": "ÐðĎďĐđ",
	"e": "ÈÉÊËèéêëĒēĔĕĖėĘęĚě",
	"g": "ĜĝĞğĠġĢģ",
	"h": "ĤĥĦħ",
	"i": "ÌÍÎÏìíîïĨĩĪīĬĭĮįİı",
	"j": "Ĵĵ",
	"k": "Ķķĸ",
	"l": "ĹĺĻļĽľĿŀŁł",
	"n": "ÑñŃńŅņŇňŉŊŋ",
	"o": "ÒÓÔÕÖØòóôõöøŌōŎŏŐő",
	"r": "ŔŕŖŗŘř",
	"s": "ŚśŜŝŞşŠšſ",
	"t": "ŢţŤťŦŧ",
	"u": "ÙÚÛÜùúûüŨũŪūŬŭŮůŰűŲų",
	"w": "Ŵŵ",
	"y": "ÝýÿŶŷŸ",
	"z": "ŹźŻżŽž",
}

var accentReplacer = newAccentReplacer()

func newAccentReplacer() *strings.Replacer {
	var pairs []string
	for plain, accented := range unaccented {
		for _, r := range accented {
			pairs = append(pairs, string(r), plain)
		}
	}
	return strings.NewReplacer(pairs...)
}

// RemoveAccents folds accented Latin letters with a fixed table. It does not
// depend on locale.
func RemoveAccents(s string) string {
	return accentReplacer.Replace(norm.NFC.String(s))
}

// Fingerprint returns an accent-, case- and punctuation-insensitive signature
// of a normalized name, used only as a lookup key.
func Fingerprint(normalized string, order WordOrder) string {
	s := strings.ToUpper(RemoveAccents(normalized))

	words := strings.FieldsFunc(s, isWordSeparator)
	if order == Sorted {
		sort.Strings(words)
	}

	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.Join(words, separator))
}

func isWordSeparator(r rune) bool {
	switch r {
	case ' ', '&', ',', '/', '-':
		return true
	}
	return false
}

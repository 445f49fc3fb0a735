// Package ocdid formats Open Civic Data division identifiers and writes them
// as CSV rows.
package ocdid

import (
	"encoding/csv"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Prefix starts every Canadian division identifier.
const Prefix = "ocd-division/country:ca/"

var (
	spaceRe       = regexp.MustCompile(`\s+`)
	leadingZeroRe = regexp.MustCompile(`\A0+`)
	lower         = cases.Lower(language.Und)
)

// CleanIdentifier converts a locally unique identifier into an identifier
// fragment: lower case, underscores for spaces, "~" for anything else that is
// not a lower-case letter, a digit or one of "._~-". Leading zeros are dropped.
func CleanIdentifier(s string) string {
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	s = dashes(s)
	s = lower.String(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return '_'
		case unicode.IsLower(r), unicode.IsDigit(r), strings.ContainsRune("._~-", r):
			return r
		default:
			return '~'
		}
	}, s)
	return leadingZeroRe.ReplaceAllString(s, "")
}

// dashes converts double hyphens to an em dash.
func dashes(s string) string {
	return strings.ReplaceAll(s, "--", "—")
}

// ID returns the full identifier for a fragment ("csd:") and a local identifier.
func ID(fragment, local string) string {
	return Prefix + fragment + CleanIdentifier(local)
}

// Writer writes identifier rows as CSV.
type Writer struct {
	w *csv.Writer
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(w)}
}

// WriteHeader writes a header row.
func (w *Writer) WriteHeader(columns ...string) error {
	if err := w.w.Write(columns); err != nil {
		return eris.Wrap(err, "ocdid: write header")
	}
	return nil
}

// Write writes one row. With a non-empty fragment, local is cleaned and
// prefixed; otherwise it is written as given. Data values are trimmed.
func (w *Writer) Write(fragment, local string, data ...string) error {
	id := local
	if fragment != "" {
		id = ID(fragment, local)
	}
	row := make([]string, 0, len(data)+1)
	row = append(row, id)
	for _, d := range data {
		row = append(row, dashes(strings.TrimSpace(d)))
	}
	if err := w.w.Write(row); err != nil {
		return eris.Wrap(err, "ocdid: write row")
	}
	return nil
}

// Flush writes buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		return eris.Wrap(err, "ocdid: flush")
	}
	return nil
}

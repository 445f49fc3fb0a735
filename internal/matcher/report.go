package matcher

import (
	"fmt"
	"io"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/opencivicdata/ocdid-ca/internal/division"
)

// Unmatched is a scraped name that no strategy resolved.
type Unmatched struct {
	Jurisdiction division.Jurisdiction
	Name         string
	Key          string
}

// Report collects unmatched names for review. It is not safe for concurrent use.
type Report struct {
	matched   int
	skipped   int
	unmatched []Unmatched
}

// Record counts a result. Names skipped for carrying a census division type
// are counted but not listed.
func (r *Report) Record(j division.Jurisdiction, name string, res Result) {
	switch {
	case res.Matched:
		r.matched++
	case res.Key == "":
		r.skipped++
	default:
		r.unmatched = append(r.unmatched, Unmatched{Jurisdiction: j, Name: name, Key: res.Key})
	}
}

// Matched returns the number of resolved names.
func (r *Report) Matched() int { return r.matched }

// Skipped returns the number of names that were not keyed.
func (r *Report) Skipped() int { return r.skipped }

// Unmatched returns the unmatched names sorted by jurisdiction then name.
func (r *Report) Unmatched() []Unmatched {
	out := make([]Unmatched, len(r.unmatched))
	copy(out, r.unmatched)
	sort.SliceStable(out, func(i, k int) bool {
		if out[i].Jurisdiction != out[k].Jurisdiction {
			return out[i].Jurisdiction < out[k].Jurisdiction
		}
		return out[i].Name < out[k].Name
	})
	return out
}

// Log writes a summary line to the global logger.
func (r *Report) Log() {
	zap.L().Info("matcher: report",
		zap.Int("matched", r.matched),
		zap.Int("skipped", r.skipped),
		zap.Int("unmatched", len(r.unmatched)),
	)
}

// Print writes one unmatched name per line, padded so keys line up.
func (r *Report) Print(w io.Writer) error {
	for _, u := range r.Unmatched() {
		if _, err := fmt.Fprintf(w, "%-60s %s\n", u.Name, u.Key); err != nil {
			return eris.Wrap(err, "matcher: print report")
		}
	}
	return nil
}

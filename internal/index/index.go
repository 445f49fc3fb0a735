// Package index builds fingerprint lookup tables over reference entries. A key
// claimed by two different identifiers is ambiguous and is left out of the
// table entirely.
package index

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/opencivicdata/ocdid-ca/internal/division"
)

// KeySeparator joins the parts of a key.
const KeySeparator = ":"

// Key joins key parts with KeySeparator.
func Key(parts ...string) string {
	return strings.Join(parts, KeySeparator)
}

// KeyFunc computes the key of a reference entry. ok=false skips the entry.
type KeyFunc func(e division.Entry) (key string, ok bool, err error)

// Collision records a key dropped because it matched several identifiers.
type Collision struct {
	Key         string
	Identifiers []division.Identifier
}

// Index maps keys to reference entries. It is immutable once built.
type Index struct {
	entries    map[string]division.Entry
	collisions []Collision
}

// Build computes the key of every entry and keeps the keys that exactly one
// identifier produces. Duplicate rows for the same identifier do not collide.
func Build(entries []division.Entry, keyFn KeyFunc) (*Index, error) {
	claims := make(map[string][]division.Entry)
	var order []string

	for _, e := range entries {
		key, ok, err := keyFn(e)
		if err != nil {
			return nil, eris.Wrapf(err, "index: key for %s", e.ID)
		}
		if !ok {
			continue
		}
		prev, seen := claims[key]
		if !seen {
			order = append(order, key)
		}
		if containsID(prev, e.ID) {
			continue
		}
		claims[key] = append(prev, e)
	}

	idx := &Index{entries: make(map[string]division.Entry, len(claims))}
	for _, key := range order {
		claimed := claims[key]
		if len(claimed) == 1 {
			idx.entries[key] = claimed[0]
			continue
		}
		ids := make([]division.Identifier, len(claimed))
		for i, e := range claimed {
			ids[i] = e.ID
		}
		sort.Slice(ids, func(i, k int) bool { return ids[i].String() < ids[k].String() })
		idx.collisions = append(idx.collisions, Collision{Key: key, Identifiers: ids})
	}

	for _, c := range idx.collisions {
		zap.L().Warn("index: dropping ambiguous key",
			zap.String("key", c.Key),
			zap.Stringers("identifiers", c.Identifiers),
		)
	}

	return idx, nil
}

// Lookup returns the entry for key.
func (idx *Index) Lookup(key string) (division.Entry, bool) {
	e, ok := idx.entries[key]
	return e, ok
}

// Len returns the number of unambiguous keys.
func (idx *Index) Len() int { return len(idx.entries) }

// Collisions returns the dropped keys in first-seen order.
func (idx *Index) Collisions() []Collision {
	out := make([]Collision, len(idx.collisions))
	copy(out, idx.collisions)
	return out
}

func containsID(entries []division.Entry, id division.Identifier) bool {
	for _, e := range entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

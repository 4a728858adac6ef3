// Package origs correlates orig artifact names with archive identifiers.
//
// An orig is named with a leading numeric identifier, optionally followed by
// a "-" sub-part and an extension: "42.pdf", "0042.pdf", "42-2.pdf". The
// identifier is compared as an integer so that formatting differences such as
// leading zeros do not matter.
package origs

import (
	"path/filepath"
	"strconv"
	"strings"
)

// ParseID derives the numeric identifier of an orig name. ok is false for
// names that do not start with a decimal identifier.
func ParseID(name string) (id int, ok bool) {
	head, _, _ := strings.Cut(name, ".")
	head, _, _ = strings.Cut(head, "-")
	return parseDecimal(head)
}

// RecordID derives the archive id from a comment record name: the text
// before the first "-", or the name without its extension when there is none.
func RecordID(name string) string {
	if i := strings.Index(name, "-"); i >= 0 {
		return name[:i]
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Key parses an archive id into its canonical integer form.
func Key(id string) (int, bool) {
	return parseDecimal(strings.TrimSpace(id))
}

func parseDecimal(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Match returns the names whose identifier equals id, in input order. The
// result is never nil.
func Match(id string, names []string) []string {
	matched := []string{}
	key, ok := Key(id)
	if !ok {
		return matched
	}
	for _, name := range names {
		if n, ok := ParseID(name); ok && n == key {
			matched = append(matched, name)
		}
	}
	return matched
}

// Index groups orig names by identifier for repeated lookups.
type Index struct {
	byID        map[int][]string
	unparseable []string
}

// NewIndex builds an Index over names, preserving their order within groups.
func NewIndex(names []string) *Index {
	idx := &Index{byID: make(map[int][]string)}
	for _, name := range names {
		n, ok := ParseID(name)
		if !ok {
			idx.unparseable = append(idx.unparseable, name)
			continue
		}
		idx.byID[n] = append(idx.byID[n], name)
	}
	return idx
}

// Lookup returns the names matching id, equivalent to Match over the indexed
// names. The result is never nil.
func (idx *Index) Lookup(id string) []string {
	key, ok := Key(id)
	if !ok {
		return []string{}
	}
	names := idx.byID[key]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Unparseable returns the names whose identifier could not be derived.
func (idx *Index) Unparseable() []string {
	return idx.unparseable
}

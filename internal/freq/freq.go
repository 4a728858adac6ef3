// Package freq aggregates facet value occurrence counts across archives.
package freq

import (
	"sort"

	"github.com/phobologic/lanting/internal/model"
)

// Add increments the counter of each value for field f. Every occurrence
// counts, including repeats within one record. Non-facet fields are ignored.
func Add(m model.FreqMap, f model.Field, values ...string) {
	if !f.IsFacet() || len(values) == 0 {
		return
	}
	counts := m[f]
	if counts == nil {
		counts = make(map[string]int)
		m[f] = counts
	}
	for _, v := range values {
		counts[v]++
	}
}

// Total returns the sum of all counts recorded for f.
func Total(m model.FreqMap, f model.Field) int {
	n := 0
	for _, c := range m[f] {
		n += c
	}
	return n
}

// Entry is one facet value with its count.
type Entry struct {
	Value string
	Count int
}

// Top returns the n most frequent values of f, highest count first with ties
// broken by value. If n <= 0, all values are returned.
func Top(m model.FreqMap, f model.Field, n int) []Entry {
	entries := make([]Entry, 0, len(m[f]))
	for v, c := range m[f] {
		entries = append(entries, Entry{Value: v, Count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Value < entries[j].Value
	})
	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

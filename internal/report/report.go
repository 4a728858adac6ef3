// Package report computes the consistency report between comment records and
// origs.
package report

import (
	"sort"

	"github.com/phobologic/lanting/internal/model"
	"github.com/phobologic/lanting/internal/origs"
)

// Check compares records against orig names. It is independent of
// compilation and reads its inputs only.
//
// NoOrig lists record ids with no matching orig, in record order.
// NoComment lists orig names whose identifier matches no record id, in
// listing order; names without a parseable identifier are always included.
// Duplicates lists ids carried by more than one record, sorted.
func Check(records []model.Record, origNames []string) model.Report {
	idx := origs.NewIndex(origNames)

	r := model.Report{
		NoOrig:     []string{},
		NoComment:  []string{},
		Duplicates: []string{},
	}

	keys := make(map[int]struct{}, len(records))
	counts := make(map[string]int, len(records))
	for _, rec := range records {
		id := origs.RecordID(rec.Name)
		counts[id]++
		if len(idx.Lookup(id)) == 0 {
			r.NoOrig = append(r.NoOrig, id)
		}
		if k, ok := origs.Key(id); ok {
			keys[k] = struct{}{}
		}
	}

	for _, name := range origNames {
		n, ok := origs.ParseID(name)
		if !ok {
			r.NoComment = append(r.NoComment, name)
			continue
		}
		if _, found := keys[n]; !found {
			r.NoComment = append(r.NoComment, name)
		}
	}

	for id, c := range counts {
		if c > 1 {
			r.Duplicates = append(r.Duplicates, id)
		}
	}
	sort.Strings(r.Duplicates)

	return r
}

// Clean reports whether r found no inconsistencies.
func Clean(r model.Report) bool {
	return len(r.NoOrig) == 0 && len(r.NoComment) == 0 && len(r.Duplicates) == 0
}

// Package toon implements TOON (Token-Oriented Object Notation) encoding of
// compiled archives and consistency reports.
package toon

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/phobologic/lanting/internal/freq"
	"github.com/phobologic/lanting/internal/model"
	"github.com/phobologic/lanting/internal/origs"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts an Archives aggregate into TOON. Archives are listed by id;
// facets show at most top values each (all when top <= 0).
func Encode(a *model.Archives, top int) string {
	var parts []string

	ids := make([]string, 0, len(a.Archives))
	for id := range a.Archives {
		ids = append(ids, id)
	}
	sortIDs(ids)

	var rows [][]string
	for _, id := range ids {
		ar := a.Archives[id]
		rows = append(rows, []string{
			ar.ID,
			ar.Title,
			strings.Join(ar.Author, " & "),
			ar.Publisher,
			ar.Date,
			strings.Join(ar.Tag, " "),
			fmt.Sprintf("%d", len(ar.Origs)),
		})
	}
	parts = append(parts, formatTabular("archives",
		[]string{"id", "title", "author", "publisher", "date", "tag", "origs"}, rows))

	for _, f := range model.Facets {
		var facetRows [][]string
		for _, e := range freq.Top(a.FieldFreqMap, f, top) {
			facetRows = append(facetRows, []string{e.Value, fmt.Sprintf("%d", e.Count)})
		}
		parts = append(parts, formatTabular(string(f), []string{"value", "count"}, facetRows))
	}

	return strings.Join(parts, "\n")
}

// EncodeReport converts a consistency report into TOON.
func EncodeReport(r model.Report) string {
	parts := []string{
		formatList("noOrig", r.NoOrig),
		formatList("noComment", r.NoComment),
	}
	if len(r.Duplicates) > 0 {
		parts = append(parts, formatList("duplicates", r.Duplicates))
	}
	return strings.Join(parts, "\n")
}

// sortIDs orders numeric ids numerically and places the rest after them.
func sortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		ni, iok := origs.Key(ids[i])
		nj, jok := origs.Key(ids[j])
		switch {
		case iok && jok && ni != nj:
			return ni < nj
		case iok != jok:
			return iok
		}
		return ids[i] < ids[j]
	})
}

func formatList(name string, items []string) string {
	if len(items) == 0 {
		return name + "[0]:"
	}
	encoded := make([]string, len(items))
	for i, it := range items {
		encoded[i] = encodeValue(it)
	}
	return fmt.Sprintf("%s[%d]: %s", name, len(items), strings.Join(encoded, ","))
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}

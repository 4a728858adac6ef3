// Package field extracts tagged fields from comment record text.
//
// A field block is a header line "# <name>" followed by a value that runs up
// to the next blank line:
//
//	# title
//	Some Title
//
//	# author
//	B, A
//
// Blocks are removed from the text as they are extracted so that whatever is
// left over becomes the remarks.
package field

import (
	"regexp"
	"sort"
	"strings"

	"github.com/phobologic/lanting/internal/model"
)

var patterns = func() map[model.Field]*regexp.Regexp {
	m := make(map[model.Field]*regexp.Regexp, len(model.Fields))
	for _, f := range model.Fields {
		m[f] = regexp.MustCompile(`(?ms)^# ` + regexp.QuoteMeta(string(f)) + `\n([^\n].*?)\n\n`)
	}
	return m
}()

var remarksHeader = regexp.MustCompile(`(?m)^# remarks[ \t]*(?:\n|$)`)

// Extraction is the result of extracting one field from a text.
type Extraction struct {
	Field  model.Field
	Raw    string   // captured value span, verbatim
	Values []string // normalized values; a single element for scalar fields
	Rest   string   // input text with the matched block removed
}

// Value returns the scalar value of a single-valued field.
func (e Extraction) Value() string {
	if len(e.Values) == 0 {
		return ""
	}
	return e.Values[0]
}

// Extract locates the first block for f in text. If no block is found, ok is
// false and Rest is text unchanged.
func Extract(f model.Field, text string) (e Extraction, ok bool) {
	e = Extraction{Field: f, Rest: text}
	re, known := patterns[f]
	if !known {
		return e, false
	}

	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return e, false
	}

	e.Raw = text[loc[2]:loc[3]]
	e.Values = Normalize(f, e.Raw)
	e.Rest = text[:loc[0]] + text[loc[1]:]
	return e, true
}

// Normalize turns a raw value span into field values. List fields are split on
// commas, trimmed and sorted; duplicates are kept.
func Normalize(f model.Field, raw string) []string {
	if !f.IsMulti() {
		return []string{raw}
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		values = append(values, p)
	}
	sort.Strings(values)
	return values
}

// Fields holds every field found in one record, keyed by field name.
type Fields map[model.Field][]string

// ExtractAll strips every recognized field from text in the fixed field
// order and returns the found values along with the leftover text. missing
// lists the fields that had no block.
func ExtractAll(text string) (found Fields, rest string, missing []model.Field) {
	found = make(Fields, len(model.Fields))
	rest = text
	for _, f := range model.Fields {
		e, ok := Extract(f, rest)
		if !ok {
			missing = append(missing, f)
			continue
		}
		found[f] = e.Values
		rest = e.Rest
	}
	return found, rest, missing
}

// Remarks turns leftover record text into the remarks value: the first
// "# remarks" header line is dropped and surrounding whitespace trimmed.
func Remarks(rest string) string {
	if loc := remarksHeader.FindStringIndex(rest); loc != nil {
		rest = rest[:loc[0]] + rest[loc[1]:]
	}
	return strings.TrimSpace(rest)
}

// Apply copies found values onto a.
func Apply(a *model.Archive, found Fields) {
	for f, v := range found {
		switch f {
		case model.Title:
			a.Title = first(v)
		case model.Author:
			a.Author = v
		case model.Publisher:
			a.Publisher = first(v)
		case model.Date:
			a.Date = first(v)
		case model.Chapter:
			a.Chapter = first(v)
		case model.Tag:
			a.Tag = v
		}
	}
}

func first(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

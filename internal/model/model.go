// Package model defines core data structures for lanting.
package model

// Field names a recognized tagged field of a comment record.
type Field string

const (
	Title     Field = "title"
	Author    Field = "author"
	Publisher Field = "publisher"
	Date      Field = "date"
	Chapter   Field = "chapter"
	Tag       Field = "tag"
)

// Fields lists the recognized fields in extraction order.
var Fields = []Field{Title, Author, Publisher, Date, Chapter, Tag}

// Facets lists the fields whose values are counted in the frequency map.
var Facets = []Field{Author, Publisher, Date, Tag}

// IsMulti reports whether f holds a comma-separated list of values.
func (f Field) IsMulti() bool {
	return f == Author || f == Tag
}

// IsFacet reports whether values of f are aggregated into frequency counts.
func (f Field) IsFacet() bool {
	switch f {
	case Author, Publisher, Date, Tag:
		return true
	}
	return false
}

// Record is one comment record: a named text blob.
type Record struct {
	Name string
	Text string
}

// Archive is the compiled entry for a single comment record.
type Archive struct {
	ID        string   `json:"id"`
	Title     string   `json:"title,omitempty"`
	Author    []string `json:"author,omitempty"`
	Publisher string   `json:"publisher,omitempty"`
	Date      string   `json:"date,omitempty"`
	Chapter   string   `json:"chapter,omitempty"`
	Tag       []string `json:"tag,omitempty"`
	Remarks   string   `json:"remarks"`
	Origs     []string `json:"origs"`
}

// FreqMap counts value occurrences per facet field.
type FreqMap map[Field]map[string]int

// Archives is the aggregate produced by one compilation run.
type Archives struct {
	Archives     map[string]Archive `json:"archives"`
	FieldFreqMap FreqMap            `json:"fieldFreqMap"`
}

// NewArchives returns an empty aggregate with every facet map allocated.
func NewArchives() *Archives {
	freq := make(FreqMap, len(Facets))
	for _, f := range Facets {
		freq[f] = make(map[string]int)
	}
	return &Archives{
		Archives:     make(map[string]Archive),
		FieldFreqMap: freq,
	}
}

// Report is the consistency diagnostic between records and origs.
type Report struct {
	NoOrig     []string // archive ids without any matched orig
	NoComment  []string // orig names without a matching record
	Duplicates []string // ids carried by more than one record
}

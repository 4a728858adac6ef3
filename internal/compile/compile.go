// Package compile builds the archives aggregate from comment records and the
// orig listing.
package compile

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/phobologic/lanting/internal/field"
	"github.com/phobologic/lanting/internal/freq"
	"github.com/phobologic/lanting/internal/model"
	"github.com/phobologic/lanting/internal/origs"
)

// ErrDuplicateID is returned in strict mode when two records share an id.
var ErrDuplicateID = errors.New("duplicate archive id")

// Options controls a compilation run.
type Options struct {
	Logger *zap.Logger
	// Strict turns an id collision into an error instead of letting the later
	// record overwrite the earlier one.
	Strict bool
}

// Archive compiles a single record against the orig index.
func Archive(rec model.Record, idx *origs.Index) (model.Archive, field.Fields, []model.Field) {
	a := model.Archive{ID: origs.RecordID(rec.Name)}

	found, rest, missing := field.ExtractAll(rec.Text)
	field.Apply(&a, found)
	a.Remarks = field.Remarks(rest)
	a.Origs = idx.Lookup(a.ID)

	return a, found, missing
}

// Compile processes records in order and returns the aggregate. Missing
// fields are logged and never fail the run.
func Compile(records []model.Record, origNames []string, opts Options) (*model.Archives, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	out := model.NewArchives()
	idx := origs.NewIndex(origNames)
	seen := make(map[string]string, len(records))

	for _, rec := range records {
		log.Debug("processing", zap.String("record", rec.Name))

		a, found, missing := Archive(rec, idx)
		for _, f := range missing {
			log.Debug("field not found", zap.String("record", rec.Name), zap.String("field", string(f)))
		}

		if prev, dup := seen[a.ID]; dup {
			if opts.Strict {
				return nil, fmt.Errorf("%w %q: %s and %s", ErrDuplicateID, a.ID, prev, rec.Name)
			}
			log.Warn("duplicate archive id, later record wins",
				zap.String("id", a.ID),
				zap.String("previous", prev),
				zap.String("record", rec.Name))
		}
		seen[a.ID] = rec.Name

		for _, f := range model.Facets {
			freq.Add(out.FieldFreqMap, f, found[f]...)
		}
		out.Archives[a.ID] = a
	}

	log.Info("compiled archives",
		zap.Int("records", len(records)),
		zap.Int("archives", len(out.Archives)),
		zap.Int("origs", len(origNames)))
	return out, nil
}

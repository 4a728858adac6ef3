// Package discover finds and loads comment records in an archive directory.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"go.uber.org/zap"

	"github.com/phobologic/lanting/internal/model"
)

// IgnoreFile is the gitignore-syntax file read from the comments directory.
const IgnoreFile = ".archiveignore"

// FileEntry represents a discovered comment record file.
type FileEntry struct {
	Name string // Relative to the comments directory
	Size int64
}

// Files lists comment record files directly under dir, sorted by name.
// Hidden files, symlinks, subdirectories and names matched by IgnoreFile are
// skipped.
func Files(dir string) ([]FileEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", model.ErrSourceUnavailable, dir, err)
	}

	gi := loadIgnore(dir)

	var results []FileEntry
	for _, d := range entries {
		name := d.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !d.Type().IsRegular() {
			continue
		}
		if gi != nil && gi.MatchesPath(name) {
			continue
		}

		info, err := d.Info()
		if err != nil {
			continue // removed between listing and stat
		}
		results = append(results, FileEntry{Name: name, Size: info.Size()})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Name < results[j].Name
	})

	return results, nil
}

// Records loads every comment record under dir. Files larger than maxSize
// bytes are skipped with a warning when maxSize > 0. Line endings are
// normalized to "\n".
func Records(dir string, maxSize int64, log *zap.Logger) ([]model.Record, error) {
	if log == nil {
		log = zap.NewNop()
	}

	files, err := Files(dir)
	if err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(files))
	for _, f := range files {
		if maxSize > 0 && f.Size > maxSize {
			log.Warn("skipped oversized record",
				zap.String("record", f.Name),
				zap.Int64("size", f.Size),
				zap.Int64("limit", maxSize))
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, f.Name))
		if err != nil {
			return nil, fmt.Errorf("%w: reading record %s: %w", model.ErrSourceUnavailable, f.Name, err)
		}
		records = append(records, model.Record{
			Name: f.Name,
			Text: strings.ReplaceAll(string(data), "\r\n", "\n"),
		})
	}
	return records, nil
}

func loadIgnore(dir string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(dir, IgnoreFile))
	if err != nil {
		return nil
	}
	return gi
}

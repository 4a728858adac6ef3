package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/phobologic/lanting/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS archives (
	id        TEXT PRIMARY KEY,
	title     TEXT,
	publisher TEXT,
	date      TEXT,
	chapter   TEXT,
	remarks   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS archive_values (
	archive_id TEXT NOT NULL REFERENCES archives(id),
	field      TEXT NOT NULL,
	position   INTEGER NOT NULL,
	value      TEXT NOT NULL,
	PRIMARY KEY (archive_id, field, position)
);
CREATE TABLE IF NOT EXISTS origs (
	archive_id TEXT NOT NULL REFERENCES archives(id),
	name       TEXT NOT NULL,
	PRIMARY KEY (archive_id, name)
);
CREATE TABLE IF NOT EXISTS field_freq (
	field TEXT NOT NULL,
	value TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY (field, value)
);
CREATE INDEX IF NOT EXISTS idx_archive_values_value ON archive_values(field, value);
`

// Export writes the archives aggregate to a SQLite database at path,
// replacing any rows left by a previous export.
func Export(ctx context.Context, path string, archives *model.Archives) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning export: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"origs", "archive_values", "field_freq", "archives"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if err := insertArchives(ctx, tx, archives.Archives); err != nil {
		return err
	}
	if err := insertFreq(ctx, tx, archives.FieldFreqMap); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing export: %w", err)
	}
	return nil
}

func insertArchives(ctx context.Context, tx *sql.Tx, archives map[string]model.Archive) error {
	ids := make([]string, 0, len(archives))
	for id := range archives {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		a := archives[id]
		_, err := tx.ExecContext(ctx,
			`INSERT INTO archives (id, title, publisher, date, chapter, remarks) VALUES (?, ?, ?, ?, ?, ?)`,
			a.ID, nullable(a.Title), nullable(a.Publisher), nullable(a.Date), nullable(a.Chapter), a.Remarks)
		if err != nil {
			return fmt.Errorf("inserting archive %s: %w", id, err)
		}

		values := map[model.Field][]string{model.Author: a.Author, model.Tag: a.Tag}
		for _, f := range []model.Field{model.Author, model.Tag} {
			for pos, v := range values[f] {
				_, err := tx.ExecContext(ctx,
					`INSERT INTO archive_values (archive_id, field, position, value) VALUES (?, ?, ?, ?)`,
					a.ID, string(f), pos, v)
				if err != nil {
					return fmt.Errorf("inserting %s of archive %s: %w", f, id, err)
				}
			}
		}

		for _, name := range a.Origs {
			_, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO origs (archive_id, name) VALUES (?, ?)`, a.ID, name)
			if err != nil {
				return fmt.Errorf("inserting orig %s: %w", name, err)
			}
		}
	}
	return nil
}

func insertFreq(ctx context.Context, tx *sql.Tx, freq model.FreqMap) error {
	for _, f := range model.Facets {
		for value, count := range freq[f] {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO field_freq (field, value, count) VALUES (?, ?, ?)`,
				string(f), value, count)
			if err != nil {
				return fmt.Errorf("inserting %s frequency: %w", f, err)
			}
		}
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package compatdb

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"webcompat/internal/compat"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists a capability dataset in a local SQLite file, so
// `dataset update` survives between runs without re-fetching.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the store and applies migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS dataset_meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS capabilities (
		name     TEXT PRIMARY KEY,
		kind     TEXT NOT NULL,
		patterns TEXT NOT NULL,
		support  TEXT NOT NULL,
		mdn      TEXT NOT NULL DEFAULT '',
		notes    TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := s.db.Exec(query)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Replace swaps the stored dataset for a new snapshot in one transaction.
// Readers either see the old snapshot or the new one, never a mix.
func (s *SQLiteStore) Replace(ds *Dataset) error {
	if err := validate(ds); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM capabilities`); err != nil {
		return fmt.Errorf("clear capabilities: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO capabilities (name, kind, patterns, support, mdn, notes) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range ds.Capabilities {
		patterns, support, err := encodeRecord(rec)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(rec.Name, rec.Kind, patterns, support, rec.MDN, rec.Notes); err != nil {
			return fmt.Errorf("insert %s: %w", rec.Name, err)
		}
	}

	for key, value := range map[string]string{"version": ds.Version, "updated": ds.Updated} {
		if _, err := tx.Exec(`INSERT INTO dataset_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
			return fmt.Errorf("save meta %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// Lookup returns one record by qualified name.
func (s *SQLiteStore) Lookup(name string) (compat.CapabilityRecord, error) {
	row := s.db.QueryRow(`SELECT name, kind, patterns, support, mdn, notes FROM capabilities WHERE name = ?`, name)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return compat.CapabilityRecord{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return rec, err
}

// All returns every stored record ordered by name.
func (s *SQLiteStore) All() ([]compat.CapabilityRecord, error) {
	rows, err := s.db.Query(`SELECT name, kind, patterns, support, mdn, notes FROM capabilities ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []compat.CapabilityRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Version returns the stored dataset revision, or empty when no dataset has
// been loaded yet.
func (s *SQLiteStore) Version() (string, error) {
	var version string
	err := s.db.QueryRow(`SELECT value FROM dataset_meta WHERE key = 'version'`).Scan(&version)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return version, err
}

// Count returns the number of stored capability records.
func (s *SQLiteStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM capabilities`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (compat.CapabilityRecord, error) {
	var rec compat.CapabilityRecord
	var patterns, support string
	if err := row.Scan(&rec.Name, &rec.Kind, &patterns, &support, &rec.MDN, &rec.Notes); err != nil {
		return rec, err
	}
	if err := json.Unmarshal([]byte(patterns), &rec.Patterns); err != nil {
		return rec, fmt.Errorf("decode patterns for %s: %w", rec.Name, err)
	}
	if err := json.Unmarshal([]byte(support), &rec.Support); err != nil {
		return rec, fmt.Errorf("decode support for %s: %w", rec.Name, err)
	}
	return rec, nil
}

func encodeRecord(rec compat.CapabilityRecord) (patterns, support string, err error) {
	p, err := json.Marshal(rec.Patterns)
	if err != nil {
		return "", "", fmt.Errorf("encode patterns for %s: %w", rec.Name, err)
	}
	sp, err := json.Marshal(rec.Support)
	if err != nil {
		return "", "", fmt.Errorf("encode support for %s: %w", rec.Name, err)
	}
	return string(p), string(sp), nil
}

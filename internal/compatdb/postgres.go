package compatdb

import (
	"database/sql"
	"fmt"

	"webcompat/internal/compat"

	_ "github.com/lib/pq"
)

// PostgresStore persists the capability dataset in PostgreSQL, for teams
// sharing one refreshed snapshot across CI workers.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the store and applies migrations.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS dataset_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS capabilities (
			name     TEXT PRIMARY KEY,
			kind     TEXT NOT NULL,
			patterns TEXT NOT NULL,
			support  TEXT NOT NULL,
			mdn      TEXT NOT NULL DEFAULT '',
			notes    TEXT NOT NULL DEFAULT ''
		);`,
	}
	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Replace swaps the stored dataset for a new snapshot in one transaction.
func (s *PostgresStore) Replace(ds *Dataset) error {
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

	for _, rec := range ds.Capabilities {
		patterns, support, err := encodeRecord(rec)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			`INSERT INTO capabilities (name, kind, patterns, support, mdn, notes) VALUES ($1, $2, $3, $4, $5, $6)`,
			rec.Name, rec.Kind, patterns, support, rec.MDN, rec.Notes,
		); err != nil {
			return fmt.Errorf("insert %s: %w", rec.Name, err)
		}
	}

	for key, value := range map[string]string{"version": ds.Version, "updated": ds.Updated} {
		if _, err := tx.Exec(
			`INSERT INTO dataset_meta (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
			key, value,
		); err != nil {
			return fmt.Errorf("save meta %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// Lookup returns one record by qualified name.
func (s *PostgresStore) Lookup(name string) (compat.CapabilityRecord, error) {
	row := s.db.QueryRow(`SELECT name, kind, patterns, support, mdn, notes FROM capabilities WHERE name = $1`, name)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return compat.CapabilityRecord{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return rec, err
}

// All returns every stored record ordered by name.
func (s *PostgresStore) All() ([]compat.CapabilityRecord, error) {
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

// Version returns the stored dataset revision, or empty when none is loaded.
func (s *PostgresStore) Version() (string, error) {
	var version string
	err := s.db.QueryRow(`SELECT value FROM dataset_meta WHERE key = 'version'`).Scan(&version)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return version, err
}

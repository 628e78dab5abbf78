package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteIndex struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

// NewSQLiteIndex creates or opens a SQLite database. ":memory:" gives a
// private in-memory index.
func NewSQLiteIndex(path string) (*SQLiteIndex, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared and serializes
	// writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteIndex{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *SQLiteIndex) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS types (
			type_key TEXT PRIMARY KEY,
			binary_name TEXT NOT NULL,
			qualified TEXT NOT NULL COLLATE NOCASE,
			simple TEXT NOT NULL COLLATE NOCASE,
			package TEXT,
			kind TEXT,
			file TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS files (
			path TEXT PRIMARY KEY,
			content_hash TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS meta (
			name TEXT PRIMARY KEY,
			value TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_types_qualified ON types(qualified COLLATE NOCASE);`,
		`CREATE INDEX IF NOT EXISTS idx_types_simple ON types(simple COLLATE NOCASE);`,
		`CREATE INDEX IF NOT EXISTS idx_types_file ON types(file);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) ReplaceFile(ctx context.Context, file, contentHash string, records []TypeRecord) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM types WHERE file = ?", file); err != nil {
		return fmt.Errorf("failed to clear %s: %w", file, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO types (type_key, binary_name, qualified, simple, package, kind, file)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(type_key) DO UPDATE SET
			binary_name=excluded.binary_name,
			qualified=excluded.qualified,
			simple=excluded.simple,
			package=excluded.package,
			kind=excluded.kind,
			file=excluded.file
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Key, r.Binary, r.Qualified, r.Simple, r.Package, r.Kind, file); err != nil {
			return fmt.Errorf("failed to store %s: %w", r.Binary, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO files (path, content_hash) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET content_hash=excluded.content_hash
	`, file, contentHash); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteIndex) RemoveFile(ctx context.Context, file string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM types WHERE file = ?", file); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM files WHERE path = ?", file); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteIndex) FileHash(ctx context.Context, file string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrClosed
	}

	var hash string
	err := s.db.QueryRowContext(ctx, "SELECT content_hash FROM files WHERE path = ?", file).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return hash, true, nil
}

func (s *SQLiteIndex) FindTypes(ctx context.Context, pattern string) ([]TypeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	column := "simple"
	if strings.Contains(pattern, ".") {
		column = "qualified"
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT type_key, binary_name, qualified, simple, package, kind, file FROM types WHERE "+column+" = ? COLLATE NOCASE ORDER BY binary_name",
		pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to query types: %w", err)
	}
	defer rows.Close()

	var out []TypeRecord
	for rows.Next() {
		var r TypeRecord
		var pkg, kind sql.NullString
		if err := rows.Scan(&r.Key, &r.Binary, &r.Qualified, &r.Simple, &pkg, &kind, &r.File); err != nil {
			return nil, fmt.Errorf("failed to scan type: %w", err)
		}
		r.Package, r.Kind = pkg.String, kind.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM types").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLiteIndex) SetMeta(ctx context.Context, key, value string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meta (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value=excluded.value
	`, key, value)
	return err
}

func (s *SQLiteIndex) GetMeta(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrClosed
	}

	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE name = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

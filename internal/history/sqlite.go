package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore SQLite history storage implementation
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite storage
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database tables: %w", err)
	}

	return store, nil
}

// initTables initializes database tables
func (s *SQLiteStore) initTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			id TEXT PRIMARY KEY,
			engine TEXT NOT NULL,
			pattern TEXT NOT NULL,
			root TEXT NOT NULL,
			result_count INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			error_code TEXT,
			error TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches(created_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute SQL: %s, error: %w", query, err)
		}
	}

	return nil
}

// Record saves a history entry, assigning ID and CreatedAt when unset
func (s *SQLiteStore) Record(entry *Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO searches (id, engine, pattern, root, result_count, duration_ms, error_code, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Engine, entry.Pattern, entry.Root, entry.ResultCount,
		entry.Duration.Milliseconds(), nullString(entry.ErrorCode), nullString(entry.Error), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

// Get gets an entry by ID, returning nil when it does not exist
func (s *SQLiteStore) Get(id string) (*Entry, error) {
	row := s.db.QueryRow(
		`SELECT id, engine, pattern, root, result_count, duration_ms, error_code, error, created_at
		 FROM searches WHERE id = ?`,
		id,
	)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get search: %w", err)
	}
	return entry, nil
}

// List returns the most recent entries, newest first
func (s *SQLiteStore) List(limit int) ([]*Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, engine, pattern, root, result_count, duration_ms, error_code, error, created_at
		 FROM searches
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Clear deletes all entries
func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec("DELETE FROM searches"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var entry Entry
	var durationMS int64
	var errorCode, errorText sql.NullString
	if err := row.Scan(&entry.ID, &entry.Engine, &entry.Pattern, &entry.Root, &entry.ResultCount,
		&durationMS, &errorCode, &errorText, &entry.CreatedAt); err != nil {
		return nil, err
	}
	entry.Duration = time.Duration(durationMS) * time.Millisecond
	entry.ErrorCode = errorCode.String
	entry.Error = errorText.String
	return &entry, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/picogrid/brightfleet/pkg/models"
	_ "modernc.org/sqlite"
)

const (
	schema = `CREATE TABLE IF NOT EXISTS gamestate (
	id INTEGER PRIMARY KEY,
	data TEXT NOT NULL
)`
	// documentRow is the single row holding the whole board.
	documentRow = 1
)

// SQLite keeps the document as one JSON row in a SQLite database.
type SQLite struct {
	sqlDB *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and seeds it
// with seed when it holds no document yet.
func OpenSQLite(ctx context.Context, path string, seed *models.Document) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one writer; the document is a single row
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &SQLite{sqlDB: sqlDB}
	if seed != nil {
		if err := s.seed(ctx, seed); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *SQLite) seed(ctx context.Context, doc *models.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal seed document: %w", err)
	}
	if _, err := s.sqlDB.ExecContext(ctx,
		`INSERT OR IGNORE INTO gamestate (id, data) VALUES (?, ?)`, documentRow, string(data)); err != nil {
		return fmt.Errorf("seed document: %w", err)
	}
	return nil
}

// Close closes the SQLite handle.
func (s *SQLite) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Load returns the stored document, or the empty document when none was ever saved.
func (s *SQLite) Load(ctx context.Context) (*models.Document, error) {
	if s == nil || s.sqlDB == nil {
		return nil, ErrNotConfigured
	}
	var data string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT data FROM gamestate WHERE id = ?`, documentRow).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return models.EmptyDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("query document: %w", err)
	}

	var doc models.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("decode stored document: %w", err)
	}
	return &doc, nil
}

// Save replaces the stored document.
func (s *SQLite) Save(ctx context.Context, doc *models.Document) error {
	if s == nil || s.sqlDB == nil {
		return ErrNotConfigured
	}
	if doc == nil {
		return fmt.Errorf("document is required")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if _, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO gamestate (id, data) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data`, documentRow, string(data)); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

package watchlist

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS watchlist_items (
	owner_id   TEXT NOT NULL,
	stock_code TEXT NOT NULL,
	position   INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (owner_id, stock_code)
)`

// SQLiteStore persists watchlists in a local SQLite file
// ⭐ SSOT: 단일 노드 기본 저장소
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if needed) the database at path.
// Use ":memory:" for an ephemeral store.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	if path == ":memory:" {
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite at %s: %w", path, err)
	}

	// SQLite handles one writer at a time
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create watchlist schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks the database file is still reachable
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Load returns owner's codes in insertion order
func (s *SQLiteStore) Load(ctx context.Context, owner string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stock_code FROM watchlist_items WHERE owner_id = ? ORDER BY position, stock_code`,
		owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	codes := make([]string, 0)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		codes = append(codes, code)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return codes, nil
}

// Add inserts code at the end of owner's list
func (s *SQLiteStore) Add(ctx context.Context, owner, code string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO watchlist_items (owner_id, stock_code, position)
		SELECT ?, ?, COALESCE(MAX(position), 0) + 1 FROM watchlist_items WHERE owner_id = ?
		ON CONFLICT (owner_id, stock_code) DO NOTHING`,
		owner, code, owner)
	if err != nil {
		return fmt.Errorf("failed to add %s to watchlist: %w", code, err)
	}
	return nil
}

// Remove deletes code from owner's list
func (s *SQLiteStore) Remove(ctx context.Context, owner, code string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM watchlist_items WHERE owner_id = ? AND stock_code = ?`,
		owner, code)
	if err != nil {
		return fmt.Errorf("failed to remove %s from watchlist: %w", code, err)
	}
	return nil
}

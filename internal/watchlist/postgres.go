package watchlist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/divcal/pkg/database"
)

// PostgresStore persists watchlists in PostgreSQL
// ⭐ SSOT: 다중 인스턴스 배포용 관심종목 저장소
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new postgres-backed store
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// schema is applied by EnsureSchema in one transaction
var schema = []string{
	`CREATE TABLE IF NOT EXISTS watchlist_items (
		owner_id   TEXT        NOT NULL,
		stock_code TEXT        NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (owner_id, stock_code)
	)`,
	`CREATE INDEX IF NOT EXISTS watchlist_items_owner_created
		ON watchlist_items (owner_id, created_at)`,
}

// EnsureSchema creates the watchlist table if missing
func EnsureSchema(ctx context.Context, db *database.DB) error {
	return db.Migrate(ctx, "watchlist", schema...)
}

// Load returns owner's codes in insertion order
func (r *PostgresStore) Load(ctx context.Context, owner string) ([]string, error) {
	query := `
		SELECT stock_code
		FROM watchlist_items
		WHERE owner_id = $1
		ORDER BY created_at, stock_code
	`

	rows, err := r.pool.Query(ctx, query, owner)
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

// Add inserts code; existing entries keep their position
func (r *PostgresStore) Add(ctx context.Context, owner, code string) error {
	query := `
		INSERT INTO watchlist_items (owner_id, stock_code)
		VALUES ($1, $2)
		ON CONFLICT (owner_id, stock_code) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, owner, code); err != nil {
		return fmt.Errorf("failed to add %s to watchlist: %w", code, err)
	}
	return nil
}

// Remove deletes code from owner's list
func (r *PostgresStore) Remove(ctx context.Context, owner, code string) error {
	query := `DELETE FROM watchlist_items WHERE owner_id = $1 AND stock_code = $2`

	if _, err := r.pool.Exec(ctx, query, owner, code); err != nil {
		return fmt.Errorf("failed to remove %s from watchlist: %w", code, err)
	}
	return nil
}

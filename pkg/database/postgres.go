package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/divcal/pkg/config"
)

// pingTimeout bounds the connection check in New
const pingTimeout = 5 * time.Second

// DB wraps the pgxpool.Pool used by the postgres watchlist store
// ⭐ SSOT: DB 연결은 이 패키지에서만 생성
type DB struct {
	Pool *pgxpool.Pool
}

// New opens a pool and verifies it with one ping
// ⭐ SSOT: 유일하게 pgxpool.New()를 호출하는 함수
func New(ctx context.Context, cfg *config.Config) (*DB, error) {
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	applyPoolLimits(poolConfig, cfg.Database)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// applyPoolLimits copies non-zero pool settings; zero keeps pgx defaults
func applyPoolLimits(pc *pgxpool.Config, c config.DatabaseConfig) {
	if c.MaxConns > 0 {
		pc.MaxConns = int32(c.MaxConns)
	}
	if c.MinConns > 0 && c.MinConns <= int(pc.MaxConns) {
		pc.MinConns = int32(c.MinConns)
	}
	if c.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = c.MaxConnLifetime
	}
	if c.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = c.MaxConnIdleTime
	}
}

// Close closes the database connection pool
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Migrate runs schema statements in one transaction.
// Statements must be idempotent (CREATE ... IF NOT EXISTS).
func (db *DB) Migrate(ctx context.Context, name string, statements ...string) error {
	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		for i, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("statement %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("migrate %s: %w", name, err)
	}
	return nil
}

// Health is a compact pool status for the /health endpoint
type Health struct {
	Healthy    bool          `json:"healthy"`
	Latency    time.Duration `json:"latency"`
	TotalConns int32         `json:"total_conns"`
	IdleConns  int32         `json:"idle_conns"`
	MaxConns   int32         `json:"max_conns"`
	Error      string        `json:"error,omitempty"`
}

// HealthCheck pings the pool and reports its connection counts
func (db *DB) HealthCheck(ctx context.Context) Health {
	start := time.Now()
	err := db.Pool.Ping(ctx)

	stats := db.Pool.Stat()
	h := Health{
		Healthy:    err == nil,
		Latency:    time.Since(start),
		TotalConns: stats.TotalConns(),
		IdleConns:  stats.IdleConns(),
		MaxConns:   stats.MaxConns(),
	}
	if err != nil {
		h.Error = err.Error()
	}
	return h
}

// Err reports an unhealthy pool as an error, nil otherwise
func (h Health) Err() error {
	if h.Healthy {
		return nil
	}
	return fmt.Errorf("postgres unhealthy after %s (%d/%d conns): %s",
		h.Latency.Round(time.Millisecond), h.TotalConns, h.MaxConns, h.Error)
}

// Check is the /health probe: HealthCheck folded into an error
func (db *DB) Check(ctx context.Context) error {
	return db.HealthCheck(ctx).Err()
}

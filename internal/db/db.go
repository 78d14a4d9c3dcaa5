package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the shared connection pool. It stays nil when DATABASE_URL is
// unset, and every consumer treats a nil pool as "run without history".
var Pool *pgxpool.Pool

// InitPostgres connects to the database named by DATABASE_URL. Returns
// false without error when no URL is configured.
func InitPostgres(ctx context.Context) (bool, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		log.Println("db: DATABASE_URL not set, history store disabled")
		return false, nil
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return false, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return false, fmt.Errorf("connect postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return false, fmt.Errorf("ping postgres: %w", err)
	}

	Pool = pool
	log.Println("db: connected to postgres")
	return true, nil
}

// Close releases the pool. Safe to call when InitPostgres never ran.
func Close() {
	if Pool != nil {
		Pool.Close()
		Pool = nil
	}
}

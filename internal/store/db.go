package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	Pool *sql.DB
}

func Open(path string) (*DB, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// reasonable defaults
	pool.SetMaxOpenConns(1) // sqlite typically wants 1 writer
	pool.SetConnMaxLifetime(5 * time.Minute)

	// quick ping
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}

	return &DB{Pool: pool}, nil
}

func (d *DB) Close() error {
	if d == nil || d.Pool == nil {
		return nil
	}
	return d.Pool.Close()
}

// Method forms of the query helpers, so callers can depend on a narrow
// interface instead of *sql.DB.

func (d *DB) ListExistingURLs(ctx context.Context) (map[string]struct{}, error) {
	return ListExistingURLs(ctx, d.Pool)
}

func (d *DB) ListStaleVerified(ctx context.Context, olderThan time.Duration) ([]JobRecord, error) {
	return ListStaleVerified(ctx, d.Pool, olderThan)
}

func (d *DB) InsertJob(ctx context.Context, r JobRecord) (int64, error) {
	return InsertJob(ctx, d.Pool, r)
}

func (d *DB) UpdateVerification(ctx context.Context, id int64, status string, verifiedAt *time.Time, notes string) error {
	return UpdateVerification(ctx, d.Pool, id, status, verifiedAt, notes)
}

func (d *DB) ListPublic(ctx context.Context, opts ListPublicOpts) ([]JobRecord, error) {
	return ListPublic(ctx, d.Pool, opts)
}

// Package postgres mirrors catalog snapshots into a Postgres table.
package postgres

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/menu-catalog/internal/crawler"
)

// DefaultTable receives snapshots when Config.Table is empty.
const DefaultTable = "catalog_snapshots"

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// BlobStore upserts one row per object path. The expected schema is:
//
//	CREATE TABLE catalog_snapshots (
//	    object_path  TEXT PRIMARY KEY,
//	    content_type TEXT NOT NULL,
//	    body         BYTEA NOT NULL,
//	    size_bytes   BIGINT NOT NULL,
//	    written_at   TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type BlobStore struct {
	pool  execCloser
	table string
}

var _ crawler.BlobStore = (*BlobStore)(nil)

// Open connects a pool using cfg.
func Open(ctx context.Context, cfg Config) (*BlobStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("storage.postgres_dsn is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &BlobStore{pool: pool, table: table}, nil
}

// NewWithPool builds a store over an existing pool.
func NewWithPool(pool execCloser, table string) (*BlobStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	name, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &BlobStore{pool: pool, table: name}, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		return DefaultTable, nil
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// PutObject stores the snapshot under objectPath, replacing any earlier one.
func (s *BlobStore) PutObject(ctx context.Context, objectPath string, contentType string, r io.Reader) (string, error) {
	if objectPath == "" {
		return "", fmt.Errorf("object path is required")
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read snapshot: %w", err)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (object_path, content_type, body, size_bytes, written_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (object_path) DO UPDATE SET
	content_type = EXCLUDED.content_type,
	body = EXCLUDED.body,
	size_bytes = EXCLUDED.size_bytes,
	written_at = EXCLUDED.written_at`, s.table)
	if _, err := s.pool.Exec(ctx, query, objectPath, contentType, body, int64(len(body))); err != nil {
		return "", fmt.Errorf("upsert snapshot %q: %w", objectPath, err)
	}
	return fmt.Sprintf("postgres://%s/%s", s.table, objectPath), nil
}

// Close releases the pool.
func (s *BlobStore) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}

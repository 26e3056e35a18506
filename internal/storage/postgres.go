package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/williampepple1/classifieds-scraper/internal/extraction"
	"github.com/williampepple1/classifieds-scraper/pkg/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS listings (
	url TEXT PRIMARY KEY,
	listing_id TEXT NOT NULL,
	title TEXT NOT NULL,
	price_text TEXT,
	views INTEGER NOT NULL,
	posted_at TEXT,
	images TEXT[] NOT NULL DEFAULT '{}',
	archive_path TEXT,
	run_id TEXT NOT NULL,
	scraped_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_listings_run_id ON listings(run_id);
CREATE INDEX IF NOT EXISTS idx_listings_views ON listings(views);
`

const upsertSQL = `
INSERT INTO listings (url, listing_id, title, price_text, views, posted_at, images, archive_path, run_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (url) DO UPDATE SET
	title = EXCLUDED.title,
	price_text = EXCLUDED.price_text,
	views = EXCLUDED.views,
	posted_at = EXCLUDED.posted_at,
	images = EXCLUDED.images,
	archive_path = EXCLUDED.archive_path,
	run_id = EXCLUDED.run_id,
	scraped_at = NOW();
`

// PostgresWriter upserts listing records keyed by URL
type PostgresWriter struct {
	pool  *pgxpool.Pool
	ctx   context.Context
	runID string
}

// NewPostgresWriter connects to dsn and makes sure the listings table exists.
// Writes are bound to ctx.
func NewPostgresWriter(ctx context.Context, dsn, runID string) (*PostgresWriter, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	w := &PostgresWriter{pool: pool, ctx: ctx, runID: runID}
	if err := w.EnsureSchema(connectCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return w, nil
}

// EnsureSchema creates the listings table and its indexes
func (w *PostgresWriter) EnsureSchema(ctx context.Context) error {
	if _, err := w.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Write upserts one record
func (w *PostgresWriter) Write(rec models.ListingRecord) error {
	ctx, cancel := context.WithTimeout(w.ctx, 10*time.Second)
	defer cancel()

	if _, err := w.pool.Exec(ctx, upsertSQL, upsertArgs(rec, w.runID)...); err != nil {
		return fmt.Errorf("upsert %s: %w", rec.URL, err)
	}
	return nil
}

// Close releases the pool
func (w *PostgresWriter) Close() error {
	if w.pool != nil {
		w.pool.Close()
	}
	return nil
}

func upsertArgs(rec models.ListingRecord, runID string) []interface{} {
	id, _ := extraction.ListingID(rec.URL)
	images := rec.ImageURLs
	if images == nil {
		images = []string{}
	}
	return []interface{}{
		strings.TrimSpace(rec.URL),
		id,
		strings.TrimSpace(rec.Title),
		strings.TrimSpace(rec.PriceText),
		rec.Views,
		rec.PostedAt,
		images,
		rec.ArchivePath,
		runID,
	}
}

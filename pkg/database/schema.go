package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// EnsureListingsTable creates the listings table and its location index if missing.
// Column names match the dataset's English headers.
func (db *DB) EnsureListingsTable(ctx context.Context, table string) error {
	if table == "" {
		return fmt.Errorf("table name is required")
	}
	ident := pgx.Identifier{table}.Sanitize()
	index := pgx.Identifier{table + "_location_idx"}.Sanitize()

	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id           BIGSERIAL PRIMARY KEY,
	area         DOUBLE PRECISION,
	room_count   TEXT NOT NULL DEFAULT '',
	province     TEXT NOT NULL DEFAULT '',
	district     TEXT NOT NULL DEFAULT '',
	neighborhood TEXT NOT NULL DEFAULT '',
	seller_type  TEXT NOT NULL DEFAULT '',
	price        DOUBLE PRECISION,
	listed_at    TEXT NOT NULL DEFAULT '',
	imported_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS %s ON %s (province, district, neighborhood);`, ident, index, ident)

	if _, err := db.Pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure table %s: %w", table, err)
	}
	return nil
}

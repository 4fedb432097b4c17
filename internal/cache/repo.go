package cache

import (
	"context"
	"fmt"

	"github.com/starford/thermo/internal/models"
)

// Get returns the cached record for a species. Stale or missing entries
// report ok=false.
func (db *DB) Get(ctx context.Context, id string) (models.Record, bool, error) {
	query := `SELECT field, value, unit FROM species_fields WHERE species = ?`
	args := []any{id}
	if db.ttl > 0 {
		query += ` AND fetched_at >= ?`
		args = append(args, db.now().Add(-db.ttl).Unix())
	}
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %s: %w", id, err)
	}
	defer rows.Close()

	rec := models.Record{}
	for rows.Next() {
		var (
			field string
			q     models.Quantity
		)
		if err := rows.Scan(&field, &q.Value, &q.Unit); err != nil {
			return nil, false, fmt.Errorf("cache: scan %s: %w", id, err)
		}
		rec[models.Field(field)] = q
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("cache: get %s: %w", id, err)
	}
	if len(rec) == 0 {
		return nil, false, nil
	}
	return rec, true, nil
}

// Put replaces every cached field of a species within a transaction.
func (db *DB) Put(ctx context.Context, id string, rec models.Record) error {
	if len(rec) == 0 {
		return fmt.Errorf("cache: refusing to store empty record for %s", id)
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cache: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM species_fields WHERE species = ?`, id); err != nil {
		return fmt.Errorf("cache: clear %s: %w", id, err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO species_fields (species, field, value, unit, fetched_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("cache: prepare insert: %w", err)
	}
	defer stmt.Close()

	now := db.now().Unix()
	for f, q := range rec {
		if _, err := stmt.ExecContext(ctx, id, string(f), q.Value, q.Unit, now); err != nil {
			return fmt.Errorf("cache: insert %s %s: %w", id, f, err)
		}
	}
	return tx.Commit()
}

// Purge removes a species from the cache.
func (db *DB) Purge(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM species_fields WHERE species = ?`, id); err != nil {
		return fmt.Errorf("cache: purge %s: %w", id, err)
	}
	return nil
}

// Len returns the number of distinct cached species, stale entries included.
func (db *DB) Len(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(DISTINCT species) FROM species_fields`).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache: count: %w", err)
	}
	return n, nil
}

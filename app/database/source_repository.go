package database

import (
	"database/sql"
	"fmt"
	"time"
)

// SQLiteSourceRepository handles database operations for sources
type SQLiteSourceRepository struct {
	db *DB
}

func NewSourceRepository(db *DB) *SQLiteSourceRepository {
	return &SQLiteSourceRepository{db: db}
}

// UpsertSource inserts or updates a source row from its configuration.
func (r *SQLiteSourceRepository) UpsertSource(sourceName, kind, query string, enabled bool) error {
	_, err := r.db.Exec(`
		INSERT INTO sources (name, kind, query, enabled)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			kind = excluded.kind,
			query = excluded.query,
			enabled = excluded.enabled,
			updated_at = CURRENT_TIMESTAMP
	`, sourceName, kind, query, enabled)

	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}

	return nil
}

// GetSource retrieves a source by name, nil when absent.
func (r *SQLiteSourceRepository) GetSource(sourceName string) (*Source, error) {
	var source Source
	err := r.db.QueryRow(`
		SELECT id, name, kind, query, enabled, last_run_at, next_run_at, created_at, updated_at
		FROM sources
		WHERE name = ?
	`, sourceName).Scan(
		&source.ID, &source.Name, &source.Kind, &source.Query, &source.Enabled,
		&source.LastRunAt, &source.NextRunAt, &source.CreatedAt, &source.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	return &source, nil
}

// GetSourcesDueForRun returns enabled sources whose next run is due.
func (r *SQLiteSourceRepository) GetSourcesDueForRun(limit int) ([]Source, error) {
	rows, err := r.db.Query(`
		SELECT id, name, kind, query, enabled, last_run_at, next_run_at, created_at, updated_at
		FROM sources
		WHERE enabled = 1
		  AND (next_run_at IS NULL OR next_run_at <= CURRENT_TIMESTAMP)
		ORDER BY COALESCE(next_run_at, '1970-01-01')
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get sources due for run: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var source Source
		err := rows.Scan(
			&source.ID, &source.Name, &source.Kind, &source.Query, &source.Enabled,
			&source.LastRunAt, &source.NextRunAt, &source.CreatedAt, &source.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source rows: %w", err)
	}

	return sources, nil
}

// UpdateRunTimes records a completed run and schedules the next one.
func (r *SQLiteSourceRepository) UpdateRunTimes(sourceName string, lastRun, nextRun time.Time) error {
	_, err := r.db.Exec(`
		UPDATE sources
		SET last_run_at = ?, next_run_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE name = ?
	`, lastRun.UTC(), nextRun.UTC(), sourceName)

	if err != nil {
		return fmt.Errorf("failed to update run times: %w", err)
	}

	return nil
}

// GetSourceCount returns the total number of sources
func (r *SQLiteSourceRepository) GetSourceCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM sources").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get source count: %w", err)
	}
	return count, nil
}

// GetEnabledSourceCount returns the count of enabled sources
func (r *SQLiteSourceRepository) GetEnabledSourceCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM sources WHERE enabled = 1").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get enabled source count: %w", err)
	}
	return count, nil
}

package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// SQLiteReportRepository handles database operations for generated reports
type SQLiteReportRepository struct {
	db *DB
}

func NewReportRepository(db *DB) *SQLiteReportRepository {
	return &SQLiteReportRepository{db: db}
}

// StoreReport persists a generated report and returns its row ID. The
// discard breakdown is stored as JSON; reports are append-only history.
func (r *SQLiteReportRepository) StoreReport(report Report) (int64, error) {
	breakdown, err := json.Marshal(report.DiscardedBreakdown)
	if err != nil {
		return 0, fmt.Errorf("failed to encode discard breakdown: %w", err)
	}

	result, err := r.db.Exec(`
		INSERT INTO reports (
			source_name, title, generated_at, markdown, summary,
			total_input, total_kept, duplicates, discarded_breakdown
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, report.SourceName, report.Title, report.GeneratedAt.UTC(), report.Markdown, report.Summary,
		report.TotalInput, report.TotalKept, report.Duplicates, string(breakdown))

	if err != nil {
		return 0, fmt.Errorf("failed to store report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get report ID: %w", err)
	}

	return id, nil
}

// GetLatestReport returns the most recent report for a source, nil when the
// source has never produced one.
func (r *SQLiteReportRepository) GetLatestReport(sourceName string) (*Report, error) {
	row := r.db.QueryRow(`
		SELECT id, source_name, title, generated_at, markdown, summary,
		       total_input, total_kept, duplicates, discarded_breakdown, created_at
		FROM reports
		WHERE source_name = ?
		ORDER BY generated_at DESC
		LIMIT 1
	`, sourceName)

	report, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}

	return report, nil
}

// GetReportHistory returns recent reports for a source, newest first.
func (r *SQLiteReportRepository) GetReportHistory(sourceName string, limit int) ([]Report, error) {
	rows, err := r.db.Query(`
		SELECT id, source_name, title, generated_at, markdown, summary,
		       total_input, total_kept, duplicates, discarded_breakdown, created_at
		FROM reports
		WHERE source_name = ?
		ORDER BY generated_at DESC
		LIMIT ?
	`, sourceName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get report history: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		reports = append(reports, *report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report rows: %w", err)
	}

	return reports, nil
}

// GetReportCount returns the total number of stored reports
func (r *SQLiteReportRepository) GetReportCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM reports").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get report count: %w", err)
	}
	return count, nil
}

// PruneReports deletes all but the newest `keep` reports for a source.
func (r *SQLiteReportRepository) PruneReports(sourceName string, keep int) error {
	_, err := r.db.Exec(`
		DELETE FROM reports
		WHERE source_name = ?
		  AND id NOT IN (
			SELECT id FROM reports
			WHERE source_name = ?
			ORDER BY generated_at DESC
			LIMIT ?
		  )
	`, sourceName, sourceName, keep)

	if err != nil {
		return fmt.Errorf("failed to prune reports: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*Report, error) {
	var report Report
	var breakdown string

	err := row.Scan(
		&report.ID, &report.SourceName, &report.Title, &report.GeneratedAt,
		&report.Markdown, &report.Summary, &report.TotalInput, &report.TotalKept,
		&report.Duplicates, &breakdown, &report.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if breakdown != "" {
		if err := json.Unmarshal([]byte(breakdown), &report.DiscardedBreakdown); err != nil {
			return nil, fmt.Errorf("failed to decode discard breakdown: %w", err)
		}
	}

	return &report, nil
}

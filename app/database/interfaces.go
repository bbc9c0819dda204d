package database

import (
	"time"
)

type SourceRepository interface {
	GetSource(sourceName string) (*Source, error)
	GetSourceCount() (int, error)
	GetEnabledSourceCount() (int, error)
	GetSourcesDueForRun(limit int) ([]Source, error)

	UpsertSource(sourceName, kind, query string, enabled bool) error
	UpdateRunTimes(sourceName string, lastRun, nextRun time.Time) error
}

type ReportRepository interface {
	GetLatestReport(sourceName string) (*Report, error)
	GetReportHistory(sourceName string, limit int) ([]Report, error)
	GetReportCount() (int, error)

	StoreReport(report Report) (int64, error)
	PruneReports(sourceName string, keep int) error
}

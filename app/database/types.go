package database

import (
	"time"
)

type Source struct {
	ID        int64
	Name      string // Configuration source identifier derived from filename
	Kind      string
	Query     string
	Enabled   bool
	LastRunAt *time.Time
	NextRunAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Report struct {
	ID                 int64
	SourceName         string
	Title              string
	GeneratedAt        time.Time
	Markdown           string
	Summary            string // LLM overview, empty when summarize is disabled
	TotalInput         int
	TotalKept          int
	Duplicates         int
	DiscardedBreakdown map[string]int
	CreatedAt          time.Time
}

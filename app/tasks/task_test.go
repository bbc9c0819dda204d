package tasks

import (
	"strings"
	"testing"
)

func TestTaskRetryAccounting(t *testing.T) {
	task := NewTask(TaskTypeProcessSource, "tech")

	if task.GetSourceName() != "tech" {
		t.Errorf("Expected source name 'tech', got %q", task.GetSourceName())
	}
	if !task.CanRetry() {
		t.Errorf("Expected fresh task to be retryable")
	}

	for i := 0; i < DefaultMaxRetries; i++ {
		task.IncrementRetryCount()
	}
	if task.CanRetry() {
		t.Errorf("Expected task to be exhausted after %d retries", DefaultMaxRetries)
	}
}

func TestInjectOverview(t *testing.T) {
	markdown := "# Title — 2025-06-01 09:00\n\n*Source: tech*\n*Items reviewed: 5*\n\n---\n\n## 📰 Top News\n"

	result := injectOverview(markdown, "Mostly release news this morning.")

	if !strings.Contains(result, "## ✨ Overview\n\nMostly release news this morning.") {
		t.Errorf("Expected overview section inserted, got:\n%s", result)
	}

	overviewIdx := strings.Index(result, "Overview")
	newsIdx := strings.Index(result, "Top News")
	if overviewIdx > newsIdx {
		t.Errorf("Expected overview before the first section")
	}
}

func TestInjectOverviewWithoutDivider(t *testing.T) {
	result := injectOverview("no divider here", "Overview text.")

	if !strings.Contains(result, "Overview text.") {
		t.Errorf("Expected overview appended when no divider exists")
	}
}

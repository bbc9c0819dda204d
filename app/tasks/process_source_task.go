package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/merllinsbeard/x-without-junk/app/agent"
	"github.com/merllinsbeard/x-without-junk/app/bird"
	"github.com/merllinsbeard/x-without-junk/app/database"
	"github.com/merllinsbeard/x-without-junk/app/feed"
	"github.com/merllinsbeard/x-without-junk/app/parser"
)

// How many reports to keep per source, and how many links one run may expand.
const (
	reportHistoryKeep = 20
	maxLinkExpansions = 10
)

type ProcessSourceTask struct {
	Task
	SourceConfig     *feed.Config
	birdClient       *bird.Client
	httpClient       *http.Client
	rssParser        *parser.Parser
	contentExtractor *feed.ContentExtractor
	summarizer       *agent.Summarizer
	sourceRepo       database.SourceRepository
	reportRepo       database.ReportRepository
	userAgent        string
}

func NewProcessSourceTask(sourceName string, sourceConfig *feed.Config, birdClient *bird.Client,
	httpClient *http.Client, rssParser *parser.Parser, contentExtractor *feed.ContentExtractor,
	summarizer *agent.Summarizer, sourceRepo database.SourceRepository,
	reportRepo database.ReportRepository, userAgent string) *ProcessSourceTask {
	return &ProcessSourceTask{
		Task:             NewTask(TaskTypeProcessSource, sourceName),
		SourceConfig:     sourceConfig,
		birdClient:       birdClient,
		httpClient:       httpClient,
		rssParser:        rssParser,
		contentExtractor: contentExtractor,
		summarizer:       summarizer,
		sourceRepo:       sourceRepo,
		reportRepo:       reportRepo,
		userAgent:        userAgent,
	}
}

func (t *ProcessSourceTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.SourceConfig.Settings.Enabled {
		slog.Debug("Source disabled, skipping", "source", t.SourceName)
		return nil
	}

	pipeline, err := feed.NewPipeline(t.SourceConfig)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	items, title, err := t.fetchItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch items: %w", err)
	}

	if maxItems := t.SourceConfig.Settings.MaxItems; maxItems > 0 && len(items) > maxItems {
		items = items[:maxItems]
	}

	processed, summary, err := pipeline.Process(items)
	if err != nil {
		return fmt.Errorf("failed to process items: %w", err)
	}

	if t.SourceConfig.Settings.ExpandLinks {
		t.expandLinks(ctx, processed)
	}

	generatedAt := time.Now().UTC()
	report, err := pipeline.Assemble(t.SourceName, title, processed, summary, generatedAt)
	if err != nil {
		return fmt.Errorf("failed to assemble report: %w", err)
	}

	overview := ""
	if t.SourceConfig.Settings.Summarize && t.summarizer != nil {
		overview, err = t.summarizer.Run(ctx, t.SourceName, processed)
		if err != nil {
			// A failed summary degrades the report, it does not fail the run.
			slog.Warn("Summary generation failed", "source", t.SourceName, "error", err)
			overview = ""
		}
		if overview != "" {
			report.Markdown = injectOverview(report.Markdown, overview)
		}
	}

	if err := t.storeReport(report, overview); err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}

	slog.Info("Task completed",
		"type", "ProcessSource",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"total", summary.TotalInput,
		"kept", summary.TotalKept,
		"duplicates", summary.Duplicates)

	return nil
}

// fetchItems retrieves the raw batch for this source plus a report title.
func (t *ProcessSourceTask) fetchItems(ctx context.Context) ([]feed.Item, string, error) {
	if t.SourceConfig.Kind == "rss" {
		data, err := t.fetchURL(ctx, t.SourceConfig.Query)
		if err != nil {
			return nil, "", err
		}

		metadata, items, err := t.rssParser.Run(data)
		if err != nil {
			return nil, "", err
		}

		title := t.SourceConfig.Title
		if title == "" {
			title = metadata.Title
		}
		return items, title, nil
	}

	items, err := t.birdClient.Fetch(ctx, t.SourceConfig)
	if err != nil {
		return nil, "", err
	}
	return items, t.SourceConfig.Title, nil
}

// expandLinks enriches surviving items with the linked page's title and
// excerpt. Failures are per-item and non-fatal.
func (t *ProcessSourceTask) expandLinks(ctx context.Context, items []feed.Item) {
	expanded := 0
	for i := range items {
		if expanded >= maxLinkExpansions {
			return
		}
		if items[i].IsDiscarded || items[i].IsDuplicate || items[i].Link == "" {
			continue
		}

		data, err := t.fetchURL(ctx, items[i].Link)
		if err != nil {
			slog.Debug("Link expansion fetch failed", "source", t.SourceName, "url", items[i].Link, "error", err)
			continue
		}

		title, excerptText, err := t.contentExtractor.Run(data)
		if err != nil {
			slog.Debug("Link expansion extraction failed", "source", t.SourceName, "url", items[i].Link, "error", err)
			continue
		}

		items[i].LinkTitle = title
		items[i].LinkExcerpt = excerptText
		expanded++
	}
}

func (t *ProcessSourceTask) fetchURL(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(t.SourceConfig.Settings.Timeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

func (t *ProcessSourceTask) storeReport(report *feed.Report, overview string) error {
	breakdown := make(map[string]int, len(report.Summary.DiscardedByReason))
	for reason, count := range report.Summary.DiscardedByReason {
		breakdown[string(reason)] = count
	}

	_, err := t.reportRepo.StoreReport(database.Report{
		SourceName:         report.SourceName,
		Title:              report.Title,
		GeneratedAt:        report.GeneratedAt,
		Markdown:           report.Markdown,
		Summary:            overview,
		TotalInput:         report.Summary.TotalInput,
		TotalKept:          report.Summary.TotalKept,
		Duplicates:         report.Summary.Duplicates,
		DiscardedBreakdown: breakdown,
	})
	if err != nil {
		return err
	}

	if err := t.reportRepo.PruneReports(report.SourceName, reportHistoryKeep); err != nil {
		return err
	}

	now := time.Now().UTC()
	nextRun := now.Add(time.Duration(t.SourceConfig.Settings.RefreshInterval) * time.Second)
	return t.sourceRepo.UpdateRunTimes(report.SourceName, now, nextRun)
}

// injectOverview inserts the LLM overview right after the report header
// divider so it reads before the sections.
func injectOverview(markdown, overview string) string {
	const divider = "\n---\n"

	idx := strings.Index(markdown, divider)
	if idx == -1 {
		return markdown + "\n## ✨ Overview\n\n" + overview + "\n"
	}

	insertAt := idx + len(divider)
	return markdown[:insertAt] + "\n## ✨ Overview\n\n" + overview + "\n" + markdown[insertAt:]
}

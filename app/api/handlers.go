package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/merllinsbeard/x-without-junk/app/agent"
	"github.com/merllinsbeard/x-without-junk/app/bird"
	"github.com/merllinsbeard/x-without-junk/app/database"
	"github.com/merllinsbeard/x-without-junk/app/feed"
	"github.com/merllinsbeard/x-without-junk/app/parser"
	"github.com/merllinsbeard/x-without-junk/app/tasks"
)

func NewHandler(configCache *feed.ConfigCache, sourceRepo database.SourceRepository,
	reportRepo database.ReportRepository, birdClient *bird.Client, httpClient *http.Client,
	rssParser *parser.Parser, contentExtractor *feed.ContentExtractor, summarizer *agent.Summarizer,
	scheduler tasks.TaskSchedulerInterface, userAgent string) *Handler {
	return &Handler{
		sourceRepo:       sourceRepo,
		reportRepo:       reportRepo,
		configCache:      configCache,
		birdClient:       birdClient,
		httpClient:       httpClient,
		rssParser:        rssParser,
		contentExtractor: contentExtractor,
		summarizer:       summarizer,
		scheduler:        scheduler,
		userAgent:        userAgent,
	}
}

// GetReport serves the latest generated report for a source as Markdown.
func (h *Handler) GetReport(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Error("Source configuration not found", "source", name, "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	report, err := h.reportRepo.GetLatestReport(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_latest_report", "source", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if report == nil {
		slog.Debug("No report generated yet", "source", name)
		c.Status(http.StatusNotFound)
		return
	}

	c.Header("Content-Type", "text/markdown; charset=utf-8")
	c.Header("X-Report-Generated-At", report.GeneratedAt.Format(time.RFC3339))
	c.Header("X-Report-Kept", strconv.Itoa(report.TotalKept))
	c.Header("X-Report-Source", name)

	c.String(http.StatusOK, report.Markdown)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if sourceCount, err := h.sourceRepo.GetSourceCount(); err == nil {
		health["sources"] = sourceCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"loaded_configurations": h.configCache.GetConfigCount(),
	}

	if sourceCount, err := h.sourceRepo.GetSourceCount(); err == nil {
		stats["sources"] = sourceCount
	}
	if enabledCount, err := h.sourceRepo.GetEnabledSourceCount(); err == nil {
		stats["enabled_sources"] = enabledCount
	}
	if reportCount, err := h.reportRepo.GetReportCount(); err == nil {
		stats["reports"] = reportCount
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListSources(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	sources := make([]map[string]interface{}, 0, len(configs))

	for _, sourceConfig := range configs {
		sourceInfo := map[string]interface{}{
			"name":             sourceConfig.Name,
			"kind":             sourceConfig.Kind,
			"query":            sourceConfig.Query,
			"enabled":          sourceConfig.Settings.Enabled,
			"max_items":        sourceConfig.Settings.MaxItems,
			"refresh_interval": (time.Duration(sourceConfig.Settings.RefreshInterval) * time.Second).String(),
			"expand_links":     sourceConfig.Settings.ExpandLinks,
			"summarize":        sourceConfig.Settings.Summarize,
		}

		if source, err := h.sourceRepo.GetSource(sourceConfig.Name); err == nil && source != nil {
			sourceInfo["last_run_at"] = source.LastRunAt
			sourceInfo["next_run_at"] = source.NextRunAt
		}

		if report, err := h.reportRepo.GetLatestReport(sourceConfig.Name); err == nil && report != nil {
			sourceInfo["last_report"] = map[string]interface{}{
				"generated_at": report.GeneratedAt,
				"total_input":  report.TotalInput,
				"total_kept":   report.TotalKept,
			}
		}

		sources = append(sources, sourceInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": sources,
		"total":   len(sources),
	})
}

// APIReportHistory returns summary metadata for recent reports of a source.
// Markdown bodies are omitted; fetch individual reports via /reports/:name.
func (h *Handler) APIReportHistory(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source name parameter"})
		return
	}

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Error("Source configuration not found", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	reports, err := h.reportRepo.GetReportHistory(name, limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_report_history", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	history := make([]map[string]interface{}, 0, len(reports))
	for _, report := range reports {
		history = append(history, map[string]interface{}{
			"id":           report.ID,
			"generated_at": report.GeneratedAt,
			"title":        report.Title,
			"total_input":  report.TotalInput,
			"total_kept":   report.TotalKept,
			"duplicates":   report.Duplicates,
			"discarded":    report.DiscardedBreakdown,
			"has_summary":  report.Summary != "",
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"source":  name,
		"reports": history,
		"total":   len(history),
	})
}

// APIRunSource reloads a source configuration and enqueues an immediate run.
func (h *Handler) APIRunSource(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source name parameter"})
		return
	}

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Error("Source configuration not found", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	sourceConfig, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	syncTask := tasks.NewSyncSourceConfigTask(name, sourceConfig, h.sourceRepo)
	if err := h.scheduler.EnqueueTask(syncTask); err != nil {
		slog.Error("Error enqueueing sync task", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue sync task",
			"details": err.Error(),
		})
		return
	}

	processTask := tasks.NewProcessSourceTask(name, sourceConfig, h.birdClient, h.httpClient,
		h.rssParser, h.contentExtractor, h.summarizer, h.sourceRepo, h.reportRepo, h.userAgent)
	if err := h.scheduler.EnqueueTask(processTask); err != nil {
		slog.Error("Error enqueueing process task", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue process task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Configuration reloaded and run enqueued successfully",
		"source": gin.H{
			"name": name,
			"kind": sourceConfig.Kind,
		},
		"tasks": []gin.H{
			{"id": syncTask.ID, "type": syncTask.Type},
			{"id": processTask.ID, "type": processTask.Type},
		},
	})
}

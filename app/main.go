package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/merllinsbeard/x-without-junk/app/agent"
	"github.com/merllinsbeard/x-without-junk/app/api"
	"github.com/merllinsbeard/x-without-junk/app/bird"
	"github.com/merllinsbeard/x-without-junk/app/cfg"
	"github.com/merllinsbeard/x-without-junk/app/database"
	"github.com/merllinsbeard/x-without-junk/app/feed"
	"github.com/merllinsbeard/x-without-junk/app/parser"
	"github.com/merllinsbeard/x-without-junk/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting x-without-junk", "version", appCfg.Version)

	if dir := filepath.Dir(appCfg.DBPath); dir != "." && appCfg.DBPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("Failed to create database directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	migrationVersion, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", migrationVersion, "dirty", dirty)

	configCache := feed.NewConfigCache(appCfg.SourcesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load source configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Source configurations loaded", "dir", appCfg.SourcesDir, "count", configCache.GetConfigCount())

	sourceRepo := database.NewSourceRepository(db)
	reportRepo := database.NewReportRepository(db)

	birdClient := bird.NewClient(appCfg.BirdPath, appCfg.FetchCount)
	httpClient := &http.Client{Timeout: 60 * time.Second}
	rssParser := parser.NewParser()
	contentExtractor := feed.NewContentExtractor()

	var summarizer *agent.Summarizer
	if appCfg.OpenAIAPIKey != "" {
		summarizer = agent.NewSummarizer(appCfg.OpenAIAPIKey, appCfg.OpenAIBaseURL, appCfg.OpenAIModel)
		slog.Info("Report summaries enabled", "model", appCfg.OpenAIModel)
	}

	if appCfg.Source != "" {
		if err := runOnce(appCfg, configCache, birdClient, httpClient, rssParser,
			contentExtractor, summarizer, sourceRepo, reportRepo); err != nil {
			slog.Error("One-shot run failed", "source", appCfg.Source, "error", err)
			os.Exit(1)
		}
		return
	}

	verifyCtx, cancelVerify := context.WithTimeout(context.Background(), 10*time.Second)
	if err := birdClient.VerifyCredentials(verifyCtx); err != nil {
		slog.Warn("bird CLI check failed, social sources will not fetch until resolved", "error", err)
	}
	cancelVerify()

	scheduler := tasks.NewScheduler(configCache, sourceRepo, reportRepo, birdClient,
		httpClient, rssParser, contentExtractor, summarizer)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(configCache, sourceRepo, reportRepo, birdClient, httpClient,
		rssParser, contentExtractor, summarizer, scheduler, appCfg.UserAgent)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}

// runOnce processes a single source synchronously and writes the resulting
// report to stdout or the configured output file.
func runOnce(appCfg *cfg.Cfg, configCache *feed.ConfigCache, birdClient *bird.Client,
	httpClient *http.Client, rssParser *parser.Parser, contentExtractor *feed.ContentExtractor,
	summarizer *agent.Summarizer, sourceRepo database.SourceRepository,
	reportRepo database.ReportRepository) error {

	sourceConfig, err := configCache.GetConfig(appCfg.Source)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := sourceRepo.UpsertSource(sourceConfig.Name, sourceConfig.Kind,
		sourceConfig.Query, sourceConfig.Settings.Enabled); err != nil {
		return err
	}

	task := tasks.NewProcessSourceTask(sourceConfig.Name, sourceConfig, birdClient, httpClient,
		rssParser, contentExtractor, summarizer, sourceRepo, reportRepo, appCfg.UserAgent)
	task.Start()
	if err := task.Execute(ctx); err != nil {
		return err
	}

	report, err := reportRepo.GetLatestReport(sourceConfig.Name)
	if err != nil {
		return err
	}
	if report == nil {
		return fmt.Errorf("no report produced for source %q", sourceConfig.Name)
	}

	if appCfg.OutputFile != "" {
		if err := os.WriteFile(appCfg.OutputFile, []byte(report.Markdown), 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		slog.Info("Report written", "source", sourceConfig.Name, "file", appCfg.OutputFile, "kept", report.TotalKept)
		return nil
	}

	fmt.Print(report.Markdown)
	return nil
}

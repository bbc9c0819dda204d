package api

import (
	"net/http"

	"github.com/merllinsbeard/x-without-junk/app/agent"
	"github.com/merllinsbeard/x-without-junk/app/bird"
	"github.com/merllinsbeard/x-without-junk/app/database"
	"github.com/merllinsbeard/x-without-junk/app/feed"
	"github.com/merllinsbeard/x-without-junk/app/parser"
	"github.com/merllinsbeard/x-without-junk/app/tasks"
)

type Handler struct {
	sourceRepo       database.SourceRepository
	reportRepo       database.ReportRepository
	configCache      *feed.ConfigCache
	birdClient       *bird.Client
	httpClient       *http.Client
	rssParser        *parser.Parser
	contentExtractor *feed.ContentExtractor
	summarizer       *agent.Summarizer
	scheduler        tasks.TaskSchedulerInterface
	userAgent        string
}

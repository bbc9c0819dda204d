package feed

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func pipelineConfig() *Config {
	return &Config{
		Name: "tech",
		Kind: "timeline",
		Settings: ConfigSettings{
			Enabled: true,
		},
	}
}

func TestPipeline_Run_EndToEnd(t *testing.T) {
	pipeline, err := NewPipeline(pipelineConfig())
	if err != nil {
		t.Fatal(err)
	}

	publishedAt := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	items := []Item{
		{ID: "1", AuthorHandle: "alice", Text: "1/ A thread on how we cut our cloud bill by rewriting the ingest path", Engagement: 120, PublishedAt: publishedAt},
		{ID: "2", AuthorHandle: "bob", Text: "Solid write-up on lock-free queues https://github.com/example/queues", Link: "https://github.com/example/queues", Engagement: 45, PublishedAt: publishedAt},
		{ID: "3", AuthorHandle: "carol", Text: "Our new course is launching soon, follow for more and get early access", Engagement: 800, PublishedAt: publishedAt},
		{ID: "4", AuthorHandle: "dave", Text: "gm"},
		{ID: "5", AuthorHandle: "erin", Text: "Solid write-up on lock-free queues https://github.com/example/queues", Link: "https://github.com/example/queues", Engagement: 12, PublishedAt: publishedAt},
	}

	generatedAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	report, err := pipeline.Run("tech", "", items, generatedAt)
	if err != nil {
		t.Fatal(err)
	}

	if report.Summary.TotalInput != 5 {
		t.Errorf("Expected 5 inputs, got %d", report.Summary.TotalInput)
	}
	if report.Summary.TotalKept != 2 {
		t.Errorf("Expected 2 kept items, got %d", report.Summary.TotalKept)
	}
	if report.Summary.Duplicates != 1 {
		t.Errorf("Expected 1 duplicate, got %d", report.Summary.Duplicates)
	}
	if report.Summary.DiscardedByReason[ReasonMarketing] != 1 {
		t.Errorf("Expected 1 marketing discard, got %d", report.Summary.DiscardedByReason[ReasonMarketing])
	}
	if report.Summary.DiscardedByReason[ReasonTooShort] != 1 {
		t.Errorf("Expected 1 too_short discard, got %d", report.Summary.DiscardedByReason[ReasonTooShort])
	}

	if strings.Contains(report.Markdown, "launching soon") {
		t.Errorf("Expected marketing item to be absent from the report")
	}
	if !strings.Contains(report.Markdown, "@alice") {
		t.Errorf("Expected thread item in the report")
	}
	if strings.Count(report.Markdown, "@erin") != 0 {
		t.Errorf("Expected duplicate item to be absent from the report")
	}
}

func TestPipeline_Run_MixedBatchScenario(t *testing.T) {
	// One motivational quote, one one-word reply, one high-engagement article
	// link, one numbered-thread continuation, and a weaker duplicate of the
	// article: two survivors across two sections, three discards.
	pipeline, err := NewPipeline(pipelineConfig())
	if err != nil {
		t.Fatal(err)
	}

	publishedAt := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	items := []Item{
		{ID: "1", AuthorHandle: "alice", Text: "Your mindset determines your altitude, rise and grind every day", Engagement: 90, PublishedAt: publishedAt},
		{ID: "2", AuthorHandle: "bob", Text: "agreed", IsReply: true, PublishedAt: publishedAt},
		{ID: "3", AuthorHandle: "carol", Text: "Deep dive into the scheduler rewrite https://github.com/example/sched", Link: "https://github.com/example/sched", Engagement: 300, PublishedAt: publishedAt},
		{ID: "4", AuthorHandle: "dave", Text: "2/ The second part of our scheduler story covers preemption", Engagement: 40, PublishedAt: publishedAt},
		{ID: "5", AuthorHandle: "erin", Text: "Deep dive into the scheduler rewrite https://github.com/example/sched", Link: "https://github.com/example/sched", Engagement: 9, PublishedAt: publishedAt},
	}

	report, err := pipeline.Run("tech", "", items, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}

	if report.Summary.TotalKept != 2 {
		t.Errorf("Expected 2 kept items, got %d", report.Summary.TotalKept)
	}
	if report.Summary.DiscardedByReason[ReasonSelfImprovement] != 1 {
		t.Errorf("Expected 1 self_improvement discard, got %d", report.Summary.DiscardedByReason[ReasonSelfImprovement])
	}
	if report.Summary.DiscardedByReason[ReasonBareReply] != 1 {
		t.Errorf("Expected 1 bare_reply discard, got %d", report.Summary.DiscardedByReason[ReasonBareReply])
	}
	if report.Summary.DiscardedByReason[ReasonDuplicate] != 1 {
		t.Errorf("Expected 1 duplicate discard, got %d", report.Summary.DiscardedByReason[ReasonDuplicate])
	}
	if len(report.Sections) != 2 {
		t.Errorf("Expected survivors across 2 sections, got %d", len(report.Sections))
	}
	if !strings.Contains(report.Markdown, "@carol") || !strings.Contains(report.Markdown, "@dave") {
		t.Errorf("Expected article and thread items in the report:\n%s", report.Markdown)
	}
}

func TestPipeline_Run_SummaryInvariant(t *testing.T) {
	pipeline, err := NewPipeline(pipelineConfig())
	if err != nil {
		t.Fatal(err)
	}

	publishedAt := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	items := []Item{
		{ID: "1", AuthorHandle: "a", Text: "A fine first post about production debugging stories", Engagement: 10, PublishedAt: publishedAt},
		{ID: "2", AuthorHandle: "b", Text: "gm"},
		{ID: "3", AuthorHandle: "c", Text: "click here to claim now your free crypto rewards today", Engagement: 5},
		{ID: "4", AuthorHandle: "d", Text: "A fine first post about production debugging stories", Engagement: 2, PublishedAt: publishedAt},
		{ID: "5", AuthorHandle: "e", Text: "agree", IsReply: true},
	}

	processed, summary, err := pipeline.Process(items)
	if err != nil {
		t.Fatal(err)
	}

	discardedTotal := 0
	for _, count := range summary.DiscardedByReason {
		discardedTotal += count
	}
	if summary.TotalKept+discardedTotal != summary.TotalInput {
		t.Errorf("Summary invariant violated: kept %d + discarded %d != input %d",
			summary.TotalKept, discardedTotal, summary.TotalInput)
	}

	if len(processed) != len(items) {
		t.Errorf("Expected processing to preserve item count, got %d", len(processed))
	}
}

func TestPipeline_Run_Deterministic(t *testing.T) {
	pipeline, err := NewPipeline(pipelineConfig())
	if err != nil {
		t.Fatal(err)
	}

	publishedAt := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	items := []Item{
		{ID: "1", AuthorHandle: "a", Text: "First post about a database migration gone sideways", Engagement: 50, PublishedAt: publishedAt},
		{ID: "2", AuthorHandle: "b", Text: "Second post sharing a profiler trick nobody knows", Engagement: 30, PublishedAt: publishedAt},
		{ID: "3", AuthorHandle: "c", Text: "Third post with notes from the incident review", Engagement: 70, PublishedAt: publishedAt},
	}

	generatedAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	first, err := pipeline.Run("tech", "", items, generatedAt)
	if err != nil {
		t.Fatal(err)
	}
	second, err := pipeline.Run("tech", "", items, generatedAt)
	if err != nil {
		t.Fatal(err)
	}

	if first.Markdown != second.Markdown {
		t.Errorf("Expected identical runs to produce byte-identical reports")
	}
}

func TestPipeline_Run_EmptyBatch(t *testing.T) {
	pipeline, err := NewPipeline(pipelineConfig())
	if err != nil {
		t.Fatal(err)
	}

	report, err := pipeline.Run("tech", "", nil, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}

	if report.Summary.TotalInput != 0 || report.Summary.TotalKept != 0 {
		t.Errorf("Expected empty summary, got %+v", report.Summary)
	}
	if len(report.Sections) != 0 {
		t.Errorf("Expected no sections for empty batch, got %d", len(report.Sections))
	}
	if !strings.Contains(report.Markdown, "Filtered 0 of 0 items; kept 0.") {
		t.Errorf("Expected empty-run summary line, got:\n%s", report.Markdown)
	}
}

func TestPipeline_Run_AllDiscarded(t *testing.T) {
	pipeline, err := NewPipeline(pipelineConfig())
	if err != nil {
		t.Fatal(err)
	}

	items := []Item{
		{ID: "1", AuthorHandle: "a", Text: "gm"},
		{ID: "2", AuthorHandle: "b", Text: "wow"},
	}

	report, err := pipeline.Run("tech", "", items, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}

	if report.Summary.TotalKept != 0 {
		t.Errorf("Expected nothing kept, got %d", report.Summary.TotalKept)
	}
	if len(report.Sections) != 0 {
		t.Errorf("Expected no sections, got %d", len(report.Sections))
	}
}

func TestPipeline_Process_ValidationAborts(t *testing.T) {
	pipeline, err := NewPipeline(pipelineConfig())
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = pipeline.Process([]Item{
		{ID: "1", AuthorHandle: "", Text: "handle is missing on this one"},
	})
	if err == nil {
		t.Fatal("Expected error for malformed item")
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError, got %T", err)
	}
}

func TestNewPipeline_BadPatternConfig(t *testing.T) {
	feedConfig := pipelineConfig()
	feedConfig.Patterns = map[string][]string{
		"spam": {`(unbalanced`},
	}

	_, err := NewPipeline(feedConfig)
	if err == nil {
		t.Fatal("Expected error for invalid pattern config")
	}

	var configErr *ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("Expected ConfigError, got %T", err)
	}
}

package feed

import (
	"time"
)

// Discard reasons. An item matching several pattern categories is reported
// under the first one in precedence order.

type Reason string

const (
	ReasonMarketing       Reason = "marketing"
	ReasonSelfImprovement Reason = "self_improvement"
	ReasonSpam            Reason = "spam"
	ReasonLowQuality      Reason = "low_quality"
	ReasonTooShort        Reason = "too_short"
	ReasonBareReply       Reason = "bare_reply"
	ReasonDuplicate       Reason = "duplicate"
	ReasonNone            Reason = ""
)

// PatternReasons is the fixed evaluation order for pattern categories.
var PatternReasons = []Reason{ReasonMarketing, ReasonSelfImprovement, ReasonSpam, ReasonLowQuality}

// AllReasons is the fixed rendering order for summary breakdowns.
var AllReasons = []Reason{ReasonMarketing, ReasonSelfImprovement, ReasonSpam, ReasonLowQuality, ReasonTooShort, ReasonBareReply, ReasonDuplicate}

type SectionName string

const (
	SectionNews       SectionName = "news"
	SectionThreads    SectionName = "threads"
	SectionResources  SectionName = "resources"
	SectionDiscussion SectionName = "discussion"
)

// SectionOrder is the canonical section order in rendered reports.
var SectionOrder = []SectionName{SectionNews, SectionThreads, SectionResources, SectionDiscussion}

// Item is one ingested social post. The fetch layer populates the first
// block; pipeline stages fill in the rest on their own copies.
type Item struct {
	ID           string
	AuthorHandle string
	AuthorName   string
	Text         string
	PublishedAt  time.Time
	Engagement   int
	IsReply      bool
	Link         string

	IsDiscarded   bool
	DiscardReason Reason
	IsDuplicate   bool
	DuplicateOf   string
	Score         int
	Section       SectionName

	// Populated by content extraction for resource links (expand_links).
	LinkTitle   string
	LinkExcerpt string
}

// Verdict is the scoring outcome for a single item.
type Verdict struct {
	Kept   bool
	Reason Reason
	Score  int
}

type Section struct {
	Name  SectionName
	Items []Item
}

// FilterSummary closes over a run: TotalKept plus the sum of
// DiscardedByReason (duplicates included) equals TotalInput.
type FilterSummary struct {
	TotalInput        int
	TotalKept         int
	Duplicates        int
	DiscardedByReason map[Reason]int
}

// Report is the assembled document for one source run.
type Report struct {
	SourceName  string
	Title       string
	GeneratedAt time.Time
	Sections    []Section
	Summary     FilterSummary
	Markdown    string
}

// Configuration types, one YAML file per source.

type Config struct {
	Name       string              // Derived from filename (without .yml extension)
	Kind       string              `yaml:"kind"`  // timeline, bookmarks, user, search, rss
	Query      string              `yaml:"query"` // handle for user, query for search, URL for rss
	Title      string              `yaml:"title"`
	Settings   ConfigSettings      `yaml:"settings"`
	Thresholds ConfigThresholds    `yaml:"thresholds"`
	Patterns   map[string][]string `yaml:"patterns"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	MaxItems        int  `yaml:"max_items"`
	Timeout         int  `yaml:"timeout"` // seconds
	ExpandLinks     bool `yaml:"expand_links"`
	Summarize       bool `yaml:"summarize"`
}

type ConfigThresholds struct {
	MinWords       int     `yaml:"min_words"`       // structural too_short cutoff
	ReplyMinWords  int     `yaml:"reply_min_words"` // structural bare_reply cutoff
	Similarity     float64 `yaml:"similarity"`      // near-duplicate token overlap
	LinkSimilarity float64 `yaml:"link_similarity"` // overlap when links match
}

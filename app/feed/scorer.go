package feed

import (
	"math"
	"regexp"
	"strings"
)

const (
	defaultMinWords      = 3
	defaultReplyMinWords = 5
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// Scorer decides which items survive and assigns kept items a quality score.
// Scoring is a pure function of (item, patterns, thresholds): no state, no
// ordering effects between items.
type Scorer struct {
	patterns      *PatternStore
	minWords      int
	replyMinWords int
}

func NewScorer(patterns *PatternStore, thresholds ConfigThresholds) *Scorer {
	minWords := thresholds.MinWords
	if minWords <= 0 {
		minWords = defaultMinWords
	}
	replyMinWords := thresholds.ReplyMinWords
	if replyMinWords <= 0 {
		replyMinWords = defaultReplyMinWords
	}

	return &Scorer{
		patterns:      patterns,
		minWords:      minWords,
		replyMinWords: replyMinWords,
	}
}

// Run validates the whole batch up front, then marks each item with its
// verdict. A single malformed item aborts the batch: skipping it silently
// would corrupt the summary counts.
func (s *Scorer) Run(items []Item) ([]Item, error) {
	for i := range items {
		if err := validateItem(items[i]); err != nil {
			return nil, err
		}
	}

	scored := make([]Item, 0, len(items))
	for _, item := range items {
		verdict := s.Score(item)
		item.IsDiscarded = !verdict.Kept
		item.DiscardReason = verdict.Reason
		item.Score = verdict.Score
		scored = append(scored, item)
	}

	return scored, nil
}

// Score produces the verdict for a single well-formed item. Structural
// checks run first, independent of patterns; pattern categories follow in
// fixed precedence order.
func (s *Scorer) Score(item Item) Verdict {
	words := wordCount(item.Text)

	if item.IsReply && words < s.replyMinWords && item.Link == "" && !hasQuotedExcerpt(item.Text) {
		return Verdict{Kept: false, Reason: ReasonBareReply}
	}

	if words < s.minWords && item.Link == "" {
		return Verdict{Kept: false, Reason: ReasonTooShort}
	}

	if reason, matched := s.patterns.Match(item.Text); matched {
		return Verdict{Kept: false, Reason: reason}
	}

	return Verdict{Kept: true, Reason: ReasonNone, Score: score(item.Engagement, words)}
}

// score is monotonic in both engagement and text length. Recency only breaks
// ties downstream, at ordering time.
func score(engagement, words int) int {
	return engagement + 5*int(math.Log2(float64(1+words)))
}

func validateItem(item Item) error {
	if item.ID == "" {
		return &ValidationError{Field: "id"}
	}
	if item.AuthorHandle == "" {
		return &ValidationError{ItemID: item.ID, Field: "author_handle"}
	}
	if item.Engagement < 0 {
		return &ValidationError{ItemID: item.ID, Field: "engagement"}
	}
	return nil
}

// wordCount counts whitespace-separated words after stripping URLs, so a
// bare link does not inflate the length of an otherwise empty post.
func wordCount(text string) int {
	stripped := urlPattern.ReplaceAllString(text, " ")
	return len(strings.Fields(stripped))
}

// hasQuotedExcerpt reports whether a reply carries novel content in the form
// of a quoted passage.
func hasQuotedExcerpt(text string) bool {
	return strings.ContainsAny(text, `"“”`) || strings.HasPrefix(strings.TrimSpace(text), ">")
}

package feed

import (
	"time"
)

// Pipeline wires the filtering stages for one source configuration. Each
// stage consumes the full output of the previous one; batches are small
// enough (tens to low hundreds of items) that no streaming is needed.
type Pipeline struct {
	scorer     *Scorer
	dedup      *Deduplicator
	classifier *Classifier
	assembler  *Assembler
}

// NewPipeline builds the pipeline from a source configuration. Pattern
// overrides are compiled once here; a bad rule aborts before any scoring.
func NewPipeline(feedConfig *Config) (*Pipeline, error) {
	patterns, err := NewPatternStore(feedConfig.Patterns)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		scorer:     NewScorer(patterns, feedConfig.Thresholds),
		dedup:      NewDeduplicator(feedConfig.Thresholds),
		classifier: NewClassifier(),
		assembler:  NewAssembler(),
	}, nil
}

// Process runs score → dedupe → classify and returns the marked items with
// the run summary. Callers that enrich items (link expansion) do so on the
// result before assembling.
func (p *Pipeline) Process(items []Item) ([]Item, FilterSummary, error) {
	scored, err := p.scorer.Run(items)
	if err != nil {
		return nil, FilterSummary{}, err
	}

	deduped := p.dedup.Run(scored)
	classified := p.classifier.Run(deduped)

	return classified, Summarize(classified), nil
}

// Assemble renders the final document from processed items.
func (p *Pipeline) Assemble(sourceName, title string, items []Item, summary FilterSummary, generatedAt time.Time) (*Report, error) {
	return p.assembler.Run(sourceName, title, items, summary, generatedAt)
}

// Run is the full deterministic path: same items and configuration always
// produce a byte-identical document.
func (p *Pipeline) Run(sourceName, title string, items []Item, generatedAt time.Time) (*Report, error) {
	processed, summary, err := p.Process(items)
	if err != nil {
		return nil, err
	}
	return p.Assemble(sourceName, title, processed, summary, generatedAt)
}

// Summarize tallies a processed batch. Duplicates are tracked both as their
// own counter and under the "duplicate" key of the breakdown, so
// TotalKept + sum(DiscardedByReason) always equals TotalInput.
func Summarize(items []Item) FilterSummary {
	summary := FilterSummary{
		TotalInput:        len(items),
		DiscardedByReason: make(map[Reason]int),
	}

	for _, item := range items {
		switch {
		case item.IsDiscarded:
			summary.DiscardedByReason[item.DiscardReason]++
		case item.IsDuplicate:
			summary.Duplicates++
			summary.DiscardedByReason[ReasonDuplicate]++
		default:
			summary.TotalKept++
		}
	}

	return summary
}

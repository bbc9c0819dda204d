package feed

import (
	"regexp"
	"sort"
	"strings"
)

// Classifier assigns every surviving item to exactly one report section.
// Classification is heuristic and best-effort: a misfiled item is a quality
// concern, not a correctness failure, and there is no ground truth beyond
// the fixture scenarios in the tests.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Thread-continuation markers: numbered sequences ("2/", "3/7"), the thread
// emoji, or an explicit "thread" mention.
var threadPattern = regexp.MustCompile(`(?i)^\s*\d+\s*/(\s|\d|$)|🧵|\bthread\b|\(\d+/\d+\)`)

// Long-form content hosts whose links land in the resources section.
var resourceDomains = []string{
	"github.com",
	"gitlab.com",
	"arxiv.org",
	"medium.com",
	"substack.com",
	"youtube.com",
	"youtu.be",
	"npmjs.com",
	"pypi.org",
	"dev.to",
	"huggingface.co",
}

// Run computes the batch engagement threshold over surviving items and
// classifies each of them. Runs after dedupe, so duplicates do not skew the
// quartile.
func (c *Classifier) Run(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)

	threshold := engagementThreshold(out)
	for i := range out {
		if out[i].IsDiscarded || out[i].IsDuplicate {
			continue
		}
		out[i].Section = c.Classify(out[i], threshold)
	}

	return out
}

// Classify is a pure function: the same item and threshold always yield the
// same section. First match wins.
func (c *Classifier) Classify(item Item, threshold int) SectionName {
	if threadPattern.MatchString(item.Text) {
		return SectionThreads
	}

	if item.Link != "" && isResourceLink(item.Link) {
		return SectionResources
	}

	if threshold > 0 && item.Engagement >= threshold {
		return SectionNews
	}

	return SectionDiscussion
}

func isResourceLink(link string) bool {
	lowered := strings.ToLower(link)
	for _, domain := range resourceDomains {
		if strings.Contains(lowered, domain) {
			return true
		}
	}
	return false
}

// engagementThreshold returns the top-quartile engagement boundary of the
// surviving items, or 0 when the batch is too small for a quartile to mean
// anything (fewer than 4 survivors disables the news rule).
func engagementThreshold(items []Item) int {
	engagements := make([]int, 0, len(items))
	for _, item := range items {
		if item.IsDiscarded || item.IsDuplicate {
			continue
		}
		engagements = append(engagements, item.Engagement)
	}

	if len(engagements) < 4 {
		return 0
	}

	sort.Ints(engagements)
	return engagements[len(engagements)*3/4]
}

package feed

import (
	"hash/fnv"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	defaultSimilarity     = 0.90
	defaultLinkSimilarity = 0.70
)

// Deduplicator drops near-duplicate items among the kept set. It marks
// losers rather than reordering, so the relative order of retained items is
// the input order (stable filter, not a re-sort).
type Deduplicator struct {
	similarity     float64
	linkSimilarity float64
}

func NewDeduplicator(thresholds ConfigThresholds) *Deduplicator {
	similarity := thresholds.Similarity
	if similarity <= 0 || similarity > 1 {
		similarity = defaultSimilarity
	}
	linkSimilarity := thresholds.LinkSimilarity
	if linkSimilarity <= 0 || linkSimilarity > 1 {
		linkSimilarity = defaultLinkSimilarity
	}

	return &Deduplicator{
		similarity:     similarity,
		linkSimilarity: linkSimilarity,
	}
}

type dedupCandidate struct {
	index       int
	tokens      map[string]struct{}
	fingerprint uint64
	link        string
}

// Run marks near-duplicates among items that survived scoring. When two
// items collide, the one with the higher score is retained; on an exact
// score tie the earlier item wins. Pairwise comparison is fine at batch
// scale (tens to low hundreds); the token fingerprint short-circuits exact
// matches before any overlap scoring.
func (d *Deduplicator) Run(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)

	var retained []dedupCandidate
	for i := range out {
		if out[i].IsDiscarded {
			continue
		}

		candidate := newDedupCandidate(i, out[i])

		matched := -1
		for r, kept := range retained {
			if d.nearDuplicates(candidate, kept) {
				matched = r
				break
			}
		}

		if matched == -1 {
			retained = append(retained, candidate)
			continue
		}

		winner := retained[matched].index
		if out[i].Score > out[winner].Score {
			// Later item wins; the previously retained one becomes the duplicate.
			out[winner].IsDuplicate = true
			out[winner].DuplicateOf = out[i].ID
			retained[matched] = candidate
		} else {
			out[i].IsDuplicate = true
			out[i].DuplicateOf = out[winner].ID
		}
	}

	return out
}

func newDedupCandidate(index int, item Item) dedupCandidate {
	tokens := dedupTokens(item.Text)
	return dedupCandidate{
		index:       index,
		tokens:      tokens,
		fingerprint: tokenFingerprint(tokens),
		link:        item.Link,
	}
}

func (d *Deduplicator) nearDuplicates(a, b dedupCandidate) bool {
	if a.fingerprint == b.fingerprint && len(a.tokens) == len(b.tokens) {
		return true
	}

	overlap := tokenOverlap(a.tokens, b.tokens)
	if overlap >= d.similarity {
		return true
	}

	// Retweet-style reposts share the link but truncate or prefix the text,
	// hence the looser threshold when links match.
	if a.link != "" && a.link == b.link && overlap >= d.linkSimilarity {
		return true
	}

	return false
}

// dedupTokens normalizes text for comparison: NFKC folds the styled unicode
// fonts common on X, then lowercase, URLs stripped, whitespace collapsed.
func dedupTokens(text string) map[string]struct{} {
	normalized := norm.NFKC.String(text)
	normalized = strings.ToLower(normalized)
	normalized = urlPattern.ReplaceAllString(normalized, " ")

	tokens := make(map[string]struct{})
	for _, field := range strings.Fields(normalized) {
		tokens[field] = struct{}{}
	}
	return tokens
}

func tokenFingerprint(tokens map[string]struct{}) uint64 {
	sorted := make([]string, 0, len(tokens))
	for token := range tokens {
		sorted = append(sorted, token)
	}
	sort.Strings(sorted)

	h := fnv.New64a()
	for _, token := range sorted {
		h.Write([]byte(token))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

func tokenOverlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	larger := len(a)
	if len(b) > larger {
		larger = len(b)
	}

	shared := 0
	for token := range a {
		if _, ok := b[token]; ok {
			shared++
		}
	}

	return float64(shared) / float64(larger)
}

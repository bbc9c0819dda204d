package feed

import (
	"testing"
)

func TestDeduplicator_Run_ExactDuplicate(t *testing.T) {
	dedup := NewDeduplicator(ConfigThresholds{})

	items := []Item{
		{ID: "1", AuthorHandle: "a", Text: "The new runtime release cuts GC pauses in half", Score: 50},
		{ID: "2", AuthorHandle: "b", Text: "The new runtime release cuts GC pauses in half", Score: 10},
	}

	result := dedup.Run(items)

	if result[0].IsDuplicate {
		t.Errorf("Higher-scored item should be retained")
	}
	if !result[1].IsDuplicate {
		t.Errorf("Lower-scored item should be marked duplicate")
	}
	if result[1].DuplicateOf != "1" {
		t.Errorf("Expected DuplicateOf '1', got %q", result[1].DuplicateOf)
	}
}

func TestDeduplicator_Run_LaterHigherScoreWins(t *testing.T) {
	dedup := NewDeduplicator(ConfigThresholds{})

	items := []Item{
		{ID: "1", AuthorHandle: "a", Text: "Shipping the beta today after six months of work", Score: 5},
		{ID: "2", AuthorHandle: "b", Text: "Shipping the beta today after six months of work", Score: 80},
	}

	result := dedup.Run(items)

	if !result[0].IsDuplicate {
		t.Errorf("Earlier lower-scored item should become the duplicate")
	}
	if result[0].DuplicateOf != "2" {
		t.Errorf("Expected DuplicateOf '2', got %q", result[0].DuplicateOf)
	}
	if result[1].IsDuplicate {
		t.Errorf("Later higher-scored item should be retained")
	}
}

func TestDeduplicator_Run_ScoreTieEarlierWins(t *testing.T) {
	dedup := NewDeduplicator(ConfigThresholds{})

	items := []Item{
		{ID: "1", AuthorHandle: "a", Text: "Same text same score either way", Score: 30},
		{ID: "2", AuthorHandle: "b", Text: "Same text same score either way", Score: 30},
	}

	result := dedup.Run(items)

	if result[0].IsDuplicate {
		t.Errorf("On a score tie the earlier item should be retained")
	}
	if !result[1].IsDuplicate || result[1].DuplicateOf != "1" {
		t.Errorf("Expected later item marked duplicate of '1', got (%v, %q)", result[1].IsDuplicate, result[1].DuplicateOf)
	}
}

func TestDeduplicator_Run_UnicodeFontVariants(t *testing.T) {
	dedup := NewDeduplicator(ConfigThresholds{})

	// Mathematical bold letters NFKC-fold to plain ASCII.
	items := []Item{
		{ID: "1", AuthorHandle: "a", Text: "𝗧𝗵𝗶𝘀 𝗶𝘀 𝗵𝘂𝗴𝗲 𝗻𝗲𝘄𝘀 𝗳𝗼𝗿 𝗲𝘃𝗲𝗿𝘆𝗼𝗻𝗲", Score: 20},
		{ID: "2", AuthorHandle: "b", Text: "This is huge news for everyone", Score: 10},
	}

	result := dedup.Run(items)

	if !result[1].IsDuplicate {
		t.Errorf("Expected styled-font variant to be detected as duplicate")
	}
}

func TestDeduplicator_Run_SharedLinkLooserThreshold(t *testing.T) {
	dedup := NewDeduplicator(ConfigThresholds{})

	// Different framing, same link, majority token overlap: under the 0.90
	// text threshold but over the 0.70 link threshold.
	items := []Item{
		{ID: "1", AuthorHandle: "a", Text: "great deep dive into io_uring internals right here folks", Link: "https://example.com/io-uring", Score: 25},
		{ID: "2", AuthorHandle: "b", Text: "really great deep dive into io_uring internals right here", Link: "https://example.com/io-uring", Score: 15},
	}

	result := dedup.Run(items)

	if !result[1].IsDuplicate {
		t.Errorf("Expected same-link near-duplicate to be detected")
	}
}

func TestDeduplicator_Run_DistinctItemsSurvive(t *testing.T) {
	dedup := NewDeduplicator(ConfigThresholds{})

	items := []Item{
		{ID: "1", AuthorHandle: "a", Text: "Benchmarking the new allocator against jemalloc on real workloads", Score: 10},
		{ID: "2", AuthorHandle: "b", Text: "A field guide to debugging distributed consensus failures", Score: 10},
	}

	result := dedup.Run(items)

	for i, item := range result {
		if item.IsDuplicate {
			t.Errorf("Item %d should not be marked duplicate", i)
		}
	}
}

func TestDeduplicator_Run_DiscardedItemsIgnored(t *testing.T) {
	dedup := NewDeduplicator(ConfigThresholds{})

	// The discarded copy must not claim the retained slot.
	items := []Item{
		{ID: "1", AuthorHandle: "a", Text: "The same announcement text posted twice today", IsDiscarded: true, DiscardReason: ReasonMarketing},
		{ID: "2", AuthorHandle: "b", Text: "The same announcement text posted twice today", Score: 10},
	}

	result := dedup.Run(items)

	if result[1].IsDuplicate {
		t.Errorf("Kept item should not be deduplicated against a discarded one")
	}
}

func TestDeduplicator_Run_CustomSimilarity(t *testing.T) {
	strict := NewDeduplicator(ConfigThresholds{Similarity: 0.99})
	loose := NewDeduplicator(ConfigThresholds{Similarity: 0.50})

	items := []Item{
		{ID: "1", AuthorHandle: "a", Text: "new release of the toolchain is out today with fixes", Score: 10},
		{ID: "2", AuthorHandle: "b", Text: "new release of the toolchain is out today with improvements", Score: 5},
	}

	strictResult := strict.Run(items)
	if strictResult[1].IsDuplicate {
		t.Errorf("Expected near-but-not-exact pair to survive at 0.99 similarity")
	}

	looseResult := loose.Run(items)
	if !looseResult[1].IsDuplicate {
		t.Errorf("Expected pair to collide at 0.50 similarity")
	}
}

func TestDeduplicator_Run_PreservesInputOrder(t *testing.T) {
	dedup := NewDeduplicator(ConfigThresholds{})

	items := []Item{
		{ID: "1", AuthorHandle: "a", Text: "First distinct post about observability tooling choices", Score: 1},
		{ID: "2", AuthorHandle: "b", Text: "Second distinct post about schema migration strategies", Score: 2},
		{ID: "3", AuthorHandle: "c", Text: "Third distinct post about incident response playbooks", Score: 3},
	}

	result := dedup.Run(items)

	for i, item := range result {
		if item.ID != items[i].ID {
			t.Errorf("Expected input order preserved at %d, got %q", i, item.ID)
		}
	}
}

func TestTokenOverlap(t *testing.T) {
	a := dedupTokens("alpha beta gamma delta")
	b := dedupTokens("alpha beta gamma epsilon")

	overlap := tokenOverlap(a, b)
	if overlap != 0.75 {
		t.Errorf("Expected overlap 0.75, got %f", overlap)
	}

	if tokenOverlap(a, map[string]struct{}{}) != 0 {
		t.Errorf("Expected zero overlap with empty set")
	}
}

func TestDedupTokens_StripsURLsAndCase(t *testing.T) {
	tokens := dedupTokens("Check THIS out https://example.com/page")

	if _, ok := tokens["check"]; !ok {
		t.Errorf("Expected lowercased token 'check'")
	}
	for token := range tokens {
		if token == "https://example.com/page" {
			t.Errorf("Expected URLs to be stripped from tokens")
		}
	}
}

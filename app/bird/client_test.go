package bird

import (
	"testing"
	"time"
)

func TestDecodePayload_BareArray(t *testing.T) {
	data := []byte(`[
		{"id": "1", "text": "first", "author": {"username": "alice", "name": "Alice"}},
		{"id": "2", "text": "second", "author": {"username": "bob", "name": "Bob"}}
	]`)

	payloads, err := decodePayload(data)
	if err != nil {
		t.Fatal(err)
	}

	if len(payloads) != 2 {
		t.Fatalf("Expected 2 tweets, got %d", len(payloads))
	}
	if payloads[0].ID != "1" || payloads[0].Author.Username != "alice" {
		t.Errorf("Expected first tweet fields mapped, got %+v", payloads[0])
	}
}

func TestDecodePayload_TweetsEnvelope(t *testing.T) {
	data := []byte(`{"tweets": [{"id": "1", "text": "hi"}], "nextCursor": "abc"}`)

	payloads, err := decodePayload(data)
	if err != nil {
		t.Fatal(err)
	}

	if len(payloads) != 1 || payloads[0].ID != "1" {
		t.Errorf("Expected envelope tweets field to be used, got %+v", payloads)
	}
}

func TestDecodePayload_DataEnvelope(t *testing.T) {
	data := []byte(`{"data": [{"id": "7", "text": "hi"}]}`)

	payloads, err := decodePayload(data)
	if err != nil {
		t.Fatal(err)
	}

	if len(payloads) != 1 || payloads[0].ID != "7" {
		t.Errorf("Expected envelope data field to be used, got %+v", payloads)
	}
}

func TestDecodePayload_EmptyOutput(t *testing.T) {
	payloads, err := decodePayload([]byte("  \n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(payloads) != 0 {
		t.Errorf("Expected no tweets for empty output, got %d", len(payloads))
	}
}

func TestDecodePayload_InvalidJSON(t *testing.T) {
	_, err := decodePayload([]byte(`{"tweets": [truncated`))
	if err == nil {
		t.Fatal("Expected error for invalid JSON")
	}
}

func TestConvertTweet_FullMapping(t *testing.T) {
	payload := tweetPayload{
		ID:           "123",
		Text:         "Interesting result from the benchmark run",
		CreatedAt:    "2025-06-01T08:30:00Z",
		ReplyCount:   3,
		RetweetCount: 7,
		LikeCount:    40,
		Author:       tweetAuthor{Username: "alice", Name: "Alice"},
		Entities: tweetEntities{
			URLs: []tweetURL{{ExpandedURL: "https://example.com/benchmark"}},
		},
	}

	item := convertTweet(payload)

	if item.ID != "123" {
		t.Errorf("Expected ID '123', got %q", item.ID)
	}
	if item.AuthorHandle != "alice" || item.AuthorName != "Alice" {
		t.Errorf("Expected author fields mapped, got %q / %q", item.AuthorHandle, item.AuthorName)
	}
	if item.Engagement != 50 {
		t.Errorf("Expected engagement 50 (replies+retweets+likes), got %d", item.Engagement)
	}
	if item.Link != "https://example.com/benchmark" {
		t.Errorf("Expected first expanded URL as link, got %q", item.Link)
	}
	if item.IsReply {
		t.Errorf("Expected non-reply")
	}

	expected := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	if !item.PublishedAt.Equal(expected) {
		t.Errorf("Expected published at %v, got %v", expected, item.PublishedAt)
	}
}

func TestConvertTweet_ReplyDetection(t *testing.T) {
	byField := convertTweet(tweetPayload{ID: "1", Text: "sure thing", InReplyToStatusID: "99"})
	if !byField.IsReply {
		t.Errorf("Expected inReplyToStatusId to mark item as reply")
	}

	byMention := convertTweet(tweetPayload{ID: "2", Text: "@alice sure thing"})
	if !byMention.IsReply {
		t.Errorf("Expected leading mention to mark item as reply")
	}

	plain := convertTweet(tweetPayload{ID: "3", Text: "sure thing"})
	if plain.IsReply {
		t.Errorf("Expected plain post not to be a reply")
	}
}

func TestParseCreatedAt_Formats(t *testing.T) {
	rfc := parseCreatedAt("2025-06-01T08:30:00Z")
	if rfc.IsZero() {
		t.Errorf("Expected RFC3339 timestamp to parse")
	}

	ruby := parseCreatedAt("Sun Jun 01 08:30:00 +0000 2025")
	if ruby.IsZero() {
		t.Errorf("Expected legacy timestamp format to parse")
	}

	if !parseCreatedAt("not a time").IsZero() {
		t.Errorf("Expected unparseable timestamp to map to zero time")
	}

	if !parseCreatedAt("").IsZero() {
		t.Errorf("Expected empty timestamp to map to zero time")
	}
}

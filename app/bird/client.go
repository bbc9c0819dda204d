package bird

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/merllinsbeard/x-without-junk/app/feed"
)

// Client wraps the bird CLI. Every fetch shells out to the binary with
// --json and decodes stdout; authentication lives entirely in the CLI's own
// session state.
type Client struct {
	binPath    string
	fetchCount int
}

func NewClient(binPath string, fetchCount int) *Client {
	if binPath == "" {
		binPath = "bird"
	}
	if fetchCount <= 0 {
		fetchCount = 50
	}

	return &Client{
		binPath:    binPath,
		fetchCount: fetchCount,
	}
}

// Fetch retrieves items for a source config. The kind selects the CLI
// subcommand; rss sources are not handled here.
func (c *Client) Fetch(ctx context.Context, feedConfig *feed.Config) ([]feed.Item, error) {
	count := feedConfig.Settings.MaxItems
	if count <= 0 {
		count = c.fetchCount
	}

	switch feedConfig.Kind {
	case "timeline":
		return c.FetchTimeline(ctx, count)
	case "bookmarks":
		return c.FetchBookmarks(ctx, count)
	case "user":
		return c.FetchUserItems(ctx, feedConfig.Query, count)
	case "search":
		return c.Search(ctx, feedConfig.Query, count)
	default:
		return nil, fmt.Errorf("unsupported source kind for bird client: %q", feedConfig.Kind)
	}
}

// FetchTimeline fetches the home ("For You") timeline.
func (c *Client) FetchTimeline(ctx context.Context, count int) ([]feed.Item, error) {
	return c.fetchItems(ctx, "home", "--count", strconv.Itoa(count))
}

// FetchBookmarks fetches bookmarked posts.
func (c *Client) FetchBookmarks(ctx context.Context, count int) ([]feed.Item, error) {
	return c.fetchItems(ctx, "bookmarks", "--count", strconv.Itoa(count))
}

// FetchUserItems fetches a single user's timeline. The handle may carry a
// leading @.
func (c *Client) FetchUserItems(ctx context.Context, handle string, count int) ([]feed.Item, error) {
	cleanHandle := strings.TrimPrefix(handle, "@")
	if cleanHandle == "" {
		return nil, fmt.Errorf("user handle is empty")
	}
	return c.fetchItems(ctx, "user-tweets", cleanHandle, "--count", strconv.Itoa(count))
}

// Search fetches posts matching a query.
func (c *Client) Search(ctx context.Context, query string, count int) ([]feed.Item, error) {
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	return c.fetchItems(ctx, "search", query, "--count", strconv.Itoa(count))
}

// VerifyCredentials checks that the CLI has an authenticated session.
func (c *Client) VerifyCredentials(ctx context.Context) error {
	output, err := c.run(ctx, "whoami")
	if err != nil {
		return fmt.Errorf("bird CLI not available or not authenticated: %w", err)
	}
	if !strings.Contains(string(output), "@") {
		return fmt.Errorf("bird CLI session is not authenticated")
	}
	return nil
}

func (c *Client) fetchItems(ctx context.Context, command string, args ...string) ([]feed.Item, error) {
	started := time.Now()

	output, err := c.run(ctx, command, args...)
	if err != nil {
		return nil, err
	}

	payloads, err := decodePayload(output)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bird %s output: %w", command, err)
	}

	items := make([]feed.Item, 0, len(payloads))
	for _, payload := range payloads {
		items = append(items, convertTweet(payload))
	}

	slog.Debug("Fetched items from bird CLI",
		"command", command,
		"count", len(items),
		"duration", time.Since(started).Round(time.Millisecond))

	return items, nil
}

func (c *Client) run(ctx context.Context, command string, args ...string) ([]byte, error) {
	cmdArgs := append([]string{command, "--json"}, args...)
	cmd := exec.CommandContext(ctx, c.binPath, cmdArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("bird %s failed: %w: %s", command, err, detail)
		}
		return nil, fmt.Errorf("bird %s failed: %w", command, err)
	}

	return stdout.Bytes(), nil
}

// decodePayload accepts both output shapes the CLI produces: a bare JSON
// array of tweets, or an envelope object with a tweets/data field.
func decodePayload(data []byte) ([]tweetPayload, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var payloads []tweetPayload
		if err := json.Unmarshal(trimmed, &payloads); err != nil {
			return nil, err
		}
		return payloads, nil
	}

	var envelope tweetEnvelope
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	if envelope.Tweets != nil {
		return envelope.Tweets, nil
	}
	return envelope.Data, nil
}

// convertTweet maps a raw CLI tweet onto a pipeline item. Malformed fields
// are mapped as-is; the scoring stage validates the batch and rejects items
// with missing identifiers.
func convertTweet(payload tweetPayload) feed.Item {
	item := feed.Item{
		ID:           payload.ID,
		AuthorHandle: payload.Author.Username,
		AuthorName:   payload.Author.Name,
		Text:         payload.Text,
		Engagement:   payload.ReplyCount + payload.RetweetCount + payload.LikeCount,
		IsReply:      payload.InReplyToStatusID != "" || strings.HasPrefix(payload.Text, "@"),
		PublishedAt:  parseCreatedAt(payload.CreatedAt),
	}

	if len(payload.Entities.URLs) > 0 {
		item.Link = payload.Entities.URLs[0].ExpandedURL
	}

	return item
}

// parseCreatedAt handles both timestamp formats seen in CLI output. A
// timestamp that parses as neither is left as the zero time; ordering falls
// back to score and engagement downstream.
func parseCreatedAt(value string) time.Time {
	if value == "" {
		return time.Time{}
	}

	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed
	}
	if parsed, err := time.Parse(time.RubyDate, value); err == nil {
		return parsed
	}

	slog.Debug("Unparseable timestamp in bird output", "value", value)
	return time.Time{}
}

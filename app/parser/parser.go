package parser

import (
	"bytes"
	"cmp"
	"fmt"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/merllinsbeard/x-without-junk/app/feed"
)

// Parser turns RSS/Atom documents into pipeline items so that rss sources
// flow through the same filtering stages as social posts. RSS carries no
// engagement signal, so item scores reduce to the length component.
type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses feed data and returns metadata plus normalized items.
func (p *Parser) Run(data []byte) (*Metadata, []feed.Item, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:       parsed.Title,
		Link:        parsed.Link,
		Description: parsed.Description,
	}

	items := make([]feed.Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		items = append(items, p.normalizeItem(entry, metadata))
	}

	return metadata, items, nil
}

func (p *Parser) normalizeItem(entry *gofeed.Item, metadata *Metadata) feed.Item {
	item := feed.Item{
		ID:           cmp.Or(entry.GUID, entry.Link),
		AuthorHandle: handleFor(entry, metadata),
		AuthorName:   authorName(entry, metadata),
		Text:         composeText(entry),
		Link:         entry.Link,
	}

	if entry.PublishedParsed != nil {
		item.PublishedAt = *entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		item.PublishedAt = *entry.UpdatedParsed
	}

	return item
}

// composeText joins title and summary into the text the filters inspect.
// Markup is stripped so pattern rules see the same plain text a reader would.
func composeText(entry *gofeed.Item) string {
	title := strings.TrimSpace(entry.Title)
	summary := stripTags(cmp.Or(entry.Description, entry.Content))

	switch {
	case title == "":
		return summary
	case summary == "":
		return title
	default:
		return title + ". " + summary
	}
}

func authorName(entry *gofeed.Item, metadata *Metadata) string {
	if len(entry.Authors) > 0 && entry.Authors[0] != nil && entry.Authors[0].Name != "" {
		return entry.Authors[0].Name
	}
	if entry.Author != nil && entry.Author.Name != "" {
		return entry.Author.Name
	}
	return metadata.Title
}

// handleFor derives a stable handle-shaped identifier for report bylines.
func handleFor(entry *gofeed.Item, metadata *Metadata) string {
	name := authorName(entry, metadata)
	if name == "" {
		name = "feed"
	}

	handle := strings.ToLower(name)
	handle = handleCleanPattern.ReplaceAllString(handle, "_")
	handle = strings.Trim(handle, "_")
	if handle == "" {
		return "feed"
	}
	return handle
}

var (
	handleCleanPattern = regexp.MustCompile(`[^a-z0-9]+`)
	tagPattern         = regexp.MustCompile(`<[^>]*>`)
)

func stripTags(markup string) string {
	text := tagPattern.ReplaceAllString(markup, " ")
	return strings.Join(strings.Fields(text), " ")
}

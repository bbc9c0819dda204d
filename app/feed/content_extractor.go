package feed

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-shiori/go-readability"
)

// ContentExtractor pulls the readable core out of a fetched link target.
// Used to enrich resource items with the linked page's title and a short
// plain-text excerpt when expand_links is enabled.
type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

func (e *ContentExtractor) Run(data []byte) (string, string, error) {
	if len(data) == 0 {
		return "", "", fmt.Errorf("HTML data is empty")
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract content: %w", err)
	}

	if article.TextContent == "" {
		return "", "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Content extracted successfully",
		"title", article.Title,
		"content_length", len(article.TextContent))

	return article.Title, collapseWhitespace(article.TextContent), nil
}

// collapseWhitespace flattens the readability text output into a single line
// suitable for a report excerpt.
func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

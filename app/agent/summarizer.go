package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/merllinsbeard/x-without-junk/app/feed"
)

const (
	defaultModel    = "gpt-4o-mini"
	maxPromptItems  = 30
	systemPrompt    = "You summarize curated social media digests. Write one tight paragraph covering the main themes, then up to three bullet points for standout items. Plain text only, no preamble."
	promptItemLimit = 500
)

// Summarizer produces a short LLM-written overview of the kept items,
// prepended to reports for sources with summarize enabled. The rest of the
// pipeline stays fully deterministic; only this stage calls out.
type Summarizer struct {
	client *openai.Client
	model  string
}

func NewSummarizer(apiKey, baseURL, model string) *Summarizer {
	if model == "" {
		model = defaultModel
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &Summarizer{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

// Run summarizes the kept items of a processed batch. An empty batch yields
// an empty summary without a request.
func (s *Summarizer) Run(ctx context.Context, sourceName string, items []feed.Item) (string, error) {
	prompt := buildPrompt(sourceName, items)
	if prompt == "" {
		return "", nil
	}

	started := time.Now()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("summary request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("summary response contained no choices")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)

	slog.Debug("Summary generated",
		"source", sourceName,
		"model", s.model,
		"length", len(summary),
		"duration", time.Since(started).Round(time.Millisecond))

	return summary, nil
}

// buildPrompt renders kept items into the user message. Returns "" when the
// batch has nothing worth summarizing.
func buildPrompt(sourceName string, items []feed.Item) string {
	var lines []string
	for _, item := range items {
		if item.IsDiscarded || item.IsDuplicate {
			continue
		}

		text := item.Text
		if runes := []rune(text); len(runes) > promptItemLimit {
			text = string(runes[:promptItemLimit])
		}

		lines = append(lines, fmt.Sprintf("- @%s (engagement %d): %s", item.AuthorHandle, item.Engagement, text))
		if len(lines) == maxPromptItems {
			break
		}
	}

	if len(lines) == 0 {
		return ""
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "Source: %s\nItems:\n", sourceName)
	buf.WriteString(strings.Join(lines, "\n"))
	return buf.String()
}

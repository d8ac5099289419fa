package ai

import (
	"context"
	"net/http"
	"strings"
)

type Claude struct {
	APIKey  string
	Model   string
	BaseURL string
	HTTP    *http.Client
}

func NewClaude(apiKey string) *Claude {
	return &Claude{APIKey: apiKey, Model: "claude-sonnet-4-5", BaseURL: "https://api.anthropic.com/v1"}
}

func (c *Claude) Complete(ctx context.Context, prompt string) (string, error) {
	if c.APIKey == "" {
		return "", ErrMissingAPIKey
	}
	payload := map[string]any{
		"model":      c.Model,
		"max_tokens": 2048,
		"system":     "You are a music expert. Answer with the playlist only.",
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
	}
	headers := map[string]string{
		"x-api-key":         c.APIKey,
		"anthropic-version": "2023-06-01",
	}

	var data struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := postJSON(ctx, c.HTTP, "claude", strings.TrimRight(c.BaseURL, "/")+"/messages", headers, payload, &data); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, part := range data.Content {
		if part.Type == "text" {
			b.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", emptyReply("claude")
	}
	return b.String(), nil
}

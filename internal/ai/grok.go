package ai

import (
	"context"
	"net/http"
	"strings"
)

type Grok struct {
	APIKey  string
	Model   string
	BaseURL string
	HTTP    *http.Client
}

func NewGrok(apiKey string) *Grok {
	return &Grok{APIKey: apiKey, Model: "grok-4-1-fast-reasoning", BaseURL: "https://api.x.ai/v1"}
}

func (c *Grok) Complete(ctx context.Context, prompt string) (string, error) {
	if c.APIKey == "" {
		return "", ErrMissingAPIKey
	}
	payload := map[string]any{
		"model": c.Model,
		"messages": []map[string]string{
			{"role": "system", "content": "You are a music expert. Answer with the playlist only."},
			{"role": "user", "content": prompt},
		},
		"max_tokens": 2048,
	}
	var data chatResponse
	err := postJSON(ctx, c.HTTP, "xai", strings.TrimRight(c.BaseURL, "/")+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + c.APIKey}, payload, &data)
	if err != nil {
		return "", err
	}
	if len(data.Choices) == 0 || strings.TrimSpace(data.Choices[0].Message.Content) == "" {
		return "", emptyReply("xai")
	}
	return data.Choices[0].Message.Content, nil
}

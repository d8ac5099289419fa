package ai

import (
	"context"
	"net/http"
	"strings"
)

type Gemini struct {
	APIKey  string
	Model   string
	BaseURL string
	HTTP    *http.Client
}

func NewGemini(apiKey string) *Gemini {
	return &Gemini{
		APIKey:  apiKey,
		Model:   "gemini-3-flash-preview",
		BaseURL: "https://generativelanguage.googleapis.com/v1beta",
	}
}

func (c *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	if c.APIKey == "" {
		return "", ErrMissingAPIKey
	}
	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]int{"maxOutputTokens": 2048},
	}
	u := strings.TrimRight(c.BaseURL, "/") + "/models/" + c.Model + ":generateContent"
	headers := map[string]string{"x-goog-api-key": c.APIKey}

	var data struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := postJSON(ctx, c.HTTP, "gemini", u, headers, payload, &data); err != nil {
		return "", err
	}
	if len(data.Candidates) == 0 || len(data.Candidates[0].Content.Parts) == 0 {
		return "", emptyReply("gemini")
	}
	text := data.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", emptyReply("gemini")
	}
	return text, nil
}

package ai

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
)

const (
	openAIBaseURL     = "https://api.openai.com/v1"
	openAIModel       = "gpt-4o-mini"
	openAIVisionModel = "gpt-4o"
)

type OpenAI struct {
	APIKey      string
	Model       string
	VisionModel string
	BaseURL     string
	HTTP        *http.Client
}

func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{APIKey: apiKey, Model: openAIModel, VisionModel: openAIVisionModel, BaseURL: openAIBaseURL}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model": c.Model,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
		"max_tokens": 1024,
	}
	return c.chat(ctx, payload)
}

// DescribeImage asks the vision model for a playlist matching the image's mood.
func (c *OpenAI) DescribeImage(ctx context.Context, image []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
	payload := map[string]any{
		"model": c.VisionModel,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": VisionPrompt},
					{"type": "image_url", "image_url": map[string]string{"url": dataURL}},
				},
			},
		},
		"max_tokens": 1024,
	}
	return c.chat(ctx, payload)
}

func (c *OpenAI) chat(ctx context.Context, payload map[string]any) (string, error) {
	if c.APIKey == "" {
		return "", ErrMissingAPIKey
	}
	var data chatResponse
	err := postJSON(ctx, c.HTTP, "openai", strings.TrimRight(c.BaseURL, "/")+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + c.APIKey}, payload, &data)
	if err != nil {
		return "", err
	}
	if len(data.Choices) == 0 || strings.TrimSpace(data.Choices[0].Message.Content) == "" {
		return "", emptyReply("openai")
	}
	return data.Choices[0].Message.Content, nil
}

// VisionPrompt asks for a numbered list so the reply parses like any text completion.
const VisionPrompt = `Examine the provided image, paying close attention to its mood, colors, setting, themes, and emotions.
Based on these observations, compile a playlist of 20-30 songs that resonate with the image's essence.
Each song selected should reflect aspects of the image's emotional tone, energy, and thematic elements.
Present your selections as a numbered list, specifying the title and artist for each song.
Avoid any commentary about your choices.

1.
2.
3.
...
20. (Continue to 30 as needed)`

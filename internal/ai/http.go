package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

var apiHTTPClient = &http.Client{Timeout: 60 * time.Second}

const maxReplyBytes = 4 << 20

// postJSON posts payload and decodes a 2xx reply into out. Non-2xx replies become *APIError.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, payload, out any) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if client == nil {
		client = apiHTTPClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes+1))
	if err != nil {
		return fmt.Errorf("%s: read reply: %w", provider, err)
	}
	if len(body) > maxReplyBytes {
		return fmt.Errorf("%w: %s reply exceeds %d bytes", ErrInvalidResponse, provider, maxReplyBytes)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Provider: provider, Status: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, provider, err)
	}
	return nil
}

func emptyReply(provider string) error {
	return fmt.Errorf("%w: %s returned no text", ErrInvalidResponse, provider)
}

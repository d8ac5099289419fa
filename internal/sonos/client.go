// Package sonos talks to a node-sonos-http-api bridge to queue Apple Music tracks on
// Sonos speakers.
package sonos

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 20 * time.Second},
		logger:  logger,
	}
}

// CheckConnection reports whether the bridge answers within five seconds.
func (c *Client) CheckConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.get(ctx, "/zones", nil) == nil
}

// roomPath builds "/{room}/{parts...}" with the room escaped.
func roomPath(room string, parts ...string) string {
	return "/" + url.PathEscape(room) + "/" + strings.Join(parts, "/")
}

// get fetches path and decodes the JSON body into out when out is non-nil.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	c.logger.Debug("sonos request", "path", path)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type APIError struct {
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("sonos api error: %d", e.Status)
	}
	return fmt.Sprintf("sonos api error: %d - %s", e.Status, e.Body)
}

package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Completer sends a prompt to a language model and returns its raw text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Describer turns an image into the same kind of free-text playlist a Completer returns.
type Describer interface {
	DescribeImage(ctx context.Context, image []byte, mimeType string) (string, error)
}

type APIKeys struct {
	OpenAI    string
	Anthropic string
	Google    string
	XAI       string
}

var (
	ErrMissingAPIKey   = errors.New("missing api key")
	ErrUnauthorized    = errors.New("unauthorized: invalid api key")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrInvalidResponse = errors.New("invalid response")
)

// APIError carries the provider's status and body; errors.Is matches the sentinel
// that fits the status code.
type APIError struct {
	Provider string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api error: %d - %s", e.Provider, e.Status, e.Body)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return ErrInvalidResponse
	}
}

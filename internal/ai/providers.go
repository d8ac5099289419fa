package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Provider is a named Completer, so fallbacks can report which backend failed.
type Provider struct {
	Name string
	Completer
}

// Providers lists every provider with a configured key. The preferred one goes first;
// the rest keep a fixed order. "sample" returns only the offline sample provider.
func Providers(keys APIKeys, preferred string) ([]Provider, error) {
	preferred = strings.ToLower(strings.TrimSpace(preferred))
	if preferred == "sample" {
		return []Provider{{Name: "sample", Completer: Sample{}}}, nil
	}

	all := []Provider{}
	if keys.OpenAI != "" {
		all = append(all, Provider{Name: "openai", Completer: NewOpenAI(keys.OpenAI)})
	}
	if keys.Anthropic != "" {
		all = append(all, Provider{Name: "claude", Completer: NewClaude(keys.Anthropic)})
	}
	if keys.Google != "" {
		all = append(all, Provider{Name: "gemini", Completer: NewGemini(keys.Google)})
	}
	if keys.XAI != "" {
		all = append(all, Provider{Name: "grok", Completer: NewGrok(keys.XAI)})
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: set OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY or XAI_API_KEY", ErrMissingAPIKey)
	}
	if preferred == "" {
		return all, nil
	}

	for i, p := range all {
		if p.Name == preferred {
			ordered := append([]Provider{p}, all[:i]...)
			return append(ordered, all[i+1:]...), nil
		}
	}
	switch preferred {
	case "openai", "claude", "gemini", "grok":
		return nil, fmt.Errorf("%w: no key configured for %s", ErrMissingAPIKey, preferred)
	}
	return nil, fmt.Errorf("unknown provider %q", preferred)
}

// Fallback tries each provider in order and returns the first non-empty reply.
type Fallback struct {
	providers []Provider
	logger    *slog.Logger
}

func NewFallback(logger *slog.Logger, providers ...Provider) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{providers: providers, logger: logger}
}

func (f *Fallback) Complete(ctx context.Context, prompt string) (string, error) {
	if len(f.providers) == 0 {
		return "", ErrMissingAPIKey
	}
	var errs []error
	for _, p := range f.providers {
		text, err := p.Complete(ctx, prompt)
		if err == nil {
			f.logger.Debug("completion received", "provider", p.Name, "bytes", len(text))
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		f.logger.Warn("provider failed", "provider", p.Name, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
	}
	return "", errors.Join(errs...)
}

// Names returns provider names in try order.
func (f *Fallback) Names() []string {
	names := make([]string, 0, len(f.providers))
	for _, p := range f.providers {
		names = append(names, p.Name)
	}
	return names
}

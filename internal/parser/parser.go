// Package parser extracts (artist, title) pairs from the free-text playlists that
// language models return. Model output has no reliable grammar, so each line is run
// through an ordered table of splitting strategies and the first one that yields two
// non-empty parts wins.
package parser

import (
	"log/slog"
	"regexp"
	"strings"
)

// Candidate is one song extracted from a line of model output.
type Candidate struct {
	Artist string
	Title  string
}

// Strategy splits a line on Separator after optionally stripping a leading Prefix.
//
// ArtistFirst assigns the left-hand part to Artist. For the "by" strategies the
// left-hand part of `"Title" by Artist` is really the title; that assignment is kept
// as-is because changing it changes the catalog search term for every such line.
type Strategy struct {
	Name        string
	Prefix      *regexp.Regexp
	Separator   string
	ArtistFirst bool
}

var (
	numberedQuotePrefix = regexp.MustCompile(`^\d+\.\s*"`)
	numberedPrefix      = regexp.MustCompile(`^\d+\.\s*`)
)

// DefaultStrategies is ordered from most to least specific so that a hyphen inside a
// title is only used as a separator when nothing better matched.
var DefaultStrategies = []Strategy{
	{Name: "numbered-quoted-by", Prefix: numberedQuotePrefix, Separator: `" by `, ArtistFirst: true},
	{Name: "numbered-by", Prefix: numberedPrefix, Separator: " by ", ArtistFirst: true},
	{Name: "numbered-en-dash", Prefix: numberedPrefix, Separator: "–", ArtistFirst: true},
	{Name: "hyphen", Separator: "-", ArtistFirst: true},
	{Name: "featuring", Separator: "ft.", ArtistFirst: false},
}

// Apply reports whether the strategy splits line into two non-empty parts.
// A prefix that does not match leaves the line untouched; the split is still tried.
func (s Strategy) Apply(line string) (Candidate, bool) {
	rest := line
	if s.Prefix != nil {
		if loc := s.Prefix.FindStringIndex(line); loc != nil {
			rest = line[loc[1]:]
		}
	}

	parts := strings.SplitN(rest, s.Separator, 2)
	if len(parts) != 2 {
		return Candidate{}, false
	}
	left := strings.ReplaceAll(strings.TrimSpace(parts[0]), `"`, "")
	right := strings.ReplaceAll(strings.TrimSpace(parts[1]), `"`, "")
	if left == "" || right == "" {
		return Candidate{}, false
	}

	if s.ArtistFirst {
		return Candidate{Artist: left, Title: right}, true
	}
	return Candidate{Artist: right, Title: left}, true
}

// Clean drops every double quote and surrounding whitespace from a raw line.
func Clean(line string) string {
	return strings.TrimSpace(strings.ReplaceAll(line, `"`, ""))
}

type Parser struct {
	strategies []Strategy
	logger     *slog.Logger
}

func New(logger *slog.Logger) *Parser {
	return NewWithStrategies(logger, DefaultStrategies)
}

func NewWithStrategies(logger *slog.Logger, strategies []Strategy) *Parser {
	return &Parser{strategies: strategies, logger: logger}
}

// ParseLine returns false for blank lines and for lines no strategy can split.
func (p *Parser) ParseLine(line string) (Candidate, bool) {
	cleaned := Clean(line)
	if cleaned == "" {
		p.logger.Debug("skipping blank line")
		return Candidate{}, false
	}

	for _, s := range p.strategies {
		if c, ok := s.Apply(cleaned); ok {
			p.logger.Debug("parsed line", "strategy", s.Name, "artist", c.Artist, "title", c.Title)
			return c, true
		}
	}

	p.logger.Warn("could not parse line", "line", cleaned)
	return Candidate{}, false
}

var newlineRE = regexp.MustCompile("\r\n|[\n\v\f\r\u0085\u2028\u2029]")

// SplitLines splits text on any newline convention. Empty text is a single empty line.
func SplitLines(text string) []string {
	return newlineRE.Split(text, -1)
}

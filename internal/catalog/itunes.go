package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"vibify/internal/music"
)

const (
	DefaultITunesURL = "https://itunes.apple.com/search"
	searchCacheTTL   = 10 * time.Minute
	defaultLimit     = 10
)

type itunesSearchResult struct {
	ResultCount int           `json:"resultCount"`
	Results     []itunesTrack `json:"results"`
}

type itunesTrack struct {
	Kind             string `json:"kind"`
	TrackID          int64  `json:"trackId"`
	TrackName        string `json:"trackName"`
	ArtistName       string `json:"artistName"`
	Collection       string `json:"collectionName"`
	ArtworkURL100    string `json:"artworkUrl100"`
	ReleaseDate      string `json:"releaseDate"`
	PrimaryGenreName string `json:"primaryGenreName"`
	Explicitness     string `json:"trackExplicitness"`
	PreviewURL       string `json:"previewUrl"`
	TrackTimeMillis  int64  `json:"trackTimeMillis"`
}

type searchCacheEntry struct {
	candidates []Candidate
	expiresAt  time.Time
}

// ITunes searches the public iTunes Search API.
type ITunes struct {
	baseURL string
	country string
	limit   int
	http    *http.Client
	logger  *slog.Logger

	cacheMu sync.RWMutex
	cache   map[string]searchCacheEntry
}

type ITunesOptions struct {
	BaseURL string
	Country string
	Limit   int
	Timeout time.Duration
}

func NewITunes(opts ITunesOptions, logger *slog.Logger) *ITunes {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultITunesURL
	}
	if opts.Country == "" {
		opts.Country = "US"
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultLimit
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	return &ITunes{
		baseURL: opts.BaseURL,
		country: opts.Country,
		limit:   opts.Limit,
		http:    &http.Client{Timeout: opts.Timeout},
		logger:  logger,
		cache:   map[string]searchCacheEntry{},
	}
}

func (c *ITunes) Search(ctx context.Context, term string) ([]Candidate, error) {
	cacheKey := music.Normalize(term)
	now := time.Now()

	c.cacheMu.RLock()
	entry, ok := c.cache[cacheKey]
	c.cacheMu.RUnlock()
	if ok && now.Before(entry.expiresAt) {
		c.logger.Debug("itunes cache hit", "term", term)
		return append([]Candidate(nil), entry.candidates...), nil
	}

	q := url.Values{}
	q.Set("term", term)
	q.Set("media", "music")
	q.Set("entity", "song")
	q.Set("country", c.country)
	q.Set("limit", strconv.Itoa(c.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("itunes search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("itunes search error: %d", resp.StatusCode)
	}

	var data itunesSearchResult
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode itunes response: %w", err)
	}
	c.logger.Debug("itunes returned results", "term", term, "count", data.ResultCount)

	candidates := make([]Candidate, 0, len(data.Results))
	for _, t := range data.Results {
		if t.Kind != "" && t.Kind != "song" {
			continue
		}
		candidates = append(candidates, t.toCandidate())
	}

	c.cacheMu.Lock()
	c.cache[cacheKey] = searchCacheEntry{
		candidates: append([]Candidate(nil), candidates...),
		expiresAt:  time.Now().Add(searchCacheTTL),
	}
	c.cacheMu.Unlock()
	return candidates, nil
}

// CheckConnection reports whether the search endpoint answers at all.
func (c *ITunes) CheckConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := c.Search(ctx, "test")
	return err == nil
}

var artworkSizeRE = regexp.MustCompile(`/\d+x\d+(bb)?\.(jpg|png|webp)$`)

func (t itunesTrack) toCandidate() Candidate {
	c := Candidate{
		ID:         strconv.FormatInt(t.TrackID, 10),
		Title:      t.TrackName,
		ArtistName: t.ArtistName,
		AlbumTitle: t.Collection,
	}
	if t.ArtworkURL100 != "" {
		c.ArtworkURLTpl = artworkSizeRE.ReplaceAllString(t.ArtworkURL100, "/{w}x{h}bb.$2")
	}
	if t.ReleaseDate != "" {
		if d, err := time.Parse(time.RFC3339, t.ReleaseDate); err == nil {
			c.ReleaseDate = &d
		}
	}
	if t.PrimaryGenreName != "" {
		c.GenreNames = []string{t.PrimaryGenreName}
	}
	switch strings.ToLower(t.Explicitness) {
	case "explicit":
		c.ContentRating = RatingExplicit
	case "cleaned":
		c.ContentRating = RatingClean
	}
	if t.PreviewURL != "" {
		c.PreviewURLs = []string{t.PreviewURL}
	}
	if t.TrackTimeMillis > 0 {
		d := time.Duration(t.TrackTimeMillis) * time.Millisecond
		c.Duration = &d
	}
	return c
}

package catalog

import (
	"context"
	"strconv"
	"strings"
	"time"
)

type ContentRating string

const (
	RatingNone     ContentRating = ""
	RatingClean    ContentRating = "clean"
	RatingExplicit ContentRating = "explicit"
)

// Candidate is one search hit as returned by a catalog, in the catalog's ranking order.
type Candidate struct {
	ID            string
	Title         string
	ArtistName    string
	AlbumTitle    string
	ArtworkURLTpl string // contains {w} and {h} placeholders
	ReleaseDate   *time.Time
	GenreNames    []string
	ContentRating ContentRating
	PreviewURLs   []string
	Duration      *time.Duration
}

// ArtworkURL renders the artwork template at the requested size, or "" when the
// candidate has no artwork.
func (c Candidate) ArtworkURL(width, height int) string {
	if c.ArtworkURLTpl == "" {
		return ""
	}
	r := strings.NewReplacer("{w}", strconv.Itoa(width), "{h}", strconv.Itoa(height))
	return r.Replace(c.ArtworkURLTpl)
}

// Searcher looks up songs by free-text term. Implementations own their timeout and
// retry policy.
type Searcher interface {
	Search(ctx context.Context, term string) ([]Candidate, error)
}

type SearcherFunc func(ctx context.Context, term string) ([]Candidate, error)

func (f SearcherFunc) Search(ctx context.Context, term string) ([]Candidate, error) {
	return f(ctx, term)
}

package catalog

import (
	"context"
	"log/slog"

	"vibify/internal/music"
)

const artworkSize = 300

type Outcome string

const (
	Resolved     Outcome = "resolved"
	Unmatched    Outcome = "unmatched"
	SearchFailed Outcome = "search_error"
)

// Resolver turns a parsed (artist, title) pair into catalog metadata.
type Resolver struct {
	search Searcher
	logger *slog.Logger
}

func NewResolver(search Searcher, logger *slog.Logger) *Resolver {
	return &Resolver{search: search, logger: logger}
}

// Resolve takes the first search hit for "artist title". A failed search is logged and
// reported as SearchFailed; it is never returned as an error so one bad lookup cannot
// abort a batch.
func (r *Resolver) Resolve(ctx context.Context, artist, title, playlistID string) (*music.Track, Outcome) {
	r.logger.Debug("searching catalog", "artist", artist, "title", title)
	candidates, err := r.search.Search(ctx, artist+" "+title)
	if err != nil {
		r.logger.Error("catalog search failed", "artist", artist, "title", title, "err", err)
		return nil, SearchFailed
	}
	if len(candidates) == 0 {
		r.logger.Warn("no song found", "artist", artist, "title", title)
		return nil, Unmatched
	}

	track := toTrack(candidates[0], playlistID)
	return &track, Resolved
}

func toTrack(c Candidate, playlistID string) music.Track {
	album := c.AlbumTitle
	if album == "" {
		album = music.UnknownAlbum
	}
	genres := append([]string{}, c.GenreNames...)
	preview := ""
	if len(c.PreviewURLs) > 0 {
		preview = c.PreviewURLs[0]
	}
	return music.Track{
		ID:          c.ID,
		Title:       c.Title,
		Artist:      c.ArtistName,
		Album:       album,
		ArtworkURL:  c.ArtworkURL(artworkSize, artworkSize),
		ReleaseDate: c.ReleaseDate,
		GenreNames:  genres,
		IsExplicit:  c.ContentRating == RatingExplicit,
		PreviewURL:  preview,
		Duration:    c.Duration,
		PlaylistID:  playlistID,
	}
}

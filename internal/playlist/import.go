package playlist

import (
	"context"
	"errors"
	"fmt"

	"vibify/internal/music"
)

// Importer materializes a playlist on a playback device or service.
type Importer interface {
	CreatePlaylist(ctx context.Context, name string) error
	AddTrack(ctx context.Context, trackID string) error
}

var ErrEmptyPlaylist = errors.New("no songs to add to the playlist")

type ImportResult struct {
	Added  int           `json:"added"`
	Failed []music.Track `json:"failed,omitempty"`
}

// Import creates the playlist and adds its tracks in order. Individual track failures
// are collected; an error is returned only when no track could be added.
func Import(ctx context.Context, imp Importer, pl music.Playlist, onProgress func(int)) (ImportResult, error) {
	if len(pl.Tracks) == 0 {
		return ImportResult{}, ErrEmptyPlaylist
	}
	if err := imp.CreatePlaylist(ctx, pl.Title); err != nil {
		return ImportResult{}, fmt.Errorf("create playlist %q: %w", pl.Title, err)
	}

	var res ImportResult
	var errs []error
	for i, t := range pl.Tracks {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := imp.AddTrack(ctx, t.ID); err != nil {
			res.Failed = append(res.Failed, t)
			errs = append(errs, fmt.Errorf("%s - %s: %w", t.Artist, t.Title, err))
		} else {
			res.Added++
		}
		if onProgress != nil {
			onProgress((i + 1) * 100 / len(pl.Tracks))
		}
	}

	if res.Added == 0 {
		return res, fmt.Errorf("no tracks could be added: %w", errors.Join(errs...))
	}
	return res, nil
}

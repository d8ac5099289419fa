package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vibify/internal/music"
)

var (
	ErrNotFound  = errors.New("playlist not found")
	ErrAmbiguous = errors.New("playlist id prefix matches more than one playlist")
)

// Summary is a playlist row without its songs.
type Summary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"createdAt"`
	ArtworkURL string    `json:"artworkUrl,omitempty"`
	TrackCount int       `json:"trackCount"`
}

// Insert stores pl and its tracks atomically. Each stored track gets pl.ID as its
// playlist id.
func (s *SQLiteStore) Insert(ctx context.Context, pl music.Playlist) error {
	if pl.ID == "" {
		return errors.New("playlist id is required")
	}
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO playlists (id, title, created_at, artwork_url)
			VALUES (?, ?, ?, ?)
		`, pl.ID, pl.Title, pl.CreatedAt.UnixMilli(), pl.ArtworkURL)
		if err != nil {
			return fmt.Errorf("insert playlist: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO songs (playlist_id, position, track_id, title, artist, album, artwork_url,
				release_date, genre_names, is_explicit, preview_url, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, t := range pl.Tracks {
			genres, err := json.Marshal(nonNil(t.GenreNames))
			if err != nil {
				return err
			}
			var release, duration sql.NullInt64
			if t.ReleaseDate != nil {
				release = sql.NullInt64{Int64: t.ReleaseDate.UnixMilli(), Valid: true}
			}
			if t.Duration != nil {
				duration = sql.NullInt64{Int64: t.Duration.Milliseconds(), Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, pl.ID, i, t.ID, t.Title, t.Artist, t.Album, t.ArtworkURL,
				release, string(genres), t.IsExplicit, t.PreviewURL, duration); err != nil {
				return fmt.Errorf("insert song %d: %w", i, err)
			}
		}
		return nil
	})
}

// History lists playlists newest first. limit <= 0 returns all of them.
func (s *SQLiteStore) History(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.title, p.created_at, p.artwork_url, COUNT(s.position)
		FROM playlists p
		LEFT JOIN songs s ON s.playlist_id = p.id
		GROUP BY p.id
		ORDER BY p.created_at DESC, p.id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sum Summary
		var created int64
		if err := rows.Scan(&sum.ID, &sum.Title, &created, &sum.ArtworkURL, &sum.TrackCount); err != nil {
			return nil, err
		}
		sum.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Get loads a playlist by id or by a unique id prefix.
func (s *SQLiteStore) Get(ctx context.Context, id string) (music.Playlist, error) {
	fullID, err := s.resolveID(ctx, id)
	if err != nil {
		return music.Playlist{}, err
	}

	var pl music.Playlist
	var created int64
	err = s.db.QueryRowContext(ctx, `
		SELECT id, title, created_at, artwork_url FROM playlists WHERE id = ?
	`, fullID).Scan(&pl.ID, &pl.Title, &created, &pl.ArtworkURL)
	if errors.Is(err, sql.ErrNoRows) {
		return music.Playlist{}, ErrNotFound
	}
	if err != nil {
		return music.Playlist{}, err
	}
	pl.CreatedAt = time.UnixMilli(created).UTC()

	pl.Tracks, err = s.tracks(ctx, fullID)
	if err != nil {
		return music.Playlist{}, err
	}
	return pl, nil
}

func (s *SQLiteStore) tracks(ctx context.Context, playlistID string) ([]music.Track, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT track_id, title, artist, album, artwork_url, release_date, genre_names,
			is_explicit, preview_url, duration_ms
		FROM songs
		WHERE playlist_id = ?
		ORDER BY position
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tracks := []music.Track{}
	for rows.Next() {
		var t music.Track
		var release, duration sql.NullInt64
		var genres string
		if err := rows.Scan(&t.ID, &t.Title, &t.Artist, &t.Album, &t.ArtworkURL, &release, &genres,
			&t.IsExplicit, &t.PreviewURL, &duration); err != nil {
			return nil, err
		}
		if release.Valid {
			rd := time.UnixMilli(release.Int64).UTC()
			t.ReleaseDate = &rd
		}
		if duration.Valid {
			d := time.Duration(duration.Int64) * time.Millisecond
			t.Duration = &d
		}
		if err := json.Unmarshal([]byte(genres), &t.GenreNames); err != nil {
			return nil, fmt.Errorf("decode genres for %s: %w", t.ID, err)
		}
		t.PlaylistID = playlistID
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

func (s *SQLiteStore) resolveID(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM playlists WHERE id = ? OR substr(id, 1, ?) = ? LIMIT 3
	`, id, len(id), id)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var got string
		if err := rows.Scan(&got); err != nil {
			return "", err
		}
		if got == id {
			return got, nil
		}
		ids = append(ids, got)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", ErrNotFound
	case 1:
		return ids[0], nil
	default:
		return "", ErrAmbiguous
	}
}

func (s *SQLiteStore) UpdateArtwork(ctx context.Context, id, artworkURL string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE playlists SET artwork_url = ? WHERE id = ?`, artworkURL, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a playlist and its songs.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	fullID, err := s.resolveID(ctx, id)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, fullID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

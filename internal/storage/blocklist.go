package storage

import (
	"context"
	"database/sql"
	"time"

	"vibify/internal/music"
)

// BlockedTrack is a catalog track a speaker refused to queue.
type BlockedTrack struct {
	TrackID  string    `json:"trackId"`
	Artist   string    `json:"artist"`
	Title    string    `json:"title"`
	Album    string    `json:"album,omitempty"`
	FailedAt time.Time `json:"failedAt"`
}

// BlockTracks remembers tracks that failed to import so later imports can skip them.
func (s *SQLiteStore) BlockTracks(ctx context.Context, tracks []music.Track, at time.Time) error {
	if len(tracks) == 0 {
		return nil
	}
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, t := range tracks {
			if t.ID == "" {
				continue
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO blocked_tracks (track_id, artist, title, album, failed_at)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(track_id) DO UPDATE SET failed_at = excluded.failed_at
			`, t.ID, t.Artist, t.Title, t.Album, at.UnixMilli())
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Blocklist(ctx context.Context) (map[string]BlockedTrack, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT track_id, artist, title, album, failed_at FROM blocked_tracks
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]BlockedTrack{}
	for rows.Next() {
		var b BlockedTrack
		var album sql.NullString
		var failed int64
		if err := rows.Scan(&b.TrackID, &b.Artist, &b.Title, &album, &failed); err != nil {
			return nil, err
		}
		b.Album = nullStringValue(album)
		b.FailedAt = time.UnixMilli(failed).UTC()
		out[b.TrackID] = b
	}
	return out, rows.Err()
}

// Unblock forgets a blocked track. Unknown ids are ignored.
func (s *SQLiteStore) Unblock(ctx context.Context, trackID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM blocked_tracks WHERE track_id = ?`, trackID)
	return err
}

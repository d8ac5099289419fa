package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibify/internal/music"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testPlaylist(id string, created time.Time) music.Playlist {
	d := 200 * time.Second
	rd := time.Date(2010, 8, 1, 0, 0, 0, 0, time.UTC)
	return music.Playlist{
		ID:         id,
		Title:      "Dance",
		CreatedAt:  created,
		ArtworkURL: "https://art/1.jpg",
		Tracks: []music.Track{
			{
				ID: "101", Title: "Tik Tok", Artist: "Ke$ha", Album: "Animal",
				ArtworkURL: "https://art/1.jpg", ReleaseDate: &rd, GenreNames: []string{"Pop", "Music"},
				IsExplicit: true, PreviewURL: "https://p/1.m4a", Duration: &d,
			},
			{ID: "102", Title: "Dynamite", Artist: "Taio Cruz", Album: music.UnknownAlbum},
		},
	}
}

func TestInsertAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, s.Insert(ctx, testPlaylist("aaaa-1111", created)))

	got, err := s.Get(ctx, "aaaa-1111")
	require.NoError(t, err)
	assert.Equal(t, "Dance", got.Title)
	assert.Equal(t, created, got.CreatedAt)
	require.Len(t, got.Tracks, 2)

	first := got.Tracks[0]
	assert.Equal(t, "101", first.ID)
	assert.Equal(t, "aaaa-1111", first.PlaylistID)
	assert.Equal(t, []string{"Pop", "Music"}, first.GenreNames)
	assert.True(t, first.IsExplicit)
	require.NotNil(t, first.Duration)
	assert.Equal(t, 200*time.Second, *first.Duration)
	require.NotNil(t, first.ReleaseDate)
	assert.Equal(t, 2010, first.ReleaseDate.Year())

	second := got.Tracks[1]
	assert.Equal(t, "Dynamite", second.Title)
	assert.Nil(t, second.Duration)
	assert.Nil(t, second.ReleaseDate)
	assert.Equal(t, []string{}, second.GenreNames)
}

func TestSameTrackInTwoPlaylists(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.Insert(ctx, testPlaylist("p1", now)))
	require.NoError(t, s.Insert(ctx, testPlaylist("p2", now.Add(time.Minute))))

	for _, id := range []string{"p1", "p2"} {
		pl, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.Len(t, pl.Tracks, 2)
	}
}

func TestInsertIsAtomic(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, testPlaylist("dup", time.Now())))
	err := s.Insert(ctx, testPlaylist("dup", time.Now()))
	require.Error(t, err)

	hist, err := s.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, 2, hist[0].TrackCount)
}

func TestHistoryNewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		pl := testPlaylist(id, base.Add(time.Duration(i)*time.Hour))
		pl.Title = id
		require.NoError(t, s.Insert(ctx, pl))
	}
	empty := music.Playlist{ID: "empty", Title: "empty", CreatedAt: base.Add(-time.Hour)}
	require.NoError(t, s.Insert(ctx, empty))

	hist, err := s.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, hist, 4)
	assert.Equal(t, "new", hist[0].ID)
	assert.Equal(t, "empty", hist[3].ID)
	assert.Equal(t, 0, hist[3].TrackCount)

	hist, err = s.History(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, hist, 2)
}

func TestGetByPrefix(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, testPlaylist("abc-123", time.Now())))
	require.NoError(t, s.Insert(ctx, testPlaylist("abd-456", time.Now())))

	pl, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", pl.ID)

	_, err = s.Get(ctx, "ab")
	assert.ErrorIs(t, err, ErrAmbiguous)

	_, err = s.Get(ctx, "zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateArtworkAndDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, testPlaylist("p1", time.Now())))
	require.NoError(t, s.UpdateArtwork(ctx, "p1", "https://art/new.jpg"))
	pl, err := s.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "https://art/new.jpg", pl.ArtworkURL)

	assert.ErrorIs(t, s.UpdateArtwork(ctx, "missing", "x"), ErrNotFound)

	require.NoError(t, s.Delete(ctx, "p1"))
	_, err = s.Get(ctx, "p1")
	assert.ErrorIs(t, err, ErrNotFound)

	var songs int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM songs`).Scan(&songs))
	assert.Equal(t, 0, songs, "songs should cascade")
}

func TestBlocklist(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	tracks := testPlaylist("p", at).Tracks
	require.NoError(t, s.BlockTracks(ctx, tracks, at))
	require.NoError(t, s.BlockTracks(ctx, tracks[:1], at.Add(time.Hour)))

	blocked, err := s.Blocklist(ctx)
	require.NoError(t, err)
	require.Len(t, blocked, 2)
	assert.Equal(t, at.Add(time.Hour), blocked["101"].FailedAt)
	assert.Equal(t, "Taio Cruz", blocked["102"].Artist)

	require.NoError(t, s.Unblock(ctx, "101"))
	blocked, err = s.Blocklist(ctx)
	require.NoError(t, err)
	assert.NotContains(t, blocked, "101")
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "vibify.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.Insert(context.Background(), testPlaylist("p", time.Now())))
	require.NoError(t, s.Close())

	s, err = Open(context.Background(), path)
	require.NoError(t, err)
	defer s.Close()
	hist, err := s.History(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

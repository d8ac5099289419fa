package playlist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"vibify/internal/music"
)

type fakeImporter struct {
	created   []string
	added     []string
	createErr error
	failIDs   map[string]bool
}

func (f *fakeImporter) CreatePlaylist(_ context.Context, name string) error {
	f.created = append(f.created, name)
	return f.createErr
}

func (f *fakeImporter) AddTrack(_ context.Context, id string) error {
	if f.failIDs[id] {
		return errors.New("not available")
	}
	f.added = append(f.added, id)
	return nil
}

func titles(pl music.Playlist) []string {
	out := []string{}
	for _, t := range pl.Tracks {
		out = append(out, t.Title)
	}
	return out
}

func samplePlaylist() music.Playlist {
	d := 3 * time.Minute
	return music.Playlist{
		ID:        "pl-1",
		Title:     "Dance",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Tracks: []music.Track{
			{ID: "1", Title: "Tik Tok", Artist: "Ke$ha", Album: "Animal", GenreNames: []string{"Pop"}, Duration: &d},
			{ID: "2", Title: "Dynamite", Artist: "Taio Cruz", Album: music.UnknownAlbum, GenreNames: []string{}},
			{ID: "3", Title: "Holocene", Artist: "Bon Iver", Album: "Bon Iver", GenreNames: []string{"Alternative"}},
		},
	}
}

func TestImportAddsInOrder(t *testing.T) {
	t.Parallel()

	imp := &fakeImporter{}
	var progress []int
	res, err := Import(context.Background(), imp, samplePlaylist(), func(p int) { progress = append(progress, p) })
	require.NoError(t, err)
	assert.Equal(t, []string{"Dance"}, imp.created)
	assert.Equal(t, []string{"1", "2", "3"}, imp.added)
	assert.Equal(t, 3, res.Added)
	assert.Empty(t, res.Failed)
	assert.Equal(t, []int{33, 66, 100}, progress)
}

func TestImportPartialFailureIsNotAnError(t *testing.T) {
	t.Parallel()

	imp := &fakeImporter{failIDs: map[string]bool{"2": true}}
	res, err := Import(context.Background(), imp, samplePlaylist(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "Dynamite", res.Failed[0].Title)
}

func TestImportAllFailed(t *testing.T) {
	t.Parallel()

	imp := &fakeImporter{failIDs: map[string]bool{"1": true, "2": true, "3": true}}
	res, err := Import(context.Background(), imp, samplePlaylist(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Taio Cruz - Dynamite")
	assert.Len(t, res.Failed, 3)
}

func TestImportCreateFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("speaker offline")
	imp := &fakeImporter{createErr: boom}
	_, err := Import(context.Background(), imp, samplePlaylist(), nil)
	require.ErrorIs(t, err, boom)
	assert.Empty(t, imp.added)
}

func TestImportEmptyPlaylist(t *testing.T) {
	t.Parallel()

	_, err := Import(context.Background(), &fakeImporter{}, music.Playlist{Title: "x"}, nil)
	require.ErrorIs(t, err, ErrEmptyPlaylist)
}

func TestExportJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, samplePlaylist(), "json"))

	var back music.Playlist
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "pl-1", back.ID)
	assert.Equal(t, []string{"Tik Tok", "Dynamite", "Holocene"}, titles(back))
	assert.Contains(t, buf.String(), `"createdAt": "2026-01-02T03:04:05Z"`)
}

func TestExportYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, samplePlaylist(), "YAML"))
	out := buf.String()
	assert.Contains(t, out, "title: Dance")
	assert.Contains(t, out, "duration: 3m0s")

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	tracks, ok := doc["tracks"].([]any)
	require.True(t, ok)
	assert.Len(t, tracks, 3)
}

func TestExportUnknownFormat(t *testing.T) {
	t.Parallel()

	err := Export(&bytes.Buffer{}, samplePlaylist(), "xml")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "xml"))
}

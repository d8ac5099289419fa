package playlist

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibify/internal/catalog"
	"vibify/internal/parser"
)

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

// fakeCatalog answers searches from a term -> candidate table and records every term.
type fakeCatalog struct {
	mu    sync.Mutex
	hits  map[string]catalog.Candidate
	fail  map[string]bool
	terms []string
	onHit func(term string)
}

func (f *fakeCatalog) Search(_ context.Context, term string) ([]catalog.Candidate, error) {
	f.mu.Lock()
	f.terms = append(f.terms, term)
	f.mu.Unlock()
	if f.onHit != nil {
		f.onHit(term)
	}
	if f.fail[term] {
		return nil, errors.New("catalog unavailable")
	}
	if c, ok := f.hits[term]; ok {
		return []catalog.Candidate{c}, nil
	}
	return nil, nil
}

type countingRecorder struct {
	counts map[string]int
}

func (r *countingRecorder) RecordLine(outcome string) {
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[outcome]++
}

func newTestPipeline(cat *fakeCatalog, rec Recorder) *Pipeline {
	return NewPipeline(parser.New(discard()), catalog.NewResolver(cat, discard()), rec, discard())
}

func TestResolveAllEndToEnd(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{hits: map[string]catalog.Candidate{
		"Only Girl (In the World) Rihanna": {ID: "101", Title: "Only Girl (In the World)", ArtistName: "Rihanna"},
		"Dynamite Taio Cruz":               {ID: "102", Title: "Dynamite", ArtistName: "Taio Cruz"},
	}}
	p := newTestPipeline(cat, nil)

	var progress []int
	text := "1. \"Only Girl (In the World)\" – Rihanna\n2. \"Dynamite\" – Taio Cruz"
	tracks, err := p.ResolveAll(context.Background(), text, "pl-1", func(pct int) {
		progress = append(progress, pct)
	})
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "101", tracks[0].ID)
	assert.Equal(t, "102", tracks[1].ID)
	assert.Equal(t, "pl-1", tracks[0].PlaylistID)
	assert.Equal(t, "Unknown Album", tracks[1].Album)
	assert.Equal(t, []int{50, 100}, progress)
	assert.Equal(t, []string{"Only Girl (In the World) Rihanna", "Dynamite Taio Cruz"}, cat.terms)
}

func TestResolveAllSkipsFailuresAndKeepsOrder(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{
		hits: map[string]catalog.Candidate{
			"Tik Tok Ke$ha":        {ID: "3", Title: "Tik Tok"},
			"Blah Blah Blah Ke$ha": {ID: "1", Title: "Blah Blah Blah"},
			"Holocene Bon Iver":    {ID: "9", Title: "Holocene"},
		},
		fail: map[string]bool{"Holocene Bon Iver": true},
	}
	rec := &countingRecorder{}
	p := newTestPipeline(cat, rec)

	text := strings.Join([]string{
		"Blah Blah Blah - Ke$ha",
		"",
		"Here are some songs you might like:",
		"Holocene - Bon Iver",
		"Nobody Knows - Nobody",
		"Tik Tok - Ke$ha",
	}, "\r\n")

	var progress []int
	tracks, err := p.ResolveAll(context.Background(), text, "pl", func(pct int) { progress = append(progress, pct) })
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "1", tracks[0].ID)
	assert.Equal(t, "3", tracks[1].ID)
	assert.Equal(t, []int{16, 33, 50, 66, 83, 100}, progress)
	assert.Equal(t, map[string]int{
		"resolved":     2,
		"blank":        1,
		"unparsable":   1,
		"search_error": 1,
		"unmatched":    1,
	}, rec.counts)
}

func TestResolveAllAllUnmatched(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(&fakeCatalog{}, nil)
	var progress []int
	tracks, err := p.ResolveAll(context.Background(), "1. A - B\n2. C - D\n3. E - F", "pl", func(pct int) {
		progress = append(progress, pct)
	})
	require.NoError(t, err)
	assert.NotNil(t, tracks)
	assert.Empty(t, tracks)
	assert.Equal(t, []int{33, 66, 100}, progress)
}

func TestResolveAllEmptyInput(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{}
	p := newTestPipeline(cat, nil)
	var progress []int
	tracks, err := p.ResolveAll(context.Background(), "", "pl", func(pct int) { progress = append(progress, pct) })
	require.NoError(t, err)
	assert.Empty(t, tracks)
	assert.Equal(t, []int{100}, progress)
	assert.Empty(t, cat.terms)
}

func TestResolveAllNilProgress(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{hits: map[string]catalog.Candidate{"A B": {ID: "1"}}}
	tracks, err := newTestPipeline(cat, nil).ResolveAll(context.Background(), "A - B", "pl", nil)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
}

func TestResolveAllProgressIsMonotonic(t *testing.T) {
	t.Parallel()

	lines := make([]string, 7)
	for i := range lines {
		lines[i] = "Artist - Song"
	}
	var progress []int
	_, err := newTestPipeline(&fakeCatalog{}, nil).ResolveAll(context.Background(), strings.Join(lines, "\n"), "pl", func(pct int) {
		progress = append(progress, pct)
	})
	require.NoError(t, err)
	require.Len(t, progress, 7)
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1])
	}
	assert.Equal(t, 100, progress[len(progress)-1])
}

func TestResolveAllCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat := &fakeCatalog{hits: map[string]catalog.Candidate{
		"A 1": {ID: "1"},
		"B 2": {ID: "2"},
		"C 3": {ID: "3"},
	}}
	cat.onHit = func(term string) {
		if term == "B 2" {
			cancel()
		}
	}

	tracks, err := newTestPipeline(cat, nil).ResolveAll(ctx, "A - 1\nB - 2\nC - 3", "pl", nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, tracks, 2)
	assert.Equal(t, "2", tracks[1].ID)
	assert.Equal(t, []string{"A 1", "B 2"}, cat.terms)
}

func TestResolveAllConcurrentCallsDoNotShareState(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{hits: map[string]catalog.Candidate{"A B": {ID: "1"}, "C D": {ID: "2"}}}
	p := newTestPipeline(cat, nil)

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracks, err := p.ResolveAll(context.Background(), "A - B\nC - D", "pl", nil)
			if err == nil {
				results[i] = len(tracks)
			}
		}()
	}
	wg.Wait()
	for _, n := range results {
		assert.Equal(t, 2, n)
	}
}

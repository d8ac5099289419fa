package playlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vibify/internal/ai"
	"vibify/internal/music"
	"vibify/internal/output"
	"vibify/internal/parser"
	"vibify/internal/prompt"
)

// Store persists generated playlists.
type Store interface {
	Insert(ctx context.Context, pl music.Playlist) error
}

type GeneratorOptions struct {
	Completer ai.Completer
	Describer ai.Describer
	Pipeline  *Pipeline
	Store     Store
	Output    *output.Output
	Logger    *slog.Logger

	Now   func() time.Time
	NewID func() string
}

type Generator struct {
	completer ai.Completer
	describer ai.Describer
	pipeline  *Pipeline
	store     Store
	out       *output.Output
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

func NewGenerator(opts GeneratorOptions) *Generator {
	g := &Generator{
		completer: opts.Completer,
		describer: opts.Describer,
		pipeline:  opts.Pipeline,
		store:     opts.Store,
		out:       opts.Output,
		logger:    opts.Logger,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.newID == nil {
		g.newID = func() string { return uuid.NewString() }
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.out == nil {
		g.out = output.New(output.Options{Quiet: true})
	}
	return g
}

// Request describes one playlist to generate. Image, when set, is described by the
// vision model instead of sending Criteria.
type Request struct {
	Criteria  prompt.Criteria
	Image     []byte
	ImageMIME string
	Title     string
	DryRun    bool
}

// Result reports the playlist as stored. Resolved counts every line the catalog matched,
// duplicates included; the playlist holds Resolved-Duplicates tracks.
type Result struct {
	Playlist   music.Playlist `json:"playlist"`
	TotalLines int            `json:"totalLines"`
	Resolved   int            `json:"resolved"`
	Duplicates int            `json:"duplicates"`
	DryRun     bool           `json:"dryRun"`
}

var ErrNoCriteria = errors.New("no prompt or image given")

func (g *Generator) Generate(ctx context.Context, req Request) (Result, error) {
	text, err := g.complete(ctx, req)
	if err != nil {
		return Result{}, err
	}

	id := g.newID()
	total := countSongLines(text)
	g.out.Info(fmt.Sprintf("Looking up %d suggested songs...", total))

	tracks, err := g.pipeline.ResolveAll(ctx, text, id, func(pct int) {
		g.out.Progress("Resolving songs", pct)
	})
	if err != nil {
		return Result{}, err
	}

	tracks, dupes := dedupe(tracks)
	if dupes > 0 {
		g.logger.Info("dropped duplicate tracks", "count", dupes)
	}

	pl := music.Playlist{
		ID:        id,
		Title:     playlistTitle(req, g.now()),
		CreatedAt: g.now().UTC(),
		Tracks:    tracks,
	}
	if len(tracks) > 0 {
		pl.ArtworkURL = tracks[0].ArtworkURL
	}

	for i, t := range tracks {
		g.out.Print(fmt.Sprintf("  %d. %s - %s %s", i+1, t.Artist, t.Title, g.out.Gray(t.Album)))
	}
	g.out.Print("")

	result := Result{Playlist: pl, TotalLines: total, Resolved: len(tracks) + dupes, Duplicates: dupes, DryRun: req.DryRun}
	if req.DryRun {
		g.out.Warn("Dry run - playlist not saved")
		return result, nil
	}
	if len(tracks) == 0 {
		g.out.Warn("No songs found in the catalog; nothing saved")
		return result, nil
	}
	if err := g.store.Insert(ctx, pl); err != nil {
		return Result{}, fmt.Errorf("save playlist: %w", err)
	}
	g.logger.Info("playlist saved", "id", pl.ID, "tracks", len(pl.Tracks))
	return result, nil
}

func (g *Generator) complete(ctx context.Context, req Request) (string, error) {
	if len(req.Image) > 0 {
		if g.describer == nil {
			return "", errors.New("image playlists need a vision-capable provider (openai)")
		}
		g.out.Info("Describing image...")
		text, err := g.describer.DescribeImage(ctx, req.Image, req.ImageMIME)
		if err != nil {
			return "", fmt.Errorf("describe image: %w", err)
		}
		return text, nil
	}
	if req.Criteria == nil {
		return "", ErrNoCriteria
	}

	p := prompt.Build(req.Criteria)
	g.logger.Debug("sending prompt", "chars", len(p))
	g.out.Info("Asking for song suggestions...")
	text, err := g.completer.Complete(ctx, p)
	if err != nil {
		return "", fmt.Errorf("generate playlist: %w", err)
	}
	return text, nil
}

func playlistTitle(req Request, now time.Time) string {
	if req.Title != "" {
		return req.Title
	}
	if t, ok := req.Criteria.(interface{ Title() string }); ok && len(req.Image) == 0 {
		if title := t.Title(); title != "" {
			return title
		}
	}
	return "Playlist " + now.Format("Jan 2, 2006 at 3:04 PM")
}

func countSongLines(text string) int {
	n := 0
	for _, line := range parser.SplitLines(text) {
		if parser.Clean(line) != "" {
			n++
		}
	}
	return n
}

// dedupe keeps the first occurrence of each song, comparing catalog id and then
// normalized artist and title.
func dedupe(tracks []music.Track) ([]music.Track, int) {
	seen := map[string]struct{}{}
	out := make([]music.Track, 0, len(tracks))
	for _, t := range tracks {
		var keys []string
		if t.Artist != "" || t.Title != "" {
			keys = append(keys, t.Key())
		}
		if t.ID != "" {
			keys = append(keys, "id:"+t.ID)
		}
		dup := false
		for _, k := range keys {
			if _, ok := seen[k]; ok {
				dup = true
			}
		}
		if dup {
			continue
		}
		for _, k := range keys {
			seen[k] = struct{}{}
		}
		out = append(out, t)
	}
	return out, len(tracks) - len(out)
}

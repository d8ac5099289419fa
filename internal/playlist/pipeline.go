package playlist

import (
	"context"
	"log/slog"

	"vibify/internal/catalog"
	"vibify/internal/music"
	"vibify/internal/parser"
)

// Line outcomes reported to a Recorder.
const (
	OutcomeBlank      = "blank"
	OutcomeUnparsable = "unparsable"
)

// Recorder observes the outcome of every line the pipeline handles.
type Recorder interface {
	RecordLine(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordLine(string) {}

// Pipeline turns a model completion into catalog tracks, one line at a time.
type Pipeline struct {
	parser   *parser.Parser
	resolver *catalog.Resolver
	recorder Recorder
	logger   *slog.Logger
}

func NewPipeline(p *parser.Parser, r *catalog.Resolver, rec Recorder, logger *slog.Logger) *Pipeline {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Pipeline{parser: p, resolver: r, recorder: rec, logger: logger}
}

// ResolveAll parses and resolves every line of text in order. onProgress, when set,
// receives (i+1)*100/lines after each line whatever its outcome. Lines that fail to
// parse or resolve are skipped. If ctx ends between lines, the tracks found so far are
// returned with ctx.Err().
func (p *Pipeline) ResolveAll(ctx context.Context, text, playlistID string, onProgress func(int)) ([]music.Track, error) {
	lines := parser.SplitLines(text)
	tracks := []music.Track{}

	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("resolution interrupted", "line", i, "of", len(lines), "resolved", len(tracks))
			return tracks, err
		}

		if track, ok := p.resolveLine(ctx, line, playlistID); ok {
			tracks = append(tracks, track)
		}
		if onProgress != nil {
			onProgress((i + 1) * 100 / len(lines))
		}
	}

	p.logger.Info("resolved playlist", "lines", len(lines), "tracks", len(tracks))
	return tracks, nil
}

func (p *Pipeline) resolveLine(ctx context.Context, line, playlistID string) (music.Track, bool) {
	candidate, ok := p.parser.ParseLine(line)
	if !ok {
		if parser.Clean(line) == "" {
			p.recorder.RecordLine(OutcomeBlank)
		} else {
			p.recorder.RecordLine(OutcomeUnparsable)
		}
		return music.Track{}, false
	}

	track, outcome := p.resolver.Resolve(ctx, candidate.Artist, candidate.Title, playlistID)
	p.recorder.RecordLine(string(outcome))
	if track == nil {
		return music.Track{}, false
	}
	return *track, true
}

package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vibify/internal/catalog"
)

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	c := New()
	c.RecordLine("resolved")
	c.RecordLine("resolved")
	c.RecordLine("unparsable")
	c.RecordImport(3, 1)

	search := c.InstrumentSearcher(catalog.SearcherFunc(func(_ context.Context, term string) ([]catalog.Candidate, error) {
		switch term {
		case "boom":
			return nil, errors.New("down")
		case "none":
			return nil, nil
		}
		return []catalog.Candidate{{ID: "1"}}, nil
	}))
	for _, term := range []string{"hit", "none", "boom"} {
		_, _ = search.Search(context.Background(), term)
	}

	path := filepath.Join(t.TempDir(), "vibify.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	out := string(b)
	for _, want := range []string{
		`vibify_lines_total{outcome="resolved"} 2`,
		`vibify_lines_total{outcome="unparsable"} 1`,
		`vibify_import_tracks_total{result="added"} 3`,
		`vibify_catalog_search_seconds_count{result="ok"} 1`,
		`vibify_catalog_search_seconds_count{result="empty"} 1`,
		`vibify_catalog_search_seconds_count{result="error"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestInstrumentSearcherPassesThrough(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("down")
	c := New()
	s := c.InstrumentSearcher(catalog.SearcherFunc(func(context.Context, string) ([]catalog.Candidate, error) {
		return nil, wantErr
	}))
	if _, err := s.Search(context.Background(), "x"); !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped searcher error, got %v", err)
	}
	mfs, err := c.Gatherer().Gather()
	if err != nil || len(mfs) == 0 {
		t.Fatalf("gather: %v %d", err, len(mfs))
	}
}

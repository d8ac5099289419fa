package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"vibify/internal/ai"
	"vibify/internal/catalog"
	"vibify/internal/config"
	"vibify/internal/output"
	"vibify/internal/parser"
	"vibify/internal/playlist"
	"vibify/internal/prompt"
)

type generateOptions struct {
	Provider      string
	Count         int
	Mood          string
	Activity      string
	Genres        []string
	Artist        string
	Decade        int
	Language      string
	Location      string
	Preferences   string
	Instrumentals bool
	NoVocals      bool
	BPM           string
	Image         string
	Title         string
	Country       string
	DryRun        bool
}

const maxSongs = 50

// structuredFlags switch generation from a free-text prompt to SearchCriteria.
var structuredFlags = []string{"mood", "activity", "genre", "artist", "decade", "language", "location", "instrumentals", "no-vocals", "bpm"}

func (a *app) generateCmd() *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate [prompt...]",
		Short: "Generate a playlist from a prompt, criteria flags or an image",
		Example: `  vibify generate "rainy sunday morning coffee"
  vibify generate --mood happy --genre Pop=0.8 --genre Funk=0.4 --decade 1980
  vibify generate --image beach.jpg --dry-run`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Provider, "provider", "p", "", "AI provider: openai|claude|gemini|grok|sample")
	f.IntVarP(&opts.Count, "count", "n", 0, "Number of songs to ask for")
	f.StringVar(&opts.Mood, "mood", "", "Mood, e.g. happy or melancholic")
	f.StringVar(&opts.Activity, "activity", "", "Activity, e.g. running or studying")
	f.StringArrayVarP(&opts.Genres, "genre", "g", nil, "Genre with optional weight, e.g. Rock=0.7 (repeatable)")
	f.StringVar(&opts.Artist, "artist", "", "Favorite artist to build around")
	f.IntVar(&opts.Decade, "decade", 0, "Decade, e.g. 1990")
	f.StringVar(&opts.Language, "language", "", "Lyrics language")
	f.StringVar(&opts.Location, "location", "", "Listener location as lat,lon")
	f.StringVar(&opts.Preferences, "preferences", "", "Anything else the playlist should respect")
	f.BoolVar(&opts.Instrumentals, "instrumentals", false, "Include instrumental tracks")
	f.BoolVar(&opts.NoVocals, "no-vocals", false, "Exclude songs with vocals")
	f.StringVar(&opts.BPM, "bpm", "", "Tempo range as min-max, e.g. 90-130")
	f.StringVar(&opts.Image, "image", "", "Build the playlist from a photo instead of text")
	f.StringVar(&opts.Title, "title", "", "Playlist title")
	f.StringVar(&opts.Country, "country", "", "Catalog storefront country code")
	f.BoolVar(&opts.DryRun, "dry-run", false, "Resolve songs without saving the playlist")
	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, args []string, opts generateOptions) error {
	ctx := cmd.Context()

	req, err := a.buildRequest(cmd.Flags(), args, opts)
	if err != nil {
		return err
	}

	provider := a.cfg.Provider
	if opts.Provider != "" {
		provider = config.Provider(strings.ToLower(opts.Provider))
	}
	keys := ai.APIKeys{
		OpenAI:    a.cfg.Keys.OpenAI,
		Anthropic: a.cfg.Keys.Anthropic,
		Google:    a.cfg.Keys.Google,
		XAI:       a.cfg.Keys.XAI,
	}
	providers, err := ai.Providers(keys, string(provider))
	if err != nil {
		return err
	}
	completer := ai.NewFallback(a.logger, providers...)
	a.logger.Debug("providers", "order", completer.Names())

	country := a.cfg.Country
	if opts.Country != "" {
		country = strings.ToUpper(opts.Country)
	}
	itunes := catalog.NewITunes(catalog.ITunesOptions{BaseURL: a.catalogURL, Country: country}, a.logger)
	if !itunes.CheckConnection(ctx) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.New("iTunes catalog search is unreachable; check your network connection")
	}
	resolver := catalog.NewResolver(a.metrics.InstrumentSearcher(itunes), a.logger)
	pipeline := playlist.NewPipeline(parser.New(a.logger), resolver, a.metrics, a.logger)

	var store playlist.Store
	if !req.DryRun {
		s, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		store = s
	}

	gen := playlist.NewGenerator(playlist.GeneratorOptions{
		Completer: completer,
		Describer: describerFor(provider, keys),
		Pipeline:  pipeline,
		Store:     store,
		Output:    a.out,
		Logger:    a.logger,
	})
	res, err := gen.Generate(ctx, req)
	if err != nil {
		return err
	}

	if a.opts.JSON {
		return a.out.EmitJSON(res)
	}
	summary := fmt.Sprintf("%d of %d songs found", res.Resolved, res.TotalLines)
	if res.Duplicates > 0 {
		summary += fmt.Sprintf(" (%d duplicates dropped)", res.Duplicates)
	}
	if res.Resolved == 0 {
		a.out.Warn(summary)
		return nil
	}
	a.out.Success(summary)
	if !res.DryRun {
		a.out.Info(fmt.Sprintf("Saved %q as %s (%s)", res.Playlist.Title, shortID(res.Playlist.ID), output.Length(res.Playlist.Duration())))
	}
	return nil
}

func (a *app) buildRequest(flags *pflag.FlagSet, args []string, opts generateOptions) (playlist.Request, error) {
	req := playlist.Request{Title: opts.Title, DryRun: opts.DryRun}

	if opts.Image != "" {
		img, err := os.ReadFile(opts.Image)
		if err != nil {
			return req, fmt.Errorf("read image: %w", err)
		}
		req.Image = img
		req.ImageMIME = http.DetectContentType(img)
		if !strings.HasPrefix(req.ImageMIME, "image/") {
			return req, usageError{msg: fmt.Sprintf("--image %s is not an image (%s)", opts.Image, req.ImageMIME)}
		}
		return req, nil
	}

	count := a.cfg.Count
	if flags.Changed("count") {
		if opts.Count < 1 || opts.Count > maxSongs {
			return req, usageError{msg: fmt.Sprintf("--count %d: must be between 1 and %d", opts.Count, maxSongs)}
		}
		count = opts.Count
	}
	text := a.promptFrom(args)

	if anyChanged(flags, structuredFlags...) {
		c, err := searchCriteria(opts, count)
		if err != nil {
			return req, err
		}
		c.Preferences = strings.TrimSpace(strings.Join([]string{c.Preferences, text}, " "))
		req.Criteria = c
		return req, nil
	}

	if text == "" {
		return req, usageError{msg: "usage: vibify generate <prompt> (or pipe the prompt on stdin, or pass criteria flags)"}
	}
	if req.Title == "" {
		req.Title = prompt.Text(text).Title()
	}
	req.Criteria = prompt.Text(fmt.Sprintf("%s\nNumber of songs: %d", text, count))
	return req, nil
}

func searchCriteria(opts generateOptions, count int) (prompt.SearchCriteria, error) {
	c := prompt.DefaultSearchCriteria()
	c.Mood = opts.Mood
	c.Activity = opts.Activity
	c.FavoriteArtist = opts.Artist
	c.Decade = opts.Decade
	c.NumberOfSongs = count
	c.Preferences = opts.Preferences
	c.IncludeInstrumentals = opts.Instrumentals
	c.ExcludeVocals = opts.NoVocals
	if opts.Language != "" {
		c.Language = opts.Language
	}

	genres, err := parseGenres(opts.Genres)
	if err != nil {
		return c, err
	}
	c.Genres = genres

	if opts.BPM != "" {
		lo, hi, err := parseBPM(opts.BPM)
		if err != nil {
			return c, err
		}
		c.BPMMin, c.BPMMax = lo, hi
	}
	if opts.Location != "" {
		loc := prompt.ParseLocation(opts.Location)
		if loc == nil {
			return c, usageError{msg: fmt.Sprintf("--location %q: expected lat,lon", opts.Location)}
		}
		c.Location = loc
	}
	return c, nil
}

// parseGenres reads "Name" or "Name=weight" values. A bare name weighs 1.
func parseGenres(values []string) (map[string]float64, error) {
	out := map[string]float64{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			name, weight, hasWeight := strings.Cut(part, "=")
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, usageError{msg: fmt.Sprintf("--genre %q: missing genre name", part)}
			}
			w := 1.0
			if hasWeight {
				f, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
				if err != nil || f < 0 || f > 1 {
					return nil, usageError{msg: fmt.Sprintf("--genre %q: weight must be between 0 and 1", part)}
				}
				w = f
			}
			out[name] = w
		}
	}
	return out, nil
}

func parseBPM(s string) (int, int, error) {
	lo, hi, ok := strings.Cut(s, "-")
	from, err1 := strconv.Atoi(strings.TrimSpace(lo))
	to, err2 := strconv.Atoi(strings.TrimSpace(hi))
	if !ok || err1 != nil || err2 != nil || from <= 0 || to < from {
		return 0, 0, usageError{msg: fmt.Sprintf("--bpm %q: expected min-max, e.g. 90-130", s)}
	}
	return from, to, nil
}

// describerFor picks the vision backend. Only OpenAI and the offline sample can
// describe images.
func describerFor(provider config.Provider, keys ai.APIKeys) ai.Describer {
	switch {
	case provider == config.ProviderSample:
		return ai.Sample{}
	case keys.OpenAI != "":
		return ai.NewOpenAI(keys.OpenAI)
	default:
		return nil
	}
}

func anyChanged(flags *pflag.FlagSet, names ...string) bool {
	for _, n := range names {
		if flags.Changed(n) {
			return true
		}
	}
	return false
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

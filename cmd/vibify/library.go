package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vibify/internal/output"
	"vibify/internal/playlist"
	"vibify/internal/storage"
)

func (a *app) historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:          "history",
		Short:        "List saved playlists, newest first",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			items, err := store.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if a.opts.JSON {
				return a.out.EmitJSON(items)
			}
			if len(items) == 0 {
				a.out.Info("No playlists yet. Try: vibify generate \"sunny road trip\"")
				return nil
			}
			for _, s := range items {
				if a.opts.Plain {
					a.out.Print(fmt.Sprintf("%s\t%s\t%d\t%s", s.ID, s.Title, s.TrackCount, s.CreatedAt.Format("2006-01-02T15:04:05Z07:00")))
					continue
				}
				a.out.Print(fmt.Sprintf("%s  %s  %s", a.out.Gray(shortID(s.ID)), a.out.Bold(s.Title),
					a.out.Gray(fmt.Sprintf("%s songs, %s", output.Count(s.TrackCount), output.Ago(s.CreatedAt)))))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum playlists to list (0 for all)")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "show <id>",
		Short:        "Show a saved playlist and its songs",
		Args:         exactArgs(1, "show <id>"),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			pl, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return lookupError(args[0], err)
			}
			if a.opts.JSON {
				return a.out.EmitJSON(pl)
			}

			a.out.Print(a.out.Bold(pl.Title))
			details := []string{
				output.Count(len(pl.Tracks)) + " songs",
				output.Length(pl.Duration()),
				"created " + output.Ago(pl.CreatedAt),
			}
			if genres := pl.TopGenres(3); len(genres) > 0 {
				details = append(details, strings.Join(genres, ", "))
			}
			a.out.Print(a.out.Gray(strings.Join(details, " · ")))
			a.out.Print("")
			for i, t := range pl.Tracks {
				line := fmt.Sprintf("%2d. %s - %s", i+1, t.Artist, t.Title)
				if t.IsExplicit {
					line += " " + a.out.Yellow("[E]")
				}
				a.out.Print(line + " " + a.out.Gray(t.Album))
			}
			return nil
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var format, outPath string
	cmd := &cobra.Command{
		Use:          "export <id>",
		Short:        "Write a saved playlist as JSON or YAML",
		Args:         exactArgs(1, "export <id> [--format json|yaml] [--output file]"),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			pl, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return lookupError(args[0], err)
			}
			if outPath == "" || outPath == "-" {
				return playlist.Export(a.stdout, pl, format)
			}

			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := playlist.Export(f, pl, format); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Wrote %s", outPath))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format: json|yaml")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "delete <id>",
		Short:        "Delete a saved playlist",
		Args:         exactArgs(1, "delete <id>"),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			pl, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return lookupError(args[0], err)
			}
			if err := store.Delete(cmd.Context(), pl.ID); err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Deleted %q", pl.Title))
			return nil
		},
	}
}

func (a *app) artworkCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "artwork <id> [url]",
		Short:        "Set a playlist's cover art, or reset it to the first song's",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return usageError{msg: "usage: vibify artwork <id> [url]"}
			}
			return nil
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			pl, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return lookupError(args[0], err)
			}

			artwork := ""
			if len(args) == 2 {
				u, err := url.Parse(args[1])
				if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
					return usageError{msg: fmt.Sprintf("artwork url %q: expected an http(s) URL", args[1])}
				}
				artwork = u.String()
			} else if len(pl.Tracks) > 0 {
				artwork = pl.Tracks[0].ArtworkURL
			}
			if err := store.UpdateArtwork(cmd.Context(), pl.ID, artwork); err != nil {
				return err
			}
			if artwork == "" {
				a.out.Warn(fmt.Sprintf("Cleared artwork for %q", pl.Title))
				return nil
			}
			a.out.Success(fmt.Sprintf("Artwork for %q set to %s", pl.Title, artwork))
			return nil
		},
	}
}

func lookupError(id string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%w: %s (see: vibify history)", err, id)
	case errors.Is(err, storage.ErrAmbiguous):
		return usageError{msg: fmt.Sprintf("%s: %v; use more characters", id, err)}
	}
	return err
}

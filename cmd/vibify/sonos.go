package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"vibify/internal/music"
	"vibify/internal/output"
	"vibify/internal/playlist"
	"vibify/internal/setup"
	"vibify/internal/sonos"
	"vibify/internal/storage"
)

func (a *app) sonosClient(ctx context.Context) (*sonos.Client, error) {
	client := sonos.NewClient(a.cfg.Sonos.URL, a.logger)
	if !client.CheckConnection(ctx) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		setup.PrintInstructions(a.out, a.cfg.Sonos.URL)
		return nil, fmt.Errorf("sonos bridge unreachable at %s", a.cfg.Sonos.URL)
	}
	return client, nil
}

func (a *app) importCmd() *cobra.Command {
	var room string
	var play, retryBlocked bool
	cmd := &cobra.Command{
		Use:          "import <id>",
		Short:        "Queue a saved playlist on a Sonos room",
		Args:         exactArgs(1, "import <id> [--room name] [--play]"),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			pl, err := store.Get(ctx, args[0])
			if err != nil {
				return lookupError(args[0], err)
			}

			client, err := a.sonosClient(ctx)
			if err != nil {
				return err
			}
			if room == "" {
				room = a.cfg.Sonos.DefaultRoom
			}
			if room == "" {
				if room, err = client.DefaultRoom(ctx); err != nil {
					return err
				}
				a.logger.Debug("using default room", "room", room)
			}

			blocked, err := store.Blocklist(ctx)
			if err != nil {
				return err
			}
			if !retryBlocked {
				if skipped := dropBlocked(&pl, blocked); skipped > 0 {
					a.out.Warn(fmt.Sprintf("Skipping %d songs that failed on a previous import (use --retry-blocked to try again)", skipped))
				}
			}

			importer := sonos.NewImporter(client, room)
			a.out.Info(fmt.Sprintf("Queueing %q on %s...", pl.Title, importer.Room()))
			res, err := playlist.Import(ctx, importer, pl, func(pct int) {
				a.out.Progress("Adding songs", pct)
			})
			a.metrics.RecordImport(res.Added, len(res.Failed))
			if len(res.Failed) > 0 {
				if blockErr := store.BlockTracks(ctx, res.Failed, time.Now()); blockErr != nil {
					a.logger.Warn("remember failed tracks", "err", blockErr)
				}
				for _, t := range res.Failed {
					a.logger.Warn("track not available on sonos", "artist", t.Artist, "title", t.Title, "id", t.ID)
				}
			}
			if err != nil {
				return err
			}
			for _, id := range recovered(pl, res, blocked) {
				if err := store.Unblock(ctx, id); err != nil {
					a.logger.Warn("unblock track", "id", id, "err", err)
				}
			}

			if play {
				if err := importer.Play(ctx); err != nil {
					return fmt.Errorf("start playback: %w", err)
				}
			}

			if a.opts.JSON {
				return a.out.EmitJSON(struct {
					Room string `json:"room"`
					playlist.ImportResult
					Playing bool `json:"playing"`
				}{importer.Room(), res, play})
			}
			summary := fmt.Sprintf("Added %d of %d songs to %s", res.Added, len(pl.Tracks), importer.Room())
			if len(res.Failed) > 0 {
				a.out.Warn(summary)
			} else {
				a.out.Success(summary)
			}
			if play {
				a.out.Info("Playing")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&room, "room", "r", "", "Sonos room (default: config, then first zone)")
	cmd.Flags().BoolVar(&play, "play", false, "Start playback after queueing")
	cmd.Flags().BoolVar(&retryBlocked, "retry-blocked", false, "Also try songs that failed before")
	return cmd
}

// dropBlocked removes tracks a speaker refused before and returns how many were removed.
func dropBlocked(pl *music.Playlist, blocked map[string]storage.BlockedTrack) int {
	if len(blocked) == 0 {
		return 0
	}
	kept := make([]music.Track, 0, len(pl.Tracks))
	for _, t := range pl.Tracks {
		if _, ok := blocked[t.ID]; ok {
			continue
		}
		kept = append(kept, t)
	}
	skipped := len(pl.Tracks) - len(kept)
	pl.Tracks = kept
	return skipped
}

// recovered lists blocked track ids that were imported without error this time.
func recovered(pl music.Playlist, res playlist.ImportResult, blocked map[string]storage.BlockedTrack) []string {
	failed := map[string]bool{}
	for _, t := range res.Failed {
		failed[t.ID] = true
	}
	ids := []string{}
	for _, t := range pl.Tracks {
		if _, ok := blocked[t.ID]; ok && !failed[t.ID] {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func (a *app) blockedCmd() *cobra.Command {
	var clearIDs []string
	var clearAll bool
	cmd := &cobra.Command{
		Use:          "blocked",
		Short:        "List or clear songs skipped because a speaker refused them",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			blocked, err := store.Blocklist(ctx)
			if err != nil {
				return err
			}

			if clearAll {
				for id := range blocked {
					clearIDs = append(clearIDs, id)
				}
			}
			if len(clearIDs) > 0 {
				for _, id := range clearIDs {
					if err := store.Unblock(ctx, id); err != nil {
						return err
					}
				}
				a.out.Success(fmt.Sprintf("Cleared %d blocked songs", len(clearIDs)))
				return nil
			}

			items := make([]storage.BlockedTrack, 0, len(blocked))
			for _, b := range blocked {
				items = append(items, b)
			}
			sort.Slice(items, func(i, j int) bool { return items[i].FailedAt.After(items[j].FailedAt) })
			if a.opts.JSON {
				return a.out.EmitJSON(items)
			}
			if len(items) == 0 {
				a.out.Info("No blocked songs")
				return nil
			}
			for _, b := range items {
				a.out.Print(fmt.Sprintf("%s  %s - %s %s", a.out.Gray(b.TrackID), b.Artist, b.Title, a.out.Gray(output.Ago(b.FailedAt))))
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&clearIDs, "clear", nil, "Unblock a track id (repeatable)")
	cmd.Flags().BoolVar(&clearAll, "all", false, "Unblock every track")
	return cmd
}

func (a *app) roomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "rooms",
		Short:        "List Sonos rooms the bridge can see",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.sonosClient(cmd.Context())
			if err != nil {
				return err
			}
			rooms, err := client.Rooms(cmd.Context())
			if err != nil {
				return err
			}
			if a.opts.JSON {
				return a.out.EmitJSON(rooms)
			}
			for _, r := range rooms {
				line := r.Name
				if r.GroupSize > 1 && r.Coordinator != r.Name {
					line += " " + a.out.Gray("(grouped with "+r.Coordinator+")")
				}
				a.out.Print(line)
			}
			return nil
		},
	}
}

func (a *app) bridgeCmd() *cobra.Command {
	var installOnly bool
	cmd := &cobra.Command{
		Use:          "bridge",
		Short:        "Install and run node-sonos-http-api",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := setup.NewBridge()
			if err := b.Install(cmd.Context(), a.out); err != nil {
				return err
			}
			if installOnly {
				a.out.Success("Installed to " + b.Dir)
				return nil
			}
			return b.Serve(cmd.Context(), a.out)
		},
	}
	cmd.Flags().BoolVar(&installOnly, "install-only", false, "Install or update without starting the bridge")
	return cmd
}

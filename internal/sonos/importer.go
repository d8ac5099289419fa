package sonos

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// Importer queues a playlist's Apple Music tracks on one room. Sonos has no named
// playlists through the bridge, so "creating" a playlist replaces the room's queue.
type Importer struct {
	client *Client
	room   string
}

func NewImporter(client *Client, room string) *Importer {
	return &Importer{client: client, room: room}
}

func (i *Importer) Room() string { return i.room }

func (i *Importer) CreatePlaylist(ctx context.Context, name string) error {
	if i.room == "" {
		return errors.New("no room selected")
	}
	if err := i.Pause(ctx); err != nil {
		i.client.logger.Debug("pause before clearing queue failed", "room", i.room, "err", err)
	}
	if err := i.client.get(ctx, roomPath(i.room, "clearqueue"), nil); err != nil {
		return fmt.Errorf("clear queue in %s: %w", i.room, err)
	}
	i.client.logger.Info("queue cleared for playlist", "room", i.room, "playlist", name)
	return nil
}

func (i *Importer) AddTrack(ctx context.Context, trackID string) error {
	if trackID == "" {
		return errors.New("track has no catalog id")
	}
	return i.client.get(ctx, roomPath(i.room, "applemusic", "queue", "song:"+trackID), nil)
}

// Play starts the room's queue from its first track.
func (i *Importer) Play(ctx context.Context) error {
	if uuid := i.client.coordinatorUUID(ctx, i.room); uuid != "" {
		queueURI := url.QueryEscape("x-rincon-queue:" + uuid + "#0")
		if err := i.client.get(ctx, roomPath(i.room, "setavtransporturi", queueURI), nil); err != nil {
			i.client.logger.Debug("select queue failed", "room", i.room, "err", err)
		}
	}
	if err := i.client.get(ctx, roomPath(i.room, "trackseek", "1"), nil); err != nil {
		i.client.logger.Debug("seek to first track failed", "room", i.room, "err", err)
	}
	return i.client.get(ctx, roomPath(i.room, "play"), nil)
}

func (i *Importer) Pause(ctx context.Context) error {
	return i.client.get(ctx, roomPath(i.room, "pause"), nil)
}

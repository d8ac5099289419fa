package sonos

import (
	"context"
	"errors"
	"sort"
)

var ErrNoSpeakers = errors.New("no sonos speakers found")

type zone struct {
	Coordinator player   `json:"coordinator"`
	Members     []player `json:"members"`
}

type player struct {
	RoomName string `json:"roomName"`
	UUID     string `json:"uuid"`
}

// Room is a speaker as grouped by the bridge.
type Room struct {
	Name        string `json:"name"`
	Coordinator string `json:"coordinator"`
	GroupSize   int    `json:"groupSize"`
}

func (c *Client) zones(ctx context.Context) ([]zone, error) {
	var zones []zone
	if err := c.get(ctx, "/zones", &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

// Rooms lists every room once, sorted by name.
func (c *Client) Rooms(ctx context.Context) ([]Room, error) {
	zones, err := c.zones(ctx)
	if err != nil {
		return nil, err
	}
	byName := map[string]Room{}
	for _, z := range zones {
		size := max(len(z.Members), 1)
		add := func(p player) {
			if p.RoomName == "" {
				return
			}
			if _, ok := byName[p.RoomName]; !ok {
				byName[p.RoomName] = Room{Name: p.RoomName, Coordinator: z.Coordinator.RoomName, GroupSize: size}
			}
		}
		add(z.Coordinator)
		for _, m := range z.Members {
			add(m)
		}
	}
	rooms := make([]Room, 0, len(byName))
	for _, r := range byName {
		rooms = append(rooms, r)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms, nil
}

// DefaultRoom is the coordinator of the first zone the bridge reports.
func (c *Client) DefaultRoom(ctx context.Context) (string, error) {
	zones, err := c.zones(ctx)
	if err != nil {
		return "", err
	}
	if len(zones) == 0 || zones[0].Coordinator.RoomName == "" {
		return "", ErrNoSpeakers
	}
	return zones[0].Coordinator.RoomName, nil
}

func (c *Client) coordinatorUUID(ctx context.Context, room string) string {
	zones, err := c.zones(ctx)
	if err != nil {
		return ""
	}
	for _, z := range zones {
		if z.Coordinator.RoomName == room {
			return z.Coordinator.UUID
		}
		for _, m := range z.Members {
			if m.RoomName == room {
				return z.Coordinator.UUID
			}
		}
	}
	return ""
}

package music

import (
	"sort"
	"strings"
	"time"

	"github.com/gosimple/unidecode"
)

const UnknownAlbum = "Unknown Album"

// genericGenre is attached by the catalog to almost every track and carries no signal.
const genericGenre = "Music"

// Track is a catalog-resolved song. Everything except PlaylistID is fixed once the
// resolver creates it.
type Track struct {
	ID          string         `json:"id" yaml:"id"`
	Title       string         `json:"title" yaml:"title"`
	Artist      string         `json:"artist" yaml:"artist"`
	Album       string         `json:"album" yaml:"album"`
	ArtworkURL  string         `json:"artworkUrl,omitempty" yaml:"artworkUrl,omitempty"`
	ReleaseDate *time.Time     `json:"releaseDate,omitempty" yaml:"releaseDate,omitempty"`
	GenreNames  []string       `json:"genreNames" yaml:"genreNames"`
	IsExplicit  bool           `json:"isExplicit" yaml:"isExplicit"`
	PreviewURL  string         `json:"previewUrl,omitempty" yaml:"previewUrl,omitempty"`
	Duration    *time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
	PlaylistID  string         `json:"playlistId,omitempty" yaml:"playlistId,omitempty"`
}

// Key identifies a song independently of catalog ids, folding case and diacritics.
func (t Track) Key() string {
	return SongKey(t.Artist, t.Title)
}

func SongKey(artist, title string) string {
	return Normalize(artist) + ":::" + Normalize(title)
}

// Normalize lowercases s and transliterates it to ASCII so that "Beyoncé" and
// "beyonce" compare equal.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
}

type Playlist struct {
	ID         string    `json:"id" yaml:"id"`
	Title      string    `json:"title" yaml:"title"`
	CreatedAt  time.Time `json:"createdAt" yaml:"createdAt"`
	Tracks     []Track   `json:"tracks" yaml:"tracks"`
	ArtworkURL string    `json:"artworkUrl,omitempty" yaml:"artworkUrl,omitempty"`
}

// Duration sums the durations the catalog reported; tracks without one count as zero.
func (p Playlist) Duration() time.Duration {
	var total time.Duration
	for _, t := range p.Tracks {
		if t.Duration != nil {
			total += *t.Duration
		}
	}
	return total
}

// TopGenres returns up to n genre names ordered by how many tracks carry them.
func (p Playlist) TopGenres(n int) []string {
	counts := map[string]int{}
	for _, t := range p.Tracks {
		for _, g := range t.GenreNames {
			if g == "" || g == genericGenre {
				continue
			}
			counts[g]++
		}
	}
	genres := make([]string, 0, len(counts))
	for g := range counts {
		genres = append(genres, g)
	}
	sort.Slice(genres, func(i, j int) bool {
		if counts[genres[i]] != counts[genres[j]] {
			return counts[genres[i]] > counts[genres[j]]
		}
		return genres[i] < genres[j]
	})
	if n >= 0 && len(genres) > n {
		genres = genres[:n]
	}
	return genres
}

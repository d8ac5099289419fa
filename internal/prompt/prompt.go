// Package prompt renders playlist criteria into the text sent to a completion model.
package prompt

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

const Instructions = "Generate a playlist that matches the criteria below as a numbered list, one song per line with its title and artist. Only list the songs, don't explain anything."

const NoGenre = "No Genre"

// Criteria is anything that can describe the playlist it wants.
type Criteria interface {
	Prompt() string
}

// Build joins the fixed instructions and the rendered criteria with a blank line.
func Build(c Criteria) string {
	return Instructions + "\n\n" + c.Prompt()
}

// Text is a free-form request typed by the user.
type Text string

func (t Text) Prompt() string { return string(t) }

// Title shortens the request to something usable as a playlist name.
func (t Text) Title() string {
	s := strings.Join(strings.Fields(string(t)), " ")
	if utf8.RuneCountInString(s) <= 40 {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:40])) + "…"
}

type Location struct {
	Lat float64
	Lon float64
}

func (l Location) String() string {
	return strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(l.Lon, 'f', -1, 64)
}

// SearchCriteria is the structured form of a playlist request.
type SearchCriteria struct {
	Genres               map[string]float64
	Mood                 string
	Activity             string
	FavoriteArtist       string
	Decade               int
	NumberOfSongs        int
	Preferences          string
	IncludeInstrumentals bool
	ExcludeVocals        bool
	BPMMin               int
	BPMMax               int
	Language             string
	Location             *Location
}

func DefaultSearchCriteria() SearchCriteria {
	return SearchCriteria{
		Genres:   map[string]float64{},
		BPMMin:   60,
		BPMMax:   200,
		Language: "English",
	}
}

// Prompt renders one component per line. Empty components are left out; the BPM
// range is always present.
func (c SearchCriteria) Prompt() string {
	var lines []string
	if len(c.Genres) > 0 {
		names := sortedGenres(c.Genres)
		parts := make([]string, 0, len(names))
		for _, g := range names {
			parts = append(parts, g+": "+strconv.FormatFloat(c.Genres[g], 'f', -1, 64))
		}
		lines = append(lines, "Genres: "+strings.Join(parts, ", "))
	}
	if c.Mood != "" {
		lines = append(lines, "Mood: "+c.Mood)
	}
	if c.Activity != "" {
		lines = append(lines, "Activity: "+c.Activity)
	}
	if c.FavoriteArtist != "" {
		lines = append(lines, "Artist like: "+c.FavoriteArtist)
	}
	if c.Decade > 0 {
		lines = append(lines, fmt.Sprintf("Decade: %ds", c.Decade))
	}
	if c.NumberOfSongs > 0 {
		lines = append(lines, fmt.Sprintf("Number of songs: %d", c.NumberOfSongs))
	}
	if c.Preferences != "" {
		lines = append(lines, "Preferences: "+c.Preferences)
	}
	if c.IncludeInstrumentals {
		lines = append(lines, "Include: Instrumentals")
	}
	if c.ExcludeVocals {
		lines = append(lines, "Exclude: Vocals")
	}
	lines = append(lines, fmt.Sprintf("BPM range: %d-%d", c.BPMMin, c.BPMMax))
	if c.Language != "" {
		lines = append(lines, "Language: "+c.Language)
	}
	if c.Location != nil {
		lines = append(lines, "Location: "+c.Location.String())
	}
	return strings.Join(lines, "\n")
}

// PrimaryGenre is the highest-weighted genre, ties going to the name that sorts first.
func (c SearchCriteria) PrimaryGenre() string {
	best := ""
	for _, g := range sortedGenres(c.Genres) {
		if best == "" || c.Genres[g] > c.Genres[best] {
			best = g
		}
	}
	if best == "" {
		return NoGenre
	}
	return best
}

func (c SearchCriteria) Title() string { return c.PrimaryGenre() }

func sortedGenres(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for g := range m {
		if strings.TrimSpace(g) != "" {
			names = append(names, g)
		}
	}
	sort.Strings(names)
	return names
}

// ParseLocation reads "lat,lon". Anything else yields nil.
func ParseLocation(s string) *Location {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	return &Location{Lat: lat, Lon: lon}
}

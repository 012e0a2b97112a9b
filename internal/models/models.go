package models

import (
	"fmt"
	"strings"
)

// DefaultDraftName is the name a fresh or reset draft carries.
const DefaultDraftName = "New Playlist"

// Track is a flat view of a catalog track.
//
// Artist holds the first listed artist only.
type Track struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
	URI    string `json:"uri"`
}

// Validate reports a track that cannot be added to a playlist.
func (t Track) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("track id is required")
	}
	if t.URI == "" {
		return fmt.Errorf("track %s has no uri", t.ID)
	}
	return nil
}

// String renders the track as "Name - Artist (Album)".
func (t Track) String() string {
	var b strings.Builder
	b.WriteString(t.Name)
	if t.Artist != "" {
		b.WriteString(" - ")
		b.WriteString(t.Artist)
	}
	if t.Album != "" {
		fmt.Fprintf(&b, " (%s)", t.Album)
	}
	return b.String()
}

// Draft is an ordered playlist under construction.
type Draft struct {
	Name   string  `json:"name"`
	Tracks []Track `json:"tracks"`
}

// NewDraft returns an empty draft named [DefaultDraftName].
func NewDraft() *Draft {
	return &Draft{Name: DefaultDraftName, Tracks: []Track{}}
}

// Contains reports whether a track with id is already in the draft.
func (d *Draft) Contains(id string) bool {
	for _, t := range d.Tracks {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Add appends track unless a track with the same id is present. It reports whether the draft changed.
func (d *Draft) Add(track Track) bool {
	if d.Contains(track.ID) {
		return false
	}
	d.Tracks = append(d.Tracks, track)
	return true
}

// Remove drops the track with id, keeping the order of the rest. It reports whether the draft changed.
func (d *Draft) Remove(id string) bool {
	for i, t := range d.Tracks {
		if t.ID == id {
			d.Tracks = append(d.Tracks[:i:i], d.Tracks[i+1:]...)
			return true
		}
	}
	return false
}

// Rename sets the draft name. Surrounding whitespace is trimmed.
func (d *Draft) Rename(name string) {
	d.Name = strings.TrimSpace(name)
}

// URIs returns the track URIs in draft order.
func (d *Draft) URIs() []string {
	uris := make([]string, 0, len(d.Tracks))
	for _, t := range d.Tracks {
		uris = append(uris, t.URI)
	}
	return uris
}

// Reset restores the default name and clears the tracks.
func (d *Draft) Reset() {
	d.Name = DefaultDraftName
	d.Tracks = []Track{}
}

// Len returns the number of tracks in the draft.
func (d *Draft) Len() int { return len(d.Tracks) }

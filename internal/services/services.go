package services

import (
	"context"

	"github.com/desertthunder/jam/internal/models"
)

// PlaylistBuilder is what the CLI and TUI need from the API client.
type PlaylistBuilder interface {
	// Search returns matching tracks, or an empty slice on any failure.
	Search(ctx context.Context, query string) []models.Track

	// SavePlaylist creates a playlist named name holding uris.
	// It is a no-op returning (nil, nil) when name or uris is empty. A failed request is logged and also
	// gives (nil, nil); only a missing credential is returned as an error.
	SavePlaylist(ctx context.Context, name string, uris []string) (*SaveResult, error)

	// Track fetches a single track by catalog id.
	Track(ctx context.Context, id string) (models.Track, error)
}

// TrackCacher stores tracks seen in search results.
type TrackCacher interface {
	CacheTracks(tracks []models.Track) error
}

// SaveResult describes a completed save.
type SaveResult struct {
	UserID      string `json:"user_id"`
	PlaylistID  string `json:"playlist_id"`
	Name        string `json:"name"`
	URL         string `json:"url,omitempty"`
	TracksAdded int    `json:"tracks_added"`
	SnapshotID  string `json:"snapshot_id,omitempty"`
}

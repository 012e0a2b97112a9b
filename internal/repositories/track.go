package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/jam/internal/models"
	"github.com/desertthunder/jam/internal/shared"
)

// TrackRepository caches tracks seen in search results, keyed by catalog id.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

const upsertTrack = `
	INSERT INTO tracks (id, name, artist, album, uri, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		artist = excluded.artist,
		album = excluded.album,
		uri = excluded.uri,
		updated_at = excluded.updated_at
`

// Upsert inserts track or refreshes the cached copy.
func (r *TrackRepository) Upsert(track models.Track) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	if _, err := r.db.Exec(upsertTrack, track.ID, track.Name, track.Artist, track.Album, track.URI, now, now); err != nil {
		return fmt.Errorf("failed to upsert track: %w", err)
	}
	return nil
}

// CacheTracks upserts every valid track in one transaction. Tracks without an id or uri are skipped.
func (r *TrackRepository) CacheTracks(tracks []models.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	return withTx(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(upsertTrack)
		if err != nil {
			return fmt.Errorf("failed to prepare track upsert: %w", err)
		}
		defer stmt.Close()

		now := time.Now()
		for _, t := range tracks {
			if t.Validate() != nil {
				continue
			}
			if _, err := stmt.Exec(t.ID, t.Name, t.Artist, t.Album, t.URI, now, now); err != nil {
				return fmt.Errorf("failed to cache track %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

// Get returns the cached track with id. A miss wraps [shared.ErrTrackNotFound].
func (r *TrackRepository) Get(id string) (models.Track, error) {
	var t models.Track
	err := r.db.QueryRow(`
		SELECT id, name, artist, album, uri
		FROM tracks
		WHERE id = ?
	`, id).Scan(&t.ID, &t.Name, &t.Artist, &t.Album, &t.URI)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Track{}, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	if err != nil {
		return models.Track{}, fmt.Errorf("failed to query track: %w", err)
	}
	return t, nil
}

// Recent returns up to limit cached tracks, most recently seen first.
func (r *TrackRepository) Recent(limit int) ([]models.Track, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(`
		SELECT id, name, artist, album, uri
		FROM tracks
		ORDER BY updated_at DESC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := []models.Track{}
	for rows.Next() {
		var t models.Track
		if err := rows.Scan(&t.ID, &t.Name, &t.Artist, &t.Album, &t.URI); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/jam/internal/models"
)

// DraftRepository stores the single playlist draft.
//
// Every mutation loads the draft, applies the change through [models.Draft] and writes it back in one transaction.
type DraftRepository struct {
	db *sql.DB
}

// NewDraftRepository creates a new DraftRepository with the given database connection
func NewDraftRepository(db *sql.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

// Get returns the stored draft, or a fresh [models.NewDraft] when none has been saved.
func (r *DraftRepository) Get() (*models.Draft, error) {
	var draft *models.Draft
	err := withTx(r.db, func(tx *sql.Tx) error {
		d, err := loadDraft(tx)
		draft = d
		return err
	})
	return draft, err
}

// Save replaces the stored draft with d.
func (r *DraftRepository) Save(d *models.Draft) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		return storeDraft(tx, d)
	})
}

// Rename sets the draft name and returns the updated draft.
func (r *DraftRepository) Rename(name string) (*models.Draft, error) {
	return r.update(func(d *models.Draft) bool {
		d.Rename(name)
		return true
	})
}

// AddTrack appends track unless the draft already holds its id. It reports whether the draft changed.
func (r *DraftRepository) AddTrack(track models.Track) (bool, error) {
	if err := track.Validate(); err != nil {
		return false, fmt.Errorf("validation failed: %w", err)
	}

	var added bool
	_, err := r.update(func(d *models.Draft) bool {
		added = d.Add(track)
		return added
	})
	return added, err
}

// RemoveTrack drops the track with id. It reports whether the draft changed.
func (r *DraftRepository) RemoveTrack(id string) (bool, error) {
	var removed bool
	_, err := r.update(func(d *models.Draft) bool {
		removed = d.Remove(id)
		return removed
	})
	return removed, err
}

// Reset restores the default name and clears the tracks.
func (r *DraftRepository) Reset() error {
	_, err := r.update(func(d *models.Draft) bool {
		d.Reset()
		return true
	})
	return err
}

// update applies fn to the stored draft and persists it when fn reports a change.
func (r *DraftRepository) update(fn func(d *models.Draft) bool) (*models.Draft, error) {
	var draft *models.Draft
	err := withTx(r.db, func(tx *sql.Tx) error {
		d, err := loadDraft(tx)
		if err != nil {
			return err
		}
		draft = d
		if !fn(d) {
			return nil
		}
		return storeDraft(tx, d)
	})
	if err != nil {
		return nil, err
	}
	return draft, nil
}

func loadDraft(tx *sql.Tx) (*models.Draft, error) {
	draft := models.NewDraft()

	err := tx.QueryRow("SELECT name FROM drafts WHERE id = 1").Scan(&draft.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return draft, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query draft: %w", err)
	}

	rows, err := tx.Query(`
		SELECT track_id, name, artist, album, uri
		FROM draft_tracks
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query draft tracks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Track
		if err := rows.Scan(&t.ID, &t.Name, &t.Artist, &t.Album, &t.URI); err != nil {
			return nil, fmt.Errorf("failed to scan draft track: %w", err)
		}
		draft.Tracks = append(draft.Tracks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return draft, nil
}

func storeDraft(tx *sql.Tx, d *models.Draft) error {
	query := `
		INSERT INTO drafts (id, name, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at
	`
	if _, err := tx.Exec(query, d.Name, time.Now()); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM draft_tracks"); err != nil {
		return fmt.Errorf("failed to clear draft tracks: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO draft_tracks (track_id, position, name, artist, album, uri) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare draft track insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range d.Tracks {
		if _, err := stmt.Exec(t.ID, i, t.Name, t.Artist, t.Album, t.URI); err != nil {
			return fmt.Errorf("failed to insert draft track %s: %w", t.ID, err)
		}
	}

	return nil
}

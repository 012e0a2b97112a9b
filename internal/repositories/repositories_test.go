package repositories

import (
	"database/sql"
	"errors"
	"slices"
	"testing"

	"github.com/desertthunder/jam/internal/auth"
	"github.com/desertthunder/jam/internal/models"
	"github.com/desertthunder/jam/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

var (
	songA = models.Track{ID: "a", Name: "Song A", Artist: "Artist A", Album: "Album A", URI: "spotify:track:a"}
	songB = models.Track{ID: "b", Name: "Song B", Artist: "Artist B", Album: "Album B", URI: "spotify:track:b"}
	songC = models.Track{ID: "c", Name: "Song C", URI: "spotify:track:c"}
)

func TestKVStore(t *testing.T) {
	store := NewKVStore(setupTestDB(t))

	t.Run("missing key", func(t *testing.T) {
		if _, ok, err := store.Get(auth.TokenKey); ok || err != nil {
			t.Errorf("Get() = ok %v, err %v; want false, nil", ok, err)
		}
	})

	t.Run("set overwrites", func(t *testing.T) {
		if err := store.Set(auth.TokenKey, "first"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := store.Set(auth.TokenKey, "second"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		v, ok, err := store.Get(auth.TokenKey)
		if err != nil || !ok || v != "second" {
			t.Errorf("Get() = %q, %v, %v; want second", v, ok, err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := store.Delete(auth.TokenKey); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, ok, _ := store.Get(auth.TokenKey); ok {
			t.Error("expected key to be deleted")
		}
	})

	t.Run("backs the credential manager", func(t *testing.T) {
		m := auth.NewManager(auth.Options{ClientID: "c", RedirectURI: "http://127.0.0.1:3000/callback", Store: store})
		defer m.Invalidate()

		if _, err := m.CompleteAuthorization("#access_token=sqlite-token&expires_in=3600"); err != nil {
			t.Fatalf("CompleteAuthorization() error = %v", err)
		}

		fresh := auth.NewManager(auth.Options{ClientID: "c", RedirectURI: "http://127.0.0.1:3000/callback", Store: store})
		defer fresh.Invalidate()

		c, err := fresh.Credential()
		if err != nil || c.AccessToken != "sqlite-token" {
			t.Errorf("Credential() = %+v, %v", c, err)
		}
	})
}

func TestDraftRepository(t *testing.T) {
	t.Run("Get returns default draft", func(t *testing.T) {
		repo := NewDraftRepository(setupTestDB(t))

		d, err := repo.Get()
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if d.Name != models.DefaultDraftName || d.Len() != 0 {
			t.Errorf("unexpected draft %+v", d)
		}
	})

	t.Run("AddTrack is unique by id and keeps order", func(t *testing.T) {
		repo := NewDraftRepository(setupTestDB(t))

		for _, track := range []models.Track{songB, songA, songB, songC} {
			if _, err := repo.AddTrack(track); err != nil {
				t.Fatalf("AddTrack(%s) error = %v", track.ID, err)
			}
		}

		added, err := repo.AddTrack(songA)
		if err != nil {
			t.Fatalf("AddTrack() error = %v", err)
		}
		if added {
			t.Error("expected duplicate add to report false")
		}

		d, _ := repo.Get()
		want := []string{"spotify:track:b", "spotify:track:a", "spotify:track:c"}
		if got := d.URIs(); !slices.Equal(got, want) {
			t.Errorf("URIs() = %v, want %v", got, want)
		}
	})

	t.Run("AddTrack rejects invalid track", func(t *testing.T) {
		repo := NewDraftRepository(setupTestDB(t))

		if _, err := repo.AddTrack(models.Track{ID: "x"}); err == nil {
			t.Fatal("expected validation error for track without uri")
		}
	})

	t.Run("RemoveTrack", func(t *testing.T) {
		repo := NewDraftRepository(setupTestDB(t))
		repo.AddTrack(songA)
		repo.AddTrack(songB)

		removed, err := repo.RemoveTrack("a")
		if err != nil || !removed {
			t.Fatalf("RemoveTrack() = %v, %v", removed, err)
		}
		removed, err = repo.RemoveTrack("a")
		if err != nil || removed {
			t.Errorf("second RemoveTrack() = %v, %v; want false, nil", removed, err)
		}

		d, _ := repo.Get()
		if d.Len() != 1 || d.Tracks[0].ID != "b" {
			t.Errorf("unexpected tracks %+v", d.Tracks)
		}
	})

	t.Run("Rename and Reset", func(t *testing.T) {
		repo := NewDraftRepository(setupTestDB(t))
		repo.AddTrack(songA)

		d, err := repo.Rename("Road Trip")
		if err != nil {
			t.Fatalf("Rename() error = %v", err)
		}
		if d.Name != "Road Trip" {
			t.Errorf("expected Road Trip, got %q", d.Name)
		}

		if err := repo.Reset(); err != nil {
			t.Fatalf("Reset() error = %v", err)
		}

		d, _ = repo.Get()
		if d.Name != models.DefaultDraftName || d.Len() != 0 {
			t.Errorf("expected reset draft, got %+v", d)
		}
	})

	t.Run("Save replaces the draft", func(t *testing.T) {
		repo := NewDraftRepository(setupTestDB(t))
		repo.AddTrack(songA)

		if err := repo.Save(&models.Draft{Name: "Mix", Tracks: []models.Track{songC, songB}}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		d, _ := repo.Get()
		if d.Name != "Mix" || !slices.Equal(d.URIs(), []string{songC.URI, songB.URI}) {
			t.Errorf("unexpected draft %+v", d)
		}
	})
}

func TestTrackRepository(t *testing.T) {
	t.Run("Upsert and Get", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))

		if err := repo.Upsert(songA); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}

		renamed := songA
		renamed.Name = "Song A (Remastered)"
		if err := repo.Upsert(renamed); err != nil {
			t.Fatalf("second Upsert() error = %v", err)
		}

		got, err := repo.Get("a")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != renamed {
			t.Errorf("Get() = %+v, want %+v", got, renamed)
		}
	})

	t.Run("Get miss", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))

		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("Upsert rejects invalid track", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))

		if err := repo.Upsert(models.Track{Name: "no id"}); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("CacheTracks skips invalid tracks", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))

		if err := repo.CacheTracks([]models.Track{songA, {ID: "broken"}, songB}); err != nil {
			t.Fatalf("CacheTracks() error = %v", err)
		}

		recent, err := repo.Recent(10)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		if len(recent) != 2 {
			t.Fatalf("expected 2 cached tracks, got %d", len(recent))
		}
		if _, err := repo.Get("broken"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected invalid track to be skipped, got %v", err)
		}
	})

	t.Run("CacheTracks with nothing to cache", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))

		if err := repo.CacheTracks(nil); err != nil {
			t.Errorf("CacheTracks(nil) error = %v", err)
		}
	})
}

func TestRepositoriesClosedDatabase(t *testing.T) {
	db := setupTestDB(t)
	db.Close()

	if _, _, err := NewKVStore(db).Get(auth.TokenKey); err == nil {
		t.Error("expected KVStore.Get error on closed database")
	}
	if err := NewKVStore(db).Set(auth.TokenKey, "x"); err == nil {
		t.Error("expected KVStore.Set error on closed database")
	}
	if _, err := NewDraftRepository(db).Get(); err == nil {
		t.Error("expected DraftRepository.Get error on closed database")
	}
	if _, err := NewTrackRepository(db).Get("a"); err == nil || errors.Is(err, shared.ErrTrackNotFound) {
		t.Errorf("expected query error on closed database, got %v", err)
	}
}

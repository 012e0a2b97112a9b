package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/desertthunder/jam/internal/auth"
)

func TestBoltStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.db")

	store, err := NewBoltStore(path)
	if err != nil {
		t.Fatalf("NewBoltStore() error = %v", err)
	}
	defer store.Close()

	t.Run("missing key", func(t *testing.T) {
		if _, ok, err := store.Get("absent"); err != nil || ok {
			t.Errorf("Get() = ok %v, err %v; want false, nil", ok, err)
		}
	})

	t.Run("set get delete", func(t *testing.T) {
		if err := store.Set(auth.TokenKey, "abc"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		v, ok, err := store.Get(auth.TokenKey)
		if err != nil || !ok || v != "abc" {
			t.Fatalf("Get() = %q, %v, %v", v, ok, err)
		}

		if err := store.Delete(auth.TokenKey); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, ok, _ := store.Get(auth.TokenKey); ok {
			t.Error("expected key to be gone")
		}
		if err := store.Delete(auth.TokenKey); err != nil {
			t.Errorf("deleting a missing key should succeed, got %v", err)
		}
	})
}

func TestBoltStoreBacksManager(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.db")
	store, err := NewBoltStore(path)
	if err != nil {
		t.Fatalf("NewBoltStore() error = %v", err)
	}

	first := auth.NewManager(auth.Options{ClientID: "c", RedirectURI: "http://127.0.0.1:3000/callback", Store: store})
	if _, err := first.CompleteAuthorization("#access_token=persisted&expires_in=3600"); err != nil {
		t.Fatalf("CompleteAuthorization() error = %v", err)
	}
	store.Close()

	reopened, err := NewBoltStore(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	second := auth.NewManager(auth.Options{ClientID: "c", RedirectURI: "http://127.0.0.1:3000/callback", Store: reopened})
	c, err := second.Credential()
	if err != nil {
		t.Fatalf("Credential() error = %v", err)
	}
	if c.AccessToken != "persisted" {
		t.Errorf("expected persisted token, got %s", c.AccessToken)
	}
	if time.Until(c.Expiry) < 59*time.Minute {
		t.Errorf("unexpected expiry %v", c.Expiry)
	}

	first.Invalidate()
	second.Invalidate()
}

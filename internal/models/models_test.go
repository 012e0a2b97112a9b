package models

import (
	"slices"
	"testing"
)

func TestDraft(t *testing.T) {
	a := Track{ID: "a", Name: "Song A", Artist: "Artist", Album: "Album", URI: "spotify:track:a"}
	b := Track{ID: "b", Name: "Song B", URI: "spotify:track:b"}
	c := Track{ID: "c", Name: "Song C", URI: "spotify:track:c"}

	t.Run("NewDraft", func(t *testing.T) {
		d := NewDraft()
		if d.Name != DefaultDraftName {
			t.Errorf("expected %q, got %q", DefaultDraftName, d.Name)
		}
		if d.Len() != 0 {
			t.Errorf("expected empty draft, got %d tracks", d.Len())
		}
	})

	t.Run("Add is unique by id", func(t *testing.T) {
		d := NewDraft()
		if !d.Add(a) {
			t.Fatal("first add should change the draft")
		}
		if d.Add(Track{ID: "a", Name: "Other", URI: "spotify:track:other"}) {
			t.Error("adding a duplicate id should be ignored")
		}
		if d.Len() != 1 || d.Tracks[0].Name != "Song A" {
			t.Errorf("unexpected tracks %+v", d.Tracks)
		}
	})

	t.Run("Remove keeps order", func(t *testing.T) {
		d := NewDraft()
		d.Add(a)
		d.Add(b)
		d.Add(c)

		if !d.Remove("b") {
			t.Fatal("expected remove to succeed")
		}
		if d.Remove("missing") {
			t.Error("removing a missing id should report false")
		}

		want := []string{"spotify:track:a", "spotify:track:c"}
		if got := d.URIs(); !slices.Equal(got, want) {
			t.Errorf("URIs() = %v, want %v", got, want)
		}
	})

	t.Run("Rename and Reset", func(t *testing.T) {
		d := NewDraft()
		d.Add(a)
		d.Rename("  Road Trip ")
		if d.Name != "Road Trip" {
			t.Errorf("expected trimmed name, got %q", d.Name)
		}

		d.Reset()
		if d.Name != DefaultDraftName || d.Len() != 0 {
			t.Errorf("expected reset draft, got %+v", d)
		}
	})
}

func TestTrack(t *testing.T) {
	tt := []struct {
		name    string
		track   Track
		want    string
		wantErr bool
	}{
		{"full", Track{ID: "1", Name: "Song", Artist: "Band", Album: "LP", URI: "spotify:track:1"}, "Song - Band (LP)", false},
		{"no artist", Track{ID: "2", Name: "Song", URI: "spotify:track:2"}, "Song", false},
		{"no uri", Track{ID: "3", Name: "Song"}, "Song", true},
		{"no id", Track{Name: "Song", URI: "spotify:track:4"}, "Song", true},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.track.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
			if err := tc.track.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

package formatter

import (
	"encoding/csv"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/jam/internal/models"
	"github.com/desertthunder/jam/internal/shared"
	th "github.com/desertthunder/jam/internal/testing"
)

func testDraft() *models.Draft {
	return &models.Draft{
		Name: "Road Trip, Vol. 2",
		Tracks: []models.Track{
			{ID: "track1", Name: "Song One", Artist: "Artist One", Album: "Album One", URI: "spotify:track:track1"},
			{ID: "track2", Name: "Song, Two", Artist: "Artist Two", URI: "spotify:track:track2"},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testDraft())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header and 2 rows, got %d", len(records))
		}
		if strings.Join(records[0], ",") != "ID,Name,Artist,Album,URI" {
			t.Errorf("unexpected headers %v", records[0])
		}
		if records[2][1] != "Song, Two" {
			t.Errorf("expected quoted field to round trip, got %q", records[2][1])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testDraft())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Road Trip, Vol. 2",
			"**Tracks**: 2",
			"1. Artist One - Song One (Album One) `spotify:track:track1`",
			"2. Artist Two - Song, Two `spotify:track:track2`",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testDraft())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "Playlist: Road Trip, Vol. 2\nTracks: 2\n") {
			t.Errorf("unexpected header, got:\n%s", output)
		}
		if !strings.Contains(output, "2. Artist Two - Song, Two") {
			t.Errorf("missing track line, got:\n%s", output)
		}
	})

	t.Run("Empty Draft", func(t *testing.T) {
		data, err := ExportToText(models.NewDraft())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		if !strings.Contains(string(data), "Tracks: 0") {
			t.Errorf("expected zero tracks, got %s", data)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tt := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"Markdown", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{"text", FormatText, false},
		{"", FormatText, false},
		{"xml", "", true},
	}

	for _, tc := range tt {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseFormat(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v", tc.in, err)
			}
			if tc.wantErr && !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
			if got != tc.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("Default Filename", func(t *testing.T) {
		dir := t.TempDir()
		wd := th.MustGetwd(t)
		th.MustChdir(t, dir)
		defer th.MustChdir(t, wd)

		path, err := WriteExport(testDraft(), FormatCSV, "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if path != "road-trip-vol-2.csv" {
			t.Errorf("unexpected default filename %q", path)
		}
		th.AssertFileExists(t, filepath.Join(dir, path))
	})

	t.Run("Explicit Path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "draft.md")

		got, err := WriteExport(testDraft(), FormatMarkdown, path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
		if content := th.MustReadFile(t, path); !strings.HasPrefix(content, "# Road Trip") {
			t.Errorf("unexpected content %q", content)
		}
	})

	t.Run("Unwritable Path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "dir", "draft.txt")
		if _, err := WriteExport(testDraft(), FormatText, path); err == nil {
			t.Error("expected error writing into a missing directory")
		}
	})

	t.Run("Filename Fallback", func(t *testing.T) {
		if got := Filename(&models.Draft{Name: "!!!"}, FormatText); got != "playlist.txt" {
			t.Errorf("expected playlist.txt, got %s", got)
		}
	})
}

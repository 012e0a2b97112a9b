// package formatter renders a playlist draft as CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/desertthunder/jam/internal/models"
	"github.com/desertthunder/jam/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// ParseFormat accepts csv, md/markdown and txt/text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text", "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
	}
}

// ExportToCSV converts a draft to CSV with columns: ID, Name, Artist, Album, URI
func ExportToCSV(d *models.Draft) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Name", "Artist", "Album", "URI"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range d.Tracks {
		if err := writer.Write([]string{track.ID, track.Name, track.Artist, track.Album, track.URI}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a draft to a Markdown document with a numbered track list
func ExportToMarkdown(d *models.Draft) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", d.Name)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(d.Tracks))

	buf.WriteString("## Tracks\n\n")
	for i, track := range d.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s", i+1, track.Artist, track.Name)
		if track.Album != "" {
			fmt.Fprintf(&buf, " (%s)", track.Album)
		}
		fmt.Fprintf(&buf, " `%s`\n", track.URI)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a draft to plain text
func ExportToText(d *models.Draft) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", d.Name)
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(d.Tracks))

	for i, track := range d.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, track.Artist, track.Name)
	}

	return buf.Bytes(), nil
}

// Export renders d in format.
func Export(d *models.Draft, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(d)
	case FormatMarkdown:
		return ExportToMarkdown(d)
	case FormatText:
		return ExportToText(d)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Filename derives "{slug}.{ext}" from the draft name, falling back to "playlist".
func Filename(d *models.Draft, format Format) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(d.Name), "-"), "-")
	if slug == "" {
		slug = "playlist"
	}
	return slug + "." + string(format)
}

// WriteExport renders d in format and writes it to path, defaulting to [Filename]. It returns the path written.
func WriteExport(d *models.Draft, format Format, path string) (string, error) {
	if path == "" {
		path = Filename(d, format)
	}

	data, err := Export(d, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

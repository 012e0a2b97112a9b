package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme names the foreground colors of the TUI.
type Theme struct {
	Accent string // header and view titles
	OK     string
	Error  string
	Warn   string // warnings and the in-flight save line
	Muted  string // help and hints
}

// SpotifyTheme uses the Spotify green for titles.
var SpotifyTheme = Theme{
	Accent: "#1DB954",
	OK:     "#04B575",
	Error:  "#FF0000",
	Warn:   "#FFA500",
	Muted:  "#626262",
}

var styles = NewPalette(SpotifyTheme)

// Palette holds the rendered styles of a [Theme].
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t Theme) *Palette {
	return &Palette{
		title: bold(t.Accent).MarginBottom(1),
		ok:    bold(t.OK),
		err:   bold(t.Error),
		warn:  foreground(t.Warn),
		help:  foreground(t.Muted).Italic(true),
	}
}

// notice renders a status line with the marker and color of its kind.
func (p *Palette) notice(n notice) string {
	switch n.kind {
	case noticeErr:
		return p.err.Render("✗ " + n.text)
	case noticeWarn:
		return p.warn.Render("⚠ " + n.text)
	default:
		return p.ok.Render("✓ " + n.text)
	}
}

func foreground(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func bold(fg string) lipgloss.Style {
	return foreground(fg).Bold(true)
}

package tui

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette. Each colour has a light-background and a dark-background variant.
var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#A78BFA"}
	colorLink   = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"}
	colorOK     = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}
	colorFail   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	colorWarn   = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	colorText   = lipgloss.AdaptiveColor{Light: "#0F172A", Dark: "#F1F5F9"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#475569", Dark: "#94A3B8"}
	colorSubtle = lipgloss.AdaptiveColor{Light: "#64748B", Dark: "#64748B"}
)

// Styles are bound to one renderer so the colour profile follows the
// terminal they are written to.
type Styles struct {
	Header  lipgloss.Style
	Label   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
	Subtle  lipgloss.Style
	Box     lipgloss.Style
}

func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Header:  r.NewStyle().Bold(true).Foreground(colorAccent),
		Label:   r.NewStyle().Foreground(colorText).Bold(true),
		Success: r.NewStyle().Foreground(colorOK),
		Error:   r.NewStyle().Foreground(colorFail).Bold(true),
		Warning: r.NewStyle().Foreground(colorWarn),
		Muted:   r.NewStyle().Foreground(colorMuted),
		Subtle:  r.NewStyle().Foreground(colorSubtle).Italic(true),
		Box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 1),
	}
}

// NewRenderer detects the colour profile of w. NO_COLOR and non-terminal
// writers get plain text.
func NewRenderer(w io.Writer) *lipgloss.Renderer {
	return lipgloss.NewRenderer(w)
}

// PlainRenderer never emits escape sequences.
func PlainRenderer(w io.Writer) *lipgloss.Renderer {
	return lipgloss.NewRenderer(w, termenv.WithProfile(termenv.Ascii))
}

const logoASCII = `
      _                 _                  _ _
  ___| |__  _   _ _ __ | | _____  ___ _ __(_) |__   ___
 / __| '_ \| | | | '_ \| |/ / __|/ __| '__| | '_ \ / _ \
| (__| | | | |_| | | | |   <\__ \ (__| |  | | |_) |  __/
 \___|_| |_|\__,_|_| |_|_|\_\___/\___|_|  |_|_.__/ \___|`

// Logo returns the chunkscribe ASCII art
func Logo(s Styles) string {
	return s.Header.Render(strings.Trim(logoASCII, "\n"))
}

package canvas

import "github.com/charmbracelet/lipgloss"

// ============================================================================
// STYLES — Terminal palette for dashboard painting
// ============================================================================

// Colors shared with the tiles (engine trend colors) so the terminal and the
// exporters agree.
var (
	Primary = lipgloss.Color("#3b82f6")
	Muted   = lipgloss.Color("#9ca3af")
	Border  = lipgloss.Color("#374151")
	Danger  = lipgloss.Color("#f87171")
	Accent  = lipgloss.Color("#8b5cf6")
)

// Styles groups every style the painter uses.
type Styles struct {
	Panel      lipgloss.Style
	Title      lipgloss.Style
	Axis       lipgloss.Style
	Muted      lipgloss.Style
	Tile       lipgloss.Style
	TileLabel  lipgloss.Style
	TileValue  lipgloss.Style
	Section    lipgloss.Style
	Error      lipgloss.Style
	User       lipgloss.Style
	Assistant  lipgloss.Style
	Fallback   lipgloss.Style
	Suggestion lipgloss.Style
}

// DefaultStyles returns the dark-terminal styles.
func DefaultStyles() Styles {
	return Styles{
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true),

		Axis: lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true),

		Muted: lipgloss.NewStyle().
			Foreground(Muted),

		Tile: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(Border).
			Padding(0, 1),

		TileLabel: lipgloss.NewStyle().
			Foreground(Muted),

		TileValue: lipgloss.NewStyle().
			Bold(true),

		Section: lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true).
			MarginTop(1),

		Error: lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true),

		User: lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true),

		Assistant: lipgloss.NewStyle().
			PaddingLeft(2).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(Accent),

		Fallback: lipgloss.NewStyle().
			Foreground(Danger).
			PaddingLeft(2),

		Suggestion: lipgloss.NewStyle().
			Foreground(Accent).
			Underline(true),
	}
}

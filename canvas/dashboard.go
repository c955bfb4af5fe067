package canvas

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/spektr-org/nexus/assistant"
	"github.com/spektr-org/nexus/dashboard"
	"github.com/spektr-org/nexus/engine"
)

// Tiles draws KPI tiles side by side, wrapping onto more rows when they do
// not fit the width.
func (p *Painter) Tiles(tiles []engine.Tile) string {
	if len(tiles) == 0 {
		return ""
	}
	perRow := len(tiles)
	tileW := p.width/perRow - 2
	for tileW < 18 && perRow > 1 {
		perRow--
		tileW = p.width/perRow - 2
	}

	var rows []string
	for start := 0; start < len(tiles); start += perRow {
		end := start + perRow
		if end > len(tiles) {
			end = len(tiles)
		}
		boxes := make([]string, 0, end-start)
		for _, t := range tiles[start:end] {
			boxes = append(boxes, p.tile(t, tileW))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	}
	return strings.Join(rows, "\n")
}

func (p *Painter) tile(t engine.Tile, width int) string {
	trend := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color)).
		Render(strings.TrimSpace(t.Icon + " " + t.Trend))
	body := strings.Join([]string{
		p.styles.TileLabel.Render(fit(t.Label, width-2)),
		p.styles.TileValue.Render(t.Value),
		trend,
	}, "\n")
	return p.styles.Tile.Width(width).Render(body)
}

// Actions draws the recommended actions table. A nil table draws nothing.
func (p *Painter) Actions(t *engine.TableData) string {
	if t == nil || len(t.Rows) == 0 {
		return ""
	}
	prioW := 16
	titleW := p.width - prioW - 4

	lines := []string{p.styles.Section.Render(t.Title)}
	for i, row := range t.Rows {
		title, prio := "", ""
		if len(row) > 0 {
			title = row[0]
		}
		if len(row) > 1 {
			prio = row[1]
		}
		accent := lipgloss.NewStyle()
		if i < len(t.Accents) {
			accent = accent.Foreground(lipgloss.Color(t.Accents[i]))
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			accent.Render("▌"), fit(title, titleW), accent.Render(fit(prio, prioW))))
	}
	return strings.Join(lines, "\n")
}

// Dashboard draws a composer view: either its message or the tiles,
// panels and actions in order.
func (p *Painter) Dashboard(v dashboard.View) string {
	switch v.State {
	case dashboard.StateLoading:
		return p.styles.Muted.Render(v.Message)
	case dashboard.StateFailed:
		return p.styles.Error.Render(v.Message)
	case dashboard.StateIdle:
		return ""
	}

	var parts []string
	if v.Role != "" {
		parts = append(parts, p.styles.Title.Render(v.Role+" Dashboard"))
	}
	if tiles := p.Tiles(v.Tiles); tiles != "" {
		parts = append(parts, tiles)
	}
	if panels := p.Panels(v.Panels); panels != "" {
		parts = append(parts, panels)
	}
	if actions := p.Actions(v.Actions); actions != "" {
		parts = append(parts, actions)
	}
	return strings.Join(parts, "\n")
}

// ============================================================================
// CHAT
// ============================================================================

// ThinkingText is shown while a turn awaits its reply.
const ThinkingText = "Thinking..."

// Chat draws the history, then either the thinking marker or the numbered
// suggestions.
func (p *Painter) Chat(history []assistant.Message, suggestions []string, awaiting bool) string {
	var lines []string
	for _, m := range history {
		lines = append(lines, p.message(m))
	}
	if awaiting {
		lines = append(lines, p.styles.Muted.Render(ThinkingText))
	} else if len(suggestions) > 0 {
		chips := make([]string, 0, len(suggestions))
		for i, s := range suggestions {
			chips = append(chips, p.styles.Suggestion.Render(fmt.Sprintf("[%d] %s", i+1, s)))
		}
		lines = append(lines, strings.Join(chips, "  "))
	}
	return strings.Join(lines, "\n")
}

func (p *Painter) message(m assistant.Message) string {
	if m.Sender == assistant.SenderUser {
		wrapped := wrapText(m.Text, p.width-6)
		return p.styles.User.Render("You: ") + strings.Join(wrapped, "\n     ")
	}
	if m.Fallback {
		return p.styles.Fallback.Render(m.Text)
	}

	text := strings.Join(wrapText(m.Text, p.width-4), "\n")
	if p.markdown != nil {
		if rendered, err := p.markdown.Render(m.Text); err == nil {
			text = strings.TrimRight(rendered, "\n")
		}
	}
	if len(m.Sources) > 0 {
		text += "\n" + p.styles.Muted.Render("Sources: "+strings.Join(m.Sources, ", "))
	}
	return p.styles.Assistant.Render(text)
}

// NewMarkdown builds a glamour renderer wrapping at width.
func NewMarkdown(width int) (*glamour.TermRenderer, error) {
	return glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
}

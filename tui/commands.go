package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/spektr-org/nexus/assistant"
	"github.com/spektr-org/nexus/dashboard"
	"github.com/spektr-org/nexus/engine"
)

// Message type definitions
type (
	// dashboardMsg carries a finished fetch back to the composer.
	dashboardMsg struct {
		ticket  dashboard.Ticket
		payload *engine.Payload
		err     error
	}
	// replyMsg signals that a chat turn settled. The session already
	// holds the reply or the fallback.
	replyMsg struct {
		turn assistant.Turn
		err  error
	}
)

// load enters Loading for role now and fetches in a command.
func (m Model) load(role string) tea.Cmd {
	composer, ctx := m.composer, m.ctx
	ticket := composer.Begin(role)
	return func() tea.Msg {
		payload, err := composer.Fetch(ctx, ticket)
		return dashboardMsg{ticket: ticket, payload: payload, err: err}
	}
}

// exchange runs the backend half of a submitted turn.
func (m Model) exchange(turn assistant.Turn) tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		err := session.Exchange(ctx, turn)
		return replyMsg{turn: turn, err: err}
	}
}

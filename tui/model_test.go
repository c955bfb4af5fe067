package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/nexus/assistant"
	"github.com/spektr-org/nexus/canvas"
	"github.com/spektr-org/nexus/dashboard"
	"github.com/spektr-org/nexus/engine"
	"github.com/spektr-org/nexus/identity"
)

// ============================================================================
// TUI MODEL TESTS
// ============================================================================
// Commands are executed by hand so each transition can be observed between
// the key press and the result arriving.
// ============================================================================

func payloadFor(role string) *engine.Payload {
	return &engine.Payload{
		Role: role,
		KPIs: []engine.KPI{{Label: role + " Revenue", Value: "$1.2M", Trend: "+12%"}},
		Charts: []engine.ChartSpec{{
			Title: role + " Trend", Type: engine.VariantBar, X: "m", Y: "v",
			Data: []engine.Record{{"m": "Jan", "v": 10}},
		}},
	}
}

type recorder struct {
	mu    sync.Mutex
	roles []string
}

func (r *recorder) fetch(_ context.Context, role string) (*engine.Payload, error) {
	r.mu.Lock()
	r.roles = append(r.roles, role)
	r.mu.Unlock()
	return payloadFor(role), nil
}

func echoBackend(_ context.Context, req assistant.Request) (*assistant.Response, error) {
	return &assistant.Response{
		Answer:             "Answer for " + req.Role + ": " + req.Query,
		Sources:            []string{"Revenue Ledger"},
		SuggestedFollowups: []string{"Why?", "Trend?"},
	}, nil
}

func newTestModel(t *testing.T, fetch dashboard.FetcherFunc, chat assistant.BackendFunc) Model {
	t.Helper()
	composer := dashboard.New(fetch)
	session := assistant.New(chat, "7", "CEO")
	m := New(composer, session, identity.Identity{UserID: "7", Name: "Ada", Role: "ceo"}, WithStaticCursor())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 120})
	return next.(Model)
}

// drain runs cmd and feeds the results this package produces back into the
// model. Ticks and quit messages are dropped.
func drain(m Model, cmd tea.Cmd) Model {
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = drain(m, c)
		}
	case dashboardMsg, replyMsg:
		next, more := m.Update(msg)
		m = drain(next.(Model), more)
	}
	return m
}

func press(m Model, key tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(key)
	return next.(Model), cmd
}

func typeAndEnter(m Model, text string) (Model, tea.Cmd) {
	m.input.SetValue(text)
	return press(m, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestInitLoadsDashboard(t *testing.T) {
	rec := &recorder{}
	m := newTestModel(t, rec.fetch, echoBackend)
	assert.Equal(t, "CEO", m.Role())

	m = drain(m, m.Init())

	assert.Equal(t, dashboard.StateLoaded, m.composer.State())
	view := m.View()
	assert.Contains(t, view, "CEO Dashboard")
	assert.Contains(t, view, "CEO Revenue")
	assert.Contains(t, view, "CEO Trend")
	assert.Equal(t, []string{"CEO"}, rec.roles)
}

func TestLoadingThenFailure(t *testing.T) {
	m := newTestModel(t, func(context.Context, string) (*engine.Payload, error) {
		return nil, errors.New("502")
	}, echoBackend)

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Contains(t, m.View(), dashboard.LoadingText)

	m = drain(m, cmd)
	assert.Equal(t, dashboard.StateFailed, m.composer.State())
	assert.Contains(t, m.View(), dashboard.ErrorText)
}

func TestRoleSwitchLastRequestWins(t *testing.T) {
	rec := &recorder{}
	m := newTestModel(t, rec.fetch, echoBackend)

	first := m.load("CEO")
	m, second := press(m, tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Equal(t, "CFO", m.Role())
	assert.Equal(t, "CFO", m.session.Role())

	m = drain(m, second)
	m = drain(m, first) // stale

	view := m.View()
	assert.Contains(t, view, "CFO Dashboard")
	assert.NotContains(t, view, "CEO Revenue")

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlP})
	m = drain(m, cmd)
	assert.Equal(t, "CEO", m.Role())
	assert.Contains(t, m.View(), "CEO Dashboard")
}

func TestAskAndChooseSuggestion(t *testing.T) {
	m := newTestModel(t, (&recorder{}).fetch, echoBackend)

	m, cmd := typeAndEnter(m, "  How is revenue?  ")
	require.NotNil(t, cmd)
	assert.Equal(t, assistant.StateAwaitingReply, m.session.State())
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), canvas.ThinkingText)

	// rejected while awaiting, input kept
	m, blocked := typeAndEnter(m, "Another")
	assert.Nil(t, blocked)
	assert.Equal(t, "Another", m.input.Value())
	assert.Len(t, m.session.History(), 1)

	m = drain(m, cmd)
	history := m.session.History()
	require.Len(t, history, 2)
	assert.Equal(t, "Answer for CEO: How is revenue?", history[1].Text)
	view := m.View()
	assert.Contains(t, view, "You: How is revenue?")
	assert.Contains(t, view, "[1] Why?")
	assert.Contains(t, view, "Sources: Revenue Ledger")

	m, cmd = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}, Alt: true})
	require.NotNil(t, cmd)
	m = drain(m, cmd)
	history = m.session.History()
	require.Len(t, history, 4)
	assert.Equal(t, "Why?", history[2].Text)
}

func TestSuggestionOutOfRangeIgnored(t *testing.T) {
	m := newTestModel(t, (&recorder{}).fetch, echoBackend)

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}, Alt: true})
	assert.Nil(t, cmd)
	assert.Empty(t, m.session.History())
	assert.Empty(t, m.input.Value(), "alt+digit is not typed into the input")
}

func TestChatFailureShowsFallback(t *testing.T) {
	m := newTestModel(t, (&recorder{}).fetch, func(context.Context, assistant.Request) (*assistant.Response, error) {
		return nil, errors.New("connection refused")
	})

	m, cmd := typeAndEnter(m, "Hello")
	m = drain(m, cmd)

	history := m.session.History()
	require.Len(t, history, 2)
	assert.True(t, history[1].Fallback)
	assert.Contains(t, m.View(), assistant.FallbackText)
	assert.Equal(t, assistant.StateIdle, m.session.State())
}

func TestLogoutResetsAndQuits(t *testing.T) {
	m := newTestModel(t, (&recorder{}).fetch, echoBackend)
	m = drain(m, m.Init())
	m, cmd := typeAndEnter(m, "Hello")
	m = drain(m, cmd)

	m, cmd = press(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.LoggedOut())
	assert.Equal(t, dashboard.StateIdle, m.composer.State())
	assert.Empty(t, m.session.History())
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(t, (&recorder{}).fetch, echoBackend)

	for _, key := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		_, cmd := press(m, key)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
	assert.False(t, m.LoggedOut())
}

func TestWindowResizeSmall(t *testing.T) {
	m := newTestModel(t, (&recorder{}).fetch, echoBackend)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 0, Height: 0})
	small := next.(Model)
	assert.GreaterOrEqual(t, small.board.Height, minPaneHeight)
	assert.GreaterOrEqual(t, small.chat.Height, minPaneHeight)
	assert.NotPanics(t, func() { _ = small.View() })
}

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/spektr-org/nexus/assistant"
	"github.com/spektr-org/nexus/canvas"
	"github.com/spektr-org/nexus/dashboard"
	"github.com/spektr-org/nexus/identity"
)

// ============================================================================
// TUI — Dashboard above, assistant below, one input line
// ============================================================================
// The composer and the session own all state transitions. The model only
// turns keys into Begin/Submit calls, runs the blocking halves as commands
// and repaints from View()/History() when their results arrive.
// ============================================================================

// UI layout constants
const (
	defaultWidth    = 100
	defaultHeight   = 40
	inputCharLimit  = 2000
	chromeHeight    = 4 // header, rule, input, help
	minPaneHeight   = 4
	boardShare      = 0.6
	scrollStep      = 3
	helpText        = "enter ask • alt+1-9 suggestion • ctrl+n/ctrl+p role • ctrl+r reload • pgup/pgdn dashboard • ↑/↓ chat • ctrl+o logout • esc quit"
	maxSuggestionNo = 9
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(canvas.Primary).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(canvas.Muted)
	promptStyle = lipgloss.NewStyle().Foreground(canvas.Accent)
	ruleStyle   = lipgloss.NewStyle().Foreground(canvas.Border)
)

// Model is the bubbletea model for an interactive session.
type Model struct {
	// Dependencies
	composer *dashboard.Composer
	session  *assistant.Session
	user     identity.Identity
	ctx      context.Context
	logger   *zap.Logger

	// UI components
	input   textinput.Model
	board   viewport.Model
	chat    viewport.Model
	spinner spinner.Model
	painter *canvas.Painter

	markdown     bool
	staticCursor bool

	role      string
	loggedOut bool

	width  int
	height int
}

// Option configures a Model.
type Option func(*Model)

// WithContext sets the context handed to dashboard fetches and chat turns.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// WithLogger sets the logger. The TUI never logs to the terminal it draws on.
func WithLogger(l *zap.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l.Named("tui")
		}
	}
}

// WithMarkdown renders assistant answers through glamour.
func WithMarkdown() Option {
	return func(m *Model) { m.markdown = true }
}

// WithStaticCursor disables cursor blinking.
func WithStaticCursor() Option {
	return func(m *Model) { m.staticCursor = true }
}

// New builds the model for user. The first dashboard load starts in Init.
func New(composer *dashboard.Composer, session *assistant.Session, user identity.Identity, opts ...Option) Model {
	input := textinput.New()
	input.Placeholder = "Ask about your dashboard..."
	input.CharLimit = inputCharLimit
	input.Width = defaultWidth - 4
	input.Prompt = ""

	m := Model{
		composer: composer,
		session:  session,
		user:     user,
		ctx:      context.Background(),
		logger:   zap.NewNop(),
		input:    input,
		board:    viewport.New(defaultWidth, defaultHeight/2),
		chat:     viewport.New(defaultWidth, defaultHeight/3),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(promptStyle)),
		role:     identity.NormalizeRole(user.Role),
		width:    defaultWidth,
		height:   defaultHeight,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.staticCursor {
		m.input.Cursor.SetMode(cursor.CursorStatic)
	}
	m.input.Focus()
	m.layout()
	return m
}

// Run starts the program on the alternate screen and returns the final
// model.
func Run(m Model, opts ...tea.ProgramOption) (Model, error) {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(m.ctx)}, opts...)
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return m, fmt.Errorf("tui: %w", err)
	}
	out, ok := final.(Model)
	if !ok {
		return m, nil
	}
	return out, nil
}

// LoggedOut reports whether the user asked to log out before quitting.
func (m Model) LoggedOut() bool { return m.loggedOut }

// Role is the role whose dashboard is shown.
func (m Model) Role() string { return m.role }

// Init starts the first dashboard load.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.load(m.role), m.spinner.Tick}
	if !m.staticCursor {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

// Update processes messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		var cmd tea.Cmd
		var handled bool
		m, cmd, handled = m.handleKey(msg)
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()

	case dashboardMsg:
		m.composer.Complete(msg.ticket, msg.payload, msg.err)
		m.refreshBoard()

	case replyMsg:
		if msg.err != nil {
			m.logger.Warn("chat turn failed", zap.String("turn", msg.turn.ID), zap.Error(msg.err))
		}
		m.refreshChat()

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleKey consumes the keys bound to actions. Unhandled keys fall through
// to the input.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch key := msg.String(); key {
	case "ctrl+c", "esc":
		return m, tea.Quit, true

	case "ctrl+o":
		m.composer.Reset()
		m.session.Reset()
		m.loggedOut = true
		m.logger.Info("logout requested", zap.String("user", m.user.UserID.String()))
		return m, tea.Quit, true

	case "enter":
		text := m.input.Value()
		turn, ok := m.session.Submit(text)
		if !ok {
			return m, nil, true
		}
		m.input.Reset()
		m.refreshChat()
		return m, tea.Batch(m.exchange(turn), m.spinner.Tick), true

	case "ctrl+n", "ctrl+p":
		step := 1
		if key == "ctrl+p" {
			step = -1
		}
		return m.switchRole(identity.NextRole(m.role, step))

	case "ctrl+r":
		cmd := m.load(m.role)
		m.refreshBoard()
		return m, tea.Batch(cmd, m.spinner.Tick), true

	case "pgup":
		m.board.SetYOffset(m.board.YOffset - m.board.Height/2)
		return m, nil, true
	case "pgdown":
		m.board.SetYOffset(m.board.YOffset + m.board.Height/2)
		return m, nil, true
	case "up":
		m.chat.SetYOffset(m.chat.YOffset - scrollStep)
		return m, nil, true
	case "down":
		m.chat.SetYOffset(m.chat.YOffset + scrollStep)
		return m, nil, true
	}

	if msg.Alt && len(msg.Runes) == 1 && msg.Runes[0] >= '1' && msg.Runes[0] <= '0'+maxSuggestionNo {
		turn, ok := m.session.Choose(int(msg.Runes[0] - '1'))
		if !ok {
			return m, nil, true
		}
		m.refreshChat()
		return m, tea.Batch(m.exchange(turn), m.spinner.Tick), true
	}
	return m, nil, false
}

func (m Model) switchRole(role string) (Model, tea.Cmd, bool) {
	m.role = role
	m.session.SetRole(role)
	cmd := m.load(role)
	m.refreshBoard()
	return m, tea.Batch(cmd, m.spinner.Tick), true
}

// busy reports whether a dashboard load or a chat turn is outstanding.
func (m Model) busy() bool {
	return m.composer.State() == dashboard.StateLoading ||
		m.session.State() == assistant.StateAwaitingReply
}

// ── Layout ──────────────────────────────────────────────────────────────────

func (m *Model) layout() {
	width := m.width
	if width < 20 {
		width = 20
	}
	panes := m.height - chromeHeight
	boardH := int(float64(panes) * boardShare)
	if boardH < minPaneHeight {
		boardH = minPaneHeight
	}
	chatH := panes - boardH
	if chatH < minPaneHeight {
		chatH = minPaneHeight
	}

	m.board.Width, m.board.Height = width, boardH
	m.chat.Width, m.chat.Height = width, chatH
	m.input.Width = width - 4

	opts := []canvas.Option{canvas.WithWidth(width)}
	if m.markdown {
		if r, err := canvas.NewMarkdown(width - 4); err == nil {
			opts = append(opts, canvas.WithMarkdown(r))
		} else {
			m.logger.Debug("markdown renderer unavailable", zap.Error(err))
		}
	}
	m.painter = canvas.New(opts...)

	m.refreshBoard()
	m.refreshChat()
}

func (m *Model) refreshBoard() {
	m.board.SetContent(m.painter.Dashboard(m.composer.View()))
}

func (m *Model) refreshChat() {
	awaiting := m.session.State() == assistant.StateAwaitingReply
	m.chat.SetContent(m.painter.Chat(m.session.History(), m.session.Suggestions(), awaiting))
	m.chat.GotoBottom()
}

// View renders the UI.
func (m Model) View() string {
	header := headerStyle.Render("Nexus") + dimStyle.Render(" · ")
	if m.user.Name != "" {
		header += m.user.Name + dimStyle.Render(" · ")
	}
	header += "Role: " + headerStyle.Render(m.role)
	if m.busy() {
		header += " " + m.spinner.View()
	}

	rule := ruleStyle.Render(strings.Repeat("─", max(m.board.Width, 1)))

	var inputView string
	if m.session.State() == assistant.StateAwaitingReply {
		inputView = dimStyle.Render("> " + canvas.ThinkingText)
	} else {
		inputView = promptStyle.Render("> ") + m.input.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.board.View(),
		rule,
		m.chat.View(),
		inputView,
		dimStyle.Render(helpText),
	)
}

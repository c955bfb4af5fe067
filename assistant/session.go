package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ============================================================================
// SESSION — Single in-flight conversational turn
// ============================================================================
// A turn is two-phase. Submit appends the user's message optimistically and
// moves to AwaitingReply; Resolve or Fail settles it and returns to Idle.
// While a turn is pending every further Submit is rejected, not queued.
// Suggestions are replaced on every settled turn and hidden while awaiting.
// ============================================================================

// ErrBusy is returned by Ask when a turn is already in flight.
var ErrBusy = errors.New("assistant is awaiting a reply")

// Session is one user's conversation. Safe for concurrent use.
type Session struct {
	id      string
	backend Backend
	logger  *zap.Logger
	now     func() time.Time

	mu          sync.Mutex
	userID      string
	role        string
	state       State
	pending     string // id of the in-flight turn
	history     *history
	suggestions []string
}

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	greeting     bool
	historyLimit int
	logger       *zap.Logger
	now          func() time.Time
}

// WithGreeting seeds the history with the role greeting.
func WithGreeting() Option {
	return func(c *sessionConfig) { c.greeting = true }
}

// WithHistoryLimit caps the history at n messages, evicting the oldest
// first. n <= 0 keeps the history unbounded.
func WithHistoryLimit(n int) Option {
	return func(c *sessionConfig) { c.historyLimit = n }
}

// WithLogger sets the logger. nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *sessionConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the message timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *sessionConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates an idle session for userID acting as role.
func New(backend Backend, userID, role string, opts ...Option) *Session {
	cfg := &sessionConfig{logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(cfg)
	}

	if strings.TrimSpace(userID) == "" {
		userID = DefaultUserID
	}
	id := uuid.NewString()
	s := &Session{
		id:      id,
		backend: backend,
		logger:  cfg.logger.Named("assistant").With(zap.String("session", id)),
		now:     cfg.now,
		userID:  userID,
		role:    role,
		history: newHistory(cfg.historyLimit),
	}
	if cfg.greeting {
		s.history.append(Message{
			ID:     uuid.NewString(),
			Sender: SenderAssistant,
			Text:   Greeting(role),
			At:     s.now(),
		})
	}
	return s
}

// Greeting is the opening line for a role.
func Greeting(role string) string {
	topic := "data"
	switch strings.ToUpper(role) {
	case "CEO":
		topic = "strategy and risk"
	case "COO":
		topic = "production and downtime"
	}
	return fmt.Sprintf("Hello! I am your %s Assistant. Ask me about %s.", role, topic)
}

// ID returns the session id used in logs.
func (s *Session) ID() string { return s.id }

// Submit starts a turn for text. It reports false, changing nothing, when
// text is blank or a turn is already pending.
func (s *Session) Submit(text string) (Turn, bool) {
	query := strings.TrimSpace(text)
	if query == "" {
		return Turn{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateAwaitingReply {
		s.logger.Debug("submit rejected while awaiting reply", zap.String("pending", s.pending))
		return Turn{}, false
	}

	turn := Turn{
		ID:      uuid.NewString(),
		Request: Request{UserID: s.userID, Role: s.role, Query: query},
	}
	s.history.append(Message{ID: turn.ID, Sender: SenderUser, Text: query, At: s.now()})
	s.state = StateAwaitingReply
	s.pending = turn.ID

	s.logger.Debug("turn submitted", zap.String("turn", turn.ID), zap.String("role", s.role))
	return turn, true
}

// Resolve settles turn with the backend's reply. A nil response settles
// it as a failure. Turns other than the pending one are ignored.
func (s *Session) Resolve(turn Turn, resp *Response) bool {
	if resp == nil {
		return s.Fail(turn, errors.New("empty chat response"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isPending(turn) {
		return false
	}
	s.history.append(Message{
		ID:      uuid.NewString(),
		Sender:  SenderAssistant,
		Text:    resp.Answer,
		Sources: append([]string(nil), resp.Sources...),
		At:      s.now(),
	})
	s.suggestions = append([]string(nil), resp.SuggestedFollowups...)
	s.settle()

	s.logger.Debug("turn resolved",
		zap.String("turn", turn.ID),
		zap.Int("sources", len(resp.Sources)),
		zap.Int("suggestions", len(s.suggestions)))
	return true
}

// Fail settles turn with the fallback reply and clears suggestions. Turns
// other than the pending one are ignored.
func (s *Session) Fail(turn Turn, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isPending(turn) {
		return false
	}
	s.history.append(Message{
		ID:       uuid.NewString(),
		Sender:   SenderAssistant,
		Text:     FallbackText,
		At:       s.now(),
		Fallback: true,
	})
	s.suggestions = nil
	s.settle()

	s.logger.Warn("turn failed", zap.String("turn", turn.ID), zap.Error(err))
	return true
}

// Exchange sends turn to the backend and settles it with the outcome.
func (s *Session) Exchange(ctx context.Context, turn Turn) error {
	if s.backend == nil {
		err := errors.New("no assistant backend configured")
		s.Fail(turn, err)
		return err
	}
	resp, err := s.backend.Chat(ctx, turn.Request)
	if err != nil {
		s.Fail(turn, err)
		return fmt.Errorf("chat turn %s: %w", turn.ID, err)
	}
	s.Resolve(turn, resp)
	return nil
}

// Ask runs a whole turn synchronously. Blank text is a no-op; a pending
// turn yields ErrBusy.
func (s *Session) Ask(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	turn, ok := s.Submit(text)
	if !ok {
		return ErrBusy
	}
	return s.Exchange(ctx, turn)
}

// Choose submits suggestion i exactly as if it had been typed.
func (s *Session) Choose(i int) (Turn, bool) {
	s.mu.Lock()
	if s.state == StateAwaitingReply || i < 0 || i >= len(s.suggestions) {
		s.mu.Unlock()
		return Turn{}, false
	}
	text := s.suggestions[i]
	s.mu.Unlock()

	return s.Submit(text)
}

// History returns a copy of all messages, oldest first.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.snapshot()
}

// Suggestions returns the follow-ups from the last settled turn. It is
// empty while a turn is pending.
func (s *Session) Suggestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAwaitingReply {
		return nil
	}
	return append([]string(nil), s.suggestions...)
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CanSubmit reports whether the input is enabled.
func (s *Session) CanSubmit() bool {
	return s.State() == StateIdle
}

// Role returns the role queries are sent with.
func (s *Session) Role() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

// SetRole changes the role used for later turns. History is kept.
func (s *Session) SetRole(role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.role = role
}

// Reset clears history and suggestions on logout. A pending turn is
// abandoned and its reply will be ignored.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.reset()
	s.suggestions = nil
	s.settle()
}

func (s *Session) isPending(turn Turn) bool {
	if s.state != StateAwaitingReply || turn.ID != s.pending {
		s.logger.Debug("reply for non-pending turn ignored", zap.String("turn", turn.ID))
		return false
	}
	return true
}

func (s *Session) settle() {
	s.state = StateIdle
	s.pending = ""
}

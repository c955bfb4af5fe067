package assistant

import (
	"context"
	"time"
)

// ============================================================================
// ASSISTANT TYPES — Chat wire shapes and history entries
// ============================================================================

// FallbackText is appended as the assistant's reply when a turn fails.
const FallbackText = "Sorry, I encountered an error connecting to the server."

// DefaultUserID is sent when the session has no user id.
const DefaultUserID = "demo"

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one history entry. Messages are never edited once appended.
type Message struct {
	ID      string    `json:"id"`
	Sender  Sender    `json:"role"`
	Text    string    `json:"text"`
	Sources []string  `json:"sources,omitempty"`
	At      time.Time `json:"at"`
	// Fallback marks the fixed reply appended after a failed turn.
	Fallback bool `json:"fallback,omitempty"`
}

// Request is one chat query as the backend receives it.
type Request struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Query  string `json:"query"`
}

// Response is the backend's answer to a Request.
type Response struct {
	Answer             string   `json:"answer"`
	Sources            []string `json:"sources,omitempty"`
	SuggestedFollowups []string `json:"suggested_followups,omitempty"`
}

// Backend answers chat requests.
type Backend interface {
	Chat(ctx context.Context, req Request) (*Response, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, req Request) (*Response, error)

// Chat calls f.
func (f BackendFunc) Chat(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// Turn is one submitted query awaiting its reply.
type Turn struct {
	ID      string
	Request Request
}

// State of a session.
type State int

const (
	StateIdle State = iota
	StateAwaitingReply
)

func (s State) String() string {
	if s == StateAwaitingReply {
		return "awaiting_reply"
	}
	return "idle"
}

package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func replyWith(resp *Response, err error) BackendFunc {
	return func(context.Context, Request) (*Response, error) { return resp, err }
}

// ── End-to-end ──────────────────────────────────────────────────────────────

func TestAskAppendsUserAndAssistant(t *testing.T) {
	var got Request
	backend := BackendFunc(func(_ context.Context, req Request) (*Response, error) {
		got = req
		return &Response{Answer: "12%", SuggestedFollowups: []string{"Why?", "Trend?"}}, nil
	})
	s := New(backend, "7", "COO", WithClock(fixedClock))

	require.NoError(t, s.Ask(context.Background(), "What is downtime?"))

	h := s.History()
	require.Len(t, h, 2)
	assert.Equal(t, SenderUser, h[0].Sender)
	assert.Equal(t, "What is downtime?", h[0].Text)
	assert.Equal(t, SenderAssistant, h[1].Sender)
	assert.Equal(t, "12%", h[1].Text)
	assert.Equal(t, fixedNow, h[1].At)
	assert.Equal(t, []string{"Why?", "Trend?"}, s.Suggestions())
	assert.Equal(t, Request{UserID: "7", Role: "COO", Query: "What is downtime?"}, got)
	assert.True(t, s.CanSubmit())
}

func TestAskFailureAppendsFallback(t *testing.T) {
	s := New(replyWith(&Response{Answer: "ok", SuggestedFollowups: []string{"More"}}, nil), "", "CFO")
	require.NoError(t, s.Ask(context.Background(), "first"))
	require.Len(t, s.Suggestions(), 1)

	s.backend = replyWith(nil, errors.New("dial tcp: refused"))
	err := s.Ask(context.Background(), "second")

	require.Error(t, err)
	h := s.History()
	require.Len(t, h, 4)
	assert.Equal(t, "second", h[2].Text)
	assert.Equal(t, FallbackText, h[3].Text)
	assert.True(t, h[3].Fallback)
	assert.Empty(t, s.Suggestions())
	assert.True(t, s.CanSubmit(), "input stays enabled after a failure")
}

// ── Two-phase turns ─────────────────────────────────────────────────────────

func TestSubmitIsOptimistic(t *testing.T) {
	s := New(nil, "u1", "HR")

	turn, ok := s.Submit("  Safety incidents  ")

	require.True(t, ok)
	assert.Equal(t, "Safety incidents", turn.Request.Query)
	assert.Equal(t, StateAwaitingReply, s.State())
	assert.False(t, s.CanSubmit())
	h := s.History()
	require.Len(t, h, 1)
	assert.Equal(t, turn.ID, h[0].ID)

	require.True(t, s.Fail(turn, errors.New("x")))
	h = s.History()
	require.Len(t, h, 2)
	assert.Equal(t, "Safety incidents", h[0].Text, "optimistic message survives failure")
}

func TestSubmitBlankIsNoop(t *testing.T) {
	s := New(nil, "u1", "HR")

	for _, text := range []string{"", "   ", "\n\t"} {
		_, ok := s.Submit(text)
		assert.False(t, ok)
	}
	assert.Empty(t, s.History())
	assert.Equal(t, StateIdle, s.State())
	assert.NoError(t, s.Ask(context.Background(), " "))
}

func TestSecondSubmitRejectedWhileAwaiting(t *testing.T) {
	s := New(nil, "u1", "CEO")
	first, ok := s.Submit("one")
	require.True(t, ok)

	_, ok = s.Submit("two")
	assert.False(t, ok)
	assert.ErrorIs(t, s.Ask(context.Background(), "three"), ErrBusy)
	assert.Len(t, s.History(), 1, "no queueing")

	require.True(t, s.Resolve(first, &Response{Answer: "a"}))
	_, ok = s.Submit("two")
	assert.True(t, ok)
}

func TestSettleIgnoresNonPendingTurn(t *testing.T) {
	s := New(nil, "u1", "CEO")
	old, _ := s.Submit("one")
	require.True(t, s.Resolve(old, &Response{Answer: "a"}))

	assert.False(t, s.Resolve(old, &Response{Answer: "dup"}))
	assert.False(t, s.Fail(old, errors.New("late")))

	current, _ := s.Submit("two")
	assert.False(t, s.Resolve(Turn{ID: "bogus"}, &Response{Answer: "x"}))
	assert.True(t, s.Resolve(current, &Response{Answer: "b"}))
	assert.Len(t, s.History(), 4)
}

func TestResolveNilResponseFails(t *testing.T) {
	s := New(nil, "u1", "CEO")
	turn, _ := s.Submit("q")

	assert.True(t, s.Resolve(turn, nil))

	h := s.History()
	assert.Equal(t, FallbackText, h[len(h)-1].Text)
}

func TestResolveWithoutFollowupsClearsSuggestions(t *testing.T) {
	s := New(nil, "u1", "CEO")
	turn, _ := s.Submit("q")
	s.Resolve(turn, &Response{Answer: "a", SuggestedFollowups: []string{"x"}})

	turn, _ = s.Submit("q2")
	s.Resolve(turn, &Response{Answer: "b", Sources: []string{"Q3 report"}})

	assert.Empty(t, s.Suggestions())
	h := s.History()
	assert.Equal(t, []string{"Q3 report"}, h[len(h)-1].Sources)
}

func TestExchangeWithoutBackendFails(t *testing.T) {
	s := New(nil, "u1", "CEO")
	turn, _ := s.Submit("q")

	assert.Error(t, s.Exchange(context.Background(), turn))
	assert.Equal(t, StateIdle, s.State())
}

// ── Suggestions ─────────────────────────────────────────────────────────────

func TestChooseSubmitsSuggestionText(t *testing.T) {
	s := New(nil, "u1", "CFO")
	turn, _ := s.Submit("costs?")
	s.Resolve(turn, &Response{Answer: "a", SuggestedFollowups: []string{"Cost breakdown", "Margin trends"}})

	next, ok := s.Choose(1)

	require.True(t, ok)
	assert.Equal(t, "Margin trends", next.Request.Query)
	assert.Empty(t, s.Suggestions(), "hidden while awaiting")
	h := s.History()
	assert.Equal(t, "Margin trends", h[len(h)-1].Text)
}

func TestChooseRejectedWhileAwaitingOrOutOfRange(t *testing.T) {
	s := New(nil, "u1", "CFO")
	turn, _ := s.Submit("q")
	s.Resolve(turn, &Response{Answer: "a", SuggestedFollowups: []string{"One"}})

	_, ok := s.Choose(3)
	assert.False(t, ok)
	_, ok = s.Choose(-1)
	assert.False(t, ok)

	_, ok = s.Choose(0)
	require.True(t, ok)
	_, ok = s.Choose(0)
	assert.False(t, ok, "second activation while awaiting is rejected")
}

// ── Options ─────────────────────────────────────────────────────────────────

func TestDefaultUserID(t *testing.T) {
	s := New(nil, " ", "HR")
	turn, _ := s.Submit("hi")
	assert.Equal(t, DefaultUserID, turn.Request.UserID)
}

func TestWithGreeting(t *testing.T) {
	s := New(nil, "u1", "CEO", WithGreeting())

	h := s.History()
	require.Len(t, h, 1)
	assert.Equal(t, SenderAssistant, h[0].Sender)
	assert.Equal(t, "Hello! I am your CEO Assistant. Ask me about strategy and risk.", h[0].Text)
	assert.Equal(t, "Hello! I am your COO Assistant. Ask me about production and downtime.", Greeting("COO"))
	assert.Equal(t, "Hello! I am your HR Assistant. Ask me about data.", Greeting("HR"))
}

func TestWithHistoryLimitEvictsOldestFirst(t *testing.T) {
	s := New(nil, "u1", "CEO", WithHistoryLimit(3))

	for _, q := range []string{"a", "b"} {
		turn, ok := s.Submit(q)
		require.True(t, ok)
		s.Resolve(turn, &Response{Answer: q + "!"})
	}

	h := s.History()
	require.Len(t, h, 3)
	assert.Equal(t, []string{"a!", "b", "b!"}, []string{h[0].Text, h[1].Text, h[2].Text})
}

func TestHistoryUnboundedByDefault(t *testing.T) {
	s := New(nil, "u1", "CEO")
	for i := 0; i < 50; i++ {
		turn, _ := s.Submit("q")
		s.Resolve(turn, &Response{Answer: "a"})
	}
	assert.Len(t, s.History(), 100)
}

func TestResetAbandonsPendingTurn(t *testing.T) {
	s := New(nil, "u1", "CEO")
	turn, _ := s.Submit("q")

	s.Reset()

	assert.Empty(t, s.History())
	assert.True(t, s.CanSubmit())
	assert.False(t, s.Resolve(turn, &Response{Answer: "late"}))
	assert.Empty(t, s.History())
}

func TestSetRoleAppliesToLaterTurns(t *testing.T) {
	s := New(nil, "u1", "CEO")
	s.SetRole("CFO")

	turn, _ := s.Submit("q")

	assert.Equal(t, "CFO", turn.Request.Role)
	assert.Equal(t, "CFO", s.Role())
}

// ── Concurrency ─────────────────────────────────────────────────────────────

func TestConcurrentSubmitAdmitsOneTurn(t *testing.T) {
	s := New(nil, "u1", "CEO")

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := s.Submit("race"); ok {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, admitted)
	assert.Len(t, s.History(), 1)
}

func TestHistoryRingWrapsRepeatedly(t *testing.T) {
	h := newHistory(2)
	for _, text := range []string{"1", "2", "3", "4", "5"} {
		h.append(Message{Text: text})
	}

	snap := h.snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "4", snap[0].Text)
	assert.Equal(t, "5", snap[1].Text)
}

package translator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/nexus/assistant"
	"github.com/spektr-org/nexus/engine"
)

func cooPayload() *engine.Payload {
	return &engine.Payload{
		Role: "COO",
		KPIs: []engine.KPI{{Label: "Downtime", Value: "12%", Trend: "-3%"}},
		Charts: []engine.ChartSpec{{
			Title: "Downtime by Line", Type: engine.VariantBar, X: "line", Y: "downtime_minutes",
			Data: []engine.Record{{"line": "A", "downtime_minutes": 30}, {"line": "C", "downtime_minutes": 120}},
		}},
	}
}

type captured struct {
	system, prompt string
}

func stubGenerator(reply string, err error, got *captured) GeneratorFunc {
	return func(_ context.Context, system, prompt string) (string, error) {
		if got != nil {
			got.system, got.prompt = system, prompt
		}
		return reply, err
	}
}

func TestChatParsesFencedJSON(t *testing.T) {
	reply := "```json\n{\"answer\":\"Line C drives downtime.\",\"sources\":[\"Downtime by Line\"],\"suggested_followups\":[\"Why line C?\",\" \",\"Why line C?\",\"Fix plan?\"]}\n```"
	var got captured
	a := NewGeminiAssistant(stubGenerator(reply, nil, &got), WithPayloadSource(cooPayload))

	resp, err := a.Chat(context.Background(), assistant.Request{UserID: "demo", Role: "coo", Query: "What is downtime?"})

	require.NoError(t, err)
	assert.Equal(t, "Line C drives downtime.", resp.Answer)
	assert.Equal(t, []string{"Downtime by Line"}, resp.Sources)
	assert.Equal(t, []string{"Why line C?", "Fix plan?"}, resp.SuggestedFollowups)

	assert.Equal(t, "What is downtime?", got.prompt)
	assert.Contains(t, got.system, "assistant for the COO")
	assert.Contains(t, got.system, `Chart "Downtime by Line" (bar, 2 records)`)
	assert.Contains(t, got.system, "max 120")
	assert.NotContains(t, got.system, `"line": "A"`, "raw rows never reach the prompt")
}

func TestChatPlainTextFallsBackToRoleFollowups(t *testing.T) {
	a := NewGeminiAssistant(stubGenerator("  Downtime is 12%.  ", nil, nil), WithPayloadSource(cooPayload))

	resp, err := a.Chat(context.Background(), assistant.Request{Role: "COO", Query: "downtime?"})

	require.NoError(t, err)
	assert.Equal(t, "Downtime is 12%.", resp.Answer)
	assert.Equal(t, []string{"Production bottlenecks", "Downtime analysis", "Quality report"}, resp.SuggestedFollowups)
	assert.Equal(t, []string{"Downtime by Line"}, resp.Sources, "sources default to chart titles")
}

func TestChatGenerationErrorAnswersFromSummary(t *testing.T) {
	boom := errors.New("quota exceeded")
	a := NewGeminiAssistant(stubGenerator("", boom, nil), WithPayloadSource(cooPayload))

	resp, err := a.Chat(context.Background(), assistant.Request{Role: "coo", Query: "downtime?"})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Answer, "I found relevant information:"))
	assert.Contains(t, resp.Answer, "Role: COO")
	assert.Contains(t, resp.Answer, "Downtime: 12% (-3%, down)")
	assert.True(t, strings.HasSuffix(resp.Answer, UnavailableNote))
	assert.Equal(t, []string{"Downtime by Line"}, resp.Sources)
	assert.Equal(t, []string{"Production bottlenecks", "Downtime analysis", "Quality report"}, resp.SuggestedFollowups)

	s := assistant.New(a, "demo", "COO")
	require.NoError(t, s.Ask(context.Background(), "downtime?"))
	h := s.History()
	require.Len(t, h, 2)
	assert.False(t, h[1].Fallback)
	assert.NotEmpty(t, s.Suggestions())
}

func TestChatGenerationErrorAfterCancelIsReturned(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := NewGeminiAssistant(stubGenerator("", context.Canceled, nil))
	s := assistant.New(a, "demo", "CFO")

	err := s.Ask(ctx, "margins?")

	assert.ErrorIs(t, err, context.Canceled)
	h := s.History()
	require.Len(t, h, 2)
	assert.Equal(t, assistant.FallbackText, h[1].Text)
}

func TestChatWithoutPayload(t *testing.T) {
	var got captured
	a := NewGeminiAssistant(stubGenerator(`{"answer":"No data yet."}`, nil, &got))

	resp, err := a.Chat(context.Background(), assistant.Request{Role: "Intern", Query: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "No data yet.", resp.Answer)
	assert.Equal(t, []string{"Tell me more"}, resp.SuggestedFollowups)
	assert.Empty(t, resp.Sources)
	assert.Contains(t, got.system, "No dashboard data is loaded.")
}

func TestParseReplyJSONWithoutAnswerIsPlainText(t *testing.T) {
	resp := parseReply(`{"sources":["x"]}`, "HR")

	assert.Equal(t, `{"sources":["x"]}`, resp.Answer)
	assert.Equal(t, RoleFollowups("HR"), resp.SuggestedFollowups)
}

func TestParseReplyCapsFollowups(t *testing.T) {
	resp := parseReply(`{"answer":"a","suggested_followups":["1","2","3","4","5"]}`, "CEO")

	assert.Equal(t, []string{"1", "2", "3"}, resp.SuggestedFollowups)
}

func TestRoleFollowups(t *testing.T) {
	assert.Equal(t, []string{"Cost breakdown", "Margin trends", "Liability analysis"}, RoleFollowups(" cfo"))
	assert.Equal(t, []string{"Tell me more"}, RoleFollowups(""))

	f := RoleFollowups("HR")
	f[0] = "mutated"
	assert.Equal(t, "Safety incidents", RoleFollowups("HR")[0])
}

func TestBuildPrompt(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	system, prompt := BuildPrompt("CEO", "  risks?  ", engine.BuildSummary("CEO", cooPayload()), now)

	assert.Equal(t, "risks?", prompt)
	assert.Contains(t, system, "CURRENT DATE: 2025-03-01")
	assert.Contains(t, system, "Downtime: 12% (-3%, down)")
	assert.Contains(t, system, `"Summarize top risks", "Revenue forecast", "Competitor updates"`)
	assert.True(t, strings.HasPrefix(system, "You are an intelligent assistant for the CEO"))
}

func TestNewGeminiGeneratorRequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), Config{})
	assert.Error(t, err)
}

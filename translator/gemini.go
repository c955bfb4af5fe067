package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spektr-org/nexus/assistant"
	"github.com/spektr-org/nexus/engine"
)

// ============================================================================
// GEMINI ASSISTANT — Answers chat turns with Google Gemini
// ============================================================================
// A direct alternative to the chat endpoint. Each turn is grounded on the
// dashboard currently displayed, summarized by engine.BuildSummary.
// When generation fails the turn is answered from that summary instead;
// only a cancelled request surfaces the error.
//
// This is the ONLY file that makes external AI calls.
// ============================================================================

// GeminiGenerator implements Generator with the genai SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini-backed generator.
func NewGeminiGenerator(ctx context.Context, cfg Config) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required (set GEMINI_API_KEY)")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiConfig("").Model
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiGenerator{client: client, model: cfg.Model}, nil
}

// Generate sends one single-turn request.
func (g *GeminiGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.2),
		ResponseMIMEType:  "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini returned empty response")
	}
	return text, nil
}

// GeminiAssistant implements assistant.Backend over a Generator.
type GeminiAssistant struct {
	generator Generator
	payload   PayloadSource
	logger    *zap.Logger
	now       func() time.Time
}

// AssistantOption configures a GeminiAssistant.
type AssistantOption func(*GeminiAssistant)

// WithPayloadSource grounds answers on the displayed dashboard.
func WithPayloadSource(src PayloadSource) AssistantOption {
	return func(a *GeminiAssistant) { a.payload = src }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) AssistantOption {
	return func(a *GeminiAssistant) {
		if l != nil {
			a.logger = l.Named("translator")
		}
	}
}

// NewGeminiAssistant creates an assistant backend.
func NewGeminiAssistant(gen Generator, opts ...AssistantOption) *GeminiAssistant {
	a := &GeminiAssistant{generator: gen, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Chat answers one request.
func (a *GeminiAssistant) Chat(ctx context.Context, req assistant.Request) (*assistant.Response, error) {
	role := strings.ToUpper(strings.TrimSpace(req.Role))

	var payload *engine.Payload
	if a.payload != nil {
		payload = a.payload()
	}
	summary := engine.BuildSummary(role, payload)
	system, prompt := BuildPrompt(role, req.Query, summary, a.now())

	a.logger.Debug("assistant query",
		zap.String("role", role),
		zap.String("query", truncate(req.Query, 80)),
		zap.Int("charts", len(summary.Charts)))

	raw, err := a.generator.Generate(ctx, system, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		a.logger.Warn("assistant generation failed, answering from summary", zap.Error(err))
		return summaryReply(role, summary), nil
	}

	resp := parseReply(raw, role)
	if len(resp.Sources) == 0 {
		resp.Sources = chartTitles(summary)
	}
	a.logger.Debug("assistant answered",
		zap.Int("sources", len(resp.Sources)),
		zap.Int("followups", len(resp.SuggestedFollowups)))
	return resp, nil
}

// ============================================================================
// HELPERS
// ============================================================================

// UnavailableNote ends a reply built without the model.
const UnavailableNote = "Note: AI summarization temporarily unavailable. Showing raw data."

// summaryReply answers from the dashboard summary alone.
func summaryReply(role string, s *engine.DashboardSummary) *assistant.Response {
	return &assistant.Response{
		Answer:             "I found relevant information:\n\n" + strings.TrimSpace(s.Text()) + "\n\n" + UnavailableNote,
		Sources:            chartTitles(s),
		SuggestedFollowups: RoleFollowups(role),
	}
}

func chartTitles(s *engine.DashboardSummary) []string {
	var out []string
	for _, c := range s.Charts {
		if c.Title != "" {
			out = append(out, c.Title)
		}
	}
	return out
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

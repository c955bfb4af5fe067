package translator

import (
	"context"

	"github.com/spektr-org/nexus/engine"
)

// ============================================================================
// TRANSLATOR — AI boundary for dashboard questions
// ============================================================================
// The translator is the ONLY component that calls an external AI service.
// It receives the role, the question and a summary of the dashboard the
// user is looking at. It never sees raw chart rows: only KPI lines, chart
// titles and per-series extents.
// ============================================================================

// Generator produces text for a system instruction plus a user prompt.
// Implementations: Gemini (GeminiGenerator); tests use a stub.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, system, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, system, prompt string) (string, error) {
	return f(ctx, system, prompt)
}

// PayloadSource returns the payload currently displayed, or nil. A
// dashboard.Composer's Payload method fits.
type PayloadSource func() *engine.Payload

// Config holds translator configuration.
type Config struct {
	APIKey string // AI provider API key
	Model  string // Model name (e.g., "gemini-2.5-flash")
}

// DefaultGeminiConfig returns a Config with sensible Gemini defaults.
func DefaultGeminiConfig(apiKey string) Config {
	return Config{
		APIKey: apiKey,
		Model:  "gemini-2.5-flash",
	}
}

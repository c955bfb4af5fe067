package translator

import (
	"fmt"
	"strings"
	"time"

	"github.com/spektr-org/nexus/engine"
)

// ============================================================================
// PROMPT BUILDER — Role + dashboard grounded assistant prompt
// ============================================================================
// The system instruction names the role and carries the dashboard summary.
// The user prompt is the question verbatim. Total data sent to the model is
// a few hundred bytes of summary per turn.
// ============================================================================

// BuildPrompt returns the system instruction and the user prompt for one
// question.
func BuildPrompt(role, query string, summary *engine.DashboardSummary, now time.Time) (string, string) {
	var b strings.Builder

	// ── Header ────────────────────────────────────────────────────────────
	fmt.Fprintf(&b, `You are an intelligent assistant for the %s of a manufacturing company.

CURRENT DATE: %s

`, role, now.Format("2006-01-02"))

	// ── Dashboard Context ─────────────────────────────────────────────────
	if summary != nil && (len(summary.KPIs) > 0 || len(summary.Charts) > 0) {
		b.WriteString("DASHBOARD THE USER IS LOOKING AT:\n")
		b.WriteString(summary.Text())
		b.WriteString("\n")
	} else {
		b.WriteString("DASHBOARD THE USER IS LOOKING AT:\nNo dashboard data is loaded.\n\n")
	}

	// ── Instructions ──────────────────────────────────────────────────────
	b.WriteString(`INSTRUCTIONS:
- Answer based strictly on the dashboard context when possible.
- If the context is relevant, cite specific numbers and the chart they come from.
- If the context is not relevant, politely say you don't have that information.
- Be concise and professional.

`)

	// ── Response Format ───────────────────────────────────────────────────
	b.WriteString(buildResponseFormat(role))

	return b.String(), strings.TrimSpace(query)
}

func buildResponseFormat(role string) string {
	examples := make([]string, 0, 3)
	for _, f := range RoleFollowups(role) {
		examples = append(examples, fmt.Sprintf("%q", f))
	}
	return fmt.Sprintf(`RESPONSE FORMAT (valid JSON only):
{
  "answer": "markdown answer",
  "sources": ["chart or KPI titles you used"],
  "suggested_followups": [%s]
}
Suggest at most 3 short follow-up questions.
`, strings.Join(examples, ", "))
}

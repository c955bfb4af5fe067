// Package nexus is a terminal client for role-scoped BI dashboards.
//
// A dashboard is a KPI strip, a list of declarative charts and a list of
// recommended actions, fetched per role from the backend:
//
//	composer := dashboard.New(api)
//	payload, err := composer.Load(ctx, "CEO")
//	view := composer.View() // tiles, rendered panels, action table
//
// Chart rendering (engine) is pure: the same ChartSpec always yields the
// same ChartConfig and malformed records become absent points instead of
// errors. The assistant (assistant) keeps at most one turn in flight and
// answers from either the backend's chat endpoint or Gemini (translator).
//
// Painting (canvas), exports (helpers), the interactive UI (tui) and the
// CLI (cmd/nexus) sit on top of those.
package nexus

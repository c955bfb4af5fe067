package engine

import (
	"fmt"
	"math"
	"strings"
)

// ============================================================================
// TEXT BUILDER — Compact summary of a dashboard payload
// ============================================================================
// The assistant is grounded on what the user is looking at. This builder
// reduces a payload to headline numbers and per-series extents so a prompt
// never carries raw chart rows.
// ============================================================================

// DashboardSummary is a compact, prompt-sized view of a payload.
type DashboardSummary struct {
	Role    string         `json:"role"`
	KPIs    []string       `json:"kpis"`
	Charts  []ChartSummary `json:"charts"`
	Actions []string       `json:"actions,omitempty"`
}

// ChartSummary describes one chart without its rows.
type ChartSummary struct {
	Title   string          `json:"title"`
	Type    Variant         `json:"type"`
	Records int             `json:"records"`
	Series  []SeriesSummary `json:"series,omitempty"`
}

// SeriesSummary holds the extents of one rendered series.
type SeriesSummary struct {
	Name   string  `json:"name"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Latest float64 `json:"latest"`
	Total  float64 `json:"total"`
	Points int     `json:"points"`
}

// BuildSummary summarizes p. A nil payload yields an empty summary for role.
func BuildSummary(role string, p *Payload) *DashboardSummary {
	summary := &DashboardSummary{Role: role, KPIs: []string{}, Charts: []ChartSummary{}}
	if p == nil {
		return summary
	}
	if p.Role != "" {
		summary.Role = p.Role
	}

	for _, tile := range RenderKPIs(p.KPIs) {
		summary.KPIs = append(summary.KPIs,
			fmt.Sprintf("%s: %s (%s, %s)", tile.Label, tile.Value, tile.Trend, tile.Direction))
	}

	for _, spec := range p.Charts {
		panel := Render(spec)
		cs := ChartSummary{Title: spec.Title, Type: panel.ChartType, Records: len(spec.Data)}
		for _, s := range panel.Series {
			if ss, ok := summarizeSeries(s); ok {
				cs.Series = append(cs.Series, ss)
			}
		}
		summary.Charts = append(summary.Charts, cs)
	}

	for _, a := range p.Actions {
		summary.Actions = append(summary.Actions, fmt.Sprintf("%s [%s]", a.Title, a.Priority))
	}
	return summary
}

func summarizeSeries(s ChartSeries) (SeriesSummary, bool) {
	out := SeriesSummary{Name: s.Name, Min: math.Inf(1), Max: math.Inf(-1)}
	for _, p := range s.Data {
		if !p.Present {
			continue
		}
		out.Points++
		out.Total += p.Value
		out.Latest = p.Value
		out.Min = math.Min(out.Min, p.Value)
		out.Max = math.Max(out.Max, p.Value)
	}
	if out.Points == 0 {
		return SeriesSummary{}, false
	}
	out.Total = RoundTo2(out.Total)
	return out, true
}

// Text renders the summary as plain lines, one fact per line.
func (s *DashboardSummary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Role: %s\n", s.Role)
	if len(s.KPIs) > 0 {
		b.WriteString("KPIs:\n")
		for _, k := range s.KPIs {
			fmt.Fprintf(&b, "  - %s\n", k)
		}
	}
	for _, c := range s.Charts {
		fmt.Fprintf(&b, "Chart %q (%s, %s records)\n", c.Title, c.Type, FormatInt(c.Records))
		for _, ss := range c.Series {
			fmt.Fprintf(&b, "  - %s: min %s, max %s, latest %s, total %s\n", ss.Name,
				FormatNumber(ss.Min), FormatNumber(ss.Max), FormatNumber(ss.Latest), FormatNumber(ss.Total))
		}
	}
	if len(s.Actions) > 0 {
		b.WriteString("Recommended actions:\n")
		for _, a := range s.Actions {
			fmt.Fprintf(&b, "  - %s\n", a)
		}
	}
	return b.String()
}

package engine

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyTrend(t *testing.T) {
	cases := []struct {
		trend string
		want  Direction
	}{
		{"+12%", DirectionUp},
		{"-3%", DirectionDown},
		{"0%", DirectionFlat},
		{"", DirectionFlat},
		{"stable", DirectionFlat},
		{"+5 (-2 last wk)", DirectionUp},
		{"-2 (+5 last wk)", DirectionUp},
		{"down-ish", DirectionDown},
	}
	for _, tc := range cases {
		t.Run(tc.trend, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyTrend(tc.trend))
		})
	}
}

func TestRenderKPIStyling(t *testing.T) {
	up := RenderKPI(KPI{Label: "Total Revenue", Value: "$1.2M", Trend: "+12%"})
	assert.Equal(t, DirectionUp, up.Direction)
	assert.Equal(t, "#4ade80", up.Color)
	assert.Equal(t, "▲", up.Icon)
	assert.Equal(t, "$1.2M", up.Value)
	assert.Equal(t, "+12%", up.Trend, "trend text is shown verbatim")

	down := RenderKPI(KPI{Label: "Net Margin", Value: 41.5, Trend: "-1.2%"})
	assert.Equal(t, DirectionDown, down.Direction)
	assert.Equal(t, "#f87171", down.Color)
	assert.Equal(t, "41.50", down.Value)

	flat := RenderKPI(KPI{Label: "Headcount", Value: 120, Trend: "0"})
	assert.Equal(t, DirectionFlat, flat.Direction)
	assert.Equal(t, "–", flat.Icon)
	assert.Equal(t, "120", flat.Value)
}

func TestKPIValueFromJSON(t *testing.T) {
	var kpis []KPI
	raw := `[{"label":"Units","value":1500,"trend":"+3%"},{"label":"Cost","value":"$9k","trend":"-1%"}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &kpis))

	tiles := RenderKPIs(kpis)

	require.Len(t, tiles, 2)
	assert.Equal(t, "1500", tiles[0].Value)
	assert.Equal(t, "$9k", tiles[1].Value)
	assert.Equal(t, "Units", tiles[0].Label)
}

func TestRenderKPIsEmpty(t *testing.T) {
	assert.Empty(t, RenderKPIs(nil))
}

func TestBuildActionTable(t *testing.T) {
	table := BuildActionTable([]Action{
		{Title: "Review Q3 Strategy", Priority: PriorityHigh},
		{Title: "Approve budget", Priority: PriorityMedium},
		{Title: "Mystery", Priority: "Urgent"},
		{Title: "Blank"},
	})

	require.NotNil(t, table)
	assert.Equal(t, "Recommended Actions", table.Title)
	require.Len(t, table.Rows, 4)
	assert.Equal(t, []string{"Review Q3 Strategy", "High Priority"}, table.Rows[0])
	assert.Equal(t, []string{"Mystery", "Urgent Priority"}, table.Rows[2])
	assert.Equal(t, []string{"Blank", "Low Priority"}, table.Rows[3])
	assert.Equal(t, PriorityAccent(PriorityHigh), table.Accents[0])
	assert.Equal(t, PriorityAccent(PriorityLow), table.Accents[2], "unknown priority uses Low styling")
}

func TestBuildActionTableEmpty(t *testing.T) {
	assert.Nil(t, BuildActionTable(nil))
	assert.Nil(t, BuildActionTable([]Action{}))
}

func TestBuildSummary(t *testing.T) {
	payload := &Payload{
		Role: "CFO",
		KPIs: []KPI{{Label: "Cash", Value: "$4M", Trend: "+2%"}},
		Charts: []ChartSpec{
			{
				Title: "Revenue & Margin Trend", Type: VariantComposed, X: "date",
				BarKey: "revenue", LineKey: "margin_pct",
				Data: []Record{
					{"date": "d1", "revenue": 100, "margin_pct": 40},
					{"date": "d2", "revenue": 300, "margin_pct": 35.5},
				},
			},
			{Title: "Nothing", Type: VariantLine, X: "x", Y: "y"},
		},
		Actions: []Action{{Title: "Cut costs", Priority: PriorityHigh}},
	}

	s := BuildSummary("CEO", payload)

	assert.Equal(t, "CFO", s.Role, "payload role wins")
	assert.Equal(t, []string{"Cash: $4M (+2%, up)"}, s.KPIs)
	require.Len(t, s.Charts, 2)
	require.Len(t, s.Charts[0].Series, 2)
	rev := s.Charts[0].Series[0]
	assert.Equal(t, 100.0, rev.Min)
	assert.Equal(t, 300.0, rev.Max)
	assert.Equal(t, 300.0, rev.Latest)
	assert.Equal(t, 400.0, rev.Total)
	assert.Empty(t, s.Charts[1].Series)
	assert.Equal(t, []string{"Cut costs [High]"}, s.Actions)

	text := s.Text()
	assert.True(t, strings.HasPrefix(text, "Role: CFO\n"))
	assert.Contains(t, text, `Chart "Revenue & Margin Trend" (composed, 2 records)`)
	assert.Contains(t, text, "Margin Pct: min 35.50, max 40, latest 35.50, total 75.50")
	assert.Contains(t, text, "Recommended actions:")
}

func TestBuildSummaryNilPayload(t *testing.T) {
	s := BuildSummary("HR", nil)

	assert.Equal(t, "HR", s.Role)
	assert.Empty(t, s.Charts)
	assert.Equal(t, "Role: HR\n", s.Text())
}

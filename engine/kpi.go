package engine

import (
	"fmt"
	"strings"
)

// ============================================================================
// KPI TILE — Scalar metric with a lexical trend direction
// ============================================================================
// The trend is classified by substring only, never by parsing a number:
// a "+" anywhere means up (checked first), else a "-" means down, else flat.
// "+5 (-2 last wk)" is therefore up.
// ============================================================================

// Trend colors and icons per direction.
var (
	trendColors = map[Direction]string{
		DirectionUp:   "#4ade80",
		DirectionDown: "#f87171",
		DirectionFlat: "#9ca3af",
	}
	trendIcons = map[Direction]string{
		DirectionUp:   "▲",
		DirectionDown: "▼",
		DirectionFlat: "–",
	}
)

// ClassifyTrend maps trend text to a direction.
func ClassifyTrend(trend string) Direction {
	switch {
	case strings.Contains(trend, "+"):
		return DirectionUp
	case strings.Contains(trend, "-"):
		return DirectionDown
	default:
		return DirectionFlat
	}
}

// RenderKPI builds the tile for one KPI.
func RenderKPI(kpi KPI) Tile {
	dir := ClassifyTrend(kpi.Trend)
	return Tile{
		Label:     kpi.Label,
		Value:     formatValue(kpi.Value),
		Trend:     kpi.Trend,
		Direction: dir,
		Color:     trendColors[dir],
		Icon:      trendIcons[dir],
	}
}

// RenderKPIs renders tiles in the order given.
func RenderKPIs(kpis []KPI) []Tile {
	tiles := make([]Tile, 0, len(kpis))
	for _, k := range kpis {
		tiles = append(tiles, RenderKPI(k))
	}
	return tiles
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	}
	if n, ok := (Record{"v": v}).Number("v"); ok {
		return FormatNumber(n)
	}
	return fmt.Sprint(v)
}

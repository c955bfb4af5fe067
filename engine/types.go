package engine

// ============================================================================
// NEXUS ENGINE TYPES — Declarative dashboard content + render-ready output
// ============================================================================
// Wire types (ChartSpec, KPI, Action, Payload) arrive from the dashboard
// backend already shaped. Render-ready types (ChartConfig, Tile, TableData)
// are what painters and exporters consume.
//
// Dependency: engine has ZERO external dependencies and never performs I/O.
// ============================================================================

// ============================================================================
// VARIANT — The fixed set of chart families
// ============================================================================

// Variant names a chart family.
type Variant string

const (
	VariantLine     Variant = "line"
	VariantBar      Variant = "bar"
	VariantPie      Variant = "pie"
	VariantArea     Variant = "area"
	VariantRadar    Variant = "radar"
	VariantComposed Variant = "composed"
	VariantScatter  Variant = "scatter"
)

// Variants lists every supported variant in a stable order.
var Variants = []Variant{
	VariantLine, VariantBar, VariantPie, VariantArea,
	VariantRadar, VariantComposed, VariantScatter,
}

// Known reports whether v is one of the enumerated variants.
func (v Variant) Known() bool {
	for _, k := range Variants {
		if v == k {
			return true
		}
	}
	return false
}

// ============================================================================
// CHARTSPEC — Declarative chart description (wire shape)
// ============================================================================

// ChartSpec is one chart as the backend describes it. Which of the field
// references are meaningful depends on Type; the rest are ignored.
type ChartSpec struct {
	ID      string   `json:"id,omitempty"`
	Title   string   `json:"title"`
	Type    Variant  `json:"type"`
	Data    []Record `json:"data"`
	X       string   `json:"x,omitempty"`
	Y       string   `json:"y,omitempty"`
	Keys    []string `json:"keys,omitempty"`
	BarKey  string   `json:"barKey,omitempty"`
	LineKey string   `json:"lineKey,omitempty"`
	Colors  []string `json:"colors,omitempty"`
}

// ============================================================================
// KPI + ACTIONS + PAYLOAD
// ============================================================================

// KPI is a headline metric. Value is whatever the backend sent (string or
// number); Trend is free text such as "+12%" or "Stable".
type KPI struct {
	Label string `json:"label"`
	Value any    `json:"value"`
	Trend string `json:"trend"`
}

// Priority of a recommended action.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Action is a recommended next step shown under the charts.
type Action struct {
	Title    string   `json:"title"`
	Priority Priority `json:"priority"`
}

// Payload is one dashboard load for a role. It is replaced wholesale on
// every reload.
type Payload struct {
	Role    string      `json:"role,omitempty"`
	KPIs    []KPI       `json:"kpis"`
	Charts  []ChartSpec `json:"charts"`
	Actions []Action    `json:"actions,omitempty"`
}

// ============================================================================
// CHART CONFIG — Render-ready panel
// ============================================================================

// Series kinds tell a painter how to draw a series.
const (
	KindLine    = "line"
	KindBar     = "bar"
	KindWedge   = "wedge"
	KindArea    = "area"
	KindPolygon = "polygon"
	KindPoint   = "point"
)

// Axis identifiers for series that bind to a y-scale.
const (
	AxisLeft  = "left"
	AxisRight = "right"
)

// ChartConfig defines how to draw one chart panel.
type ChartConfig struct {
	ID        string  `json:"id,omitempty"`
	ChartType Variant `json:"chartType"`
	Title     string  `json:"title"`
	XAxis     string  `json:"xAxis,omitempty"`
	YAxis     string  `json:"yAxis,omitempty"`
	RightAxis string  `json:"rightAxis,omitempty"` // composed only
	AngleAxis string  `json:"angleAxis,omitempty"` // radar only

	RadiusDomain *Domain `json:"radiusDomain,omitempty"` // radar only
	Stacked      bool    `json:"stacked,omitempty"`

	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`

	// Empty is set when no series carries a present point.
	Empty bool `json:"empty"`
	// Unsupported is set when the spec named an unknown variant.
	Unsupported bool `json:"unsupported,omitempty"`
}

// Domain is a closed numeric interval.
type Domain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp returns v limited to the interval.
func (d Domain) Clamp(v float64) float64 {
	if v < d.Min {
		return d.Min
	}
	if v > d.Max {
		return d.Max
	}
	return v
}

// Contains reports whether v lies inside the interval.
func (d Domain) Contains(v float64) bool {
	return v >= d.Min && v <= d.Max
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Kind  string       `json:"kind"`
	Axis  string       `json:"axis,omitempty"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point. Present is false when the
// source record had no usable value; Value is then zero.
type ChartPoint struct {
	Label   string  `json:"label"`
	X       float64 `json:"x,omitempty"` // scatter only
	Value   float64 `json:"value"`
	Present bool    `json:"present"`
	Clipped bool    `json:"clipped,omitempty"` // radar: outside radius domain
	Color   string  `json:"color,omitempty"`   // pie: per-wedge color
	Share   float64 `json:"share,omitempty"`   // pie: fraction of the ring
}

// ============================================================================
// TILE — Render-ready KPI
// ============================================================================

// Direction of a KPI trend.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Tile is a KPI ready to paint.
type Tile struct {
	Label     string    `json:"label"`
	Value     string    `json:"value"`
	Trend     string    `json:"trend"`
	Direction Direction `json:"direction"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	// Accents holds one color per row (same index as Rows).
	Accents []string `json:"accents,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "center", "right"
}

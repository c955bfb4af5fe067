package engine

import "errors"

// ============================================================================
// CHART BUILDER — Produces ChartConfig from a ChartSpec
// ============================================================================
// Render is a pure function: same spec in, same panel out. It never fails.
// An unknown variant becomes an empty "unsupported" panel so one bad spec
// cannot take down the rest of the dashboard. A record missing a field
// contributes an absent point; the remaining records still render.
// ============================================================================

// Render decodes spec and builds its panel.
func Render(spec ChartSpec, opts ...Option) *ChartConfig {
	cfg := applyOptions(opts)

	chart, err := decode(spec, cfg)
	if err != nil {
		return unsupportedPanel(spec, err)
	}

	out := chart.build(NewSliceView(spec.Data), cfg)
	out.ID = spec.ID
	out.Title = spec.Title
	out.ChartType = chart.Variant()
	out.Colors = seriesColors(out.Series)
	out.Empty = !hasPresentPoint(out.Series)
	return out
}

// RenderAll renders specs in order. The result has one panel per spec.
func RenderAll(specs []ChartSpec, opts ...Option) []*ChartConfig {
	panels := make([]*ChartConfig, 0, len(specs))
	for _, spec := range specs {
		panels = append(panels, Render(spec, opts...))
	}
	return panels
}

func unsupportedPanel(spec ChartSpec, err error) *ChartConfig {
	return &ChartConfig{
		ID:          spec.ID,
		ChartType:   spec.Type,
		Title:       spec.Title,
		Series:      []ChartSeries{},
		Empty:       true,
		Unsupported: errors.Is(err, ErrUnknownVariant),
	}
}

// ============================================================================
// CARTESIAN — line, bar
// ============================================================================

func (c LineChart) build(view SeriesView, _ *config) *ChartConfig {
	return &ChartConfig{
		XAxis:    LabelForField(c.X),
		YAxis:    LabelForField(c.Y),
		Series:   []ChartSeries{categorySeries(view, c.X, c.Y, KindLine, AxisLeft, c.Color)},
		ShowGrid: true,
	}
}

func (c BarChart) build(view SeriesView, _ *config) *ChartConfig {
	return &ChartConfig{
		XAxis:    LabelForField(c.X),
		YAxis:    LabelForField(c.Y),
		Series:   []ChartSeries{categorySeries(view, c.X, c.Y, KindBar, AxisLeft, c.Color)},
		ShowGrid: true,
	}
}

// categorySeries reads one value field against a category field.
func categorySeries(view SeriesView, x, y, kind, axis, color string) ChartSeries {
	points := make([]ChartPoint, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		v, ok := view.Number(i, y)
		points = append(points, ChartPoint{
			Label:   view.Label(i, x),
			Value:   RoundTo2(v),
			Present: ok,
		})
	}
	return ChartSeries{
		Name:  LabelForField(y),
		Kind:  kind,
		Axis:  axis,
		Data:  points,
		Color: color,
	}
}

// ============================================================================
// PIE — one ring, wedge per record in record order
// ============================================================================

func (c PieChart) build(view SeriesView, _ *config) *ChartConfig {
	labelField := c.Label
	if labelField == "" {
		labelField = "name"
	}

	points := make([]ChartPoint, 0, view.Len())
	var total float64
	for i := 0; i < view.Len(); i++ {
		v, ok := view.Number(i, c.Value)
		if ok && v > 0 {
			total += v
		}
		points = append(points, ChartPoint{
			Label:   view.Label(i, labelField),
			Value:   RoundTo2(v),
			Present: ok,
			Color:   colorAt(c.Palette, i),
		})
	}
	if total > 0 {
		for i := range points {
			if points[i].Present && points[i].Value > 0 {
				points[i].Share = RoundTo2(points[i].Value / total)
			}
		}
	}

	return &ChartConfig{
		YAxis: LabelForField(c.Value),
		Series: []ChartSeries{{
			Name: LabelForField(c.Value),
			Kind: KindWedge,
			Data: points,
		}},
		ShowLegend: true,
	}
}

// ============================================================================
// AREA — stacked layers in key order
// ============================================================================

func (c AreaChart) build(view SeriesView, _ *config) *ChartConfig {
	series := make([]ChartSeries, 0, len(c.Keys))
	for i, key := range c.Keys {
		s := categorySeries(view, c.X, key, KindArea, AxisLeft, colorAt(c.Palette, i))
		s.Name = key
		series = append(series, s)
	}
	return &ChartConfig{
		XAxis:      LabelForField(c.X),
		Stacked:    true,
		Series:     series,
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// ============================================================================
// RADAR — polygon per key, fixed angular axis, closed radius domain
// ============================================================================

func (c RadarChart) build(view SeriesView, cfg *config) *ChartConfig {
	domain := cfg.RadiusDomain
	series := make([]ChartSeries, 0, len(c.Keys))
	for i, key := range c.Keys {
		points := make([]ChartPoint, 0, view.Len())
		for r := 0; r < view.Len(); r++ {
			v, ok := view.Number(r, key)
			points = append(points, ChartPoint{
				Label:   view.Label(r, RadarSubjectField),
				Value:   RoundTo2(v),
				Present: ok,
				Clipped: ok && !domain.Contains(v),
			})
		}
		series = append(series, ChartSeries{
			Name:  key,
			Kind:  KindPolygon,
			Data:  points,
			Color: colorAt(c.Palette, i),
		})
	}
	return &ChartConfig{
		AngleAxis:    RadarSubjectField,
		RadiusDomain: &Domain{Min: domain.Min, Max: domain.Max},
		Series:       series,
		ShowLegend:   true,
	}
}

// ============================================================================
// COMPOSED — bar on the left axis, line on an independent right axis
// ============================================================================

func (c ComposedChart) build(view SeriesView, _ *config) *ChartConfig {
	bar := categorySeries(view, c.X, c.Bar, KindBar, AxisLeft, c.BarColor)
	line := categorySeries(view, c.X, c.Line, KindLine, AxisRight, c.LineColor)
	return &ChartConfig{
		XAxis:      LabelForField(c.X),
		YAxis:      LabelForField(c.Bar),
		RightAxis:  LabelForField(c.Line),
		Series:     []ChartSeries{bar, line},
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// ============================================================================
// SCATTER — unconnected (x, y) points
// ============================================================================

func (c ScatterChart) build(view SeriesView, _ *config) *ChartConfig {
	points := make([]ChartPoint, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		x, okX := view.Number(i, c.X)
		y, okY := view.Number(i, c.Y)
		points = append(points, ChartPoint{
			Label:   FormatNumber(RoundTo2(x)),
			X:       RoundTo2(x),
			Value:   RoundTo2(y),
			Present: okX && okY,
		})
	}
	return &ChartConfig{
		XAxis: LabelForField(c.X),
		YAxis: LabelForField(c.Y),
		Series: []ChartSeries{{
			Name:  "Data",
			Kind:  KindPoint,
			Data:  points,
			Color: c.Color,
		}},
		ShowGrid: true,
	}
}

// ============================================================================
// HELPERS
// ============================================================================

func hasPresentPoint(series []ChartSeries) bool {
	for _, s := range series {
		for _, p := range s.Data {
			if p.Present {
				return true
			}
		}
	}
	return false
}

// seriesColors lists the colors in draw order: per-wedge for pies, per
// series otherwise.
func seriesColors(series []ChartSeries) []string {
	var colors []string
	for _, s := range series {
		if s.Kind == KindWedge {
			for _, p := range s.Data {
				colors = append(colors, p.Color)
			}
			continue
		}
		colors = append(colors, s.Color)
	}
	return colors
}

package canvas

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spektr-org/nexus/engine"
)

// ============================================================================
// CHART PAINTER — Draws a ChartConfig into a bordered terminal panel
// ============================================================================
// One drawing routine per series kind. Absent points draw as blanks so the
// category axis keeps its positions. Empty panels show "No data"; an
// unsupported panel is only its frame and title.
// ============================================================================

// NoDataText is drawn inside an empty panel.
const NoDataText = "No data"

const (
	labelWidth   = 12
	valueWidth   = 9
	sparkLevels  = "▁▂▃▄▅▆▇█"
	scatterRows  = 8
	minBarWidth  = 8
	defaultWidth = 80
)

// Painter draws render-ready values as terminal text.
type Painter struct {
	width    int
	styles   Styles
	markdown MarkdownRenderer
}

// MarkdownRenderer renders assistant answers. *glamour.TermRenderer fits.
type MarkdownRenderer interface {
	Render(in string) (string, error)
}

// Option configures a Painter.
type Option func(*Painter)

// WithWidth sets the total width in cells.
func WithWidth(w int) Option {
	return func(p *Painter) {
		if w > 0 {
			p.width = w
		}
	}
}

// WithStyles replaces the default styles.
func WithStyles(s Styles) Option {
	return func(p *Painter) { p.styles = s }
}

// WithMarkdown renders assistant answers as markdown.
func WithMarkdown(r MarkdownRenderer) Option {
	return func(p *Painter) { p.markdown = r }
}

// New creates a painter.
func New(opts ...Option) *Painter {
	p := &Painter{width: defaultWidth, styles: DefaultStyles()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Width returns the configured width.
func (p *Painter) Width() int { return p.width }

// inner is the drawable width inside a panel border and padding.
func (p *Painter) inner() int {
	if w := p.width - 4; w > minBarWidth+labelWidth+valueWidth {
		return w
	}
	return minBarWidth + labelWidth + valueWidth
}

// Panel draws one chart panel.
func (p *Painter) Panel(cfg *engine.ChartConfig) string {
	if cfg == nil {
		return ""
	}

	var body string
	switch {
	case cfg.Unsupported:
		body = ""
	case cfg.Empty:
		body = p.styles.Muted.Render(NoDataText)
	default:
		body = p.chartBody(cfg)
	}

	parts := []string{p.styles.Title.Render(cfg.Title)}
	if axes := axisLine(cfg); axes != "" && !cfg.Empty {
		parts = append(parts, p.styles.Axis.Render(axes))
	}
	if body != "" {
		parts = append(parts, body)
	}
	if cfg.ShowLegend && !cfg.Empty && !cfg.Unsupported {
		if legend := legendLine(cfg); legend != "" {
			parts = append(parts, legend)
		}
	}
	return p.styles.Panel.Width(p.width - 2).Render(strings.Join(parts, "\n"))
}

// Panels draws panels in order, one after another.
func (p *Painter) Panels(cfgs []*engine.ChartConfig) string {
	out := make([]string, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, p.Panel(c))
	}
	return strings.Join(out, "\n")
}

func (p *Painter) chartBody(cfg *engine.ChartConfig) string {
	switch {
	case len(cfg.Series) == 0:
		return p.styles.Muted.Render(NoDataText)
	case cfg.RightAxis != "":
		return p.composed(cfg)
	case cfg.Series[0].Kind == engine.KindWedge:
		return p.wedges(cfg.Series[0])
	case cfg.Series[0].Kind == engine.KindPolygon:
		return p.radar(cfg)
	case cfg.Series[0].Kind == engine.KindPoint:
		return p.scatter(cfg.Series[0])
	case cfg.Stacked:
		return p.stacked(cfg.Series)
	case cfg.Series[0].Kind == engine.KindLine:
		return p.sparkline(cfg.Series[0])
	default:
		return p.bars(cfg.Series[0])
	}
}

// ── bar ────────────────────────────────────────────────────────────────────

func (p *Painter) bars(s engine.ChartSeries) string {
	barW := p.inner() - labelWidth - valueWidth - 2
	maxAbs := maxAbsValue(s.Data)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color))

	var b strings.Builder
	for i, pt := range s.Data {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(fit(pt.Label, labelWidth))
		b.WriteByte(' ')
		if !pt.Present {
			b.WriteString(strings.Repeat(" ", barW))
			b.WriteString(" " + fit("-", valueWidth))
			continue
		}
		n := scaled(math.Abs(pt.Value), maxAbs, barW)
		b.WriteString(style.Render(strings.Repeat("█", n)))
		b.WriteString(strings.Repeat(" ", barW-n))
		b.WriteString(" " + fit(engine.FormatNumber(pt.Value), valueWidth))
	}
	return b.String()
}

// ── line ───────────────────────────────────────────────────────────────────

func (p *Painter) sparkline(s engine.ChartSeries) string {
	lo, hi, ok := extent(s.Data)
	if !ok {
		return p.styles.Muted.Render(NoDataText)
	}
	levels := []rune(sparkLevels)

	var spark strings.Builder
	for _, pt := range s.Data {
		if !pt.Present {
			spark.WriteRune(' ')
			continue
		}
		idx := len(levels) - 1
		if hi > lo {
			idx = int(math.Round((pt.Value - lo) / (hi - lo) * float64(len(levels)-1)))
		}
		spark.WriteRune(levels[idx])
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color))
	first, last := firstLast(s.Data)
	return fmt.Sprintf("%s\n%s  min %s  max %s  latest %s",
		style.Render(spark.String()),
		p.styles.Muted.Render(first+" → "+last),
		engine.FormatNumber(lo), engine.FormatNumber(hi), engine.FormatNumber(latest(s.Data)))
}

// ── area (stacked) ─────────────────────────────────────────────────────────

func (p *Painter) stacked(series []engine.ChartSeries) string {
	barW := p.inner() - labelWidth - valueWidth - 2
	rows := len(series[0].Data)

	totals := make([]float64, rows)
	var maxTotal float64
	for r := 0; r < rows; r++ {
		for _, s := range series {
			if r < len(s.Data) && s.Data[r].Present && s.Data[r].Value > 0 {
				totals[r] += s.Data[r].Value
			}
		}
		maxTotal = math.Max(maxTotal, totals[r])
	}

	var b strings.Builder
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(fit(series[0].Data[r].Label, labelWidth))
		b.WriteByte(' ')
		used := 0
		for _, s := range series {
			if r >= len(s.Data) || !s.Data[r].Present || s.Data[r].Value <= 0 {
				continue
			}
			n := scaled(s.Data[r].Value, maxTotal, barW)
			if used+n > barW {
				n = barW - used
			}
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(strings.Repeat("▇", n)))
			used += n
		}
		b.WriteString(strings.Repeat(" ", barW-used))
		b.WriteString(" " + fit(engine.FormatNumber(engine.RoundTo2(totals[r])), valueWidth))
	}
	return b.String()
}

// ── pie ────────────────────────────────────────────────────────────────────

func (p *Painter) wedges(s engine.ChartSeries) string {
	barW := p.inner() - labelWidth - valueWidth - 10

	var strip strings.Builder
	var rows []string
	for _, pt := range s.Data {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(pt.Color))
		strip.WriteString(style.Render(strings.Repeat("█", scaled(pt.Share, 1, barW))))
		value := "-"
		if pt.Present {
			value = engine.FormatNumber(pt.Value)
		}
		rows = append(rows, fmt.Sprintf("%s %s %s %5.1f%%",
			style.Render("■"), fit(pt.Label, labelWidth), fit(value, valueWidth), pt.Share*100))
	}
	return strip.String() + "\n" + strings.Join(rows, "\n")
}

// ── radar ──────────────────────────────────────────────────────────────────

func (p *Painter) radar(cfg *engine.ChartConfig) string {
	domain := engine.Domain{Min: 0, Max: 100}
	if cfg.RadiusDomain != nil {
		domain = *cfg.RadiusDomain
	}
	colW := valueWidth + 1

	var b strings.Builder
	b.WriteString(fit("", labelWidth))
	for _, s := range cfg.Series {
		b.WriteString(" " + lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(fit(s.Name, colW)))
	}

	spokes := len(cfg.Series[0].Data)
	for r := 0; r < spokes; r++ {
		b.WriteByte('\n')
		b.WriteString(fit(cfg.Series[0].Data[r].Label, labelWidth))
		for _, s := range cfg.Series {
			cell := "-"
			if r < len(s.Data) && s.Data[r].Present {
				pt := s.Data[r]
				cell = engine.FormatNumber(domain.Clamp(pt.Value))
				if pt.Clipped {
					cell += "!"
				}
			}
			b.WriteString(" " + fit(cell, colW))
		}
	}
	b.WriteString("\n" + p.styles.Muted.Render(fmt.Sprintf("radius %s–%s, ! = clipped",
		engine.FormatNumber(domain.Min), engine.FormatNumber(domain.Max))))
	return b.String()
}

// ── composed ───────────────────────────────────────────────────────────────

func (p *Painter) composed(cfg *engine.ChartConfig) string {
	var bar, line engine.ChartSeries
	for _, s := range cfg.Series {
		if s.Axis == engine.AxisRight {
			line = s
		} else {
			bar = s
		}
	}

	barW := p.inner() - labelWidth - 2*valueWidth - 3
	maxAbs := maxAbsValue(bar.Data)
	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(bar.Color))
	lineStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(line.Color))

	var b strings.Builder
	for i, pt := range bar.Data {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(fit(pt.Label, labelWidth) + " ")
		n := 0
		if pt.Present {
			n = scaled(math.Abs(pt.Value), maxAbs, barW)
		}
		b.WriteString(barStyle.Render(strings.Repeat("█", n)))
		b.WriteString(strings.Repeat(" ", barW-n))
		b.WriteString(" " + fit(presentValue(pt), valueWidth))

		right := "-"
		if i < len(line.Data) {
			right = presentValue(line.Data[i])
		}
		b.WriteString(" " + lineStyle.Render(fit("● "+right, valueWidth)))
	}
	return b.String()
}

// ── scatter ────────────────────────────────────────────────────────────────

func (p *Painter) scatter(s engine.ChartSeries) string {
	cols := p.inner() - valueWidth - 1
	var xs, ys []float64
	for _, pt := range s.Data {
		if pt.Present {
			xs = append(xs, pt.X)
			ys = append(ys, pt.Value)
		}
	}
	if len(xs) == 0 {
		return p.styles.Muted.Render(NoDataText)
	}
	xlo, xhi := minMax(xs)
	ylo, yhi := minMax(ys)

	grid := make([][]rune, scatterRows)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", cols))
	}
	for i := range xs {
		c := position(xs[i], xlo, xhi, cols-1)
		r := scatterRows - 1 - position(ys[i], ylo, yhi, scatterRows-1)
		grid[r][c] = '•'
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color))
	var b strings.Builder
	for r, row := range grid {
		tick := ""
		switch r {
		case 0:
			tick = engine.FormatNumber(yhi)
		case scatterRows - 1:
			tick = engine.FormatNumber(ylo)
		}
		b.WriteString(fit(tick, valueWidth) + "│" + style.Render(string(row)) + "\n")
	}
	lo, hi := engine.FormatNumber(xlo), engine.FormatNumber(xhi)
	gap := cols - len(lo) - len(hi)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(fit("", valueWidth) + "└" + strings.Repeat("─", cols) + "\n")
	b.WriteString(fit("", valueWidth+1) + lo + strings.Repeat(" ", gap) + hi)
	return b.String()
}

// ============================================================================
// HELPERS
// ============================================================================

func axisLine(cfg *engine.ChartConfig) string {
	var parts []string
	if cfg.XAxis != "" {
		parts = append(parts, "x: "+cfg.XAxis)
	}
	if cfg.YAxis != "" {
		parts = append(parts, "y: "+cfg.YAxis)
	}
	if cfg.RightAxis != "" {
		parts = append(parts, "right: "+cfg.RightAxis)
	}
	return strings.Join(parts, "  ")
}

func legendLine(cfg *engine.ChartConfig) string {
	if len(cfg.Series) == 1 && cfg.Series[0].Kind == engine.KindWedge {
		return ""
	}
	items := make([]string, 0, len(cfg.Series))
	for _, s := range cfg.Series {
		items = append(items, lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render("■")+" "+s.Name)
	}
	return strings.Join(items, "   ")
}

func presentValue(pt engine.ChartPoint) string {
	if !pt.Present {
		return "-"
	}
	return engine.FormatNumber(pt.Value)
}

func maxAbsValue(points []engine.ChartPoint) float64 {
	var m float64
	for _, pt := range points {
		if pt.Present {
			m = math.Max(m, math.Abs(pt.Value))
		}
	}
	return m
}

func extent(points []engine.ChartPoint) (lo, hi float64, ok bool) {
	for _, pt := range points {
		if !pt.Present {
			continue
		}
		if !ok {
			lo, hi, ok = pt.Value, pt.Value, true
			continue
		}
		lo = math.Min(lo, pt.Value)
		hi = math.Max(hi, pt.Value)
	}
	return lo, hi, ok
}

func latest(points []engine.ChartPoint) float64 {
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Present {
			return points[i].Value
		}
	}
	return 0
}

func firstLast(points []engine.ChartPoint) (string, string) {
	if len(points) == 0 {
		return "", ""
	}
	return points[0].Label, points[len(points)-1].Label
}

func minMax(vals []float64) (float64, float64) {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// scaled maps v in [0, max] onto [0, width] cells.
func scaled(v, max float64, width int) int {
	if max <= 0 || v <= 0 || width <= 0 {
		return 0
	}
	r := v / max * float64(width)
	if math.IsNaN(r) {
		return 0
	}
	if r >= float64(width) {
		return width
	}
	return int(math.Round(r))
}

// position maps v in [lo, hi] onto [0, steps].
func position(v, lo, hi float64, steps int) int {
	if hi <= lo {
		return steps / 2
	}
	r := (v - lo) / (hi - lo) * float64(steps)
	switch {
	case math.IsNaN(r):
		return steps / 2
	case r <= 0:
		return 0
	case r >= float64(steps):
		return steps
	}
	return int(math.Round(r))
}

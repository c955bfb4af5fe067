package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
// CHART VARIANTS — Tagged sum type over the seven chart families
// ============================================================================
// A ChartSpec is loose: every field reference is optional on the wire.
// Decode turns it into exactly one concrete Chart that carries only the
// fields its family reads, with colors already resolved from the palette.
// Builders then never guard optional fields.
// ============================================================================

// ErrUnknownVariant is returned by Decode for a type outside Variants.
var ErrUnknownVariant = errors.New("unknown chart variant")

// Chart is one decoded chart description.
type Chart interface {
	Variant() Variant
	Info() Meta
	build(view SeriesView, cfg *config) *ChartConfig
}

// Meta holds the fields every variant shares.
type Meta struct {
	ID    string
	Title string
}

// LineChart is a single line keyed by Y over the category axis X.
type LineChart struct {
	Meta
	X, Y  string
	Color string
}

// BarChart is a single bar series keyed by Y over the category axis X.
type BarChart struct {
	Meta
	X, Y  string
	Color string
}

// PieChart is one ring with a wedge per record, in record order.
type PieChart struct {
	Meta
	Label   string // field naming each wedge
	Value   string // field sizing each wedge
	Palette []string
}

// AreaChart stacks one layer per key, bottom layer first.
type AreaChart struct {
	Meta
	X       string
	Keys    []string
	Palette []string
}

// RadarChart draws one polygon per key against the fixed "subject" axis.
type RadarChart struct {
	Meta
	Keys    []string
	Palette []string
}

// ComposedChart pairs a bar series on the left axis with a line series on
// an independent right axis.
type ComposedChart struct {
	Meta
	X         string
	Bar       string
	Line      string
	BarColor  string
	LineColor string
}

// ScatterChart plots unconnected (X, Y) points.
type ScatterChart struct {
	Meta
	X, Y  string
	Color string
}

func (LineChart) Variant() Variant     { return VariantLine }
func (BarChart) Variant() Variant      { return VariantBar }
func (PieChart) Variant() Variant      { return VariantPie }
func (AreaChart) Variant() Variant     { return VariantArea }
func (RadarChart) Variant() Variant    { return VariantRadar }
func (ComposedChart) Variant() Variant { return VariantComposed }
func (ScatterChart) Variant() Variant  { return VariantScatter }

func (c LineChart) Info() Meta     { return c.Meta }
func (c BarChart) Info() Meta      { return c.Meta }
func (c PieChart) Info() Meta      { return c.Meta }
func (c AreaChart) Info() Meta     { return c.Meta }
func (c RadarChart) Info() Meta    { return c.Meta }
func (c ComposedChart) Info() Meta { return c.Meta }
func (c ScatterChart) Info() Meta  { return c.Meta }

// RadarSubjectField is the record field that labels each radar spoke.
const RadarSubjectField = "subject"

// NormalizeVariant trims and lower-cases a wire type tag.
func NormalizeVariant(v Variant) Variant {
	return Variant(strings.ToLower(strings.TrimSpace(string(v))))
}

// Decode maps a ChartSpec onto its concrete variant.
func Decode(spec ChartSpec, opts ...Option) (Chart, error) {
	return decode(spec, applyOptions(opts))
}

func decode(spec ChartSpec, cfg *config) (Chart, error) {
	palette := spec.Colors
	if len(palette) == 0 {
		palette = cfg.Palette
	}
	meta := Meta{ID: spec.ID, Title: spec.Title}

	switch NormalizeVariant(spec.Type) {
	case VariantLine:
		return LineChart{Meta: meta, X: spec.X, Y: spec.Y, Color: colorAt(palette, 0)}, nil
	case VariantBar:
		return BarChart{Meta: meta, X: spec.X, Y: spec.Y, Color: colorAt(palette, 0)}, nil
	case VariantPie:
		return PieChart{Meta: meta, Label: spec.X, Value: spec.Y, Palette: palette}, nil
	case VariantArea:
		return AreaChart{Meta: meta, X: spec.X, Keys: spec.Keys, Palette: palette}, nil
	case VariantRadar:
		return RadarChart{Meta: meta, Keys: spec.Keys, Palette: palette}, nil
	case VariantComposed:
		return ComposedChart{
			Meta:      meta,
			X:         spec.X,
			Bar:       spec.BarKey,
			Line:      spec.LineKey,
			BarColor:  colorAt(palette, 0),
			LineColor: colorAt(palette, 1),
		}, nil
	case VariantScatter:
		return ScatterChart{Meta: meta, X: spec.X, Y: spec.Y, Color: colorAt(palette, 0)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, spec.Type)
	}
}

// colorAt cycles through palette by index. An empty palette falls back to
// DefaultPalette.
func colorAt(palette []string, i int) string {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	if i < 0 {
		i = -i
	}
	return palette[i%len(palette)]
}

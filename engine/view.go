package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ============================================================================
// RECORD + SERIES VIEW — Tolerant read access to chart data
// ============================================================================
// Chart data arrives as loosely typed JSON rows. Builders never index those
// maps directly: they read through SeriesView, which treats a missing or
// non-numeric field as absent instead of failing the chart.
// ============================================================================

// Record is one row of chart data: field name → number or string.
type Record map[string]any

// Number returns the numeric value of field. Accepts JSON numbers, Go
// numeric types and numeric strings. ok is false when the field is missing,
// cannot be read as a number, or is NaN or infinite.
func (r Record) Number(field string) (float64, bool) {
	if r == nil || field == "" {
		return 0, false
	}
	raw, exists := r[field]
	if !exists {
		return 0, false
	}
	f, ok := toFloat(raw)
	if !ok || !IsFinite(f) {
		return 0, false
	}
	return f, true
}

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Label returns field as display text. Strings are returned verbatim,
// numbers through FormatNumber; missing fields yield "".
func (r Record) Label(field string) string {
	if r == nil || field == "" {
		return ""
	}
	raw, exists := r[field]
	if !exists || raw == nil {
		return ""
	}
	if s, ok := raw.(string); ok {
		return s
	}
	if n, ok := r.Number(field); ok {
		return FormatNumber(n)
	}
	return fmt.Sprint(raw)
}

// SeriesView provides indexed, read-only access to a chart's records.
// Out-of-range indices behave like empty records.
type SeriesView interface {
	Len() int
	Number(index int, field string) (float64, bool)
	Label(index int, field string) string
}

// sliceView wraps []Record as a SeriesView. No copy is made.
type sliceView struct {
	records []Record
}

// NewSliceView creates a SeriesView over records.
func NewSliceView(records []Record) SeriesView {
	return &sliceView{records: records}
}

func (v *sliceView) Len() int { return len(v.records) }

func (v *sliceView) Number(i int, field string) (float64, bool) {
	if i < 0 || i >= len(v.records) {
		return 0, false
	}
	return v.records[i].Number(field)
}

func (v *sliceView) Label(i int, field string) string {
	if i < 0 || i >= len(v.records) {
		return ""
	}
	return v.records[i].Label(field)
}

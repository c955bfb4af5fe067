package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spektr-org/nexus/engine"
)

// ============================================================================
// AUTO-DISCOVERY — Heuristic column classification for ad-hoc charts
// ============================================================================
// Inspects records (typically read from CSV) and proposes the field
// references a chart needs, so `nexus chart data.csv` works without flags.
//
// Classification pipeline per column:
//   1. Sample values → detect type (numeric or text)
//   2. Name + pattern matching → detect temporal columns
//   3. Type + cardinality → classify role (dimension, measure, skip)
//
// Suggest then fills only the references the caller left empty.
// ============================================================================

// Role is what a column is good for in a chart.
type Role string

const (
	RoleDimension Role = "dimension" // category / x axis
	RoleMeasure   Role = "measure"   // plotted value
	RoleSkipped   Role = "skipped"
)

// Column is one classified field.
type Column struct {
	Key        string `json:"key"`
	Role       Role   `json:"role"`
	Temporal   bool   `json:"temporal,omitempty"`
	Unique     int    `json:"unique"`
	Present    int    `json:"present"`
	SkipReason string `json:"skipReason,omitempty"`
}

// ErrNoChartFields is returned when Suggest cannot find columns for the
// requested variant.
var ErrNoChartFields = errors.New("no suitable columns")

// Discover classifies keys (in order) over records.
func Discover(records []engine.Record, keys []string) []Column {
	columns := make([]Column, 0, len(keys))
	for _, key := range keys {
		columns = append(columns, analyzeColumn(key, records))
	}
	return columns
}

// Suggest returns spec with empty field references filled from the
// discovered columns. An empty Type is chosen as well: line over a
// temporal dimension, bar over any other dimension, scatter for two
// measures and nothing else.
func Suggest(spec engine.ChartSpec, keys []string) (engine.ChartSpec, error) {
	columns := Discover(spec.Data, keys)

	var dims, temporal, measures []string
	for _, c := range columns {
		switch c.Role {
		case RoleDimension:
			dims = append(dims, c.Key)
			if c.Temporal {
				temporal = append(temporal, c.Key)
			}
		case RoleMeasure:
			measures = append(measures, c.Key)
		}
	}
	category := first(append(temporal, dims...))

	if spec.Type == "" {
		switch {
		case len(temporal) > 0 && len(measures) > 0:
			spec.Type = engine.VariantLine
		case len(dims) > 0 && len(measures) > 0:
			spec.Type = engine.VariantBar
		case len(measures) >= 2:
			spec.Type = engine.VariantScatter
		default:
			return spec, fmt.Errorf("%w: need a category and a numeric column", ErrNoChartFields)
		}
	}

	switch v := engine.NormalizeVariant(spec.Type); v {
	case engine.VariantLine, engine.VariantArea:
		fill(&spec.X, category)
		if v == engine.VariantArea {
			if len(spec.Keys) == 0 {
				spec.Keys = measures
			}
		} else {
			fill(&spec.Y, first(measures))
		}
	case engine.VariantBar, engine.VariantPie:
		fill(&spec.X, first(dims))
		fill(&spec.Y, first(measures))
	case engine.VariantRadar:
		if len(spec.Keys) == 0 {
			spec.Keys = measures
		}
	case engine.VariantComposed:
		fill(&spec.X, category)
		fill(&spec.BarKey, first(measures))
		fill(&spec.LineKey, first(without(measures, spec.BarKey)))
	case engine.VariantScatter:
		fill(&spec.X, first(measures))
		fill(&spec.Y, first(without(measures, spec.X)))
	default:
		return spec, nil // unknown variants render as unsupported
	}

	if req, ok := Requirements(engine.NormalizeVariant(spec.Type)); ok {
		for _, f := range req.Fields {
			if !fieldSet(spec, f) {
				return spec, fmt.Errorf("%w for %s: %s", ErrNoChartFields, spec.Type, f)
			}
		}
	}
	return spec, nil
}

// ============================================================================
// COLUMN ANALYSIS
// ============================================================================

// analyzeColumn inspects all values in a column and classifies it.
func analyzeColumn(key string, records []engine.Record) Column {
	col := Column{Key: key}

	unique := make(map[string]bool)
	var numeric, decimals int
	var samples []string
	for _, r := range records {
		label := strings.TrimSpace(r.Label(key))
		if label == "" || isNull(label) {
			continue
		}
		col.Present++
		if !unique[label] {
			unique[label] = true
			if len(samples) < 10 {
				samples = append(samples, label)
			}
		}
		if v, ok := r.Number(key); ok {
			numeric++
			if v != float64(int64(v)) {
				decimals++
			}
		}
	}
	col.Unique = len(unique)

	if col.Present == 0 {
		col.Role = RoleSkipped
		col.SkipReason = "all values are empty"
		return col
	}

	col.Temporal = temporalName(key) || temporalValues(samples)
	isNumeric := numeric >= int(float64(col.Present)*0.8)
	col.classifyRole(len(records), isNumeric, decimals > 0)
	return col
}

// classifyRole determines dimension vs measure vs skip.
func (col *Column) classifyRole(totalRows int, isNumeric, hasDecimals bool) {
	switch {
	case col.Temporal:
		// Dates are always dimensions, even numeric years
		col.Role = RoleDimension

	case isNumeric:
		if col.Unique == totalRows && totalRows > 10 && !hasDecimals && strings.HasSuffix(col.Key, "id") {
			col.Role = RoleSkipped
			col.SkipReason = "unique per row, likely an ID column"
			return
		}
		if hasDecimals {
			col.Role = RoleMeasure
			return
		}
		// Few unique values at a low ratio is a coded dimension (priority 1-5)
		ratio := float64(col.Unique) / float64(totalRows)
		if col.Unique < 20 && ratio < 0.3 {
			col.Role = RoleDimension
			return
		}
		col.Role = RoleMeasure

	default:
		if col.Unique > totalRows/2 && col.Unique > 50 {
			col.Role = RoleSkipped
			col.SkipReason = fmt.Sprintf("high cardinality (%d unique values)", col.Unique)
			return
		}
		col.Role = RoleDimension
	}
}

// ============================================================================
// TEMPORAL DETECTION
// ============================================================================

var temporalNames = []string{"date", "day", "week", "month", "quarter", "year", "period"}

func temporalName(key string) bool {
	for _, part := range strings.FieldsFunc(strings.ToLower(key), func(r rune) bool { return r == '_' || r == ' ' }) {
		for _, n := range temporalNames {
			if part == n {
				return true
			}
		}
	}
	return false
}

var monthPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z][a-z]{2}-\d{4}$`), // Jan-2026
	regexp.MustCompile(`^\d{4}-\d{2}$`),         // 2026-01
	regexp.MustCompile(`^Q[1-4][-\s]\d{4}$`),    // Q1-2026, Q1 2026
	regexp.MustCompile(`^[A-Z][a-z]+ \d{4}$`),   // January 2026
	regexp.MustCompile(`^(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)$`),
}

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// temporalValues reports whether 80% of samples look like dates or periods.
func temporalValues(samples []string) bool {
	if len(samples) == 0 {
		return false
	}
	matches := 0
	for _, s := range samples {
		if isDate(s) || matchesPeriod(s) {
			matches++
		}
	}
	return float64(matches)/float64(len(samples)) >= 0.8
}

func isDate(s string) bool {
	for _, layout := range dateFormats {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func matchesPeriod(s string) bool {
	for _, re := range monthPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// ── Helpers ─────────────────────────────────────────────────────────────────

func isNull(s string) bool {
	switch s {
	case "null", "NULL", "N/A", "n/a":
		return true
	}
	return false
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func first(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[0]
}

func without(items []string, drop string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it != drop {
			out = append(out, it)
		}
	}
	return out
}

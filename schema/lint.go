package schema

import (
	"fmt"
	"sort"

	"github.com/spektr-org/nexus/engine"
)

// ============================================================================
// LINT — Field requirements per chart variant
// ============================================================================
// Lint never blocks rendering. The renderer already degrades a bad spec to
// an empty or partial panel; lint only explains why, so the composer can log
// it and `nexus lint` can print it.
// ============================================================================

// Severity of a lint issue.
type Severity string

const (
	SeverityError   Severity = "error"   // the panel will be empty or unsupported
	SeverityWarning Severity = "warning" // some points will be absent
)

// Issue is one finding for a ChartSpec.
type Issue struct {
	Chart    string   `json:"chart"`
	Field    string   `json:"field,omitempty"`
	Record   int      `json:"record"` // -1 when the issue is not tied to a record
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.Record >= 0 {
		return fmt.Sprintf("[%s] %s: record %d: %s", i.Severity, i.Chart, i.Record, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Chart, i.Message)
}

// Requirement names which ChartSpec fields a variant reads.
type Requirement struct {
	Variant engine.Variant
	// Fields are spec-level references that must be set (x, y, keys, ...).
	Fields []string
	// Numeric reports whether the referenced value fields must hold numbers.
	Numeric bool
}

var requirements = map[engine.Variant]Requirement{
	engine.VariantLine:     {Variant: engine.VariantLine, Fields: []string{"x", "y"}, Numeric: true},
	engine.VariantBar:      {Variant: engine.VariantBar, Fields: []string{"x", "y"}, Numeric: true},
	engine.VariantPie:      {Variant: engine.VariantPie, Fields: []string{"y"}, Numeric: true},
	engine.VariantArea:     {Variant: engine.VariantArea, Fields: []string{"x", "keys"}, Numeric: true},
	engine.VariantRadar:    {Variant: engine.VariantRadar, Fields: []string{"keys"}, Numeric: true},
	engine.VariantComposed: {Variant: engine.VariantComposed, Fields: []string{"x", "barKey", "lineKey"}, Numeric: true},
	engine.VariantScatter:  {Variant: engine.VariantScatter, Fields: []string{"x", "y"}, Numeric: true},
}

// Requirements returns the field requirement for a variant. ok is false
// for a variant the renderer does not know.
func Requirements(v engine.Variant) (Requirement, bool) {
	r, ok := requirements[engine.NormalizeVariant(v)]
	return r, ok
}

// Lint checks spec against its variant's requirements. A nil result means
// the spec is clean.
func Lint(spec engine.ChartSpec) []Issue {
	name := chartName(spec)

	req, ok := Requirements(spec.Type)
	if !ok {
		return []Issue{{
			Chart: name, Record: -1, Severity: SeverityError,
			Message: fmt.Sprintf("unknown chart type %q; panel will be empty", spec.Type),
		}}
	}

	var issues []Issue
	for _, f := range req.Fields {
		if !fieldSet(spec, f) {
			issues = append(issues, Issue{
				Chart: name, Field: f, Record: -1, Severity: SeverityError,
				Message: fmt.Sprintf("%s chart requires %q", req.Variant, f),
			})
		}
	}
	if len(spec.Data) == 0 {
		issues = append(issues, Issue{
			Chart: name, Record: -1, Severity: SeverityWarning,
			Message: "series is empty",
		})
		return issues
	}

	label, values := recordFields(spec, req.Variant)
	for i, rec := range spec.Data {
		if label != "" {
			if _, exists := rec[label]; !exists {
				issues = append(issues, Issue{
					Chart: name, Field: label, Record: i, Severity: SeverityWarning,
					Message: fmt.Sprintf("missing label field %q", label),
				})
			}
		}
		for _, f := range values {
			if _, ok := rec.Number(f); !ok {
				issues = append(issues, Issue{
					Chart: name, Field: f, Record: i, Severity: SeverityWarning,
					Message: fmt.Sprintf("field %q is missing or not numeric", f),
				})
			}
		}
	}
	return issues
}

// LintAll lints every chart of a payload, in chart order.
func LintAll(specs []engine.ChartSpec) []Issue {
	var issues []Issue
	for _, s := range specs {
		issues = append(issues, Lint(s)...)
	}
	return issues
}

// CountBySeverity tallies issues, for summary lines.
func CountBySeverity(issues []Issue) map[Severity]int {
	out := map[Severity]int{}
	for _, i := range issues {
		out[i.Severity]++
	}
	return out
}

// ── Helpers ─────────────────────────────────────────────────────────────────

func chartName(spec engine.ChartSpec) string {
	switch {
	case spec.Title != "":
		return spec.Title
	case spec.ID != "":
		return spec.ID
	default:
		return "(untitled)"
	}
}

func fieldSet(spec engine.ChartSpec, field string) bool {
	switch field {
	case "x":
		return spec.X != ""
	case "y":
		return spec.Y != ""
	case "keys":
		return len(spec.Keys) > 0
	case "barKey":
		return spec.BarKey != ""
	case "lineKey":
		return spec.LineKey != ""
	}
	return false
}

// recordFields returns the label field and the numeric value fields each
// record of spec should carry.
func recordFields(spec engine.ChartSpec, v engine.Variant) (string, []string) {
	var values []string
	add := func(fields ...string) {
		for _, f := range fields {
			if f != "" {
				values = append(values, f)
			}
		}
	}

	switch v {
	case engine.VariantLine, engine.VariantBar:
		add(spec.Y)
		return spec.X, values
	case engine.VariantPie:
		add(spec.Y)
		if spec.X == "" {
			return "name", values
		}
		return spec.X, values
	case engine.VariantArea:
		add(spec.Keys...)
		return spec.X, values
	case engine.VariantRadar:
		add(spec.Keys...)
		return engine.RadarSubjectField, values
	case engine.VariantComposed:
		add(spec.BarKey, spec.LineKey)
		return spec.X, values
	case engine.VariantScatter:
		add(spec.X, spec.Y)
		return "", values
	}
	return "", nil
}

// KnownVariants lists the variants with requirements, sorted.
func KnownVariants() []engine.Variant {
	out := make([]engine.Variant, 0, len(requirements))
	for v := range requirements {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

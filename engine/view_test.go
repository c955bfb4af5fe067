package engine

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordNumber(t *testing.T) {
	r := Record{
		"f":      12.5,
		"i":      7,
		"i64":    int64(9),
		"s":      " 3.25 ",
		"bad":    "n/a",
		"num":    json.Number("42"),
		"nested": []any{1},
		"nil":    nil,
		"nan":    "NaN",
		"inf":    " Infinity",
		"ninf":   "-Inf",
		"fnan":   math.NaN(),
		"finf":   math.Inf(1),
	}

	cases := []struct {
		field string
		want  float64
		ok    bool
	}{
		{"f", 12.5, true},
		{"i", 7, true},
		{"i64", 9, true},
		{"s", 3.25, true},
		{"num", 42, true},
		{"bad", 0, false},
		{"nested", 0, false},
		{"nil", 0, false},
		{"nan", 0, false},
		{"inf", 0, false},
		{"ninf", 0, false},
		{"fnan", 0, false},
		{"finf", 0, false},
		{"missing", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := r.Number(tc.field)
		assert.Equal(t, tc.ok, ok, tc.field)
		assert.Equal(t, tc.want, got, tc.field)
	}
}

func TestRecordLabel(t *testing.T) {
	r := Record{"name": "North", "n": 3.0, "frac": 0.126, "flag": true}

	assert.Equal(t, "North", r.Label("name"))
	assert.Equal(t, "3", r.Label("n"))
	assert.Equal(t, "0.13", r.Label("frac"))
	assert.Equal(t, "true", r.Label("flag"))
	assert.Equal(t, "", r.Label("missing"))
	assert.Equal(t, "", Record(nil).Label("name"))
}

func TestSliceViewOutOfRange(t *testing.T) {
	v := NewSliceView([]Record{{"a": 1}})

	assert.Equal(t, 1, v.Len())
	_, ok := v.Number(5, "a")
	assert.False(t, ok)
	assert.Equal(t, "", v.Label(-1, "a"))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatInt(1234567))
	assert.Equal(t, "-1,000", FormatInt(-1000))
	assert.Equal(t, "12", FormatNumber(12))
	assert.Equal(t, "12.35", FormatNumber(12.346))
	assert.Equal(t, 1.01, RoundTo2(1.005000001))
	assert.Equal(t, "Downtime Minutes", LabelForField("downtime_minutes"))
	assert.Equal(t, "Revenue", LabelForField("revenue"))
	assert.Equal(t, "", LabelForField(""))
	assert.Equal(t, "État X", LabelForField("état_x"))
	assert.Equal(t, "Ümsatz", LabelForField("ümsatz"))
}

func TestRenderNonFiniteIsAbsent(t *testing.T) {
	panel := Render(ChartSpec{
		Title: "Revenue", Type: VariantBar, X: "m", Y: "v",
		Data: []Record{{"m": "Jan", "v": 10}, {"m": "Feb", "v": "Infinity"}, {"m": "Mar", "v": "NaN"}},
	})

	pts := panel.Series[0].Data
	assert.True(t, pts[0].Present)
	assert.False(t, pts[1].Present)
	assert.False(t, pts[2].Present)

	_, err := json.Marshal(panel)
	assert.NoError(t, err)
}

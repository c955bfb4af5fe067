package helpers

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/nexus/dashboard"
	"github.com/spektr-org/nexus/engine"
)

// ============================================================================
// XLSX HELPER — Exports a loaded dashboard to a workbook
// ============================================================================
// Sheet layout:
//   Summary  KPI tiles, then recommended actions
//   <panel>  one sheet per chart panel: data block at A1, native chart at E2
// ============================================================================

const (
	summarySheet  = "Summary"
	maxSheetName  = 31
	chartAnchor   = "E2"
	defaultSheet  = "Sheet1"
	invalidSheetC = `[]:*?/\`
)

// chartTypes maps each variant to the native chart drawn beside its data.
var chartTypes = map[engine.Variant]excelize.ChartType{
	engine.VariantLine:     excelize.Line,
	engine.VariantBar:      excelize.Col,
	engine.VariantPie:      excelize.Pie,
	engine.VariantArea:     excelize.AreaStacked,
	engine.VariantRadar:    excelize.Radar,
	engine.VariantComposed: excelize.Col,
	engine.VariantScatter:  excelize.Scatter,
}

// WriteDashboardXLSX writes a loaded dashboard view as a workbook.
func WriteDashboardXLSX(w io.Writer, v dashboard.View) error {
	if v.State != dashboard.StateLoaded {
		return fmt.Errorf("dashboard is not loaded (%s)", v.State)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, summarySheet); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}
	if err := writeSummary(f, v); err != nil {
		return err
	}

	used := map[string]bool{strings.ToLower(summarySheet): true}
	for i, p := range v.Panels {
		if p == nil {
			continue
		}
		name := sheetName(p.Title, i, used)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", name, err)
		}
		if err := writePanel(f, name, p); err != nil {
			return fmt.Errorf("panel %q: %w", p.Title, err)
		}
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// writeSummary lays out tiles as Label/Value/Trend rows, then actions.
func writeSummary(f *excelize.File, v dashboard.View) error {
	row := 1
	set := func(values ...any) error {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		row++
		return f.SetSheetRow(summarySheet, cell, &values)
	}

	title := "Dashboard"
	if v.Role != "" {
		title = v.Role + " Dashboard"
	}
	if err := set(title); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	row++

	if len(v.Tiles) > 0 {
		if err := set("Label", "Value", "Trend", "Direction"); err != nil {
			return fmt.Errorf("failed to write KPIs: %w", err)
		}
		for _, t := range v.Tiles {
			if err := set(t.Label, t.Value, t.Trend, string(t.Direction)); err != nil {
				return fmt.Errorf("failed to write KPIs: %w", err)
			}
		}
		row++
	}

	if v.Actions != nil && len(v.Actions.Rows) > 0 {
		if err := set(v.Actions.Title); err != nil {
			return fmt.Errorf("failed to write actions: %w", err)
		}
		header := make([]any, 0, len(v.Actions.Columns))
		for _, c := range v.Actions.Columns {
			header = append(header, c.Label)
		}
		if err := set(header...); err != nil {
			return fmt.Errorf("failed to write actions: %w", err)
		}
		for _, r := range v.Actions.Rows {
			cells := make([]any, len(r))
			for i, c := range r {
				cells[i] = c
			}
			if err := set(cells...); err != nil {
				return fmt.Errorf("failed to write actions: %w", err)
			}
		}
	}
	return nil
}

// writePanel writes the data block and, when there is data, a native chart.
func writePanel(f *excelize.File, sheet string, p *engine.ChartConfig) error {
	rows := panelRows(p)[1:] // title goes on the chart, not the grid
	if len(rows) == 0 {
		return f.SetCellValue(sheet, "A1", p.Title)
	}

	for r, row := range rows {
		for c, val := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			var err error
			if r > 0 && val != "" && (c > 0 || p.ChartType == engine.VariantScatter) {
				err = f.SetCellValue(sheet, cell, numberOrText(val))
			} else {
				err = f.SetCellValue(sheet, cell, val)
			}
			if err != nil {
				return fmt.Errorf("failed to write %s: %w", cell, err)
			}
		}
	}

	if p.Empty || p.Unsupported || len(rows) < 2 {
		return nil
	}
	main, combo := buildCharts(sheet, p, len(rows))
	if main == nil {
		return nil
	}
	if combo != nil {
		return f.AddChart(sheet, chartAnchor, main, combo)
	}
	return f.AddChart(sheet, chartAnchor, main)
}

// buildCharts returns the chart for a panel and, for composed panels, the
// line overlay drawn on the secondary axis.
func buildCharts(sheet string, p *engine.ChartConfig, rows int) (*excelize.Chart, *excelize.Chart) {
	typ, ok := chartTypes[p.ChartType]
	if !ok {
		return nil, nil
	}
	ref := func(col, from, to int) string {
		a, _ := excelize.CoordinatesToCellName(col, from, true)
		b, _ := excelize.CoordinatesToCellName(col, to, true)
		return fmt.Sprintf("'%s'!%s:%s", sheet, a, b)
	}
	head := func(col int) string {
		a, _ := excelize.CoordinatesToCellName(col, 1, true)
		return fmt.Sprintf("'%s'!%s", sheet, a)
	}

	main := &excelize.Chart{
		Type:   typ,
		Title:  []excelize.RichTextRun{{Text: p.Title}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	}

	if p.ChartType == engine.VariantScatter {
		main.Series = []excelize.ChartSeries{{
			Name:       head(2),
			Categories: ref(1, 2, rows),
			Values:     ref(2, 2, rows),
		}}
		return main, nil
	}

	var combo *excelize.Chart
	for i, s := range p.Series {
		series := excelize.ChartSeries{
			Name:       head(i + 2),
			Categories: ref(1, 2, rows),
			Values:     ref(i+2, 2, rows),
		}
		if p.ChartType == engine.VariantComposed && s.Axis == engine.AxisRight {
			combo = &excelize.Chart{
				Type:   excelize.Line,
				Series: []excelize.ChartSeries{series},
				YAxis:  excelize.ChartAxis{Secondary: true},
			}
			continue
		}
		main.Series = append(main.Series, series)
	}
	return main, combo
}

// sheetName makes a valid, unique sheet name from a panel title.
func sheetName(title string, index int, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidSheetC, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	name = strings.Trim(name, "'")
	if name == "" {
		name = fmt.Sprintf("Chart %d", index+1)
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}

	base := name
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		r := []rune(base)
		if len(r)+len(suffix) > maxSheetName {
			r = r[:maxSheetName-len(suffix)]
		}
		name = string(r) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func numberOrText(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

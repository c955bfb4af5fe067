package helpers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spektr-org/nexus/engine"
)

// ============================================================================
// CSV HELPER — Reads chart records from CSV, writes rendered panels to CSV
// ============================================================================
// Reading: each row becomes an engine.Record keyed by the snake_cased
// header; numeric cells become numbers, everything else stays text.
// Writing: one block per panel, separated by a blank row.
// ============================================================================

// ParseCSV parses CSV bytes into Records. It returns the records and the
// column keys in header order. Malformed rows are skipped.
func ParseCSV(data []byte) ([]engine.Record, []string, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	keys := make([]string, len(headers))
	for i, h := range headers {
		keys[i] = toSnakeCase(strings.TrimSpace(h))
	}

	var records []engine.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}

		rec := make(engine.Record, len(keys))
		for i, val := range row {
			if i >= len(keys) {
				break
			}
			val = strings.TrimSpace(val)
			if val == "" {
				continue
			}
			// Try numeric first; NaN and Inf stay text
			if f, err := strconv.ParseFloat(val, 64); err == nil && engine.IsFinite(f) {
				rec[keys[i]] = f
			} else {
				rec[keys[i]] = val
			}
		}
		records = append(records, rec)
	}

	return records, keys, nil
}

// WriteDashboardCSV writes one block per panel: a title row, a header row
// (label column then one column per series) and one row per point.
// Unsupported panels write their title row only.
func WriteDashboardCSV(w io.Writer, panels []*engine.ChartConfig) error {
	cw := csv.NewWriter(w)
	for i, p := range panels {
		if p == nil {
			continue
		}
		if i > 0 {
			if err := cw.Write([]string{}); err != nil {
				return fmt.Errorf("failed to write CSV: %w", err)
			}
		}
		for _, row := range panelRows(p) {
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV: %w", err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// panelRows flattens a panel to rows: title, header, data.
func panelRows(p *engine.ChartConfig) [][]string {
	rows := [][]string{{p.Title, string(p.ChartType)}}
	if p.Unsupported || len(p.Series) == 0 {
		return rows
	}

	if p.Series[0].Kind == engine.KindPoint {
		rows = append(rows, []string{orDefault(p.XAxis, "x"), orDefault(p.YAxis, "y")})
		for _, pt := range p.Series[0].Data {
			if pt.Present {
				rows = append(rows, []string{formatCell(pt.X, true), formatCell(pt.Value, true)})
			}
		}
		return rows
	}

	header := []string{orDefault(p.XAxis, orDefault(p.AngleAxis, "label"))}
	for _, s := range p.Series {
		header = append(header, s.Name)
	}
	if p.Series[0].Kind == engine.KindWedge {
		header = append(header, "share")
	}
	rows = append(rows, header)

	for i, pt := range p.Series[0].Data {
		row := []string{pt.Label}
		for _, s := range p.Series {
			if i < len(s.Data) {
				row = append(row, formatCell(s.Data[i].Value, s.Data[i].Present))
			} else {
				row = append(row, "")
			}
		}
		if p.Series[0].Kind == engine.KindWedge {
			row = append(row, strconv.FormatFloat(pt.Share, 'f', 2, 64))
		}
		rows = append(rows, row)
	}
	return rows
}

func formatCell(v float64, present bool) string {
	if !present {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// toSnakeCase converts "Column Name" → "column_name".
func toSnakeCase(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

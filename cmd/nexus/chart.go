package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/spektr-org/nexus/canvas"
	"github.com/spektr-org/nexus/engine"
	"github.com/spektr-org/nexus/helpers"
	"github.com/spektr-org/nexus/schema"
)

var (
	chartType   string
	chartTitle  string
	chartX      string
	chartY      string
	chartKeys   []string
	chartBar    string
	chartLine   string
	chartFormat string
	chartWidth  int
)

// chartCmd renders a CSV file as one chart, locally.
var chartCmd = &cobra.Command{
	Use:   "chart FILE.csv",
	Short: "render a CSV file as a chart",
	Long: `Render a CSV file locally with the same chart engine the dashboard uses.

Headers are snake_cased ("Down Time" becomes down_time); numeric cells are
read as numbers. Field flags name those snake_cased columns; any left out
are picked from the data (dates and categories for the axis, numeric
columns for values).

Types: line, bar, pie, area, radar, composed, scatter`,
	Example: `  $ nexus chart downtime.csv
  $ nexus chart downtime.csv --type bar --x line --y minutes
  $ nexus chart revenue.csv --type composed --x month --bar revenue --line margin_pct
  $ nexus chart regions.csv --type radar --keys revenue,profit --format json`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runChart,
}

func init() {
	chartCmd.Flags().StringVarP(&chartType, "type", "t", "", "Chart type (picked from the columns when empty)")
	chartCmd.Flags().StringVar(&chartTitle, "title", "", "Chart title (defaults to the file name)")
	chartCmd.Flags().StringVar(&chartX, "x", "", "Category / x field")
	chartCmd.Flags().StringVar(&chartY, "y", "", "Value / y field")
	chartCmd.Flags().StringSliceVar(&chartKeys, "keys", nil, "Series fields for area and radar")
	chartCmd.Flags().StringVar(&chartBar, "bar", "", "Bar field for composed")
	chartCmd.Flags().StringVar(&chartLine, "line", "", "Line field for composed")
	chartCmd.Flags().StringVarP(&chartFormat, "format", "f", "text", "Output format: text, json, csv")
	chartCmd.Flags().IntVarP(&chartWidth, "width", "w", 100, "Render width for text output")
}

func runChart(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	records, columns, err := helpers.ParseCSV(data)
	if err != nil {
		return err
	}

	title := chartTitle
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	}
	spec := engine.ChartSpec{
		Title:   title,
		Type:    engine.Variant(chartType),
		Data:    records,
		X:       chartX,
		Y:       chartY,
		Keys:    chartKeys,
		BarKey:  chartBar,
		LineKey: chartLine,
	}

	spec, err = schema.Suggest(spec, columns)
	if err != nil {
		printInfo("columns: %s", strings.Join(columns, ", "))
		return err
	}

	issues := schema.Lint(spec)
	for _, issue := range issues {
		printWarning("%s", issue)
	}
	if schema.CountBySeverity(issues)[schema.SeverityError] > 0 {
		printInfo("columns: %s", strings.Join(columns, ", "))
	}

	cfg := engine.Render(spec)
	out := cmd.OutOrStdout()
	switch strings.ToLower(chartFormat) {
	case "json":
		data, err := sonic.ConfigStd.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode chart: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "csv":
		return helpers.WriteDashboardCSV(out, []*engine.ChartConfig{cfg})
	case "text":
		_, err := fmt.Fprintln(out, canvas.New(canvas.WithWidth(chartWidth)).Panel(cfg))
		return err
	default:
		return fmt.Errorf("unknown format %q (want text, json or csv)", chartFormat)
	}
}

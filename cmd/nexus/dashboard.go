package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/nexus/canvas"
	"github.com/spektr-org/nexus/dashboard"
	"github.com/spektr-org/nexus/engine"
	"github.com/spektr-org/nexus/helpers"
)

var (
	dashRoles  []string
	dashFormat string
	dashOut    string
	dashWidth  int
)

// dashboardCmd prints or exports dashboards without the interactive UI.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "print or export role dashboards",
	Long: `Fetch one or more role dashboards and print or export them.

Roles are fetched concurrently. Without --role the logged-in role is used.

Formats:
  text      Terminal rendering (default)
  json      Raw dashboard payloads
  pretty    Pretty-printed JSON
  csv       Chart data, one block per chart (ready for Sheets/Excel)
  xlsx      Workbook with a sheet and native chart per panel (needs --out)`,
	Example: `  $ nexus dashboard
  $ nexus dashboard --role CEO,CFO --format json
  $ nexus dashboard --role HR --format csv --out hr.csv
  $ nexus dashboard --role CEO,COO --format xlsx --out board.xlsx   # board-CEO.xlsx, board-COO.xlsx`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runDashboard,
}

func init() {
	dashboardCmd.Flags().StringSliceVarP(&dashRoles, "role", "r", nil, "Roles to fetch (comma separated)")
	dashboardCmd.Flags().StringVarP(&dashFormat, "format", "f", "text", "Output format: text, json, pretty, csv, xlsx")
	dashboardCmd.Flags().StringVarP(&dashOut, "out", "o", "", "Write output to file instead of stdout")
	dashboardCmd.Flags().IntVarP(&dashWidth, "width", "w", 100, "Render width for text output")
}

// roleDashboard is one fetched role.
type roleDashboard struct {
	Role    string
	Payload *engine.Payload
	View    dashboard.View
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(dashFormat)
	switch format {
	case "text", "json", "pretty", "csv", "xlsx":
	default:
		return fmt.Errorf("unknown format %q (want text, json, pretty, csv or xlsx)", dashFormat)
	}
	if format == "xlsx" && dashOut == "" {
		return fmt.Errorf("--format xlsx needs --out")
	}

	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	roles := splitRoles(dashRoles)
	if len(roles) == 0 {
		user, err := a.cfg.RequireSession()
		if err != nil {
			return fmt.Errorf("%w (or pass --role)", err)
		}
		roles = []string{user.Role}
	}

	// ── Fetch ─────────────────────────────────────────────────────────────
	results := make([]roleDashboard, len(roles))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, role := range roles {
		g.Go(func() error {
			composer := dashboard.New(a.api, dashboard.WithLogger(a.logger))
			payload, err := composer.Load(ctx, role)
			if err != nil {
				return fmt.Errorf("%s: %w", role, err)
			}
			if payload.Role == "" {
				payload.Role = role
			}
			results[i] = roleDashboard{Role: role, Payload: payload, View: composer.View()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// ── Output ────────────────────────────────────────────────────────────
	if format == "xlsx" {
		return writeWorkbooks(results, dashOut)
	}

	var w io.Writer = cmd.OutOrStdout()
	if dashOut != "" {
		f, err := os.Create(dashOut)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := writeDashboards(w, format, results); err != nil {
		return err
	}
	if dashOut != "" {
		printSuccess("Wrote %s", dashOut)
	}
	return nil
}

func writeDashboards(w io.Writer, format string, results []roleDashboard) error {
	switch format {
	case "json", "pretty":
		payloads := make([]*engine.Payload, len(results))
		for i, r := range results {
			payloads[i] = r.Payload
		}
		var data []byte
		var err error
		if format == "pretty" {
			data, err = sonic.ConfigStd.MarshalIndent(payloads, "", "  ")
		} else {
			data, err = sonic.Marshal(payloads)
		}
		if err != nil {
			return fmt.Errorf("failed to encode dashboards: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case "csv":
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if err := helpers.WriteDashboardCSV(w, r.View.Panels); err != nil {
				return fmt.Errorf("%s: %w", r.Role, err)
			}
		}
		return nil

	default:
		painter := canvas.New(canvas.WithWidth(dashWidth))
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, painter.Dashboard(r.View))
		}
		return nil
	}
}

// writeWorkbooks writes one workbook per role. With several roles the role
// is appended to the file name.
func writeWorkbooks(results []roleDashboard, out string) error {
	for _, r := range results {
		path := out
		if len(results) > 1 {
			ext := filepath.Ext(out)
			path = strings.TrimSuffix(out, ext) + "-" + r.Role + ext
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := helpers.WriteDashboardXLSX(f, r.View); err != nil {
			f.Close()
			return fmt.Errorf("%s: %w", r.Role, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", path, err)
		}
		printSuccess("Wrote %s", path)
	}
	return nil
}

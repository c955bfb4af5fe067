package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/spektr-org/nexus/engine"
	"github.com/spektr-org/nexus/schema"
)

// lintCmd checks chart definitions before they reach a dashboard.
var lintCmd = &cobra.Command{
	Use:   "lint FILE",
	Short: "check chart definitions in a payload file",
	Long: `Check a dashboard payload (an object with "charts") or a bare array of
chart definitions for unknown chart types, missing field references and
records that would render as absent points.

Exits non-zero when any error-level issue is found.`,
	Example: `  $ nexus lint ceo.json
  $ nexus dashboard --role CEO --format json | jq '.[0]' > ceo.json && nexus lint ceo.json`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runLint,
}

func runLint(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	specs, err := decodeCharts(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	issues := schema.LintAll(specs)
	out := cmd.OutOrStdout()
	for _, issue := range issues {
		switch issue.Severity {
		case schema.SeverityError:
			errorColor.Fprintln(out, issue.String())
		default:
			warningColor.Fprintln(out, issue.String())
		}
	}

	counts := schema.CountBySeverity(issues)
	if counts[schema.SeverityError] > 0 {
		return fmt.Errorf("%d charts checked: %d errors, %d warnings",
			len(specs), counts[schema.SeverityError], counts[schema.SeverityWarning])
	}
	printSuccess("%d charts checked: %d warnings", len(specs), counts[schema.SeverityWarning])
	return nil
}

// decodeCharts accepts a payload object or an array of chart specs.
func decodeCharts(data []byte) ([]engine.ChartSpec, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("file is empty")
	}
	if trimmed[0] == '[' {
		var specs []engine.ChartSpec
		if err := sonic.Unmarshal(trimmed, &specs); err != nil {
			return nil, fmt.Errorf("failed to parse chart array: %w", err)
		}
		return specs, nil
	}
	var payload engine.Payload
	if err := sonic.Unmarshal(trimmed, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}
	return payload.Charts, nil
}

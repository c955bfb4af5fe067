package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/nexus/assistant"
	"github.com/spektr-org/nexus/client"
	"github.com/spektr-org/nexus/config"
	"github.com/spektr-org/nexus/dashboard"
	"github.com/spektr-org/nexus/identity"
	"github.com/spektr-org/nexus/logging"
	"github.com/spektr-org/nexus/translator"
	"github.com/spektr-org/nexus/tui"
)

const version = "0.3.0"

var (
	flagVerbose bool
	flagServer  string
)

// rootCmd runs the interactive dashboard.
var rootCmd = &cobra.Command{
	Use:     "nexus",
	Short:   "Role-scoped BI dashboards with an assistant",
	Version: version,
	Long: `Nexus shows the executive dashboard for your role (KPI tiles, charts and
recommended actions) next to an assistant that answers questions about it.

Run without a command to open the interactive dashboard.`,
	Example: `  # Log in once; the session is stored in ~/.nexus/config.yaml
  $ nexus login --email ceo@example.com

  # Open the interactive dashboard
  $ nexus

  # Print two dashboards as text, or export one to Excel
  $ nexus dashboard --role CEO,CFO
  $ nexus dashboard --role COO --format xlsx --out coo.xlsx

  # One-shot question
  $ nexus ask "What is driving downtime?"`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runTUI,
}

// Execute executes the root command.
func Execute(ctx context.Context) error {
	rootCmd.SetVersionTemplate(formatVersion())
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError("%v", err)
	}
	return err
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceErrors = true

	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().StringVarP(&flagServer, "server", "s", "", "Backend URL (overrides config and NEXUS_SERVER)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.SetUsageTemplate(usageTemplate())
	rootCmd.SetHelpTemplate(usageTemplate())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprint(cmd.OutOrStdout(), formatVersion())
	},
}

func runTUI(cmd *cobra.Command, _ []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	user, err := a.cfg.RequireSession()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	composer := dashboard.New(a.api, dashboard.WithLogger(a.logger))
	backend, err := a.backend(ctx, composer.Payload)
	if err != nil {
		return err
	}
	session := assistant.New(backend, user.UserID.String(), user.Role,
		assistant.WithGreeting(), assistant.WithLogger(a.logger))

	a.logger.Info("starting dashboard",
		zap.String("server", a.api.Server()), zap.String("role", user.Role), zap.String("assistant", a.cfg.Assistant))

	final, err := tui.Run(tui.New(composer, session, *user,
		tui.WithContext(ctx), tui.WithLogger(a.logger), tui.WithMarkdown()))
	if err != nil {
		return err
	}

	if final.LoggedOut() {
		a.cfg.Logout()
		if err := a.cfg.Save(); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		printSuccess("Logged out")
	}
	return nil
}

// ── App wiring ──────────────────────────────────────────────────────────────

// app bundles what every command needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	api    *client.APIClient
}

// newApp loads config, builds the logger and the API client. Interactive
// runs log to a file; other commands log warnings to stderr unless
// --verbose.
func newApp(logToFile bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagServer != "" {
		cfg.Server = flagServer
	}

	opts := logging.Options{Level: cfg.LogLevel, Verbose: flagVerbose}
	if logToFile {
		if opts.File, err = config.LogFile(); err != nil {
			return nil, err
		}
	} else if !flagVerbose {
		opts.Level = "warn"
	}
	logger, err := logging.New(opts)
	if err != nil {
		return nil, err
	}

	api, err := client.New(cfg.Server,
		client.WithTimeout(cfg.RequestTimeout()), client.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, api: api}, nil
}

// backend picks the assistant implementation named in config.
func (a *app) backend(ctx context.Context, source translator.PayloadSource) (assistant.Backend, error) {
	if a.cfg.Assistant != config.AssistantGemini {
		return a.api, nil
	}
	gen, err := translator.NewGeminiGenerator(ctx, translator.Config{APIKey: a.cfg.APIKey, Model: a.cfg.Model})
	if err != nil {
		return nil, err
	}
	return translator.NewGeminiAssistant(gen,
		translator.WithPayloadSource(source), translator.WithLogger(a.logger)), nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// ── Help ────────────────────────────────────────────────────────────────────

var boldHeader = lipgloss.NewStyle().Bold(true)

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + boldHeader.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + boldHeader.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + boldHeader.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + boldHeader.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}` + boldHeader.Render("GLOBAL OPTIONS") + `
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}

func formatVersion() string {
	return fmt.Sprintf("nexus version %s\n", version)
}

// splitRoles parses "CEO,cfo" into normalized, de-duplicated roles.
func splitRoles(values []string) []string {
	seen := map[string]bool{}
	var roles []string
	for _, v := range values {
		for _, r := range strings.Split(v, ",") {
			r = identity.NormalizeRole(r)
			if r == "" || seen[r] {
				continue
			}
			seen[r] = true
			roles = append(roles, r)
		}
	}
	return roles
}

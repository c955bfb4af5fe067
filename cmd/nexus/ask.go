package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/nexus/assistant"
	"github.com/spektr-org/nexus/canvas"
	"github.com/spektr-org/nexus/dashboard"
	"github.com/spektr-org/nexus/identity"
)

var (
	askRole  string
	askWidth int
)

// askCmd runs a single assistant turn.
var askCmd = &cobra.Command{
	Use:   "ask QUERY",
	Short: "ask the assistant one question",
	Long: `Send one question to the assistant as your role and print the answer,
its sources and suggested follow-ups.

With the gemini assistant the role's dashboard is fetched first so the
answer is grounded on the same data the dashboard shows.`,
	Example: `  $ nexus ask "Summarize top risks"
  $ nexus ask --role CFO "Why did margins drop?"`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askRole, "role", "r", "", "Ask as this role instead of the logged-in one")
	askCmd.Flags().IntVarP(&askWidth, "width", "w", 100, "Render width")
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("query is empty")
	}

	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	user := identity.Identity{UserID: assistant.DefaultUserID}
	if stored, err := a.cfg.RequireSession(); err == nil {
		user = *stored
	} else if askRole == "" {
		return fmt.Errorf("%w (or pass --role)", err)
	}
	if askRole != "" {
		user = user.WithRole(askRole)
	}

	ctx := cmd.Context()
	composer := dashboard.New(a.api, dashboard.WithLogger(a.logger))
	backend, err := a.backend(ctx, composer.Payload)
	if err != nil {
		return err
	}
	if backend != a.api {
		if _, err := composer.Load(ctx, user.Role); err != nil {
			a.logger.Warn("dashboard context unavailable", zap.String("role", user.Role), zap.Error(err))
			printWarning("answering without dashboard context: %v", err)
		}
	}

	session := assistant.New(backend, user.UserID.String(), user.Role, assistant.WithLogger(a.logger))
	askErr := session.Ask(ctx, query)

	var md canvas.MarkdownRenderer
	if r, err := canvas.NewMarkdown(askWidth - 4); err == nil {
		md = r
	}
	painter := canvas.New(canvas.WithWidth(askWidth), canvas.WithMarkdown(md))

	// The question is already on the command line; print the reply only.
	history := session.History()
	fmt.Fprintln(cmd.OutOrStdout(), painter.Chat(history[len(history)-1:], session.Suggestions(), false))
	return askErr
}

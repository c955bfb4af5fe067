package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

var loginEmail string

// loginCmd authenticates and stores the session.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "authenticate and store the session",
	Long: `Authenticate with the dashboard backend and save the returned profile.

The session (user id, name, email, role) is stored in ~/.nexus/config.yaml
and reused by every other command until you log out.`,
	Example: `  # Prompt for email and password
  $ nexus login

  # Custom backend
  $ nexus login -s https://bi.example.com --email cfo@example.com`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runLogin,
}

// logoutCmd forgets the stored session.
var logoutCmd = &cobra.Command{
	Use:          "logout",
	Short:        "forget the stored session",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runLogout,
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Email for authentication")
}

func runLogin(cmd *cobra.Command, _ []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	// 1. Prompt for email if not provided
	email := strings.TrimSpace(loginEmail)
	if email == "" {
		prompt := &survey.Input{Message: "Email:"}
		if err := survey.AskOne(prompt, &email, survey.WithValidator(survey.Required)); err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
	}

	// 2. Prompt for password (hidden input)
	var password string
	prompt := &survey.Password{Message: "Password:"}
	if err := survey.AskOne(prompt, &password, survey.WithValidator(survey.Required)); err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	printInfo("Connecting to %s...", a.api.Server())

	// 3. Call login API
	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.RequestTimeout())
	defer cancel()
	user, err := a.api.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	// 4. Save session
	a.cfg.Server = a.api.Server()
	a.cfg.Session = user
	if err := a.cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	printSuccess("Logged in as %s (%s)", user.Name, user.Role)
	printBold("  User ID:       %s", user.UserID)
	printBold("  Email:         %s", user.Email)
	printBold("  Config saved:  %s", a.cfg.FilePath())
	return nil
}

func runLogout(_ *cobra.Command, _ []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	if !a.cfg.Session.Valid() {
		printInfo("Not logged in")
		return nil
	}
	a.cfg.Logout()
	if err := a.cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	printSuccess("Logged out")
	return nil
}

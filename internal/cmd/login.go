package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gravitrone/howdju/cli/internal/api"
	"github.com/gravitrone/howdju/cli/internal/config"
)

// RunInteractiveLogin prompts for credentials, calls the login API, and
// persists the session token.
func RunInteractiveLogin(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprint(out, "email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}

	fmt.Fprint(out, "password: ")
	password, _ := reader.ReadString('\n')
	password = strings.TrimRight(password, "\r\n")
	if password == "" {
		return fmt.Errorf("password is required")
	}

	cfg, err := config.LoadOrDefault()
	if err != nil {
		return err
	}

	client := api.NewClient(cfg.BaseURL(), "")
	session, err := client.Login(api.Credentials{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cfg.AuthToken = session.AuthToken
	cfg.Email = email
	if session.User.Email != "" {
		cfg.Email = session.User.Email
	}
	if cfg.TrackingID == "" {
		cfg.TrackingID = uuid.NewString()
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Fprintf(out, "logged in as %s\n", cfg.Email)
	fmt.Fprintf(out, "config saved to %s\n", config.Path())
	return nil
}

// LoginCmd returns the `howdju login` command.
func LoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate with a howdju server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunInteractiveLogin(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

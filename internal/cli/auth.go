package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/mailassist/internal/credential"
	"github.com/nhle/mailassist/internal/theme"
)

func newLoginCmd(app *App) *cobra.Command {
	var cookie string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the session cookie of a signed-in browser",
		Long: strings.TrimSpace(`
Sign in through the web app, copy the value of its "session" cookie and
paste it here. The cookie is verified against the server and stored in
the system keyring.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cookie == "" {
				err := huh.NewInput().
					Title("Session cookie").
					Description("Value of the \"session\" cookie from your browser").
					EchoMode(huh.EchoModePassword).
					Value(&cookie).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return errors.New("cookie is required")
						}
						return nil
					}).
					Run()
				if err != nil {
					return writeErr(cmd, err)
				}
			}
			cookie = strings.TrimSpace(cookie)

			client, err := app.client(cookie)
			if err != nil {
				return writeErr(cmd, err)
			}
			status, err := client.AuthStatus(cmd.Context())
			if err != nil {
				return writeErr(cmd, fmt.Errorf("verifying session: %w", err))
			}
			if !status.Authenticated {
				return writeErr(cmd, errors.New("the server does not recognize this session"))
			}

			if err := credential.Set(credential.SessionKey, cookie); err != nil {
				return writeErr(cmd, err)
			}

			name := "unknown user"
			if u := status.User; u != nil && u.DisplayName != "" {
				name = u.DisplayName
			} else if u != nil {
				name = u.Email
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				theme.AlertStyle("success").Render("Signed in as "+name))
			return nil
		},
	}

	cmd.Flags().StringVar(&cookie, "cookie", "", "Session cookie value (prompted when omitted)")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := credential.Delete(credential.SessionKey); err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.boot(cmd.Context(), "/status", nil)
			if err != nil {
				return writeErr(cmd, err)
			}

			status := s.page.Session.Status()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", theme.HeaderStyle.Render("Server"), app.cfg.Server.BaseURL)
			if status == nil {
				fmt.Fprintln(out, theme.DimmedStyle.Render("status unavailable"))
				return s.close(cmd)
			}

			fmt.Fprintf(out, "authenticated: %t\n", status.Authenticated)
			if status.User != nil {
				fmt.Fprintf(out, "user:          %s <%s>\n", status.User.DisplayName, status.User.Email)
			}
			fmt.Fprintf(out, "token valid:   %t\n", s.page.Session.TokenValid())
			return s.close(cmd)
		},
	}
}

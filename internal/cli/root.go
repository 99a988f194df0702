// Package cli implements the mailassist command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/mailassist/internal/api"
	mailapp "github.com/nhle/mailassist/internal/app"
	"github.com/nhle/mailassist/internal/credential"
	"github.com/nhle/mailassist/internal/logging"
	"github.com/nhle/mailassist/internal/mailbox"
	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/page"
	"github.com/nhle/mailassist/internal/theme"
)

// errSessionExpired is returned when the server rejected the session.
var errSessionExpired = errors.New("session expired: run `mailassist login`")

// errFailed is returned when a command ended with a warning or danger
// alert. The alert has already been printed.
var errFailed = errors.New("operation failed")

// App holds the state shared by every command.
type App struct {
	ConfigPath string
	Server     string
	Debug      bool

	cfg    *model.AppConfig
	log    *zap.Logger
	cookie string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "mailassist",
		Short:         "Terminal client for the mail assistant web app",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Store the session cookie of a signed-in browser
  mailassist login

  # Search and list
  mailassist search "project plan"
  mailassist list --folder sent

  # Talk to the assistant
  mailassist chat
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup()
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if app.log != nil {
			_ = app.log.Sync()
		}
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", model.DefaultConfigPath(), "Path to the config file")
	cmd.PersistentFlags().StringVar(&app.Server, "server", "", "Server base URL (overrides server.base_url)")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Log requests to stderr")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newSearchCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newReadCmd(app))
	cmd.AddCommand(newStarCmd(app))
	cmd.AddCommand(newBulkCmd(app))
	cmd.AddCommand(newSendCmd(app))
	cmd.AddCommand(newChatCmd(app))
	cmd.AddCommand(newDashboardCmd(app))

	return cmd
}

func (a *App) setup() error {
	cfg, err := model.LoadConfig(a.ConfigPath)
	if err != nil {
		return err
	}
	if a.Server != "" {
		cfg.Server.BaseURL = strings.TrimRight(a.Server, "/")
	}
	if a.Debug {
		cfg.Log.Level = "debug"
		cfg.Log.Development = true
	}
	a.cfg = cfg

	log, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	a.log = log

	cookie, err := credential.Session()
	if err != nil {
		a.log.Warn("reading stored session", zap.Error(err))
	}
	a.cookie = cookie
	return nil
}

// client returns an API client carrying cookie.
func (a *App) client(cookie string) (*api.Client, error) {
	return api.NewClient(a.cfg.Server.BaseURL,
		api.WithTimeout(a.cfg.Timeout()),
		api.WithLogger(a.log.Named("api")),
		api.WithSessionCookie(cookie),
	)
}

// session is a booted page plus the client it talks through.
type session struct {
	app    *App
	client *api.Client
	page   *mailapp.Page
}

// boot creates a page at path using the stored session.
func (a *App) boot(ctx context.Context, path string, confirm mailbox.Confirmer) (*session, error) {
	if a.cookie == "" {
		return nil, errors.New("not logged in: run `mailassist login`")
	}

	client, err := a.client(a.cookie)
	if err != nil {
		return nil, err
	}

	nav := page.NavigatorFunc(func(to string) {
		a.log.Debug("navigate", zap.String("to", to))
	})
	p, err := mailapp.New(mailapp.Deps{
		API:       client,
		Config:    a.cfg,
		Navigator: nav,
		Confirm:   confirm,
		Log:       a.log,
	})
	if err != nil {
		return nil, err
	}
	if err := p.Boot(ctx, path); err != nil {
		return nil, err
	}
	return &session{app: a, client: client, page: p}, nil
}

// close tears the page down, prints pending alerts, persists a rotated
// cookie and turns a redirect to the login page into an error.
func (s *session) close(cmd *cobra.Command) error {
	s.page.Dispatch(cmd.Context(), page.NewUnload())
	printAlerts(cmd.ErrOrStderr(), s.page.Doc.Alerts())

	if rotated := s.client.SessionCookie(); rotated != "" && rotated != s.app.cookie {
		if err := credential.Set(credential.SessionKey, rotated); err != nil {
			s.app.log.Warn("saving rotated session", zap.Error(err))
		}
	}

	if s.page.Doc.Location() == page.LoginPath {
		return writeErr(cmd, errSessionExpired)
	}
	if failed(s.page.Doc.Alerts()) {
		return errFailed
	}
	return nil
}

// finish closes the session and returns opErr when closing succeeded.
func (s *session) finish(cmd *cobra.Command, opErr error) error {
	if err := s.close(cmd); err != nil {
		return err
	}
	return opErr
}

func failed(alerts []page.Alert) bool {
	for _, a := range alerts {
		if a.Level == page.AlertDanger || a.Level == page.AlertWarning {
			return true
		}
	}
	return false
}

func printAlerts(w io.Writer, alerts []page.Alert) {
	for _, a := range alerts {
		fmt.Fprintln(w, theme.AlertStyle(string(a.Level)).Render(a.Message))
	}
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), theme.AlertStyle("danger").Render(err.Error()))
	return err
}

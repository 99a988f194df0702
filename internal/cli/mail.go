package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/mailassist/internal/mailbox"
	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/page"
	"github.com/nhle/mailassist/internal/render"
)

func newSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search emails",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if n := len([]rune(strings.TrimSpace(query))); n < app.cfg.Search.MinChars {
				return writeErr(cmd, fmt.Errorf("query must be at least %d characters", app.cfg.Search.MinChars))
			}

			s, err := app.boot(cmd.Context(), "/search", nil)
			if err != nil {
				return writeErr(cmd, err)
			}

			s.page.Dispatch(cmd.Context(),
				page.NewKeyPress(page.T("#"+page.RegionSearchInput), page.KeyEnter, query))
			printEmails(cmd.OutOrStdout(), s.page.Search.Results(), time.Now())
			return s.close(cmd)
		},
	}
}

func newListCmd(app *App) *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the emails of a folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openFolder(cmd, app, folder, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			printEmails(cmd.OutOrStdout(), emailsOf(s.page.Mailbox.Rows()), time.Now())
			return s.close(cmd)
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Folder to list (default: display.default_folder)")
	return cmd
}

func newReadCmd(app *App) *cobra.Command {
	var unread bool

	cmd := &cobra.Command{
		Use:   "read <id>",
		Short: "Mark an email as read (or unread)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return writeErr(cmd, fmt.Errorf("invalid email id %q", args[0]))
			}

			s, err := app.boot(cmd.Context(), "/emails", nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			return s.finish(cmd, s.page.Mailbox.SetRead(cmd.Context(), id, !unread))
		},
	}

	cmd.Flags().BoolVar(&unread, "unread", false, "Mark as unread instead")
	return cmd
}

func newStarCmd(app *App) *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "star <id>",
		Short: "Toggle the star of an email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return writeErr(cmd, fmt.Errorf("invalid email id %q", args[0]))
			}

			s, err := openFolder(cmd, app, folder, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, ok := s.page.Mailbox.Row(id); !ok {
				_ = s.close(cmd)
				return writeErr(cmd, fmt.Errorf("email %d is not in folder %s", id, s.page.Mailbox.Folder()))
			}

			s.page.Dispatch(cmd.Context(), page.NewClick(
				page.T(".star-btn", "email-id", args[0]),
				page.T(".email-item", "email-id", args[0]),
			))
			if row, ok := s.page.Mailbox.Row(id); ok {
				printEmails(cmd.OutOrStdout(), []model.Email{row.Email}, time.Now())
			}
			return s.close(cmd)
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Folder holding the email")
	return cmd
}

func newBulkCmd(app *App) *cobra.Command {
	var (
		folder string
		yes    bool
	)

	cmd := &cobra.Command{
		Use:       "bulk <mark_read|mark_unread|delete> <id>...",
		Short:     "Apply an action to several emails",
		Args:      cobra.MinimumNArgs(2),
		ValidArgs: []string{string(model.BulkMarkRead), string(model.BulkMarkUnread), string(model.BulkDelete)},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := model.BulkAction(args[0])
			if !action.Valid() {
				return writeErr(cmd, fmt.Errorf("unknown action %q", args[0]))
			}

			confirm := mailbox.ConfirmFunc(func(prompt string) bool {
				if yes {
					return true
				}
				ok := false
				if err := huh.NewConfirm().Title(prompt).Affirmative("Delete").Negative("Cancel").Value(&ok).Run(); err != nil {
					return false
				}
				return ok
			})

			s, err := openFolder(cmd, app, folder, confirm)
			if err != nil {
				return writeErr(cmd, err)
			}

			for _, arg := range args[1:] {
				id, err := strconv.Atoi(arg)
				if err != nil {
					_ = s.close(cmd)
					return writeErr(cmd, fmt.Errorf("invalid email id %q", arg))
				}
				if _, ok := s.page.Mailbox.Row(id); !ok {
					_ = s.close(cmd)
					return writeErr(cmd, fmt.Errorf("email %d is not in folder %s", id, s.page.Mailbox.Folder()))
				}
				s.page.Dispatch(cmd.Context(),
					page.NewChange(page.T(".email-checkbox", "email-id", arg), true))
			}

			target := map[model.BulkAction]string{
				model.BulkMarkRead:   "#bulkMarkRead",
				model.BulkMarkUnread: "#bulkMarkUnread",
				model.BulkDelete:     "#bulkDelete",
			}[action]
			s.page.Dispatch(cmd.Context(), page.NewClick(page.T(target)))

			printEmails(cmd.OutOrStdout(), emailsOf(s.page.Mailbox.Rows()), time.Now())
			return s.close(cmd)
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Folder holding the emails")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask before deleting")
	return cmd
}

func newSendCmd(app *App) *cobra.Command {
	var msg model.OutgoingEmail
	var cc, bcc string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Compose and send an email",
		RunE: func(cmd *cobra.Command, args []string) error {
			if msg.To == "" || msg.Subject == "" || msg.Body == "" {
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().Title("To").Value(&msg.To),
					huh.NewInput().Title("Cc").Value(&cc),
					huh.NewInput().Title("Subject").Value(&msg.Subject),
					huh.NewText().Title("Body").Value(&msg.Body),
				))
				if err := form.Run(); err != nil {
					return writeErr(cmd, err)
				}
			}
			if cc != "" {
				msg.CC = &cc
			}
			if bcc != "" {
				msg.BCC = &bcc
			}

			s, err := app.boot(cmd.Context(), "/compose", nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			m := mailbox.New(s.client, s.page.Doc, s.page.Renderer(), s.page.Faults, nil, app.log.Named("compose"))
			return s.finish(cmd, m.Send(cmd.Context(), msg))
		},
	}

	cmd.Flags().StringVar(&msg.To, "to", "", "Recipients")
	cmd.Flags().StringVar(&cc, "cc", "", "Cc recipients")
	cmd.Flags().StringVar(&bcc, "bcc", "", "Bcc recipients")
	cmd.Flags().StringVar(&msg.Subject, "subject", "", "Subject")
	cmd.Flags().StringVar(&msg.Body, "body", "", "Body")
	cmd.Flags().StringVar(&msg.Importance, "importance", "normal", "Importance (low|normal|high)")
	return cmd
}

// openFolder boots the emails page and switches to folder when it is not
// the default one.
func openFolder(cmd *cobra.Command, app *App, folder string, confirm mailbox.Confirmer) (*session, error) {
	s, err := app.boot(cmd.Context(), "/emails", confirm)
	if err != nil {
		return nil, err
	}
	if folder != "" && model.Folder(folder) != s.page.Mailbox.Folder() {
		s.page.Dispatch(cmd.Context(), page.NewClick(page.T(".folder-item", "folder", folder)))
	}
	return s, nil
}

func emailsOf(rows []render.Row) []model.Email {
	out := make([]model.Email, len(rows))
	for i, r := range rows {
		out[i] = r.Email
	}
	return out
}

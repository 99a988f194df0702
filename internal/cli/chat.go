package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/mailassist/internal/keys"
	"github.com/nhle/mailassist/internal/page"
	"github.com/nhle/mailassist/internal/theme"
	chatview "github.com/nhle/mailassist/internal/ui/chat"
)

func newChatCmd(app *App) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the mail assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.boot(cmd.Context(), "/chat", nil)
			if err != nil {
				return writeErr(cmd, err)
			}

			if message != "" {
				s.page.Dispatch(cmd.Context(), page.NewSubmit(page.T("#chat-form"), message))
				for _, m := range s.page.Chat.Transcript() {
					if m.Role == "assistant" {
						fmt.Fprintln(cmd.OutOrStdout(), m.Content)
					}
				}
				return s.close(cmd)
			}

			account := ""
			if st := s.page.Session.Status(); st != nil && st.User != nil {
				account = st.User.DisplayName
			}

			model := chatview.New(s.page.Context(), s.page.Chat, s.page.Doc, account,
				keys.DefaultKeyMap(), 80, 24)
			if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
				_ = s.close(cmd)
				return writeErr(cmd, fmt.Errorf("running chat: %w", err))
			}
			return s.close(cmd)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Send one message and print the reply")
	return cmd
}

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show mailbox counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.boot(cmd.Context(), "/dashboard", nil)
			if err != nil {
				return writeErr(cmd, err)
			}

			if stats := s.page.Activity.Stats(); stats != nil {
				out := cmd.OutOrStdout()
				rows := []struct {
					label string
					value int
				}{
					{"Total", stats.TotalEmails},
					{"Unread", stats.UnreadEmails},
					{"Inbox", stats.InboxCount},
					{"Sent", stats.SentCount},
					{"Today", stats.TodayEmails},
				}
				fmt.Fprintln(out, theme.HeaderStyle.Render("Recent activity"))
				for _, r := range rows {
					fmt.Fprintf(out, "  %-8s %s\n", r.label, theme.UnreadStyle.Render(fmt.Sprint(r.value)))
				}
			}
			return s.close(cmd)
		},
	}
}

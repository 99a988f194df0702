package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/render"
	"github.com/nhle/mailassist/internal/theme"
)

// printEmails writes one line per email: id, flags, date, sender and
// subject. Unread emails are bold.
func printEmails(w io.Writer, emails []model.Email, now time.Time) {
	if len(emails) == 0 {
		fmt.Fprintln(w, theme.DimmedStyle.Render("No emails found"))
		return
	}

	idCol := lipgloss.NewStyle().Width(7).Align(lipgloss.Right)
	dateCol := lipgloss.NewStyle().Width(7)
	senderCol := lipgloss.NewStyle().Width(24).MaxWidth(24)

	for _, e := range emails {
		star := " "
		if e.IsStarred {
			star = theme.StarStyle.Render("★")
		}
		subject := e.Subject
		if !e.IsRead {
			subject = theme.UnreadStyle.Render(subject)
		}

		fmt.Fprintln(w, strings.Join([]string{
			idCol.Render(fmt.Sprintf("%d", e.ID)),
			star,
			theme.DimmedStyle.Inherit(dateCol).Render(render.FormatDate(e.ReceivedDate, now)),
			senderCol.Render(e.Sender()),
			subject,
		}, " "))
	}
}

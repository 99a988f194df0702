package mailbox

import (
	"context"
	"fmt"
	"strings"

	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"

	"github.com/nhle/mailassist/internal/api"
	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/page"
)

// MsgSent is shown when the server accepts an outgoing email.
const MsgSent = "Email sent successfully!"

// Send validates the recipients of msg and submits it. Invalid
// recipients raise a warning and no request is made.
func (m *Mailbox) Send(ctx context.Context, msg model.OutgoingEmail) error {
	if err := validateRecipients(msg); err != nil {
		m.faults.Alert(page.AlertWarning, err.Error())
		return err
	}

	if _, err := m.api.SendEmail(ctx, msg); err != nil {
		m.log.Error("sending email", zap.String("to", msg.To), zap.Error(err))
		if api.Classify(err) == api.ClassRejected {
			m.faults.Report(err, "Failed to send email: "+api.Describe(err))
		} else {
			m.faults.Report(err, "Email send error: "+api.Describe(err))
		}
		return err
	}

	m.faults.Alert(page.AlertSuccess, MsgSent)
	return nil
}

func validateRecipients(msg model.OutgoingEmail) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("a recipient is required")
	}
	fields := []struct {
		name  string
		value *string
	}{
		{"To", &msg.To},
		{"Cc", msg.CC},
		{"Bcc", msg.BCC},
	}
	for _, f := range fields {
		if f.value == nil || strings.TrimSpace(*f.value) == "" {
			continue
		}
		if _, err := mail.ParseAddressList(*f.value); err != nil {
			return fmt.Errorf("invalid %s address: %s", f.name, *f.value)
		}
	}
	return nil
}

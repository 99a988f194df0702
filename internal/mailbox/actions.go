package mailbox

import (
	"context"

	"go.uber.org/zap"

	"github.com/nhle/mailassist/internal/render"
)

// ToggleRead flips the read flag of a row. The row only changes once the
// server confirms; on failure it is left as it was.
func (m *Mailbox) ToggleRead(ctx context.Context, id int) error {
	row, ok := m.Row(id)
	if !ok {
		return nil
	}
	return m.SetRead(ctx, id, !row.IsRead)
}

// SetRead sets the read flag of a row after server confirmation.
func (m *Mailbox) SetRead(ctx context.Context, id int, isRead bool) error {
	if err := m.api.MarkRead(ctx, id, isRead); err != nil {
		m.log.Error("marking email read",
			zap.Int("id", id), zap.Bool("is_read", isRead), zap.Error(err))
		m.faults.Report(err, MsgUpdateFailed)
		return err
	}

	m.update(id, func(r *render.Row) { r.IsRead = isRead })
	return nil
}

// ToggleStar flips the star flag of a row after server confirmation.
func (m *Mailbox) ToggleStar(ctx context.Context, id int) error {
	row, ok := m.Row(id)
	if !ok {
		return nil
	}
	starred := !row.IsStarred

	if err := m.api.SetStarred(ctx, id, starred); err != nil {
		m.log.Error("starring email",
			zap.Int("id", id), zap.Bool("is_starred", starred), zap.Error(err))
		m.faults.Report(err, MsgStarFailed)
		return err
	}

	m.update(id, func(r *render.Row) { r.IsStarred = starred })
	return nil
}

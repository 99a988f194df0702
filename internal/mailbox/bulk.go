package mailbox

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/page"
	"github.com/nhle/mailassist/internal/render"
)

// SelectAll sets every row's checkbox to checked.
func (m *Mailbox) SelectAll(checked bool) {
	m.mu.Lock()
	for i := range m.rows {
		m.rows[i].Checked = checked
	}
	m.mu.Unlock()

	m.doc.SetValue(page.RegionSelectAll, strconv.FormatBool(checked))
	m.redraw()
	m.recomputeSelection()
}

// SetChecked sets one row's checkbox.
func (m *Mailbox) SetChecked(id int, checked bool) {
	m.update(id, func(r *render.Row) { r.Checked = checked })
	m.recomputeSelection()
}

// Selected returns the ids of the checked rows in display order.
func (m *Mailbox) Selected() []int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []int
	for _, r := range m.rows {
		if r.Checked {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// recomputeSelection derives the bulk bar from the live checked count.
func (m *Mailbox) recomputeSelection() {
	count := len(m.Selected())

	m.doc.SetText(page.RegionSelectedCount, strconv.Itoa(count))
	if count > 0 {
		m.doc.Show(page.RegionBulkBar)
	} else {
		m.doc.Hide(page.RegionBulkBar)
	}
}

// Bulk applies action to the checked rows and reloads the folder on
// success. Delete asks for confirmation first. An empty selection or a
// declined confirmation issues no call.
func (m *Mailbox) Bulk(ctx context.Context, action model.BulkAction) error {
	if !action.Valid() {
		return fmt.Errorf("unknown bulk action %q", action)
	}

	ids := m.Selected()
	if len(ids) == 0 {
		return nil
	}
	if action == model.BulkDelete && !m.confirm.Confirm(MsgConfirmBulk) {
		return nil
	}

	if err := m.api.BulkAction(ctx, action, ids); err != nil {
		m.log.Error("bulk action",
			zap.String("action", string(action)), zap.Ints("ids", ids), zap.Error(err))
		m.faults.Report(err, MsgBulkFailed)
		return err
	}

	return m.Reload(ctx)
}

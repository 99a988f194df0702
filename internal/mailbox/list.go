// Package mailbox drives the email list page: folder loading, per-row
// read and star toggles, bulk selection and compose.
package mailbox

import (
	"context"
	"html/template"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/page"
	"github.com/nhle/mailassist/internal/render"
)

// User-facing messages.
const (
	MsgLoadFailed   = "Failed to load emails"
	MsgUpdateFailed = "Failed to update email status"
	MsgStarFailed   = "Failed to update star"
	MsgBulkFailed   = "Bulk action failed"
	MsgConfirmBulk  = "Are you sure you want to delete the selected emails?"
)

// API is the subset of the server API the mailbox needs.
type API interface {
	ListEmails(ctx context.Context, folder model.Folder) ([]model.Email, error)
	MarkRead(ctx context.Context, id int, isRead bool) error
	SetStarred(ctx context.Context, id int, starred bool) error
	BulkAction(ctx context.Context, action model.BulkAction, ids []int) error
	SendEmail(ctx context.Context, msg model.OutgoingEmail) (string, error)
}

// Reporter surfaces a failed call to the user.
type Reporter interface {
	Report(err error, msg string)
	Alert(level page.AlertLevel, msg string) string
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(prompt string) bool

// Confirm calls f(prompt).
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Mailbox holds the rows of the displayed folder. The email list region
// is always rendered from these rows, so a row update replaces only that
// row's state.
type Mailbox struct {
	api     API
	doc     *page.Document
	render  *render.Renderer
	faults  Reporter
	confirm Confirmer
	log     *zap.Logger

	mu     sync.Mutex
	folder model.Folder
	rows   []render.Row
}

// New creates a mailbox. A nil confirm declines every destructive action.
func New(
	a API,
	doc *page.Document,
	r *render.Renderer,
	faults Reporter,
	confirm Confirmer,
	log *zap.Logger,
) *Mailbox {
	if confirm == nil {
		confirm = ConfirmFunc(func(string) bool { return false })
	}
	return &Mailbox{
		api:     a,
		doc:     doc,
		render:  r,
		faults:  faults,
		confirm: confirm,
		log:     log,
	}
}

// LoadFolder replaces the list with the folder's emails. The loading
// placeholder is shown before the request goes out; a failure replaces
// it with an error placeholder.
func (m *Mailbox) LoadFolder(ctx context.Context, folder model.Folder) error {
	m.mu.Lock()
	m.folder = folder
	m.rows = nil
	m.mu.Unlock()

	m.doc.SetValue(page.RegionActiveFolder, string(folder))
	m.doc.SetHTML(page.RegionEmailList, m.render.ListLoading())
	m.recomputeSelection()

	emails, err := m.api.ListEmails(ctx, folder)
	if err != nil {
		m.log.Error("loading folder", zap.String("folder", string(folder)), zap.Error(err))
		m.doc.SetHTML(page.RegionEmailList, m.render.ListError(MsgLoadFailed))
		m.faults.Report(err, "")
		return err
	}

	rows := make([]render.Row, len(emails))
	for i, e := range emails {
		rows[i] = render.Row{Email: e}
	}

	m.mu.Lock()
	m.rows = rows
	m.mu.Unlock()

	m.redraw()
	return nil
}

// Reload fetches the active folder again.
func (m *Mailbox) Reload(ctx context.Context) error {
	return m.LoadFolder(ctx, m.Folder())
}

// Open navigates to the full view of an email.
func (m *Mailbox) Open(id int) {
	m.doc.Navigate(page.EmailPath(id))
}

// Folder returns the active folder.
func (m *Mailbox) Folder() model.Folder {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.folder
}

// Rows returns a snapshot of the displayed rows.
func (m *Mailbox) Rows() []render.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]render.Row(nil), m.rows...)
}

// Row returns the displayed row for id.
func (m *Mailbox) Row(id int) (render.Row, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(id); i >= 0 {
		return m.rows[i], true
	}
	return render.Row{}, false
}

// indexOf must be called with m.mu held.
func (m *Mailbox) indexOf(id int) int {
	for i, r := range m.rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// update applies fn to the row for id and redraws. It reports whether
// the row is displayed.
func (m *Mailbox) update(id int, fn func(*render.Row)) bool {
	m.mu.Lock()
	i := m.indexOf(id)
	if i < 0 {
		m.mu.Unlock()
		return false
	}
	fn(&m.rows[i])
	m.mu.Unlock()

	m.redraw()
	return true
}

func (m *Mailbox) redraw() {
	rows := m.Rows()
	if len(rows) == 0 {
		m.doc.SetHTML(page.RegionEmailList, m.render.ListEmpty())
		return
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(string(m.render.EmailRow(r)))
	}
	m.doc.SetHTML(page.RegionEmailList, template.HTML(b.String()))
}

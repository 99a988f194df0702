// Package render turns server records into the HTML fragments placed in
// page regions.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/schedule"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer executes the embedded fragment templates. Relative dates are
// computed against its clock.
type Renderer struct {
	tmpl  *template.Template
	clock schedule.Clock
	log   *zap.Logger
}

// New parses the embedded templates.
func New(clock schedule.Clock, log *zap.Logger) (*Renderer, error) {
	r := &Renderer{clock: clock, log: log}

	tmpl, err := template.New("fragments").Funcs(template.FuncMap{
		"highlight": Highlight,
		"formatDate": func(t *time.Time) string {
			return FormatDate(t, r.clock.Now())
		},
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r.tmpl = tmpl
	return r, nil
}

func (r *Renderer) exec(name string, data any) template.HTML {
	var b bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		r.log.Error("rendering fragment", zap.String("template", name), zap.Error(err))
		return template.HTML(`<div class="text-danger">` + template.HTMLEscapeString(err.Error()) + `</div>`)
	}
	return template.HTML(b.String())
}

// SearchResults renders the search dropdown for query.
func (r *Renderer) SearchResults(emails []model.Email, query string) template.HTML {
	return r.exec("search_results", struct {
		Emails []model.Email
		Query  string
	}{emails, query})
}

// Row is the render state of one list row.
type Row struct {
	model.Email
	Checked bool
}

// EmailRow renders a single list row.
func (r *Renderer) EmailRow(row Row) template.HTML {
	return r.exec("email_row", struct {
		Row
		Initial string
	}{row, Initial(row.Sender())})
}

// ListLoading renders the placeholder shown while a folder loads.
func (r *Renderer) ListLoading() template.HTML {
	return r.exec("list_loading", nil)
}

// ListError renders the placeholder shown when a folder fails to load.
func (r *Renderer) ListError(message string) template.HTML {
	return r.exec("list_error", message)
}

// ListEmpty renders the placeholder for an empty folder.
func (r *Renderer) ListEmpty() template.HTML {
	return r.exec("list_empty", nil)
}

// ChatMessage renders a transcript entry. Assistant replies are treated
// as Markdown; everything else is escaped text.
func (r *Renderer) ChatMessage(msg model.ChatMessage) template.HTML {
	var content template.HTML
	if msg.Role == model.RoleAssistant && !msg.Loading {
		content = Markdown(msg.Content)
	} else {
		content = template.HTML(template.HTMLEscapeString(msg.Content))
	}

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = r.clock.Now()
	}

	return r.exec("chat_message", struct {
		Role    model.ChatRole
		Loading bool
		Content template.HTML
		Time    string
	}{msg.Role, msg.Loading, content, ts.Format("15:04:05")})
}

// UserBadge renders the navbar account label.
func (r *Renderer) UserBadge(displayName string) template.HTML {
	return r.exec("user_badge", displayName)
}

// Stats renders the dashboard activity counters.
func (r *Renderer) Stats(stats model.EmailStats) template.HTML {
	return r.exec("stats", stats)
}

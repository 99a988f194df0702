// Package chat drives the assistant chat panel.
package chat

import (
	"context"
	"html/template"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nhle/mailassist/internal/api"
	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/page"
	"github.com/nhle/mailassist/internal/render"
	"github.com/nhle/mailassist/internal/schedule"
)

// Placeholder text and error prefix shown in the transcript.
const (
	ThinkingText = "Thinking..."
	ErrorPrefix  = "Sorry, I encountered an error: "
)

// Sender posts a chat message and returns the assistant's reply.
type Sender interface {
	SendChat(ctx context.Context, message, sessionID string) (string, error)
}

// Reporter surfaces a failed call to the user.
type Reporter interface {
	Report(err error, msg string)
}

// Panel owns one conversation. Nothing stops a second submit while the
// first is in flight; each reply removes the oldest loading placeholder.
type Panel struct {
	api    Sender
	doc    *page.Document
	render *render.Renderer
	faults Reporter
	clock  schedule.Clock
	log    *zap.Logger

	transcript Transcript

	mu        sync.Mutex
	sessionID string
}

// New creates a chat panel with a fresh session id.
func New(
	s Sender,
	doc *page.Document,
	r *render.Renderer,
	faults Reporter,
	clock schedule.Clock,
	log *zap.Logger,
) *Panel {
	return &Panel{
		api:       s,
		doc:       doc,
		render:    r,
		faults:    faults,
		clock:     clock,
		log:       log,
		sessionID: uuid.NewString(),
	}
}

// Submit sends input to the assistant. Whitespace-only input is ignored.
// Failures are shown inline in the transcript instead of being returned
// to the caller as a broken panel.
func (p *Panel) Submit(ctx context.Context, input string) error {
	text := strings.TrimSpace(input)
	if text == "" {
		return nil
	}

	p.doc.SetValue(page.RegionChatInput, "")
	p.append(model.RoleUser, text, false)
	p.append(model.RoleAssistant, ThinkingText, true)

	reply, err := p.api.SendChat(ctx, text, p.SessionID())

	p.transcript.RemoveFirstLoading()
	if err != nil {
		p.log.Error("chat message failed", zap.Error(err))
		if api.IsUnauthorized(err) {
			p.faults.Report(err, "")
		}
		p.append(model.RoleAssistant, ErrorPrefix+api.Describe(err), false)
		return err
	}

	p.append(model.RoleAssistant, reply, false)
	return nil
}

func (p *Panel) append(role model.ChatRole, content string, loading bool) {
	p.transcript.Append(model.ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: p.clock.Now(),
		Loading:   loading,
	})
	p.redraw()
}

func (p *Panel) redraw() {
	var b strings.Builder
	for _, m := range p.transcript.Messages() {
		b.WriteString(string(p.render.ChatMessage(m)))
	}
	p.doc.SetHTML(page.RegionChatMessages, template.HTML(b.String()))
}

// Transcript returns a copy of the conversation.
func (p *Panel) Transcript() []model.ChatMessage {
	return p.transcript.Messages()
}

// SessionID returns the id sent with every message of this conversation.
func (p *Panel) SessionID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sessionID
}

// Reset clears the conversation and starts a new session.
func (p *Panel) Reset() {
	p.transcript.Reset()

	p.mu.Lock()
	p.sessionID = uuid.NewString()
	p.mu.Unlock()

	p.redraw()
}

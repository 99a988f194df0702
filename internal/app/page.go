// Package app boots a page: it wires the session, search, mailbox, chat
// and dashboard components to one document and binds their handlers.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/mailassist/internal/api"
	"github.com/nhle/mailassist/internal/chat"
	"github.com/nhle/mailassist/internal/dashboard"
	"github.com/nhle/mailassist/internal/mailbox"
	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/page"
	"github.com/nhle/mailassist/internal/render"
	"github.com/nhle/mailassist/internal/schedule"
	"github.com/nhle/mailassist/internal/search"
	"github.com/nhle/mailassist/internal/session"
)

// Name identifies which page a path belongs to.
type Name string

const (
	PageDashboard Name = "dashboard"
	PageEmails    Name = "emails"
	PageChat      Name = "chat"
	PageSettings  Name = "settings"
	PageUnknown   Name = "unknown"
)

// PageName maps a path to its page.
func PageName(path string) Name {
	switch {
	case path == "/" || path == "/dashboard":
		return PageDashboard
	case strings.HasPrefix(path, "/emails"):
		return PageEmails
	case strings.HasPrefix(path, "/chat"):
		return PageChat
	case strings.HasPrefix(path, "/settings"):
		return PageSettings
	default:
		return PageUnknown
	}
}

// Deps are the collaborators a page is built from.
type Deps struct {
	API       *api.Client
	Config    *model.AppConfig
	Clock     schedule.Clock
	Navigator page.Navigator
	Confirm   mailbox.Confirmer
	Log       *zap.Logger
}

// Page is one booted page. Components are created by Boot and live until
// Teardown.
type Page struct {
	deps   Deps
	render *render.Renderer

	Name     Name
	Doc      *page.Document
	Registry *page.Registry
	Faults   *session.Faults
	Session  *session.Sync
	Search   *search.Controller
	Mailbox  *mailbox.Mailbox
	Chat     *chat.Panel
	Activity *dashboard.Activity

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	booted bool
	torn   bool
}

// New prepares a page. Missing optional deps get defaults.
func New(deps Deps) (*Page, error) {
	if deps.API == nil {
		return nil, fmt.Errorf("api client is required")
	}
	if deps.Config == nil {
		deps.Config = model.DefaultAppConfig()
	}
	if deps.Clock == nil {
		deps.Clock = schedule.Real()
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	r, err := render.New(deps.Clock, deps.Log)
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	return &Page{deps: deps, render: r, Registry: page.NewRegistry()}, nil
}

// Boot initializes the page at path: it checks the session, arms the
// token refresh, binds the global handlers and then the handlers of the
// page the path belongs to. Boot runs once per page.
func (p *Page) Boot(ctx context.Context, path string) error {
	p.mu.Lock()
	if p.booted {
		p.mu.Unlock()
		return fmt.Errorf("page already booted")
	}
	p.booted = true
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()

	cfg := p.deps.Config
	log := p.deps.Log.With(zap.String("path", path))
	p.Name = PageName(path)

	p.Doc = page.New(p.deps.Clock, p.deps.Navigator, path)
	p.Faults = session.NewFaults(p.Doc, cfg.AlertDuration(), log.Named("faults"))
	p.Session = session.New(p.deps.API, p.Doc, p.render, p.Faults, p.deps.Clock,
		cfg.RefreshInterval(), log.Named("session"))
	p.Search = search.New(p.deps.API, p.Doc, p.render, p.Faults, p.deps.Clock,
		cfg.Search, log.Named("search"))

	_ = p.Session.Check(p.ctx)
	p.Session.Start()

	p.bindGlobal()

	switch p.Name {
	case PageDashboard:
		p.bootDashboard()
	case PageEmails:
		p.bootEmails()
	case PageChat:
		p.bootChat()
	}

	log.Debug("page booted", zap.String("page", string(p.Name)))
	return nil
}

func (p *Page) bindGlobal() {
	r := p.Registry

	r.On(page.Input, "#"+page.RegionSearchInput, func(_ context.Context, ev *page.Event) {
		p.Search.OnInput(p.ctx, ev.Value)
	})
	r.On(page.KeyPress, "#"+page.RegionSearchInput, func(ctx context.Context, ev *page.Event) {
		p.Search.OnKeyPress(ctx, ev.Key, ev.Value)
	})
	r.On(page.Click, ".search-result", func(_ context.Context, ev *page.Event) {
		if id, ok := ev.Current.IntDatum("email-id"); ok {
			p.Doc.Navigate(page.EmailPath(id))
		}
	})
	r.On(page.Click, ".btn-close", func(_ context.Context, ev *page.Event) {
		p.Doc.DismissAlert(ev.Current.Datum("alert-id"))
	})
	r.On(page.Unload, page.WindowTarget, func(context.Context, *page.Event) {
		p.Teardown()
	})
}

func (p *Page) bootDashboard() {
	p.Activity = dashboard.New(p.deps.API, p.Doc, p.render, p.Faults, p.deps.Clock,
		p.deps.Config.ActivityInterval(), p.deps.Log.Named("dashboard"))

	_ = p.Activity.Load(p.ctx)
	p.Activity.Start()

	p.Registry.On(page.Click, ".refresh-btn", func(ctx context.Context, ev *page.Event) {
		_ = p.Activity.Refresh(ctx, ev.Current.Datum("target"))
	})
}

func (p *Page) bootEmails() {
	m := mailbox.New(p.deps.API, p.Doc, p.render, p.Faults, p.deps.Confirm,
		p.deps.Log.Named("mailbox"))
	p.Mailbox = m
	r := p.Registry

	r.On(page.Click, ".email-item", func(_ context.Context, ev *page.Event) {
		if id, ok := ev.Current.IntDatum("email-id"); ok {
			m.Open(id)
		}
	})
	r.On(page.Click, ".mark-read-btn", func(ctx context.Context, ev *page.Event) {
		ev.StopPropagation()
		if id, ok := ev.Current.IntDatum("email-id"); ok {
			_ = m.ToggleRead(ctx, id)
		}
	})
	r.On(page.Click, ".star-btn", func(ctx context.Context, ev *page.Event) {
		ev.StopPropagation()
		if id, ok := ev.Current.IntDatum("email-id"); ok {
			_ = m.ToggleStar(ctx, id)
		}
	})
	r.On(page.Click, ".folder-item", func(ctx context.Context, ev *page.Event) {
		if folder := ev.Current.Datum("folder"); folder != "" {
			_ = m.LoadFolder(ctx, model.Folder(folder))
		}
	})
	r.On(page.Change, "#"+page.RegionSelectAll, func(_ context.Context, ev *page.Event) {
		m.SelectAll(ev.Checked)
	})
	r.On(page.Change, ".email-checkbox", func(_ context.Context, ev *page.Event) {
		if id, ok := ev.Current.IntDatum("email-id"); ok {
			m.SetChecked(id, ev.Checked)
		}
	})

	bulk := map[string]model.BulkAction{
		"#bulkMarkRead":   model.BulkMarkRead,
		"#bulkMarkUnread": model.BulkMarkUnread,
		"#bulkDelete":     model.BulkDelete,
	}
	for target, action := range bulk {
		r.On(page.Click, target, func(ctx context.Context, _ *page.Event) {
			_ = m.Bulk(ctx, action)
		})
	}

	_ = m.LoadFolder(p.ctx, model.Folder(p.deps.Config.Display.DefaultFolder))
}

func (p *Page) bootChat() {
	p.Chat = chat.New(p.deps.API, p.Doc, p.render, p.Faults, p.deps.Clock,
		p.deps.Log.Named("chat"))

	p.Registry.On(page.Submit, "#chat-form", func(ctx context.Context, ev *page.Event) {
		_ = p.Chat.Submit(ctx, ev.Value)
	})
}

// Dispatch delivers an event to the bound handlers and returns how many
// ran. Events after Teardown are dropped.
func (p *Page) Dispatch(ctx context.Context, ev *page.Event) int {
	p.mu.Lock()
	torn := p.torn
	p.mu.Unlock()
	if torn {
		return 0
	}
	return p.Registry.Dispatch(ctx, ev)
}

// Teardown stops every recurring task and pending debounce and unbinds
// all handlers. It is safe to call more than once.
func (p *Page) Teardown() {
	p.mu.Lock()
	if !p.booted || p.torn {
		p.mu.Unlock()
		return
	}
	p.torn = true
	p.mu.Unlock()

	p.Session.Stop()
	p.Search.Stop()
	if p.Activity != nil {
		p.Activity.Stop()
	}
	p.cancel()
	p.Registry.Reset()

	p.deps.Log.Debug("page torn down", zap.String("page", string(p.Name)))
}

// Renderer returns the fragment renderer shared by the page's components.
func (p *Page) Renderer() *render.Renderer {
	return p.render
}

// Context is cancelled when the page is torn down.
func (p *Page) Context() context.Context {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctx
}

package testutil

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/mailassist/internal/api"
	"github.com/nhle/mailassist/internal/page"
	"github.com/nhle/mailassist/internal/render"
	"github.com/nhle/mailassist/internal/schedule"
)

// Epoch is the fake clock's start time in every Env.
var Epoch = time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)

// Env bundles a fake backend with a document on a fake clock.
type Env struct {
	Backend *Backend
	Client  *api.Client
	Clock   *schedule.Fake
	Nav     *Navigator
	Doc     *page.Document
	Render  *render.Renderer
	Log     *zap.Logger
}

// NewEnv creates an Env whose document is located at path.
func NewEnv(t *testing.T, path string) *Env {
	t.Helper()

	backend := NewBackend(t)
	clock := schedule.NewFake(Epoch)
	nav := &Navigator{}
	log := zap.NewNop()

	r, err := render.New(clock, log)
	if err != nil {
		t.Fatalf("parsing templates: %v", err)
	}

	return &Env{
		Backend: backend,
		Client:  backend.Client(t),
		Clock:   clock,
		Nav:     nav,
		Doc:     page.New(clock, nav, path),
		Render:  r,
		Log:     log,
	}
}

// AlertMessages returns the messages of the visible alerts, oldest first.
func (e *Env) AlertMessages() []string {
	var out []string
	for _, a := range e.Doc.Alerts() {
		out = append(out, a.Message)
	}
	return out
}

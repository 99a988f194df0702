// Package session tracks the signed-in state of the page and keeps the
// access token fresh.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/mailassist/internal/api"
	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/page"
	"github.com/nhle/mailassist/internal/render"
	"github.com/nhle/mailassist/internal/schedule"
)

// DefaultRefreshInterval is how often a valid token is refreshed.
const DefaultRefreshInterval = 30 * time.Minute

// refreshTimeout bounds a refresh triggered by the recurring task.
const refreshTimeout = 30 * time.Second

// API is the subset of the server API the session needs.
type API interface {
	AuthStatus(ctx context.Context) (*model.AuthStatus, error)
	RefreshToken(ctx context.Context) error
}

// Sync owns the cached auth status for the page's lifetime. The cache is
// only trusted between refresh cycles; any 401 overrides it.
type Sync struct {
	api      API
	doc      *page.Document
	render   *render.Renderer
	faults   *Faults
	clock    schedule.Clock
	interval time.Duration
	log      *zap.Logger

	mu     sync.RWMutex
	status *model.AuthStatus
	ticker *schedule.Recurring
}

// New creates a session sync. A non-positive interval uses
// DefaultRefreshInterval.
func New(
	a API,
	doc *page.Document,
	r *render.Renderer,
	faults *Faults,
	clock schedule.Clock,
	interval time.Duration,
	log *zap.Logger,
) *Sync {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Sync{
		api:      a,
		doc:      doc,
		render:   r,
		faults:   faults,
		clock:    clock,
		interval: interval,
		log:      log,
	}
}

// Check reads the auth status, updates the navbar and the auth-gated
// groups, and refreshes at once when the token is stale but recoverable.
// A failed check leaves the page as it was and goes through the fault
// policy like any other call.
func (s *Sync) Check(ctx context.Context) error {
	status, err := s.api.AuthStatus(ctx)
	if err != nil {
		s.log.Warn("checking auth status", zap.Error(err))
		if s.faults != nil {
			s.faults.Report(err, "")
		}
		return err
	}

	s.mu.Lock()
	s.status = status
	s.mu.Unlock()

	if status.Authenticated {
		name := ""
		if status.User != nil {
			name = status.User.DisplayName
		}
		s.doc.SetHTML(page.RegionUserBadge, s.render.UserBadge(name))
		s.doc.SetGroupVisible(page.GroupAuthRequired, true)
		s.doc.SetGroupVisible(page.GroupGuestOnly, false)
	}

	if status.RefreshNeeded() {
		return s.Refresh(ctx)
	}
	return nil
}

// Refresh asks the server for a fresh token. Any failure ends the
// session: the page navigates to the login boundary once, with no retry.
func (s *Sync) Refresh(ctx context.Context) error {
	err := s.api.RefreshToken(ctx)
	if err == nil {
		s.mu.Lock()
		if s.status != nil {
			s.status.TokenValid = true
			s.status.NeedsRefresh = false
		}
		s.mu.Unlock()
		s.log.Debug("token refreshed")
		return nil
	}

	s.mu.Lock()
	if s.status != nil {
		s.status.TokenValid = false
	}
	s.mu.Unlock()

	s.log.Error("token refresh failed", zap.Error(err))
	if api.IsUnauthorized(err) && s.faults != nil {
		s.faults.Report(err, "")
		return err
	}
	s.doc.Navigate(page.LoginPath)
	return err
}

// Start arms the recurring refresh. Ticks only refresh while the cached
// status is authenticated with a valid token. Calling Start twice is a
// no-op.
func (s *Sync) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticker != nil && !s.ticker.Stopped() {
		return
	}
	s.ticker = schedule.Every(s.clock, s.interval, s.tick)
}

func (s *Sync) tick() {
	if !s.Authenticated() || !s.TokenValid() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	_ = s.Refresh(ctx)
}

// Stop cancels the recurring refresh.
func (s *Sync) Stop() {
	s.mu.Lock()
	ticker := s.ticker
	s.mu.Unlock()
	ticker.Stop()
}

// Running reports whether the recurring refresh is armed.
func (s *Sync) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ticker != nil && !s.ticker.Stopped()
}

// Status returns a copy of the cached status, or nil before Check.
func (s *Sync) Status() *model.AuthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.status == nil {
		return nil
	}
	cp := *s.status
	return &cp
}

// Authenticated reports the cached authenticated flag.
func (s *Sync) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status != nil && s.status.Authenticated
}

// TokenValid reports the cached token_valid flag.
func (s *Sync) TokenValid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status != nil && s.status.TokenValid
}

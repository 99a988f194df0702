// Package dashboard keeps the dashboard's recent activity panel current.
package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/page"
	"github.com/nhle/mailassist/internal/render"
	"github.com/nhle/mailassist/internal/schedule"
)

// DefaultInterval is how often the activity panel reloads.
const DefaultInterval = 2 * time.Minute

// SectionActivity is the refresh-button target for the activity panel.
const SectionActivity = "activity"

// MsgLoadFailed is rendered in place of the counters when loading fails.
const MsgLoadFailed = "Failed to load recent activity"

// loadTimeout bounds a reload triggered by the recurring task.
const loadTimeout = 30 * time.Second

// StatsSource returns the mailbox counters.
type StatsSource interface {
	EmailStats(ctx context.Context) (*model.EmailStats, error)
}

// Reporter surfaces a failed call to the user.
type Reporter interface {
	Report(err error, msg string)
}

// Activity renders the mailbox counters into the activity region.
type Activity struct {
	api      StatsSource
	doc      *page.Document
	render   *render.Renderer
	faults   Reporter
	clock    schedule.Clock
	interval time.Duration
	log      *zap.Logger

	mu     sync.Mutex
	ticker *schedule.Recurring
	last   *model.EmailStats
}

// New creates the activity panel. A non-positive interval uses
// DefaultInterval.
func New(
	s StatsSource,
	doc *page.Document,
	r *render.Renderer,
	faults Reporter,
	clock schedule.Clock,
	interval time.Duration,
	log *zap.Logger,
) *Activity {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Activity{
		api:      s,
		doc:      doc,
		render:   r,
		faults:   faults,
		clock:    clock,
		interval: interval,
		log:      log,
	}
}

// Load fetches the counters and renders them.
func (a *Activity) Load(ctx context.Context) error {
	stats, err := a.api.EmailStats(ctx)
	if err != nil {
		a.log.Warn("loading recent activity", zap.Error(err))
		a.doc.SetHTML(page.RegionActivity, a.render.ListError(MsgLoadFailed))
		a.faults.Report(err, "")
		return err
	}

	a.mu.Lock()
	a.last = stats
	a.mu.Unlock()

	a.doc.SetHTML(page.RegionActivity, a.render.Stats(*stats))
	return nil
}

// Refresh reloads the dashboard section named by a refresh button.
// Unknown sections are ignored.
func (a *Activity) Refresh(ctx context.Context, section string) error {
	switch section {
	case SectionActivity, "":
		return a.Load(ctx)
	default:
		a.log.Debug("ignoring refresh of unknown section", zap.String("section", section))
		return nil
	}
}

// Start arms the recurring reload.
func (a *Activity) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ticker != nil && !a.ticker.Stopped() {
		return
	}
	a.ticker = schedule.Every(a.clock, a.interval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		_ = a.Load(ctx)
	})
}

// Stop cancels the recurring reload.
func (a *Activity) Stop() {
	a.mu.Lock()
	ticker := a.ticker
	a.mu.Unlock()
	ticker.Stop()
}

// Stats returns the last counters loaded, or nil.
func (a *Activity) Stats() *model.EmailStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.last == nil {
		return nil
	}
	cp := *a.last
	return &cp
}

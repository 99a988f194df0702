// Package search drives the global search box: debounced queries, the
// results dropdown and its failure alert.
package search

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/page"
	"github.com/nhle/mailassist/internal/render"
	"github.com/nhle/mailassist/internal/schedule"
)

// MsgFailed is shown when a search request fails.
const MsgFailed = "Search failed. Please try again."

// State is the search box's position in its lifecycle.
type State int

const (
	Idle State = iota
	Pending
	Querying
	Displaying
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Querying:
		return "querying"
	case Displaying:
		return "displaying"
	default:
		return "idle"
	}
}

// Searcher runs a full-text email search.
type Searcher interface {
	SearchEmails(ctx context.Context, query string, limit int) ([]model.Email, error)
}

// Reporter surfaces a failed call to the user.
type Reporter interface {
	Report(err error, msg string)
}

// Controller owns the search box. Requests are never cancelled, so a
// slow response can overwrite a newer one.
type Controller struct {
	api      Searcher
	doc      *page.Document
	render   *render.Renderer
	faults   Reporter
	slot     *schedule.Slot
	minChars int
	limit    int
	log      *zap.Logger

	mu      sync.Mutex
	state   State
	query   string
	results []model.Email
}

// New creates a search controller using the thresholds in cfg.
func New(
	s Searcher,
	doc *page.Document,
	r *render.Renderer,
	faults Reporter,
	clock schedule.Clock,
	cfg model.SearchConfig,
	log *zap.Logger,
) *Controller {
	return &Controller{
		api:      s,
		doc:      doc,
		render:   r,
		faults:   faults,
		slot:     schedule.NewSlot(clock, time.Duration(cfg.DebounceMS)*time.Millisecond),
		minChars: cfg.MinChars,
		limit:    cfg.Limit,
		log:      log,
	}
}

func (c *Controller) long(query string) bool {
	return utf8.RuneCountInString(query) >= c.minChars
}

// OnInput reacts to the box's value changing. Short queries clear the
// dropdown at once; longer ones restart the debounce window so only the
// last value typed within it is searched.
func (c *Controller) OnInput(ctx context.Context, value string) {
	query := strings.TrimSpace(value)

	if !c.long(query) {
		c.slot.Cancel()
		c.doc.Empty(page.RegionSearchResults)

		c.mu.Lock()
		c.state = Idle
		c.query = ""
		c.results = nil
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.state = Pending
	c.mu.Unlock()

	c.slot.Schedule(func() {
		_ = c.Perform(ctx, query)
	})
}

// OnKeyPress searches immediately on Enter, dropping any pending
// debounced search for the same input.
func (c *Controller) OnKeyPress(ctx context.Context, key, value string) {
	if key != page.KeyEnter {
		return
	}
	query := strings.TrimSpace(value)
	if !c.long(query) {
		return
	}
	c.slot.Cancel()
	_ = c.Perform(ctx, query)
}

// Perform runs one search and renders the dropdown. On failure the
// current results stay in place.
func (c *Controller) Perform(ctx context.Context, query string) error {
	c.mu.Lock()
	c.state = Querying
	c.mu.Unlock()

	emails, err := c.api.SearchEmails(ctx, query, c.limit)
	if err != nil {
		c.log.Error("search failed", zap.String("query", query), zap.Error(err))
		c.faults.Report(err, MsgFailed)

		c.mu.Lock()
		if c.results != nil {
			c.state = Displaying
		} else {
			c.state = Idle
		}
		c.mu.Unlock()
		return err
	}

	if emails == nil {
		emails = []model.Email{}
	}
	c.doc.SetHTML(page.RegionSearchResults, c.render.SearchResults(emails, query))

	c.mu.Lock()
	c.state = Displaying
	c.query = query
	c.results = emails
	c.mu.Unlock()
	return nil
}

// Stop drops any pending debounced search.
func (c *Controller) Stop() {
	c.slot.Cancel()
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Query returns the query of the displayed results.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Results returns the displayed results.
func (c *Controller) Results() []model.Email {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Email(nil), c.results...)
}

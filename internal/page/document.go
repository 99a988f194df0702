// Package page models the state a browser page would hold for the
// client: named regions with rendered HTML, visibility, input values,
// transient alerts, and the current location.
package page

import (
	"html/template"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/mailassist/internal/schedule"
)

// Well-known region and group identifiers.
const (
	RegionSearchResults = "searchResults"
	RegionSearchInput   = "globalSearch"
	RegionEmailList     = "emailList"
	RegionBulkBar       = "bulkActionBar"
	RegionSelectedCount = "selectedCount"
	RegionSelectAll     = "selectAll"
	RegionChatMessages  = "chat-messages"
	RegionChatInput     = "chat-input"
	RegionUserBadge     = "navbar-user"
	RegionActivity      = "recentActivity"
	RegionActiveFolder  = "activeFolder"

	GroupAuthRequired = "auth-required"
	GroupGuestOnly    = "guest-only"
)

// Paths the client navigates to.
const (
	LoginPath = "/auth/login"
)

// EmailPath returns the full view of one email.
func EmailPath(id int) string {
	return "/emails/" + strconv.Itoa(id)
}

// AlertLevel is the visual severity of an alert.
type AlertLevel string

const (
	AlertSuccess AlertLevel = "success"
	AlertInfo    AlertLevel = "info"
	AlertWarning AlertLevel = "warning"
	AlertDanger  AlertLevel = "danger"
)

// DefaultAlertDuration is how long an alert stays before auto-dismissal.
const DefaultAlertDuration = 5 * time.Second

// Alert is a transient, dismissible message.
type Alert struct {
	ID        string
	Level     AlertLevel
	Message   string
	CreatedAt time.Time
}

// Navigator performs a location change.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string)

// Navigate calls f(path).
func (f NavigatorFunc) Navigate(path string) { f(path) }

type region struct {
	html   template.HTML
	text   string
	value  string
	hidden bool
}

// Document is safe for concurrent use. Every mutation notifies watchers
// with the affected region id.
type Document struct {
	clock schedule.Clock
	nav   Navigator

	mu       sync.Mutex
	regions  map[string]*region
	groups   map[string]bool
	alerts   []Alert
	location string
	watchers []chan string
}

// New creates a document located at path. nav may be nil, in which case
// navigation only updates Location.
func New(clock schedule.Clock, nav Navigator, path string) *Document {
	return &Document{
		clock:    clock,
		nav:      nav,
		regions:  make(map[string]*region),
		groups:   make(map[string]bool),
		location: path,
	}
}

// region must be called with d.mu held.
func (d *Document) region(id string) *region {
	r, ok := d.regions[id]
	if !ok {
		r = &region{}
		d.regions[id] = r
	}
	return r
}

// notify must be called with d.mu held. Slow watchers miss updates
// rather than block the document.
func (d *Document) notify(id string) {
	for _, ch := range d.watchers {
		select {
		case ch <- id:
		default:
		}
	}
}

// Watch returns a channel receiving the id of every region that changes.
func (d *Document) Watch() <-chan string {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch := make(chan string, 64)
	d.watchers = append(d.watchers, ch)
	return ch
}

// SetHTML replaces the content of a region.
func (d *Document) SetHTML(id string, html template.HTML) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.region(id).html = html
	d.notify(id)
}

// AppendHTML appends a fragment to a region.
func (d *Document) AppendHTML(id string, html template.HTML) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := d.region(id)
	r.html += html
	d.notify(id)
}

// Empty clears the content of a region.
func (d *Document) Empty(id string) {
	d.SetHTML(id, "")
}

// HTML returns the content of a region.
func (d *Document) HTML(id string) template.HTML {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, ok := d.regions[id]; ok {
		return r.html
	}
	return ""
}

// SetText sets the plain text of a region.
func (d *Document) SetText(id, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.region(id).text = text
	d.notify(id)
}

// Text returns the plain text of a region.
func (d *Document) Text(id string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, ok := d.regions[id]; ok {
		return r.text
	}
	return ""
}

// SetValue sets the value of an input region.
func (d *Document) SetValue(id, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.region(id).value = value
	d.notify(id)
}

// Value returns the value of an input region.
func (d *Document) Value(id string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, ok := d.regions[id]; ok {
		return r.value
	}
	return ""
}

// Show makes a region visible.
func (d *Document) Show(id string) { d.setHidden(id, false) }

// Hide hides a region.
func (d *Document) Hide(id string) { d.setHidden(id, true) }

func (d *Document) setHidden(id string, hidden bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.region(id).hidden = hidden
	d.notify(id)
}

// Visible reports whether a region is shown. Unknown regions are visible.
func (d *Document) Visible(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, ok := d.regions[id]; ok {
		return !r.hidden
	}
	return true
}

// SetGroupVisible shows or hides every element of a visibility group.
func (d *Document) SetGroupVisible(group string, visible bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.groups[group] = visible
	d.notify(group)
}

// GroupVisible reports the visibility of a group and whether it was set.
func (d *Document) GroupVisible(group string) (visible, known bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	visible, known = d.groups[group]
	return visible, known
}

// ShowAlert appends an alert and schedules its dismissal after duration.
// A non-positive duration uses DefaultAlertDuration.
func (d *Document) ShowAlert(level AlertLevel, message string, duration time.Duration) string {
	if duration <= 0 {
		duration = DefaultAlertDuration
	}

	d.mu.Lock()
	a := Alert{
		ID:        "alert-" + uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: d.clock.Now(),
	}
	d.alerts = append(d.alerts, a)
	d.notify(a.ID)
	d.mu.Unlock()

	d.clock.AfterFunc(duration, func() { d.DismissAlert(a.ID) })
	return a.ID
}

// DismissAlert removes an alert. It reports whether the alert was present.
func (d *Document) DismissAlert(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, a := range d.alerts {
		if a.ID == id {
			d.alerts = append(d.alerts[:i], d.alerts[i+1:]...)
			d.notify(id)
			return true
		}
	}
	return false
}

// Alerts returns a snapshot of the visible alerts, oldest first.
func (d *Document) Alerts() []Alert {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Alert, len(d.alerts))
	copy(out, d.alerts)
	return out
}

// Navigate changes the location and hands the path to the navigator.
func (d *Document) Navigate(path string) {
	d.mu.Lock()
	d.location = path
	d.notify("location")
	nav := d.nav
	d.mu.Unlock()

	if nav != nil {
		nav.Navigate(path)
	}
}

// Location returns the current path.
func (d *Document) Location() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.location
}

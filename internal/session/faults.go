package session

import (
	"time"

	"go.uber.org/zap"

	"github.com/nhle/mailassist/internal/api"
	"github.com/nhle/mailassist/internal/page"
)

// User-facing messages for failures no call site handled.
const (
	MsgAccessDenied = "Access denied. You do not have permission for this action."
	MsgServerError  = "Server error. Please try again later."
	MsgNetworkLost  = "Network connection lost. Please check your internet connection."
)

// Faults applies the last-resort failure policy shared by every call site.
type Faults struct {
	doc           *page.Document
	alertDuration time.Duration
	log           *zap.Logger
}

// NewFaults creates a fault reporter writing alerts to doc.
func NewFaults(doc *page.Document, alertDuration time.Duration, log *zap.Logger) *Faults {
	return &Faults{doc: doc, alertDuration: alertDuration, log: log}
}

// Report handles a failed call. A 401 always navigates to the login page.
// Otherwise msg, when given, is shown as a danger alert; without one the
// failure class picks the alert. Cancelled calls are ignored.
func (f *Faults) Report(err error, msg string) {
	if err == nil {
		return
	}

	class := api.Classify(err)
	switch class {
	case api.ClassAuth:
		f.log.Info("session expired, redirecting to login", zap.Error(err))
		f.doc.Navigate(page.LoginPath)
		return
	case api.ClassCanceled:
		f.log.Debug("call cancelled", zap.Error(err))
		return
	}

	f.log.Warn("call failed", zap.Stringer("class", class), zap.Error(err))

	if msg != "" {
		f.Alert(page.AlertDanger, msg)
		return
	}

	switch class {
	case api.ClassPermission:
		f.Alert(page.AlertDanger, MsgAccessDenied)
	case api.ClassServer:
		f.Alert(page.AlertDanger, MsgServerError)
	case api.ClassNetwork:
		f.Alert(page.AlertWarning, MsgNetworkLost)
	}
}

// Alert shows a transient alert with the configured duration.
func (f *Faults) Alert(level page.AlertLevel, msg string) string {
	return f.doc.ShowAlert(level, msg, f.alertDuration)
}

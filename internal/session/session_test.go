package session

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailassist/internal/api"
	"github.com/nhle/mailassist/internal/page"
	"github.com/nhle/mailassist/internal/testutil"
)

func newSync(env *testutil.Env) (*Sync, *Faults) {
	faults := NewFaults(env.Doc, page.DefaultAlertDuration, env.Log)
	return New(env.Client, env.Doc, env.Render, faults, env.Clock, 0, env.Log), faults
}

func authStatus(valid, needsRefresh bool) map[string]any {
	return map[string]any{
		"authenticated": true,
		"user":          map[string]any{"display_name": "Ann Lee"},
		"token_valid":   valid,
		"needs_refresh": needsRefresh,
	}
}

func TestSync_CheckUpdatesNavbarAndGroups(t *testing.T) {
	env := testutil.NewEnv(t, "/")
	env.Backend.JSON("GET /auth/status", http.StatusOK, authStatus(true, false))
	s, _ := newSync(env)

	require.NoError(t, s.Check(context.Background()))

	assert.True(t, s.Authenticated())
	assert.True(t, s.TokenValid())
	assert.Contains(t, string(env.Doc.HTML(page.RegionUserBadge)), "Ann Lee")

	visible, _ := env.Doc.GroupVisible(page.GroupAuthRequired)
	assert.True(t, visible)
	visible, _ = env.Doc.GroupVisible(page.GroupGuestOnly)
	assert.False(t, visible)
	assert.Equal(t, 0, env.Backend.Count("POST /auth/refresh-token"))
}

func TestSync_CheckRefreshesStaleToken(t *testing.T) {
	env := testutil.NewEnv(t, "/")
	env.Backend.JSON("GET /auth/status", http.StatusOK, authStatus(false, true))
	env.Backend.JSON("POST /auth/refresh-token", http.StatusOK, map[string]bool{"success": true})
	s, _ := newSync(env)

	require.NoError(t, s.Check(context.Background()))

	assert.Equal(t, 1, env.Backend.Count("POST /auth/refresh-token"))
	assert.True(t, s.TokenValid())
	assert.Empty(t, env.Nav.Visited())
}

func TestSync_CheckServerErrorRaisesAlert(t *testing.T) {
	env := testutil.NewEnv(t, "/")
	env.Backend.JSON("GET /auth/status", http.StatusInternalServerError, map[string]string{"error": "down"})
	s, _ := newSync(env)

	assert.Error(t, s.Check(context.Background()))
	assert.Nil(t, s.Status())
	assert.Equal(t, []string{MsgServerError}, env.AlertMessages())
	assert.Empty(t, env.Nav.Visited())
}

func TestSync_CheckUnauthorizedNavigatesToLogin(t *testing.T) {
	env := testutil.NewEnv(t, "/")
	env.Backend.JSON("GET /auth/status", http.StatusUnauthorized, map[string]string{"error": "login"})
	s, _ := newSync(env)

	assert.Error(t, s.Check(context.Background()))
	assert.Equal(t, 1, env.Nav.CountOf(page.LoginPath))
	assert.Equal(t, page.LoginPath, env.Doc.Location())
	assert.Empty(t, env.Doc.Alerts())
	assert.Equal(t, 0, env.Backend.Count("POST /auth/refresh-token"))
}

func TestSync_RefreshRejectedNavigatesToLogin(t *testing.T) {
	env := testutil.NewEnv(t, "/")
	env.Backend.JSON("POST /auth/refresh-token", http.StatusOK, map[string]bool{"success": false})
	s, _ := newSync(env)

	assert.Error(t, s.Refresh(context.Background()))
	assert.Equal(t, []string{page.LoginPath}, env.Nav.Visited())
	assert.Equal(t, page.LoginPath, env.Doc.Location())
}

func TestSync_RefreshUnauthorizedNavigatesOnce(t *testing.T) {
	env := testutil.NewEnv(t, "/")
	env.Backend.JSON("POST /auth/refresh-token", http.StatusUnauthorized, map[string]string{"error": "expired"})
	s, _ := newSync(env)

	assert.Error(t, s.Refresh(context.Background()))
	assert.Equal(t, 1, env.Nav.CountOf(page.LoginPath))
}

func TestSync_RecurringRefreshOnlyWhileValid(t *testing.T) {
	env := testutil.NewEnv(t, "/")
	env.Backend.JSON("GET /auth/status", http.StatusOK, authStatus(true, false))
	env.Backend.JSON("POST /auth/refresh-token", http.StatusOK, map[string]bool{"success": true})
	s, _ := newSync(env)

	require.NoError(t, s.Check(context.Background()))
	s.Start()
	s.Start()
	assert.True(t, s.Running())

	env.Clock.Advance(29 * time.Minute)
	assert.Equal(t, 0, env.Backend.Count("POST /auth/refresh-token"))

	env.Clock.Advance(time.Minute)
	assert.Equal(t, 1, env.Backend.Count("POST /auth/refresh-token"))

	env.Clock.Advance(time.Hour)
	assert.Equal(t, 3, env.Backend.Count("POST /auth/refresh-token"))

	s.Stop()
	assert.False(t, s.Running())
	env.Clock.Advance(time.Hour)
	assert.Equal(t, 3, env.Backend.Count("POST /auth/refresh-token"))
}

func TestSync_RecurringRefreshSkipsWhenSignedOut(t *testing.T) {
	env := testutil.NewEnv(t, "/")
	env.Backend.JSON("GET /auth/status", http.StatusOK, map[string]any{"authenticated": false})
	s, _ := newSync(env)

	require.NoError(t, s.Check(context.Background()))
	s.Start()
	defer s.Stop()

	env.Clock.Advance(2 * time.Hour)
	assert.Equal(t, 0, env.Backend.Count("POST /auth/refresh-token"))
}

func TestFaults_Report(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		msg       string
		wantAlert string
		wantLevel page.AlertLevel
		wantNav   bool
	}{
		{name: "unauthorized", err: &api.StatusError{Code: 401}, msg: "Search failed.", wantNav: true},
		{name: "forbidden", err: &api.StatusError{Code: 403}, wantAlert: MsgAccessDenied, wantLevel: page.AlertDanger},
		{name: "server", err: &api.StatusError{Code: 503}, wantAlert: MsgServerError, wantLevel: page.AlertDanger},
		{name: "network", err: &api.NetworkError{Err: assert.AnError}, wantAlert: MsgNetworkLost, wantLevel: page.AlertWarning},
		{name: "call site wins", err: &api.StatusError{Code: 500}, msg: "Search failed. Please try again.", wantAlert: "Search failed. Please try again.", wantLevel: page.AlertDanger},
		{name: "client timeout with call site", err: &api.NetworkError{Err: context.DeadlineExceeded}, msg: "Search failed. Please try again.", wantAlert: "Search failed. Please try again.", wantLevel: page.AlertDanger},
		{name: "client timeout", err: &api.NetworkError{Err: context.DeadlineExceeded}, wantAlert: MsgNetworkLost, wantLevel: page.AlertWarning},
		{name: "cancelled", err: context.Canceled},
		{name: "unclassified", err: assert.AnError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewEnv(t, "/emails")
			faults := NewFaults(env.Doc, time.Second, env.Log)

			faults.Report(tt.err, tt.msg)

			if tt.wantNav {
				assert.Equal(t, []string{page.LoginPath}, env.Nav.Visited())
			} else {
				assert.Empty(t, env.Nav.Visited())
			}

			alerts := env.Doc.Alerts()
			if tt.wantAlert == "" {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, tt.wantAlert, alerts[0].Message)
			assert.Equal(t, tt.wantLevel, alerts[0].Level)

			env.Clock.Advance(time.Second)
			assert.Empty(t, env.Doc.Alerts())
		})
	}
}

func TestFaults_ReportNilIsNoop(t *testing.T) {
	env := testutil.NewEnv(t, "/")
	NewFaults(env.Doc, 0, env.Log).Report(nil, "ignored")
	assert.Empty(t, env.Doc.Alerts())
}

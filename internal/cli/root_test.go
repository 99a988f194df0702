package cli

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/page"
	"github.com/nhle/mailassist/internal/testutil"
)

func newTestApp(t *testing.T) (*App, *testutil.Backend) {
	t.Helper()
	backend := testutil.NewBackend(t)
	backend.JSON("GET /auth/status", http.StatusOK, map[string]any{"authenticated": true, "token_valid": true})
	backend.JSON("GET /api/email/list", http.StatusOK, map[string]any{"emails": []map[string]any{
		{"id": 5, "subject": "Hello", "sender_name": "Ann"},
	}})

	cfg := model.DefaultAppConfig()
	cfg.Server.BaseURL = backend.URL
	return &App{cfg: cfg, log: zap.NewNop(), cookie: "abc"}, backend
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	var stderr bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetErr(&stderr)
	cmd.SetOut(&bytes.Buffer{})
	return cmd, &stderr
}

func TestSession_FinishReturnsOperationError(t *testing.T) {
	app, backend := newTestApp(t)
	backend.JSON("POST /api/email/5/mark-read", http.StatusOK, map[string]any{"success": false})
	cmd, stderr := newTestCmd()

	s, err := app.boot(cmd.Context(), "/emails", nil)
	require.NoError(t, err)

	err = s.finish(cmd, s.page.Mailbox.SetRead(cmd.Context(), 5, true))
	assert.Error(t, err)
	assert.Contains(t, stderr.String(), "Failed to update email status")
}

func TestSession_CloseFailsOnEventDrivenError(t *testing.T) {
	app, backend := newTestApp(t)
	backend.JSON("POST /api/email/5/star", http.StatusInternalServerError, map[string]any{"error": "db down"})
	cmd, stderr := newTestCmd()

	s, err := app.boot(cmd.Context(), "/emails", nil)
	require.NoError(t, err)

	s.page.Dispatch(cmd.Context(), page.NewClick(
		page.T(".star-btn", "email-id", "5"),
		page.T(".email-item", "email-id", "5"),
	))

	assert.ErrorIs(t, s.close(cmd), errFailed)
	assert.Contains(t, stderr.String(), "Failed to update star")
}

func TestSession_CloseSucceedsWithoutFailureAlerts(t *testing.T) {
	app, backend := newTestApp(t)
	backend.JSON("POST /api/email/5/mark-read", http.StatusOK, map[string]any{"success": true})
	cmd, stderr := newTestCmd()

	s, err := app.boot(cmd.Context(), "/emails", nil)
	require.NoError(t, err)

	assert.NoError(t, s.finish(cmd, s.page.Mailbox.SetRead(cmd.Context(), 5, true)))
	assert.Empty(t, stderr.String())
}

func TestFailed(t *testing.T) {
	assert.False(t, failed(nil))
	assert.False(t, failed([]page.Alert{{Level: page.AlertSuccess}, {Level: page.AlertInfo}}))
	assert.True(t, failed([]page.Alert{{Level: page.AlertSuccess}, {Level: page.AlertWarning}}))
	assert.True(t, failed([]page.Alert{{Level: page.AlertDanger}}))
}

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailassist/internal/api"
	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/testutil"
)

func TestNewClient_RejectsRelativeURL(t *testing.T) {
	_, err := api.NewClient("localhost")
	assert.Error(t, err)
}

func TestClient_AuthStatusCarriesSessionCookie(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.JSON("GET /auth/status", http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          map[string]any{"display_name": "Ann Lee", "email": "ann@example.com"},
		"token_valid":   false,
		"needs_refresh": true,
	})

	client := backend.Client(t, api.WithSessionCookie("abc123"))
	status, err := client.AuthStatus(context.Background())
	require.NoError(t, err)

	assert.True(t, status.Authenticated)
	assert.Equal(t, "Ann Lee", status.User.DisplayName)
	assert.True(t, status.RefreshNeeded())
	assert.Equal(t, "abc123", backend.Requests("GET /auth/status")[0].Cookie)
}

func TestClient_RefreshTokenRotatesCookie(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle("POST /auth/refresh-token", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: api.SessionCookieName, Value: "rotated", Path: "/"})
		testutil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	client := backend.Client(t, api.WithSessionCookie("old"))
	require.NoError(t, client.RefreshToken(context.Background()))
	assert.Equal(t, "rotated", client.SessionCookie())
}

func TestClient_RefreshTokenRejected(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.JSON("POST /auth/refresh-token", http.StatusOK, map[string]any{"success": false, "error": "no refresh token"})

	err := backend.Client(t).RefreshToken(context.Background())
	var rejected *api.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "no refresh token", rejected.Message)
	assert.Equal(t, api.ClassRejected, api.Classify(err))
}

func TestClient_SearchSendsQueryAndLimit(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.JSON("GET /api/email/search", http.StatusOK, map[string]any{
		"emails": []map[string]any{
			{"id": 1, "subject": "Project plan", "sender_name": "Ann", "received_date": "2025-03-10T08:00:00Z", "is_read": false},
		},
	})

	emails, err := backend.Client(t).SearchEmails(context.Background(), "proj", 10)
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, "Project plan", emails[0].Subject)
	assert.Equal(t, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC), emails[0].ReceivedDate.UTC())

	req := backend.Requests("GET /api/email/search")[0]
	assert.Equal(t, "proj", req.Query.Get("q"))
	assert.Equal(t, "10", req.Query.Get("limit"))
}

func TestClient_ListHandlesNullDate(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.JSON("GET /api/email/list", http.StatusOK, map[string]any{
		"emails": []map[string]any{{"id": 3, "subject": "x", "received_date": nil}},
	})

	emails, err := backend.Client(t).ListEmails(context.Background(), model.FolderSent)
	require.NoError(t, err)
	assert.Nil(t, emails[0].ReceivedDate)
	assert.Equal(t, "sent", backend.Requests("GET /api/email/list")[0].Query.Get("folder"))
}

func TestClient_MarkReadPostsForm(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.JSON("POST /api/email/7/mark-read", http.StatusOK, map[string]any{"success": true, "is_read": true})

	require.NoError(t, backend.Client(t).MarkRead(context.Background(), 7, true))
	assert.Equal(t, "is_read=true", backend.Requests("POST /api/email/7/mark-read")[0].Body)
}

func TestClient_MarkReadRejected(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.JSON("POST /api/email/7/mark-read", http.StatusOK, map[string]any{"success": false})

	err := backend.Client(t).MarkRead(context.Background(), 7, false)
	assert.Equal(t, api.ClassRejected, api.Classify(err))
}

func TestClient_BulkAndChatBodies(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.JSON("POST /api/email/bulk", http.StatusOK, map[string]any{"success": true})
	backend.JSON("POST /api/chat/message", http.StatusOK, map[string]any{"success": true, "response": "hello"})

	client := backend.Client(t)
	require.NoError(t, client.BulkAction(context.Background(), model.BulkDelete, []int{1, 2}))

	var bulk map[string]any
	require.NoError(t, json.Unmarshal([]byte(backend.Requests("POST /api/email/bulk")[0].Body), &bulk))
	assert.Equal(t, "delete", bulk["action"])
	assert.Equal(t, []any{1.0, 2.0}, bulk["email_ids"])

	reply, err := client.SendChat(context.Background(), "hi", "")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)

	var chat map[string]any
	require.NoError(t, json.Unmarshal([]byte(backend.Requests("POST /api/chat/message")[0].Body), &chat))
	assert.Equal(t, "hi", chat["message"])
	assert.Nil(t, chat["session_id"])
}

func TestClient_SendEmailDefaultsImportance(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.JSON("POST /api/email/send", http.StatusOK, map[string]any{"success": true, "message": "Email sent"})

	msg, err := backend.Client(t).SendEmail(context.Background(), model.OutgoingEmail{To: "a@example.com", Subject: "s", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, "Email sent", msg)

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(backend.Requests("POST /api/email/send")[0].Body), &sent))
	assert.Equal(t, "normal", sent["importance"])
	assert.Nil(t, sent["cc"])
}

func TestClient_StatusErrorsAreClassified(t *testing.T) {
	tests := []struct {
		code int
		want api.Class
	}{
		{http.StatusUnauthorized, api.ClassAuth},
		{http.StatusForbidden, api.ClassPermission},
		{http.StatusInternalServerError, api.ClassServer},
		{http.StatusBadGateway, api.ClassServer},
		{http.StatusBadRequest, api.ClassClient},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			backend := testutil.NewBackend(t)
			backend.JSON("GET /api/email/stats", tt.code, map[string]any{"error": "boom"})

			_, err := backend.Client(t).EmailStats(context.Background())
			var statusErr *api.StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.code, statusErr.Code)
			assert.Equal(t, "boom", statusErr.Message)
			assert.Equal(t, tt.want, api.Classify(err))
			assert.Equal(t, tt.code == http.StatusUnauthorized, api.IsUnauthorized(err))
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	backend := testutil.NewBackend(t)
	client := backend.Client(t)
	backend.Close()

	_, err := client.AuthStatus(context.Background())
	var netErr *api.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, api.ClassNetwork, api.Classify(err))
	assert.Equal(t, "the server could not be reached", api.Describe(err))
}

func slowHandler(w http.ResponseWriter, r *http.Request) {
	select {
	case <-r.Context().Done():
	case <-time.After(300 * time.Millisecond):
		testutil.WriteJSON(w, http.StatusOK, map[string]any{"emails": []any{}})
	}
}

func TestClient_TimeoutIsNetworkFailure(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle("GET /api/email/search", slowHandler)
	client, err := api.NewClient(backend.URL, api.WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = client.SearchEmails(context.Background(), "proj", 10)
	require.Error(t, err)
	var netErr *api.NetworkError
	assert.ErrorAs(t, err, &netErr)
	assert.Equal(t, api.ClassNetwork, api.Classify(err))
}

func TestClient_CallerCancelIsCanceled(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle("GET /api/email/search", slowHandler)
	client := backend.Client(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.SearchEmails(ctx, "proj", 10)
	require.Error(t, err)
	assert.Equal(t, api.ClassCanceled, api.Classify(err))
}

func TestDescribe_PrefersServerMessage(t *testing.T) {
	assert.Equal(t, "quota exceeded", api.Describe(&api.RejectedError{Op: "chat", Message: "quota exceeded"}))
	assert.Equal(t, "the server ran into a problem", api.Describe(&api.StatusError{Code: 500}))
}

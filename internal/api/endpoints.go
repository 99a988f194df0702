package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nhle/mailassist/internal/model"
)

// envelope is the {success, message, error} wrapper most write
// endpoints answer with.
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// check turns an explicit {"success": false} into a RejectedError.
// Responses without a success field are treated as accepted.
func (e envelope) check(op string) error {
	if e.Success != nil && !*e.Success {
		return &RejectedError{Op: op, Message: e.Error}
	}
	return nil
}

type emailsResponse struct {
	Emails []model.Email `json:"emails"`
}

// AuthStatus reads the current session state.
func (c *Client) AuthStatus(ctx context.Context) (*model.AuthStatus, error) {
	var status model.AuthStatus
	if err := c.get(ctx, "/auth/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// RefreshToken asks the server to refresh the session's access token.
func (c *Client) RefreshToken(ctx context.Context) error {
	var env envelope
	if err := c.postJSON(ctx, "/auth/refresh-token", nil, &env); err != nil {
		return err
	}
	if env.Success == nil || !*env.Success {
		return &RejectedError{Op: "token refresh", Message: env.Error}
	}
	return nil
}

// SearchEmails runs a full-text search limited to limit results.
func (c *Client) SearchEmails(ctx context.Context, query string, limit int) ([]model.Email, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))

	var resp emailsResponse
	if err := c.get(ctx, "/api/email/search", q, &resp); err != nil {
		return nil, err
	}
	return resp.Emails, nil
}

// ListEmails returns the emails of a folder.
func (c *Client) ListEmails(ctx context.Context, folder model.Folder) ([]model.Email, error) {
	q := url.Values{}
	q.Set("folder", string(folder))

	var resp emailsResponse
	if err := c.get(ctx, "/api/email/list", q, &resp); err != nil {
		return nil, err
	}
	return resp.Emails, nil
}

// MarkRead sets the read flag of one email.
func (c *Client) MarkRead(ctx context.Context, id int, isRead bool) error {
	form := url.Values{}
	form.Set("is_read", strconv.FormatBool(isRead))

	var env envelope
	if err := c.postForm(ctx, fmt.Sprintf("/api/email/%d/mark-read", id), form, &env); err != nil {
		return err
	}
	if env.Success == nil {
		return &RejectedError{Op: "mark read"}
	}
	return env.check("mark read")
}

// SetStarred sets the star flag of one email.
func (c *Client) SetStarred(ctx context.Context, id int, starred bool) error {
	body := map[string]bool{"is_starred": starred}

	var env envelope
	if err := c.postJSON(ctx, fmt.Sprintf("/api/email/%d/star", id), body, &env); err != nil {
		return err
	}
	if env.Success == nil {
		return &RejectedError{Op: "star"}
	}
	return env.check("star")
}

// BulkAction applies action to every email in ids.
func (c *Client) BulkAction(ctx context.Context, action model.BulkAction, ids []int) error {
	body := struct {
		Action   model.BulkAction `json:"action"`
		EmailIDs []int            `json:"email_ids"`
	}{action, ids}

	var env envelope
	if err := c.postJSON(ctx, "/api/email/bulk", body, &env); err != nil {
		return err
	}
	return env.check("bulk " + string(action))
}

// SendEmail submits an outgoing message and returns the server's
// confirmation text.
func (c *Client) SendEmail(ctx context.Context, msg model.OutgoingEmail) (string, error) {
	if msg.Importance == "" {
		msg.Importance = "normal"
	}

	var env envelope
	if err := c.postJSON(ctx, "/api/email/send", msg, &env); err != nil {
		return "", err
	}
	if env.Success == nil || !*env.Success {
		return "", &RejectedError{Op: "send email", Message: env.Error}
	}
	return env.Message, nil
}

// SendChat posts a chat message and returns the assistant's reply.
func (c *Client) SendChat(ctx context.Context, message, sessionID string) (string, error) {
	body := struct {
		Message   string  `json:"message"`
		SessionID *string `json:"session_id"`
	}{Message: message}
	if sessionID != "" {
		body.SessionID = &sessionID
	}

	var resp struct {
		envelope
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/api/chat/message", body, &resp); err != nil {
		return "", err
	}
	if resp.Success == nil || !*resp.Success {
		return "", &RejectedError{Op: "chat", Message: resp.Error}
	}
	return resp.Response, nil
}

// EmailStats returns the dashboard counters.
func (c *Client) EmailStats(ctx context.Context) (*model.EmailStats, error) {
	var stats model.EmailStats
	if err := c.get(ctx, "/api/email/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

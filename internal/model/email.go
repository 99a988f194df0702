package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Folder names a mailbox folder on the server (e.g. "inbox", "sent").
type Folder string

const (
	FolderInbox Folder = "inbox"
	FolderSent  Folder = "sent"
)

// Email is a list or search record as returned by the email API.
// Records are never cached across requests.
type Email struct {
	ID             int        `json:"id"`
	Subject        string     `json:"subject"`
	SenderName     string     `json:"sender_name"`
	SenderEmail    string     `json:"sender_email"`
	ReceivedDate   *time.Time `json:"received_date"`
	BodyPreview    string     `json:"body_preview"`
	IsRead         bool       `json:"is_read"`
	IsStarred      bool       `json:"is_starred"`
	Importance     string     `json:"importance"`
	HasAttachments bool       `json:"has_attachments"`
}

// timestampLayouts are tried in order. The server writes naive UTC
// timestamps (no offset) with or without microseconds.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// ParseTimestamp parses a server timestamp. Values without an offset are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// UnmarshalJSON decodes an email record, accepting naive received dates.
// A null or empty received_date leaves ReceivedDate nil.
func (e *Email) UnmarshalJSON(data []byte) error {
	type plain Email
	aux := struct {
		*plain
		ReceivedDate *string `json:"received_date"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	e.ReceivedDate = nil
	if aux.ReceivedDate == nil || *aux.ReceivedDate == "" {
		return nil
	}
	t, err := ParseTimestamp(*aux.ReceivedDate)
	if err != nil {
		return fmt.Errorf("email %d received_date: %w", e.ID, err)
	}
	e.ReceivedDate = &t
	return nil
}

// Sender returns the display name of the sender, falling back to the
// address when the name is empty.
func (e Email) Sender() string {
	if e.SenderName != "" {
		return e.SenderName
	}
	return e.SenderEmail
}

// EmailStats holds the mailbox counters shown on the dashboard.
type EmailStats struct {
	TotalEmails  int `json:"total_emails"`
	UnreadEmails int `json:"unread_emails"`
	InboxCount   int `json:"inbox_count"`
	SentCount    int `json:"sent_count"`
	TodayEmails  int `json:"today_emails"`
}

// OutgoingEmail is the payload of a compose/send request.
type OutgoingEmail struct {
	To         string  `json:"to"`
	Subject    string  `json:"subject"`
	Body       string  `json:"body"`
	CC         *string `json:"cc"`
	BCC        *string `json:"bcc"`
	Importance string  `json:"importance"`
}

// BulkAction identifies an operation applied to a set of selected emails.
type BulkAction string

const (
	BulkMarkRead   BulkAction = "mark_read"
	BulkMarkUnread BulkAction = "mark_unread"
	BulkDelete     BulkAction = "delete"
)

// Valid reports whether a is one of the known bulk actions.
func (a BulkAction) Valid() bool {
	switch a {
	case BulkMarkRead, BulkMarkUnread, BulkDelete:
		return true
	}
	return false
}

package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailassist/internal/model"
)

func TestPrintEmails_Empty(t *testing.T) {
	var buf bytes.Buffer
	printEmails(&buf, nil, time.Now())
	assert.Contains(t, buf.String(), "No emails found")
}

func TestPrintEmails_OneLinePerEmail(t *testing.T) {
	now := time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)
	received := now.Add(-2 * time.Hour)
	emails := []model.Email{
		{ID: 7, Subject: "Q1 report", SenderName: "Ann", ReceivedDate: &received, IsStarred: true},
		{ID: 12, Subject: "Lunch?", SenderEmail: "bob@example.com", IsRead: true},
	}

	var buf bytes.Buffer
	printEmails(&buf, emails, now)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "7")
	assert.Contains(t, lines[0], "★")
	assert.Contains(t, lines[0], "Ann")
	assert.Contains(t, lines[0], "Q1 report")
	assert.Contains(t, lines[1], "bob@example.com")
	assert.Contains(t, lines[1], "Lunch?")
}

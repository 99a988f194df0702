package model

import "time"

// ChatRole identifies the author of a chat transcript entry.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is a single transcript entry. Loading marks the provisional
// placeholder shown while a reply is outstanding.
type ChatMessage struct {
	Role      ChatRole
	Content   string
	Timestamp time.Time
	Loading   bool
}

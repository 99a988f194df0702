package chat

import (
	"sync"

	"github.com/nhle/mailassist/internal/model"
)

// Transcript is the append-only conversation shown in the panel. It is
// never truncated or persisted.
type Transcript struct {
	mu       sync.Mutex
	messages []model.ChatMessage
}

// Append adds a message to the end of the transcript.
func (t *Transcript) Append(msg model.ChatMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
}

// RemoveFirstLoading drops the oldest loading placeholder and reports
// whether one was found.
func (t *Transcript) RemoveFirstLoading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, m := range t.messages {
		if m.Loading {
			t.messages = append(t.messages[:i], t.messages[i+1:]...)
			return true
		}
	}
	return false
}

// Messages returns a copy of the transcript.
func (t *Transcript) Messages() []model.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := make([]model.ChatMessage, len(t.messages))
	copy(result, t.messages)
	return result
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

// Reset clears the transcript.
func (t *Transcript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = t.messages[:0]
}

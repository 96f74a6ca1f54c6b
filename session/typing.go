package session

import (
	"sync"

	"chat-sim/domain"
)

// Annotation is the attributed display text of the single active
// typing indicator, e.g. "Alice is typing...".
type Annotation struct {
	Room     domain.RoomID
	Username string
	Text     string
}

// TypingIndicator holds at most one active typing annotation.
// Both the local user's debounced indicator and the responder's simulated
// peers publish through the same slot; a newer annotation replaces an
// older one.
type TypingIndicator struct {
	mu      sync.Mutex
	current *Annotation
}

func NewTypingIndicator() *TypingIndicator {
	return &TypingIndicator{}
}

func (t *TypingIndicator) Set(a Annotation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = &a
}

// ClearOwner clears the annotation only when it is still attributed to the
// given username. It reports whether anything was cleared, so a stale timer
// firing after another owner took the slot stays a safe no-op.
func (t *TypingIndicator) ClearOwner(username string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil || t.current.Username != username {
		return false
	}
	t.current = nil
	return true
}

func (t *TypingIndicator) Current() (Annotation, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return Annotation{}, false
	}
	return *t.current, true
}

// Package projection builds read models from observed events and store
// snapshots: a local timeline, plain-text transcripts, and room statistics.
// It does not emit events or interact with the UI directly.
package projection

import (
	"context"
	"sync"

	"chat-sim/domain"
	"chat-sim/domain/event"
)

// Timeline is an event sink keeping a per-room copy of posted messages.
// It mirrors what a presentation layer would render and proves the
// notification contract: it only ever sees committed messages.
type Timeline struct {
	mu       sync.Mutex
	Owner    string
	messages map[domain.RoomID][]domain.Message
}

func NewTimeline(owner string) *Timeline {
	return &Timeline{
		Owner:    owner,
		messages: make(map[domain.RoomID][]domain.Message),
	}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch evt := e.(type) {
	case event.MessagePosted:
		room := evt.Message.Room
		t.messages[room] = append(t.messages[room], evt.Message)
	case event.HistoryCleared:
		delete(t.messages, evt.Room)
	}
	return nil
}

// Messages returns the timeline of one room in arrival order.
func (t *Timeline) Messages(roomID domain.RoomID) []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.Message(nil), t.messages[roomID]...)
}

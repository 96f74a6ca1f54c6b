package repositories

import (
	"context"
	"log/slog"

	"chat-sim/domain/event"
)

// IndexSink keeps the full-text index in step with committed mutations.
// Every posted message is indexed regardless of who produced it, so
// simulated replies and system notices are searchable too. Index failures
// are reported to the notifier, which logs and moves on; they never fail
// the chat operation that produced the event.
type IndexSink struct {
	log   *slog.Logger
	index IMessageIndex
}

func NewIndexSink(log *slog.Logger, index IMessageIndex) *IndexSink {
	return &IndexSink{log: log, index: index}
}

func (s *IndexSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch ev := e.(type) {
	case event.MessagePosted:
		return s.index.Index(ev.Message)
	case event.HistoryCleared:
		return s.index.ClearRoom(ev.Room)
	}
	return nil
}

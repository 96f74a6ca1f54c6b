package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"chat-sim/contract"
	"chat-sim/domain/event"
)

// Notifier fans committed domain events out to registered sinks.
// Sinks are notified after the mutation is durable in the store, never
// before. A failing or slow sink is logged and skipped, it cannot block
// the core or the other sinks beyond the configured timeout.
type Notifier struct {
	mu          sync.RWMutex
	log         *slog.Logger
	sinks       map[string]contract.EventSink
	sinkTimeout time.Duration
}

func NewNotifier(log *slog.Logger, sinkTimeout time.Duration) *Notifier {
	return &Notifier{
		log:         log,
		sinks:       make(map[string]contract.EventSink),
		sinkTimeout: sinkTimeout,
	}
}

// Subscribe registers a sink under an observer identifier. Subscribing the
// same identifier again replaces the previous sink.
func (n *Notifier) Subscribe(observerID string, sink contract.EventSink) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sinks[observerID] = sink
}

func (n *Notifier) Unsubscribe(observerID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.sinks, observerID)
}

// Publish delivers one event to every sink, sequentially. Delivery order
// between sinks is unspecified; delivery order of events to a single sink
// follows the commit order of the mutations that produced them.
func (n *Notifier) Publish(ctx context.Context, e event.DomainEvent) {
	n.mu.RLock()
	sinks := make([]contract.EventSink, 0, len(n.sinks))
	for _, sink := range n.sinks {
		sinks = append(sinks, sink)
	}
	n.mu.RUnlock()

	for _, sink := range sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, n.sinkTimeout)
		if err := sink.Consume(sinkCtx, e); err != nil {
			n.log.Warn("Sink failed to consume event",
				"sink", contract.GetSinkName(sink),
				"room", e.RoomID(),
				"error", err)
		}
		cancel()
	}
}

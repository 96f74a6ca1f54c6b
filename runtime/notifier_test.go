package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"chat-sim/domain"
	"chat-sim/domain/event"

	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	events []event.DomainEvent
	err    error
}

func (s *recordingSink) Consume(_ context.Context, e event.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, e)
	return nil
}

func TestNotifier_Publish_Delivers_To_All_Sinks(t *testing.T) {
	req := require.New(t)
	notifier := NewNotifier(slog.Default(), time.Second)
	sink1 := &recordingSink{}
	sink2 := &recordingSink{}

	// Given two subscribed observers
	notifier.Subscribe("console", sink1)
	notifier.Subscribe("timeline", sink2)

	// When an event is published
	posted := event.MessagePosted{Message: domain.NewUserMessage("general", "alice", "hello", time.Now())}
	notifier.Publish(context.Background(), posted)

	// Then both sinks observed it
	req.Len(sink1.events, 1)
	req.Len(sink2.events, 1)
	req.Equal(domain.RoomID("general"), sink1.events[0].RoomID())
}

func TestNotifier_Publish_Skips_Failing_Sink(t *testing.T) {
	req := require.New(t)
	notifier := NewNotifier(slog.Default(), time.Second)
	broken := &recordingSink{err: fmt.Errorf("sink closed")}
	healthy := &recordingSink{}

	notifier.Subscribe("broken", broken)
	notifier.Subscribe("healthy", healthy)

	// A failing sink must not prevent delivery to the others
	notifier.Publish(context.Background(), event.HistoryCleared{Room: "general"})
	req.Len(healthy.events, 1)
}

func TestNotifier_Unsubscribe_Stops_Delivery(t *testing.T) {
	req := require.New(t)
	notifier := NewNotifier(slog.Default(), time.Second)
	sink := &recordingSink{}

	notifier.Subscribe("console", sink)
	notifier.Unsubscribe("console")

	notifier.Publish(context.Background(), event.HistoryCleared{Room: "general"})
	req.Empty(sink.events)
}

func TestManualScheduler_Fires_In_Order_And_Honors_Cancel(t *testing.T) {
	req := require.New(t)
	scheduler := NewManualScheduler()
	var fired []string

	scheduler.After(time.Second, func() { fired = append(fired, "first") })
	cancel := scheduler.After(2*time.Second, func() { fired = append(fired, "second") })
	scheduler.After(3*time.Second, func() { fired = append(fired, "third") })

	// Nothing fires before its deadline
	scheduler.Advance(500 * time.Millisecond)
	req.Empty(fired)

	// Cancelled timers never fire, the rest fire in scheduling order
	cancel()
	scheduler.Advance(3 * time.Second)
	req.Equal([]string{"first", "third"}, fired)
	req.Zero(scheduler.Pending())
}

func TestManualScheduler_Callback_May_Schedule_Again(t *testing.T) {
	req := require.New(t)
	scheduler := NewManualScheduler()
	var fired []string

	// A callback arming a second timer mirrors the responder's two stages
	scheduler.After(time.Second, func() {
		fired = append(fired, "typing")
		scheduler.After(time.Second, func() { fired = append(fired, "reply") })
	})

	scheduler.Advance(time.Second)
	req.Equal([]string{"typing"}, fired)

	scheduler.Advance(time.Second)
	req.Equal([]string{"typing", "reply"}, fired)
}

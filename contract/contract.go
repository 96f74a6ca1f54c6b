//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"

	"chat-sim/domain/event"
)

// EventSink receives domain events after each committed mutation.
// Implementations must tolerate events for rooms they are not displaying.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// CancelFunc stops a pending timer. Calling it after the timer fired,
// or calling it twice, is a no-op.
type CancelFunc func()

// Scheduler is the only suspension primitive of the simulator. Callbacks run
// atomically with respect to each other; there is no guaranteed relative
// ordering between independently scheduled timers.
type Scheduler interface {
	After(d time.Duration, fn func()) CancelFunc
}

// GetSinkName uses reflection to retrieve the type name of a sink.
// Used for logging during fan-out, avoiding manual naming in the interface.
func GetSinkName(s EventSink) string {
	if s == nil {
		return "NilSink"
	}
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

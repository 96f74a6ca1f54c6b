// Package responder models an asynchronous remote participant without any
// real network. Each sent message schedules a two-stage reply: a delayed
// typing annotation, then a delayed synthetic message insertion.
package responder

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"chat-sim/contract"
	"chat-sim/domain"
	"chat-sim/domain/event"
	"chat-sim/session"
	"chat-sim/store"

	"github.com/google/uuid"
)

type replyState int

// The reply lifecycle is a tiny state machine driven by the scheduler.
// Ordering is guaranteed per task: typing shown, typing hidden, message
// appended, each a discrete observable step.
const (
	stateIdle replyState = iota
	stateTypingShown
	stateReplied
)

type replyTask struct {
	id       uuid.UUID
	room     domain.RoomID
	username string
	phrase   string
	state    replyState
}

// Responder schedules simulated replies into the store. Replies already in
// flight are never cancelled: a reply may land in a room the user has
// navigated away from, and firing after logout is a safe no-op append.
type Responder struct {
	mu        sync.Mutex
	log       *slog.Logger
	store     *store.Store
	typing    *session.TypingIndicator
	scheduler contract.Scheduler
	publish   func(event.DomainEvent)
	rng       *rand.Rand
	minDelay  time.Duration
	maxDelay  time.Duration
	now       func() time.Time
}

func New(
	log *slog.Logger,
	st *store.Store,
	typing *session.TypingIndicator,
	scheduler contract.Scheduler,
	publish func(event.DomainEvent),
	rng *rand.Rand,
	minDelay, maxDelay time.Duration,
) *Responder {
	return &Responder{
		log:       log,
		store:     st,
		typing:    typing,
		scheduler: scheduler,
		publish:   publish,
		rng:       rng,
		minDelay:  minDelay,
		maxDelay:  maxDelay,
		now:       time.Now,
	}
}

// OnMessageSent arms stage one of a simulated reply for the room.
// The delay is drawn uniformly from [minDelay, maxDelay).
func (r *Responder) OnMessageSent(roomID domain.RoomID) {
	r.mu.Lock()
	task := &replyTask{
		id:       uuid.New(),
		room:     roomID,
		username: roster[r.rng.Intn(len(roster))],
		phrase:   phrases[r.rng.Intn(len(phrases))],
		state:    stateIdle,
	}
	delay := r.randomDelayLocked()
	r.mu.Unlock()

	r.log.Debug("Reply scheduled", "task", task.id, "room", roomID, "peer", task.username)
	r.scheduler.After(delay, func() { r.showTyping(task) })
}

// showTyping is stage one: publish the typing annotation attributed to the
// picked peer, then arm stage two.
func (r *Responder) showTyping(task *replyTask) {
	r.mu.Lock()
	task.state = stateTypingShown
	delay := r.randomDelayLocked()
	r.mu.Unlock()

	r.typing.Set(session.Annotation{
		Room:     task.room,
		Username: task.username,
		Text:     task.username + " is typing...",
	})
	r.publish(event.TypingStarted{
		Room:     task.room,
		Username: task.username,
		Text:     task.username + " is typing...",
	})

	r.scheduler.After(delay, func() { r.deliver(task) })
}

// deliver is stage two: clear the typing annotation, append the synthetic
// message, and notify observers. The append targets the task's room even if
// it is no longer displayed; a vanished room only logs.
func (r *Responder) deliver(task *replyTask) {
	if r.typing.ClearOwner(task.username) {
		r.publish(event.TypingCleared{Room: task.room, Username: task.username})
	}

	message := domain.NewUserMessage(task.room, task.username, task.phrase, r.now().UTC())
	stored, err := r.store.AppendMessage(task.room, message)
	if err != nil {
		r.log.Warn("Dropping simulated reply", "task", task.id, "room", task.room, "error", err)
		return
	}

	r.mu.Lock()
	task.state = stateReplied
	r.mu.Unlock()

	r.publish(event.MessagePosted{Message: stored})
}

func (r *Responder) randomDelayLocked() time.Duration {
	spread := r.maxDelay - r.minDelay
	if spread <= 0 {
		return r.minDelay
	}
	return r.minDelay + time.Duration(r.rng.Int63n(int64(spread)))
}

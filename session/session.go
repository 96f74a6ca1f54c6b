// Package session tracks the current user and current room, and owns the
// login/logout lifecycle including its side effects on the store.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"chat-sim/contract"
	"chat-sim/domain"
	"chat-sim/domain/event"
	"chat-sim/errors"
	"chat-sim/store"
	"chat-sim/validation"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Snapshot is the read view of the current session.
type Snapshot struct {
	ID       uuid.UUID
	Username string
	Room     domain.RoomID
	Active   bool
}

// Manager enforces the session invariants: at most one active user, a room
// reference only ever points at an existing room, and pending local typing
// timers never outlive the session that armed them.
//
// Events are published after the lock is released, so a sink may query the
// manager back without deadlocking and always observes the committed state.
type Manager struct {
	mu          sync.Mutex
	log         *slog.Logger
	store       *store.Store
	typing      *TypingIndicator
	scheduler   contract.Scheduler
	publish     func(event.DomainEvent)
	defaultRoom domain.RoomID
	idleTimeout time.Duration
	now         func() time.Time

	sessionID    uuid.UUID
	currentUser  string
	currentRoom  domain.RoomID
	online       domain.Set
	cancelTyping contract.CancelFunc
}

func NewManager(
	log *slog.Logger,
	st *store.Store,
	typing *TypingIndicator,
	scheduler contract.Scheduler,
	publish func(event.DomainEvent),
	defaultRoom domain.RoomID,
	idleTimeout time.Duration,
) *Manager {
	return &Manager{
		log:         log,
		store:       st,
		typing:      typing,
		scheduler:   scheduler,
		publish:     publish,
		defaultRoom: defaultRoom,
		idleTimeout: idleTimeout,
		now:         time.Now,
		online:      make(domain.Set),
	}
}

func (m *Manager) publishAll(events []event.DomainEvent) {
	for _, e := range events {
		m.publish(e)
	}
}

// Login validates the username, joins the user to every existing room, and
// emits a system message into the default room. Logging in while a session
// is active replaces it, mirroring a page reload.
func (m *Manager) Login(raw string) (domain.Message, error) {
	username, err := validation.Username(raw)
	if err != nil {
		return domain.Message{}, err
	}

	notice, events, err := m.loginLocked(username)
	// Events collected before a failure still describe committed mutations.
	m.publishAll(events)
	if err != nil {
		return domain.Message{}, err
	}
	return notice, nil
}

func (m *Manager) loginLocked(username string) (domain.Message, []event.DomainEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var events []event.DomainEvent
	if m.currentUser != "" {
		events = m.logoutLocked(events)
	}

	m.sessionID = uuid.New()
	m.currentUser = username
	m.online[username] = struct{}{}

	for _, roomID := range m.store.RoomIDs() {
		if err := m.store.JoinRoom(roomID, username); err != nil {
			return domain.Message{}, events, fmt.Errorf("joining %q: %w", roomID, err)
		}
	}

	at := m.now().UTC()
	notice, err := m.store.AppendMessage(m.defaultRoom,
		domain.NewSystemMessage(m.defaultRoom, fmt.Sprintf("%s joined the chat!", username), at))
	if err != nil {
		return domain.Message{}, events, err
	}

	m.log.Info("User logged in", "username", username, "session", m.sessionID)
	events = append(events,
		event.UserJoined{Room: m.defaultRoom, Username: username, At: at},
		event.MessagePosted{Message: notice})
	return notice, events, nil
}

// Logout removes the user from every room and the online set, emits a system
// message into the current room if one is selected, and clears any pending
// typing state. Without an active session it is a no-op.
func (m *Manager) Logout() {
	m.mu.Lock()
	events := m.logoutLocked(nil)
	m.mu.Unlock()
	m.publishAll(events)
}

func (m *Manager) logoutLocked(events []event.DomainEvent) []event.DomainEvent {
	if m.currentUser == "" {
		return events
	}
	username := m.currentUser
	room := m.currentRoom

	events = m.stopTypingLocked(events)

	if room != "" {
		at := m.now().UTC()
		notice, err := m.store.AppendMessage(room,
			domain.NewSystemMessage(room, fmt.Sprintf("%s left the chat!", username), at))
		if err != nil {
			m.log.Warn("Could not post leave notice", "room", room, "error", err)
		} else {
			events = append(events, event.MessagePosted{Message: notice})
		}
	}

	m.store.LeaveAllRooms(username)
	delete(m.online, username)
	m.currentUser = ""
	m.currentRoom = ""
	m.sessionID = uuid.Nil

	m.log.Info("User logged out", "username", username)
	return append(events, event.UserLeft{Room: room, Username: username, At: m.now().UTC()})
}

// SelectRoom switches the current room. Switching never mutates message
// history; it only cancels the local typing debounce.
func (m *Manager) SelectRoom(roomID domain.RoomID) error {
	events, err := m.selectRoomLocked(roomID)
	if err != nil {
		return err
	}
	m.publishAll(events)
	return nil
}

func (m *Manager) selectRoomLocked(roomID domain.RoomID) ([]event.DomainEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.currentUser == "" {
		return nil, errors.ErrNoActiveSession
	}
	if !m.store.HasRoom(roomID) {
		return nil, fmt.Errorf("room %q: %w", roomID, errors.ErrUnknownRoom)
	}

	events := m.stopTypingLocked(nil)
	m.currentRoom = roomID
	m.log.Debug("Room selected", "room", roomID, "username", m.currentUser)
	return append(events, event.RoomSelected{Room: roomID, Username: m.currentUser}), nil
}

// StartTyping publishes the local user's typing annotation and arms the
// idle timer that clears it. Called on every keystroke; re-arming replaces
// the previous timer.
func (m *Manager) StartTyping() {
	m.mu.Lock()

	if m.currentUser == "" || m.currentRoom == "" {
		m.mu.Unlock()
		return
	}
	username := m.currentUser
	room := m.currentRoom

	if m.cancelTyping != nil {
		m.cancelTyping()
	}
	m.typing.Set(Annotation{
		Room:     room,
		Username: username,
		Text:     fmt.Sprintf("%s is typing...", username),
	})
	m.cancelTyping = m.scheduler.After(m.idleTimeout, func() {
		if m.typing.ClearOwner(username) {
			m.publish(event.TypingCleared{Room: room, Username: username})
		}
	})
	m.mu.Unlock()

	m.publish(event.TypingStarted{Room: room, Username: username,
		Text: fmt.Sprintf("%s is typing...", username)})
}

// StopTyping cancels the pending idle timer and clears the local user's
// annotation. Sending a message and switching rooms call this.
func (m *Manager) StopTyping() {
	m.mu.Lock()
	events := m.stopTypingLocked(nil)
	m.mu.Unlock()
	m.publishAll(events)
}

func (m *Manager) stopTypingLocked(events []event.DomainEvent) []event.DomainEvent {
	if m.cancelTyping != nil {
		m.cancelTyping()
		m.cancelTyping = nil
	}
	if m.currentUser != "" && m.typing.ClearOwner(m.currentUser) {
		events = append(events, event.TypingCleared{Room: m.currentRoom, Username: m.currentUser})
	}
	return events
}

// Current returns a snapshot of the active session.
func (m *Manager) Current() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		ID:       m.sessionID,
		Username: m.currentUser,
		Room:     m.currentRoom,
		Active:   m.currentUser != "",
	}
}

// OnlineUsers returns the usernames currently logged in.
func (m *Manager) OnlineUsers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.Keys(m.online)
}

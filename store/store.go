// Package store owns rooms, memberships, and per-room message lists.
// It is the single source of truth: session, responder, and services
// all mutate state through it, never around it.
package store

import (
	"fmt"
	"log/slog"
	"sync"

	"chat-sim/domain"
	"chat-sim/errors"

	"github.com/samber/lo"
)

type roomState struct {
	config   domain.RoomConfig
	members  domain.Set
	messages []domain.Message
}

// Store holds all rooms and their ordered message sequences.
// All operations are serialized by a single mutex so every state
// transition is a discrete, independently observable step.
type Store struct {
	mu     sync.RWMutex
	log    *slog.Logger
	rooms  map[domain.RoomID]*roomState
	order  []domain.RoomID
	nextID int64
}

func New(log *slog.Logger) *Store {
	return &Store{
		log:   log,
		rooms: make(map[domain.RoomID]*roomState),
	}
}

// CreateRoom inserts a room with empty membership and an empty message list.
func (s *Store) CreateRoom(config domain.RoomConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[config.ID]; ok {
		return fmt.Errorf("room %q: %w", config.ID, errors.ErrDuplicateRoom)
	}
	s.rooms[config.ID] = &roomState{
		config:  config,
		members: make(domain.Set),
	}
	s.order = append(s.order, config.ID)
	s.log.Debug("Room created", "room", config.ID)
	return nil
}

// JoinRoom adds a user to a room's membership. Already a member is a no-op.
func (s *Store) JoinRoom(roomID domain.RoomID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return fmt.Errorf("room %q: %w", roomID, errors.ErrUnknownRoom)
	}
	room.members[username] = struct{}{}
	return nil
}

// LeaveRoom removes a user from a room's membership. Not a member is a no-op.
func (s *Store) LeaveRoom(roomID domain.RoomID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return fmt.Errorf("room %q: %w", roomID, errors.ErrUnknownRoom)
	}
	delete(room.members, username)
	return nil
}

// LeaveAllRooms removes a user from every room's membership.
func (s *Store) LeaveAllRooms(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, room := range s.rooms {
		delete(room.members, username)
	}
}

// AppendMessage assigns the next monotonically increasing identifier,
// appends the message to its room's sequence, and returns the stored copy.
// Insertion order is preserved, the sequence is append-only.
func (s *Store) AppendMessage(roomID domain.RoomID, message domain.Message) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return domain.Message{}, fmt.Errorf("room %q: %w", roomID, errors.ErrUnknownRoom)
	}

	s.nextID++
	message.ID = s.nextID
	message.Room = roomID
	room.messages = append(room.messages, message)
	return message, nil
}

// ClearMessages replaces the room's sequence with an empty one. Irreversible.
func (s *Store) ClearMessages(roomID domain.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return fmt.Errorf("room %q: %w", roomID, errors.ErrUnknownRoom)
	}
	room.messages = nil
	return nil
}

// Messages returns the ordered message sequence of a room.
// The returned slice is a copy, safe to hold across later mutations.
func (s *Store) Messages(roomID domain.RoomID) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("room %q: %w", roomID, errors.ErrUnknownRoom)
	}
	return lo.Map(room.messages, func(m domain.Message, _ int) domain.Message {
		return copyMessage(m)
	}), nil
}

// LastMessageBy returns the most recent message of the given author in a room,
// or nil when the author has not posted there. Used by spam validation.
func (s *Store) LastMessageBy(roomID domain.RoomID, author string) *domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil
	}
	for i := len(room.messages) - 1; i >= 0; i-- {
		m := room.messages[i]
		if m.Kind == domain.KindUser && m.Author == author {
			copied := copyMessage(m)
			return &copied
		}
	}
	return nil
}

// ToggleReaction flips the membership of username in the reaction set for the
// given label. The label is removed once its user set becomes empty, so the
// reactions map never holds an empty set as a value.
// Returns whether the reaction is present after the call.
func (s *Store) ToggleReaction(roomID domain.RoomID, messageID int64, label, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return false, fmt.Errorf("room %q: %w", roomID, errors.ErrUnknownRoom)
	}

	for i := range room.messages {
		message := &room.messages[i]
		if message.ID != messageID {
			continue
		}

		if message.Reactions == nil {
			message.Reactions = make(map[string]domain.Set)
		}
		users, ok := message.Reactions[label]
		if !ok {
			users = make(domain.Set)
			message.Reactions[label] = users
		}

		if _, reacted := users[username]; reacted {
			delete(users, username)
			if len(users) == 0 {
				delete(message.Reactions, label)
			}
			return false, nil
		}
		users[username] = struct{}{}
		return true, nil
	}
	return false, fmt.Errorf("message %d in room %q: %w", messageID, roomID, errors.ErrMessageNotFound)
}

// Room returns the configuration of a single room.
func (s *Store) Room(roomID domain.RoomID) (domain.RoomConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return domain.RoomConfig{}, fmt.Errorf("room %q: %w", roomID, errors.ErrUnknownRoom)
	}
	return room.config, nil
}

func (s *Store) HasRoom(roomID domain.RoomID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[roomID]
	return ok
}

// Rooms returns snapshots of every room with live member counts,
// in creation order.
func (s *Store) Rooms() []domain.RoomView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Map(s.order, func(id domain.RoomID, _ int) domain.RoomView {
		room := s.rooms[id]
		return domain.RoomView{
			ID:           room.config.ID,
			Name:         room.config.Name,
			Description:  room.config.Description,
			MemberCount:  len(room.members),
			MessageCount: len(room.messages),
		}
	})
}

// RoomIDs returns every room identifier in creation order.
func (s *Store) RoomIDs() []domain.RoomID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.RoomID(nil), s.order...)
}

// Members returns the usernames currently joined to a room.
func (s *Store) Members(roomID domain.RoomID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("room %q: %w", roomID, errors.ErrUnknownRoom)
	}
	return lo.Keys(room.members), nil
}

// copyMessage deep-copies the reactions map so read views never alias
// state mutated later under the store lock.
func copyMessage(m domain.Message) domain.Message {
	if m.Reactions == nil {
		return m
	}
	reactions := make(map[string]domain.Set, len(m.Reactions))
	for label, users := range m.Reactions {
		set := make(domain.Set, len(users))
		for u := range users {
			set[u] = struct{}{}
		}
		reactions[label] = set
	}
	m.Reactions = reactions
	return m
}

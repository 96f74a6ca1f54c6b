package event

import (
	"time"

	"chat-sim/domain"
)

// DomainEvent is emitted after every committed mutation of the store or
// session. Sinks receive it once the new state is observable through queries.
type DomainEvent interface {
	RoomID() domain.RoomID
}

type MessagePosted struct {
	Message domain.Message
	// CensoredWords lists patterns masked by moderation, empty for clean content.
	CensoredWords []string
}

func (e MessagePosted) RoomID() domain.RoomID { return e.Message.Room }

type UserJoined struct {
	Room     domain.RoomID
	Username string
	At       time.Time
}

func (e UserJoined) RoomID() domain.RoomID { return e.Room }

type UserLeft struct {
	Room     domain.RoomID
	Username string
	At       time.Time
}

func (e UserLeft) RoomID() domain.RoomID { return e.Room }

type RoomSelected struct {
	Room     domain.RoomID
	Username string
}

func (e RoomSelected) RoomID() domain.RoomID { return e.Room }

// TypingStarted is published both for the local user's debounced indicator
// and for simulated peers about to reply.
type TypingStarted struct {
	Room     domain.RoomID
	Username string
	Text     string
}

func (e TypingStarted) RoomID() domain.RoomID { return e.Room }

type TypingCleared struct {
	Room     domain.RoomID
	Username string
}

func (e TypingCleared) RoomID() domain.RoomID { return e.Room }

type HistoryCleared struct {
	Room domain.RoomID
}

func (e HistoryCleared) RoomID() domain.RoomID { return e.Room }

type ReactionToggled struct {
	Room      domain.RoomID
	MessageID int64
	Label     string
	Username  string
	Added     bool
}

func (e ReactionToggled) RoomID() domain.RoomID { return e.Room }

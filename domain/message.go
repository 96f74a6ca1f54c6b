// Package domain contains core concepts of the chat simulator.
// This file defines Message events and related rules.
// Messages are immutable once appended, except for their reaction sets.
package domain

import (
	"time"
)

type MessageKind string

const (
	KindUser   MessageKind = "user"
	KindSystem MessageKind = "system"
)

// Set holds usernames without duplicates.
type Set map[string]struct{}

// Message represents a chat event inside a room.
// System messages carry no author and no reactions.
type Message struct {
	ID        int64
	Author    string
	Content   string
	CreatedAt time.Time
	Room      RoomID
	Kind      MessageKind
	Lang      string
	Reactions map[string]Set
}

func NewUserMessage(room RoomID, author, content string, at time.Time) Message {
	return Message{
		Author:    author,
		Content:   content,
		CreatedAt: at,
		Room:      room,
		Kind:      KindUser,
	}
}

func NewSystemMessage(room RoomID, content string, at time.Time) Message {
	return Message{
		Content:   content,
		CreatedAt: at,
		Room:      room,
		Kind:      KindSystem,
	}
}

// IsSystem reports whether the message was produced by the simulator itself
// (join/leave notices, history cleared) rather than a participant.
func (m Message) IsSystem() bool {
	return m.Kind == KindSystem
}

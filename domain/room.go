// Package domain contains core concepts of the chat simulator.
// This file defines Room entities and the fixed initial roster.
// No runtime, timer, or UI logic should be added here.
package domain

type RoomID string

// RoomConfig describes a room as declared at process start.
type RoomConfig struct {
	ID          RoomID
	Name        string
	Description string
}

// DefaultRooms returns the fixed room roster the simulator boots with.
// Rooms are never destroyed during a session.
func DefaultRooms() []RoomConfig {
	return []RoomConfig{
		{ID: "general", Name: "General", Description: "General discussion"},
		{ID: "random", Name: "Random", Description: "Random conversations"},
		{ID: "tech", Name: "Tech Talk", Description: "Technology discussions"},
		{ID: "gaming", Name: "Gaming", Description: "Gaming community"},
	}
}

// RoomView is a read-only snapshot of a room exposed to the presentation layer.
type RoomView struct {
	ID           RoomID
	Name         string
	Description  string
	MemberCount  int
	MessageCount int
}

package models

import "github.com/KirkDiggler/trickroom/internal/deck"

// Player represents a participant holding cards in a session
type Player struct {
	// ID is the stable identity of the player within a session
	ID string `json:"id"`

	// Handle is the transport connection currently bound to the player.
	// It changes whenever the player reconnects.
	Handle string `json:"-"`

	// Nickname is the display name of the player
	Nickname string `json:"nickname"`

	// Hand is the ordered set of cards the player still holds
	Hand []deck.Card `json:"-"`

	// RoomID is the room the player is seated in, empty until assigned
	RoomID string `json:"roomId,omitempty"`
}

// Teacher observes every room and runs admin operations. Teachers never
// hold a hand or a room seat.
type Teacher struct {
	// ID is the stable identity of the teacher within a session
	ID string `json:"id"`

	// Handle is the transport connection currently bound to the teacher
	Handle string `json:"-"`

	// Nickname is the display name of the teacher
	Nickname string `json:"nickname"`
}

// PlayerInfo is the public view of a player
type PlayerInfo struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	RoomID   string `json:"roomId,omitempty"`
}

// Info returns the public view of the player
func (p *Player) Info() PlayerInfo {
	return PlayerInfo{ID: p.ID, Nickname: p.Nickname, RoomID: p.RoomID}
}

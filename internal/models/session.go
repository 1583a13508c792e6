package models

import "time"

// Roster is the public view of everyone in a session
type Roster struct {
	// SessionCode is the code players use to join
	SessionCode string `json:"sessionCode"`

	// HasStarted is true once rooms have been created
	HasStarted bool `json:"hasStarted"`

	// Players are listed in join order
	Players []PlayerInfo `json:"players"`

	// Teachers are listed in join order
	Teachers []PlayerInfo `json:"teachers"`
}

// SessionInfo summarizes a session for the registry
type SessionInfo struct {
	// Code is the session code
	Code string `json:"code"`

	// RoomSize is the target number of players per room
	RoomSize int `json:"roomSize"`

	// CreatedAt is when the session was created
	CreatedAt time.Time `json:"createdAt"`

	// Participants is the number of players and teachers on the roster
	Participants int `json:"participants"`
}

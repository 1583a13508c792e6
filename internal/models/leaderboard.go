package models

// LeaderboardEntry is a single player's standing within a room
type LeaderboardEntry struct {
	// PlayerID is the ID of the player
	PlayerID string `json:"playerId"`

	// Nickname is the display name of the player
	Nickname string `json:"nickname"`

	// Score is the number of tricks or votes the player has won this segment
	Score int `json:"score"`
}

// Leaderboard represents the current standings in a room
type Leaderboard struct {
	// RoomID is the unique identifier for the room
	RoomID string `json:"roomId"`

	// RoomNumber is the room's position on the promotion ladder
	RoomNumber int `json:"roomNumber"`

	// Entries are ordered by seat
	Entries []LeaderboardEntry `json:"entries"`
}

// Standings is an archived set of room leaderboards taken when a session
// segment ends
type Standings struct {
	// SessionCode identifies the session the standings belong to
	SessionCode string `json:"sessionCode"`

	// Segment counts reshuffles; the first segment is 1
	Segment int `json:"segment"`

	// Rooms holds one leaderboard per room, in room number order
	Rooms []Leaderboard `json:"rooms"`
}

package models

import "github.com/KirkDiggler/trickroom/internal/deck"

// RoomPhase represents where a room is in its trick cycle
type RoomPhase string

const (
	// RoomPhaseDealing indicates the room is waiting for cards to be dealt
	RoomPhaseDealing RoomPhase = "dealing"

	// RoomPhaseAwaitingPlays indicates players are laying cards for a trick
	RoomPhaseAwaitingPlays RoomPhase = "awaiting_plays"

	// RoomPhaseResolving indicates the trick is being scored
	RoomPhaseResolving RoomPhase = "resolving"

	// RoomPhaseVoting indicates players are voting for the trick winner
	RoomPhaseVoting RoomPhase = "voting"

	// RoomPhaseShowingResult indicates the winner is on display
	RoomPhaseShowingResult RoomPhase = "showing_result"

	// RoomPhaseResetting indicates the table is being cleared for the next trick
	RoomPhaseResetting RoomPhase = "resetting"
)

// RoundSettings are the flags that drive what clients may do in a room
type RoundSettings struct {
	// DisablePlayCard blocks further plays until the room resets
	DisablePlayCard bool `json:"disablePlayCard"`

	// ShowWinner is true while the trick result is on display
	ShowWinner bool `json:"showWinner"`

	// ShowVoting is true while players are voting for a winner
	ShowVoting bool `json:"showVoting"`

	// Winner is the ID of the last trick winner, empty when none
	Winner string `json:"winner,omitempty"`

	// Votes cast in the current voting round
	Votes []Vote `json:"votes"`
}

// RoomState is a point-in-time copy of a room for clients. Hands are not
// included; each player receives their own hand separately.
type RoomState struct {
	RoomID       string             `json:"roomId"`
	RoomNumber   int                `json:"roomNumber"`
	Phase        RoomPhase          `json:"phase"`
	Players      []PlayerInfo       `json:"players"`
	RuleVariant  int                `json:"ruleVariant"`
	Turn         string             `json:"turn,omitempty"`
	PlayedCards  []Play             `json:"playedCards"`
	Leaderboard  []LeaderboardEntry `json:"leaderboard"`
	Settings     RoundSettings      `json:"roundSettings"`
	VoteMode     bool               `json:"voteMode"`
	DisableRules bool               `json:"disableRules"`
	DisableChat  bool               `json:"disableChat"`
	HandSizes    map[string]int     `json:"handSizes"`
}

// TrickResult describes how a trick or vote was decided
type TrickResult struct {
	RoomID   string `json:"roomId"`
	WinnerID string `json:"winnerId"`

	// Plays are the cards that were on the table
	Plays []Play `json:"plays"`

	// ByVote is true when the winner was chosen by vote
	ByVote bool `json:"byVote"`

	// Tally maps player ID to votes received, only set when ByVote
	Tally map[string]int `json:"tally,omitempty"`

	// TiedWith lists the other players who tied for the win
	TiedWith []string `json:"tiedWith,omitempty"`

	// Announcement is a human readable description of the result
	Announcement string `json:"announcement,omitempty"`
}

// Hand is one player's cards
type Hand struct {
	PlayerID string      `json:"playerId"`
	Cards    []deck.Card `json:"cards"`
}

package models

import "github.com/KirkDiggler/trickroom/internal/deck"

// Play is a card laid on the table during a trick
type Play struct {
	// PlayerID is the ID of the player who played the card
	PlayerID string `json:"playerId"`

	// Card is the card that was played
	Card deck.Card `json:"card"`
}

// Vote is one player's choice of trick winner during a voting round
type Vote struct {
	// VoterID is the ID of the player casting the vote
	VoterID string `json:"voterId"`

	// ChosenID is the ID of the player voted for
	ChosenID string `json:"chosenId"`
}

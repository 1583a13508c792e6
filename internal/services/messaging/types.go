package messaging

import "github.com/KirkDiggler/trickroom/internal/random"

// MessageTone sets the flavor of an announcement
type MessageTone string

const (
	ToneNeutral     MessageTone = "neutral"
	ToneFunny       MessageTone = "funny"
	ToneEncouraging MessageTone = "encouraging"
)

// ErrorType identifies a failure the client should hear about
type ErrorType string

const (
	ErrorTypeSessionNotFound ErrorType = "session_not_found"
	ErrorTypeRoomNotFound    ErrorType = "room_not_found"
	ErrorTypeAccessDenied    ErrorType = "access_denied"
	ErrorTypeAlreadyStarted  ErrorType = "already_started"
	ErrorTypeNotStarted      ErrorType = "not_started"
	ErrorTypeNotYourTurn     ErrorType = "not_your_turn"
	ErrorTypePlayDisabled    ErrorType = "play_disabled"
	ErrorTypeCardNotInHand   ErrorType = "card_not_in_hand"
	ErrorTypeNotVoting       ErrorType = "not_voting"
	ErrorTypeMalformedCard   ErrorType = "malformed_card"
	ErrorTypeInvalidRequest  ErrorType = "invalid_request"
	ErrorTypeInternal        ErrorType = "internal"
)

// Movement describes a player's room change after a reshuffle
type Movement string

const (
	MovementPromoted Movement = "promoted"
	MovementDemoted  Movement = "demoted"
	MovementStayed   Movement = "stayed"
)

type GetTrickResultMessageInput struct {
	// WinnerName is the nickname of the trick winner
	WinnerName string

	// Card is the winning card in SUIT-rank form
	Card string

	// Tied is true when the win came from a random tie-break
	Tied bool

	PreferredTone MessageTone
}

type GetTrickResultMessageOutput struct {
	Message string
	Tone    MessageTone
}

type GetVoteResultMessageInput struct {
	WinnerName string
	Votes      int
	Tied       bool

	PreferredTone MessageTone
}

type GetVoteResultMessageOutput struct {
	Message string
	Tone    MessageTone
}

type GetReshuffleMessageInput struct {
	PlayerName string
	Movement   Movement
	RoomNumber int

	PreferredTone MessageTone
}

type GetReshuffleMessageOutput struct {
	Message string
	Tone    MessageTone
}

type GetErrorMessageInput struct {
	ErrorType ErrorType

	PreferredTone MessageTone
}

type GetErrorMessageOutput struct {
	// Reason is the fixed, human readable failure reason
	Reason string

	// Message is a friendlier line to show alongside the reason
	Message string
	Tone    MessageTone
}

// ServiceConfig holds configuration for the messaging service
type ServiceConfig struct {
	// Random picks between phrasings; a time-seeded source is used when nil
	Random random.Source
}

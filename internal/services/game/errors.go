package game

import (
	"errors"

	"github.com/KirkDiggler/trickroom/internal/deck"
	"github.com/KirkDiggler/trickroom/internal/services/room"
)

// GameError is a custom error type for game-related errors
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrSessionNotFound    GameError = "session not found"
	ErrSessionExists      GameError = "session code already in use"
	ErrRoomNotFound       GameError = "room not found"
	ErrPlayerNotFound     GameError = "player not found"
	ErrAccessDenied       GameError = "access denied"
	ErrAlreadyStarted     GameError = "game has already started"
	ErrNotStarted         GameError = "game has not started"
	ErrInvalidRoomSize    GameError = "room size must be at least 1"
	ErrInvalidRuleCount   GameError = "rule variant count must be at least 1"
	ErrEmptyNickname      GameError = "nickname cannot be empty"
	ErrCodeExhausted      GameError = "could not generate a unique session code"
	ErrReshuffleInvariant GameError = "reshuffle did not produce a partition of the players"
	ErrNilConfig          GameError = "config cannot be nil"
	ErrNilRegistry        GameError = "session registry cannot be nil"
	ErrNilStandingsRepo   GameError = "standings repository cannot be nil"
	ErrNilNotifier        GameError = "notifier cannot be nil"
	ErrNilMessenger       GameError = "messaging service cannot be nil"
	ErrNilRandom          GameError = "random source cannot be nil"
	ErrNilClock           GameError = "clock cannot be nil"
	ErrNilUUIDGenerator   GameError = "UUID generator cannot be nil"
	ErrNilLogger          GameError = "logger cannot be nil"
)

// ErrorClass groups errors by how a caller should react to them
type ErrorClass string

const (
	// ClassNotFound means a session, room or player code did not resolve
	ClassNotFound ErrorClass = "not_found"

	// ClassForbidden means the caller is not allowed to do this
	ClassForbidden ErrorClass = "forbidden"

	// ClassInvalidState means the request does not fit the current game state
	ClassInvalidState ErrorClass = "invalid_state"

	// ClassMalformedInput means the request could not be parsed
	ClassMalformedInput ErrorClass = "malformed_input"

	// ClassInternal means an invariant was broken
	ClassInternal ErrorClass = "internal"
)

// Classify maps an error returned by this package, or by the rooms and deck
// it drives, to its ErrorClass
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrRoomNotFound),
		errors.Is(err, ErrPlayerNotFound):
		return ClassNotFound
	case errors.Is(err, ErrAccessDenied),
		errors.Is(err, ErrAlreadyStarted):
		return ClassForbidden
	case errors.Is(err, room.ErrPlayDisabled),
		errors.Is(err, room.ErrNotYourTurn),
		errors.Is(err, room.ErrCardNotInHand),
		errors.Is(err, room.ErrNotInRoom),
		errors.Is(err, room.ErrNotVoting),
		errors.Is(err, room.ErrInvalidVote),
		errors.Is(err, ErrNotStarted):
		return ClassInvalidState
	case errors.Is(err, deck.ErrMalformedToken),
		errors.Is(err, ErrInvalidRoomSize),
		errors.Is(err, ErrEmptyNickname):
		return ClassMalformedInput
	default:
		return ClassInternal
	}
}

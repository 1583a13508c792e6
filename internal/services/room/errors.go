package room

// RoomError is a custom error type for room-related errors
type RoomError string

// Error implements the error interface
func (e RoomError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNilConfig        RoomError = "config cannot be nil"
	ErrNilRandom        RoomError = "random source cannot be nil"
	ErrNilClock         RoomError = "clock cannot be nil"
	ErrEmptyRoomID      RoomError = "room ID cannot be empty"
	ErrInvalidNumber    RoomError = "room number must be at least 1"
	ErrInvalidRankRange RoomError = "rank range must be at least 1"

	ErrPlayDisabled  RoomError = "playing cards is disabled"
	ErrNotYourTurn   RoomError = "not this player's turn"
	ErrCardNotInHand RoomError = "card is not in the player's hand"
	ErrNotInRoom     RoomError = "player not in room"
	ErrNotVoting     RoomError = "room is not voting"
	ErrInvalidVote   RoomError = "chosen player is not in the room"
)

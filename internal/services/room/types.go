package room

import (
	"time"

	"github.com/KirkDiggler/trickroom/internal/common/clock"
	"github.com/KirkDiggler/trickroom/internal/models"
	"github.com/KirkDiggler/trickroom/internal/random"
)

// DefaultResultDelay is how long a trick winner stays on display before the
// table is cleared
const DefaultResultDelay = 5 * time.Second

// Config holds configuration for a room
type Config struct {
	// ID is the unique identifier for the room
	ID string

	// Number is the room's 1-indexed position on the promotion ladder
	Number int

	// Players are seated in the given order, which is also the turn order
	Players []*models.Player

	// ResultDelay is how long the trick result is shown; zero means DefaultResultDelay
	ResultDelay time.Duration

	// OnTrickReset is called without the room lock held after the result
	// delay has cleared the table
	OnTrickReset func(state models.RoomState)

	// Service dependencies
	Random random.Source
	Clock  clock.Clock
}

// PlayResult describes what a successful play, or a departure, did to the trick
type PlayResult struct {
	// Turn is the player expected to play next, empty when nobody can
	Turn string

	// TrickComplete is true when every player with cards has played
	TrickComplete bool

	// Voting is true when the completed trick is waiting on votes
	Voting bool

	// Result is set when the trick was resolved
	Result *models.TrickResult
}

// VoteResult describes the effect of a vote
type VoteResult struct {
	// Replaced is true when the voter had already voted this round
	Replaced bool

	// Votes are all votes cast so far this round
	Votes []models.Vote

	// Tally maps chosen player ID to votes received
	Tally map[string]int

	// Complete is true once every player in the room has voted
	Complete bool

	// Result is set when voting completed
	Result *models.TrickResult
}

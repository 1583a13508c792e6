package game

import (
	"time"

	"go.uber.org/zap"

	"github.com/KirkDiggler/trickroom/internal/common/clock"
	"github.com/KirkDiggler/trickroom/internal/common/uuid"
	"github.com/KirkDiggler/trickroom/internal/deck"
	"github.com/KirkDiggler/trickroom/internal/events"
	"github.com/KirkDiggler/trickroom/internal/models"
	"github.com/KirkDiggler/trickroom/internal/random"
	standingsRepo "github.com/KirkDiggler/trickroom/internal/repositories/standings"
	"github.com/KirkDiggler/trickroom/internal/services/messaging"
)

// Config holds configuration for the game service
type Config struct {
	// RankRange is the number of ranks per suit in a dealt deck
	RankRange int

	// RuleVariants is how many rule sheets rooms are drawn from
	RuleVariants int

	// ResultDelay is how long trick results stay on display
	ResultDelay time.Duration

	// MinPlayers is the roster size needed to start; zero means the room size
	MinPlayers int

	// Repository dependencies
	StandingsRepo standingsRepo.Repository

	// Service dependencies
	Registry  *Registry
	Notifier  events.Notifier
	Messenger messaging.Service
	Random    random.Source
	Clock     clock.Clock
	UUID      uuid.UUID
	Logger    *zap.Logger
}

// Defaults applied when the config leaves a value unset
const (
	DefaultRankRange    = 7
	DefaultRuleVariants = 3
)

// CreateSessionInput is the input for creating a session
type CreateSessionInput struct {
	// RoomSize is the target number of players per room
	RoomSize int
}

// CreateSessionOutput is the output for creating a session
type CreateSessionOutput struct {
	Code       string
	AdminToken string
}

// JoinSessionInput is the input for joining a session as a player
type JoinSessionInput struct {
	SessionCode string

	// PlayerID is the returning player's ID; empty for a new player
	PlayerID string

	// Handle is the caller's transport connection
	Handle string

	Nickname string
}

// JoinSessionOutput is the output for joining a session as a player
type JoinSessionOutput struct {
	Player models.PlayerInfo
	Roster *models.Roster

	// Room and Hand are set when a seated player rejoins a started game
	Room *models.RoomState
	Hand []deck.Card
}

// JoinAsAdminInput is the input for joining a session as a teacher
type JoinAsAdminInput struct {
	SessionCode string
	AdminToken  string

	// TeacherID is the returning teacher's ID; empty for a new teacher
	TeacherID string
	Handle    string
	Nickname  string
}

// JoinAsAdminOutput is the output for joining a session as a teacher
type JoinAsAdminOutput struct {
	Teacher models.PlayerInfo
	Roster  *models.Roster
	Rooms   []models.RoomState
}

// StartSessionInput is the input for starting a session
type StartSessionInput struct {
	SessionCode string
	AdminToken  string
}

// StartSessionOutput is the output for starting a session
type StartSessionOutput struct {
	// Started is false when the roster is below the minimum player count
	Started bool

	Rooms []models.RoomState

	// Unassigned lists players left over after the last full room
	Unassigned []string
}

// PlayCardInput is the input for playing a card
type PlayCardInput struct {
	SessionCode string
	PlayerID    string

	// Card is the card token, for example SPADE-7
	Card string
}

// PlayCardOutput is the output for playing a card
type PlayCardOutput struct {
	Turn          string
	TrickComplete bool
	Voting        bool
	Result        *models.TrickResult
}

// CastVoteInput is the input for voting on a trick winner
type CastVoteInput struct {
	SessionCode string
	VoterID     string
	ChosenID    string
}

// CastVoteOutput is the output for voting on a trick winner
type CastVoteOutput struct {
	Replaced bool
	Complete bool
	Tally    map[string]int
	Result   *models.TrickResult
}

// ReshuffleInput is the input for moving players between rooms
type ReshuffleInput struct {
	SessionCode string
	AdminToken  string
}

// ReshuffleOutput is the output for moving players between rooms
type ReshuffleOutput struct {
	// Archived is the standings of the segment that just ended
	Archived *models.Standings

	// Assignment maps room ID to the player IDs now seated there
	Assignment map[string][]string

	// Moves maps player ID to the room ID they moved to
	Moves map[string]string

	Rooms []models.RoomState
}

// ResetRoomsInput is the input for starting a new segment in every room
type ResetRoomsInput struct {
	SessionCode string
	AdminToken  string

	// Voting starts a segment where tricks are won by vote
	Voting bool
}

// ResetRoomsOutput is the output for starting a new segment in every room
type ResetRoomsOutput struct {
	Rooms []models.RoomState
}

// DisconnectInput is the input for a dropped connection
type DisconnectInput struct {
	SessionCode   string
	ParticipantID string

	// Handle is the connection that dropped
	Handle string
}

// DisconnectOutput is the output for a dropped connection
type DisconnectOutput struct {
	// Removed is false when the participant had already reconnected elsewhere
	Removed bool

	// SessionDeleted is true when the last participant left
	SessionDeleted bool
}

// GetRoomStateInput is the input for reading a room
type GetRoomStateInput struct {
	SessionCode string

	// RoomID selects a room; empty means the participant's own room
	RoomID        string
	ParticipantID string
}

// GetRoomStateOutput is the output for reading a room
type GetRoomStateOutput struct {
	Room models.RoomState

	// Hand is the participant's cards when they are seated in the room
	Hand []deck.Card
}

// GetStandingsInput is the input for reading standings
type GetStandingsInput struct {
	SessionCode string
}

// GetStandingsOutput is the output for reading standings
type GetStandingsOutput struct {
	// Current is the live leaderboard of every room
	Current *models.Standings

	// History holds the archived standings of earlier segments
	History []*models.Standings
}

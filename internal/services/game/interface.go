package game

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/trickroom/internal/services/game Service

import "context"

// Service defines the interface for game operations
type Service interface {
	// CreateSession creates a new session and returns its join code and admin secret
	CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error)

	// JoinSession adds a player to a session, or reconnects a known player
	JoinSession(ctx context.Context, input *JoinSessionInput) (*JoinSessionOutput, error)

	// JoinAsAdmin adds a teacher to a session after checking the admin secret
	JoinAsAdmin(ctx context.Context, input *JoinAsAdminInput) (*JoinAsAdminOutput, error)

	// StartSession creates rooms, assigns rule sheets and deals
	StartSession(ctx context.Context, input *StartSessionInput) (*StartSessionOutput, error)

	// PlayCard lays a card on the player's room table
	PlayCard(ctx context.Context, input *PlayCardInput) (*PlayCardOutput, error)

	// CastVote records a player's pick for the trick winner
	CastVote(ctx context.Context, input *CastVoteInput) (*CastVoteOutput, error)

	// Reshuffle moves players between rooms based on standings and deals a new segment
	Reshuffle(ctx context.Context, input *ReshuffleInput) (*ReshuffleOutput, error)

	// ResetRooms starts a new normal or voting segment in every room
	ResetRooms(ctx context.Context, input *ResetRoomsInput) (*ResetRoomsOutput, error)

	// Disconnect removes a participant whose connection dropped
	Disconnect(ctx context.Context, input *DisconnectInput) (*DisconnectOutput, error)

	// GetRoomState returns a room snapshot and the caller's hand
	GetRoomState(ctx context.Context, input *GetRoomStateInput) (*GetRoomStateOutput, error)

	// GetStandings returns live and archived standings
	GetStandings(ctx context.Context, input *GetStandingsInput) (*GetStandingsOutput, error)
}

package standings

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/trickroom/internal/repositories/standings Repository

import (
	"context"

	"github.com/KirkDiggler/trickroom/internal/models"
)

// Repository archives the room leaderboards of finished session segments
type Repository interface {
	// SaveStandings appends a segment's standings to the session archive
	SaveStandings(ctx context.Context, input *SaveStandingsInput) error

	// ListStandings returns every archived segment of a session, oldest first
	ListStandings(ctx context.Context, input *ListStandingsInput) (*ListStandingsOutput, error)

	// GetLatestStandings returns the most recently archived segment
	GetLatestStandings(ctx context.Context, input *GetLatestStandingsInput) (*models.Standings, error)

	// DeleteStandings removes a session's archive
	DeleteStandings(ctx context.Context, input *DeleteStandingsInput) error
}

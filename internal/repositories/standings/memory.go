package standings

import (
	"context"
	"sync"

	"github.com/KirkDiggler/trickroom/internal/models"
)

// memoryRepository keeps standings in process memory. It is used when no
// Redis address is configured.
type memoryRepository struct {
	mu       sync.RWMutex
	sessions map[string][]models.Standings
}

// NewMemory creates an in-memory standings repository
func NewMemory() *memoryRepository {
	return &memoryRepository{
		sessions: make(map[string][]models.Standings),
	}
}

func (r *memoryRepository) SaveStandings(ctx context.Context, input *SaveStandingsInput) error {
	if input == nil || input.Standings == nil || input.Standings.SessionCode == "" {
		return ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	code := input.Standings.SessionCode
	r.sessions[code] = append(r.sessions[code], copyStandings(input.Standings))

	return nil
}

func (r *memoryRepository) ListStandings(ctx context.Context, input *ListStandingsInput) (*ListStandingsOutput, error) {
	if input == nil || input.SessionCode == "" {
		return nil, ErrInvalidInput
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	archived := r.sessions[input.SessionCode]
	output := &ListStandingsOutput{
		Standings: make([]*models.Standings, 0, len(archived)),
	}
	for i := range archived {
		s := copyStandings(&archived[i])
		output.Standings = append(output.Standings, &s)
	}

	return output, nil
}

func (r *memoryRepository) GetLatestStandings(ctx context.Context, input *GetLatestStandingsInput) (*models.Standings, error) {
	if input == nil || input.SessionCode == "" {
		return nil, ErrInvalidInput
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	archived := r.sessions[input.SessionCode]
	if len(archived) == 0 {
		return nil, ErrStandingsNotFound
	}

	latest := copyStandings(&archived[len(archived)-1])
	return &latest, nil
}

func (r *memoryRepository) DeleteStandings(ctx context.Context, input *DeleteStandingsInput) error {
	if input == nil || input.SessionCode == "" {
		return ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, input.SessionCode)

	return nil
}

func copyStandings(s *models.Standings) models.Standings {
	out := models.Standings{
		SessionCode: s.SessionCode,
		Segment:     s.Segment,
		Rooms:       make([]models.Leaderboard, 0, len(s.Rooms)),
	}
	for _, board := range s.Rooms {
		board.Entries = append([]models.LeaderboardEntry{}, board.Entries...)
		out.Rooms = append(out.Rooms, board)
	}
	return out
}

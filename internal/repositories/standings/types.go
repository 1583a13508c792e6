package standings

import "github.com/KirkDiggler/trickroom/internal/models"

type SaveStandingsInput struct {
	Standings *models.Standings
}

type ListStandingsInput struct {
	SessionCode string
}

type ListStandingsOutput struct {
	Standings []*models.Standings
}

type GetLatestStandingsInput struct {
	SessionCode string
}

type DeleteStandingsInput struct {
	SessionCode string
}

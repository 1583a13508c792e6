package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/KirkDiggler/trickroom/internal/common/clock"
	standingsRepo "github.com/KirkDiggler/trickroom/internal/repositories/standings"
)

// Sessions is the part of the session registry the sweeper needs
type Sessions interface {
	// Sweep removes every session idle since before cutoff and returns their codes
	Sweep(cutoff time.Time) []string
}

// SweeperConfig holds configuration for the idle session sweeper
type SweeperConfig struct {
	// Schedule is a cron spec such as "@every 10m"
	Schedule string

	// IdleTTL is how long a session may go without activity
	IdleTTL time.Duration

	Sessions      Sessions
	StandingsRepo standingsRepo.Repository
	Clock         clock.Clock
	Logger        *zap.Logger
}

// Sweeper periodically drops abandoned sessions and their standings archives
type Sweeper struct {
	cron          *cron.Cron
	idleTTL       time.Duration
	sessions      Sessions
	standingsRepo standingsRepo.Repository
	clock         clock.Clock
	logger        *zap.Logger
}

// NewSweeper creates a sweeper and registers its cron job
func NewSweeper(cfg *SweeperConfig) (*Sweeper, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Sessions == nil {
		return nil, ErrNilSessions
	}
	if cfg.StandingsRepo == nil {
		return nil, ErrNilStandingsRepo
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}
	if cfg.Logger == nil {
		return nil, ErrNilLogger
	}
	if cfg.IdleTTL <= 0 {
		return nil, ErrInvalidIdleTTL
	}

	s := &Sweeper{
		cron:          cron.New(),
		idleTTL:       cfg.IdleTTL,
		sessions:      cfg.Sessions,
		standingsRepo: cfg.StandingsRepo,
		clock:         cfg.Clock,
		logger:        cfg.Logger,
	}

	if _, err := s.cron.AddFunc(cfg.Schedule, func() {
		s.RunOnce(context.Background())
	}); err != nil {
		return nil, err
	}

	return s, nil
}

// Start runs the schedule in the background
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule. The returned context is done once a running sweep finishes.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce sweeps idle sessions now and returns the removed codes
func (s *Sweeper) RunOnce(ctx context.Context) []string {
	cutoff := s.clock.Now().Add(-s.idleTTL)
	removed := s.sessions.Sweep(cutoff)

	for _, code := range removed {
		if err := s.standingsRepo.DeleteStandings(ctx, &standingsRepo.DeleteStandingsInput{
			SessionCode: code,
		}); err != nil {
			s.logger.Warn("failed to delete standings",
				zap.String("session", code),
				zap.Error(err))
		}
	}

	if len(removed) > 0 {
		s.logger.Info("swept idle sessions",
			zap.Int("sessions", len(removed)),
			zap.Time("cutoff", cutoff))
	}

	return removed
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/KirkDiggler/trickroom/internal/common/clock"
	"github.com/KirkDiggler/trickroom/internal/common/logger"
	"github.com/KirkDiggler/trickroom/internal/common/uuid"
	"github.com/KirkDiggler/trickroom/internal/config"
	"github.com/KirkDiggler/trickroom/internal/handlers/ws"
	"github.com/KirkDiggler/trickroom/internal/jobs"
	"github.com/KirkDiggler/trickroom/internal/random"
	"github.com/KirkDiggler/trickroom/internal/repositories/standings"
	gameService "github.com/KirkDiggler/trickroom/internal/services/game"
	"github.com/KirkDiggler/trickroom/internal/services/messaging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogDevelopment)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	standingsRepo, err := newStandingsRepo(cfg, log)
	if err != nil {
		log.Fatal("Failed to create standings repository", zap.Error(err))
	}

	// Shared dependencies
	systemClock := &clock.DefaultClock{}
	idGenerator := uuid.New()
	randomSource := random.New(nil)

	messenger, err := messaging.NewService(&messaging.ServiceConfig{Random: randomSource})
	if err != nil {
		log.Fatal("Failed to create messaging service", zap.Error(err))
	}

	registry, err := gameService.NewRegistry(&gameService.RegistryConfig{UUID: idGenerator})
	if err != nil {
		log.Fatal("Failed to create session registry", zap.Error(err))
	}

	hub := ws.NewHub(log)

	gameSvc, err := gameService.NewService(&gameService.Config{
		RankRange:     cfg.RankRange,
		RuleVariants:  cfg.RuleVariants,
		ResultDelay:   cfg.ResultDelay,
		MinPlayers:    cfg.MinPlayers,
		StandingsRepo: standingsRepo,
		Registry:      registry,
		Notifier:      hub,
		Messenger:     messenger,
		Random:        randomSource,
		Clock:         systemClock,
		UUID:          idGenerator,
		Logger:        log,
	})
	if err != nil {
		log.Fatal("Failed to create game service", zap.Error(err))
	}

	handler, err := ws.NewHandler(&ws.Config{
		GameService:    gameSvc,
		Messenger:      messenger,
		Hub:            hub,
		UUID:           idGenerator,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to create websocket handler", zap.Error(err))
	}

	sweeper, err := jobs.NewSweeper(&jobs.SweeperConfig{
		Schedule:      cfg.SweepSchedule,
		IdleTTL:       cfg.SessionIdleTTL,
		Sessions:      registry,
		StandingsRepo: standingsRepo,
		Clock:         systemClock,
		Logger:        log,
	})
	if err != nil {
		log.Fatal("Failed to create session sweeper", zap.Error(err))
	}
	sweeper.Start()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	<-sweeper.Stop().Done()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Error stopping server", zap.Error(err))
	}

	log.Info("Server has been shut down")
}

// newStandingsRepo uses Redis when an address is configured and memory otherwise
func newStandingsRepo(cfg *config.Config, log *zap.Logger) (standings.Repository, error) {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, keeping standings in memory")
		return standings.NewMemory(), nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	repo, err := standings.NewRedis(&standings.Config{
		RedisClient: redisClient,
		TTL:         cfg.StandingsTTL,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Using Redis standings archive", zap.String("addr", cfg.RedisAddr))
	return repo, nil
}

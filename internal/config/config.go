package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration loaded from the environment
type Config struct {
	Port           string
	AllowedOrigins []string

	// RedisAddr selects the Redis standings archive; empty keeps standings in memory
	RedisAddr     string
	RedisPassword string
	StandingsTTL  time.Duration

	RankRange    int
	RuleVariants int
	ResultDelay  time.Duration

	// MinPlayers is the roster size needed to start; zero means the room size
	MinPlayers int

	SweepSchedule  string
	SessionIdleTTL time.Duration

	LogDevelopment bool
}

const (
	defaultPort          = "8080"
	defaultAllowedOrigin = "*"
	defaultRankRange     = 7
	defaultRuleVariants  = 3
	defaultResultDelay   = 5 * time.Second
	defaultSweepSchedule = "@every 10m"
	defaultIdleTTL       = 2 * time.Hour
	defaultStandingsTTL  = 24 * time.Hour
)

// Load reads an optional .env file and then the process environment
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := &Config{
		Port:           getEnv("PORT", defaultPort),
		AllowedOrigins: parseAllowedOrigins(getEnv("ALLOWED_ORIGINS", defaultAllowedOrigin)),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		SweepSchedule:  getEnv("SWEEP_SCHEDULE", defaultSweepSchedule),
	}

	var err error
	if cfg.RankRange, err = getInt("RANK_RANGE", defaultRankRange); err != nil {
		return nil, err
	}
	if cfg.RuleVariants, err = getInt("RULE_VARIANTS", defaultRuleVariants); err != nil {
		return nil, err
	}
	if cfg.MinPlayers, err = getInt("MIN_PLAYERS", 0); err != nil {
		return nil, err
	}
	if cfg.ResultDelay, err = getDuration("RESULT_DELAY", defaultResultDelay); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTTL, err = getDuration("SESSION_IDLE_TTL", defaultIdleTTL); err != nil {
		return nil, err
	}
	if cfg.StandingsTTL, err = getDuration("STANDINGS_TTL", defaultStandingsTTL); err != nil {
		return nil, err
	}
	if cfg.LogDevelopment, err = getBool("LOG_DEVELOPMENT", false); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, raw)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a duration such as 5s, got %q", key, raw)
	}
	return v, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, raw)
	}
	return v, nil
}

func parseAllowedOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		origins = []string{defaultAllowedOrigin}
	}
	return origins
}

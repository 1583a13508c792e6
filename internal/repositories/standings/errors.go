package standings

// StandingsError is a custom error type for standings archive errors
type StandingsError string

// Error implements the error interface
func (e StandingsError) Error() string {
	return string(e)
}

const (
	ErrNilConfig         StandingsError = "config cannot be nil"
	ErrNilRedisClient    StandingsError = "redis client cannot be nil"
	ErrInvalidInput      StandingsError = "input and session code cannot be empty"
	ErrStandingsNotFound StandingsError = "standings not found"
)

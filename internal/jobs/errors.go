package jobs

// JobError is a custom error type for background job errors
type JobError string

// Error implements the error interface
func (e JobError) Error() string {
	return string(e)
}

const (
	ErrNilConfig        JobError = "config cannot be nil"
	ErrNilSessions      JobError = "session registry cannot be nil"
	ErrNilStandingsRepo JobError = "standings repository cannot be nil"
	ErrNilClock         JobError = "clock cannot be nil"
	ErrNilLogger        JobError = "logger cannot be nil"
	ErrInvalidIdleTTL   JobError = "idle TTL must be positive"
)

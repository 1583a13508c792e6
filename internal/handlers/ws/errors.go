package ws

// HandlerError is a custom error type for transport errors
type HandlerError string

// Error implements the error interface
func (e HandlerError) Error() string {
	return string(e)
}

const (
	ErrNilConfig      HandlerError = "config cannot be nil"
	ErrNilGameService HandlerError = "game service cannot be nil"
	ErrNilMessenger   HandlerError = "messaging service cannot be nil"
	ErrNilHub         HandlerError = "hub cannot be nil"
	ErrNilUUID        HandlerError = "UUID generator cannot be nil"
	ErrNilLogger      HandlerError = "logger cannot be nil"
	ErrMalformedFrame HandlerError = "frame is not valid JSON"
	ErrUnknownFrame   HandlerError = "unknown frame type"
	ErrNotJoined      HandlerError = "join a session first"
)

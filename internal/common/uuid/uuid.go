package uuid

import "github.com/google/uuid"

//go:generate mockgen -package=mocks -destination=mocks/mock_uuid.go github.com/KirkDiggler/trickroom/internal/common/uuid UUID

type UUID interface {
	NewUUID() string

	// NewCode returns a short lowercase code players can type to join a session
	NewCode(length int) string
}

const codeCharset = "abcdefghijklmnopqrstuvwxyz"

// DefaultUUID implements the UUID interface using the uuid package

type DefaultUUID struct{}

func New() *DefaultUUID {
	return &DefaultUUID{}
}

// NewUUID returns a new UUID
func (d *DefaultUUID) NewUUID() string {
	return uuid.New().String()
}

// NewCode returns length random lowercase letters drawn from fresh random uuids
func (d *DefaultUUID) NewCode(length int) string {
	code := make([]byte, length)
	var source uuid.UUID
	for i := range code {
		if i%len(source) == 0 {
			source = uuid.New()
		}
		code[i] = codeCharset[int(source[i%len(source)])%len(codeCharset)]
	}
	return string(code)
}

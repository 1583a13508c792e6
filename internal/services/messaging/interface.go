package messaging

import "context"

// Service is the interface for the messaging service
type Service interface {
	// GetTrickResultMessage announces the winner of a trick decided by rank
	GetTrickResultMessage(ctx context.Context, input *GetTrickResultMessageInput) (*GetTrickResultMessageOutput, error)

	// GetVoteResultMessage announces the winner of a voting round
	GetVoteResultMessage(ctx context.Context, input *GetVoteResultMessageInput) (*GetVoteResultMessageOutput, error)

	// GetReshuffleMessage announces where a player moved after a reshuffle
	GetReshuffleMessage(ctx context.Context, input *GetReshuffleMessageInput) (*GetReshuffleMessageOutput, error)

	// GetErrorMessage returns the failure reason shown to a client
	GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error)
}

package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/KirkDiggler/trickroom/internal/random"
)

// reasons are the fixed failure texts clients key their UI on
var reasons = map[ErrorType]string{
	ErrorTypeSessionNotFound: "room does not exist",
	ErrorTypeRoomNotFound:    "room does not exist",
	ErrorTypeAccessDenied:    "access denied",
	ErrorTypeAlreadyStarted:  "game has already started",
	ErrorTypeNotStarted:      "game has not started yet",
	ErrorTypeNotYourTurn:     "it is not your turn",
	ErrorTypePlayDisabled:    "cards cannot be played right now",
	ErrorTypeCardNotInHand:   "that card is not in your hand",
	ErrorTypeNotVoting:       "voting is not open",
	ErrorTypeMalformedCard:   "unrecognized card",
	ErrorTypeInvalidRequest:  "invalid request",
	ErrorTypeInternal:        "something went wrong",
}

// service implements the Service interface
type service struct {
	// Random source for selecting phrasings
	random random.Source
}

// NewService creates a new messaging service
func NewService(config *ServiceConfig) (Service, error) {
	var src random.Source
	if config != nil && config.Random != nil {
		src = config.Random
	} else {
		src = random.New(nil)
	}

	return &service{
		random: src,
	}, nil
}

func (s *service) pick(messages []string) string {
	message, _ := random.Pick(s.random, messages)
	return message
}

func toneOr(preferred, fallback MessageTone) MessageTone {
	if preferred == "" {
		return fallback
	}
	return preferred
}

// GetTrickResultMessage announces the winner of a trick decided by rank
func (s *service) GetTrickResultMessage(ctx context.Context, input *GetTrickResultMessageInput) (*GetTrickResultMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	tone := toneOr(input.PreferredTone, ToneFunny)

	var messages []string
	if input.Tied {
		messages = []string{
			"%s wins a coin toss with the %s!",
			"Dead heat! Lady luck hands the trick to %s and the %s.",
			"Tied at the top, but %s takes it with the %s.",
		}
	} else if tone == ToneNeutral {
		messages = []string{
			"%s wins the trick with the %s.",
		}
	} else {
		messages = []string{
			"%s takes the trick with the %s!",
			"Nobody could top %s and the %s.",
			"The %[2]s carries the day for %[1]s!",
			"%s scoops the table with the %s.",
		}
	}

	return &GetTrickResultMessageOutput{
		Message: fmt.Sprintf(s.pick(messages), input.WinnerName, input.Card),
		Tone:    tone,
	}, nil
}

// GetVoteResultMessage announces the winner of a voting round
func (s *service) GetVoteResultMessage(ctx context.Context, input *GetVoteResultMessageInput) (*GetVoteResultMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	tone := toneOr(input.PreferredTone, ToneEncouraging)

	noun := "votes"
	if input.Votes == 1 {
		noun = "vote"
	}

	var messages []string
	if input.Tied {
		messages = []string{
			"The room was split, and the draw went to %s with %d %s.",
			"A tie at %[2]d %[3]s! %[1]s gets the nod.",
		}
	} else {
		messages = []string{
			"The room has spoken: %s wins with %d %s.",
			"%s takes the vote with %d %s!",
			"By popular demand, %s wins with %d %s.",
		}
	}

	return &GetVoteResultMessageOutput{
		Message: fmt.Sprintf(s.pick(messages), input.WinnerName, input.Votes, noun),
		Tone:    tone,
	}, nil
}

// GetReshuffleMessage announces where a player moved after a reshuffle
func (s *service) GetReshuffleMessage(ctx context.Context, input *GetReshuffleMessageInput) (*GetReshuffleMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	tone := toneOr(input.PreferredTone, ToneEncouraging)

	var messages []string
	switch input.Movement {
	case MovementPromoted:
		messages = []string{
			"%s moves up to room %d!",
			"Onward! %s heads to room %d.",
			"%s earned a seat in room %d.",
		}
	case MovementDemoted:
		messages = []string{
			"%s moves over to room %d for a fresh start.",
			"New table, new luck: %s joins room %d.",
		}
	default:
		messages = []string{
			"%s stays put in room %d.",
			"%s holds their seat in room %d.",
		}
	}

	return &GetReshuffleMessageOutput{
		Message: fmt.Sprintf(s.pick(messages), input.PlayerName, input.RoomNumber),
		Tone:    tone,
	}, nil
}

// GetErrorMessage returns the failure reason shown to a client
func (s *service) GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	tone := toneOr(input.PreferredTone, ToneNeutral)

	reason, ok := reasons[input.ErrorType]
	if !ok {
		reason = reasons[ErrorTypeInternal]
	}

	var messages []string
	switch input.ErrorType {
	case ErrorTypeSessionNotFound, ErrorTypeRoomNotFound:
		messages = []string{
			"Double check the code with your teacher.",
			"That code doesn't match any game we know about.",
		}
	case ErrorTypeAccessDenied:
		messages = []string{
			"Only the teacher can do that.",
		}
	case ErrorTypeAlreadyStarted:
		messages = []string{
			"This game is already underway. Ask your teacher to start a new one.",
			"Too late for this one! Catch the next game.",
		}
	case ErrorTypeNotYourTurn:
		messages = []string{
			"Patience! It's not your turn yet.",
			"Hold that card, someone else is up.",
		}
	case ErrorTypePlayDisabled:
		messages = []string{
			"Hang on while the table is cleared.",
			"Cards are frozen for a moment.",
		}
	default:
		messages = []string{
			"Please try again.",
		}
	}

	return &GetErrorMessageOutput{
		Reason:  reason,
		Message: s.pick(messages),
		Tone:    tone,
	}, nil
}

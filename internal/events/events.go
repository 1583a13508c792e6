package events

import (
	"context"

	"github.com/KirkDiggler/trickroom/internal/models"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_notifier.go github.com/KirkDiggler/trickroom/internal/events Notifier

// Notifier relays events from the game core to connected clients
type Notifier interface {
	// Notify delivers events in order. Delivery failures are the
	// transport's concern and are not reported back to the core.
	Notify(ctx context.Context, evs []Event)
}

// Kind identifies an outbound event
type Kind string

const (
	KindRosterUpdated     Kind = "roster_updated"
	KindRoomsAssigned     Kind = "rooms_assigned"
	KindRoomState         Kind = "room_state"
	KindHandUpdated       Kind = "hand_updated"
	KindTrickResult       Kind = "trick_result"
	KindVotesUpdated      Kind = "votes_updated"
	KindMembershipChanged Kind = "membership_changed"
	KindError             Kind = "error"
)

// Event is an outbound notification with optional targeted recipients
type Event struct {
	Kind        Kind
	SessionCode string
	Payload     any

	// Recipients are participant IDs; empty means everyone in the session
	Recipients []string
}

type RosterPayload struct {
	Roster *models.Roster `json:"roster"`
}

type RoomsAssignedPayload struct {
	Rooms []models.RoomState `json:"rooms"`
}

type RoomStatePayload struct {
	Room models.RoomState `json:"room"`
}

type HandPayload struct {
	Hand models.Hand `json:"hand"`
}

type TrickResultPayload struct {
	Result models.TrickResult `json:"result"`
}

type VotesPayload struct {
	RoomID string         `json:"roomId"`
	Votes  []models.Vote  `json:"votes"`
	Tally  map[string]int `json:"tally"`
}

type MembershipPayload struct {
	// Assignment maps room ID to the player IDs now seated there
	Assignment map[string][]string `json:"assignment"`

	// Moves maps player ID to the room ID they moved to
	Moves map[string]string `json:"moves"`

	// Announcements maps player ID to a line describing their move
	Announcements map[string]string `json:"announcements,omitempty"`
	Announcement  string            `json:"announcement,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

package ws

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/KirkDiggler/trickroom/internal/common/uuid"
	"github.com/KirkDiggler/trickroom/internal/deck"
	"github.com/KirkDiggler/trickroom/internal/models"
	"github.com/KirkDiggler/trickroom/internal/services/game"
	"github.com/KirkDiggler/trickroom/internal/services/messaging"
)

// Inbound frame types
const (
	FrameJoin       = "join"
	FrameJoinAdmin  = "join_admin"
	FrameStart      = "start"
	FramePlayCard   = "play_card"
	FrameVote       = "vote"
	FrameReshuffle  = "reshuffle"
	FrameResetRooms = "reset_rooms"
	FrameRoomState  = "room_state"
	FrameStandings  = "standings"
)

// Reply frame types. Pushed events use their events.Kind as the type.
const (
	FrameJoined      = "joined"
	FrameAdminJoined = "admin_joined"
	FrameStarted     = "started"
	FrameCardPlayed  = "card_played"
	FrameVoteCast    = "vote_cast"
	FrameReshuffled  = "reshuffled"
	FrameRoomsReset  = "rooms_reset"
)

// inboundFrame is a client request
type inboundFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// outboundFrame is a reply or a pushed event
type outboundFrame struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`
	Data      any    `json:"data,omitempty"`
}

type joinRequest struct {
	SessionCode string `json:"sessionCode"`

	// PlayerID lets a returning player reclaim their seat
	PlayerID string `json:"playerId,omitempty"`
	Nickname string `json:"nickname"`
}

type joinAdminRequest struct {
	SessionCode string `json:"sessionCode"`
	AdminToken  string `json:"adminToken"`
	TeacherID   string `json:"teacherId,omitempty"`
	Nickname    string `json:"nickname"`
}

type playCardRequest struct {
	Card string `json:"card"`
}

type voteRequest struct {
	ChosenID string `json:"chosenId"`
}

type resetRoomsRequest struct {
	Voting bool `json:"voting"`
}

type roomStateRequest struct {
	RoomID string `json:"roomId,omitempty"`
}

type createSessionRequest struct {
	RoomSize int `json:"roomSize" binding:"required,min=1"`
}

type createSessionResponse struct {
	Code       string `json:"code"`
	AdminToken string `json:"adminToken"`
}

type joinedResponse struct {
	Player models.PlayerInfo `json:"player"`
	Roster *models.Roster    `json:"roster"`
	Room   *models.RoomState `json:"room,omitempty"`
	Hand   []deck.Card       `json:"hand,omitempty"`
}

type adminJoinedResponse struct {
	Teacher models.PlayerInfo  `json:"teacher"`
	Roster  *models.Roster     `json:"roster"`
	Rooms   []models.RoomState `json:"rooms"`
}

type startedResponse struct {
	Started    bool               `json:"started"`
	Rooms      []models.RoomState `json:"rooms"`
	Unassigned []string           `json:"unassigned,omitempty"`
}

type cardPlayedResponse struct {
	Turn          string              `json:"turn,omitempty"`
	TrickComplete bool                `json:"trickComplete"`
	Voting        bool                `json:"voting"`
	Result        *models.TrickResult `json:"result,omitempty"`
}

type voteCastResponse struct {
	Replaced bool                `json:"replaced"`
	Complete bool                `json:"complete"`
	Tally    map[string]int      `json:"tally"`
	Result   *models.TrickResult `json:"result,omitempty"`
}

type reshuffledResponse struct {
	Archived   *models.Standings   `json:"archived"`
	Assignment map[string][]string `json:"assignment"`
	Moves      map[string]string   `json:"moves"`
	Rooms      []models.RoomState  `json:"rooms"`
}

type roomsResponse struct {
	Rooms []models.RoomState `json:"rooms"`
}

type roomStateResponse struct {
	Room models.RoomState `json:"room"`
	Hand []deck.Card      `json:"hand,omitempty"`
}

type standingsResponse struct {
	Current *models.Standings   `json:"current"`
	History []*models.Standings `json:"history"`
}

// Config holds configuration for the websocket handler
type Config struct {
	GameService game.Service
	Messenger   messaging.Service
	Hub         *Hub
	UUID        uuid.UUID

	// AllowedOrigins limits browser origins; "*" allows any
	AllowedOrigins []string

	Logger *zap.Logger
}

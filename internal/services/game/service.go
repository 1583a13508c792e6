package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/KirkDiggler/trickroom/internal/common/clock"
	"github.com/KirkDiggler/trickroom/internal/common/uuid"
	"github.com/KirkDiggler/trickroom/internal/deck"
	"github.com/KirkDiggler/trickroom/internal/events"
	"github.com/KirkDiggler/trickroom/internal/models"
	"github.com/KirkDiggler/trickroom/internal/random"
	standingsRepo "github.com/KirkDiggler/trickroom/internal/repositories/standings"
	"github.com/KirkDiggler/trickroom/internal/services/messaging"
	"github.com/KirkDiggler/trickroom/internal/services/room"
)

// service implements the Service interface
type service struct {
	rankRange    int
	ruleVariants int
	resultDelay  time.Duration
	minPlayers   int

	registry      *Registry
	standingsRepo standingsRepo.Repository
	notifier      events.Notifier
	messenger     messaging.Service
	random        random.Source
	clock         clock.Clock
	uuid          uuid.UUID
	logger        *zap.Logger
}

// NewService creates a new game service
func NewService(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Registry == nil {
		return nil, ErrNilRegistry
	}
	if cfg.StandingsRepo == nil {
		return nil, ErrNilStandingsRepo
	}
	if cfg.Notifier == nil {
		return nil, ErrNilNotifier
	}
	if cfg.Messenger == nil {
		return nil, ErrNilMessenger
	}
	if cfg.Random == nil {
		return nil, ErrNilRandom
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}
	if cfg.UUID == nil {
		return nil, ErrNilUUIDGenerator
	}
	if cfg.Logger == nil {
		return nil, ErrNilLogger
	}

	rankRange := cfg.RankRange
	if rankRange < 1 {
		rankRange = DefaultRankRange
	}
	ruleVariants := cfg.RuleVariants
	if ruleVariants < 1 {
		ruleVariants = DefaultRuleVariants
	}

	return &service{
		rankRange:     rankRange,
		ruleVariants:  ruleVariants,
		resultDelay:   cfg.ResultDelay,
		minPlayers:    cfg.MinPlayers,
		registry:      cfg.Registry,
		standingsRepo: cfg.StandingsRepo,
		notifier:      cfg.Notifier,
		messenger:     cfg.Messenger,
		random:        cfg.Random,
		clock:         cfg.Clock,
		uuid:          cfg.UUID,
		logger:        cfg.Logger,
	}, nil
}

// CreateSession creates a new session and returns its join code and admin secret
func (s *service) CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
	if input == nil || input.RoomSize < 1 {
		return nil, ErrInvalidRoomSize
	}

	adminToken := s.uuid.NewUUID()

	session, err := s.registry.Create(func(code string) (*Session, error) {
		return NewSession(&SessionConfig{
			Code:         code,
			AdminToken:   adminToken,
			RoomSize:     input.RoomSize,
			MinPlayers:   s.minPlayers,
			ResultDelay:  s.resultDelay,
			OnTrickReset: s.trickResetHook(code),
			Random:       s.random,
			Clock:        s.clock,
			UUID:         s.uuid,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("session created",
		zap.String("session", session.Code()),
		zap.Int("room_size", input.RoomSize))

	return &CreateSessionOutput{
		Code:       session.Code(),
		AdminToken: adminToken,
	}, nil
}

// JoinSession adds a player to a session, or reconnects a known player
func (s *service) JoinSession(ctx context.Context, input *JoinSessionInput) (*JoinSessionOutput, error) {
	if input == nil {
		return nil, ErrSessionNotFound
	}

	session, err := s.session(input.SessionCode)
	if err != nil {
		return nil, err
	}

	playerID := input.PlayerID
	if playerID == "" {
		playerID = s.uuid.NewUUID()
	}

	info, err := session.AddPlayer(playerID, input.Handle, input.Nickname)
	if err != nil {
		return nil, err
	}

	output := &JoinSessionOutput{
		Player: info,
		Roster: session.Roster(),
	}

	evs := []events.Event{{
		Kind:        events.KindRosterUpdated,
		SessionCode: session.Code(),
		Payload:     events.RosterPayload{Roster: output.Roster},
	}}

	if r, err := session.RoomOf(playerID); err == nil {
		state := r.State()
		hand, _ := r.Hand(playerID)
		output.Room = &state
		output.Hand = hand

		evs = append(evs, events.Event{
			Kind:        events.KindHandUpdated,
			SessionCode: session.Code(),
			Payload:     events.HandPayload{Hand: models.Hand{PlayerID: playerID, Cards: hand}},
			Recipients:  []string{playerID},
		})
	}

	s.logger.Info("player joined",
		zap.String("session", session.Code()),
		zap.String("player", playerID),
		zap.String("nickname", info.Nickname))

	s.notifier.Notify(ctx, evs)

	return output, nil
}

// JoinAsAdmin adds a teacher to a session after checking the admin secret
func (s *service) JoinAsAdmin(ctx context.Context, input *JoinAsAdminInput) (*JoinAsAdminOutput, error) {
	if input == nil {
		return nil, ErrSessionNotFound
	}

	session, err := s.adminSession(input.SessionCode, input.AdminToken)
	if err != nil {
		return nil, err
	}

	teacherID := input.TeacherID
	if teacherID == "" {
		teacherID = s.uuid.NewUUID()
	}

	info := session.AddTeacher(teacherID, input.Handle, input.Nickname)
	output := &JoinAsAdminOutput{
		Teacher: info,
		Roster:  session.Roster(),
		Rooms:   roomStates(session.Rooms()),
	}

	s.logger.Info("teacher joined",
		zap.String("session", session.Code()),
		zap.String("teacher", teacherID))

	s.notifier.Notify(ctx, []events.Event{{
		Kind:        events.KindRosterUpdated,
		SessionCode: session.Code(),
		Payload:     events.RosterPayload{Roster: output.Roster},
	}})

	return output, nil
}

// StartSession creates rooms, assigns rule sheets and deals
func (s *service) StartSession(ctx context.Context, input *StartSessionInput) (*StartSessionOutput, error) {
	if input == nil {
		return nil, ErrSessionNotFound
	}

	session, err := s.adminSession(input.SessionCode, input.AdminToken)
	if err != nil {
		return nil, err
	}

	started, err := session.CreateRooms()
	if err != nil {
		return nil, err
	}
	if !started {
		s.logger.Info("not enough players to start",
			zap.String("session", session.Code()),
			zap.Int("players", len(session.Roster().Players)))
		return &StartSessionOutput{Started: false}, nil
	}

	if err := s.prepareSegment(ctx, session); err != nil {
		return nil, err
	}

	rooms := session.Rooms()
	output := &StartSessionOutput{
		Started: true,
		Rooms:   roomStates(rooms),
	}

	roster := session.Roster()
	for _, p := range roster.Players {
		if p.RoomID == "" {
			output.Unassigned = append(output.Unassigned, p.ID)
		}
	}

	s.logger.Info("session started",
		zap.String("session", session.Code()),
		zap.Int("rooms", len(rooms)),
		zap.Int("unassigned", len(output.Unassigned)))

	evs := []events.Event{
		{
			Kind:        events.KindRosterUpdated,
			SessionCode: session.Code(),
			Payload:     events.RosterPayload{Roster: roster},
		},
		{
			Kind:        events.KindRoomsAssigned,
			SessionCode: session.Code(),
			Payload:     events.RoomsAssignedPayload{Rooms: output.Rooms},
		},
	}
	for _, r := range rooms {
		evs = append(evs, s.roomEvents(session, r)...)
	}
	s.notifier.Notify(ctx, evs)

	return output, nil
}

// PlayCard lays a card on the player's room table
func (s *service) PlayCard(ctx context.Context, input *PlayCardInput) (*PlayCardOutput, error) {
	if input == nil {
		return nil, ErrSessionNotFound
	}

	card, err := deck.Parse(input.Card)
	if err != nil {
		return nil, err
	}

	session, err := s.session(input.SessionCode)
	if err != nil {
		return nil, err
	}

	r, err := session.RoomOf(input.PlayerID)
	if err != nil {
		return nil, err
	}

	result, err := r.PlayCard(input.PlayerID, card)
	if err != nil {
		s.logger.Debug("play rejected",
			zap.String("session", session.Code()),
			zap.String("player", input.PlayerID),
			zap.String("card", card.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Debug("card played",
		zap.String("session", session.Code()),
		zap.Int("room", r.Number()),
		zap.String("player", input.PlayerID),
		zap.String("card", card.String()))

	evs := s.roomEvents(session, r)
	if result.Result != nil {
		evs = append(evs, s.trickResultEvent(ctx, session, r, result.Result))
	}
	s.notifier.Notify(ctx, evs)

	return &PlayCardOutput{
		Turn:          result.Turn,
		TrickComplete: result.TrickComplete,
		Voting:        result.Voting,
		Result:        result.Result,
	}, nil
}

// CastVote records a player's pick for the trick winner
func (s *service) CastVote(ctx context.Context, input *CastVoteInput) (*CastVoteOutput, error) {
	if input == nil {
		return nil, ErrSessionNotFound
	}

	session, err := s.session(input.SessionCode)
	if err != nil {
		return nil, err
	}

	r, err := session.RoomOf(input.VoterID)
	if err != nil {
		return nil, err
	}

	result, err := r.CastVote(input.VoterID, input.ChosenID)
	if err != nil {
		return nil, err
	}

	evs := []events.Event{{
		Kind:        events.KindVotesUpdated,
		SessionCode: session.Code(),
		Payload: events.VotesPayload{
			RoomID: r.ID(),
			Votes:  result.Votes,
			Tally:  result.Tally,
		},
		Recipients: s.roomRecipients(session, r),
	}}
	if result.Result != nil {
		evs = append(evs, s.roomEvents(session, r)...)
		evs = append(evs, s.trickResultEvent(ctx, session, r, result.Result))
	}
	s.notifier.Notify(ctx, evs)

	return &CastVoteOutput{
		Replaced: result.Replaced,
		Complete: result.Complete,
		Tally:    result.Tally,
		Result:   result.Result,
	}, nil
}

// Reshuffle moves players between rooms based on standings and deals a new segment
func (s *service) Reshuffle(ctx context.Context, input *ReshuffleInput) (*ReshuffleOutput, error) {
	if input == nil {
		return nil, ErrSessionNotFound
	}

	session, err := s.adminSession(input.SessionCode, input.AdminToken)
	if err != nil {
		return nil, err
	}

	assignment, segment, err := session.Rotate()
	if err != nil {
		if errors.Is(err, ErrReshuffleInvariant) {
			s.logger.Error("reshuffle aborted",
				zap.String("session", session.Code()),
				zap.Error(err))
		}
		return nil, err
	}

	archived := &models.Standings{
		SessionCode: session.Code(),
		Segment:     segment,
		Rooms:       assignment.Snapshot,
	}
	if err := s.standingsRepo.SaveStandings(ctx, &standingsRepo.SaveStandingsInput{
		Standings: archived,
	}); err != nil {
		// the new arrangement is already in place, so keep going
		s.logger.Warn("failed to archive standings",
			zap.String("session", session.Code()),
			zap.Int("segment", segment),
			zap.Error(err))
	}

	if err := s.prepareSegment(ctx, session); err != nil {
		return nil, err
	}

	rooms := session.Rooms()
	roomIDs := make(map[int]string, len(rooms))
	for _, r := range rooms {
		roomIDs[r.Number()] = r.ID()
	}

	output := &ReshuffleOutput{
		Archived:   archived,
		Assignment: make(map[string][]string, len(rooms)),
		Moves:      make(map[string]string, len(assignment.Moves)),
		Rooms:      roomStates(rooms),
	}
	for number, ids := range assignment.Rooms {
		output.Assignment[roomIDs[number]] = ids
	}

	announcements := make(map[string]string, len(assignment.Moves))
	for id, move := range assignment.Moves {
		output.Moves[id] = roomIDs[move.To]

		msg, err := s.messenger.GetReshuffleMessage(ctx, &messaging.GetReshuffleMessageInput{
			PlayerName: session.Nickname(id),
			Movement:   move.Movement,
			RoomNumber: move.To,
		})
		if err == nil {
			announcements[id] = msg.Message
		}
	}

	s.logger.Info("rooms reshuffled",
		zap.String("session", session.Code()),
		zap.Int("segment", session.Segment()),
		zap.Int("moves", len(assignment.Moves)))

	evs := []events.Event{
		{
			Kind:        events.KindMembershipChanged,
			SessionCode: session.Code(),
			Payload: events.MembershipPayload{
				Assignment:    output.Assignment,
				Moves:         output.Moves,
				Announcements: announcements,
				Announcement:  fmt.Sprintf("Rooms reshuffled for round %d", session.Segment()),
			},
		},
		{
			Kind:        events.KindRosterUpdated,
			SessionCode: session.Code(),
			Payload:     events.RosterPayload{Roster: session.Roster()},
		},
	}
	for _, r := range rooms {
		evs = append(evs, s.roomEvents(session, r)...)
	}
	s.notifier.Notify(ctx, evs)

	return output, nil
}

// ResetRooms starts a new normal or voting segment in every room
func (s *service) ResetRooms(ctx context.Context, input *ResetRoomsInput) (*ResetRoomsOutput, error) {
	if input == nil {
		return nil, ErrSessionNotFound
	}

	session, err := s.adminSession(input.SessionCode, input.AdminToken)
	if err != nil {
		return nil, err
	}
	if !session.HasStarted() {
		return nil, ErrNotStarted
	}

	if err := session.ResetRooms(ctx, input.Voting); err != nil {
		return nil, fmt.Errorf("failed to reset rooms: %w", err)
	}
	if err := s.prepareSegment(ctx, session); err != nil {
		return nil, err
	}

	rooms := session.Rooms()

	s.logger.Info("rooms reset",
		zap.String("session", session.Code()),
		zap.Bool("voting", input.Voting))

	var evs []events.Event
	for _, r := range rooms {
		evs = append(evs, s.roomEvents(session, r)...)
	}
	s.notifier.Notify(ctx, evs)

	return &ResetRoomsOutput{Rooms: roomStates(rooms)}, nil
}

// Disconnect removes a participant whose connection dropped
func (s *service) Disconnect(ctx context.Context, input *DisconnectInput) (*DisconnectOutput, error) {
	if input == nil {
		return nil, ErrSessionNotFound
	}

	session, err := s.registry.Get(input.SessionCode)
	if err != nil {
		return nil, err
	}

	departure, err := session.RemoveParticipant(input.ParticipantID, input.Handle)
	if err != nil {
		if errors.Is(err, ErrPlayerNotFound) {
			return &DisconnectOutput{Removed: false}, nil
		}
		return nil, err
	}

	s.logger.Info("participant left",
		zap.String("session", session.Code()),
		zap.String("participant", departure.ParticipantID),
		zap.Bool("teacher", departure.Teacher),
		zap.Int("remaining", departure.Remaining))

	if departure.Remaining == 0 {
		s.registry.Delete(session.Code())
		if err := s.standingsRepo.DeleteStandings(ctx, &standingsRepo.DeleteStandingsInput{
			SessionCode: session.Code(),
		}); err != nil {
			s.logger.Warn("failed to delete standings",
				zap.String("session", session.Code()),
				zap.Error(err))
		}
		s.logger.Info("session closed", zap.String("session", session.Code()))
		return &DisconnectOutput{Removed: true, SessionDeleted: true}, nil
	}

	evs := []events.Event{{
		Kind:        events.KindRosterUpdated,
		SessionCode: session.Code(),
		Payload:     events.RosterPayload{Roster: session.Roster()},
	}}
	if departure.RoomID != "" {
		if r, err := session.Room(departure.RoomID); err == nil {
			evs = append(evs, s.roomStateEvent(session, r))
			if departure.Play != nil && departure.Play.Result != nil {
				evs = append(evs, s.trickResultEvent(ctx, session, r, departure.Play.Result))
			}
		}
	}
	s.notifier.Notify(ctx, evs)

	return &DisconnectOutput{Removed: true}, nil
}

// GetRoomState returns a room snapshot and the caller's hand
func (s *service) GetRoomState(ctx context.Context, input *GetRoomStateInput) (*GetRoomStateOutput, error) {
	if input == nil {
		return nil, ErrSessionNotFound
	}

	session, err := s.session(input.SessionCode)
	if err != nil {
		return nil, err
	}

	var r *room.Room
	if input.RoomID != "" {
		if !session.IsTeacher(input.ParticipantID) {
			// players may only look at their own room
			own, err := session.RoomOf(input.ParticipantID)
			if err != nil || own.ID() != input.RoomID {
				return nil, ErrAccessDenied
			}
		}
		r, err = session.Room(input.RoomID)
	} else {
		r, err = session.RoomOf(input.ParticipantID)
	}
	if err != nil {
		return nil, err
	}

	output := &GetRoomStateOutput{Room: r.State()}
	if hand, err := r.Hand(input.ParticipantID); err == nil {
		output.Hand = hand
	}

	return output, nil
}

// GetStandings returns live and archived standings
func (s *service) GetStandings(ctx context.Context, input *GetStandingsInput) (*GetStandingsOutput, error) {
	if input == nil {
		return nil, ErrSessionNotFound
	}

	session, err := s.session(input.SessionCode)
	if err != nil {
		return nil, err
	}

	history, err := s.standingsRepo.ListStandings(ctx, &standingsRepo.ListStandingsInput{
		SessionCode: session.Code(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list standings: %w", err)
	}

	return &GetStandingsOutput{
		Current: session.Standings(),
		History: history.Standings,
	}, nil
}

// ErrorType maps an error to the failure reason clients are shown
func ErrorType(err error) messaging.ErrorType {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return messaging.ErrorTypeSessionNotFound
	case errors.Is(err, ErrRoomNotFound):
		return messaging.ErrorTypeRoomNotFound
	case errors.Is(err, ErrAccessDenied):
		return messaging.ErrorTypeAccessDenied
	case errors.Is(err, ErrAlreadyStarted):
		return messaging.ErrorTypeAlreadyStarted
	case errors.Is(err, ErrNotStarted):
		return messaging.ErrorTypeNotStarted
	case errors.Is(err, room.ErrNotYourTurn):
		return messaging.ErrorTypeNotYourTurn
	case errors.Is(err, room.ErrPlayDisabled):
		return messaging.ErrorTypePlayDisabled
	case errors.Is(err, room.ErrCardNotInHand):
		return messaging.ErrorTypeCardNotInHand
	case errors.Is(err, room.ErrNotVoting):
		return messaging.ErrorTypeNotVoting
	case errors.Is(err, deck.ErrMalformedToken):
		return messaging.ErrorTypeMalformedCard
	}

	switch Classify(err) {
	case ClassNotFound, ClassInvalidState, ClassMalformedInput:
		return messaging.ErrorTypeInvalidRequest
	default:
		return messaging.ErrorTypeInternal
	}
}

// session looks up a session and marks it active
func (s *service) session(code string) (*Session, error) {
	session, err := s.registry.Get(code)
	if err != nil {
		return nil, err
	}
	session.Touch()
	return session, nil
}

func (s *service) adminSession(code, token string) (*Session, error) {
	session, err := s.session(code)
	if err != nil {
		return nil, err
	}
	if !session.CheckAdmin(token) {
		s.logger.Warn("admin secret mismatch", zap.String("session", code))
		return nil, ErrAccessDenied
	}
	return session, nil
}

// prepareSegment assigns rule sheets and deals every room
func (s *service) prepareSegment(ctx context.Context, session *Session) error {
	if err := session.AssignRulesheets(ctx, s.ruleVariants); err != nil {
		return fmt.Errorf("failed to assign rule sheets: %w", err)
	}
	if err := session.DealCardsToAllRooms(ctx, s.rankRange); err != nil {
		return fmt.Errorf("failed to deal cards: %w", err)
	}
	return nil
}

// trickResetHook notifies a room's clients once its table is cleared
func (s *service) trickResetHook(code string) func(state models.RoomState) {
	return func(state models.RoomState) {
		session, err := s.registry.Get(code)
		if err != nil {
			return
		}
		r, err := session.Room(state.RoomID)
		if err != nil {
			return
		}

		s.notifier.Notify(context.Background(), []events.Event{{
			Kind:        events.KindRoomState,
			SessionCode: code,
			Payload:     events.RoomStatePayload{Room: state},
			Recipients:  s.roomRecipients(session, r),
		}})
	}
}

// roomRecipients are the room's players plus every teacher
func (s *service) roomRecipients(session *Session, r *room.Room) []string {
	return append(r.PlayerIDs(), session.TeacherIDs()...)
}

func (s *service) roomStateEvent(session *Session, r *room.Room) events.Event {
	return events.Event{
		Kind:        events.KindRoomState,
		SessionCode: session.Code(),
		Payload:     events.RoomStatePayload{Room: r.State()},
		Recipients:  s.roomRecipients(session, r),
	}
}

// roomEvents is the room's state for everyone in it plus each player's own hand
func (s *service) roomEvents(session *Session, r *room.Room) []events.Event {
	evs := []events.Event{s.roomStateEvent(session, r)}
	for _, hand := range r.Hands() {
		evs = append(evs, events.Event{
			Kind:        events.KindHandUpdated,
			SessionCode: session.Code(),
			Payload:     events.HandPayload{Hand: hand},
			Recipients:  []string{hand.PlayerID},
		})
	}
	return evs
}

func (s *service) trickResultEvent(ctx context.Context, session *Session, r *room.Room, result *models.TrickResult) events.Event {
	announced := *result
	name := session.Nickname(result.WinnerID)

	if result.ByVote {
		msg, err := s.messenger.GetVoteResultMessage(ctx, &messaging.GetVoteResultMessageInput{
			WinnerName: name,
			Votes:      result.Tally[result.WinnerID],
			Tied:       len(result.TiedWith) > 0,
		})
		if err == nil {
			announced.Announcement = msg.Message
		}
	} else {
		var card string
		for _, play := range result.Plays {
			if play.PlayerID == result.WinnerID {
				card = play.Card.String()
			}
		}
		msg, err := s.messenger.GetTrickResultMessage(ctx, &messaging.GetTrickResultMessageInput{
			WinnerName: name,
			Card:       card,
			Tied:       len(result.TiedWith) > 0,
		})
		if err == nil {
			announced.Announcement = msg.Message
		}
	}
	result.Announcement = announced.Announcement

	return events.Event{
		Kind:        events.KindTrickResult,
		SessionCode: session.Code(),
		Payload:     events.TrickResultPayload{Result: announced},
		Recipients:  s.roomRecipients(session, r),
	}
}

func roomStates(rooms []*room.Room) []models.RoomState {
	states := make([]models.RoomState, 0, len(rooms))
	for _, r := range rooms {
		states = append(states, r.State())
	}
	return states
}

package game

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/trickroom/internal/common/clock"
	"github.com/KirkDiggler/trickroom/internal/common/uuid"
	"github.com/KirkDiggler/trickroom/internal/models"
	"github.com/KirkDiggler/trickroom/internal/random"
	"github.com/KirkDiggler/trickroom/internal/services/room"
	"github.com/KirkDiggler/trickroom/internal/shuffle"
)

// SessionConfig holds configuration for a game session
type SessionConfig struct {
	// Code is the join code players type
	Code string

	// AdminToken authorizes teacher operations
	AdminToken string

	// RoomSize is the target number of players per room
	RoomSize int

	// MinPlayers is the roster size needed to start; zero means RoomSize
	MinPlayers int

	// ResultDelay is how long trick results stay on display in every room
	ResultDelay time.Duration

	// OnTrickReset is handed to every room the session creates
	OnTrickReset func(state models.RoomState)

	// Service dependencies
	Random random.Source
	Clock  clock.Clock
	UUID   uuid.UUID
}

// Departure describes what removing a participant did
type Departure struct {
	ParticipantID string
	Teacher       bool

	// RoomID is the room the player left, empty for teachers and unseated players
	RoomID string

	// Play is the effect of the departure on the room's trick, if seated
	Play *room.PlayResult

	// Remaining is the number of participants left in the session
	Remaining int
}

// Session is one running game: its roster, its rooms and the admin secret
// that unlocks teacher operations
type Session struct {
	mu sync.RWMutex

	code       string
	adminToken string
	roomSize   int
	minPlayers int
	createdAt  time.Time
	lastActive time.Time
	hasStarted bool
	segment    int

	players     map[string]*models.Player
	playerOrder []string

	teachers     map[string]*models.Teacher
	teacherOrder []string

	rooms     map[string]*room.Room
	roomOrder []string

	resultDelay  time.Duration
	onTrickReset func(state models.RoomState)
	random       random.Source
	clock        clock.Clock
	uuid         uuid.UUID
}

// NewSession creates an empty session
func NewSession(cfg *SessionConfig) (*Session, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.RoomSize < 1 {
		return nil, ErrInvalidRoomSize
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

	minPlayers := cfg.MinPlayers
	if minPlayers < 1 {
		minPlayers = cfg.RoomSize
	}

	now := cfg.Clock.Now()

	return &Session{
		code:         cfg.Code,
		adminToken:   cfg.AdminToken,
		roomSize:     cfg.RoomSize,
		minPlayers:   minPlayers,
		createdAt:    now,
		lastActive:   now,
		players:      make(map[string]*models.Player),
		teachers:     make(map[string]*models.Teacher),
		rooms:        make(map[string]*room.Room),
		resultDelay:  cfg.ResultDelay,
		onTrickReset: cfg.OnTrickReset,
		random:       cfg.Random,
		clock:        cfg.Clock,
		uuid:         cfg.UUID,
	}, nil
}

// Code returns the session's join code
func (s *Session) Code() string {
	return s.code
}

// CheckAdmin compares the token to the session's admin secret
func (s *Session) CheckAdmin(token string) bool {
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) == 1
}

// HasStarted reports whether rooms have been created
func (s *Session) HasStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasStarted
}

// Segment returns how many room arrangements the session has played
func (s *Session) Segment() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.segment
}

// Touch marks the session as active
func (s *Session) Touch() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = now
}

// LastActive returns when the session was last used
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// Info summarizes the session
func (s *Session) Info() models.SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.SessionInfo{
		Code:         s.code,
		RoomSize:     s.roomSize,
		CreatedAt:    s.createdAt,
		Participants: len(s.playerOrder) + len(s.teacherOrder),
	}
}

// AddPlayer adds a player or, for a known ID, rebinds their handle. The
// nickname can only change before the game starts. Unknown players cannot
// join once the game has started.
func (s *Session) AddPlayer(id, handle, nickname string) (models.PlayerInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.players[id]; ok {
		p.Handle = handle
		if !s.hasStarted && nickname != "" {
			p.Nickname = nickname
		}
		return p.Info(), nil
	}

	if s.hasStarted {
		return models.PlayerInfo{}, ErrAlreadyStarted
	}
	if nickname == "" {
		return models.PlayerInfo{}, ErrEmptyNickname
	}

	p := &models.Player{ID: id, Handle: handle, Nickname: nickname}
	s.players[id] = p
	s.playerOrder = append(s.playerOrder, id)

	return p.Info(), nil
}

// AddTeacher adds a teacher or rebinds a known teacher's handle
func (s *Session) AddTeacher(id, handle, nickname string) models.PlayerInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.teachers[id]
	if !ok {
		t = &models.Teacher{ID: id}
		s.teachers[id] = t
		s.teacherOrder = append(s.teacherOrder, id)
	}
	t.Handle = handle
	if nickname != "" {
		t.Nickname = nickname
	}

	return models.PlayerInfo{ID: t.ID, Nickname: t.Nickname}
}

// RemoveParticipant drops a player or teacher from the roster. A non-empty
// handle must match the participant's current handle, so a connection that
// was replaced by a reconnect cannot remove the participant. A seated
// player is also taken out of their room.
func (s *Session) RemoveParticipant(id, handle string) (*Departure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.teachers[id]; ok {
		if handle != "" && t.Handle != handle {
			return nil, ErrPlayerNotFound
		}
		delete(s.teachers, id)
		s.teacherOrder = without(s.teacherOrder, id)
		return &Departure{ParticipantID: id, Teacher: true, Remaining: s.participantsLocked()}, nil
	}

	p, ok := s.players[id]
	if !ok || (handle != "" && p.Handle != handle) {
		return nil, ErrPlayerNotFound
	}

	delete(s.players, id)
	s.playerOrder = without(s.playerOrder, id)

	departure := &Departure{ParticipantID: id, RoomID: p.RoomID}
	if r, ok := s.rooms[p.RoomID]; ok {
		play, err := r.RemovePlayer(id)
		if err != nil {
			return nil, fmt.Errorf("failed to remove player from room %d: %w", r.Number(), err)
		}
		departure.Play = play
	}
	departure.Remaining = s.participantsLocked()

	return departure, nil
}

func (s *Session) participantsLocked() int {
	return len(s.playerOrder) + len(s.teacherOrder)
}

// Player returns the public view of a player
func (s *Session) Player(id string) (models.PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return models.PlayerInfo{}, ErrPlayerNotFound
	}
	return p.Info(), nil
}

// Nickname returns the display name of a player or teacher, or the ID
// when the participant is gone
func (s *Session) Nickname(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.players[id]; ok {
		return p.Nickname
	}
	if t, ok := s.teachers[id]; ok {
		return t.Nickname
	}
	return id
}

// IsTeacher reports whether the ID belongs to a teacher
func (s *Session) IsTeacher(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.teachers[id]
	return ok
}

// TeacherIDs returns the teachers in join order
func (s *Session) TeacherIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.teacherOrder...)
}

// Roster returns everyone in the session
func (s *Session) Roster() *models.Roster {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roster := &models.Roster{
		SessionCode: s.code,
		HasStarted:  s.hasStarted,
		Players:     make([]models.PlayerInfo, 0, len(s.playerOrder)),
		Teachers:    make([]models.PlayerInfo, 0, len(s.teacherOrder)),
	}
	for _, id := range s.playerOrder {
		roster.Players = append(roster.Players, s.players[id].Info())
	}
	for _, id := range s.teacherOrder {
		t := s.teachers[id]
		roster.Teachers = append(roster.Teachers, models.PlayerInfo{ID: t.ID, Nickname: t.Nickname})
	}

	return roster
}

// Room returns a room by ID
func (s *Session) Room(id string) (*room.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// RoomOf returns the room a player is seated in
func (s *Session) RoomOf(playerID string) (*room.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	r, ok := s.rooms[p.RoomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// Rooms returns the rooms in room number order
func (s *Session) Rooms() []*room.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roomsLocked()
}

func (s *Session) roomsLocked() []*room.Room {
	rooms := make([]*room.Room, 0, len(s.roomOrder))
	for _, id := range s.roomOrder {
		rooms = append(rooms, s.rooms[id])
	}
	return rooms
}

// CreateRooms shuffles the roster into rooms of RoomSize. Players left over
// after the last full room are not seated. It returns false without
// starting when the roster is below the minimum player count.
func (s *Session) CreateRooms() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasStarted {
		return false, ErrAlreadyStarted
	}
	if len(s.playerOrder) < s.minPlayers {
		return false, nil
	}

	groups := shuffle.Groups(shuffle.Shuffle(s.random, s.playerOrder), s.roomSize)
	if len(groups) == 0 {
		return false, nil
	}

	rooms := make(map[string]*room.Room, len(groups))
	order := make([]string, 0, len(groups))
	for i, group := range groups {
		players := make([]*models.Player, 0, len(group))
		for _, id := range group {
			players = append(players, s.players[id])
		}

		r, err := room.New(&room.Config{
			ID:           s.uuid.NewUUID(),
			Number:       i + 1,
			Players:      players,
			ResultDelay:  s.resultDelay,
			OnTrickReset: s.onTrickReset,
			Random:       s.random,
			Clock:        s.clock,
		})
		if err != nil {
			return false, fmt.Errorf("failed to create room %d: %w", i+1, err)
		}

		rooms[r.ID()] = r
		order = append(order, r.ID())
	}

	for _, id := range order {
		for _, playerID := range rooms[id].PlayerIDs() {
			s.players[playerID].RoomID = id
		}
	}

	s.rooms = rooms
	s.roomOrder = order
	s.hasStarted = true
	s.segment = 1

	return true, nil
}

// AssignRulesheets gives every room a random rule variant in [0, count).
// When there are exactly two rooms they never share a variant.
func (s *Session) AssignRulesheets(ctx context.Context, count int) error {
	if count < 1 {
		return ErrInvalidRuleCount
	}

	rooms := s.Rooms()
	variants := make([]int, len(rooms))
	for i := range variants {
		variants[i] = s.random.Intn(count)
	}
	if len(rooms) == 2 && count > 1 && variants[1] == variants[0] {
		// uniform over the variants the first room did not get
		variants[1] = (variants[0] + 1 + s.random.Intn(count-1)) % count
	}

	byRoom := make(map[*room.Room]int, len(rooms))
	for i, r := range rooms {
		byRoom[r] = variants[i]
	}

	return fanOut(ctx, rooms, func(r *room.Room) error {
		r.SetRuleVariant(byRoom[r])
		return nil
	})
}

// DealCardsToAllRooms deals a fresh deck in every room
func (s *Session) DealCardsToAllRooms(ctx context.Context, rankRange int) error {
	return fanOut(ctx, s.Rooms(), func(r *room.Room) error {
		return r.DealCards(rankRange)
	})
}

// ResetRooms resets every room for a normal or voting segment
func (s *Session) ResetRooms(ctx context.Context, isVotingRound bool) error {
	return fanOut(ctx, s.Rooms(), func(r *room.Room) error {
		r.Reset(isVotingRound)
		return nil
	})
}

// fanOut runs fn on every room concurrently. Every room runs to completion
// and every failure is reported.
func fanOut(ctx context.Context, rooms []*room.Room, fn func(r *room.Room) error) error {
	errs := make([]error, len(rooms))

	g, ctx := errgroup.WithContext(ctx)
	for i, r := range rooms {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			if err := fn(r); err != nil {
				errs[i] = fmt.Errorf("room %d: %w", r.Number(), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return multierr.Combine(errs...)
}

// ChangeRooms computes the next room arrangement from every room's
// leaderboard, read at a single instant. Nothing is applied.
func (s *Session) ChangeRooms() (*Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changeRoomsLocked()
}

// ApplyAssignment seats players as the assignment says. Every room is reset
// and keeps its vote mode. Players who left after the assignment was
// computed are skipped.
func (s *Session) ApplyAssignment(assignment *Assignment) error {
	if assignment == nil {
		return ErrReshuffleInvariant
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyAssignmentLocked(assignment)
}

// Rotate computes and applies the next room arrangement in one step, so
// concurrent rotations each start from the arrangement the previous one
// left. It returns the assignment and the segment it closed.
func (s *Session) Rotate() (*Assignment, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	segment := s.segment
	assignment, err := s.changeRoomsLocked()
	if err != nil {
		return nil, segment, err
	}
	if err := s.applyAssignmentLocked(assignment); err != nil {
		return nil, segment, err
	}

	return assignment, segment, nil
}

func (s *Session) changeRoomsLocked() (*Assignment, error) {
	if !s.hasStarted {
		return nil, ErrNotStarted
	}

	boards := room.ReadLeaderboards(s.roomsLocked())
	ladder := make([]RoomStanding, 0, len(boards))
	for _, board := range boards {
		ladder = append(ladder, RoomStanding{RoomNumber: board.RoomNumber, Entries: board.Entries})
	}

	assignment, err := Reshuffle(ladder)
	if err != nil {
		return nil, err
	}
	assignment.Snapshot = boards

	return assignment, nil
}

func (s *Session) applyAssignmentLocked(assignment *Assignment) error {
	if !s.hasStarted {
		return ErrNotStarted
	}

	rooms := s.roomsLocked()
	seats := make([][]*models.Player, len(rooms))
	for i, r := range rooms {
		ids := assignment.Rooms[r.Number()]
		players := make([]*models.Player, 0, len(ids))
		for _, id := range ids {
			if p, ok := s.players[id]; ok {
				players = append(players, p)
				p.RoomID = r.ID()
			}
		}
		seats[i] = players
	}
	room.Reseat(rooms, seats)
	s.segment++

	return nil
}

// Standings returns every room's current leaderboard
func (s *Session) Standings() *models.Standings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &models.Standings{
		SessionCode: s.code,
		Segment:     s.segment,
		Rooms:       room.ReadLeaderboards(s.roomsLocked()),
	}
}

func without(ids []string, target string) []string {
	out := ids[:0:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

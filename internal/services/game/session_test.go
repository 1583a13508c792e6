package game

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"go.uber.org/multierr"

	mockClock "github.com/KirkDiggler/trickroom/internal/common/clock/mocks"
	mockUUID "github.com/KirkDiggler/trickroom/internal/common/uuid/mocks"
	"github.com/KirkDiggler/trickroom/internal/models"
	"github.com/KirkDiggler/trickroom/internal/services/room"
)

// firstSource always picks the first candidate and never reorders
type firstSource struct{}

func (firstSource) Intn(int) int { return 0 }

func (firstSource) Shuffle(int, func(i, j int)) {}

type SessionTestSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	mockClock *mockClock.MockClock
	mockUUID  *mockUUID.MockUUID
	testNow   time.Time
	session   *Session
	nextID    int
}

func (s *SessionTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockClock = mockClock.NewMockClock(s.ctrl)
	s.mockUUID = mockUUID.NewMockUUID(s.ctrl)
	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
	s.nextID = 0

	s.mockClock.EXPECT().Now().Return(s.testNow).AnyTimes()
	s.mockUUID.EXPECT().NewUUID().DoAndReturn(func() string {
		s.nextID++
		return fmt.Sprintf("room-%d", s.nextID)
	}).AnyTimes()

	var err error
	s.session, err = NewSession(&SessionConfig{
		Code:       "abcdef",
		AdminToken: "secret",
		RoomSize:   3,
		Random:     firstSource{},
		Clock:      s.mockClock,
		UUID:       s.mockUUID,
	})
	s.Require().NoError(err)
}

func (s *SessionTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionTestSuite))
}

func (s *SessionTestSuite) addPlayers(n int) {
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("p%d", i)
		_, err := s.session.AddPlayer(id, "conn-"+id, "Player "+id)
		s.Require().NoError(err)
	}
}

func (s *SessionTestSuite) TestNewSessionValidation() {
	_, err := NewSession(nil)
	s.ErrorIs(err, ErrNilConfig)

	_, err = NewSession(&SessionConfig{RoomSize: 0, Random: firstSource{}, Clock: s.mockClock, UUID: s.mockUUID})
	s.ErrorIs(err, ErrInvalidRoomSize)

	_, err = NewSession(&SessionConfig{RoomSize: 3, Clock: s.mockClock, UUID: s.mockUUID})
	s.ErrorIs(err, ErrNilRandom)

	_, err = NewSession(&SessionConfig{RoomSize: 3, Random: firstSource{}, UUID: s.mockUUID})
	s.ErrorIs(err, ErrNilClock)

	_, err = NewSession(&SessionConfig{RoomSize: 3, Random: firstSource{}, Clock: s.mockClock})
	s.ErrorIs(err, ErrNilUUIDGenerator)
}

func (s *SessionTestSuite) TestCheckAdmin() {
	s.True(s.session.CheckAdmin("secret"))
	s.False(s.session.CheckAdmin("Secret"))
	s.False(s.session.CheckAdmin(""))
}

func (s *SessionTestSuite) TestAddPlayerUpserts() {
	info, err := s.session.AddPlayer("p1", "conn-1", "Ada")
	s.Require().NoError(err)
	s.Equal("Ada", info.Nickname)

	info, err = s.session.AddPlayer("p1", "conn-2", "Ada L")
	s.Require().NoError(err)
	s.Equal("Ada L", info.Nickname)

	roster := s.session.Roster()
	s.Len(roster.Players, 1)
	s.False(roster.HasStarted)

	_, err = s.session.AddPlayer("p2", "conn-3", "")
	s.ErrorIs(err, ErrEmptyNickname)
}

func (s *SessionTestSuite) TestAddPlayerAfterStart() {
	s.addPlayers(3)
	started, err := s.session.CreateRooms()
	s.Require().NoError(err)
	s.Require().True(started)

	_, err = s.session.AddPlayer("late", "conn-late", "Late")
	s.ErrorIs(err, ErrAlreadyStarted)
	s.Equal(ClassForbidden, Classify(err))

	// a known player can reconnect but keeps their nickname
	info, err := s.session.AddPlayer("p1", "conn-new", "Renamed")
	s.Require().NoError(err)
	s.Equal("Player p1", info.Nickname)
	s.NotEmpty(info.RoomID)
}

func (s *SessionTestSuite) TestAddTeacher() {
	info := s.session.AddTeacher("t1", "conn-t1", "Ms T")
	s.Equal("Ms T", info.Nickname)

	s.session.AddTeacher("t1", "conn-t2", "")

	roster := s.session.Roster()
	s.Require().Len(roster.Teachers, 1)
	s.Equal("Ms T", roster.Teachers[0].Nickname)
	s.True(s.session.IsTeacher("t1"))
	s.Equal([]string{"t1"}, s.session.TeacherIDs())
}

func (s *SessionTestSuite) TestCreateRoomsBelowMinimum() {
	s.addPlayers(2)

	started, err := s.session.CreateRooms()
	s.Require().NoError(err)
	s.False(started)
	s.False(s.session.HasStarted())
	s.Empty(s.session.Rooms())
}

func (s *SessionTestSuite) TestCreateRoomsGroupsAndLeavesRemainder() {
	s.addPlayers(7)

	started, err := s.session.CreateRooms()
	s.Require().NoError(err)
	s.Require().True(started)

	rooms := s.session.Rooms()
	s.Require().Len(rooms, 2)
	s.Equal(1, rooms[0].Number())
	s.Equal(2, rooms[1].Number())
	s.Equal([]string{"p1", "p2", "p3"}, rooms[0].PlayerIDs())
	s.Equal([]string{"p4", "p5", "p6"}, rooms[1].PlayerIDs())

	p7, err := s.session.Player("p7")
	s.Require().NoError(err)
	s.Empty(p7.RoomID)

	_, err = s.session.RoomOf("p7")
	s.ErrorIs(err, ErrRoomNotFound)

	r, err := s.session.RoomOf("p5")
	s.Require().NoError(err)
	s.Equal(rooms[1].ID(), r.ID())

	s.Equal(1, s.session.Segment())

	_, err = s.session.CreateRooms()
	s.ErrorIs(err, ErrAlreadyStarted)
}

func (s *SessionTestSuite) TestAssignRulesheetsTwoRoomsDiffer() {
	s.addPlayers(6)
	_, err := s.session.CreateRooms()
	s.Require().NoError(err)

	s.Require().NoError(s.session.AssignRulesheets(context.Background(), 3))

	rooms := s.session.Rooms()
	s.NotEqual(rooms[0].RuleVariant(), rooms[1].RuleVariant())

	s.ErrorIs(s.session.AssignRulesheets(context.Background(), 0), ErrInvalidRuleCount)
}

func (s *SessionTestSuite) TestAssignRulesheetsFansOutToEveryRoom() {
	s.addPlayers(9)
	_, err := s.session.CreateRooms()
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = s.session.AssignRulesheets(ctx, 3)
	s.ErrorIs(err, context.Canceled)
	s.Len(multierr.Errors(err), 3)
}

func (s *SessionTestSuite) TestDealCardsToAllRooms() {
	s.addPlayers(6)
	_, err := s.session.CreateRooms()
	s.Require().NoError(err)

	s.Require().NoError(s.session.DealCardsToAllRooms(context.Background(), 7))

	for _, r := range s.session.Rooms() {
		for _, hand := range r.Hands() {
			s.Len(hand.Cards, 9)
		}
		s.Equal(models.RoomPhaseAwaitingPlays, r.Phase())
	}
}

func (s *SessionTestSuite) TestDealCardsReportsEveryRoom() {
	s.addPlayers(6)
	_, err := s.session.CreateRooms()
	s.Require().NoError(err)

	err = s.session.DealCardsToAllRooms(context.Background(), 0)

	s.Require().Error(err)
	s.ErrorIs(err, room.ErrInvalidRankRange)
	s.Len(multierr.Errors(err), 2)
}

func (s *SessionTestSuite) TestResetRooms() {
	s.addPlayers(6)
	_, err := s.session.CreateRooms()
	s.Require().NoError(err)
	s.Require().NoError(s.session.DealCardsToAllRooms(context.Background(), 7))

	s.Require().NoError(s.session.ResetRooms(context.Background(), true))

	for _, r := range s.session.Rooms() {
		state := r.State()
		s.True(state.VoteMode)
		s.Equal(models.RoomPhaseDealing, state.Phase)
	}
}

func (s *SessionTestSuite) TestChangeRoomsBeforeStart() {
	_, err := s.session.ChangeRooms()
	s.ErrorIs(err, ErrNotStarted)
}

func (s *SessionTestSuite) TestChangeAndApplyRooms() {
	s.addPlayers(6)
	_, err := s.session.CreateRooms()
	s.Require().NoError(err)

	assignment, err := s.session.ChangeRooms()
	s.Require().NoError(err)
	s.Len(assignment.Snapshot, 2)

	// all scores are zero, so seat order decides
	s.Equal([]string{"p2", "p4", "p6"}, assignment.Rooms[1])
	s.Equal([]string{"p1", "p3", "p5"}, assignment.Rooms[2])

	s.Require().NoError(s.session.ApplyAssignment(assignment))

	rooms := s.session.Rooms()
	s.Equal([]string{"p2", "p4", "p6"}, rooms[0].PlayerIDs())
	s.Equal([]string{"p1", "p3", "p5"}, rooms[1].PlayerIDs())

	r, err := s.session.RoomOf("p1")
	s.Require().NoError(err)
	s.Equal(rooms[1].ID(), r.ID())

	p1, err := s.session.Player("p1")
	s.Require().NoError(err)
	s.Equal(rooms[1].ID(), p1.RoomID)

	s.Equal(2, s.session.Segment())
}

func (s *SessionTestSuite) TestApplyAssignmentSkipsDepartedPlayers() {
	s.addPlayers(6)
	_, err := s.session.CreateRooms()
	s.Require().NoError(err)

	assignment, err := s.session.ChangeRooms()
	s.Require().NoError(err)

	_, err = s.session.RemoveParticipant("p4", "")
	s.Require().NoError(err)

	s.Require().NoError(s.session.ApplyAssignment(assignment))
	s.Equal([]string{"p2", "p6"}, s.session.Rooms()[0].PlayerIDs())
}

func (s *SessionTestSuite) TestRotate() {
	_, _, err := s.session.Rotate()
	s.ErrorIs(err, ErrNotStarted)

	s.addPlayers(6)
	_, err = s.session.CreateRooms()
	s.Require().NoError(err)

	assignment, segment, err := s.session.Rotate()
	s.Require().NoError(err)

	s.Equal(1, segment)
	s.Equal(2, s.session.Segment())
	s.Len(assignment.Snapshot, 2)
	rooms := s.session.Rooms()
	s.Equal([]string{"p2", "p4", "p6"}, rooms[0].PlayerIDs())
	s.Equal([]string{"p1", "p3", "p5"}, rooms[1].PlayerIDs())
}

func (s *SessionTestSuite) TestConcurrentRotationsEachApplyOnce() {
	s.addPlayers(6)
	_, err := s.session.CreateRooms()
	s.Require().NoError(err)

	segments := make(chan int, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, segment, err := s.session.Rotate()
			if err == nil {
				segments <- segment
			}
		}()
	}
	wg.Wait()
	close(segments)

	var closed []int
	for segment := range segments {
		closed = append(closed, segment)
	}
	s.ElementsMatch([]int{1, 2}, closed)
	s.Equal(3, s.session.Segment())

	// the second rotation starts from the first one's seating
	rooms := s.session.Rooms()
	s.Equal([]string{"p4", "p1", "p5"}, rooms[0].PlayerIDs())
	s.Equal([]string{"p2", "p6", "p3"}, rooms[1].PlayerIDs())
}

func (s *SessionTestSuite) TestRotateWhileReadingHands() {
	session, err := NewSession(&SessionConfig{
		Code:     "ghijkl",
		RoomSize: 2,
		Random:   firstSource{},
		Clock:    s.mockClock,
		UUID:     s.mockUUID,
	})
	s.Require().NoError(err)
	for i := 1; i <= 6; i++ {
		id := fmt.Sprintf("p%d", i)
		_, err := session.AddPlayer(id, "conn-"+id, "Player "+id)
		s.Require().NoError(err)
	}
	_, err = session.CreateRooms()
	s.Require().NoError(err)
	rooms := session.Rooms()
	s.Require().Len(rooms, 3)

	ctx := context.Background()
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for _, r := range rooms {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					_ = r.Hands()
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		_, _, err := session.Rotate()
		s.Require().NoError(err)
		s.Require().NoError(session.DealCardsToAllRooms(ctx, 7))
	}
	close(stop)
	wg.Wait()

	seated := map[string]bool{}
	for _, r := range session.Rooms() {
		for _, hand := range r.Hands() {
			s.False(seated[hand.PlayerID])
			seated[hand.PlayerID] = true
			s.Len(hand.Cards, 14)
		}
	}
	s.Len(seated, 6)
}

func (s *SessionTestSuite) TestRemoveParticipant() {
	s.addPlayers(3)
	s.session.AddTeacher("t1", "conn-t1", "Ms T")
	_, err := s.session.CreateRooms()
	s.Require().NoError(err)

	_, err = s.session.RemoveParticipant("p2", "stale-conn")
	s.ErrorIs(err, ErrPlayerNotFound)

	departure, err := s.session.RemoveParticipant("p2", "conn-p2")
	s.Require().NoError(err)
	s.Equal(s.session.Rooms()[0].ID(), departure.RoomID)
	s.Require().NotNil(departure.Play)
	s.Equal(3, departure.Remaining)
	s.Equal([]string{"p1", "p3"}, s.session.Rooms()[0].PlayerIDs())

	departure, err = s.session.RemoveParticipant("t1", "")
	s.Require().NoError(err)
	s.True(departure.Teacher)
	s.Equal(2, departure.Remaining)

	_, err = s.session.RemoveParticipant("nobody", "")
	s.ErrorIs(err, ErrPlayerNotFound)
}

func (s *SessionTestSuite) TestStandings() {
	s.addPlayers(3)
	_, err := s.session.CreateRooms()
	s.Require().NoError(err)

	standings := s.session.Standings()
	s.Equal("abcdef", standings.SessionCode)
	s.Equal(1, standings.Segment)
	s.Require().Len(standings.Rooms, 1)
	s.Len(standings.Rooms[0].Entries, 3)
}

func (s *SessionTestSuite) TestInfo() {
	s.addPlayers(2)
	s.session.AddTeacher("t1", "conn-t1", "Ms T")

	info := s.session.Info()
	s.Equal("abcdef", info.Code)
	s.Equal(3, info.RoomSize)
	s.Equal(3, info.Participants)
	s.Equal(s.testNow, info.CreatedAt)
}

package room

import (
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/trickroom/internal/common/clock"
	mockClock "github.com/KirkDiggler/trickroom/internal/common/clock/mocks"
	"github.com/KirkDiggler/trickroom/internal/deck"
	"github.com/KirkDiggler/trickroom/internal/models"
	"github.com/KirkDiggler/trickroom/internal/random"
)

// firstSource always picks the first candidate and never reorders, which
// makes deals come out in deck order
type firstSource struct{}

func (firstSource) Intn(int) int { return 0 }

func (firstSource) Shuffle(int, func(i, j int)) {}

type RoomTestSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	mockClock *mockClock.MockClock
	players   []*models.Player
	room      *Room
	pending   []func()
	resets    []models.RoomState
}

func (s *RoomTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockClock = mockClock.NewMockClock(s.ctrl)
	s.pending = nil
	s.resets = nil

	s.players = []*models.Player{
		{ID: "p1", Nickname: "Ada"},
		{ID: "p2", Nickname: "Bo"},
		{ID: "p3", Nickname: "Cy"},
	}

	var err error
	s.room, err = New(&Config{
		ID:      "room-1",
		Number:  1,
		Players: s.players,
		Random:  firstSource{},
		Clock:   s.mockClock,
		OnTrickReset: func(state models.RoomState) {
			s.resets = append(s.resets, state)
		},
	})
	s.Require().NoError(err)
}

func (s *RoomTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *RoomTestSuite) expectResultTimer() {
	s.mockClock.EXPECT().
		AfterFunc(DefaultResultDelay, gomock.Any()).
		DoAndReturn(func(_ time.Duration, f func()) clock.Timer {
			s.pending = append(s.pending, f)
			return nil
		})
}

func card(suit deck.Suit, rank int) deck.Card {
	return deck.Card{Suit: suit, Rank: rank}
}

func (s *RoomTestSuite) TestNewValidation() {
	_, err := New(nil)
	s.ErrorIs(err, ErrNilConfig)

	_, err = New(&Config{ID: "r", Number: 1, Clock: s.mockClock})
	s.ErrorIs(err, ErrNilRandom)

	_, err = New(&Config{ID: "r", Number: 1, Random: firstSource{}})
	s.ErrorIs(err, ErrNilClock)

	_, err = New(&Config{Number: 1, Random: firstSource{}, Clock: s.mockClock})
	s.ErrorIs(err, ErrEmptyRoomID)

	_, err = New(&Config{ID: "r", Random: firstSource{}, Clock: s.mockClock})
	s.ErrorIs(err, ErrInvalidNumber)
}

func (s *RoomTestSuite) TestNewRoomStartsEmpty() {
	state := s.room.State()

	s.Equal(models.RoomPhaseDealing, state.Phase)
	s.Equal("p1", state.Turn)
	s.Len(state.Players, 3)
	s.Len(state.Leaderboard, 3)
	for _, entry := range state.Leaderboard {
		s.Zero(entry.Score)
	}
	s.Empty(state.PlayedCards)
}

func (s *RoomTestSuite) TestDealCardsSplitsEvenly() {
	s.Require().NoError(s.room.DealCards(7))

	// 28 cards across 3 players gives 9 each with one card left out
	hands := s.room.Hands()
	s.Require().Len(hands, 3)
	s.Equal([]deck.Card{
		card(deck.Club, 1), card(deck.Club, 2), card(deck.Club, 3),
		card(deck.Club, 4), card(deck.Club, 5), card(deck.Club, 6),
		card(deck.Club, 7), card(deck.Heart, 1), card(deck.Heart, 2),
	}, hands[0].Cards)
	s.Len(hands[1].Cards, 9)
	s.Len(hands[2].Cards, 9)
	s.Equal(card(deck.Spade, 6), hands[2].Cards[8])

	seen := map[deck.Card]bool{}
	for _, hand := range hands {
		for _, c := range hand.Cards {
			s.False(seen[c], "card %s dealt twice", c)
			seen[c] = true
		}
	}

	s.Equal(models.RoomPhaseAwaitingPlays, s.room.Phase())
}

func (s *RoomTestSuite) TestDealCardsFivePlayers() {
	players := make([]*models.Player, 0, 5)
	for i := 1; i <= 5; i++ {
		players = append(players, &models.Player{ID: fmt.Sprintf("p%d", i)})
	}
	r, err := New(&Config{ID: "r", Number: 1, Players: players, Random: firstSource{}, Clock: s.mockClock})
	s.Require().NoError(err)

	s.Require().NoError(r.DealCards(7))

	total := 0
	for _, hand := range r.Hands() {
		s.Len(hand.Cards, 5)
		total += len(hand.Cards)
	}
	s.Equal(25, total)
}

func (s *RoomTestSuite) TestDealCardsTooFewCards() {
	players := make([]*models.Player, 0, 5)
	for i := 1; i <= 5; i++ {
		players = append(players, &models.Player{ID: fmt.Sprintf("p%d", i)})
	}
	r, err := New(&Config{ID: "r", Number: 1, Players: players, Random: firstSource{}, Clock: s.mockClock})
	s.Require().NoError(err)

	s.Require().NoError(r.DealCards(1))

	for _, hand := range r.Hands() {
		s.Empty(hand.Cards)
	}
	state := r.State()
	s.Equal(models.RoomPhaseDealing, state.Phase)
	s.Empty(state.Turn)
}

func (s *RoomTestSuite) TestDealCardsInvalidRange() {
	s.ErrorIs(s.room.DealCards(0), ErrInvalidRankRange)
}

func (s *RoomTestSuite) TestPlayCardEnforcesTurn() {
	s.Require().NoError(s.room.DealCards(7))

	_, err := s.room.PlayCard("p2", card(deck.Heart, 3))
	s.ErrorIs(err, ErrNotYourTurn)

	_, err = s.room.PlayCard("p1", card(deck.Spade, 1))
	s.ErrorIs(err, ErrCardNotInHand)

	_, err = s.room.PlayCard("nobody", card(deck.Club, 1))
	s.ErrorIs(err, ErrNotInRoom)

	res, err := s.room.PlayCard("p1", card(deck.Club, 7))
	s.Require().NoError(err)
	s.False(res.TrickComplete)
	s.Equal("p2", res.Turn)

	_, err = s.room.PlayCard("p1", card(deck.Club, 6))
	s.ErrorIs(err, ErrNotYourTurn)

	hand, err := s.room.Hand("p1")
	s.Require().NoError(err)
	s.Len(hand, 8)
}

func (s *RoomTestSuite) TestPlayCardBeforeDeal() {
	_, err := s.room.PlayCard("p1", card(deck.Club, 1))
	s.ErrorIs(err, ErrPlayDisabled)
}

func (s *RoomTestSuite) TestTrickResolvesByLedSuit() {
	s.room.SetRuleVariant(2)
	s.Require().NoError(s.room.DealCards(7))
	s.expectResultTimer()

	_, err := s.room.PlayCard("p1", card(deck.Club, 7))
	s.Require().NoError(err)
	_, err = s.room.PlayCard("p2", card(deck.Heart, 3))
	s.Require().NoError(err)
	res, err := s.room.PlayCard("p3", card(deck.Spade, 1))
	s.Require().NoError(err)

	s.True(res.TrickComplete)
	s.Require().NotNil(res.Result)
	s.Equal("p1", res.Result.WinnerID)
	s.Len(res.Result.Plays, 3)
	s.Equal("p1", res.Turn)

	state := s.room.State()
	s.Equal(models.RoomPhaseShowingResult, state.Phase)
	s.True(state.Settings.ShowWinner)
	s.True(state.Settings.DisablePlayCard)
	s.Equal("p1", state.Settings.Winner)
	s.Equal(1, state.Leaderboard[0].Score)

	_, err = s.room.PlayCard("p1", card(deck.Club, 6))
	s.ErrorIs(err, ErrPlayDisabled)
}

func (s *RoomTestSuite) TestTrickResolvesByTrump() {
	s.room.SetRuleVariant(0)
	s.Require().NoError(s.room.DealCards(7))
	s.expectResultTimer()

	_, err := s.room.PlayCard("p1", card(deck.Club, 7))
	s.Require().NoError(err)
	_, err = s.room.PlayCard("p2", card(deck.Heart, 3))
	s.Require().NoError(err)
	res, err := s.room.PlayCard("p3", card(deck.Spade, 1))
	s.Require().NoError(err)

	s.Require().NotNil(res.Result)
	s.Equal("p3", res.Result.WinnerID)
}

func (s *RoomTestSuite) TestResultDelayClearsTable() {
	s.room.SetRuleVariant(2)
	s.Require().NoError(s.room.DealCards(7))
	s.expectResultTimer()

	_, _ = s.room.PlayCard("p1", card(deck.Club, 7))
	_, _ = s.room.PlayCard("p2", card(deck.Heart, 3))
	_, _ = s.room.PlayCard("p3", card(deck.Spade, 1))

	s.Require().Len(s.pending, 1)
	s.pending[0]()

	s.Require().Len(s.resets, 1)
	state := s.resets[0]
	s.Equal(models.RoomPhaseAwaitingPlays, state.Phase)
	s.Empty(state.PlayedCards)
	s.False(state.Settings.ShowWinner)
	s.False(state.Settings.DisablePlayCard)
	s.Empty(state.Settings.Winner)
	s.Equal("p1", state.Turn)
	s.Equal(1, state.Leaderboard[0].Score)
	s.Equal(8, state.HandSizes["p1"])

	res, err := s.room.PlayCard("p1", card(deck.Club, 6))
	s.Require().NoError(err)
	s.Equal("p2", res.Turn)
}

func (s *RoomTestSuite) TestStaleTimerIgnoredAfterReset() {
	s.Require().NoError(s.room.DealCards(7))
	s.expectResultTimer()

	_, _ = s.room.PlayCard("p1", card(deck.Club, 7))
	_, _ = s.room.PlayCard("p2", card(deck.Heart, 3))
	_, _ = s.room.PlayCard("p3", card(deck.Spade, 1))

	s.room.Reset(false)
	s.Require().Len(s.pending, 1)
	s.pending[0]()

	s.Empty(s.resets)
	s.Equal(models.RoomPhaseDealing, s.room.Phase())
}

func (s *RoomTestSuite) TestResetClearsEverything() {
	s.Require().NoError(s.room.DealCards(7))
	_, _ = s.room.PlayCard("p1", card(deck.Club, 7))

	s.room.Reset(true)

	state := s.room.State()
	s.Equal(models.RoomPhaseDealing, state.Phase)
	s.True(state.VoteMode)
	s.True(state.DisableRules)
	s.True(state.DisableChat)
	s.Empty(state.PlayedCards)
	for _, size := range state.HandSizes {
		s.Zero(size)
	}

	s.room.Reset(false)
	state = s.room.State()
	s.False(state.VoteMode)
	s.False(state.DisableChat)
}

func (s *RoomTestSuite) playFullTrick() {
	_, err := s.room.PlayCard("p1", card(deck.Club, 7))
	s.Require().NoError(err)
	_, err = s.room.PlayCard("p2", card(deck.Heart, 3))
	s.Require().NoError(err)
	res, err := s.room.PlayCard("p3", card(deck.Spade, 1))
	s.Require().NoError(err)
	s.Require().True(res.Voting)
	s.Require().Nil(res.Result)
}

func (s *RoomTestSuite) TestVotingRound() {
	s.room.Reset(true)
	s.Require().NoError(s.room.DealCards(7))
	s.playFullTrick()

	state := s.room.State()
	s.Equal(models.RoomPhaseVoting, state.Phase)
	s.True(state.Settings.ShowVoting)

	vr, err := s.room.CastVote("p1", "p2")
	s.Require().NoError(err)
	s.False(vr.Complete)
	s.Equal(map[string]int{"p2": 1}, vr.Tally)

	vr, err = s.room.CastVote("p2", "p2")
	s.Require().NoError(err)
	s.False(vr.Complete)

	s.expectResultTimer()
	vr, err = s.room.CastVote("p3", "p1")
	s.Require().NoError(err)
	s.True(vr.Complete)
	s.Require().NotNil(vr.Result)
	s.Equal("p2", vr.Result.WinnerID)
	s.True(vr.Result.ByVote)
	s.Equal(map[string]int{"p1": 1, "p2": 2}, vr.Result.Tally)

	state = s.room.State()
	s.Equal(models.RoomPhaseShowingResult, state.Phase)
	s.False(state.Settings.ShowVoting)
	s.Equal(1, state.Leaderboard[1].Score)
}

func (s *RoomTestSuite) TestVoteReplacesEarlierVote() {
	s.room.Reset(true)
	s.Require().NoError(s.room.DealCards(7))
	s.playFullTrick()

	_, err := s.room.CastVote("p1", "p3")
	s.Require().NoError(err)
	vr, err := s.room.CastVote("p1", "p2")
	s.Require().NoError(err)

	s.True(vr.Replaced)
	s.False(vr.Complete)
	s.Len(vr.Votes, 1)
	s.Equal(map[string]int{"p2": 1}, vr.Tally)
}

func (s *RoomTestSuite) TestVoteErrors() {
	_, err := s.room.CastVote("p1", "p2")
	s.ErrorIs(err, ErrNotVoting)

	s.room.Reset(true)
	s.Require().NoError(s.room.DealCards(7))
	s.playFullTrick()

	_, err = s.room.CastVote("ghost", "p2")
	s.ErrorIs(err, ErrNotInRoom)

	_, err = s.room.CastVote("p1", "ghost")
	s.ErrorIs(err, ErrInvalidVote)
}

func (s *RoomTestSuite) TestRemovePlayerCompletesTrick() {
	s.room.SetRuleVariant(2)
	s.Require().NoError(s.room.DealCards(7))
	s.expectResultTimer()

	_, _ = s.room.PlayCard("p1", card(deck.Club, 7))
	_, _ = s.room.PlayCard("p2", card(deck.Heart, 3))

	res, err := s.room.RemovePlayer("p3")
	s.Require().NoError(err)
	s.True(res.TrickComplete)
	s.Require().NotNil(res.Result)
	s.Equal("p1", res.Result.WinnerID)

	s.False(s.room.HasPlayer("p3"))
	s.Nil(s.players[2].Hand)
	s.Len(s.room.Leaderboard().Entries, 2)

	_, err = s.room.RemovePlayer("p3")
	s.ErrorIs(err, ErrNotInRoom)
}

func (s *RoomTestSuite) TestRemovePlayerPassesTurn() {
	s.Require().NoError(s.room.DealCards(7))

	res, err := s.room.RemovePlayer("p1")
	s.Require().NoError(err)
	s.False(res.TrickComplete)
	s.Equal("p2", res.Turn)
	s.Equal([]string{"p2", "p3"}, s.room.PlayerIDs())
}

func (s *RoomTestSuite) TestRemovePlayerDropsTheirVotes() {
	s.room.Reset(true)
	s.Require().NoError(s.room.DealCards(7))
	s.playFullTrick()

	_, err := s.room.CastVote("p1", "p3")
	s.Require().NoError(err)
	_, err = s.room.CastVote("p2", "p1")
	s.Require().NoError(err)

	// p3 leaving discards the vote for p3, so p1 must vote again
	res, err := s.room.RemovePlayer("p3")
	s.Require().NoError(err)
	s.True(res.Voting)
	s.Nil(res.Result)
	s.Equal(map[string]int{"p1": 1}, s.room.Tally())
}

func (s *RoomTestSuite) TestReplacePlayers() {
	s.Require().NoError(s.room.DealCards(7))

	newcomer := &models.Player{ID: "p9", Nickname: "Nine"}
	s.room.ReplacePlayers([]*models.Player{s.players[0], newcomer})

	s.Equal([]string{"p1", "p9"}, s.room.PlayerIDs())
	s.Nil(s.players[1].Hand)
	board := s.room.Leaderboard()
	s.Require().Len(board.Entries, 2)
	s.Equal("Nine", board.Entries[1].Nickname)
	s.Equal(models.RoomPhaseDealing, s.room.Phase())
}

func (s *RoomTestSuite) newRoom(id string, number int, players ...*models.Player) *Room {
	r, err := New(&Config{
		ID:      id,
		Number:  number,
		Players: players,
		Random:  firstSource{},
		Clock:   s.mockClock,
	})
	s.Require().NoError(err)
	return r
}

func (s *RoomTestSuite) TestReseatMovesPlayersBetweenRooms() {
	other := s.newRoom("room-2", 2, &models.Player{ID: "p4", Nickname: "Di"})
	s.room.Reset(true)
	s.Require().NoError(s.room.DealCards(7))
	s.Require().NoError(other.DealCards(7))

	moved := s.players[2]
	stayer := other.players["p4"]
	Reseat([]*Room{s.room, other}, [][]*models.Player{
		{s.players[0], s.players[1], stayer},
		{moved},
	})

	s.Equal([]string{"p1", "p2", "p4"}, s.room.PlayerIDs())
	s.Equal([]string{"p3"}, other.PlayerIDs())
	for _, p := range append(s.players, stayer) {
		s.Nil(p.Hand)
	}
	s.True(s.room.State().VoteMode)
	s.False(other.State().VoteMode)
	s.Equal(models.RoomPhaseDealing, other.Phase())
	s.Len(other.Leaderboard().Entries, 1)
}

func (s *RoomTestSuite) TestReseatWhileReadingHands() {
	rooms := []*Room{
		s.room,
		s.newRoom("room-2", 2, &models.Player{ID: "p4"}, &models.Player{ID: "p5"}),
	}
	everyone := append([]*models.Player{}, s.players...)
	everyone = append(everyone, rooms[1].players["p4"], rooms[1].players["p5"])

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
					_ = r.State()
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		split := 1 + i%4
		Reseat(rooms, [][]*models.Player{everyone[:split], everyone[split:]})
		for _, r := range rooms {
			s.Require().NoError(r.DealCards(7))
		}
	}
	close(stop)
	wg.Wait()

	// the last pass seats four players in room 1 and one in room 2
	s.Equal([]string{"p1", "p2", "p3", "p4"}, rooms[0].PlayerIDs())
	for _, hand := range rooms[0].Hands() {
		s.Len(hand.Cards, 7)
	}
	s.Equal([]string{"p5"}, rooms[1].PlayerIDs())
	s.Len(rooms[1].Hands()[0].Cards, 28)
}

func (s *RoomTestSuite) TestReadLeaderboards() {
	other, err := New(&Config{
		ID:      "room-2",
		Number:  2,
		Players: []*models.Player{{ID: "p4"}},
		Random:  firstSource{},
		Clock:   s.mockClock,
	})
	s.Require().NoError(err)

	boards := ReadLeaderboards([]*Room{s.room, other})

	s.Require().Len(boards, 2)
	s.Equal("room-1", boards[0].RoomID)
	s.Equal(2, boards[1].RoomNumber)
	s.Len(boards[1].Entries, 1)
}

func TestRoomSuite(t *testing.T) {
	suite.Run(t, new(RoomTestSuite))
}

func TestResolve(t *testing.T) {
	play := func(id string, suit deck.Suit, rank int) models.Play {
		return models.Play{PlayerID: id, Card: card(suit, rank)}
	}

	tests := []struct {
		name    string
		variant int
		plays   []models.Play
		winner  string
		tied    int
	}{
		{
			name:    "highest of led suit without trump",
			variant: 2,
			plays:   []models.Play{play("a", deck.Heart, 2), play("b", deck.Heart, 6), play("c", deck.Spade, 7)},
			winner:  "b",
		},
		{
			name:    "spade trumps led suit",
			variant: 0,
			plays:   []models.Play{play("a", deck.Heart, 7), play("b", deck.Spade, 1), play("c", deck.Club, 5)},
			winner:  "b",
		},
		{
			name:    "highest diamond wins under diamond trump",
			variant: 1,
			plays:   []models.Play{play("a", deck.Diamond, 3), play("b", deck.Spade, 7), play("c", deck.Diamond, 6)},
			winner:  "c",
		},
		{
			name:    "led suit wins when no trump played",
			variant: 0,
			plays:   []models.Play{play("a", deck.Club, 3), play("b", deck.Heart, 7), play("c", deck.Club, 4)},
			winner:  "c",
		},
		{
			name:    "equal ranks tie",
			variant: 2,
			plays:   []models.Play{play("a", deck.Club, 5), play("b", deck.Club, 5)},
			winner:  "a",
			tied:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			winner, tied := Resolve(tt.plays, tt.variant, firstSource{})
			if winner.PlayerID != tt.winner {
				t.Errorf("winner = %s, want %s", winner.PlayerID, tt.winner)
			}
			if len(tied) != tt.tied {
				t.Errorf("tied = %d, want %d", len(tied), tt.tied)
			}
		})
	}
}

func TestVoteWinnerTie(t *testing.T) {
	votes := []models.Vote{
		{VoterID: "a", ChosenID: "b"},
		{VoterID: "b", ChosenID: "a"},
	}

	winner, tied := VoteWinner(votes, []string{"a", "b"}, firstSource{})

	if winner != "a" {
		t.Errorf("winner = %s, want a", winner)
	}
	if len(tied) != 1 || tied[0] != "b" {
		t.Errorf("tied = %v, want [b]", tied)
	}
}

func TestVoteWinnerFourVoters(t *testing.T) {
	vote := func(voter, chosen string) models.Vote {
		return models.Vote{VoterID: voter, ChosenID: chosen}
	}
	seats := []string{"a", "b", "c", "d"}

	tests := []struct {
		name    string
		votes   []models.Vote
		allowed []string
		tied    int
	}{
		{
			name:    "two way tie picks one of the leaders",
			votes:   []models.Vote{vote("a", "a"), vote("b", "a"), vote("c", "b"), vote("d", "b")},
			allowed: []string{"a", "b"},
			tied:    1,
		},
		{
			name:    "clear majority always wins",
			votes:   []models.Vote{vote("a", "a"), vote("b", "a"), vote("c", "a"), vote("d", "b")},
			allowed: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := map[string]bool{}
			for seed := int64(1); seed <= 20; seed++ {
				winner, tied := VoteWinner(tt.votes, seats, random.New(&random.Config{Seed: seed}))
				if !slices.Contains(tt.allowed, winner) {
					t.Fatalf("seed %d: winner = %s, want one of %v", seed, winner, tt.allowed)
				}
				if len(tied) != tt.tied {
					t.Errorf("seed %d: tied = %v, want %d others", seed, tied, tt.tied)
				}
				seen[winner] = true
			}
			if len(tt.allowed) == 1 && len(seen) != 1 {
				t.Errorf("winners = %v, want only %v", seen, tt.allowed)
			}
		})
	}
}

package room

import (
	"sync"
	"time"

	"github.com/KirkDiggler/trickroom/internal/common/clock"
	"github.com/KirkDiggler/trickroom/internal/deck"
	"github.com/KirkDiggler/trickroom/internal/models"
	"github.com/KirkDiggler/trickroom/internal/random"
	"github.com/KirkDiggler/trickroom/internal/shuffle"
)

// Room is one table of players sharing a deck, a turn rotation and a
// leaderboard. Every operation on a room is serialized by its mutex.
type Room struct {
	mu sync.Mutex

	id     string
	number int

	order   []string
	players map[string]*models.Player

	ruleVariant int
	turn        string
	playedCards []models.Play
	played      map[string]bool
	withCards   []string
	leaderboard map[string]*models.LeaderboardEntry
	settings    models.RoundSettings
	phase       models.RoomPhase

	voteMode     bool
	disableRules bool
	disableChat  bool

	// epoch invalidates result timers scheduled before a reset or deal
	epoch int

	resultDelay  time.Duration
	onTrickReset func(state models.RoomState)
	random       random.Source
	clock        clock.Clock
}

// New creates a room seating the given players and picks a random first turn
func New(cfg *Config) (*Room, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Random == nil {
		return nil, ErrNilRandom
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}
	if cfg.ID == "" {
		return nil, ErrEmptyRoomID
	}
	if cfg.Number < 1 {
		return nil, ErrInvalidNumber
	}

	delay := cfg.ResultDelay
	if delay <= 0 {
		delay = DefaultResultDelay
	}

	r := &Room{
		id:           cfg.ID,
		number:       cfg.Number,
		resultDelay:  delay,
		onTrickReset: cfg.OnTrickReset,
		random:       cfg.Random,
		clock:        cfg.Clock,
	}
	r.seatLocked(cfg.Players)
	r.resetLocked(false)

	return r, nil
}

// ID returns the room's identifier
func (r *Room) ID() string {
	return r.id
}

// Number returns the room's position on the promotion ladder
func (r *Room) Number() int {
	return r.number
}

// PlayerIDs returns the seated players in turn order
func (r *Room) PlayerIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// HasPlayer reports whether the player is seated in the room
func (r *Room) HasPlayer(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.players[playerID]
	return ok
}

// SetRuleVariant selects which rule sheet the room plays under
func (r *Room) SetRuleVariant(variant int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ruleVariant = variant
}

// RuleVariant returns the room's rule sheet
func (r *Room) RuleVariant() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ruleVariant
}

// DealCards shuffles a fresh deck of rankRange cards per suit and splits it
// evenly across the seated players. Cards that do not divide evenly are
// left out of play.
func (r *Room) DealCards(rankRange int) error {
	if rankRange < 1 {
		return ErrInvalidRankRange
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.epoch++
	r.playedCards = nil
	r.played = map[string]bool{}
	r.settings = models.RoundSettings{}

	if len(r.order) == 0 {
		r.withCards = nil
		r.turn = ""
		r.phase = models.RoomPhaseDealing
		return nil
	}

	cards := shuffle.Shuffle(r.random, deck.BuildDeck(rankRange))
	size := len(cards) / len(r.order)
	chunks := shuffle.Chunk(cards, size)

	for i, id := range r.order {
		var hand []deck.Card
		if i < len(chunks) && size > 0 {
			hand = chunks[i]
			if len(hand) > size {
				hand = hand[:size]
			}
		}
		r.players[id].Hand = hand
	}

	r.refreshWithCardsLocked()
	if len(r.withCards) == 0 {
		r.turn = ""
		r.phase = models.RoomPhaseDealing
		return nil
	}

	r.phase = models.RoomPhaseAwaitingPlays
	if !r.hasCardsLocked(r.turn) {
		r.turn = r.nextTurnLocked(r.turn, r.hasCardsLocked)
	}

	return nil
}

// Reset clears hands, plays and scores. A voting round also disables the
// rule sheet and chat for the room's clients.
func (r *Room) Reset(isVotingRound bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetLocked(isVotingRound)
}

// ReplacePlayers seats a new set of players and resets the room, keeping
// its current vote mode. Incoming players must not be seated in another
// room; use Reseat to move players between rooms.
func (r *Room) ReplacePlayers(players []*models.Player) {
	Reseat([]*Room{r}, [][]*models.Player{players})
}

// Reseat seats seats[i] in rooms[i] and resets every room, each keeping its
// vote mode. Players move between the given rooms, so every room's lock is
// held until the whole move is done. Rooms are locked in slice order;
// callers must always pass rooms in the same order.
func Reseat(rooms []*Room, seats [][]*models.Player) {
	lockAll(rooms)
	defer unlockAll(rooms)

	for _, r := range rooms {
		for _, p := range r.players {
			p.Hand = nil
		}
	}
	for i, r := range rooms {
		var players []*models.Player
		if i < len(seats) {
			players = seats[i]
		}
		r.seatLocked(players)
		r.resetLocked(r.voteMode)
	}
}

// RemovePlayer takes a departing player out of the room. Cards they already
// played stay on the table. If the departure leaves every remaining player
// done with the trick, the trick completes as if the last card was played.
func (r *Room) RemovePlayer(playerID string) (*PlayResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return nil, ErrNotInRoom
	}

	if r.turn == playerID {
		if r.phase == models.RoomPhaseAwaitingPlays {
			r.turn = r.nextTurnLocked(playerID, func(id string) bool {
				return id != playerID && r.awaitingLocked(id)
			})
		} else {
			r.turn = r.nextTurnLocked(playerID, func(id string) bool {
				return id != playerID && r.hasCardsLocked(id)
			})
		}
	}

	p.Hand = nil
	delete(r.players, playerID)
	delete(r.leaderboard, playerID)
	r.order = without(r.order, playerID)
	r.withCards = without(r.withCards, playerID)

	votes := r.settings.Votes[:0:0]
	for _, v := range r.settings.Votes {
		if v.VoterID != playerID && v.ChosenID != playerID {
			votes = append(votes, v)
		}
	}
	r.settings.Votes = votes

	result := &PlayResult{}
	switch r.phase {
	case models.RoomPhaseAwaitingPlays:
		if len(r.withCards) == 0 {
			r.clearTableLocked()
			break
		}
		if r.trickCompleteLocked() {
			result = r.completeTrickLocked()
		}
	case models.RoomPhaseVoting:
		if len(r.order) == 0 {
			r.clearTableLocked()
			break
		}
		result.TrickComplete = true
		result.Voting = true
		if len(r.settings.Votes) >= len(r.order) {
			result.Result = r.finishVoteLocked()
			result.Voting = false
		}
	}
	result.Turn = r.turn

	return result, nil
}

// Hand returns a copy of the player's cards
func (r *Room) Hand(playerID string) ([]deck.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return nil, ErrNotInRoom
	}
	return append([]deck.Card{}, p.Hand...), nil
}

// Hands returns a copy of every seated player's cards
func (r *Room) Hands() []models.Hand {
	r.mu.Lock()
	defer r.mu.Unlock()

	hands := make([]models.Hand, 0, len(r.order))
	for _, id := range r.order {
		hands = append(hands, models.Hand{
			PlayerID: id,
			Cards:    append([]deck.Card{}, r.players[id].Hand...),
		})
	}
	return hands
}

// Leaderboard returns the room's scores in seat order
func (r *Room) Leaderboard() models.Leaderboard {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaderboardLocked()
}

// State returns a snapshot of the room for clients
func (r *Room) State() models.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

// Phase returns where the room is in its trick cycle
func (r *Room) Phase() models.RoomPhase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// ReadLeaderboards holds every room's lock at once so the returned
// leaderboards describe a single instant. Rooms are locked in slice order;
// callers must always pass rooms in the same order.
func ReadLeaderboards(rooms []*Room) []models.Leaderboard {
	lockAll(rooms)
	defer unlockAll(rooms)

	boards := make([]models.Leaderboard, 0, len(rooms))
	for _, r := range rooms {
		boards = append(boards, r.leaderboardLocked())
	}
	return boards
}

func lockAll(rooms []*Room) {
	for _, r := range rooms {
		r.mu.Lock()
	}
}

func unlockAll(rooms []*Room) {
	for i := len(rooms) - 1; i >= 0; i-- {
		rooms[i].mu.Unlock()
	}
}

func (r *Room) seatLocked(players []*models.Player) {
	r.order = make([]string, 0, len(players))
	r.players = make(map[string]*models.Player, len(players))
	for _, p := range players {
		if p == nil {
			continue
		}
		if _, dup := r.players[p.ID]; dup {
			continue
		}
		r.order = append(r.order, p.ID)
		r.players[p.ID] = p
	}
}

func (r *Room) resetLocked(isVotingRound bool) {
	r.epoch++

	for _, p := range r.players {
		p.Hand = nil
	}

	r.leaderboard = make(map[string]*models.LeaderboardEntry, len(r.order))
	for _, id := range r.order {
		r.leaderboard[id] = &models.LeaderboardEntry{
			PlayerID: id,
			Nickname: r.players[id].Nickname,
		}
	}

	r.turn, _ = random.Pick(r.random, r.order)
	r.playedCards = nil
	r.played = map[string]bool{}
	r.withCards = nil
	r.settings = models.RoundSettings{}
	r.voteMode = isVotingRound
	r.disableRules = isVotingRound
	r.disableChat = isVotingRound
	r.phase = models.RoomPhaseDealing
}

// clearTableLocked drops a trick nobody is left to finish
func (r *Room) clearTableLocked() {
	r.epoch++
	r.playedCards = nil
	r.played = map[string]bool{}
	r.settings = models.RoundSettings{}
	r.refreshWithCardsLocked()
	if len(r.withCards) == 0 {
		r.phase = models.RoomPhaseDealing
		r.turn = ""
		return
	}
	r.phase = models.RoomPhaseAwaitingPlays
	if !r.hasCardsLocked(r.turn) {
		r.turn = r.nextTurnLocked(r.turn, r.hasCardsLocked)
	}
}

func (r *Room) refreshWithCardsLocked() {
	r.withCards = r.withCards[:0:0]
	for _, id := range r.order {
		if len(r.players[id].Hand) > 0 {
			r.withCards = append(r.withCards, id)
		}
	}
}

func (r *Room) hasCardsLocked(playerID string) bool {
	p, ok := r.players[playerID]
	return ok && len(p.Hand) > 0
}

// awaitingLocked reports whether the player still owes a card this trick
func (r *Room) awaitingLocked(playerID string) bool {
	if r.played[playerID] {
		return false
	}
	for _, id := range r.withCards {
		if id == playerID {
			return true
		}
	}
	return false
}

// nextTurnLocked walks the seat rotation after from and returns the first
// player accepted by eligible. A from that is not seated starts the walk at
// the first seat.
func (r *Room) nextTurnLocked(from string, eligible func(id string) bool) string {
	n := len(r.order)
	if n == 0 {
		return ""
	}

	start := -1
	for i, id := range r.order {
		if id == from {
			start = i
			break
		}
	}

	for step := 1; step <= n; step++ {
		idx := start + step
		if start < 0 {
			idx = step - 1
		}
		id := r.order[idx%n]
		if eligible(id) {
			return id
		}
	}
	return ""
}

func (r *Room) leaderboardLocked() models.Leaderboard {
	board := models.Leaderboard{
		RoomID:     r.id,
		RoomNumber: r.number,
		Entries:    make([]models.LeaderboardEntry, 0, len(r.order)),
	}
	for _, id := range r.order {
		if entry, ok := r.leaderboard[id]; ok {
			board.Entries = append(board.Entries, *entry)
		}
	}
	return board
}

func (r *Room) stateLocked() models.RoomState {
	state := models.RoomState{
		RoomID:       r.id,
		RoomNumber:   r.number,
		Phase:        r.phase,
		Players:      make([]models.PlayerInfo, 0, len(r.order)),
		RuleVariant:  r.ruleVariant,
		Turn:         r.turn,
		PlayedCards:  append([]models.Play{}, r.playedCards...),
		Leaderboard:  r.leaderboardLocked().Entries,
		VoteMode:     r.voteMode,
		DisableRules: r.disableRules,
		DisableChat:  r.disableChat,
		HandSizes:    make(map[string]int, len(r.order)),
	}

	state.Settings = r.settings
	state.Settings.Votes = append([]models.Vote{}, r.settings.Votes...)

	for _, id := range r.order {
		p := r.players[id]
		state.Players = append(state.Players, models.PlayerInfo{
			ID:       p.ID,
			Nickname: p.Nickname,
			RoomID:   r.id,
		})
		state.HandSizes[id] = len(p.Hand)
	}

	return state
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

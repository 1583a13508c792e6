package room

import (
	"github.com/KirkDiggler/trickroom/internal/deck"
	"github.com/KirkDiggler/trickroom/internal/models"
	"github.com/KirkDiggler/trickroom/internal/random"
)

// TrumpSuit returns the trump suit for a rule variant. Variant 0 trumps
// spades, variant 1 trumps diamonds and every other variant plays without
// trump.
func TrumpSuit(variant int) (deck.Suit, bool) {
	switch variant {
	case 0:
		return deck.Spade, true
	case 1:
		return deck.Diamond, true
	default:
		return "", false
	}
}

// PlayCard lays a card from the player's hand on the table. The trick
// completes once every player who started it with cards has played.
func (r *Room) PlayCard(playerID string, card deck.Card) (*PlayResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != models.RoomPhaseAwaitingPlays || r.settings.DisablePlayCard {
		return nil, ErrPlayDisabled
	}

	p, ok := r.players[playerID]
	if !ok {
		return nil, ErrNotInRoom
	}
	if r.turn != playerID || !r.awaitingLocked(playerID) {
		return nil, ErrNotYourTurn
	}
	if !deck.Contains(p.Hand, card) {
		return nil, ErrCardNotInHand
	}

	p.Hand = deck.Remove(p.Hand, card)
	r.playedCards = append(r.playedCards, models.Play{PlayerID: playerID, Card: card})
	r.played[playerID] = true

	if r.trickCompleteLocked() {
		result := r.completeTrickLocked()
		result.Turn = r.turn
		return result, nil
	}

	r.turn = r.nextTurnLocked(playerID, r.awaitingLocked)

	return &PlayResult{Turn: r.turn}, nil
}

// Resolve picks the winning play of a completed trick. The highest trump
// wins when any trump was played, otherwise the highest card of the suit
// that was led. Equal ranks are broken at random; the other tied plays are
// returned alongside the winner.
func Resolve(plays []models.Play, variant int, src random.Source) (models.Play, []models.Play) {
	if len(plays) == 0 {
		return models.Play{}, nil
	}

	suit := plays[0].Card.Suit
	if trump, ok := TrumpSuit(variant); ok {
		for _, play := range plays {
			if play.Card.Suit == trump {
				suit = trump
				break
			}
		}
	}

	best := 0
	var tied []models.Play
	for _, play := range plays {
		if play.Card.Suit != suit {
			continue
		}
		switch {
		case play.Card.Rank > best:
			best = play.Card.Rank
			tied = []models.Play{play}
		case play.Card.Rank == best:
			tied = append(tied, play)
		}
	}

	winner, _ := random.Pick(src, tied)
	others := make([]models.Play, 0, len(tied))
	for _, play := range tied {
		if play != winner {
			others = append(others, play)
		}
	}

	return winner, others
}

func (r *Room) trickCompleteLocked() bool {
	if len(r.withCards) == 0 {
		return false
	}
	for _, id := range r.withCards {
		if !r.played[id] {
			return false
		}
	}
	return true
}

// completeTrickLocked either opens voting or resolves the trick by rank
func (r *Room) completeTrickLocked() *PlayResult {
	r.settings.DisablePlayCard = true

	if r.voteMode {
		r.phase = models.RoomPhaseVoting
		r.settings.ShowVoting = true
		r.settings.Votes = nil
		return &PlayResult{TrickComplete: true, Voting: true}
	}

	r.phase = models.RoomPhaseResolving
	winner, tied := Resolve(r.playedCards, r.ruleVariant, r.random)

	result := &models.TrickResult{
		RoomID:   r.id,
		WinnerID: winner.PlayerID,
		Plays:    append([]models.Play{}, r.playedCards...),
	}
	for _, play := range tied {
		result.TiedWith = append(result.TiedWith, play.PlayerID)
	}

	r.awardLocked(winner.PlayerID)
	r.advanceAfterTrickLocked()
	r.showResultLocked()

	return &PlayResult{TrickComplete: true, Result: result}
}

func (r *Room) awardLocked(winnerID string) {
	if entry, ok := r.leaderboard[winnerID]; ok {
		entry.Score++
	}
	r.settings.Winner = winnerID
}

// advanceAfterTrickLocked moves the turn on from the last player of the
// trick to the next player still holding cards
func (r *Room) advanceAfterTrickLocked() {
	r.turn = r.nextTurnLocked(r.turn, r.hasCardsLocked)
}

// showResultLocked puts the winner on display and schedules the table to be
// cleared once the result delay passes
func (r *Room) showResultLocked() {
	r.phase = models.RoomPhaseShowingResult
	r.settings.ShowWinner = true
	r.settings.ShowVoting = false
	r.settings.DisablePlayCard = true

	r.epoch++
	epoch := r.epoch
	r.clock.AfterFunc(r.resultDelay, func() {
		r.finishTrick(epoch)
	})
}

// finishTrick clears the table after a result was shown. Timers scheduled
// before the latest deal or reset are ignored.
func (r *Room) finishTrick(epoch int) {
	r.mu.Lock()
	if epoch != r.epoch || r.phase != models.RoomPhaseShowingResult {
		r.mu.Unlock()
		return
	}

	r.phase = models.RoomPhaseResetting
	r.playedCards = nil
	r.played = map[string]bool{}
	r.settings = models.RoundSettings{}
	r.refreshWithCardsLocked()

	if len(r.withCards) == 0 {
		r.phase = models.RoomPhaseDealing
		r.turn = ""
	} else {
		r.phase = models.RoomPhaseAwaitingPlays
		if !r.hasCardsLocked(r.turn) {
			r.turn = r.nextTurnLocked(r.turn, r.hasCardsLocked)
		}
	}

	state := r.stateLocked()
	hook := r.onTrickReset
	r.mu.Unlock()

	if hook != nil {
		hook(state)
	}
}

package room

import (
	"github.com/KirkDiggler/trickroom/internal/models"
	"github.com/KirkDiggler/trickroom/internal/random"
)

// CastVote records the voter's choice of trick winner. A second vote from
// the same player replaces the first. Voting completes when every seated
// player has a vote on record.
func (r *Room) CastVote(voterID, chosenID string) (*VoteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != models.RoomPhaseVoting {
		return nil, ErrNotVoting
	}
	if _, ok := r.players[voterID]; !ok {
		return nil, ErrNotInRoom
	}
	if _, ok := r.players[chosenID]; !ok {
		return nil, ErrInvalidVote
	}

	result := &VoteResult{}
	for i, v := range r.settings.Votes {
		if v.VoterID == voterID {
			r.settings.Votes[i].ChosenID = chosenID
			result.Replaced = true
			break
		}
	}
	if !result.Replaced {
		r.settings.Votes = append(r.settings.Votes, models.Vote{VoterID: voterID, ChosenID: chosenID})
	}

	result.Votes = append([]models.Vote{}, r.settings.Votes...)
	result.Tally = TallyVotes(r.settings.Votes)

	if len(r.settings.Votes) >= len(r.order) {
		result.Complete = true
		result.Result = r.finishVoteLocked()
	}

	return result, nil
}

// Tally returns the votes received per player in the current round
func (r *Room) Tally() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return TallyVotes(r.settings.Votes)
}

// TallyVotes counts votes received per chosen player
func TallyVotes(votes []models.Vote) map[string]int {
	tally := make(map[string]int, len(votes))
	for _, v := range votes {
		tally[v.ChosenID]++
	}
	return tally
}

// VoteWinner returns the player with the most votes. Ties are broken at
// random among the leaders, considered in seat order.
func VoteWinner(votes []models.Vote, seats []string, src random.Source) (string, []string) {
	tally := TallyVotes(votes)

	best := 0
	var leaders []string
	for _, id := range seats {
		count := tally[id]
		if count == 0 {
			continue
		}
		switch {
		case count > best:
			best = count
			leaders = []string{id}
		case count == best:
			leaders = append(leaders, id)
		}
	}

	winner, _ := random.Pick(src, leaders)
	others := make([]string, 0, len(leaders))
	for _, id := range leaders {
		if id != winner {
			others = append(others, id)
		}
	}

	return winner, others
}

func (r *Room) finishVoteLocked() *models.TrickResult {
	winner, tied := VoteWinner(r.settings.Votes, r.order, r.random)

	result := &models.TrickResult{
		RoomID:   r.id,
		WinnerID: winner,
		Plays:    append([]models.Play{}, r.playedCards...),
		ByVote:   true,
		Tally:    TallyVotes(r.settings.Votes),
		TiedWith: tied,
	}
	if len(tied) == 0 {
		result.TiedWith = nil
	}

	r.awardLocked(winner)
	r.advanceAfterTrickLocked()
	r.showResultLocked()

	return result
}

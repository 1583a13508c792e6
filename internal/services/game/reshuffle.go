package game

import (
	"fmt"
	"sort"

	"github.com/KirkDiggler/trickroom/internal/models"
	"github.com/KirkDiggler/trickroom/internal/services/messaging"
)

// RoomStanding is one room's leaderboard as input to a reshuffle
type RoomStanding struct {
	RoomNumber int

	// Entries are in seat order
	Entries []models.LeaderboardEntry
}

// Move records where one player ends up after a reshuffle
type Move struct {
	PlayerID string
	From     int
	To       int
	Movement messaging.Movement
}

// Assignment is the outcome of a reshuffle: the players each room number
// should seat, and how every player moved
type Assignment struct {
	Rooms map[int][]string
	Moves map[string]Move

	// Snapshot holds the leaderboards the assignment was computed from
	Snapshot []models.Leaderboard
}

// promoteCount is how many of a room's top players move up
func promoteCount(players int) int {
	if players > 4 {
		return 2
	}
	return 1
}

// Reshuffle computes new room membership from each room's own leaderboard.
// The lowest scorer moves to the previous room on the cycle, the top scorer
// (top two in rooms of more than four) moves to the next room, and everyone
// else stays. Ties keep seat order, so among equal scores the earlier seat
// ranks lower. The result is checked to be a partition of the input players.
func Reshuffle(ladder []RoomStanding) (*Assignment, error) {
	assignment := &Assignment{
		Rooms: make(map[int][]string, len(ladder)),
		Moves: make(map[string]Move),
	}

	rooms := append([]RoomStanding(nil), ladder...)
	sort.SliceStable(rooms, func(i, j int) bool {
		return rooms[i].RoomNumber < rooms[j].RoomNumber
	})

	n := len(rooms)
	for _, r := range rooms {
		if _, dup := assignment.Rooms[r.RoomNumber]; dup {
			return nil, fmt.Errorf("%w: room %d listed twice", ErrReshuffleInvariant, r.RoomNumber)
		}
		assignment.Rooms[r.RoomNumber] = []string{}
	}

	place := func(id string, from, to int, movement messaging.Movement) {
		if from == to {
			movement = messaging.MovementStayed
		}
		assignment.Rooms[to] = append(assignment.Rooms[to], id)
		assignment.Moves[id] = Move{PlayerID: id, From: from, To: to, Movement: movement}
	}

	for i, r := range rooms {
		if len(r.Entries) == 0 {
			continue
		}

		ranked := append([]models.LeaderboardEntry(nil), r.Entries...)
		sort.SliceStable(ranked, func(a, b int) bool {
			return ranked[a].Score < ranked[b].Score
		})

		down := rooms[(i-1+n)%n].RoomNumber
		up := rooms[(i+1)%n].RoomNumber

		place(ranked[0].PlayerID, r.RoomNumber, down, messaging.MovementDemoted)

		rest := ranked[1:]
		count := promoteCount(len(ranked))
		if count > len(rest) {
			count = len(rest)
		}
		for _, entry := range rest[:len(rest)-count] {
			place(entry.PlayerID, r.RoomNumber, r.RoomNumber, messaging.MovementStayed)
		}
		for _, entry := range rest[len(rest)-count:] {
			place(entry.PlayerID, r.RoomNumber, up, messaging.MovementPromoted)
		}
	}

	if err := verifyPartition(rooms, assignment); err != nil {
		return nil, err
	}

	return assignment, nil
}

// verifyPartition checks every input player appears exactly once in the output
func verifyPartition(rooms []RoomStanding, assignment *Assignment) error {
	before := make(map[string]bool)
	for _, r := range rooms {
		for _, entry := range r.Entries {
			if before[entry.PlayerID] {
				return fmt.Errorf("%w: player %s seated twice", ErrReshuffleInvariant, entry.PlayerID)
			}
			before[entry.PlayerID] = true
		}
	}

	after := make(map[string]bool, len(before))
	for _, ids := range assignment.Rooms {
		for _, id := range ids {
			if after[id] {
				return fmt.Errorf("%w: player %s assigned twice", ErrReshuffleInvariant, id)
			}
			if !before[id] {
				return fmt.Errorf("%w: unknown player %s assigned", ErrReshuffleInvariant, id)
			}
			after[id] = true
		}
	}

	if len(after) != len(before) {
		return fmt.Errorf("%w: %d of %d players assigned", ErrReshuffleInvariant, len(after), len(before))
	}

	return nil
}

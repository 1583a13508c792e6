package deck

import (
	"fmt"
	"strconv"
	"strings"
)

// Suit is one of the four card suits
type Suit string

const (
	Club    Suit = "CLUB"
	Heart   Suit = "HEART"
	Diamond Suit = "DIAMOND"
	Spade   Suit = "SPADE"
)

// Suits lists every suit in deck-building order
var Suits = []Suit{Club, Heart, Diamond, Spade}

// DeckError is a custom error type for card parsing errors
type DeckError string

// Error implements the error interface
func (e DeckError) Error() string {
	return string(e)
}

// ErrMalformedToken is returned when a card token does not match SUIT-<integer>
const ErrMalformedToken DeckError = "malformed card token"

// Valid reports whether s is a known suit
func (s Suit) Valid() bool {
	switch s {
	case Club, Heart, Diamond, Spade:
		return true
	}
	return false
}

// Card is an immutable suit and rank pair. Its text form is the card token,
// for example SPADE-10.
type Card struct {
	Suit Suit
	Rank int
}

// String returns the card token
func (c Card) String() string {
	return fmt.Sprintf("%s-%d", c.Suit, c.Rank)
}

// MarshalText encodes the card as its token
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a card token
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// BuildDeck returns 4 x rankRange cards, one per suit per rank 1..rankRange,
// in suit-major order
func BuildDeck(rankRange int) []Card {
	if rankRange < 1 {
		return []Card{}
	}

	cards := make([]Card, 0, len(Suits)*rankRange)
	for _, suit := range Suits {
		for rank := 1; rank <= rankRange; rank++ {
			cards = append(cards, Card{Suit: suit, Rank: rank})
		}
	}
	return cards
}

// Parse converts a SUIT-<integer> token into a Card
func Parse(token string) (Card, error) {
	suit, rawRank, ok := strings.Cut(token, "-")
	if !ok {
		return Card{}, fmt.Errorf("%w: %q", ErrMalformedToken, token)
	}

	s := Suit(suit)
	if !s.Valid() {
		return Card{}, fmt.Errorf("%w: unknown suit in %q", ErrMalformedToken, token)
	}

	rank, err := strconv.Atoi(rawRank)
	if err != nil || rank < 1 {
		return Card{}, fmt.Errorf("%w: bad rank in %q", ErrMalformedToken, token)
	}

	return Card{Suit: s, Rank: rank}, nil
}

// SuitOf returns the suit of a card token
func SuitOf(token string) (Suit, error) {
	card, err := Parse(token)
	if err != nil {
		return "", err
	}
	return card.Suit, nil
}

// RankOf returns the rank of a card token
func RankOf(token string) (int, error) {
	card, err := Parse(token)
	if err != nil {
		return 0, err
	}
	return card.Rank, nil
}

// Contains reports whether hand holds card
func Contains(hand []Card, card Card) bool {
	for _, c := range hand {
		if c == card {
			return true
		}
	}
	return false
}

// Remove returns hand without the first occurrence of card
func Remove(hand []Card, card Card) []Card {
	updated := make([]Card, 0, len(hand))
	removed := false
	for _, c := range hand {
		if !removed && c == card {
			removed = true
			continue
		}
		updated = append(updated, c)
	}
	return updated
}

package poker

import (
	"errors"
	"fmt"
	"strings"
)

// Rank is a card rank from Two (0) through Ace (12).
type Rank uint8

const (
	Two Rank = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// NumRanks is the number of distinct ranks in a deck.
const NumRanks = 13

const rankChars = "23456789TJQKA"

// String returns the single-character rank token ("2".."9", "T", "J", "Q", "K", "A").
func (r Rank) String() string {
	if r > Ace {
		return "?"
	}
	return rankChars[r : r+1]
}

// Suit is a card suit. The order matches the C, D, H, S token order.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// NumSuits is the number of suits in a deck.
const NumSuits = 4

const suitChars = "CDHS"

// String returns the single-character uppercase suit token.
func (s Suit) String() string {
	if s > Spades {
		return "?"
	}
	return suitChars[s : s+1]
}

// DeckSize is the number of distinct cards.
const DeckSize = NumRanks * NumSuits

var (
	// ErrInvalidCard is returned when a token does not name one of the 52 cards.
	ErrInvalidCard = errors.New("invalid card")
	// ErrDuplicateCard is returned when the same card is given more than once.
	ErrDuplicateCard = errors.New("duplicate card")
)

// Card is an immutable playing card. Cards compare equal by value.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a card from its rank and suit
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the normalized two-character token, e.g. "AH" or "TC".
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Index maps the card onto 0..51, rank-major.
func (c Card) Index() int {
	return int(c.Rank)*NumSuits + int(c.Suit)
}

// Valid reports whether the card is one of the 52 legal cards.
func (c Card) Valid() bool {
	return c.Rank <= Ace && c.Suit <= Spades
}

// cardFromIndex is the inverse of Card.Index.
func cardFromIndex(i int) Card {
	return Card{Rank: Rank(i / NumSuits), Suit: Suit(i % NumSuits)}
}

var universe = func() [DeckSize]Card {
	var cards [DeckSize]Card
	for i := range cards {
		cards[i] = cardFromIndex(i)
	}
	return cards
}()

// AllCards returns the full 52-card universe in a stable order.
func AllCards() []Card {
	cards := make([]Card, DeckSize)
	copy(cards, universe[:])
	return cards
}

// ParseCard parses a two-character token such as "AH" or "td".
// Parsing is case-insensitive.
func ParseCard(token string) (Card, error) {
	if len(token) != 2 {
		return Card{}, fmt.Errorf("%w: %q must be exactly 2 characters", ErrInvalidCard, token)
	}

	upper := strings.ToUpper(token)
	rank := strings.IndexByte(rankChars, upper[0])
	if rank < 0 {
		return Card{}, fmt.Errorf("%w: unknown rank %q in %q", ErrInvalidCard, token[0], token)
	}
	suit := strings.IndexByte(suitChars, upper[1])
	if suit < 0 {
		return Card{}, fmt.Errorf("%w: unknown suit %q in %q", ErrInvalidCard, token[1], token)
	}

	return NewCard(Rank(rank), Suit(suit)), nil
}

// ParseCards parses each token and rejects repeated cards.
func ParseCards(tokens ...string) ([]Card, error) {
	cards := make([]Card, 0, len(tokens))
	var seen CardSet
	for _, token := range tokens {
		card, err := ParseCard(token)
		if err != nil {
			return nil, err
		}
		if seen.Contains(card) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCard, card)
		}
		seen.Add(card)
		cards = append(cards, card)
	}
	return cards, nil
}

// MustParseCards parses cards and panics on error (for tests)
func MustParseCards(tokens ...string) []Card {
	cards, err := ParseCards(tokens...)
	if err != nil {
		panic(fmt.Sprintf("failed to parse cards %v: %v", tokens, err))
	}
	return cards
}

// FormatCards joins card tokens with single spaces.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, card := range cards {
		parts[i] = card.String()
	}
	return strings.Join(parts, " ")
}

package poker

// Source is the random source used for dealing. *rand.Rand from math/rand/v2
// satisfies it; tests can supply scripted implementations.
type Source interface {
	IntN(n int) int
}

// Deck is the working set of cards that have not been dealt yet.
type Deck struct {
	cards []Card
	rng   Source
}

// NewDeck creates a deck holding every card except the ones in used.
func NewDeck(rng Source, used ...Card) *Deck {
	return NewDeckExcluding(rng, NewCardSet(used...))
}

// NewDeckExcluding creates a deck holding every card not in used.
func NewDeckExcluding(rng Source, used CardSet) *Deck {
	return &Deck{
		cards: used.Complement(),
		rng:   rng,
	}
}

// Sample draws k distinct cards uniformly without replacement and removes them
// from the deck. If fewer than k cards remain, all remaining cards are returned.
func (d *Deck) Sample(k int) []Card {
	if k > len(d.cards) {
		k = len(d.cards)
	}
	if k <= 0 {
		return nil
	}

	// Partial Fisher-Yates: move each pick to the tail and shrink.
	drawn := make([]Card, k)
	for i := 0; i < k; i++ {
		last := len(d.cards) - 1
		j := d.rng.IntN(last + 1)
		d.cards[j], d.cards[last] = d.cards[last], d.cards[j]
		drawn[i] = d.cards[last]
		d.cards = d.cards[:last]
	}
	return drawn
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the cards left in the deck.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

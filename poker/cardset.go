package poker

import "math/bits"

// CardSet is a set of cards backed by a 52-bit mask, one bit per Card.Index.
type CardSet uint64

// NewCardSet creates a CardSet from a slice of cards
func NewCardSet(cards ...Card) CardSet {
	var cs CardSet
	for _, card := range cards {
		cs.Add(card)
	}
	return cs
}

// Add adds a card to the set
func (cs *CardSet) Add(card Card) {
	*cs |= 1 << card.Index()
}

// Remove removes a card from the set
func (cs *CardSet) Remove(card Card) {
	*cs &^= 1 << card.Index()
}

// Contains checks if a card is in the set
func (cs CardSet) Contains(card Card) bool {
	return cs&(1<<card.Index()) != 0
}

// Union returns the cards present in either set.
func (cs CardSet) Union(other CardSet) CardSet {
	return cs | other
}

// Len returns the number of cards in the set.
func (cs CardSet) Len() int {
	return bits.OnesCount64(uint64(cs))
}

// Cards lists the set's members in universe order.
func (cs CardSet) Cards() []Card {
	cards := make([]Card, 0, cs.Len())
	for m := uint64(cs); m != 0; m &= m - 1 {
		cards = append(cards, cardFromIndex(bits.TrailingZeros64(m)))
	}
	return cards
}

// Complement lists the cards of the universe that are not in the set.
func (cs CardSet) Complement() []Card {
	const full = 1<<DeckSize - 1
	return (^cs & full).Cards()
}

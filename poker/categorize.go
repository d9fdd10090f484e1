package poker

// HoleCardCategory is a coarse preflop strength label.
type HoleCardCategory string

const (
	CategoryPremium HoleCardCategory = "Premium"
	CategoryStrong  HoleCardCategory = "Strong"
	CategoryMedium  HoleCardCategory = "Medium"
	CategoryWeak    HoleCardCategory = "Weak"
	CategoryTrash   HoleCardCategory = "Trash"
	CategoryUnknown HoleCardCategory = "Unknown"
)

// CategorizeHoleCards labels a starting hand:
//
//	Premium  JJ+, AK
//	Strong   TT, AQ, AJ
//	Medium   77-99, suited KQ/KJ/QJ
//	Weak     22-66, suited cards at most two ranks apart
//	Trash    everything else
//
// Invalid or identical cards are Unknown.
func CategorizeHoleCards(card1, card2 Card) HoleCardCategory {
	if !card1.Valid() || !card2.Valid() || card1 == card2 {
		return CategoryUnknown
	}

	low, high := card1.Rank, card2.Rank
	if low > high {
		low, high = high, low
	}
	pair := low == high
	suited := card1.Suit == card2.Suit

	switch {
	case pair && low >= Jack, low == King && high == Ace:
		return CategoryPremium
	case pair && low == Ten, high == Ace && (low == Queen || low == Jack):
		return CategoryStrong
	case pair && low >= Seven, suited && low >= Ten:
		return CategoryMedium
	case pair, suited && high-low <= 2:
		return CategoryWeak
	default:
		return CategoryTrash
	}
}

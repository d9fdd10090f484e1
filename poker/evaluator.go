package poker

import (
	"fmt"
	"sort"
)

// HandType enumerates the categories of poker hands ordered from weakest to strongest.
type HandType uint8

const (
	HighCard HandType = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns a human-readable hand description.
func (t HandType) String() string {
	switch t {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// HandScore is the strength key of a 5-card hand. Scores order by Type first
// and then lexicographically by Tiebreak, which holds the five ranks sorted
// from highest to lowest.
type HandScore struct {
	Type     HandType
	Tiebreak [5]Rank
}

// Compare returns -1 if s is weaker, 0 if equal, 1 if s is stronger
func (s HandScore) Compare(other HandScore) int {
	if s.Type != other.Type {
		if s.Type > other.Type {
			return 1
		}
		return -1
	}
	for i := range s.Tiebreak {
		if s.Tiebreak[i] != other.Tiebreak[i] {
			if s.Tiebreak[i] > other.Tiebreak[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

func (s HandScore) String() string {
	ranks := make([]byte, len(s.Tiebreak))
	for i, r := range s.Tiebreak {
		ranks[i] = rankChars[r]
	}
	return fmt.Sprintf("%s (%s)", s.Type, ranks)
}

// Evaluate classifies a 5-card hand.
func Evaluate(hand [5]Card) HandScore {
	var counts [NumRanks]uint8
	flush := true
	for i, card := range hand {
		counts[card.Rank]++
		if i > 0 && card.Suit != hand[0].Suit {
			flush = false
		}
	}

	var score HandScore
	for i, card := range hand {
		score.Tiebreak[i] = card.Rank
	}
	sort.Slice(score.Tiebreak[:], func(i, j int) bool {
		return score.Tiebreak[i] > score.Tiebreak[j]
	})

	var pairs, trips, quads int
	distinct := 0
	for _, n := range counts {
		switch n {
		case 0:
			continue
		case 2:
			pairs++
		case 3:
			trips++
		case 4:
			quads++
		}
		distinct++
	}

	straight := false
	if distinct == 5 {
		high, low := score.Tiebreak[0], score.Tiebreak[4]
		straight = high-low == 4 || isWheel(counts)
	}

	switch {
	case straight && flush:
		score.Type = StraightFlush
	case quads == 1:
		score.Type = FourOfAKind
	case trips == 1 && pairs == 1:
		score.Type = FullHouse
	case flush:
		score.Type = Flush
	case straight:
		score.Type = Straight
	case trips == 1:
		score.Type = ThreeOfAKind
	case pairs == 2:
		score.Type = TwoPair
	case pairs == 1:
		score.Type = Pair
	default:
		score.Type = HighCard
	}
	return score
}

// isWheel reports whether the ranks are exactly A-2-3-4-5, the only straight
// in which the ace plays low.
func isWheel(counts [NumRanks]uint8) bool {
	for _, r := range [...]Rank{Ace, Two, Three, Four, Five} {
		if counts[r] != 1 {
			return false
		}
	}
	return true
}

// fiveOfSeven lists the 21 ways to pick 5 of 7 positions.
var fiveOfSeven = func() [][5]int {
	combos := make([][5]int, 0, 21)
	// Choosing 5 of 7 is the same as choosing the 2 to leave out.
	for skipA := 0; skipA < 7; skipA++ {
		for skipB := skipA + 1; skipB < 7; skipB++ {
			var combo [5]int
			n := 0
			for i := 0; i < 7; i++ {
				if i != skipA && i != skipB {
					combo[n] = i
					n++
				}
			}
			combos = append(combos, combo)
		}
	}
	return combos
}()

// BestHand returns the strongest score among all 5-card subsets of the 7 cards.
func BestHand(cards [7]Card) HandScore {
	var best HandScore
	for i, combo := range fiveOfSeven {
		var hand [5]Card
		for j, idx := range combo {
			hand[j] = cards[idx]
		}
		score := Evaluate(hand)
		if i == 0 || score.Compare(best) > 0 {
			best = score
		}
	}
	return best
}

// Outcome is the reward of a showdown from the player's point of view.
type Outcome float64

const (
	Loss Outcome = 0
	Tie  Outcome = 0.5
	Win  Outcome = 1
)

// Compare plays the player's seven cards against the opponent's.
func Compare(player, opponent [7]Card) Outcome {
	switch BestHand(player).Compare(BestHand(opponent)) {
	case 1:
		return Win
	case -1:
		return Loss
	default:
		return Tie
	}
}

// SevenCards joins two hole cards and a five-card board.
func SevenCards(hole [2]Card, board [5]Card) [7]Card {
	return [7]Card{hole[0], hole[1], board[0], board[1], board[2], board[3], board[4]}
}

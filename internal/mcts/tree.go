// Package mcts implements the Monte Carlo search tree over community-card
// reveals. Nodes live in a single arena slice and refer to each other by index,
// so the tree owns every node and parents are plain back-references.
package mcts

import (
	"math"

	"github.com/lox/poker-mcts/poker"
)

// BoardSize is the number of community cards at the river.
const BoardSize = 5

var (
	// MaxChildren caps how many children a single expansion creates.
	MaxChildren = 1000

	// Exploration is the UCB1 exploration constant C.
	Exploration = math.Sqrt2
)

// NodeID addresses a node inside its Tree.
type NodeID int

// None is the parent of the root.
const None NodeID = -1

type node struct {
	revealed []poker.Card
	used     poker.CardSet
	parent   NodeID
	children []NodeID
	visits   int
	wins     float64
}

// Tree is a search tree rooted at the pre-flop state for one pair of hole cards.
// It is not safe for concurrent use.
type Tree struct {
	nodes []node
	hole  [2]poker.Card
}

// New creates a tree whose root has an empty board and has the hole cards marked used.
func New(hole [2]poker.Card) *Tree {
	return &Tree{
		nodes: []node{{
			used:   poker.NewCardSet(hole[:]...),
			parent: None,
		}},
		hole: hole,
	}
}

// Root returns the root node.
func (t *Tree) Root() NodeID { return 0 }

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Hole returns the player's hole cards.
func (t *Tree) Hole() [2]poker.Card { return t.hole }

// Visits returns the number of simulations that passed through id.
func (t *Tree) Visits(id NodeID) int { return t.nodes[id].visits }

// Wins returns the cumulative reward accumulated at id.
func (t *Tree) Wins(id NodeID) float64 { return t.nodes[id].wins }

// Parent returns the parent of id, or None for the root.
func (t *Tree) Parent(id NodeID) NodeID { return t.nodes[id].parent }

// Used returns the cards committed along the branch ending at id.
func (t *Tree) Used(id NodeID) poker.CardSet { return t.nodes[id].used }

// Revealed returns a copy of the board cards placed along the branch ending at id.
func (t *Tree) Revealed(id NodeID) []poker.Card {
	out := make([]poker.Card, len(t.nodes[id].revealed))
	copy(out, t.nodes[id].revealed)
	return out
}

// Children returns a copy of the child ids of id.
func (t *Tree) Children(id NodeID) []NodeID {
	out := make([]NodeID, len(t.nodes[id].children))
	copy(out, t.nodes[id].children)
	return out
}

// Terminal reports whether id sits at the river.
func (t *Tree) Terminal(id NodeID) bool {
	return len(t.nodes[id].revealed) >= BoardSize
}

// UCB1 scores id for selection. Unvisited nodes score +Inf so every sibling is
// tried once before exploitation starts. The root has no parent and scores its
// plain average.
func (t *Tree) UCB1(id NodeID) float64 {
	n := &t.nodes[id]
	if n.visits == 0 {
		return math.Inf(1)
	}
	mean := n.wins / float64(n.visits)
	if n.parent == None {
		return mean
	}
	parentVisits := float64(t.nodes[n.parent].visits)
	return mean + Exploration*math.Sqrt(math.Log(parentVisits)/float64(n.visits))
}

// Select walks from the root, taking the child with the highest UCB1 score at
// each step, and returns the first node without children. Ties go to the
// earliest child.
func (t *Tree) Select() NodeID {
	id := t.Root()
	for len(t.nodes[id].children) > 0 {
		best, bestScore := None, math.Inf(-1)
		for _, child := range t.nodes[id].children {
			score := t.UCB1(child)
			if best == None || score > bestScore {
				best, bestScore = child, score
			}
		}
		id = best
	}
	return id
}

// Expand creates one child per card not yet used on id's branch and returns one
// of them chosen uniformly with src. River nodes, nodes that already have
// children, and nodes with no cards left are returned unchanged.
func (t *Tree) Expand(id NodeID, src poker.Source) NodeID {
	if t.Terminal(id) || len(t.nodes[id].children) > 0 {
		return id
	}

	parent := t.nodes[id]
	candidates := parent.used.Complement()
	if len(candidates) > MaxChildren {
		candidates = candidates[:MaxChildren]
	}
	if len(candidates) == 0 {
		return id
	}

	children := make([]NodeID, 0, len(candidates))
	for _, card := range candidates {
		revealed := make([]poker.Card, len(parent.revealed), len(parent.revealed)+1)
		copy(revealed, parent.revealed)
		used := parent.used
		used.Add(card)

		children = append(children, NodeID(len(t.nodes)))
		t.nodes = append(t.nodes, node{
			revealed: append(revealed, card),
			used:     used,
			parent:   id,
		})
	}
	t.nodes[id].children = children

	return children[src.IntN(len(children))]
}

// Board completes id's board at random from the cards that are neither used
// on the branch nor held by the opponent. The drawn cards are local to this
// call. It reports false if too few cards remain.
func (t *Tree) Board(id NodeID, opponent [2]poker.Card, src poker.Source) ([BoardSize]poker.Card, bool) {
	n := &t.nodes[id]

	var board [BoardSize]poker.Card
	copy(board[:], n.revealed)
	missing := BoardSize - len(n.revealed)
	if missing == 0 {
		return board, true
	}

	excluded := n.used
	excluded.Add(opponent[0])
	excluded.Add(opponent[1])
	drawn := poker.NewDeckExcluding(src, excluded).Sample(missing)
	if len(drawn) < missing {
		return board, false
	}
	copy(board[len(n.revealed):], drawn)
	return board, true
}

// Rollout deals a random completion of id's board and plays the showdown. A
// board that cannot be completed is scored as a tie.
func (t *Tree) Rollout(id NodeID, opponent [2]poker.Card, src poker.Source) poker.Outcome {
	board, ok := t.Board(id, opponent, src)
	if !ok {
		return poker.Tie
	}
	return poker.Compare(poker.SevenCards(t.hole, board), poker.SevenCards(opponent, board))
}

// Backpropagate adds one visit and reward to id and every ancestor up to the root.
func (t *Tree) Backpropagate(id NodeID, reward poker.Outcome) {
	for id != None {
		n := &t.nodes[id]
		n.visits++
		n.wins += float64(reward)
		id = n.parent
	}
}

// Depth returns how many cards have been revealed on id's branch.
func (t *Tree) Depth(id NodeID) int {
	return len(t.nodes[id].revealed)
}

package equity

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/poker-mcts/internal/mcts"
	"github.com/lox/poker-mcts/internal/randutil"
	"github.com/lox/poker-mcts/poker"
)

func hole(tokens ...string) [2]poker.Card {
	cards := poker.MustParseCards(tokens...)
	return [2]poker.Card{cards[0], cards[1]}
}

func seeded(seed int64, opts ...Option) *Estimator {
	return New(append([]Option{WithSource(randutil.New(seed))}, opts...)...)
}

func TestEstimateWinRate(t *testing.T) {
	tests := []struct {
		name        string
		hole        [2]poker.Card
		expectedMin float64
		expectedMax float64
	}{
		{name: "Pocket Aces", hole: hole("AH", "AS"), expectedMin: 0.55, expectedMax: 1.0},
		{name: "Ace King suited", hole: hole("AH", "KH"), expectedMin: 0.5, expectedMax: 0.85},
		{name: "Seven Deuce offsuit", hole: hole("7H", "2C"), expectedMin: 0.15, expectedMax: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate := seeded(12345).EstimateWinRate(tt.hole, 1000)
			assert.GreaterOrEqual(t, rate, tt.expectedMin)
			assert.LessOrEqual(t, rate, tt.expectedMax)
		})
	}
}

func TestEstimateZeroSimulations(t *testing.T) {
	e := seeded(1)
	assert.Equal(t, 0.0, e.EstimateWinRate(hole("AH", "AS"), 0))
	assert.Equal(t, 0.0, e.EstimateWinRate(hole("AH", "AS"), -5))

	res := e.Estimate(hole("AH", "AS"), 0)
	assert.Equal(t, 0, res.Visits)
	assert.Equal(t, 1, res.Nodes, "only the root exists")
}

func TestEstimateInvalidHole(t *testing.T) {
	e := seeded(1)
	ace := poker.NewCard(poker.Ace, poker.Hearts)
	pair := [2]poker.Card{ace, ace}
	assert.Equal(t, 0.0, e.EstimateWinRate(pair, 100))
	assert.Equal(t, Result{}, e.Estimate(pair, 100))
	assert.Equal(t, Result{}, e.EstimateDirect(pair, 100))

	res, err := e.EstimateParallel(context.Background(), pair, 100, 4)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	assert.Equal(t, Result{}, e.EstimateDirect([2]poker.Card{{Rank: 13}, {}}, 100))
}

func TestEstimateWinRateInRange(t *testing.T) {
	rng := randutil.New(8)
	for i := 0; i < 20; i++ {
		cards := poker.NewDeck(rng).Sample(2)
		h := [2]poker.Card{cards[0], cards[1]}
		rate := seeded(int64(i)).EstimateWinRate(h, 50)
		assert.GreaterOrEqual(t, rate, 0.0, "hole %v", h)
		assert.LessOrEqual(t, rate, 1.0, "hole %v", h)
	}
}

func TestEstimateIsDeterministic(t *testing.T) {
	a := seeded(42).Estimate(hole("QD", "JD"), 500)
	b := seeded(42).Estimate(hole("QD", "JD"), 500)
	assert.Equal(t, a.Wins, b.Wins)
	assert.Equal(t, a.Visits, b.Visits)
	assert.Equal(t, a.Nodes, b.Nodes)
	assert.Equal(t, a.WinRate(), b.WinRate())
	assert.Positive(t, a.Nodes)
}

func TestEstimateCountsEveryIteration(t *testing.T) {
	res := seeded(3).Estimate(hole("TS", "9S"), 250)
	assert.Equal(t, 250, res.Visits)
	assert.GreaterOrEqual(t, res.Wins, 0.0)
	assert.LessOrEqual(t, res.Wins, 250.0)
	assert.Greater(t, res.Nodes, 250, "each iteration expands at least one leaf")
}

func TestSearchKeepsTreeInvariants(t *testing.T) {
	e := seeded(17)
	tree := mcts.New(hole("AH", "KD"))
	e.search(tree, 400, e.src, nil)

	var walk func(id mcts.NodeID)
	walk = func(id mcts.NodeID) {
		revealed := tree.Revealed(id)
		used := tree.Used(id)
		require.LessOrEqual(t, len(revealed), mcts.BoardSize)
		require.Equal(t, len(revealed)+2, used.Len(), "used cards are hole plus board without repeats")
		for _, card := range revealed {
			require.True(t, used.Contains(card))
		}
		if tree.Visits(id) == 0 {
			require.Zero(t, tree.Wins(id))
		}
		if tree.Terminal(id) {
			require.Empty(t, tree.Children(id))
		}

		childVisits := 0
		for _, child := range tree.Children(id) {
			require.Equal(t, id, tree.Parent(child))
			childVisits += tree.Visits(child)
			walk(child)
		}
		require.LessOrEqual(t, childVisits, tree.Visits(id))
	}
	walk(tree.Root())
	assert.Equal(t, 400, tree.Visits(tree.Root()))
}

func TestPocketAcesBeatBaseline(t *testing.T) {
	rate := seeded(2024).EstimateWinRate(hole("AH", "AS"), 1000)
	assert.Greater(t, rate, 0.55)
}

func TestDirectCloseToTreeAtModerateCounts(t *testing.T) {
	const sims = 5000
	for _, h := range [][2]poker.Card{hole("AH", "AS"), hole("7H", "2C"), hole("JC", "TC")} {
		tree := seeded(5).Estimate(h, sims)
		direct := seeded(6).EstimateDirect(h, sims)
		assert.Equal(t, sims, direct.Visits)
		assert.Zero(t, direct.Nodes)
		assert.InDelta(t, direct.WinRate(), tree.WinRate(), 0.05, "hole %v", h)
	}
}

// UCB1 keeps revisiting boards the player wins on, so the tree's root average
// drifts above the direct estimate as iterations grow. Weak hands show it most.
func TestTreeDriftsAboveDirectAtHighCounts(t *testing.T) {
	if testing.Short() {
		t.Skip("long tree search")
	}
	const sims = 40000
	h := hole("7H", "2C")
	tree := seeded(5).Estimate(h, sims)
	direct := seeded(6).EstimateDirect(h, sims)

	assert.InDelta(t, 0.34, direct.WinRate(), 0.03, "direct sampling stays unbiased")
	assert.Greater(t, tree.WinRate()-direct.WinRate(), 0.15,
		"tree=%.4f direct=%.4f", tree.WinRate(), direct.WinRate())
}

func TestEstimateParallel(t *testing.T) {
	ctx := context.Background()
	h := hole("KH", "KS")

	a, err := seeded(9).EstimateParallel(ctx, h, 1001, 4)
	require.NoError(t, err)
	assert.Equal(t, 1001, a.Visits)

	b, err := seeded(9).EstimateParallel(ctx, h, 1001, 4)
	require.NoError(t, err)
	assert.Equal(t, a.Wins, b.Wins, "parallel runs are reproducible for a seed")
	assert.Equal(t, a.Nodes, b.Nodes)

	single, err := seeded(9).EstimateParallel(ctx, h, 300, 1)
	require.NoError(t, err)
	assert.Equal(t, seeded(9).Estimate(h, 300).Wins, single.Wins)
}

func TestEstimateParallelCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := seeded(1).EstimateParallel(ctx, hole("AH", "AS"), 1000, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	res, err := seeded(1).Run(ctx, MethodDirect, hole("AH", "AS"), 100, 4)
	require.NoError(t, err)
	assert.Zero(t, res.Nodes)

	res, err = seeded(1).Run(ctx, MethodTree, hole("AH", "AS"), 100, 1)
	require.NoError(t, err)
	assert.Positive(t, res.Nodes)

	_, err = seeded(1).Run(ctx, Method("bogus"), hole("AH", "AS"), 100, 1)
	assert.Error(t, err)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("direct")
	require.NoError(t, err)
	assert.Equal(t, MethodDirect, m)

	_, err = ParseMethod("ucb")
	assert.Error(t, err)
}

func TestProgressAndElapsed(t *testing.T) {
	clock := quartz.NewMock(t)
	var calls []int
	e := seeded(1,
		WithClock(clock),
		WithProgress(func(done, total int) {
			assert.Equal(t, 200, total)
			calls = append(calls, done)
			clock.Advance(time.Millisecond)
		}),
	)

	res := e.Estimate(hole("AH", "AS"), 200)
	require.Len(t, calls, 100, "progress fires every total/100 iterations")
	assert.Equal(t, 200, calls[len(calls)-1])
	assert.Equal(t, 100*time.Millisecond, res.Elapsed)
}

func TestResult(t *testing.T) {
	var empty Result
	assert.Zero(t, empty.WinRate())
	lo, hi := empty.ConfidenceInterval()
	assert.Zero(t, lo)
	assert.Zero(t, hi)

	r := Result{Wins: 75, Visits: 100}
	assert.InDelta(t, 0.75, r.WinRate(), 1e-12)
	lo, hi = r.ConfidenceInterval()
	assert.Less(t, lo, 0.75)
	assert.Greater(t, hi, 0.75)
	assert.InDelta(t, 1.96*0.0433, hi-0.75, 1e-3)
}

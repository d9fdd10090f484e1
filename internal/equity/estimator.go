// Package equity estimates a heads-up player's chance of winning from their
// hole cards alone, by searching over community-card reveals.
package equity

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/poker-mcts/internal/mcts"
	"github.com/lox/poker-mcts/internal/randutil"
	"github.com/lox/poker-mcts/poker"
)

// DefaultSimulations is the iteration count used when none is configured.
const DefaultSimulations = 1000

// Method selects the estimation algorithm.
type Method string

const (
	// MethodTree runs the Monte Carlo tree search.
	MethodTree Method = "mcts"
	// MethodDirect samples opponent hand and board directly, without a tree.
	MethodDirect Method = "direct"
)

// ParseMethod validates a method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodTree, MethodDirect:
		return m, nil
	default:
		return "", fmt.Errorf("unknown estimation method %q", s)
	}
}

// ProgressFunc is called as simulations complete.
type ProgressFunc func(done, total int)

// Estimator runs win-rate estimations. It is not safe for concurrent use; the
// parallel entry point gives each worker its own tree and generator.
type Estimator struct {
	src      poker.Source
	logger   *log.Logger
	clock    quartz.Clock
	progress ProgressFunc
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithSource sets the random source. Supplying a seeded source makes runs reproducible.
func WithSource(src poker.Source) Option {
	return func(e *Estimator) { e.src = src }
}

// WithLogger sets the logger used for run diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(e *Estimator) { e.logger = logger }
}

// WithClock sets the clock used to time runs.
func WithClock(clock quartz.Clock) Option {
	return func(e *Estimator) { e.clock = clock }
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Estimator) { e.progress = fn }
}

// New creates an estimator. Without options it uses a wall-clock seeded
// generator, the real clock and a discarding logger.
func New(opts ...Option) *Estimator {
	e := &Estimator{
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		clock:  quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.src == nil {
		e.src = randutil.NewUnseeded()
	}
	return e
}

// EstimateWinRate returns the estimated probability that hole beats one random
// opponent, with ties counting half.
func (e *Estimator) EstimateWinRate(hole [2]poker.Card, simulations int) float64 {
	return e.Estimate(hole, simulations).WinRate()
}

// Estimate runs the tree search for the given number of iterations. The tree
// is built fresh and discarded when the run ends.
func (e *Estimator) Estimate(hole [2]poker.Card, simulations int) Result {
	if !validHole(hole) {
		e.logger.Warn("invalid hole cards", "hole", hole)
		return Result{}
	}
	simulations = max(simulations, 0)

	start := e.clock.Now()
	e.logger.Debug("starting tree search", "hole", formatHole(hole), "simulations", simulations)

	tree := mcts.New(hole)
	e.search(tree, simulations, e.src, e.progress)

	result := Result{
		Wins:    tree.Wins(tree.Root()),
		Visits:  tree.Visits(tree.Root()),
		Nodes:   tree.Len(),
		Elapsed: e.clock.Since(start),
	}
	e.logger.Debug("tree search complete",
		"win_rate", result.WinRate(), "nodes", result.Nodes, "elapsed", result.Elapsed)
	return result
}

// search runs select, expand, rollout and backpropagate n times. The opponent's
// hole cards are redrawn every iteration from whatever the chosen branch has
// not used, so the tree itself never depends on them.
func (e *Estimator) search(tree *mcts.Tree, n int, src poker.Source, progress ProgressFunc) {
	step := progressStep(n)
	for i := 0; i < n; i++ {
		id := tree.Expand(tree.Select(), src)
		// Drawing after the reveal leaves the joint deal of opponent and board unchanged.
		opponent, ok := sampleHole(poker.NewDeckExcluding(src, tree.Used(id)))
		reward := poker.Tie
		if ok {
			reward = tree.Rollout(id, opponent, src)
		}
		tree.Backpropagate(id, reward)

		if progress != nil && ((i+1)%step == 0 || i+1 == n) {
			progress(i+1, n)
		}
	}
}

// EstimateDirect is the tree-free baseline: each iteration deals a fresh
// opponent hand and full board and plays the showdown.
func (e *Estimator) EstimateDirect(hole [2]poker.Card, simulations int) Result {
	if !validHole(hole) {
		e.logger.Warn("invalid hole cards", "hole", hole)
		return Result{}
	}
	simulations = max(simulations, 0)

	start := e.clock.Now()
	e.logger.Debug("starting direct sampling", "hole", formatHole(hole), "simulations", simulations)

	var result Result
	used := poker.NewCardSet(hole[:]...)
	step := progressStep(simulations)
	for i := 0; i < simulations; i++ {
		deck := poker.NewDeckExcluding(e.src, used)
		opponent, _ := sampleHole(deck)
		var board [mcts.BoardSize]poker.Card
		copy(board[:], deck.Sample(mcts.BoardSize))

		reward := poker.Compare(poker.SevenCards(hole, board), poker.SevenCards(opponent, board))
		result.Wins += float64(reward)
		result.Visits++

		if e.progress != nil && ((i+1)%step == 0 || i+1 == simulations) {
			e.progress(i+1, simulations)
		}
	}
	result.Elapsed = e.clock.Since(start)

	e.logger.Debug("direct sampling complete", "win_rate", result.WinRate(), "elapsed", result.Elapsed)
	return result
}

// EstimateParallel splits the iterations across workers. Each worker searches
// its own tree with its own generator, seeded from the estimator's source
// before any worker starts, and the root statistics are summed in worker
// order. For a given seed the result does not depend on scheduling.
func (e *Estimator) EstimateParallel(ctx context.Context, hole [2]poker.Card, simulations, workers int) (Result, error) {
	if workers <= 1 {
		return e.Estimate(hole, simulations), nil
	}
	if !validHole(hole) {
		e.logger.Warn("invalid hole cards", "hole", hole)
		return Result{}, nil
	}
	simulations = max(simulations, 0)

	start := e.clock.Now()
	e.logger.Debug("starting parallel tree search",
		"hole", formatHole(hole), "simulations", simulations, "workers", workers)

	perWorker := simulations / workers
	remainder := simulations % workers
	seeds := make([]int64, workers)
	for w := range seeds {
		seeds[w] = int64(e.src.IntN(math.MaxInt))
	}

	var (
		mu   sync.Mutex
		done int
	)
	report := func(delta int) {
		if e.progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done += delta
		e.progress(done, simulations)
	}

	partials := make([]Result, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		n := perWorker
		if w < remainder {
			n++ // Distribute remainder samples
		}

		g.Go(func() error {
			rng := randutil.New(seeds[w])
			tree := mcts.New(hole)
			const batch = 256
			for ran := 0; ran < n; ran += batch {
				if err := ctx.Err(); err != nil {
					return err
				}
				chunk := min(batch, n-ran)
				e.search(tree, chunk, rng, nil)
				report(chunk)
			}
			partials[w] = Result{
				Wins:   tree.Wins(tree.Root()),
				Visits: tree.Visits(tree.Root()),
				Nodes:  tree.Len(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("parallel estimate: %w", err)
	}

	var result Result
	for _, partial := range partials {
		result = result.merge(partial)
	}
	result.Elapsed = e.clock.Since(start)

	e.logger.Debug("parallel tree search complete",
		"win_rate", result.WinRate(), "nodes", result.Nodes, "elapsed", result.Elapsed)
	return result, nil
}

// Run dispatches to the estimator for method. Workers only apply to MethodTree.
func (e *Estimator) Run(ctx context.Context, method Method, hole [2]poker.Card, simulations, workers int) (Result, error) {
	switch method {
	case MethodTree:
		return e.EstimateParallel(ctx, hole, simulations, workers)
	case MethodDirect:
		return e.EstimateDirect(hole, simulations), nil
	default:
		return Result{}, fmt.Errorf("unknown estimation method %q", method)
	}
}

func sampleHole(deck *poker.Deck) ([2]poker.Card, bool) {
	var hole [2]poker.Card
	cards := deck.Sample(2)
	if len(cards) < 2 {
		return hole, false
	}
	copy(hole[:], cards)
	return hole, true
}

func validHole(hole [2]poker.Card) bool {
	return hole[0].Valid() && hole[1].Valid() && hole[0] != hole[1]
}

func formatHole(hole [2]poker.Card) string {
	return poker.FormatCards(hole[:])
}

func progressStep(n int) int {
	return max(1, n/100)
}

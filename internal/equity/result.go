package equity

import (
	"math"
	"time"
)

// Result holds the statistics accumulated by one estimation run.
type Result struct {
	// Wins is the summed reward: 1 per win, 0.5 per tie.
	Wins float64
	// Visits is the number of completed simulations.
	Visits int
	// Nodes is the size of the search tree(s) built; zero for the direct estimator.
	Nodes int
	// Elapsed is the wall time of the run as measured by the estimator's clock.
	Elapsed time.Duration
}

// WinRate returns Wins/Visits, or 0 when nothing was simulated.
func (r Result) WinRate() float64 {
	if r.Visits == 0 {
		return 0.0
	}
	return r.Wins / float64(r.Visits)
}

// ConfidenceInterval returns the 95% confidence interval for the win rate
func (r Result) ConfidenceInterval() (lower, upper float64) {
	if r.Visits == 0 {
		return 0.0, 0.0
	}
	rate := r.WinRate()

	// Standard error for binomial proportion
	se := math.Sqrt(rate * (1.0 - rate) / float64(r.Visits))
	margin := 1.96 * se

	return math.Max(0.0, rate-margin), math.Min(1.0, rate+margin)
}

// merge folds another run's counters into r. Elapsed is left to the caller.
func (r Result) merge(other Result) Result {
	r.Wins += other.Wins
	r.Visits += other.Visits
	r.Nodes += other.Nodes
	return r
}

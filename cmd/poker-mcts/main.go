package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lox/poker-mcts/internal/config"
	"github.com/lox/poker-mcts/internal/equity"
	"github.com/lox/poker-mcts/internal/randutil"
	"github.com/lox/poker-mcts/poker"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version     kong.VersionFlag `short:"v" help:"Show version"`
	Cards       []string         `arg:"" name:"card" help:"Two hole cards, e.g. 'AH KD' (case-insensitive)"`
	Simulations *int             `short:"n" help:"Number of simulations (default 1000)"`
	Seed        *int64           `help:"Random seed for reproducible results"`
	Method      string           `short:"m" help:"Estimator: mcts, direct or compare"`
	Workers     *int             `short:"w" help:"Parallel search trees for the mcts estimator"`
	Config      string           `short:"c" type:"path" help:"HCL config file"`
	Debug       bool             `short:"d" help:"Enable debug logging"`
	Progress    bool             `short:"p" help:"Show a progress bar on stderr"`
	NoColor     bool             `help:"Disable colored output"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("poker-mcts"),
		kong.Description("Estimate heads-up preflop win rate with Monte Carlo tree search"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
	)

	err := cli.run(context.Background(), os.Stdout, os.Stderr)
	ctx.FatalIfErrorf(err)
}

// settings is the merged view of config file and flags.
type settings struct {
	simulations int
	seed        int64
	method      string
	workers     int
	level       log.Level
}

func (c *CLI) settings() (settings, error) {
	cfg := config.Default()
	if c.Config != "" {
		loaded, err := config.Load(c.Config)
		if err != nil {
			return settings{}, err
		}
		cfg = loaded
	}

	if c.Simulations != nil {
		cfg.Estimator.Simulations = c.Simulations
	}
	if c.Seed != nil {
		cfg.Estimator.Seed = c.Seed
	}
	if c.Method != "" {
		cfg.Estimator.Method = c.Method
	}
	if c.Workers != nil {
		cfg.Estimator.Workers = *c.Workers
	}
	if c.Debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return settings{}, err
	}

	s := settings{
		simulations: cfg.SimulationCount(),
		method:      cfg.Estimator.Method,
		workers:     cfg.Estimator.Workers,
		level:       cfg.Level(),
		seed:        time.Now().UnixNano(),
	}
	if cfg.Estimator.Seed != nil {
		s.seed = *cfg.Estimator.Seed
	}
	return s, nil
}

func parseHole(tokens []string) ([2]poker.Card, error) {
	var hole [2]poker.Card
	if len(tokens) != 2 {
		return hole, fmt.Errorf("expected exactly 2 hole cards, got %d", len(tokens))
	}
	cards, err := poker.ParseCards(tokens...)
	if err != nil {
		return hole, err
	}
	copy(hole[:], cards)
	return hole, nil
}

func (c *CLI) run(ctx context.Context, stdout, stderr io.Writer) error {
	hole, err := parseHole(c.Cards)
	if err != nil {
		return err
	}
	s, err := c.settings()
	if err != nil {
		return err
	}

	logger := log.NewWithOptions(stderr, log.Options{
		Level:           s.level,
		ReportTimestamp: true,
		Prefix:          "poker-mcts",
	}).With("run", uuid.NewString()[:8])
	logger.Debug("settings", "seed", s.seed, "simulations", s.simulations, "method", s.method, "workers", s.workers)

	out := newDisplay(stdout, c.NoColor)
	var progress equity.ProgressFunc
	if c.Progress {
		bar := newProgressBar(stderr)
		defer bar.finish()
		progress = bar.update
	}

	if s.method == config.MethodCompare {
		results, err := compare(ctx, hole, s, logger, progress)
		if err != nil {
			return err
		}
		out.comparison(hole, results)
		return nil
	}

	method, err := equity.ParseMethod(s.method)
	if err != nil {
		return err
	}
	estimator := equity.New(
		equity.WithSource(randutil.New(s.seed)),
		equity.WithLogger(logger),
		equity.WithProgress(progress),
	)
	result, err := estimator.Run(ctx, method, hole, s.simulations, s.workers)
	if err != nil {
		return err
	}
	out.result(hole, result)
	return nil
}

type methodResult struct {
	method equity.Method
	result equity.Result
}

// compare runs both estimators side by side, each with its own seed drawn
// from the run seed.
func compare(ctx context.Context, hole [2]poker.Card, s settings, logger *log.Logger, progress equity.ProgressFunc) ([]methodResult, error) {
	master := randutil.New(s.seed)
	results := []methodResult{
		{method: equity.MethodTree},
		{method: equity.MethodDirect},
	}
	seeds := []int64{master.Int64(), master.Int64()}

	g, ctx := errgroup.WithContext(ctx)
	for i := range results {
		g.Go(func() error {
			opts := []equity.Option{
				equity.WithSource(randutil.New(seeds[i])),
				equity.WithLogger(logger.With("method", results[i].method)),
			}
			// One bar, driven by the slower of the two estimators.
			if results[i].method == equity.MethodTree {
				opts = append(opts, equity.WithProgress(progress))
			}
			res, err := equity.New(opts...).Run(ctx, results[i].method, hole, s.simulations, s.workers)
			if err != nil {
				return err
			}
			results[i].result = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

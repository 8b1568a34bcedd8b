package automation

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/pinnbar/internal/config"
	"github.com/san-kum/pinnbar/internal/experiment"
	"github.com/san-kum/pinnbar/internal/train"
)

// Ensemble trains the same configuration from several seeds. Each run is
// trained on its own goroutine; a single run stays sequential.
type Ensemble struct {
	base      *config.Config
	numRuns   int
	seedStart int64
	workers   int
}

// NewEnsemble returns an ensemble of numRuns seeds starting at seedStart.
// workers <= 0 uses GOMAXPROCS.
func NewEnsemble(base *config.Config, numRuns int, seedStart int64, workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{base: base, numRuns: numRuns, seedStart: seedStart, workers: workers}
}

// SeedResult is one member of an ensemble. Err is set when that run failed.
type SeedResult struct {
	Seed   int64
	Result *train.Result
	Err    error
}

// Run trains every seed. Individual training failures are recorded in the
// results; only setup errors and cancellation abort the ensemble.
func (e *Ensemble) Run(ctx context.Context, registry *experiment.Registry, log logrus.FieldLogger) ([]SeedResult, error) {
	if e.numRuns < 1 {
		return nil, fmt.Errorf("ensemble needs at least one run, got %d", e.numRuns)
	}

	results := make([]SeedResult, e.numRuns)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := 0; i < e.numRuns; i++ {
		cfg := e.base.Clone()
		cfg.Seed = e.seedStart + int64(i)

		g.Go(func() error {
			exp, err := experiment.New(cfg, registry, log.WithField("seed", cfg.Seed))
			if err != nil {
				return err
			}
			res, err := exp.Run(ctx)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			results[i] = SeedResult{Seed: cfg.Seed, Result: res, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Stats summarizes a metric across the successful members of an ensemble.
type Stats struct {
	Metric    string
	Mean, Std float64
	Min, Max  float64
	Succeeded int
	Failed    int
}

func Summarize(results []SeedResult, metric string) Stats {
	s := Stats{Metric: metric}
	var vals []float64
	for _, r := range results {
		if r.Err != nil || r.Result == nil {
			s.Failed++
			continue
		}
		v, ok := r.Result.Metrics[metric]
		if !ok {
			s.Failed++
			continue
		}
		vals = append(vals, v)
	}

	s.Succeeded = len(vals)
	if len(vals) == 0 {
		return s
	}
	s.Mean, s.Std = stat.MeanStdDev(vals, nil)
	if len(vals) == 1 {
		s.Std = 0
	}
	s.Min, s.Max = vals[0], vals[0]
	for _, v := range vals[1:] {
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
	}
	return s
}

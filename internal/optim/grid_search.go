package optim

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// Trial is one evaluated point of a grid search.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search evaluates every combination of the parameter ranges and returns the
// combination with the lowest value. Failed trials are recorded and skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	evaluate func(ctx context.Context, params map[string]float64) (float64, error),
) (map[string]float64, float64, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, nil, fmt.Errorf("grid search: %d names for %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	var trials []Trial

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), evaluate, &best, &bestParams, &trials); err != nil {
		return bestParams, best, trials, err
	}
	if bestParams == nil {
		return nil, best, trials, fmt.Errorf("grid search: no trial succeeded")
	}

	sort.SliceStable(trials, func(i, j int) bool {
		if (trials[i].Err == nil) != (trials[j].Err == nil) {
			return trials[i].Err == nil
		}
		return trials[i].Value < trials[j].Value
	})
	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	evaluate func(context.Context, map[string]float64) (float64, error),
	best *float64,
	bestParams *map[string]float64,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		val, err := evaluate(ctx, current)
		*trials = append(*trials, Trial{Params: current, Value: val, Err: err})
		if err != nil {
			return nil
		}

		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, evaluate, best, bestParams, trials); err != nil {
			return err
		}
	}
	return nil
}

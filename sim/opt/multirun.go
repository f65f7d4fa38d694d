// MultiRunOptimizer: repeats an optimizer under independent seeds, keeps the
// best run, and reports the spread. Runs share no mutable data and could be
// distributed; the reference implementation executes them sequentially.

package opt

import (
	"context"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// RunFunc executes one optimizer run under the given seed and returns its
// best fitness.
type RunFunc func(ctx context.Context, seed int64) (float64, error)

// MultiRunResult summarizes K independent optimizer runs.
type MultiRunResult struct {
	Runs        int
	BestSeed    int64
	BestFitness float64
	Mean        float64
	StdDev      float64
	Min         float64
	Max         float64
	// Improvement of the best run over the mean run.
	Improvement float64
	Fitnesses   []float64
}

// MultiRunOptimizer drives K repeats of a single-run optimizer.
type MultiRunOptimizer struct {
	Runs     int
	BaseSeed int64
	RunOnce  RunFunc
}

func NewMultiRunOptimizer(runs int, baseSeed int64, runOnce RunFunc) *MultiRunOptimizer {
	return &MultiRunOptimizer{Runs: runs, BaseSeed: baseSeed, RunOnce: runOnce}
}

// Run executes the repeats sequentially. A failed repeat aborts the whole
// experiment; cancellation is honored between repeats.
func (m *MultiRunOptimizer) Run(ctx context.Context) (*MultiRunResult, error) {
	result := &MultiRunResult{Runs: m.Runs, BestFitness: fitnessFloor}

	for i := 0; i < m.Runs; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seed := m.BaseSeed + int64(i)
		fitness, err := m.RunOnce(ctx, seed)
		if err != nil {
			return nil, err
		}
		logrus.Infof("repeat %d/%d (seed %d): best %.0f", i+1, m.Runs, seed, fitness)
		result.Fitnesses = append(result.Fitnesses, fitness)
		if fitness > result.BestFitness {
			result.BestFitness = fitness
			result.BestSeed = seed
		}
	}

	result.Mean = stat.Mean(result.Fitnesses, nil)
	if len(result.Fitnesses) > 1 {
		result.StdDev = stat.StdDev(result.Fitnesses, nil)
	}
	result.Min, result.Max = result.Fitnesses[0], result.Fitnesses[0]
	for _, f := range result.Fitnesses {
		if f < result.Min {
			result.Min = f
		}
		if f > result.Max {
			result.Max = f
		}
	}
	result.Improvement = result.BestFitness - result.Mean
	return result, nil
}

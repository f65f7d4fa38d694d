package opt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factory-sim/factory-sim/sim"
)

func smallGAConfig() GAConfig {
	cfg := DefaultGAConfig()
	cfg.PopulationSize = 6
	cfg.Generations = 3
	cfg.Seed = 42
	return cfg
}

func shortEvaluator(t *testing.T) (*Evaluator, *sim.Strategy) {
	t.Helper()
	sc := sim.DefaultScenario()
	baseline, err := NewAnalyticalOptimizer(sc).BuildBaseline(10)
	require.NoError(t, err)
	baseline.EndDay = 40 // keep per-evaluation cost small
	return NewEvaluator(sc, 42), baseline
}

func TestGA_RunImprovesOrMatchesNeutral(t *testing.T) {
	ev, baseline := shortEvaluator(t)
	ga := NewGeneticAlgorithm(smallGAConfig(), baseline, ev)

	result, err := ga.Run(context.Background())
	require.NoError(t, err)

	// The neutral individual is always evaluated in generation zero, so the
	// best can never fall below the baseline's own fitness.
	neutral := ev.Evaluate(NeutralGenes().Expand(baseline)).Fitness.Score
	assert.GreaterOrEqual(t, result.BestFitness, neutral)
	assert.NotNil(t, result.BestStrategy)
	assert.Equal(t, 6*3, result.Evaluations)
	require.Len(t, result.History, 3)
}

func TestGA_HistoryTracksGenerations(t *testing.T) {
	ev, baseline := shortEvaluator(t)
	ga := NewGeneticAlgorithm(smallGAConfig(), baseline, ev)

	result, err := ga.Run(context.Background())
	require.NoError(t, err)

	for i, row := range result.History {
		assert.Equal(t, i, row.Generation)
		assert.GreaterOrEqual(t, row.BestFitness, row.MeanFitness)
		assert.GreaterOrEqual(t, row.Diversity, 0.0)
	}
}

func TestGA_Deterministic(t *testing.T) {
	ev, baseline := shortEvaluator(t)

	r1, err := NewGeneticAlgorithm(smallGAConfig(), baseline, ev).Run(context.Background())
	require.NoError(t, err)
	r2, err := NewGeneticAlgorithm(smallGAConfig(), baseline, ev).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, r1.BestGenes, r2.BestGenes)
	assert.Equal(t, r1.BestFitness, r2.BestFitness)
}

func TestGA_CancelledContextReturnsPartialResult(t *testing.T) {
	ev, baseline := shortEvaluator(t)
	ga := NewGeneticAlgorithm(smallGAConfig(), baseline, ev)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := ga.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result, "a cancelled run still reports the best found so far")
	assert.Zero(t, result.Evaluations)
}

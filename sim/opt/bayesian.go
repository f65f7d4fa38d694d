// Bayesian-style optimizer over PolicyParameters: a fixed random-exploration
// phase followed by a guided phase proposing parameters near the best found
// so far, optionally warm-started from filtered historical records. The
// simulator remains a black box; no surrogate model is fit, only a
// best-so-far neighborhood search with shrinking proposal width.

package opt

import (
	"context"
	"math/rand"

	"github.com/sirupsen/logrus"
	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/factory-sim/factory-sim/sim"
)

// Phase labels the optimizer's current regime.
type Phase string

const (
	PhaseExploration Phase = "exploration"
	PhaseGuided      Phase = "guided"
)

// Progress is emitted once per iteration for streaming consumers (the HTTP
// layer's SSE stream is an external collaborator).
type Progress struct {
	Iteration   int
	Total       int
	Phase       Phase
	BestFitness float64
}

// BayesConfig parameterizes the optimizer.
type BayesConfig struct {
	TotalIterations   int
	RandomExploration int
	Seed              int64

	// Initial proposal stddev as a fraction of each parameter's range;
	// shrinks linearly over the guided phase.
	ProposalSigma float64

	// Warm-start memory. Records whose demand context is less similar than
	// MinContextSimilarity are ignored.
	Memory               []EvaluationRecord
	MinContextSimilarity float64

	ProgressFn func(Progress)
}

// DefaultBayesConfig returns the reference settings.
func DefaultBayesConfig() BayesConfig {
	return BayesConfig{
		TotalIterations:      60,
		RandomExploration:    20,
		Seed:                 42,
		ProposalSigma:        0.15,
		MinContextSimilarity: 0.8,
	}
}

// BayesResult is the outcome of one optimizer run.
type BayesResult struct {
	BestPolicy         PolicyParameters
	BestStrategy       *sim.Strategy
	BestFitness        float64
	BestNetWorth       float64
	ConvergenceHistory []float64
	Records            []EvaluationRecord
	Evaluations        int
}

// ValidationReport quantifies outcome variance of one policy across
// independent demand seeds.
type ValidationReport struct {
	Runs        int
	MeanFitness float64
	StdDev      float64
	Min         float64
	Max         float64
	Fitnesses   []float64
}

// BayesianOptimizer searches PolicyParameters space.
type BayesianOptimizer struct {
	Config    BayesConfig
	Engine    *PolicyEngine
	Evaluator *Evaluator
	EndDay    int
}

func NewBayesianOptimizer(cfg BayesConfig, engine *PolicyEngine, ev *Evaluator, endDay int) *BayesianOptimizer {
	return &BayesianOptimizer{Config: cfg, Engine: engine, Evaluator: ev, EndDay: endDay}
}

// evaluate expands and scores one candidate, recovering from panics.
func (b *BayesianOptimizer) evaluate(p PolicyParameters) (fitness, netWorth float64) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("evaluation panicked, scoring at floor: %v", r)
			fitness, netWorth = fitnessFloor, fitnessFloor
		}
	}()
	result := b.Evaluator.Evaluate(b.Engine.Expand(p, nil, b.EndDay))
	return result.Fitness.Score, result.Summary.NetWorth
}

// Run executes the exploration and guided phases. Cancellation is checked
// between iterations; a cancelled run returns the best found so far along
// with ctx.Err().
func (b *BayesianOptimizer) Run(ctx context.Context) (*BayesResult, error) {
	cfg := b.Config
	rng := rand.New(rand.NewSource(cfg.Seed))
	demandCtx := ContextFromScenario(b.Evaluator.Scenario)

	result := &BayesResult{BestFitness: fitnessFloor}

	// Warm start: the best similar-context historical policy becomes the
	// first guided anchor without costing an iteration.
	warm := FilterByContext(cfg.Memory, demandCtx, cfg.MinContextSimilarity)
	for _, r := range warm {
		if r.Fitness > result.BestFitness {
			result.BestFitness = r.Fitness
			result.BestPolicy = r.Policy
			result.BestNetWorth = r.NetWorth
		}
	}
	if len(warm) > 0 {
		logrus.Infof("warm start from %d of %d memory records (best %.0f)",
			len(warm), len(cfg.Memory), result.BestFitness)
	}

	for i := 0; i < cfg.TotalIterations; i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		phase := PhaseGuided
		var candidate PolicyParameters
		if i < cfg.RandomExploration || result.BestFitness == fitnessFloor {
			phase = PhaseExploration
			candidate = RandomParameters(rng)
		} else {
			candidate = b.propose(rng, result.BestPolicy, i)
		}

		fitness, netWorth := b.evaluate(candidate)
		result.Evaluations++
		result.Records = append(result.Records,
			NewEvaluationRecord(candidate, fitness, netWorth, demandCtx))

		if fitness > result.BestFitness {
			result.BestFitness = fitness
			result.BestPolicy = candidate
			result.BestNetWorth = netWorth
			logrus.Infof("iteration %d (%s): new best %.0f", i, phase, fitness)
		}
		result.ConvergenceHistory = append(result.ConvergenceHistory, result.BestFitness)

		if cfg.ProgressFn != nil {
			cfg.ProgressFn(Progress{
				Iteration:   i + 1,
				Total:       cfg.TotalIterations,
				Phase:       phase,
				BestFitness: result.BestFitness,
			})
		}
	}

	result.BestStrategy = b.Engine.Expand(result.BestPolicy, nil, b.EndDay)
	return result, nil
}

// propose draws a candidate near the incumbent: each parameter perturbed by
// a Normal whose stddev is a range fraction that shrinks as the guided phase
// progresses.
func (b *BayesianOptimizer) propose(rng *rand.Rand, best PolicyParameters, iteration int) PolicyParameters {
	cfg := b.Config
	progress := 0.0
	guidedSpan := cfg.TotalIterations - cfg.RandomExploration
	if guidedSpan > 0 {
		progress = float64(iteration-cfg.RandomExploration) / float64(guidedSpan)
	}
	sigmaFrac := cfg.ProposalSigma * (1 - 0.5*progress)

	v := best.ToVector()
	for i := 0; i < NumPolicyParams; i++ {
		span := PolicyBounds[i][1] - PolicyBounds[i][0]
		n := distuv.Normal{Mu: v[i], Sigma: sigmaFrac * span, Src: exprand.NewSource(rng.Uint64())}
		v[i] = n.Rand()
	}
	return ParamsFromVector(v)
}

// Validate re-runs one policy n times under independent demand seeds and
// reports the fitness spread caused by stochastic demand alone.
func (b *BayesianOptimizer) Validate(ctx context.Context, p PolicyParameters, n int) (*ValidationReport, error) {
	st := b.Engine.Expand(p, nil, b.EndDay)
	key := sim.NewSimulationKey(b.Config.Seed)
	baseRNG := sim.NewPartitionedRNG(key).ForSubsystem(sim.SubsystemValidation)

	fitnesses := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result := b.Evaluator.EvaluateSeeded(st, baseRNG.Int63())
		fitnesses = append(fitnesses, result.Fitness.Score)
	}

	report := &ValidationReport{
		Runs:        n,
		MeanFitness: stat.Mean(fitnesses, nil),
		StdDev:      stat.StdDev(fitnesses, nil),
		Fitnesses:   fitnesses,
	}
	report.Min, report.Max = fitnesses[0], fitnesses[0]
	for _, f := range fitnesses {
		if f < report.Min {
			report.Min = f
		}
		if f > report.Max {
			report.Max = f
		}
	}
	return report, nil
}

// Evaluation bundles: the scored outcome of one simulation run, and the
// historical records the Bayesian optimizer warm-starts from.

package opt

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/factory-sim/factory-sim/sim"
)

// DemandContext describes the demand regime a policy was evaluated under.
// Warm-start filtering matches contexts, not raw fitness.
type DemandContext struct {
	PeakMean   float64
	PlateauDay int
	DeclineDay int
}

// ContextFromScenario extracts the demand context of a scenario.
func ContextFromScenario(sc *sim.Scenario) DemandContext {
	return DemandContext{
		PeakMean:   sc.Demand.PeakMean,
		PlateauDay: sc.Demand.PlateauDay,
		DeclineDay: sc.Demand.DeclineDay,
	}
}

// Similarity scores two contexts in [0, 1]; 1 is identical.
func (c DemandContext) Similarity(other DemandContext) float64 {
	score := 1.0
	if c.PeakMean > 0 || other.PeakMean > 0 {
		denom := math.Max(c.PeakMean, other.PeakMean)
		score -= 0.5 * math.Abs(c.PeakMean-other.PeakMean) / denom
	}
	span := 365.0
	score -= 0.25 * math.Abs(float64(c.PlateauDay-other.PlateauDay)) / span
	score -= 0.25 * math.Abs(float64(c.DeclineDay-other.DeclineDay)) / span
	if score < 0 {
		return 0
	}
	return score
}

// EvaluationRecord is one historical (policy, outcome) tuple. The persisted
// memory store holding these is an external collaborator; the optimizer only
// consumes them.
type EvaluationRecord struct {
	ID       string
	Policy   PolicyParameters
	Fitness  float64
	NetWorth float64
	Context  DemandContext
}

// NewEvaluationRecord stamps a record with a fresh run ID.
func NewEvaluationRecord(p PolicyParameters, fitness, netWorth float64, ctx DemandContext) EvaluationRecord {
	return EvaluationRecord{
		ID:       uuid.NewString(),
		Policy:   p,
		Fitness:  fitness,
		NetWorth: netWorth,
		Context:  ctx,
	}
}

// FilterByContext keeps records whose context similarity meets the
// threshold, preserving order.
func FilterByContext(records []EvaluationRecord, ctx DemandContext, minSimilarity float64) []EvaluationRecord {
	var kept []EvaluationRecord
	for _, r := range records {
		if r.Context.Similarity(ctx) >= minSimilarity {
			kept = append(kept, r)
		}
	}
	return kept
}

// EvaluationResult bundles all outputs of one scored simulation run.
type EvaluationResult struct {
	Summary  *sim.SummaryMetrics
	Fitness  *FitnessResult
	History  *sim.History
	WallTime time.Duration
}

// Evaluator runs and scores strategies against one scenario. Each call
// clones state internally; independent calls share no mutable data.
type Evaluator struct {
	Scenario  *sim.Scenario
	Objective *ObjectiveFunction
	Seed      int64
}

func NewEvaluator(sc *sim.Scenario, seed int64) *Evaluator {
	return &Evaluator{
		Scenario:  sc,
		Objective: NewObjectiveFunction(sc, DefaultObjectiveWeights()),
		Seed:      seed,
	}
}

// Evaluate runs one full simulation of the strategy and scores it.
func (e *Evaluator) Evaluate(st *sim.Strategy) *EvaluationResult {
	return e.EvaluateSeeded(st, e.Seed)
}

// EvaluateSeeded runs with an explicit seed (validation re-runs).
func (e *Evaluator) EvaluateSeeded(st *sim.Strategy, seed int64) *EvaluationResult {
	start := time.Now()
	state, summary := sim.RunSimulation(e.Scenario, st, seed, nil)
	fitness := e.Objective.Score(state, summary)
	return &EvaluationResult{
		Summary:  summary,
		Fitness:  fitness,
		History:  state.History,
		WallTime: time.Since(start),
	}
}

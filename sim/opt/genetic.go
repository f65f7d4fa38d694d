// Genetic algorithm over StrategyGenes. The simulator is an expensive
// black-box oracle: each individual costs one full run. Evaluations are
// independent; a panic in one aborts that evaluation only, scored at the
// fitness floor, and never crashes the search loop.

package opt

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/factory-sim/factory-sim/sim"
)

// fitnessFloor is assigned to evaluations that panic or cannot run.
const fitnessFloor = -math.MaxFloat64

// GAConfig parameterizes the genetic algorithm.
type GAConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	CrossoverRate  float64
	ElitismCount   int
	TournamentSize int
	Seed           int64
}

// DefaultGAConfig returns the reference GA settings.
func DefaultGAConfig() GAConfig {
	return GAConfig{
		PopulationSize: 30,
		Generations:    40,
		MutationRate:   0.25,
		CrossoverRate:  0.8,
		ElitismCount:   2,
		TournamentSize: 3,
		Seed:           42,
	}
}

// GenerationStats is one row of GA convergence history.
type GenerationStats struct {
	Generation  int
	BestFitness float64
	MeanFitness float64
	Diversity   float64
}

// GAResult is the outcome of one GA run.
type GAResult struct {
	BestGenes    StrategyGenes
	BestFitness  float64
	BestStrategy *sim.Strategy
	History      []GenerationStats
	Evaluations  int
}

type individual struct {
	genes   StrategyGenes
	fitness float64
}

// GeneticAlgorithm searches gene space against a fixed baseline strategy.
type GeneticAlgorithm struct {
	Config    GAConfig
	Baseline  *sim.Strategy
	Evaluator *Evaluator
}

func NewGeneticAlgorithm(cfg GAConfig, baseline *sim.Strategy, ev *Evaluator) *GeneticAlgorithm {
	return &GeneticAlgorithm{Config: cfg, Baseline: baseline, Evaluator: ev}
}

// evaluate expands and scores one individual, recovering from panics so a
// single bad evaluation cannot take down the search.
func (ga *GeneticAlgorithm) evaluate(g StrategyGenes) (fitness float64) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("evaluation panicked, scoring at floor: %v", r)
			fitness = fitnessFloor
		}
	}()
	result := ga.Evaluator.Evaluate(g.Expand(ga.Baseline))
	return result.Fitness.Score
}

// Run executes the selection/crossover/mutation/elitism loop. Cancellation
// is checked between generations; a cancelled run returns the best found so
// far along with ctx.Err().
func (ga *GeneticAlgorithm) Run(ctx context.Context) (*GAResult, error) {
	cfg := ga.Config
	rng := rand.New(rand.NewSource(cfg.Seed))

	pop := make([]individual, cfg.PopulationSize)
	result := &GAResult{BestFitness: fitnessFloor}

	// Seed the population with the neutral individual so the analytical
	// baseline is always represented.
	pop[0] = individual{genes: NeutralGenes()}
	for i := 1; i < cfg.PopulationSize; i++ {
		pop[i] = individual{genes: RandomGenes(rng)}
	}

	for gen := 0; gen < cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		genes := make([]StrategyGenes, len(pop))
		sumFitness := 0.0
		for i := range pop {
			pop[i].fitness = ga.evaluate(pop[i].genes)
			result.Evaluations++
			genes[i] = pop[i].genes
			sumFitness += pop[i].fitness
			if pop[i].fitness > result.BestFitness {
				result.BestFitness = pop[i].fitness
				result.BestGenes = pop[i].genes
			}
		}

		sort.Slice(pop, func(i, j int) bool { return pop[i].fitness > pop[j].fitness })

		stats := GenerationStats{
			Generation:  gen,
			BestFitness: pop[0].fitness,
			MeanFitness: sumFitness / float64(len(pop)),
			Diversity:   Diversity(genes),
		}
		result.History = append(result.History, stats)
		logrus.Infof("generation %d: best=%.0f mean=%.0f diversity=%.3f",
			gen, stats.BestFitness, stats.MeanFitness, stats.Diversity)

		if gen == cfg.Generations-1 {
			break
		}

		next := make([]individual, 0, cfg.PopulationSize)
		for i := 0; i < cfg.ElitismCount && i < len(pop); i++ {
			next = append(next, pop[i])
		}
		for len(next) < cfg.PopulationSize {
			a := ga.tournament(rng, pop)
			b := ga.tournament(rng, pop)
			child := a.genes
			if rng.Float64() < cfg.CrossoverRate {
				child = Crossover(rng, a.genes, b.genes)
			}
			child.Mutate(rng, cfg.MutationRate)
			next = append(next, individual{genes: child})
		}
		pop = next
	}

	result.BestStrategy = result.BestGenes.Expand(ga.Baseline)
	return result, nil
}

// tournament picks the fittest of TournamentSize random individuals.
func (ga *GeneticAlgorithm) tournament(rng *rand.Rand, pop []individual) individual {
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < ga.Config.TournamentSize; i++ {
		c := pop[rng.Intn(len(pop))]
		if c.fitness > best.fitness {
			best = c
		}
	}
	return best
}

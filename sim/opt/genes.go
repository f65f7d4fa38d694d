// StrategyGenes: the 8-float compressed policy representation tuned by the
// genetic algorithm. Genes never touch simulation state; Expand turns them,
// plus the analytical baseline, into a concrete Strategy.

package opt

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/factory-sim/factory-sim/sim"
)

// Gene indices into StrategyGenes.
const (
	GeneReorderPointMult = iota
	GeneOrderQuantityMult
	GeneBatchSizeMult
	GeneMCEAllocationCustom
	GenePriceMult
	GeneOvertimeHours
	GeneDebtPaydownRate
	GeneReserveDaysMult
	NumGenes
)

// GeneBounds holds the [lo, hi] range per gene. Multiplicative genes center
// on 1.0; allocation, overtime, and paydown are absolute values.
var GeneBounds = [NumGenes][2]float64{
	GeneReorderPointMult:    {0.5, 2.0},
	GeneOrderQuantityMult:   {0.5, 2.0},
	GeneBatchSizeMult:       {0.5, 2.0},
	GeneMCEAllocationCustom: {0.3, 0.8},
	GenePriceMult:           {0.8, 1.3},
	GeneOvertimeHours:       {0.0, 4.0},
	GeneDebtPaydownRate:     {0.0, 1.0},
	GeneReserveDaysMult:     {0.5, 2.0},
}

// StrategyGenes is one individual in the genetic population.
type StrategyGenes [NumGenes]float64

// NeutralGenes returns genes that leave the baseline strategy unchanged.
func NeutralGenes() StrategyGenes {
	return StrategyGenes{1, 1, 1, 0.5, 1, 0, 0.2, 1}
}

// RandomGenes draws each gene uniformly within its bounds.
func RandomGenes(rng *rand.Rand) StrategyGenes {
	var g StrategyGenes
	for i := 0; i < NumGenes; i++ {
		lo, hi := GeneBounds[i][0], GeneBounds[i][1]
		g[i] = lo + rng.Float64()*(hi-lo)
	}
	return g
}

// Clamp forces every gene back inside its bounds.
func (g *StrategyGenes) Clamp() {
	for i := 0; i < NumGenes; i++ {
		lo, hi := GeneBounds[i][0], GeneBounds[i][1]
		if g[i] < lo {
			g[i] = lo
		}
		if g[i] > hi {
			g[i] = hi
		}
	}
}

// Mutate perturbs each gene with the given probability by up to ±10% of its
// current value, then clamps to bounds. A zero-valued gene steps by 10% of
// its range instead, so it can leave zero.
func (g *StrategyGenes) Mutate(rng *rand.Rand, rate float64) {
	for i := 0; i < NumGenes; i++ {
		if rng.Float64() >= rate {
			continue
		}
		step := 0.1 * math.Abs(g[i])
		if step == 0 {
			step = 0.1 * (GeneBounds[i][1] - GeneBounds[i][0])
		}
		g[i] += (rng.Float64()*2 - 1) * step
	}
	g.Clamp()
}

// Crossover performs uniform crossover, drawing each child gene from either
// parent with equal probability.
func Crossover(rng *rand.Rand, a, b StrategyGenes) StrategyGenes {
	var child StrategyGenes
	for i := 0; i < NumGenes; i++ {
		if rng.Float64() < 0.5 {
			child[i] = a[i]
		} else {
			child[i] = b[i]
		}
	}
	return child
}

// Diversity is the mean pairwise normalized Euclidean distance across the
// population. Zero for fewer than two individuals.
func Diversity(pop []StrategyGenes) float64 {
	if len(pop) < 2 {
		return 0
	}
	var distances []float64
	for i := 0; i < len(pop); i++ {
		for j := i + 1; j < len(pop); j++ {
			sum := 0.0
			for k := 0; k < NumGenes; k++ {
				span := GeneBounds[k][1] - GeneBounds[k][0]
				d := (pop[i][k] - pop[j][k]) / span
				sum += d * d
			}
			distances = append(distances, math.Sqrt(sum/NumGenes))
		}
	}
	return stat.Mean(distances, nil)
}

// Expand applies the genes multiplicatively (or absolutely, per gene) to a
// copy of the baseline strategy. The baseline is not modified.
func (g StrategyGenes) Expand(baseline *sim.Strategy) *sim.Strategy {
	st := baseline.Clone()
	st.ReorderPoint = int(math.Round(float64(baseline.ReorderPoint) * g[GeneReorderPointMult]))
	st.OrderQuantity = int(math.Round(float64(baseline.OrderQuantity) * g[GeneOrderQuantityMult]))
	st.StdBatchSize = int(math.Round(float64(baseline.StdBatchSize) * g[GeneBatchSizeMult]))
	st.MCEAllocationCustom = g[GeneMCEAllocationCustom]
	st.StdPrice = baseline.StdPrice * g[GenePriceMult]
	st.CustomBasePrice = baseline.CustomBasePrice * g[GenePriceMult]
	st.OvertimeHours = g[GeneOvertimeHours]
	st.DebtPaydownRate = g[GeneDebtPaydownRate]
	st.MinCashReserveDays = baseline.MinCashReserveDays * g[GeneReserveDaysMult]
	return st
}

// Stochastic custom-order demand: a phased daily mean with a Poisson draw on
// top. The phase schedule (growth, plateau, decline) also feeds the dynamic
// policy calculator, which recomputes inventory formulas on phase changes.

package sim

import (
	"math/rand"

	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// DemandPhase labels where the demand curve is on a given day.
type DemandPhase string

const (
	PhaseGrowth  DemandPhase = "growth"
	PhasePlateau DemandPhase = "plateau"
	PhaseDecline DemandPhase = "decline"
)

// DemandModel draws the number of incoming custom orders per day.
// Deterministic per seed: the same rng source and day sequence produce the
// same draws.
type DemandModel struct {
	cfg DemandConfig
	rng *rand.Rand
}

// NewDemandModel builds a demand model over the scenario's demand config,
// drawing from the given subsystem RNG.
func NewDemandModel(cfg DemandConfig, rng *rand.Rand) *DemandModel {
	return &DemandModel{cfg: cfg, rng: rng}
}

// Mean returns the expected custom orders per day for the given day.
func (d *DemandModel) Mean(day int) float64 {
	c := d.cfg
	switch {
	case day < c.PlateauDay:
		if c.PlateauDay == 0 {
			return c.PeakMean
		}
		frac := float64(day) / float64(c.PlateauDay)
		return c.InitialMean + frac*(c.PeakMean-c.InitialMean)
	case day < c.DeclineDay:
		return c.PeakMean
	default:
		span := c.HorizonDay - c.DeclineDay
		if span <= 0 {
			return c.FinalMean
		}
		frac := float64(day-c.DeclineDay) / float64(span)
		if frac > 1 {
			frac = 1
		}
		return c.PeakMean + frac*(c.FinalMean-c.PeakMean)
	}
}

// Phase classifies the day against the demand schedule.
func (d *DemandModel) Phase(day int) DemandPhase {
	switch {
	case day < d.cfg.PlateauDay:
		return PhaseGrowth
	case day < d.cfg.DeclineDay:
		return PhasePlateau
	default:
		return PhaseDecline
	}
}

// Draw samples the number of incoming custom orders for the day from a
// Poisson distribution around the phased mean.
func (d *DemandModel) Draw(day int) int {
	mean := d.Mean(day)
	if mean <= 0 {
		return 0
	}
	p := distuv.Poisson{
		Lambda: mean,
		Src:    exprand.NewSource(d.rng.Uint64()),
	}
	return int(p.Rand())
}

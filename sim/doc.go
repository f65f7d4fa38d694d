// Package sim provides the day-stepped factory simulation kernel.
//
// # Reading Guide
//
// Start with these three files to understand the simulation loop:
//   - state.go: SimulationState, the custom-order state machine, and deep cloning
//   - engine.go: the fixed per-day phase order across all modules
//   - production.go: both pipelines, station capacities, and the MCE split
//
// # Architecture
//
// The engine owns one SimulationState exclusively and drives the modules in
// a fixed daily order:
//   - inventory.go: raw-material reordering, arrivals, capped consumption
//   - production.go: standard batches and custom orders through MCE/WMA/PUC/ARCP
//   - finance.go: interest, payroll, auto-loans with commission, debt ceilings
//   - pricing.go: delivery-time-dependent custom pricing, same-day sales
//   - policy.go: dynamic EOQ/ROP/EPQ recomputation and bottleneck analysis
//   - rules.go: declarative condition -> action triggers
//   - demand.go: phased Poisson custom demand
//
// Strategies (strategy.go) carry every tunable knob plus a timed-action
// schedule; scenarios (config.go) carry the physical and financial constants.
// The search layers over this kernel live in sim/opt.
//
// Determinism: a run is a pure function of (scenario, strategy, seed).
// Stochastic draws go through PartitionedRNG (rng.go) so subsystems consume
// independent streams derived from one master seed.
package sim

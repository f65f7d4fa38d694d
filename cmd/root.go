package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/factory-sim/factory-sim/sim"
	"github.com/factory-sim/factory-sim/sim/opt"
)

var (
	// Shared CLI flags
	seed         int64  // Seed for stochastic demand
	endDay       int    // Simulation horizon in days
	logLevel     string // Log verbosity level
	scenarioPath string // yaml scenario file (empty = built-in defaults)
	strategyPath string // yaml strategy file (empty = analytical baseline)

	// optimize flags
	optimizer    string // "ga", "bayesian", or "multirun"
	populationSz int    // GA population size
	generations  int    // GA generations
	iterations   int    // Bayesian total iterations
	exploration  int    // Bayesian random-exploration iterations
	repeatRuns   int    // multirun repeat count
	validateRuns int    // Bayesian validation re-runs of the best policy (0 = skip)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "factory-sim",
	Short: "Day-stepped factory simulator and policy optimizer",
}

// loadInputs resolves the scenario and strategy from flags.
func loadInputs() (*sim.Scenario, *sim.Strategy, error) {
	scenario := sim.DefaultScenario()
	if scenarioPath != "" {
		var err error
		scenario, err = sim.LoadScenario(scenarioPath)
		if err != nil {
			return nil, nil, err
		}
	}

	var strategy *sim.Strategy
	if strategyPath != "" {
		var err error
		strategy, err = sim.LoadStrategy(strategyPath)
		if err != nil {
			return nil, nil, err
		}
	} else {
		var err error
		strategy, err = opt.NewAnalyticalOptimizer(scenario).BuildBaseline(scenario.Demand.PeakMean)
		if err != nil {
			return nil, nil, err
		}
	}
	if endDay > 0 {
		strategy.EndDay = endDay
	}
	return scenario, strategy, nil
}

// runCmd executes a single simulation and prints the summary.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one factory simulation",
	Run: func(cmd *cobra.Command, args []string) {
		scenario, strategy, err := loadInputs()
		if err != nil {
			logrus.Fatalf("setup failed: %v", err)
		}

		logrus.Infof("starting simulation: %d days, seed=%d", strategy.EndDay, seed)
		state, summary := sim.RunSimulation(scenario, strategy, seed, nil)
		fitness := opt.NewObjectiveFunction(scenario, opt.DefaultObjectiveWeights()).Score(state, summary)

		fmt.Println("=== Simulation Summary ===")
		fmt.Printf("Days simulated       : %d\n", summary.Days)
		fmt.Printf("Final cash           : %.2f\n", summary.FinalCash)
		fmt.Printf("Final debt           : %.2f\n", summary.FinalDebt)
		fmt.Printf("Net worth            : %.2f\n", summary.NetWorth)
		fmt.Printf("Total revenue        : %.2f\n", summary.TotalRevenue)
		fmt.Printf("Standard completed   : %d\n", summary.CompletedStandard)
		fmt.Printf("Custom completed     : %d\n", summary.CompletedCustom)
		fmt.Printf("Service level        : %.2f%%\n", summary.ServiceLevel*100)
		fmt.Printf("Avg delivery days    : %.2f (p95 %.2f)\n", summary.DeliveryTime.Mean, summary.DeliveryTime.P95)
		fmt.Printf("Rejected orders      : %d\n", summary.RejectedOrders)
		fmt.Printf("Stockout days        : %d\n", summary.StockoutDays)
		fmt.Printf("Fitness              : %.2f\n", fitness.Score)
		for _, v := range fitness.Violations {
			fmt.Printf("Violation            : %s x%d (-%.0f)\n", v.Kind, v.Count, v.Penalty)
		}
	},
}

// optimizeCmd searches for an operating policy.
var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Search for an operating policy maximizing terminal wealth",
	Run: func(cmd *cobra.Command, args []string) {
		scenario, baseline, err := loadInputs()
		if err != nil {
			logrus.Fatalf("setup failed: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		evaluator := opt.NewEvaluator(scenario, seed)

		switch optimizer {
		case "ga":
			cfg := opt.DefaultGAConfig()
			cfg.PopulationSize = populationSz
			cfg.Generations = generations
			cfg.Seed = seed
			ga := opt.NewGeneticAlgorithm(cfg, baseline, evaluator)
			result, err := ga.Run(ctx)
			if err != nil {
				logrus.Warnf("search stopped early: %v", err)
			}
			fmt.Println("=== Genetic Search Result ===")
			fmt.Printf("Best fitness   : %.2f\n", result.BestFitness)
			fmt.Printf("Evaluations    : %d\n", result.Evaluations)
			fmt.Printf("Best genes     : %v\n", result.BestGenes)

		case "bayesian":
			cfg := opt.DefaultBayesConfig()
			cfg.TotalIterations = iterations
			cfg.RandomExploration = exploration
			cfg.Seed = seed
			cfg.ProgressFn = func(p opt.Progress) {
				logrus.Infof("[%s] iteration %d/%d best=%.0f", p.Phase, p.Iteration, p.Total, p.BestFitness)
			}
			bo := opt.NewBayesianOptimizer(cfg, opt.NewPolicyEngine(scenario), evaluator, baseline.EndDay)
			result, err := bo.Run(ctx)
			if err != nil {
				logrus.Warnf("search stopped early: %v", err)
			}
			fmt.Println("=== Bayesian Search Result ===")
			fmt.Printf("Best fitness   : %.2f\n", result.BestFitness)
			fmt.Printf("Best net worth : %.2f\n", result.BestNetWorth)
			fmt.Printf("Evaluations    : %d\n", result.Evaluations)
			if validateRuns > 0 {
				report, err := bo.Validate(ctx, result.BestPolicy, validateRuns)
				if err != nil {
					logrus.Fatalf("validation failed: %v", err)
				}
				fmt.Printf("Validation     : mean=%.0f stddev=%.0f min=%.0f max=%.0f (%d runs)\n",
					report.MeanFitness, report.StdDev, report.Min, report.Max, report.Runs)
			}

		case "multirun":
			cfg := opt.DefaultGAConfig()
			cfg.PopulationSize = populationSz
			cfg.Generations = generations
			mr := opt.NewMultiRunOptimizer(repeatRuns, seed, func(ctx context.Context, runSeed int64) (float64, error) {
				runCfg := cfg
				runCfg.Seed = runSeed
				result, err := opt.NewGeneticAlgorithm(runCfg, baseline, evaluator).Run(ctx)
				if err != nil {
					return 0, err
				}
				return result.BestFitness, nil
			})
			result, err := mr.Run(ctx)
			if err != nil {
				logrus.Fatalf("multi-run failed: %v", err)
			}
			fmt.Println("=== Multi-Run Result ===")
			fmt.Printf("Best fitness   : %.2f (seed %d)\n", result.BestFitness, result.BestSeed)
			fmt.Printf("Mean / StdDev  : %.2f / %.2f\n", result.Mean, result.StdDev)
			fmt.Printf("Min / Max      : %.2f / %.2f\n", result.Min, result.Max)
			fmt.Printf("Improvement    : %.2f\n", result.Improvement)

		default:
			logrus.Fatalf("unknown optimizer %q (want ga, bayesian, or multirun)", optimizer)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "Seed for stochastic demand")
	rootCmd.PersistentFlags().IntVar(&endDay, "days", 0, "Simulation horizon in days (0 = strategy default)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&scenarioPath, "scenario", "", "Scenario yaml file (empty = built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&strategyPath, "strategy", "", "Strategy yaml file (empty = analytical baseline)")

	cobra.OnInitialize(func() {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	})

	optimizeCmd.Flags().StringVar(&optimizer, "optimizer", "ga", "Optimizer (ga, bayesian, multirun)")
	optimizeCmd.Flags().IntVar(&populationSz, "population", 30, "GA population size")
	optimizeCmd.Flags().IntVar(&generations, "generations", 40, "GA generations")
	optimizeCmd.Flags().IntVar(&iterations, "iterations", 60, "Bayesian total iterations")
	optimizeCmd.Flags().IntVar(&exploration, "exploration", 20, "Bayesian random-exploration iterations")
	optimizeCmd.Flags().IntVar(&repeatRuns, "runs", 5, "Multi-run repeat count")
	optimizeCmd.Flags().IntVar(&validateRuns, "validate", 0, "Validation re-runs of the best policy (0 = skip)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(optimizeCmd)
}

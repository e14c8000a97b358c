package main

import (
	"fmt"
	"math/rand"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/snow-ghost/guesser/baseline"
	"github.com/snow-ghost/guesser/core"
	"github.com/snow-ghost/guesser/pkg/ledger"
	"github.com/snow-ghost/guesser/testkit"
	"github.com/snow-ghost/guesser/worker"
)

var (
	benchTrials         int
	benchParallel       int
	benchSolvers        []string
	benchTimeout        time.Duration
	benchRandomAttempts int
	benchLedger         string
	benchExport         string

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Compare solvers over the same random secrets",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
)

func init() {
	benchCmd.Flags().IntVar(&benchTrials, "trials", 20, "Secrets per solver")
	benchCmd.Flags().IntVar(&benchParallel, "parallel", 4, "Trials solved concurrently")
	benchCmd.Flags().StringSliceVar(&benchSolvers, "solvers", []string{"genetic", "hillclimb"}, "Solvers to run: genetic, hillclimb, random")
	benchCmd.Flags().DurationVar(&benchTimeout, "timeout", time.Minute, "Per-trial time limit")
	benchCmd.Flags().IntVar(&benchRandomAttempts, "random-max-attempts", 1_000_000, "Guess budget of the random solver")
	benchCmd.Flags().StringVar(&benchLedger, "ledger", "", "SQLite file to append trial records to (in-memory when empty)")
	benchCmd.Flags().StringVar(&benchExport, "export", "", "Also print this bench's trials as json or csv")
}

func runBench(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.close()

	baseSeed := env.config.Seed
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}
	runner := testkit.NewRunner(benchTrials, baseSeed)
	runner.Parallel = benchParallel
	runner.MinLength = env.config.MinLength
	runner.MaxLength = env.config.MaxLength
	runner.Timeout = benchTimeout

	store, err := ledger.Open(benchLedger)
	if err != nil {
		return err
	}
	defer store.Close()
	benchID := uuid.NewString()

	reports := make([]testkit.Report, 0, len(benchSolvers))
	for _, name := range benchSolvers {
		factory, err := env.solverFactory(name)
		if err != nil {
			return err
		}
		env.logger.Info("benchmarking solver", "solver", name, "trials", benchTrials, "parallel", benchParallel)
		report, err := runner.Run(cmd.Context(), name, factory)
		if err != nil {
			return fmt.Errorf("bench %s: %w", name, err)
		}
		if err := ledger.RecordReport(store, benchID, report); err != nil {
			return err
		}
		reports = append(reports, report)
	}
	env.logger.Info("bench finished", "bench_id", benchID, "ledger", benchLedger)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SOLVER\tSOLVED\tFAILED\tMEAN\tMEDIAN\tP95\tMAX")
	for _, r := range reports {
		s := r.Summary()
		fmt.Fprintf(w, "%s\t%d\t%d\t%.1f\t%d\t%d\t%d\n", r.Solver, s.Solved, s.Failed, s.Mean, s.Median, s.P95, s.Max)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if benchExport == "" {
		return nil
	}
	data, err := ledger.Export(store, ledger.Filter{BenchID: benchID}, ledger.ExportFormat(benchExport))
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func (e *environment) solverFactory(name string) (testkit.SolverFactory, error) {
	config := e.config
	switch strings.ToLower(name) {
	case "genetic":
		// fail on bad configuration before any trial starts
		if _, err := worker.NewGeneticSolver(config); err != nil {
			return nil, err
		}
		return func(seed int64) core.Solver {
			s, _ := worker.NewGeneticSolver(config,
				worker.WithRand(rand.New(rand.NewSource(seed))),
				worker.WithTelemetry(e.telemetry),
			)
			return s
		}, nil
	case "hillclimb":
		return func(int64) core.Solver {
			s := baseline.NewHillClimbSolver(config.MinLength, config.MaxLength)
			s.Telemetry = e.telemetry
			return s
		}, nil
	case "random":
		return func(seed int64) core.Solver {
			s := baseline.NewRandomSolver(rand.New(rand.NewSource(seed)), config.MinLength, config.MaxLength)
			s.MaxAttempts = benchRandomAttempts
			s.Telemetry = e.telemetry
			return s
		}, nil
	default:
		return nil, fmt.Errorf("unknown solver %q", name)
	}
}

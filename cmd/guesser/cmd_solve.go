package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/snow-ghost/guesser/oracle"
	"github.com/snow-ghost/guesser/worker"
)

var (
	solveRuns       int
	solveKeepSecret bool
	solveTimeout    time.Duration

	solveCmd = &cobra.Command{
		Use:   "solve",
		Short: "Solve random secrets with the genetic solver and print the results",
		Args:  cobra.NoArgs,
		RunE:  runSolve,
	}
)

func init() {
	solveCmd.Flags().IntVar(&solveRuns, "runs", 10, "Number of secrets to solve")
	solveCmd.Flags().BoolVar(&solveKeepSecret, "keep-secret", false, "Reuse one secret and only reset the attempt counter between runs")
	solveCmd.Flags().DurationVar(&solveTimeout, "timeout", 0, "Give up on a run after this long (0 = never)")
}

func runSolve(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.close()

	solver, err := worker.NewGeneticSolver(env.config, worker.WithTelemetry(env.telemetry))
	if err != nil {
		return err
	}

	oracleSeed := env.config.Seed
	if oracleSeed == 0 {
		oracleSeed = time.Now().UnixNano()
	}
	checker := oracle.New(
		oracle.WithRand(rand.New(rand.NewSource(^oracleSeed))),
		oracle.WithBounds(env.config.MinLength, env.config.MaxLength),
	)

	out := cmd.OutOrStdout()
	for i := 0; i < solveRuns; i++ {
		ctx := cmd.Context()
		cancel := context.CancelFunc(func() {})
		if solveTimeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, solveTimeout)
		}
		sol, err := solver.Solve(ctx, checker)
		cancel()
		if err != nil {
			return fmt.Errorf("run %d: %w", i, err)
		}
		fmt.Fprintln(out, sol.Guess, sol.Attempts, checker.Secret())

		if solveKeepSecret {
			checker.Reset()
		} else {
			checker.Regenerate()
		}
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/snow-ghost/guesser/pkg/logging"
	"github.com/snow-ghost/guesser/pkg/metrics"
	"github.com/snow-ghost/guesser/pkg/tracing"
	"github.com/snow-ghost/guesser/worker"
	"github.com/snow-ghost/guesser/worker/telemetry"
)

var (
	configPath     string
	logLevel       string
	logFormat      string
	metricsAddr    string
	jaegerEndpoint string
	seed           int64
	minLength      int
	maxLength      int

	rootCmd = &cobra.Command{
		Use:           "guesser",
		Short:         "Recover hidden strings from match-count feedback",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("guesser: %v", err)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "YAML solver configuration (defaults to $GUESSER_CONFIG)")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", "", "Log encoding: json or console")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	flags.StringVar(&jaegerEndpoint, "jaeger-endpoint", "", "Jaeger collector endpoint for traces")
	flags.Int64Var(&seed, "seed", 0, "Random seed; 0 seeds from the clock")
	flags.IntVar(&minLength, "min-len", 0, "Minimum secret length (overrides config)")
	flags.IntVar(&maxLength, "max-len", 0, "Maximum secret length (overrides config)")

	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(benchCmd)
}

// environment is the shared wiring of every subcommand.
type environment struct {
	config    worker.Config
	logger    *logging.Logger
	tracer    *tracing.Tracer
	telemetry *telemetry.Telemetry
	server    *http.Server
}

func setup() (*environment, error) {
	config, err := worker.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		config.LogLevel = logLevel
	}
	if logFormat != "" {
		config.LogFormat = logFormat
	}
	if seed != 0 {
		config.Seed = seed
	}
	if minLength > 0 {
		config.MinLength = minLength
	}
	if maxLength > 0 {
		config.MaxLength = maxLength
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  config.LogLevel,
		Format: config.LogFormat,
		Output: "stderr",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	tracer, err := tracing.NewTracer(tracing.Config{
		ServiceName:    "guesser",
		ServiceVersion: "0.1.0",
		JaegerEndpoint: jaegerEndpoint,
		Environment:    "local",
	})
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	env := &environment{
		config:    config,
		logger:    logger,
		tracer:    tracer,
		telemetry: telemetry.New(logger, metrics.NewSolverMetrics(reg), tracer),
	}

	if metricsAddr != "" {
		env.server = newMetricsServer(metricsAddr, reg)
		go func() {
			if err := env.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "addr", metricsAddr, "error", err)
			}
		}()
		logger.Info("serving metrics", "addr", metricsAddr)
	}
	return env, nil
}

func (e *environment) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if e.server != nil {
		_ = e.server.Shutdown(ctx)
	}
	if err := e.tracer.Shutdown(ctx); err != nil {
		e.logger.Warn("tracer shutdown failed", "error", err)
	}
	_ = e.logger.Sync()
}

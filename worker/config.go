package worker

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/snow-ghost/guesser/core"
)

// Config holds configuration for the genetic solver
type Config struct {
	MinLength          int           `yaml:"min_length"`
	MaxLength          int           `yaml:"max_length"`
	MutationRate       float64       `yaml:"mutation_rate"`
	LengthShift        int           `yaml:"length_shift"`
	SurvivalRate       float64       `yaml:"survival_rate"`
	RandomSurvivalRate float64       `yaml:"random_survival_rate"`
	Fitness            FitnessConfig `yaml:"fitness"`

	// Seed for the solver's random source; 0 seeds from the clock.
	Seed int64 `yaml:"seed"`
	// CacheSize > 0 memoises oracle feedback per guess.
	CacheSize int `yaml:"cache_size"`
	// QueryRate > 0 throttles oracle queries per second.
	QueryRate float64 `yaml:"query_rate"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// FitnessConfig holds the constants of the length-penalised score.
type FitnessConfig struct {
	MatchWeight  float64 `yaml:"match_weight"`
	LengthWeight float64 `yaml:"length_weight"`
	Offset       float64 `yaml:"offset"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		MinLength:          core.DefaultMinLength,
		MaxLength:          core.DefaultMaxLength,
		MutationRate:       0.1,
		LengthShift:        3,
		SurvivalRate:       0.2,
		RandomSurvivalRate: 0.1,
		Fitness:            FitnessConfig{MatchWeight: 8, LengthWeight: 7, Offset: 1},
		CacheSize:          4096,
		LogLevel:           "info",
		LogFormat:          "json",
	}
}

// LoadConfig loads defaults, then the YAML file at path (or $GUESSER_CONFIG),
// then environment overrides.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	if path == "" {
		path = os.Getenv("GUESSER_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	config.MinLength = getEnvInt("GUESSER_MIN_LENGTH", config.MinLength)
	config.MaxLength = getEnvInt("GUESSER_MAX_LENGTH", config.MaxLength)
	config.MutationRate = getEnvFloat("GUESSER_MUTATION_RATE", config.MutationRate)
	config.LengthShift = getEnvInt("GUESSER_LENGTH_SHIFT", config.LengthShift)
	config.SurvivalRate = getEnvFloat("GUESSER_SURVIVAL_RATE", config.SurvivalRate)
	config.RandomSurvivalRate = getEnvFloat("GUESSER_RANDOM_SURVIVAL_RATE", config.RandomSurvivalRate)
	config.CacheSize = getEnvInt("GUESSER_CACHE_SIZE", config.CacheSize)
	config.QueryRate = getEnvFloat("GUESSER_QUERY_RATE", config.QueryRate)
	config.LogLevel = getEnv("GUESSER_LOG_LEVEL", config.LogLevel)

	return config, nil
}

// Validate checks the ranges of every setting. Interactions between the
// selection rates and the population size are checked by NewGeneticSolver.
func (c Config) Validate() error {
	switch {
	case c.MinLength < 1:
		return &core.ConfigError{Field: "min_length", Value: c.MinLength, Reason: "must be at least 1"}
	case c.MaxLength < c.MinLength:
		return &core.ConfigError{Field: "max_length", Value: c.MaxLength, Reason: fmt.Sprintf("must be at least min_length %d", c.MinLength)}
	case c.MutationRate <= 0 || c.MutationRate >= 1:
		return &core.ConfigError{Field: "mutation_rate", Value: c.MutationRate, Reason: "must be in (0, 1)"}
	case c.LengthShift <= 0:
		return &core.ConfigError{Field: "length_shift", Value: c.LengthShift, Reason: "must be positive"}
	case c.SurvivalRate <= 0 || c.SurvivalRate >= 1:
		return &core.ConfigError{Field: "survival_rate", Value: c.SurvivalRate, Reason: "must be in (0, 1)"}
	case c.RandomSurvivalRate <= 0 || c.RandomSurvivalRate >= 1-c.SurvivalRate:
		return &core.ConfigError{Field: "random_survival_rate", Value: c.RandomSurvivalRate, Reason: fmt.Sprintf("must be in (0, %v)", 1-c.SurvivalRate)}
	case c.CacheSize < 0:
		return &core.ConfigError{Field: "cache_size", Value: c.CacheSize, Reason: "must not be negative"}
	case c.QueryRate < 0:
		return &core.ConfigError{Field: "query_rate", Value: c.QueryRate, Reason: "must not be negative"}
	}
	return c.fitness().Validate()
}

func (c Config) fitness() *core.LengthPenaltyFitness {
	return &core.LengthPenaltyFitness{
		MaxLength:    c.MaxLength,
		MatchWeight:  c.Fitness.MatchWeight,
		LengthWeight: c.Fitness.LengthWeight,
		Offset:       c.Fitness.Offset,
	}
}

// PopulationSize derives the generation size from the midpoint of the length
// bounds; the secret's real length is unknown.
func (c Config) PopulationSize() int {
	midpoint := float64(c.MinLength+c.MaxLength) / 2
	return int(2*math.Log(midpoint)) + 7
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

package ledger

import (
	"time"
)

// TrialRecord is one solved (or abandoned) secret of a bench run.
type TrialRecord struct {
	ID           int64     `json:"id" db:"id"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	BenchID      string    `json:"bench_id" db:"bench_id"`
	Solver       string    `json:"solver" db:"solver"`
	TrialIndex   int       `json:"trial_index" db:"trial_index"`
	SecretLength int       `json:"secret_length" db:"secret_length"`
	Attempts     int       `json:"attempts" db:"attempts"`
	DurationMs   float64   `json:"duration_ms" db:"duration_ms"`
	Solved       bool      `json:"solved" db:"solved"`
	Error        string    `json:"error,omitempty" db:"error"`
}

// SolverSummary aggregates the records of one solver. Attempt statistics only
// cover solved trials.
type SolverSummary struct {
	Solver        string  `json:"solver"`
	Trials        int64   `json:"trials"`
	Solved        int64   `json:"solved"`
	TotalAttempts int64   `json:"total_attempts"`
	MeanAttempts  float64 `json:"mean_attempts"`
	MaxAttempts   int     `json:"max_attempts"`
}

// Filter narrows record queries. Zero fields match everything.
type Filter struct {
	BenchID    string `json:"bench_id,omitempty"`
	Solver     string `json:"solver,omitempty"`
	SolvedOnly bool   `json:"solved_only,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

// ExportFormat represents supported export formats
type ExportFormat string

const (
	ExportFormatJSON ExportFormat = "json"
	ExportFormatCSV  ExportFormat = "csv"
)

// Store persists trial records.
type Store interface {
	// Record appends a record, assigning ID and Timestamp when unset.
	Record(record TrialRecord) error

	// Records returns matching records in insertion order.
	Records(filter Filter) ([]TrialRecord, error)

	// Summaries aggregates matching records per solver, ordered by solver name.
	Summaries(filter Filter) ([]SolverSummary, error)

	Close() error
}

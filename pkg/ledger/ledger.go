// Package ledger records bench trials so solver runs can be compared and
// exported after the fact.
package ledger

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/snow-ghost/guesser/testkit"
)

// Open returns a SQLite store at path, or an in-memory store when path is empty.
func Open(path string) (Store, error) {
	if path == "" {
		return NewMemoryStore(), nil
	}
	store, err := NewSQLiteStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger %s: %w", path, err)
	}
	return store, nil
}

// RecordReport stores every trial of report under benchID.
func RecordReport(store Store, benchID string, report testkit.Report) error {
	now := time.Now()
	for _, t := range report.Trials {
		record := TrialRecord{
			Timestamp:    now,
			BenchID:      benchID,
			Solver:       report.Solver,
			TrialIndex:   t.Index,
			SecretLength: len(t.Secret),
			Attempts:     t.Attempts,
			DurationMs:   float64(t.Duration.Nanoseconds()) / 1e6,
			Solved:       t.Solved(),
		}
		if t.Err != nil {
			record.Error = t.Err.Error()
		}
		if err := store.Record(record); err != nil {
			return fmt.Errorf("record %s trial %d: %w", report.Solver, t.Index, err)
		}
	}
	return nil
}

// Export renders matching records in format.
func Export(store Store, filter Filter, format ExportFormat) ([]byte, error) {
	records, err := store.Records(filter)
	if err != nil {
		return nil, err
	}

	switch format {
	case ExportFormatJSON:
		return json.MarshalIndent(records, "", "  ")
	case ExportFormatCSV:
		return exportCSV(records)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

func exportCSV(records []TrialRecord) ([]byte, error) {
	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	header := []string{
		"ID", "Timestamp", "Bench ID", "Solver", "Trial",
		"Secret Length", "Attempts", "Duration Ms", "Solved", "Error",
	}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.Timestamp.Format(time.RFC3339),
			r.BenchID,
			r.Solver,
			strconv.Itoa(r.TrialIndex),
			strconv.Itoa(r.SecretLength),
			strconv.Itoa(r.Attempts),
			fmt.Sprintf("%.3f", r.DurationMs),
			strconv.FormatBool(r.Solved),
			r.Error,
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	return []byte(buf.String()), writer.Error()
}

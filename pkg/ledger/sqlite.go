package ledger

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists records in a SQLite database so bench runs can be
// compared across invocations.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) createTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS trials (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		bench_id TEXT NOT NULL,
		solver TEXT NOT NULL,
		trial_index INTEGER NOT NULL,
		secret_length INTEGER NOT NULL,
		attempts INTEGER NOT NULL,
		duration_ms REAL NOT NULL,
		solved BOOLEAN NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_trials_bench ON trials(bench_id);
	CREATE INDEX IF NOT EXISTS idx_trials_solver ON trials(solver);
	`

	_, err := s.db.Exec(query)
	return err
}

func (s *SQLiteStore) Record(record TrialRecord) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	query := `
	INSERT INTO trials (
		timestamp, bench_id, solver, trial_index, secret_length,
		attempts, duration_ms, solved, error
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		record.Timestamp.UTC(),
		record.BenchID,
		record.Solver,
		record.TrialIndex,
		record.SecretLength,
		record.Attempts,
		record.DurationMs,
		record.Solved,
		record.Error,
	)
	return err
}

func (s *SQLiteStore) Records(filter Filter) ([]TrialRecord, error) {
	whereClause, args := buildWhereClause(filter)
	query := fmt.Sprintf(`
		SELECT
			id, timestamp, bench_id, solver, trial_index, secret_length,
			attempts, duration_ms, solved, error
		FROM trials
		%s
		ORDER BY id
	`, whereClause)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []TrialRecord
	for rows.Next() {
		var r TrialRecord
		err := rows.Scan(
			&r.ID,
			&r.Timestamp,
			&r.BenchID,
			&r.Solver,
			&r.TrialIndex,
			&r.SecretLength,
			&r.Attempts,
			&r.DurationMs,
			&r.Solved,
			&r.Error,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Summaries(filter Filter) ([]SolverSummary, error) {
	whereClause, args := buildWhereClause(filter)
	query := fmt.Sprintf(`
		SELECT
			solver,
			COUNT(*),
			COALESCE(SUM(CASE WHEN solved THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN solved THEN attempts ELSE 0 END), 0),
			COALESCE(MAX(CASE WHEN solved THEN attempts END), 0)
		FROM trials
		%s
		GROUP BY solver
		ORDER BY solver
	`, whereClause)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []SolverSummary
	for rows.Next() {
		var sum SolverSummary
		if err := rows.Scan(&sum.Solver, &sum.Trials, &sum.Solved, &sum.TotalAttempts, &sum.MaxAttempts); err != nil {
			return nil, err
		}
		summaries = append(summaries, finish(sum))
	}
	return summaries, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func buildWhereClause(filter Filter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.BenchID != "" {
		conditions = append(conditions, "bench_id = ?")
		args = append(args, filter.BenchID)
	}
	if filter.Solver != "" {
		conditions = append(conditions, "solver = ?")
		args = append(args, filter.Solver)
	}
	if filter.SolvedOnly {
		conditions = append(conditions, "solved")
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

package ledger

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps records for the lifetime of the process.
type MemoryStore struct {
	records []TrialRecord
	mu      sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make([]TrialRecord, 0)}
}

func (m *MemoryStore) Record(record TrialRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	if record.ID == 0 {
		record.ID = int64(len(m.records) + 1)
	}
	m.records = append(m.records, record)
	return nil
}

func (m *MemoryStore) Records(filter Filter) ([]TrialRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var filtered []TrialRecord
	for _, record := range m.records {
		if matches(record, filter) {
			filtered = append(filtered, record)
		}
	}

	if filter.Limit > 0 {
		start := min(filter.Offset, len(filtered))
		end := min(start+filter.Limit, len(filtered))
		filtered = filtered[start:end]
	}
	return filtered, nil
}

func (m *MemoryStore) Summaries(filter Filter) ([]SolverSummary, error) {
	filter.Limit, filter.Offset = 0, 0
	records, err := m.Records(filter)
	if err != nil {
		return nil, err
	}

	bySolver := make(map[string]*SolverSummary)
	for _, r := range records {
		s, ok := bySolver[r.Solver]
		if !ok {
			s = &SolverSummary{Solver: r.Solver}
			bySolver[r.Solver] = s
		}
		s.Trials++
		if r.Solved {
			s.Solved++
			s.TotalAttempts += int64(r.Attempts)
			s.MaxAttempts = max(s.MaxAttempts, r.Attempts)
		}
	}

	summaries := make([]SolverSummary, 0, len(bySolver))
	for _, s := range bySolver {
		summaries = append(summaries, finish(*s))
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Solver < summaries[j].Solver
	})
	return summaries, nil
}

func (m *MemoryStore) Close() error { return nil }

func matches(record TrialRecord, filter Filter) bool {
	if filter.BenchID != "" && record.BenchID != filter.BenchID {
		return false
	}
	if filter.Solver != "" && record.Solver != filter.Solver {
		return false
	}
	if filter.SolvedOnly && !record.Solved {
		return false
	}
	return true
}

func finish(s SolverSummary) SolverSummary {
	if s.Solved > 0 {
		s.MeanAttempts = float64(s.TotalAttempts) / float64(s.Solved)
	}
	return s
}

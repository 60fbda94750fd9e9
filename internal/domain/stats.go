package domain

import (
	"sort"
	"time"
)

// RunStatus is the terminal state of a classification run.
type RunStatus string

const (
	RunStatusRunning     RunStatus = "running"
	RunStatusCompleted   RunStatus = "completed"
	RunStatusNothingToDo RunStatus = "nothing_to_do"
	RunStatusCountFailed RunStatus = "count_failed"
	RunStatusCanceled    RunStatus = "canceled"
)

// RunScope selects which documents a run visits.
type RunScope string

const (
	ScopeUnclassified RunScope = "unclassified"
	ScopeAll          RunScope = "all"
)

// Sample is one classification shown in the run report.
type Sample struct {
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	AccessLevel AccessLevel `json:"access_level"`
}

// RunStats accumulates the outcome of one orchestrator run.
// ByCategory and ByAccessLevel count computed classifications whether or not
// the write succeeded. It is mutated only by the goroutine driving the run.
type RunStats struct {
	RunID         string         `json:"run_id"`
	Scope         RunScope       `json:"scope"`
	DryRun        bool           `json:"dry_run"`
	BatchSize     int            `json:"batch_size"`
	TotalCount    int            `json:"total_count"`
	Processed     int            `json:"processed"`
	Succeeded     int            `json:"succeeded"`
	Failed        int            `json:"failed"`
	Pages         int            `json:"pages"`
	Batches       int            `json:"batches"`
	ByCategory    map[string]int `json:"by_category"`
	ByAccessLevel map[string]int `json:"by_access_level"`
	Samples       []Sample       `json:"samples,omitempty"`
	Status        RunStatus      `json:"status"`
	Error         string         `json:"error,omitempty"`
	StartTime     time.Time      `json:"start_time"`
	EndTime       time.Time      `json:"end_time"`
}

// NewRunStats returns an empty accumulator with initialized frequency tables.
func NewRunStats(runID string, scope RunScope, dryRun bool, batchSize int) *RunStats {
	return &RunStats{
		RunID:         runID,
		Scope:         scope,
		DryRun:        dryRun,
		BatchSize:     batchSize,
		ByCategory:    make(map[string]int),
		ByAccessLevel: make(map[string]int),
		Status:        RunStatusRunning,
	}
}

// Record counts one computed classification.
func (s *RunStats) Record(category string, level AccessLevel) {
	s.Processed++
	s.ByCategory[category]++
	s.ByAccessLevel[string(level)]++
}

// AddBatch folds one batch write outcome into the totals.
func (s *RunStats) AddBatch(succeeded, failed int) {
	s.Batches++
	s.Succeeded += succeeded
	s.Failed += failed
}

// Duration returns the wall time of the run, or zero while it is still running.
func (s *RunStats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// IndexStats is the facet breakdown reported by the index.
type IndexStats struct {
	TotalDocuments int            `json:"total_documents"`
	ByCategory     map[string]int `json:"by_category"`
	ByAccessLevel  map[string]int `json:"by_access_level"`
}

// NewIndexStats returns an empty IndexStats with initialized tables.
func NewIndexStats() *IndexStats {
	return &IndexStats{
		ByCategory:    make(map[string]int),
		ByAccessLevel: make(map[string]int),
	}
}

// CountEntry is one key/count pair of a frequency table.
type CountEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// SortedCounts orders a frequency table by descending count, then by key.
func SortedCounts(counts map[string]int) []CountEntry {
	entries := make([]CountEntry, 0, len(counts))
	for k, v := range counts {
		entries = append(entries, CountEntry{Key: k, Count: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

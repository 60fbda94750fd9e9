package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// CountMap stores a frequency table as JSON text in the database.
type CountMap map[string]int

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the map.
//   - error: non-nil if marshaling fails.
func (m CountMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]int(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (m *CountMap) Scan(value interface{}) error {
	if value == nil {
		*m = CountMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan CountMap")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, m)
}

// ClassificationRun is the ledger record of one classification run.
type ClassificationRun struct {
	ID            string     `gorm:"type:text;primaryKey" json:"id"`
	Scope         RunScope   `gorm:"type:text;not null" json:"scope"`
	DryRun        bool       `json:"dry_run"`
	BatchSize     int        `json:"batch_size"`
	TotalCount    int        `gorm:"default:0" json:"total_count"`
	Processed     int        `gorm:"default:0" json:"processed"`
	Succeeded     int        `gorm:"default:0" json:"succeeded"`
	Failed        int        `gorm:"default:0" json:"failed"`
	ByCategory    CountMap   `gorm:"type:text" json:"by_category"`
	ByAccessLevel CountMap   `gorm:"type:text" json:"by_access_level"`
	Status        RunStatus  `gorm:"type:text;index:idx_runs_status;default:running" json:"status"`
	ErrorLog      string     `json:"error_log,omitempty"`
	StartedAt     time.Time  `gorm:"index:idx_runs_started" json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName returns the database table name for ClassificationRun.
func (ClassificationRun) TableName() string {
	return "classification_runs"
}

// RunFromStats projects a RunStats snapshot onto a ledger record.
func RunFromStats(s *RunStats) *ClassificationRun {
	run := &ClassificationRun{
		ID:            s.RunID,
		Scope:         s.Scope,
		DryRun:        s.DryRun,
		BatchSize:     s.BatchSize,
		TotalCount:    s.TotalCount,
		Processed:     s.Processed,
		Succeeded:     s.Succeeded,
		Failed:        s.Failed,
		ByCategory:    copyCounts(s.ByCategory),
		ByAccessLevel: copyCounts(s.ByAccessLevel),
		Status:        s.Status,
		ErrorLog:      s.Error,
		StartedAt:     s.StartTime,
	}
	if !s.EndTime.IsZero() {
		end := s.EndTime
		run.CompletedAt = &end
	}
	return run
}

func copyCounts(src map[string]int) CountMap {
	dst := make(CountMap, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

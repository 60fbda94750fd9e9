package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/timmy/docclass/internal/domain"
	"github.com/timmy/docclass/internal/storage"
)

// ReportArchive uploads run summaries as JSON objects keyed by run date.
type ReportArchive struct {
	store  storage.ObjectStorage
	prefix string
}

// NewReportArchive creates an archive writing under prefix.
func NewReportArchive(store storage.ObjectStorage, prefix string) *ReportArchive {
	return &ReportArchive{store: store, prefix: prefix}
}

// Key returns the object key of a run: {prefix}/{yyyy}/{mm}/{dd}/{run_id}.json.
func (a *ReportArchive) Key(stats *domain.RunStats) string {
	date := stats.StartTime.UTC().Format("2006/01/02")
	return path.Join(a.prefix, date, stats.RunID+".json")
}

// Archive uploads stats and returns the object URL.
func (a *ReportArchive) Archive(ctx context.Context, stats *domain.RunStats) (string, error) {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode run report: %w", err)
	}

	key := a.Key(stats)
	if err := a.store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return "", fmt.Errorf("failed to upload run report: %w", err)
	}
	return a.store.GetURL(key), nil
}

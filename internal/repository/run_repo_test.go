package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/timmy/docclass/internal/config"
	"github.com/timmy/docclass/internal/domain"
)

func newTestRunRepo(t *testing.T) *RunRepository {
	t.Helper()
	db, err := InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "runs.db"),
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewRunRepository(db)
}

func TestRunRepository_Lifecycle(t *testing.T) {
	repo := newTestRunRepo(t)
	ctx := context.Background()

	stats := domain.NewRunStats("run-1", domain.ScopeUnclassified, false, 100)
	stats.StartTime = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	if err := repo.Create(ctx, domain.RunFromStats(stats)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	stats.TotalCount = 3
	stats.Record("board_financial", domain.AccessBoardOnly)
	stats.Record("board_financial", domain.AccessBoardOnly)
	stats.Record("owner_statement", domain.AccessOwnerOnly)
	stats.AddBatch(2, 1)
	stats.Status = domain.RunStatusCompleted
	stats.EndTime = stats.StartTime.Add(time.Minute)
	if err := repo.Update(ctx, domain.RunFromStats(stats)); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.GetByID(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.RunStatusCompleted || got.Succeeded != 2 || got.Failed != 1 {
		t.Errorf("run: %+v", got)
	}
	if got.ByCategory["board_financial"] != 2 || got.ByAccessLevel["owner_only"] != 1 {
		t.Errorf("tables: %v %v", got.ByCategory, got.ByAccessLevel)
	}
	if got.CompletedAt == nil {
		t.Error("CompletedAt should be set")
	}
}

func TestRunRepository_GetByIDMissing(t *testing.T) {
	repo := newTestRunRepo(t)
	if _, err := repo.GetByID(context.Background(), "nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestRunRepository_ListRecentAndCounts(t *testing.T) {
	repo := newTestRunRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	statuses := []domain.RunStatus{domain.RunStatusCompleted, domain.RunStatusNothingToDo, domain.RunStatusCompleted}
	for i, status := range statuses {
		stats := domain.NewRunStats("run-"+string(rune('a'+i)), domain.ScopeAll, true, 50)
		stats.StartTime = base.Add(time.Duration(i) * time.Hour)
		stats.Status = status
		if err := repo.Create(ctx, domain.RunFromStats(stats)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	runs, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-c" || runs[1].ID != "run-b" {
		t.Errorf("order: %+v", runs)
	}

	counts, err := repo.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts[domain.RunStatusCompleted] != 2 || counts[domain.RunStatusNothingToDo] != 1 {
		t.Errorf("counts: %v", counts)
	}
}

package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lucky6-games/lucky6/internal/database"
	"github.com/lucky6-games/lucky6/internal/database/drawhistory/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	sDB, err := database.NewFromEnv(context.Background(), &database.Config{
		FilePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("new database: %v", err)
	}
	t.Cleanup(func() {
		_ = sDB.Close(context.Background())
	})

	return New(sDB)
}

func TestResultsRoundTrip(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	if _, err := db.FetchResults(1); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := db.AddResult(1, model.NewResult(0, []int{1, 2, 3}, false, 40)); err != nil {
		t.Fatalf("add result: %v", err)
	}
	if err := db.AddResult(1, model.NewResult(1, []int{4, 5, 6}, true, 1070)); err != nil {
		t.Fatalf("add result: %v", err)
	}

	results, err := db.FetchResults(1)
	if err != nil {
		t.Fatalf("fetch results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[1].Cycle != 1 || !results[1].JackpotWon || results[1].TotalWinnings != 1070 {
		t.Fatalf("unexpected result %+v", results[1])
	}

	// another chat stays isolated
	if _, err := db.FetchResults(2); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for other chat, got %v", err)
	}
}

func TestResultsTrimmed(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	for i := 0; i < MaxResults+10; i++ {
		if err := db.AddResult(7, model.NewResult(i, []int{1, 2, 3}, false, 0)); err != nil {
			t.Fatalf("add result %d: %v", i, err)
		}
	}

	results, err := db.FetchResults(7)
	if err != nil {
		t.Fatalf("fetch results: %v", err)
	}
	if len(results) != MaxResults {
		t.Fatalf("expected %d results, got %d", MaxResults, len(results))
	}
	if results[0].Cycle != 10 {
		t.Fatalf("expected oldest trimmed, first cycle is %d", results[0].Cycle)
	}
}

func TestDrawsRoundTrip(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	if err := db.AddDraw(3, []int{1, 2, 3, 4, 5, 6}); err != nil {
		t.Fatalf("add draw: %v", err)
	}
	if err := db.AddDraw(3, []int{7, 8, 9, 10, 11, 12}); err != nil {
		t.Fatalf("add draw: %v", err)
	}

	draws, err := db.FetchDraws(3)
	if err != nil {
		t.Fatalf("fetch draws: %v", err)
	}
	if len(draws) != 2 {
		t.Fatalf("expected 2 draws, got %d", len(draws))
	}
	if draws[1][0] != 7 {
		t.Fatalf("unexpected draw %v", draws[1])
	}
}

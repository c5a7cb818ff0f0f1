package jackpot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lucky6-games/lucky6/internal/database"
	jackpotDb "github.com/lucky6-games/lucky6/internal/database/jackpot/database"
)

func testPot(t *testing.T) *Pot {
	t.Helper()

	ctx := context.Background()
	db, err := database.NewFromEnv(ctx, &database.Config{
		FilePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close(ctx)
	})

	return NewPot(jackpotDb.New(db), 42, 1000, 50)
}

func TestBaseAmount(t *testing.T) {
	t.Parallel()

	pot := testPot(t)
	if pot.Amount() != 1000 {
		t.Fatalf("expected base 1000 got %d", pot.Amount())
	}
}

func TestAddForCycleOnce(t *testing.T) {
	t.Parallel()

	pot := testPot(t)

	added, err := pot.AddForCycle(0)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !added {
		t.Fatal("first accrual must apply")
	}
	if pot.Amount() != 1050 {
		t.Fatalf("expected 1050 got %d", pot.Amount())
	}

	added, err = pot.AddForCycle(0)
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if added {
		t.Fatal("second accrual for the same cycle must be a no-op")
	}
	if pot.Amount() != 1050 {
		t.Fatalf("expected 1050 after duplicate accrual got %d", pot.Amount())
	}

	if _, err := pot.AddForCycle(1); err != nil {
		t.Fatalf("add cycle 1: %v", err)
	}
	if pot.Amount() != 1100 {
		t.Fatalf("expected 1100 got %d", pot.Amount())
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	pot := testPot(t)
	if _, err := pot.AddForCycle(0); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := pot.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if pot.Amount() != 1000 {
		t.Fatalf("expected base after reset got %d", pot.Amount())
	}
}

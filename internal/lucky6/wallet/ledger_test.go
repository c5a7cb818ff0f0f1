package wallet

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lucky6-games/lucky6/internal/database"
	walletDb "github.com/lucky6-games/lucky6/internal/database/wallet/database"

	"github.com/google/uuid"
)

func testLedger(t *testing.T) *Ledger {
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

	return NewLedger(walletDb.New(db, nil), 42, 30, 100)
}

func TestStartingBalance(t *testing.T) {
	t.Parallel()

	ledger := testLedger(t)
	if ledger.Balance() != 100 {
		t.Fatalf("expected starting balance 100 got %d", ledger.Balance())
	}
}

func TestConfirmAndAwardRoundTrip(t *testing.T) {
	t.Parallel()

	ledger := testLedger(t)
	ticket, err := ledger.AddConfirmedTicket([]int{6, 5, 4, 3, 2, 1}, 0)
	if err != nil {
		t.Fatalf("add confirmed ticket: %v", err)
	}

	if ledger.Balance() != 70 {
		t.Fatalf("expected balance 70 after confirm got %d", ledger.Balance())
	}

	for i, n := range []int{1, 2, 3, 4, 5, 6} {
		if ticket.Numbers[i] != n {
			t.Fatalf("expected sorted numbers got %v", ticket.Numbers)
		}
	}

	rows := [][]int{
		{1, 2, 3, 7, 8, 9},
		{10, 11, 12, 13, 14, 15},
		{4, 5, 6, 16, 17, 18},
	}

	if err := ledger.AwardTicketWinnings(ticket.ID, rows, 40, false); err != nil {
		t.Fatalf("award: %v", err)
	}
	if ledger.Balance() != 110 {
		t.Fatalf("expected balance 110 after award got %d", ledger.Balance())
	}

	history := ledger.History()
	if len(history) != 1 {
		t.Fatalf("expected one ticket got %d", len(history))
	}
	if history[0].Matches != 6 {
		t.Errorf("expected 6 total matches got %d", history[0].Matches)
	}
	if history[0].CreditChange != 10 {
		t.Errorf("expected credit change 10 got %d", history[0].CreditChange)
	}

	// a second identical award call must be a no-op
	if err := ledger.AwardTicketWinnings(ticket.ID, rows, 40, false); err != nil {
		t.Fatalf("second award: %v", err)
	}
	if ledger.Balance() != 110 {
		t.Fatalf("award must apply at most once, balance %d", ledger.Balance())
	}
}

func TestAwardUnknownTicketIsNoop(t *testing.T) {
	t.Parallel()

	ledger := testLedger(t)
	if err := ledger.AwardTicketWinnings(uuid.New(), nil, 100, false); err != nil {
		t.Fatalf("award unknown: %v", err)
	}
	if ledger.Balance() != 100 {
		t.Fatalf("unknown ticket must not change balance, got %d", ledger.Balance())
	}
}

func TestIdenticalTicketsAwardedIndependently(t *testing.T) {
	t.Parallel()

	ledger := testLedger(t)
	numbers := []int{1, 2, 3, 4, 5, 6}

	t1, err := ledger.AddConfirmedTicket(numbers, 0)
	if err != nil {
		t.Fatalf("add ticket: %v", err)
	}
	t2, err := ledger.AddConfirmedTicket(numbers, 0)
	if err != nil {
		t.Fatalf("add ticket: %v", err)
	}
	if t1.ID == t2.ID {
		t.Fatal("tickets must have distinct ids")
	}

	rows := [][]int{{1, 2, 3, 7, 8, 9}}
	if err := ledger.AwardTicketWinnings(t1.ID, rows, 20, false); err != nil {
		t.Fatalf("award t1: %v", err)
	}
	if err := ledger.AwardTicketWinnings(t2.ID, rows, 20, false); err != nil {
		t.Fatalf("award t2: %v", err)
	}

	// 100 - 30 - 30 + 20 + 20
	if ledger.Balance() != 80 {
		t.Fatalf("expected balance 80 got %d", ledger.Balance())
	}
}

func TestTicketsForCycle(t *testing.T) {
	t.Parallel()

	ledger := testLedger(t)
	if _, err := ledger.AddConfirmedTicket([]int{1, 2, 3, 4, 5, 6}, 0); err != nil {
		t.Fatalf("add ticket: %v", err)
	}
	if _, err := ledger.AddConfirmedTicket([]int{7, 8, 9, 10, 11, 12}, 1); err != nil {
		t.Fatalf("add ticket: %v", err)
	}

	if got := len(ledger.TicketsForCycle(0)); got != 1 {
		t.Fatalf("expected 1 ticket for cycle 0 got %d", got)
	}
	if got := len(ledger.TicketsForCycle(1)); got != 1 {
		t.Fatalf("expected 1 ticket for cycle 1 got %d", got)
	}
	if got := len(ledger.TicketsForCycle(2)); got != 0 {
		t.Fatalf("expected no tickets for cycle 2 got %d", got)
	}
}

func TestLosingAwardSettlesTicket(t *testing.T) {
	t.Parallel()

	ledger := testLedger(t)
	ticket, err := ledger.AddConfirmedTicket([]int{1, 2, 3, 4, 5, 6}, 0)
	if err != nil {
		t.Fatalf("add ticket: %v", err)
	}

	rows := [][]int{{7, 8, 9, 10, 11, 12}}
	if err := ledger.AwardTicketWinnings(ticket.ID, rows, 0, false); err != nil {
		t.Fatalf("award: %v", err)
	}
	if ledger.Balance() != 70 {
		t.Fatalf("losing award must not change balance, got %d", ledger.Balance())
	}

	history := ledger.History()
	if len(history) != 1 || history[0].Unprocessed(30) {
		t.Fatal("a zero-win settlement must still mark the ticket processed")
	}

	// a later award attempt against the same ticket must change nothing
	if err := ledger.AwardTicketWinnings(ticket.ID, [][]int{{1, 2, 3, 4, 5, 6}}, 1000, true); err != nil {
		t.Fatalf("second award: %v", err)
	}
	if ledger.Balance() != 70 {
		t.Fatalf("settled ticket must never be awarded again, balance %d", ledger.Balance())
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	ledger := testLedger(t)
	if _, err := ledger.AddConfirmedTicket([]int{1, 2, 3, 4, 5, 6}, 0); err != nil {
		t.Fatalf("add ticket: %v", err)
	}

	if err := ledger.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if ledger.Balance() != 100 || len(ledger.History()) != 0 {
		t.Fatal("reset must restore starting balance and clear history")
	}
}

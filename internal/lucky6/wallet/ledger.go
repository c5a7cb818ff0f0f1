package wallet

import (
	"errors"
	"fmt"
	"sync"

	walletDb "github.com/lucky6-games/lucky6/internal/database/wallet/database"
	"github.com/lucky6-games/lucky6/internal/database/wallet/model"
	"github.com/lucky6-games/lucky6/internal/logging"
	"github.com/lucky6-games/lucky6/internal/lucky6/prize"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Ledger owns one chat's balance and ticket history. Every mutation is
// persisted before it returns.
type Ledger struct {
	mtx sync.Mutex

	db     *walletDb.DB
	chatID int64

	cost     int
	starting int

	logger *zap.SugaredLogger
}

func NewLedger(db *walletDb.DB, chatID int64, cost, starting int) *Ledger {
	return &Ledger{
		db:       db,
		chatID:   chatID,
		cost:     cost,
		starting: starting,
		logger:   logging.DefaultLogger().Named("wallet.ledger"),
	}
}

// Wallet loads the persisted wallet, falling back to a fresh one when the
// record is missing or unreadable.
func (l *Ledger) Wallet() model.Wallet {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.walletLocked()
}

func (l *Ledger) walletLocked() model.Wallet {
	w, err := l.db.Fetch(l.chatID)
	if err != nil {
		if !errors.Is(err, walletDb.ErrNotFound) {
			l.logger.Warnf("wallet fetch for chat %d: %v, using defaults", l.chatID, err)
		}
		return model.NewWallet(l.chatID, l.starting)
	}
	return w
}

func (l *Ledger) Balance() int {
	return l.Wallet().Balance
}

func (l *Ledger) History() []model.Ticket {
	return l.Wallet().History
}

// AddConfirmedTicket debits the fixed ticket cost and appends an unprocessed
// ticket record, persisting both atomically.
func (l *Ledger) AddConfirmedTicket(numbers []int, cycle int) (model.Ticket, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	w := l.walletLocked()
	t := model.NewTicket(numbers, l.cost, cycle)
	w.Balance -= l.cost
	w.History = append(w.History, t)

	if err := l.db.Store(w); err != nil {
		return model.Ticket{}, fmt.Errorf("wallet store: %w", err)
	}

	l.logger.Infof("ticket %s confirmed for chat %d cycle %d, balance %d", t.ID, l.chatID, cycle, w.Balance)
	return t, nil
}

// AwardTicketWinnings settles a ticket exactly once. The ticket is addressed
// by its ID; an already-settled or unknown ticket is a logged no-op.
func (l *Ledger) AwardTicketWinnings(id uuid.UUID, rows [][]int, winnings int, jackpotWon bool) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	w := l.walletLocked()

	idx := -1
	for i := range w.History {
		if w.History[i].ID == id {
			idx = i
			break
		}
	}

	if idx < 0 {
		l.logger.Warnf("award skipped, ticket %s not found for chat %d", id, l.chatID)
		return nil
	}

	t := &w.History[idx]
	if !t.Unprocessed(l.cost) {
		l.logger.Warnf("award skipped, ticket %s already processed", id)
		return nil
	}

	t.Matches = prize.Matches(t.Numbers, rows)
	t.CreditChange = -l.cost + winnings
	t.Processed = true
	if winnings > 0 {
		w.Balance += winnings
	}

	if err := l.db.Store(w); err != nil {
		return fmt.Errorf("wallet store: %w", err)
	}

	l.logger.Infof("ticket %s awarded %d credits (jackpot: %v), balance %d", id, winnings, jackpotWon, w.Balance)
	return nil
}

// TicketsForCycle returns the confirmed tickets recorded under a cycle index.
func (l *Ledger) TicketsForCycle(cycle int) []model.Ticket {
	var tickets []model.Ticket
	for _, t := range l.Wallet().History {
		if t.Cycle == cycle {
			tickets = append(tickets, t)
		}
	}
	return tickets
}

// Reset restores the starting balance and clears history.
func (l *Ledger) Reset() error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if err := l.db.Store(model.NewWallet(l.chatID, l.starting)); err != nil {
		return fmt.Errorf("wallet store: %w", err)
	}

	l.logger.Infof("wallet reset for chat %d", l.chatID)
	return nil
}

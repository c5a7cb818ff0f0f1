package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Ticket is one confirmed 6-number pick and its settlement state.
type Ticket struct {
	ID           uuid.UUID `json:"id"`
	Date         time.Time `json:"date"`
	Numbers      []int     `json:"numbers"`
	Matches      int       `json:"matches"`
	CreditChange int       `json:"creditChange"`
	Cycle        int       `json:"cycle"`
	Processed    bool      `json:"processed"`
}

func NewTicket(numbers []int, cost, cycle int) Ticket {
	sorted := make([]int, len(numbers))
	copy(sorted, numbers)
	sort.Ints(sorted)

	return Ticket{
		ID:           uuid.New(),
		Date:         time.Now(),
		Numbers:      sorted,
		CreditChange: -cost,
		Cycle:        cycle,
	}
}

// Unprocessed reports whether the ticket has not been settled yet. A losing
// settlement leaves the debit and match count untouched, so the explicit flag
// is authoritative; the debit heuristic only covers records written before the
// flag existed.
func (t Ticket) Unprocessed(cost int) bool {
	if t.Processed {
		return false
	}
	return t.Matches == 0 && t.CreditChange == -cost
}

type Wallet struct {
	ChatID  int64    `json:"chatID"`
	Balance int      `json:"balance"`
	History []Ticket `json:"history"`
}

func NewWallet(chatID int64, balance int) Wallet {
	return Wallet{ChatID: chatID, Balance: balance}
}

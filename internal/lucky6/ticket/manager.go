package ticket

import (
	"fmt"
	"sort"
	"sync"

	walletModel "github.com/lucky6-games/lucky6/internal/database/wallet/model"

	"github.com/google/uuid"
)

const (
	// Size is the number of picks a ticket must hold.
	Size = 6
	// MaxPerCycle caps confirmed tickets within one cycle.
	MaxPerCycle = 3
)

var (
	// ErrPickLimit is the reject ("shake") signal for a seventh pick.
	ErrPickLimit       = fmt.Errorf("ticket already holds %d numbers", Size)
	ErrSelectionLocked = fmt.Errorf("selection is locked")
	ErrNotOpen         = fmt.Errorf("ticket sales are closed")
	ErrIncomplete      = fmt.Errorf("ticket needs exactly %d numbers", Size)
	ErrLimitReached    = fmt.Errorf("at most %d tickets per cycle", MaxPerCycle)
)

// Ledger is the wallet capability the manager needs on confirmation.
type Ledger interface {
	AddConfirmedTicket(numbers []int, cycle int) (walletModel.Ticket, error)
}

type Confirmed struct {
	ID      uuid.UUID
	Numbers []int
	Cycle   int
}

// Manager tracks the in-progress pick set and the cycle's confirmed tickets.
type Manager struct {
	mtx sync.RWMutex

	openFn func() bool
	ledger Ledger

	cycle     int
	picks     []int
	selecting bool
	confirmed []Confirmed
}

// NewManager wires the selection rules to a phase gate and a wallet ledger.
func NewManager(openFn func() bool, ledger Ledger) *Manager {
	return &Manager{openFn: openFn, ledger: ledger, selecting: true}
}

func (m *Manager) Picks() []int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	out := make([]int, len(m.picks))
	copy(out, m.picks)
	return out
}

func (m *Manager) Confirmed() []Confirmed {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	out := make([]Confirmed, len(m.confirmed))
	copy(out, m.confirmed)
	return out
}

// ConfirmedForCycle returns the tickets confirmed during the given cycle of
// the current run. The confirmed list is dropped on every cycle change, so
// tickets from earlier cycles or earlier runs are never reported.
func (m *Manager) ConfirmedForCycle(cycle int) []Confirmed {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	if cycle != m.cycle {
		return nil
	}
	out := make([]Confirmed, len(m.confirmed))
	copy(out, m.confirmed)
	return out
}

// SelectionAllowed reports whether picks are currently accepted.
func (m *Manager) SelectionAllowed() bool {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.selecting && m.openFn()
}

// Pick toggles membership of n in the in-progress set.
func (m *Manager) Pick(n int) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if !m.selecting || !m.openFn() {
		return ErrSelectionLocked
	}

	for i, picked := range m.picks {
		if picked == n {
			m.picks = append(m.picks[:i], m.picks[i+1:]...)
			return nil
		}
	}

	if len(m.picks) >= Size {
		return ErrPickLimit
	}

	m.picks = append(m.picks, n)
	return nil
}

// Confirm turns the current picks into a ticket, debiting the wallet. A new
// selection must be started explicitly afterwards.
func (m *Manager) Confirm() (Confirmed, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if !m.openFn() {
		return Confirmed{}, ErrNotOpen
	}
	if !m.selecting {
		return Confirmed{}, ErrSelectionLocked
	}
	if len(m.picks) != Size {
		return Confirmed{}, ErrIncomplete
	}
	if len(m.confirmed) >= MaxPerCycle {
		return Confirmed{}, ErrLimitReached
	}

	numbers := make([]int, len(m.picks))
	copy(numbers, m.picks)
	sort.Ints(numbers)

	record, err := m.ledger.AddConfirmedTicket(numbers, m.cycle)
	if err != nil {
		return Confirmed{}, fmt.Errorf("ledger add confirmed ticket: %w", err)
	}

	confirmed := Confirmed{ID: record.ID, Numbers: record.Numbers, Cycle: m.cycle}
	m.confirmed = append(m.confirmed, confirmed)
	m.picks = nil
	m.selecting = false

	return confirmed, nil
}

// StartNewSelection explicitly arms another in-progress pick set.
func (m *Manager) StartNewSelection() {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.picks = nil
	m.selecting = true
}

// ResetCycle drops all selection state when the cycle index changes.
func (m *Manager) ResetCycle(cycle int) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.cycle = cycle
	m.picks = nil
	m.confirmed = nil
	m.selecting = true
}

package jackpot

import (
	"errors"
	"fmt"
	"sync"

	jackpotDb "github.com/lucky6-games/lucky6/internal/database/jackpot/database"
	"github.com/lucky6-games/lucky6/internal/logging"

	"go.uber.org/zap"
)

// Pot is one chat's persisted jackpot pool. Accrual is guarded so a cycle can
// contribute at most once, no matter how often the transition effect fires.
type Pot struct {
	mtx sync.Mutex

	db     *jackpotDb.DB
	chatID int64

	base      int
	increment int

	accrued map[int]struct{}

	logger *zap.SugaredLogger
}

func NewPot(db *jackpotDb.DB, chatID int64, base, increment int) *Pot {
	return &Pot{
		db:        db,
		chatID:    chatID,
		base:      base,
		increment: increment,
		accrued:   map[int]struct{}{},
		logger:    logging.DefaultLogger().Named("jackpot.pot"),
	}
}

// Amount loads the persisted pot, falling back to the base value.
func (p *Pot) Amount() int {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.amountLocked()
}

func (p *Pot) amountLocked() int {
	amount, err := p.db.Fetch(p.chatID)
	if err != nil {
		if !errors.Is(err, jackpotDb.ErrNotFound) {
			p.logger.Warnf("jackpot fetch for chat %d: %v, using base", p.chatID, err)
		}
		return p.base
	}
	return amount
}

// AddForCycle grows the pot once for the given cycle. Returns whether the
// increment was applied.
func (p *Pot) AddForCycle(cycle int) (bool, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if _, ok := p.accrued[cycle]; ok {
		return false, nil
	}

	amount := p.amountLocked() + p.increment
	if err := p.db.Store(p.chatID, amount); err != nil {
		return false, fmt.Errorf("jackpot store: %w", err)
	}

	p.accrued[cycle] = struct{}{}
	p.logger.Infof("jackpot for chat %d grew to %d (cycle %d)", p.chatID, amount, cycle)
	return true, nil
}

// Reset restores the pot to its base value.
func (p *Pot) Reset() error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if err := p.db.Store(p.chatID, p.base); err != nil {
		return fmt.Errorf("jackpot store: %w", err)
	}

	p.logger.Infof("jackpot for chat %d reset to %d", p.chatID, p.base)
	return nil
}

// ForgetAccrued clears the per-cycle accrual guard, used on session reset.
func (p *Pot) ForgetAccrued() {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.accrued = map[int]struct{}{}
}

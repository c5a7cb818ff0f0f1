package award

import (
	"context"
	"sort"
	"sync"
	"time"

	historyModel "github.com/lucky6-games/lucky6/internal/database/drawhistory/model"
	"github.com/lucky6-games/lucky6/internal/logging"
	"github.com/lucky6-games/lucky6/internal/lucky6/prize"
	"github.com/lucky6-games/lucky6/internal/lucky6/ticket"

	"github.com/google/uuid"
)

// Rows resolves the drawn rows owned by a cycle index.
type Rows interface {
	Rows(cycle int) [][]int
}

// Tickets is the selection capability: the current run's confirmed tickets
// for a cycle. Settlement must never be derived from persisted wallet history,
// which outlives runs and restarts while cycle indexes start over.
type Tickets interface {
	ConfirmedForCycle(cycle int) []ticket.Confirmed
}

// Ledger is the wallet capability the coordinator needs for settlement.
type Ledger interface {
	AwardTicketWinnings(id uuid.UUID, rows [][]int, winnings int, jackpotWon bool) error
}

// Pot is the jackpot capability: read, accrue, reset.
type Pot interface {
	Amount() int
	AddForCycle(cycle int) (bool, error)
	Reset() error
}

// Recorder stores the immutable per-cycle result entry.
type Recorder interface {
	RecordResult(r historyModel.Result) error
}

// Notifier receives user-facing result messaging. All values are precomputed;
// the notifier must never trigger recomputation.
type Notifier interface {
	TicketResult(ordinal int, numbers []int, result prize.Result)
	HighlightTicket(ordinal int, numbers []int)
	ClearHighlight(ordinal int)
	FinalResult(jackpotWon bool, totalWinnings int)
}

// Schedule holds the result-message timeline, as offsets from the moment the
// reveal completes.
type Schedule struct {
	TicketResult   [3]time.Duration
	HighlightStart [3]time.Duration
	HighlightEnd   [3]time.Duration
	Final          time.Duration
}

// DefaultSchedule matches a 9 second reveal: first result right after the
// last number, later tickets highlighted then announced, consolidated result
// last.
func DefaultSchedule() Schedule {
	return Schedule{
		TicketResult:   [3]time.Duration{1 * time.Second, 11 * time.Second, 21 * time.Second},
		HighlightStart: [3]time.Duration{0, 4 * time.Second, 14 * time.Second},
		HighlightEnd:   [3]time.Duration{0, 10 * time.Second, 20 * time.Second},
		Final:          24 * time.Second,
	}
}

type outcome struct {
	ordinal int
	id      uuid.UUID
	numbers []int
	result  prize.Result
}

type pending struct {
	cycle      int
	rows       [][]int
	outcomes   []outcome
	total      int
	jackpotWon bool
}

// Coordinator settles each cycle exactly once after its reveal completes:
// winnings computation, history record, scheduled messaging, and a single
// award pass over the wallet.
type Coordinator struct {
	mtx sync.Mutex

	rows     Rows
	tickets  Tickets
	ledger   Ledger
	pot      Pot
	recorder Recorder
	notifier Notifier
	schedule Schedule

	awarded map[int]bool
	cancel  context.CancelFunc
}

func NewCoordinator(rows Rows, tickets Tickets, ledger Ledger, pot Pot, recorder Recorder, notifier Notifier, schedule Schedule) *Coordinator {
	return &Coordinator{
		rows:     rows,
		tickets:  tickets,
		ledger:   ledger,
		pot:      pot,
		recorder: recorder,
		notifier: notifier,
		schedule: schedule,
		awarded:  map[int]bool{},
	}
}

// RevealCompleted computes the cycle's results and plays them out on the
// message timeline; the wallet award applies at the final step.
func (c *Coordinator) RevealCompleted(ctx context.Context, cycle int) {
	c.settle(ctx, cycle, false)
}

// InstantFinish performs the identical computation but shows the final result
// and applies the award immediately, bypassing the timeline.
func (c *Coordinator) InstantFinish(ctx context.Context, cycle int) {
	c.settle(ctx, cycle, true)
}

func (c *Coordinator) settle(ctx context.Context, cycle int, instant bool) {
	logger := logging.FromContext(ctx).Named("award.coordinator")

	c.mtx.Lock()
	if c.awarded[cycle] {
		c.mtx.Unlock()
		logger.Debugf("cycle %d already settled, ignoring completion signal", cycle)
		return
	}
	c.awarded[cycle] = true

	rows := c.rows.Rows(cycle)
	if len(rows) == 0 {
		c.mtx.Unlock()
		logger.Warnf("no rows for cycle %d, nothing to settle", cycle)
		return
	}

	p := &pending{cycle: cycle, rows: rows}
	pot := c.pot.Amount()

	for i, t := range c.tickets.ConfirmedForCycle(cycle) {
		if i >= ticket.MaxPerCycle {
			break
		}
		if len(t.Numbers) != prize.TicketSize {
			logger.Warnf("ticket %s has %d numbers, skipping payout", t.ID, len(t.Numbers))
			continue
		}

		result := prize.CalculateWinnings(t.Numbers, rows, pot)
		p.outcomes = append(p.outcomes, outcome{ordinal: i, id: t.ID, numbers: t.Numbers, result: result})
		p.total += result.TotalWinnings
		if result.JackpotWon {
			p.jackpotWon = true
		}
	}

	var flat []int
	for _, row := range rows {
		flat = append(flat, row...)
	}
	if err := c.recorder.RecordResult(historyModel.NewResult(cycle, flat, p.jackpotWon, p.total)); err != nil {
		logger.Errorf("record cycle result: %v", err)
	}

	if instant {
		c.mtx.Unlock()
		c.finish(ctx, p)
		return
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.mtx.Unlock()

	go c.timeline(ctx, p)
}

// timeline plays the per-ticket messages and highlights in scheduled order.
// All of it hangs off the cycle's context, so a cycle change cancels it
// atomically.
func (c *Coordinator) timeline(ctx context.Context, p *pending) {
	type action struct {
		at time.Duration
		fn func()
	}

	var actions []action
	for i := range p.outcomes {
		o := p.outcomes[i]
		actions = append(actions, action{c.schedule.TicketResult[o.ordinal], func() {
			c.notifier.TicketResult(o.ordinal, o.numbers, o.result)
		}})
		if o.ordinal > 0 {
			actions = append(actions, action{c.schedule.HighlightStart[o.ordinal], func() {
				c.notifier.HighlightTicket(o.ordinal, o.numbers)
			}})
			actions = append(actions, action{c.schedule.HighlightEnd[o.ordinal], func() {
				c.notifier.ClearHighlight(o.ordinal)
			}})
		}
	}
	actions = append(actions, action{c.schedule.Final, func() {
		c.finish(ctx, p)
	}})

	sort.SliceStable(actions, func(i, j int) bool { return actions[i].at < actions[j].at })

	start := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()
	if !timer.Stop() {
		<-timer.C
	}

	for _, a := range actions {
		wait := a.at - time.Since(start)
		if wait < 0 {
			wait = 0
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		a.fn()
	}
}

// finish shows the consolidated result and applies the one award pass for the
// cycle, resetting the jackpot on a win.
func (c *Coordinator) finish(ctx context.Context, p *pending) {
	logger := logging.FromContext(ctx).Named("award.coordinator")

	c.notifier.FinalResult(p.jackpotWon, p.total)

	for _, o := range p.outcomes {
		if err := c.ledger.AwardTicketWinnings(o.id, p.rows, o.result.TotalWinnings, o.result.JackpotWon); err != nil {
			logger.Errorf("award ticket %s: %v", o.id, err)
		}
	}

	if p.jackpotWon {
		if err := c.pot.Reset(); err != nil {
			logger.Errorf("jackpot reset: %v", err)
		}
	}

	logger.Infof("cycle %d settled: total %d, jackpot %v", p.cycle, p.total, p.jackpotWon)
}

// CycleAdvanced cancels any scheduled messaging for the finished cycle and
// accrues the jackpot when that cycle of the current run sold at least one
// ticket. Must run before the selection manager drops the cycle's tickets.
func (c *Coordinator) CycleAdvanced(ctx context.Context, prevCycle int) {
	logger := logging.FromContext(ctx).Named("award.coordinator")

	c.mtx.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mtx.Unlock()

	if len(c.tickets.ConfirmedForCycle(prevCycle)) > 0 {
		if _, err := c.pot.AddForCycle(prevCycle); err != nil {
			logger.Errorf("jackpot accrual for cycle %d: %v", prevCycle, err)
		}
	}
}

// Reset drops all per-session settlement state.
func (c *Coordinator) Reset() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.awarded = map[int]bool{}
}

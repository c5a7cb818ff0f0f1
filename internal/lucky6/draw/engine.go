package draw

import (
	"context"
	"sync"
	"time"

	"github.com/lucky6-games/lucky6/internal/logging"
)

// Engine owns the session's pre-generated draw sets and unveils the active
// cycle's rows on a timed schedule. One reveal session exists at a time; its
// scheduled work hangs off a single cancellation token.
type Engine struct {
	mtx sync.Mutex

	sets         [][]int
	rowsPerCycle int

	revealCycle int
	order       []int
	revealed    []int
	done        bool
	cancel      context.CancelFunc

	completedCh chan int
}

func NewEngine(sets [][]int, rowsPerCycle int) *Engine {
	return &Engine{
		sets:         sets,
		rowsPerCycle: rowsPerCycle,
		revealCycle:  -1,
		completedCh:  make(chan int, 8),
	}
}

// Rows returns the row slice owned by a cycle index.
func (e *Engine) Rows(cycle int) [][]int {
	start := cycle * e.rowsPerCycle
	if start < 0 || start >= len(e.sets) {
		return nil
	}

	end := start + e.rowsPerCycle
	if end > len(e.sets) {
		end = len(e.sets)
	}

	return e.sets[start:end]
}

// Numbers returns the cycle's rows flattened in natural order.
func (e *Engine) Numbers(cycle int) []int {
	var numbers []int
	for _, row := range e.Rows(cycle) {
		numbers = append(numbers, row...)
	}
	return numbers
}

// Completed reports the revealed cycle index and whether its reveal finished.
func (e *Engine) Completed() (int, bool) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.revealCycle, e.done
}

// Completion delivers the cycle index of every finished reveal.
func (e *Engine) Completion() <-chan int {
	return e.completedCh
}

// Revealed returns the numbers unveiled so far, in reveal order.
func (e *Engine) Revealed() []int {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	out := make([]int, len(e.revealed))
	copy(out, e.revealed)
	return out
}

// StartReveal begins unveiling the cycle's numbers over the given duration.
// Any reveal still running for another cycle is cancelled first, so two
// reveal sequences never overlap.
func (e *Engine) StartReveal(ctx context.Context, cycle int, duration time.Duration, firstTicket []int) {
	logger := logging.FromContext(ctx).Named("draw.engine")

	e.mtx.Lock()
	e.cancelLocked()

	order := buildOrder(e.Rows(cycle), firstTicket)
	if len(order) == 0 {
		e.mtx.Unlock()
		logger.Warnf("no rows for cycle %d, reveal skipped", cycle)
		return
	}

	e.revealCycle = cycle
	e.order = order
	e.revealed = e.revealed[:0]
	e.done = false

	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	interval := duration / time.Duration(len(order))
	e.mtx.Unlock()

	logger.Infof("reveal started for cycle %d, %d numbers every %s", cycle, len(order), interval)
	go e.unveil(ctx, cycle, interval)
}

func (e *Engine) unveil(ctx context.Context, cycle int, interval time.Duration) {
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		e.mtx.Lock()
		if e.revealCycle != cycle || e.done {
			e.mtx.Unlock()
			return
		}

		e.revealed = append(e.revealed, e.order[len(e.revealed)])
		if len(e.revealed) == len(e.order) {
			e.done = true
			e.mtx.Unlock()
			e.notifyCompleted(cycle)
			return
		}
		e.mtx.Unlock()

		timer.Reset(interval)
	}
}

// FinishInstantly cancels pending unveils and marks the whole cycle revealed.
// Used when the timer leaves REVEAL early or a stalled schedule is detected.
func (e *Engine) FinishInstantly() {
	e.mtx.Lock()
	if e.revealCycle < 0 || e.done {
		e.mtx.Unlock()
		return
	}

	e.cancelLocked()
	e.revealed = append(e.revealed[:0], e.order...)
	e.done = true
	cycle := e.revealCycle
	e.mtx.Unlock()

	e.notifyCompleted(cycle)
}

// Reset clears all reveal state and cancels scheduled work.
func (e *Engine) Reset() {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.cancelLocked()
	e.revealCycle = -1
	e.order = nil
	e.revealed = nil
	e.done = false
}

func (e *Engine) cancelLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Engine) notifyCompleted(cycle int) {
	select {
	case e.completedCh <- cycle:
	default:
	}
}

// buildOrder front-loads the first confirmed ticket's matches within each row;
// rows keep their natural order. Without a valid first ticket the flat natural
// order is used.
func buildOrder(rows [][]int, firstTicket []int) []int {
	var order []int
	picked := make(map[int]bool, len(firstTicket))
	for _, n := range firstTicket {
		picked[n] = true
	}

	for _, row := range rows {
		if len(picked) == 0 {
			order = append(order, row...)
			continue
		}

		for _, n := range row {
			if picked[n] {
				order = append(order, n)
			}
		}
		for _, n := range row {
			if !picked[n] {
				order = append(order, n)
			}
		}
	}

	return order
}

package cycle

import (
	"context"
	"sync"
	"time"

	"github.com/lucky6-games/lucky6/internal/logging"
)

// Phase is the state of the active draw cycle.
type Phase uint8

const (
	PhaseOpen Phase = iota + 1
	PhaseCutOff
	PhaseReveal
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "open"
	case PhaseCutOff:
		return "cut-off"
	case PhaseReveal:
		return "reveal"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

type EventKind uint8

const (
	EventPhaseChanged EventKind = iota + 1
	EventCycleAdvanced
	EventCompleted
	EventReset
)

type Event struct {
	Kind      EventKind
	Phase     Phase
	Cycle     int
	PrevCycle int
	Remaining int
}

type Config struct {
	// LoopSeconds is the full countdown length of one cycle.
	LoopSeconds int
	// CutOffStart and CutOffEnd are thresholds in seconds remaining:
	// OPEN above CutOffStart, CUT_OFF down to CutOffEnd, REVEAL below.
	CutOffStart int
	CutOffEnd   int
	MaxCycles   int
}

// Timer drives the phase machine on a wall-clock-independent countdown.
// All transitions happen inside Tick under one lock, so each cycle boundary
// fires its advance event exactly once.
type Timer struct {
	mtx    sync.RWMutex
	config Config

	remaining int
	cycle     int
	complete  bool

	subs   []chan Event
	cancel context.CancelFunc
	sema   sync.Once
}

func NewTimer(config Config) *Timer {
	return &Timer{config: config, remaining: config.LoopSeconds}
}

// Run starts the 1-second tick loop. Stop or context cancellation ends it.
func (t *Timer) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.sema.Do(func() {
		go t.loop(ctx)
	})
	logging.FromContext(ctx).Named("cycle.timer").Infof(
		"cycle timer started, loop %ds, max cycles %d", t.config.LoopSeconds, t.config.MaxCycles,
	)
}

func (t *Timer) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
}

func (t *Timer) loop(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Tick()
		}
	}
}

// Subscribe returns a buffered event channel. Subscribers must drain it.
func (t *Timer) Subscribe() <-chan Event {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	ch := make(chan Event, 16)
	t.subs = append(t.subs, ch)
	return ch
}

// Tick advances the countdown by one second.
func (t *Timer) Tick() {
	t.mtx.Lock()

	if t.complete {
		t.mtx.Unlock()
		return
	}

	prevPhase := t.phaseLocked()
	t.remaining--

	var events []Event
	if t.remaining <= 0 {
		prevCycle := t.cycle
		t.cycle++
		if t.cycle >= t.config.MaxCycles {
			t.complete = true
			events = append(events, Event{
				Kind:      EventCompleted,
				Phase:     PhaseComplete,
				Cycle:     t.cycle,
				PrevCycle: prevCycle,
			})
		} else {
			t.remaining = t.config.LoopSeconds
			events = append(events, Event{
				Kind:      EventCycleAdvanced,
				Phase:     t.phaseLocked(),
				Cycle:     t.cycle,
				PrevCycle: prevCycle,
				Remaining: t.remaining,
			})
		}
	}

	if phase := t.phaseLocked(); phase != prevPhase {
		events = append(events, Event{
			Kind:      EventPhaseChanged,
			Phase:     phase,
			Cycle:     t.cycle,
			Remaining: t.remaining,
		})
	}

	subs := make([]chan Event, len(t.subs))
	copy(subs, t.subs)
	t.mtx.Unlock()

	for _, event := range events {
		for _, sub := range subs {
			sub <- event
		}
	}
}

// Reset returns the machine to cycle 0 with a full countdown. It is the only
// way out of the COMPLETE state.
func (t *Timer) Reset() {
	t.mtx.Lock()
	t.cycle = 0
	t.remaining = t.config.LoopSeconds
	t.complete = false

	event := Event{Kind: EventReset, Phase: t.phaseLocked(), Remaining: t.remaining}
	subs := make([]chan Event, len(t.subs))
	copy(subs, t.subs)
	t.mtx.Unlock()

	for _, sub := range subs {
		sub <- event
	}
}

func (t *Timer) Phase() Phase {
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return t.phaseLocked()
}

func (t *Timer) Cycle() int {
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return t.cycle
}

func (t *Timer) Remaining() int {
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return t.remaining
}

func (t *Timer) phaseLocked() Phase {
	switch {
	case t.complete:
		return PhaseComplete
	case t.remaining > t.config.CutOffStart:
		return PhaseOpen
	case t.remaining > t.config.CutOffEnd:
		return PhaseCutOff
	default:
		return PhaseReveal
	}
}

package match

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	historyModel "github.com/lucky6-games/lucky6/internal/database/drawhistory/model"
	"github.com/lucky6-games/lucky6/internal/logging"
	"github.com/lucky6-games/lucky6/internal/lucky6/assist"
	"github.com/lucky6-games/lucky6/internal/lucky6/award"
	"github.com/lucky6-games/lucky6/internal/lucky6/cycle"
	"github.com/lucky6-games/lucky6/internal/lucky6/draw"
	"github.com/lucky6-games/lucky6/internal/lucky6/jackpot"
	"github.com/lucky6-games/lucky6/internal/lucky6/prize"
	"github.com/lucky6-games/lucky6/internal/lucky6/resource"
	"github.com/lucky6-games/lucky6/internal/lucky6/shuffle"
	"github.com/lucky6-games/lucky6/internal/lucky6/ticket"
	"github.com/lucky6-games/lucky6/internal/lucky6/wallet"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"golang.org/x/sync/errgroup"
)

// NewSession builds one chat's lottery session: the full run of draw sets is
// generated up front, the timer and reveal engine are wired but not started.
func NewSession(config Config) (*Session, error) {
	sets, err := shuffle.DrawSets(config.DomainMax, config.RowSize, config.RowsPerCycle*config.Cycle.MaxCycles)
	if err != nil {
		return nil, fmt.Errorf("generate draw sets: %w", err)
	}

	s := &Session{
		Config:     config,
		CreatedAt:  time.Now(),
		tg:         config.Tg,
		timer:      cycle.NewTimer(config.Cycle),
		engine:     draw.NewEngine(sets, config.RowsPerCycle),
		ledger:     config.Ledger,
		pot:        config.Pot,
		sndCh:      make(chan tgbotapi.Chattable, 10),
		highlights: map[int][]int{},
		doneFn:     config.DoneFn,
		timeout:    config.Timeout,
	}
	s.tickets = ticket.NewManager(func() bool {
		return s.timer.Phase() == cycle.PhaseOpen
	}, config.Ledger)
	s.coord = award.NewCoordinator(s.engine, s.tickets, config.Ledger, config.Pot, s, s, award.DefaultSchedule())

	logger := logging.DefaultLogger().Named("match.session")
	for _, row := range sets {
		if err := config.HistoryDb.AddDraw(config.ChatID, row); err != nil {
			logger.Errorf("record session draw for chat %d: %v", config.ChatID, err)
		}
	}

	return s, nil
}

type Session struct {
	Config    Config
	CreatedAt time.Time

	tg      *tgbotapi.BotAPI
	timer   *cycle.Timer
	engine  *draw.Engine
	tickets *ticket.Manager
	coord   *award.Coordinator
	ledger  *wallet.Ledger
	pot     *jackpot.Pot

	mtx        sync.RWMutex
	highlights map[int][]int
	pickMsgID  int

	sndCh   chan tgbotapi.Chattable
	doneFn  func(session *Session) error
	timeout time.Duration
	cancel  func()
	sema    sync.Once
}

func (s *Session) Stop() {
	s.cancel()
}

func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	s.cancel = cancel
	logger := logging.FromContext(ctx)
	s.sema.Do(func() {
		events := s.timer.Subscribe()
		go s.loop(ctx, events)
		go s.sendingPool(ctx)
		s.timer.Run(ctx)
	})
	logger.Infof("lottery session started, chat: %d, player: %s", s.Config.ChatID, s.Config.PlayerName)

	s.asyncSend(s.newTextMsg(fmt.Sprintf(resource.TextSalesOpenMsg, s.timer.Cycle()+1)))
	s.sendPickKeyboard()
}

func (s *Session) Phase() cycle.Phase {
	return s.timer.Phase()
}

func (s *Session) Remaining() int {
	return s.timer.Remaining()
}

// Restart begins a fresh run after the session completed. The wallet and the
// jackpot pool persist across runs, the settlement and accrual guards do not.
func (s *Session) Restart() {
	if s.timer.Phase() != cycle.PhaseComplete {
		return
	}
	s.timer.Reset()
}

func (s *Session) loop(ctx context.Context, events <-chan cycle.Event) {
	defer func() {
		if s.doneFn != nil {
			if err := s.doneFn(s); err != nil {
				logging.FromContext(ctx).Errorf("done fn: %v", err)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			s.handleTimerEvent(ctx, event)
		case cycleIdx := <-s.engine.Completion():
			s.coord.RevealCompleted(ctx, cycleIdx)
		}
	}
}

func (s *Session) sendingPool(ctx context.Context) {
	logger := logging.FromContext(ctx).Named("match.sendingPool")
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.sndCh:
			if _, err := s.tg.Send(msg); err != nil {
				logger.Errorf("send msg: %v", err)
			}
		}
	}
}

func (s *Session) handleTimerEvent(ctx context.Context, event cycle.Event) {
	switch event.Kind {
	case cycle.EventPhaseChanged:
		s.handlePhaseChange(ctx, event)
	case cycle.EventCycleAdvanced:
		s.finishRevealIfPending(ctx, event.PrevCycle)
		s.coord.CycleAdvanced(ctx, event.PrevCycle)
		s.engine.Reset()
		s.tickets.ResetCycle(event.Cycle)
		s.clearHighlights()
		s.asyncSend(s.newTextMsg(fmt.Sprintf(resource.TextSalesOpenMsg, event.Cycle+1)))
		s.sendPickKeyboard()
	case cycle.EventCompleted:
		s.finishRevealIfPending(ctx, event.PrevCycle)
		s.coord.CycleAdvanced(ctx, event.PrevCycle)
		s.asyncSend(s.newTextMsg(resource.TextSessionComplete))
	case cycle.EventReset:
		s.coord.Reset()
		s.engine.Reset()
		s.tickets.ResetCycle(0)
		s.pot.ForgetAccrued()
		s.clearHighlights()
		s.asyncSend(s.newTextMsg(fmt.Sprintf(resource.TextSalesOpenMsg, 1)))
		s.sendPickKeyboard()
	}
}

func (s *Session) handlePhaseChange(ctx context.Context, event cycle.Event) {
	switch event.Phase {
	case cycle.PhaseCutOff:
		s.asyncSend(s.newTextMsg(resource.TextSalesClosedMsg))
	case cycle.PhaseReveal:
		var first []int
		if confirmed := s.tickets.Confirmed(); len(confirmed) > 0 {
			first = confirmed[0].Numbers
		}
		s.engine.StartReveal(ctx, event.Cycle, s.Config.RevealDuration, first)
		go s.revealBroadcast(ctx, event.Cycle)
	}
}

// finishRevealIfPending forces an incomplete reveal to its end and settles the
// cycle immediately. It must complete before the selection manager drops the
// cycle's confirmed tickets, so the completion signal is consumed here rather
// than left for the event loop.
func (s *Session) finishRevealIfPending(ctx context.Context, cycleIdx int) {
	revealCycle, done := s.engine.Completed()
	if revealCycle != cycleIdx || done {
		return
	}

	s.engine.FinishInstantly()
	select {
	case idx := <-s.engine.Completion():
		s.coord.InstantFinish(ctx, idx)
	default:
	}
}

// revealBroadcast edits one message with the unveiling grid until the reveal
// finishes or the context closes.
func (s *Session) revealBroadcast(ctx context.Context, cycleIdx int) {
	logger := logging.FromContext(ctx).Named("match.revealBroadcast")

	output, err := s.tg.Send(s.newTextMsg(fmt.Sprintf(resource.TextRevealStartMsg, cycleIdx+1)))
	if err != nil {
		logger.Errorf("send msg: %v", err)
		return
	}

	editCh := make(chan string, 1)
	g := errgroup.Group{}
	g.Go(func() error {
		for msg := range editCh {
			if _, err := s.tg.Send(tgbotapi.NewEditMessageText(s.Config.ChatID, output.MessageID, msg)); err != nil {
				return fmt.Errorf("send msg: %w", err)
			}
		}
		return nil
	})

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var sent string
	for {
		select {
		case <-ctx.Done():
			close(editCh)
			_ = g.Wait()
			return
		case <-ticker.C:
		}

		msg := renderReveal(cycleIdx, s.engine.Rows(cycleIdx), s.engine.Revealed(), s.highlighted())
		if msg != sent {
			editCh <- msg
			sent = msg
		}

		if revealCycle, done := s.engine.Completed(); revealCycle != cycleIdx || done {
			close(editCh)
			if err := g.Wait(); err != nil {
				logger.Errorf("reveal broadcast: %v", err)
			}
			return
		}
	}
}

// Execute processes one update addressed to this chat's session.
func (s *Session) Execute(upd tgbotapi.Update) error {
	if upd.CallbackQuery != nil {
		if err := s.executeCbQuery(upd.CallbackQuery); err != nil {
			return fmt.Errorf("execute msgCallback query: %w", err)
		}
	}

	return nil
}

func (s *Session) executeCbQuery(query *tgbotapi.CallbackQuery) error {
	switch {
	case strings.HasPrefix(query.Data, resource.CbPickPrefix):
		n, err := strconv.Atoi(strings.TrimPrefix(query.Data, resource.CbPickPrefix))
		if err != nil {
			return fmt.Errorf("parse pick callback %q: %w", query.Data, err)
		}
		return s.handlePick(query, n)
	case query.Data == resource.CbConfirm:
		return s.handleConfirm(query)
	case query.Data == resource.CbNewTicket:
		s.tickets.StartNewSelection()
		if err := s.answerCb(query.ID, resource.CbAnswerOk); err != nil {
			return err
		}
		return s.updatePickKeyboard()
	case query.Data == resource.CbQuickPick:
		return s.handleQuickPick(query)
	}

	return nil
}

func (s *Session) handlePick(query *tgbotapi.CallbackQuery, n int) error {
	if err := s.tickets.Pick(n); err != nil {
		switch {
		case errors.Is(err, ticket.ErrPickLimit):
			return s.answerCb(query.ID, resource.CbAnswerShake)
		case errors.Is(err, ticket.ErrSelectionLocked):
			return s.answerCb(query.ID, resource.TextSelectionLockedMsg)
		default:
			return fmt.Errorf("pick %d: %w", n, err)
		}
	}

	if err := s.answerCb(query.ID, resource.CbAnswerOk); err != nil {
		return err
	}

	return s.updatePickKeyboard()
}

func (s *Session) handleConfirm(query *tgbotapi.CallbackQuery) error {
	confirmed, err := s.tickets.Confirm()
	if err != nil {
		switch {
		case errors.Is(err, ticket.ErrNotOpen), errors.Is(err, ticket.ErrSelectionLocked):
			return s.answerCb(query.ID, resource.TextSelectionLockedMsg)
		case errors.Is(err, ticket.ErrIncomplete):
			return s.answerCb(query.ID, resource.TextTicketIncomplete)
		case errors.Is(err, ticket.ErrLimitReached):
			return s.answerCb(query.ID, resource.TextTicketLimitMsg)
		default:
			return fmt.Errorf("confirm ticket: %w", err)
		}
	}

	if err := s.answerCb(query.ID, resource.CbAnswerOk); err != nil {
		return err
	}

	s.asyncSend(s.newTextMsg(fmt.Sprintf(
		resource.TextTicketConfirmedMsg,
		RenderNumbers(confirmed.Numbers),
		s.Config.TicketCost,
		s.ledger.Balance(),
	)))

	return nil
}

func (s *Session) handleQuickPick(query *tgbotapi.CallbackQuery) error {
	if !s.tickets.SelectionAllowed() {
		return s.answerCb(query.ID, resource.TextSelectionLockedMsg)
	}

	s.tickets.StartNewSelection()
	for _, n := range assist.QuickPick(s.Config.DomainMax) {
		if err := s.tickets.Pick(n); err != nil {
			return fmt.Errorf("quick pick %d: %w", n, err)
		}
	}

	if err := s.answerCb(query.ID, resource.CbAnswerOk); err != nil {
		return err
	}

	return s.updatePickKeyboard()
}

func (s *Session) sendPickKeyboard() {
	msg := tgbotapi.NewMessage(s.Config.ChatID, resource.TextPickHeaderMsg)
	msg.ReplyMarkup = renderPickKeyboard(s.tickets.Picks(), s.Config.DomainMax)

	output, err := s.tg.Send(msg)
	if err != nil {
		logging.DefaultLogger().Named("match.session").Errorf("send pick keyboard: %v", err)
		return
	}

	s.mtx.Lock()
	s.pickMsgID = output.MessageID
	s.mtx.Unlock()
}

func (s *Session) updatePickKeyboard() error {
	s.mtx.RLock()
	msgID := s.pickMsgID
	s.mtx.RUnlock()
	if msgID == 0 {
		return nil
	}

	markup := renderPickKeyboard(s.tickets.Picks(), s.Config.DomainMax)
	if _, err := s.tg.Send(tgbotapi.NewEditMessageReplyMarkup(s.Config.ChatID, msgID, markup)); err != nil {
		return fmt.Errorf("edit pick keyboard: %w", err)
	}

	return nil
}

func (s *Session) answerCb(queryID, text string) error {
	if _, err := s.tg.AnswerCallbackQuery(tgbotapi.NewCallback(queryID, text)); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

func (s *Session) newTextMsg(text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(s.Config.ChatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return msg
}

func (s *Session) asyncSend(msg tgbotapi.Chattable) {
	select {
	case s.sndCh <- msg:
	default:
		logging.DefaultLogger().Named("match.session").Warnf("send channel full, message dropped")
	}
}

func (s *Session) highlighted() []int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	var numbers []int
	for _, hl := range s.highlights {
		numbers = append(numbers, hl...)
	}
	return numbers
}

func (s *Session) clearHighlights() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.highlights = map[int][]int{}
}

// TicketResult announces one ticket's precomputed outcome.
func (s *Session) TicketResult(ordinal int, numbers []int, result prize.Result) {
	switch {
	case result.JackpotWon:
		s.asyncSend(s.newTextMsg(fmt.Sprintf(resource.TextJackpotWonMsg, result.TotalWinnings)))
	case result.TotalWinnings > 0:
		s.asyncSend(s.newTextMsg(fmt.Sprintf(
			resource.TextTicketResultWinMsg, ordinal+1, RenderNumbers(numbers), result.TotalWinnings,
		)))
	default:
		s.asyncSend(s.newTextMsg(fmt.Sprintf(
			resource.TextTicketResultLossMsg, ordinal+1, RenderNumbers(numbers),
		)))
	}
}

func (s *Session) HighlightTicket(ordinal int, numbers []int) {
	s.mtx.Lock()
	s.highlights[ordinal] = numbers
	s.mtx.Unlock()

	s.asyncSend(s.newTextMsg(fmt.Sprintf(resource.TextHighlightMsg, ordinal+1, RenderNumbers(numbers))))
}

func (s *Session) ClearHighlight(ordinal int) {
	s.mtx.Lock()
	delete(s.highlights, ordinal)
	s.mtx.Unlock()
}

// FinalResult announces the consolidated cycle outcome.
func (s *Session) FinalResult(jackpotWon bool, totalWinnings int) {
	switch {
	case jackpotWon:
		s.asyncSend(s.newTextMsg(fmt.Sprintf(resource.TextJackpotWonMsg, totalWinnings)))
	case totalWinnings > 0:
		s.asyncSend(s.newTextMsg(fmt.Sprintf(resource.TextCreditsWonMsg, totalWinnings)))
	default:
		s.asyncSend(s.newTextMsg(resource.TextNothingWonMsg))
	}
}

// RecordResult persists the cycle's immutable result entry.
func (s *Session) RecordResult(r historyModel.Result) error {
	return s.Config.HistoryDb.AddResult(s.Config.ChatID, r)
}

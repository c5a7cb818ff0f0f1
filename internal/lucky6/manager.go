package lucky6

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	historyDb "github.com/lucky6-games/lucky6/internal/database/drawhistory/database"
	jackpotDb "github.com/lucky6-games/lucky6/internal/database/jackpot/database"
	walletDb "github.com/lucky6-games/lucky6/internal/database/wallet/database"
	"github.com/lucky6-games/lucky6/internal/logging"
	"github.com/lucky6-games/lucky6/internal/lucky6/assist"
	"github.com/lucky6-games/lucky6/internal/lucky6/cycle"
	"github.com/lucky6-games/lucky6/internal/lucky6/jackpot"
	"github.com/lucky6-games/lucky6/internal/lucky6/match"
	"github.com/lucky6-games/lucky6/internal/lucky6/resource"
	"github.com/lucky6-games/lucky6/internal/lucky6/wallet"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

func NewManager(
	tg *tgbotapi.BotAPI,
	config *Config,
	walletDb *walletDb.DB,
	jackpotDb *jackpotDb.DB,
	historyDb *historyDb.DB,
	assistClient *assist.Client,
) *manager {
	return &manager{
		tg:        tg,
		config:    config,
		sessions:  map[int64]*match.Session{},
		ledgers:   map[int64]*wallet.Ledger{},
		pots:      map[int64]*jackpot.Pot{},
		walletDb:  walletDb,
		jackpotDb: jackpotDb,
		historyDb: historyDb,
		assist:    assistClient,
	}
}

type manager struct {
	mtx sync.RWMutex

	tg     *tgbotapi.BotAPI
	config *Config

	// key: chatId active lottery session
	sessions map[int64]*match.Session
	// wallet ledgers and jackpot pots are shared between command handlers and
	// sessions, one instance per chat
	ledgers map[int64]*wallet.Ledger
	pots    map[int64]*jackpot.Pot

	walletDb  *walletDb.DB
	jackpotDb *jackpotDb.DB
	historyDb *historyDb.DB
	assist    *assist.Client

	cancel     func()
	ctxSess    context.Context
	cancelSess func()
}

func (m *manager) Stop() {
	m.cancel()
}

func (m *manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.ctxSess, m.cancelSess = context.WithCancel(context.Background())
	m.ctxSess = logging.WithLogger(m.ctxSess, logging.FromContext(ctx))

	upd := tgbotapi.NewUpdate(0)
	upd.Timeout = int(m.config.TgBotPollTimeout.Seconds())
	updates, err := m.tg.GetUpdatesChan(upd)
	if err != nil {
		return fmt.Errorf("tg get updates chan: %v", err)
	}

	wg := &sync.WaitGroup{}
	poolWorkerNum := runtime.NumCPU()
	wg.Add(poolWorkerNum)

	for i := 0; i < poolWorkerNum; i++ {
		go m.pool(ctx, wg, updates)
	}

	wg.Wait()
	m.shutdown()
	return nil
}

func (m *manager) shutdown() {
	m.cancelSess()
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		m.mtx.RLock()
		n := len(m.sessions)
		m.mtx.RUnlock()
		if n == 0 {
			return
		}
		<-ticker.C
	}
}

func (m *manager) pool(ctx context.Context, wg *sync.WaitGroup, updCh tgbotapi.UpdatesChannel) {
	defer wg.Done()
	logger := logging.FromContext(ctx).Named("manager.pool")
	for {
		select {
		case update := <-updCh:
			if update.Message != nil {
				if update.Message.Chat.IsGroup() || update.Message.Chat.IsSuperGroup() {
					msg := tgbotapi.NewMessage(update.Message.Chat.ID, resource.TextChatNotAllowed)
					msg.ParseMode = tgbotapi.ModeMarkdown
					if _, err := m.tg.Send(msg); err != nil {
						logger.Errorf("send msg: %v", err)
					}
					continue
				}
				if err := m.handleCommand(ctx, update); err != nil {
					logger.Errorf("handle command query: %v", err)
				}
			}
			if update.CallbackQuery != nil {
				if err := m.handleCallbackQuery(update); err != nil {
					logger.Errorf("handle callback query: %v", err)
				}
			}
		case <-ctx.Done():
			// shutdown
			return
		}
	}
}

func (m *manager) handleCommand(ctx context.Context, upd tgbotapi.Update) error {
	chatID := upd.Message.Chat.ID
	text := upd.Message.Text

	switch {
	case text == resource.CmdStart:
		if err := m.handleStartCmd(chatID, upd.Message.From.FirstName); err != nil {
			return fmt.Errorf("handle start cmd: %v", err)
		}
	case text == resource.CmdPlay:
		if err := m.handlePlayCmd(chatID, upd.Message.From.FirstName); err != nil {
			return fmt.Errorf("handle play cmd: %v", err)
		}
	case text == resource.CmdRules:
		if err := m.sendMarkdown(chatID, resource.TextRulesMsg); err != nil {
			return fmt.Errorf("handle rules cmd: %v", err)
		}
	case text == resource.CmdWallet:
		if err := m.handleWalletCmd(chatID); err != nil {
			return fmt.Errorf("handle wallet cmd: %v", err)
		}
	case text == resource.CmdJackpot:
		if err := m.handleJackpotCmd(chatID); err != nil {
			return fmt.Errorf("handle jackpot cmd: %v", err)
		}
	case text == resource.CmdHistory:
		if err := m.handleHistoryCmd(chatID); err != nil {
			return fmt.Errorf("handle history cmd: %v", err)
		}
	case text == resource.CmdReset:
		if err := m.handleResetCmd(chatID); err != nil {
			return fmt.Errorf("handle reset cmd: %v", err)
		}
	case text == resource.CmdAsk || strings.HasPrefix(text, resource.CmdAsk+" "):
		if err := m.handleAskCmd(ctx, chatID, strings.TrimSpace(strings.TrimPrefix(text, resource.CmdAsk))); err != nil {
			return fmt.Errorf("handle ask cmd: %v", err)
		}
	}

	return nil
}

func (m *manager) handleCallbackQuery(upd tgbotapi.Update) error {
	if session, ok := m.playingSession(upd.CallbackQuery.Message.Chat.ID); ok {
		if err := session.Execute(upd); err != nil {
			return fmt.Errorf("execute playing cb: %v", err)
		}
	}

	return nil
}

func (m *manager) handleStartCmd(chatID int64, name string) error {
	return m.sendMarkdown(chatID, fmt.Sprintf(resource.TextGreetingMsg, name))
}

func (m *manager) handlePlayCmd(chatID int64, name string) error {
	if session, ok := m.playingSession(chatID); ok {
		if session.Phase() == cycle.PhaseComplete {
			session.Restart()
			return nil
		}
		return m.sendMarkdown(chatID, fmt.Sprintf(
			resource.TextStatusMsg, session.Phase(), session.Remaining(),
		))
	}

	session, err := match.NewSession(m.buildMatchConfig(chatID, name))
	if err != nil {
		return fmt.Errorf("new session: %v", err)
	}

	m.mtx.Lock()
	m.sessions[chatID] = session
	m.mtx.Unlock()

	session.Run(m.ctxSess)
	return nil
}

func (m *manager) buildMatchConfig(chatID int64, name string) match.Config {
	return match.Config{
		ChatID:         chatID,
		PlayerName:     name,
		Cycle:          m.config.CycleConfig(),
		RevealDuration: m.config.RevealDuration(),
		DomainMax:      m.config.DomainMax,
		RowSize:        m.config.RowSize,
		RowsPerCycle:   m.config.RowsPerCycle,
		TicketCost:     m.config.TicketCost,
		Tg:             m.tg,
		Ledger:         m.ledgerFor(chatID),
		Pot:            m.potFor(chatID),
		HistoryDb:      m.historyDb,
		Assist:         m.assist,
		DoneFn:         m.matchDoneFn,
		Timeout:        m.config.SessionTimeout,
	}
}

func (m *manager) matchDoneFn(session *match.Session) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	delete(m.sessions, session.Config.ChatID)
	return nil
}

func (m *manager) handleWalletCmd(chatID int64) error {
	return m.sendMarkdown(chatID, match.RenderWallet(m.ledgerFor(chatID).Wallet()))
}

func (m *manager) handleJackpotCmd(chatID int64) error {
	return m.sendMarkdown(chatID, fmt.Sprintf(resource.TextJackpotMsg, m.potFor(chatID).Amount()))
}

func (m *manager) handleHistoryCmd(chatID int64) error {
	results, err := m.historyDb.FetchResults(chatID)
	if err != nil && err != historyDb.ErrNotFound {
		return fmt.Errorf("fetch results: %v", err)
	}

	text := match.RenderHistory(results)
	if draws, err := m.historyDb.FetchDraws(chatID); err == nil {
		text += match.RenderHotCold(draws)
	}

	return m.sendMarkdown(chatID, text)
}

func (m *manager) handleResetCmd(chatID int64) error {
	if err := m.ledgerFor(chatID).Reset(); err != nil {
		return fmt.Errorf("wallet reset: %v", err)
	}
	return m.sendMarkdown(chatID, resource.TextWalletResetOk)
}

func (m *manager) handleAskCmd(ctx context.Context, chatID int64, question string) error {
	if question == "" {
		return m.sendMarkdown(chatID, resource.TextAskUsageMsg)
	}

	reply, err := m.assist.Recommend(ctx, question, m.assistContext(chatID))
	if err != nil {
		if err == assist.ErrNotConfigured {
			return m.sendMarkdown(chatID, fmt.Sprintf(
				resource.TextAssistSetupMsg, match.RenderNumbers(assist.QuickPick(m.config.DomainMax)),
			))
		}
		logging.FromContext(ctx).Named("manager").Errorf("assist recommend: %v", err)
		return m.sendMarkdown(chatID, resource.TextAssistFailedMsg)
	}

	return m.sendMarkdown(chatID, reply)
}

// assistContext packs the chat's balance and recent draws into the free-form
// context blob the recommendation backend accepts.
func (m *manager) assistContext(chatID int64) string {
	buf := &strings.Builder{}
	w := m.ledgerFor(chatID).Wallet()
	buf.WriteString(fmt.Sprintf("balance: %d; tickets played: %d", w.Balance, len(w.History)))

	if results, err := m.historyDb.FetchResults(chatID); err == nil {
		for _, r := range results {
			buf.WriteString(fmt.Sprintf("; draw %d: %v won %d", r.Cycle+1, r.WinningNumbers, r.TotalWinnings))
		}
	}

	return buf.String()
}

func (m *manager) ledgerFor(chatID int64) *wallet.Ledger {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if ledger, ok := m.ledgers[chatID]; ok {
		return ledger
	}
	ledger := wallet.NewLedger(m.walletDb, chatID, m.config.TicketCost, m.config.StartingBalance)
	m.ledgers[chatID] = ledger
	return ledger
}

func (m *manager) potFor(chatID int64) *jackpot.Pot {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if pot, ok := m.pots[chatID]; ok {
		return pot
	}
	pot := jackpot.NewPot(m.jackpotDb, chatID, m.config.JackpotBase, m.config.JackpotIncrement)
	m.pots[chatID] = pot
	return pot
}

func (m *manager) playingSession(chatID int64) (*match.Session, bool) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	session, ok := m.sessions[chatID]
	return session, ok
}

func (m *manager) sendMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := m.tg.Send(msg); err != nil {
		return fmt.Errorf("send msg: %v", err)
	}
	return nil
}

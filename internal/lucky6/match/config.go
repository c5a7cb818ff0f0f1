package match

import (
	"time"

	historyDb "github.com/lucky6-games/lucky6/internal/database/drawhistory/database"
	"github.com/lucky6-games/lucky6/internal/lucky6/assist"
	"github.com/lucky6-games/lucky6/internal/lucky6/cycle"
	"github.com/lucky6-games/lucky6/internal/lucky6/jackpot"
	"github.com/lucky6-games/lucky6/internal/lucky6/wallet"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

type Config struct {
	ChatID     int64
	PlayerName string

	Cycle          cycle.Config
	RevealDuration time.Duration
	DomainMax      int
	RowSize        int
	RowsPerCycle   int
	TicketCost     int

	Tg        *tgbotapi.BotAPI
	Ledger    *wallet.Ledger
	Pot       *jackpot.Pot
	HistoryDb *historyDb.DB
	Assist    *assist.Client

	DoneFn  func(session *Session) error
	Timeout time.Duration
}

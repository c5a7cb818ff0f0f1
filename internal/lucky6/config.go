package lucky6

import (
	"time"

	"github.com/lucky6-games/lucky6/internal/database"
	"github.com/lucky6-games/lucky6/internal/lucky6/assist"
	"github.com/lucky6-games/lucky6/internal/lucky6/cycle"
)

type Config struct {
	// Logging all requests and responses from telegram
	Debug bool `envconfig:"LUCKY6_DEBUG" default:"false"`

	// Number of items in the wallet cache
	CacheSize int `envconfig:"LUCKY6_CACHE_SIZE" default:"1024"`

	// Port on which the health check is launched
	Port string `envconfig:"LUCKY6_PORT" default:"1234"`

	// profile port
	ProfPort string `envconfig:"LUCKY6_PROF_PORT" default:"8888"`

	// Telegram bot token
	BotToken string `envconfig:"LUCKY6_BOT_TOKEN"`

	TgBotPollTimeout time.Duration `envconfig:"LUCKY6_TG_BOT_POLL_TIMEOUT" default:"60s"`

	// Waiting time for an abandoned game session to be torn down
	SessionTimeout time.Duration `envconfig:"LUCKY6_SESSION_TIMEOUT" default:"24h"`

	// Cycle timer layout, thresholds in seconds remaining
	LoopSeconds        int `envconfig:"LUCKY6_LOOP_SECONDS" default:"120"`
	CutOffStartSeconds int `envconfig:"LUCKY6_CUTOFF_START_SECONDS" default:"60"`
	CutOffEndSeconds   int `envconfig:"LUCKY6_CUTOFF_END_SECONDS" default:"45"`
	MaxCycles          int `envconfig:"LUCKY6_MAX_CYCLES" default:"5"`
	RevealSeconds      int `envconfig:"LUCKY6_REVEAL_SECONDS" default:"9"`

	// Number domain and draw layout
	DomainMax    int `envconfig:"LUCKY6_DOMAIN_MAX" default:"27"`
	RowSize      int `envconfig:"LUCKY6_ROW_SIZE" default:"6"`
	RowsPerCycle int `envconfig:"LUCKY6_ROWS_PER_CYCLE" default:"3"`

	// Economy
	TicketCost       int `envconfig:"LUCKY6_TICKET_COST" default:"30"`
	StartingBalance  int `envconfig:"LUCKY6_STARTING_BALANCE" default:"100"`
	JackpotBase      int `envconfig:"LUCKY6_JACKPOT_BASE" default:"1000"`
	JackpotIncrement int `envconfig:"LUCKY6_JACKPOT_INCREMENT" default:"50"`

	Assist assist.Config
	Db     database.Config
}

func (c Config) CycleConfig() cycle.Config {
	return cycle.Config{
		LoopSeconds: c.LoopSeconds,
		CutOffStart: c.CutOffStartSeconds,
		CutOffEnd:   c.CutOffEndSeconds,
		MaxCycles:   c.MaxCycles,
	}
}

func (c Config) RevealDuration() time.Duration {
	return time.Duration(c.RevealSeconds) * time.Second
}

package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/lucky6-games/lucky6/internal/buildinfo"
	"github.com/lucky6-games/lucky6/internal/cache/cachelru"
	"github.com/lucky6-games/lucky6/internal/database"
	historyDb "github.com/lucky6-games/lucky6/internal/database/drawhistory/database"
	jackpotDb "github.com/lucky6-games/lucky6/internal/database/jackpot/database"
	walletDb "github.com/lucky6-games/lucky6/internal/database/wallet/database"
	"github.com/lucky6-games/lucky6/internal/logging"
	"github.com/lucky6-games/lucky6/internal/lucky6"
	"github.com/lucky6-games/lucky6/internal/lucky6/assist"
	"github.com/lucky6-games/lucky6/internal/server"
	"github.com/lucky6-games/lucky6/internal/shutdown"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/kelseyhightower/envconfig"
)

var version string

func main() {
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)
	_, _ = fmt.Fprintf(os.Stdout, buildinfo.GreetingCLI, buildinfo.ProjectName, version, buildinfo.GithubURL)

	ctx, done := shutdown.New()
	defer done()
	config := lucky6.Config{}
	if err := envconfig.Process("", &config); err != nil {
		logging.DefaultLogger().Fatalf("processing the config: %v", err)
	}

	logger := logging.NewLogger(config.Debug)
	ctx = logging.WithLogger(ctx, logger)

	if err := realMain(ctx, config, done); err != nil {
		logger.Fatalf("main.realMain: %v", err)
	}
}

func realMain(ctx context.Context, config lucky6.Config, done func()) error {
	logger := logging.FromContext(ctx).Named("main.realMain")
	if config.BotToken == "" {
		return fmt.Errorf(
			"bot token not found, please visit %s to register your bot and get a token",
			buildinfo.BotFatherURL,
		)
	}

	tg, err := tgbotapi.NewBotAPI(config.BotToken)
	if err != nil {
		return fmt.Errorf("bot api: %w", err)
	}

	tg.Debug = config.Debug

	_, _ = fmt.Fprint(os.Stdout, "Authorization in telegram was successful: ", tg.Self.UserName, "\n")

	db, err := database.NewFromEnv(ctx, &config.Db)
	if err != nil {
		return fmt.Errorf("new database from env: %w", err)
	}

	defer db.Close(ctx)

	walletCache, err := cachelru.NewLRU(config.CacheSize)
	if err != nil {
		return fmt.Errorf("can not create lru cache: %w", err)
	}

	srv, err := server.New(config.Port)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/health", server.HandleHealth(ctx))

	go func() {
		if err := srv.ServeHTTP(ctx, &http.Server{Handler: mux}); err != nil {
			logger.Errorf("srv.ServeHTTP: %v", err)
			done()
		}
	}()

	go func() {
		if err := http.ListenAndServe(":"+config.ProfPort, nil); err != nil {
			logger.Errorf("pprof default sever: %v", err)
			done()
		}
	}()

	manager := lucky6.NewManager(
		tg,
		&config,
		walletDb.New(db, walletCache),
		jackpotDb.New(db),
		historyDb.New(db),
		assist.New(config.Assist),
	)
	if err := manager.Run(ctx); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	return nil
}

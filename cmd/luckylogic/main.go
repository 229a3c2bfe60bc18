package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rewired-gh/luckylogic/internal/api"
	"github.com/rewired-gh/luckylogic/internal/config"
	"github.com/rewired-gh/luckylogic/internal/drawsource"
	"github.com/rewired-gh/luckylogic/internal/engine"
	"github.com/rewired-gh/luckylogic/internal/jackpot"
	"github.com/rewired-gh/luckylogic/internal/logger"
	"github.com/rewired-gh/luckylogic/internal/metrics"
	"github.com/rewired-gh/luckylogic/internal/scheduler"
	"github.com/rewired-gh/luckylogic/internal/storage"
	"github.com/rewired-gh/luckylogic/internal/telegram"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file (empty for defaults and environment only)")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	store, err := storage.New(cfg.Storage.MaxTickets, cfg.Storage.DBPath)
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	drawClient := drawsource.NewClient(cfg.Draws.APIURL, cfg.Draws.Timeout, cfg.Draws.Rate, cfg.Draws.Retries)
	repo := engine.NewDrawRepository(drawClient, store, cfg.Draws.CacheTTL)

	eng := engine.New(repo, store, engine.Config{
		HistoryDraws: cfg.Generator.History,
		Lines:        cfg.Generator.Lines,
		TopN:         cfg.Generator.TopN,
		AvoidLatest:  cfg.Generator.AvoidLatest,
	}, nil)

	m := metrics.New()
	eng.SetRecorder(m)

	jackpotService := jackpot.NewService(drawClient, jackpot.URLs{
		XML:     cfg.Jackpot.XMLURL,
		Results: cfg.Jackpot.ResultsURL,
		API:     cfg.Jackpot.APIURL,
	}, cfg.Jackpot.CacheTTL)

	var telegramClient *telegram.Client
	if cfg.Telegram.Enabled {
		telegramClient, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if telegramClient != nil {
		telegramClient.ListenForCommands(ctx, eng)
	}

	var sched *scheduler.Scheduler
	if cfg.Schedule.Enabled {
		var notifier scheduler.Notifier
		if telegramClient != nil {
			notifier = telegramClient
		}
		sched, err = scheduler.New(scheduler.Config{
			Cron:     cfg.Schedule.Cron,
			Timezone: cfg.Schedule.Timezone,
		}, repo, eng, notifier, m)
		if err != nil {
			logger.Fatal("Failed to initialize scheduler: %v", err)
		}

		logger.Debug("Running initial draw refresh")
		sched.RunOnce(ctx) //nolint:errcheck
		sched.Start()
	}

	var server *api.Server
	if cfg.Server.Enabled {
		server = api.NewServer(&api.Config{
			Addr:           cfg.Server.Addr,
			RequestTimeout: cfg.Server.RequestTimeout,
		}, eng, store, jackpotService, m)
		server.Start()
	}

	logger.Info("luckylogic started (history: %d, lines: %d, top_n: %d, api: %v, schedule: %v)",
		cfg.Generator.History,
		cfg.Generator.Lines,
		cfg.Generator.TopN,
		cfg.Server.Enabled,
		cfg.Schedule.Enabled,
	)

	<-sigChan
	logger.Info("Shutdown signal received, cleaning up...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("API server shutdown failed: %v", err)
		}
	}
	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	logger.Info("Service stopped")
}

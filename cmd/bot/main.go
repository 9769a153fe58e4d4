package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"listing_bot/internal/bot"
	"listing_bot/internal/config"
	"listing_bot/internal/ingest"
	"listing_bot/internal/match"
	"listing_bot/internal/normalize"
	"listing_bot/internal/notify"
	"listing_bot/internal/scheduler"
	"listing_bot/internal/scrape"
	"listing_bot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	b, err := bot.New(cfg.TelegramBotToken, store, cfg, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	normCfg := normalize.Config{
		SiteOrigin: cfg.SiteOrigin,
		TimeOffset: cfg.TimeOffset,
	}
	ingester := ingest.New(store, scrape.New(http.DefaultClient), log, normCfg, cfg.PollInterval, cfg.RetentionAge)

	notifier := notify.New(b, log, cfg.MessagePacing, cfg.SendTimeout)
	policy := match.Policy{Lookback: cfg.InitialLookback}
	sched := scheduler.New(store, policy, notifier, log, cfg.PollInterval, cfg.MinResendInterval)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting bot")

	go ingester.Run(ctx)
	go sched.Run(ctx)

	b.Run(ctx)

	log.Info("bot stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

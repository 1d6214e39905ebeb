package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"MoexLens/internal/bonds"
	"MoexLens/internal/calculator"
	"MoexLens/internal/config"
	"MoexLens/internal/feed"
	"MoexLens/internal/logger"
	"MoexLens/internal/notifier"
	"MoexLens/internal/scheduler"
	"MoexLens/internal/server"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config validation", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Dir)
	slog.SetDefault(log)
	log.Info("MoexLens starting", "config", cfgPath)

	src := feed.NewFileSource(cfg.Feed.CandlesPath, cfg.Feed.BondsPath)
	fd := feed.NewFeed(src, cfg.Feed.Ticker, log)
	log.Info("data source", "name", src.Name(), "ticker", cfg.Feed.Ticker)

	yields := calculator.NewYieldCalculator(time.Now)
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, fd, yields, tn, scheduler.Options{
		Viewport:   cfg.Viewport(),
		OutputPath: cfg.Chart.OutputPath,
		BondLimit:  cfg.Bonds.Limit,
		Filters: bonds.Filters{
			Currency:   cfg.Bonds.Currency,
			MaturityTo: &bonds.MaturityDelta{Years: cfg.Bonds.YearsTo},
		},
	}, log)
	if err := sched.RegisterAll(cfg.Schedule.DigestCron); err != nil {
		log.Error("register cron tasks", "error", err)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.NewRouter(server.NewHandler(yields, fd, cfg.Viewport(), cfg.Bonds.Limit, log)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", "error", err)
		}
	}()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info("telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, sending digest now")
		go sched.RunDigestNow()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "error", err)
	}
	log.Info("MoexLens stopped")
}

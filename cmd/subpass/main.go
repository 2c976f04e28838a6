package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Spok95/subpass/internal/app"
	"github.com/Spok95/subpass/internal/bot"
	"github.com/Spok95/subpass/internal/config"
	httpx "github.com/Spok95/subpass/internal/infra/http"
	"github.com/Spok95/subpass/internal/infra/logger"
	"github.com/Spok95/subpass/internal/infra/metrics"
	"github.com/Spok95/subpass/internal/jobs"
	"github.com/Spok95/subpass/internal/lifecycle"
)

func main() {
	cfgPath := flag.String("config", "config/example.yaml", "path to the YAML config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)
	log.Info("starting", "store", cfg.Store.Driver, "http", cfg.HTTP.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	env, err := app.Open(ctx, cfg, log, true, lifecycle.WithObserver(m))
	if err != nil {
		log.Error("startup failed", "err", err)
		return
	}
	defer env.Close()

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, env.Controller, log)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	var sched *jobs.Scheduler
	if cfg.Metrics.Enabled {
		scan := jobs.NewExpiryScan(env.Controller, m, log)
		if err := scan.Run(ctx); err != nil {
			log.Error("initial expiry scan failed", "err", err)
		}
		sched, err = jobs.Schedule(ctx, cfg.Metrics.ExpiryScan, scan)
		if err != nil {
			log.Error("expiry scan not scheduled", "err", err)
		}
	}

	botDone := make(chan struct{})
	if cfg.Telegram.Token != "" {
		api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			log.Error("telegram init failed", "err", err)
			return
		}
		log.Info("telegram bot authorized", "username", api.Self.UserName)
		b := bot.New(api, log, env.Controller, env.Users, env.Dialogs, cfg.Telegram.AdminChatID)
		go func() {
			defer close(botDone)
			if err := b.Run(ctx, cfg.Telegram.PollTimeout); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("bot stopped", "err", err)
			}
		}()
	} else {
		close(botDone)
		log.Warn("telegram.token is empty, bot disabled")
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	select {
	case <-botDone:
	case <-shutdownCtx.Done():
	}
	log.Info("graceful shutdown complete")
}

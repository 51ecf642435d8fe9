package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nof1/dashboard/internal/api"
	"nof1/dashboard/internal/config"
	"nof1/dashboard/internal/push"
	"nof1/dashboard/internal/store"
	"nof1/dashboard/internal/view"
	"nof1/dashboard/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file (ignore error in production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log := logger.GetLogger()

	log.Info("Starting trading bot dashboard...")
	log.Infof("Backend: %s · push: %s", cfg.API.BaseURL, cfg.Push.URL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	st := store.New(client, store.Options{
		FallbackAssets:   cfg.Dashboard.FallbackAssets,
		FallbackInterval: cfg.Dashboard.FallbackInterval,
		Log:              log,
	})

	channel := push.NewClient(cfg.Push.URL, st, push.Options{
		ReconnectDelay:    cfg.Push.ReconnectDelay,
		MaxReconnectDelay: cfg.Push.MaxReconnectDelay,
		Log:               log,
	})
	go channel.Run(ctx)

	console := view.NewConsole(os.Stdout)

	// Coalesce change bursts into at most one render per interval
	dirty := make(chan struct{}, 1)
	unsubscribe := st.Subscribe(func() {
		select {
		case dirty <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	st.FetchInitialState(ctx)
	st.FetchSettings(ctx)
	st.FetchTrades(ctx, 50, 0)
	st.FetchProposals(ctx)

	poll := time.NewTicker(cfg.Dashboard.PollInterval)
	defer poll.Stop()
	render := time.NewTicker(time.Second)
	defer render.Stop()

	pending := true
	for {
		select {
		case <-ctx.Done():
			log.Info("Dashboard shutting down")
			return
		case <-dirty:
			pending = true
		case <-render.C:
			if pending {
				console.Render(st.Snapshot())
				pending = false
			}
		case <-poll.C:
			st.FetchTrades(ctx, 50, 0)
			st.FetchProposals(ctx)
		}
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nof1/dashboard/internal/config"
	"nof1/dashboard/internal/middleware"
	"nof1/dashboard/internal/stubbot"
	"nof1/dashboard/pkg/logger"

	"github.com/gin-gonic/gin"
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

	log.Info("Starting stub trading bot backend...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot := stubbot.NewBot(cfg.Dashboard.FallbackAssets, cfg.Dashboard.FallbackInterval, log)
	hub := stubbot.NewHub(log)
	bot.SetBroadcast(hub.Broadcast)

	go hub.Run(ctx)
	go bot.RunTicker(ctx, cfg.Stub.TickInterval)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS([]string{"*"}))

	stubbot.NewHandler(bot, hub).Routes(router)

	srv := &http.Server{
		Addr:         cfg.Stub.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Stub backend listening on %s", cfg.Stub.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start stub backend", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down stub backend...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Stub backend forced to shutdown", err)
	}
	log.Info("Stub backend exited")
}

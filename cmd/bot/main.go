// cmd/bot/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"nutrivision/config"
	"nutrivision/internal/app"
	"nutrivision/internal/bot"
	"nutrivision/internal/server"
	"nutrivision/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New().Fatalw("Failed to load config", "error", err)
	}

	l := logger.New()
	if cfg.Log.Development {
		l = logger.NewDevelopment()
	}
	defer l.Sync()
	l.Info("Starting NutriVision bot...")

	// Validate critical configuration
	if err := cfg.ValidateTelegram(); err != nil {
		l.Fatalw("Invalid Telegram configuration", "error", err)
	}
	if err := cfg.ValidateGPT(); err != nil {
		l.Fatalw("Invalid GPT configuration", "error", err)
	}

	a, err := app.New(cfg, l)
	if err != nil {
		l.Fatalw("Failed to initialize", "error", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			l.Errorw("Error closing resources", "error", err)
		}
	}()

	telegramBot, err := bot.NewTelegramBot(cfg.Telegram.Token, cfg.Telegram.OwnerChatID, a.Tracker, l)
	if err != nil {
		l.Fatalw("Failed to create Telegram bot", "error", err)
	}
	a.Advice.OnUpdate(telegramBot.PushAdvice)

	l.Info("Starting Telegram bot...")
	if err := telegramBot.Start(context.Background()); err != nil {
		l.Fatalw("Failed to start Telegram bot", "error", err)
	}
	l.Info("Telegram bot started successfully")

	httpServer := server.NewServer(cfg.Server.Port, a.Tracker, l)
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatalw("Failed to start HTTP server", "error", err)
		}
	}()

	// Wait for termination signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("Shutting down bot...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Stop HTTP server first
	if err := httpServer.Stop(ctx); err != nil {
		l.Errorw("Error during HTTP server shutdown", "error", err)
	}

	// Then stop bot
	if err := telegramBot.Stop(ctx); err != nil {
		l.Errorw("Error during bot shutdown", "error", err)
	}

	l.Info("Bot stopped successfully")
}

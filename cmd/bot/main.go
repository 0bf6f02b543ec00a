package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"cf-bulk-manager/external_resource/cloudflare"
	"cf-bulk-manager/internal/handler"
	"cf-bulk-manager/internal/handler/telegram"
	"cf-bulk-manager/internal/usecase"
	"cf-bulk-manager/pkg/config"
	"cf-bulk-manager/pkg/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid config")
	}
	if err := cfg.ValidateTelegram(); err != nil {
		logger.WithError(err).Fatal("invalid config")
	}

	store := storage.NewJSONStorage(cfg.DataDir)

	var client cloudflare.Client
	if cfg.UseAPIToken() {
		client, err = cloudflare.NewClient(cfg.CloudflareAPIToken)
	} else {
		client, err = cloudflare.NewClientWithKey(cfg.CloudflareAPIKey, cfg.CloudflareEmail)
	}
	if err != nil {
		logger.WithError(err).Fatal("failed to create cloudflare client")
	}

	services := usecase.NewServices(client, store, cfg.ZoneCacheTTL, logger)

	var botHandler handler.BotHandler = telegram.NewBot(services, store, cfg.TelegramBotToken, cfg.AllowedUsers, logger)

	go func() {
		logger.Info("starting telegram bot")
		if err := botHandler.Start(); err != nil {
			logger.WithError(err).Fatal("bot error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("bot is running, press Ctrl+C to stop")
	<-sigChan

	logger.Info("shutting down")
	if err := botHandler.Stop(); err != nil {
		logger.WithError(err).Warn("error stopping bot")
	}
}

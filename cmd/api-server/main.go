package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"cf-bulk-manager/external_resource/cloudflare"
	"cf-bulk-manager/internal/handler/rest"
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

	store := storage.NewJSONStorage(cfg.DataDir)

	// A server-side credential is optional: without one every request
	// must carry its own bearer token.
	var defaults *usecase.Services
	if cfg.UseAPIToken() || cfg.CloudflareAPIKey != "" {
		var client cloudflare.Client
		if cfg.UseAPIToken() {
			client, err = cloudflare.NewClient(cfg.CloudflareAPIToken)
		} else {
			client, err = cloudflare.NewClientWithKey(cfg.CloudflareAPIKey, cfg.CloudflareEmail)
		}
		if err != nil {
			logger.WithError(err).Fatal("failed to create cloudflare client")
		}
		defaults = usecase.NewServices(client, store, cfg.ZoneCacheTTL, logger)
	} else {
		logger.Info("no server-side cloudflare credential configured, expecting per-request tokens")
	}

	// Token-scoped bundles keep their zone cache in memory: the persisted
	// snapshot belongs to the server-side credential alone.
	factory := func(token string) (*usecase.Services, error) {
		client, err := cloudflare.NewClient(token)
		if err != nil {
			return nil, err
		}
		scoped := storage.Scoped(store, storage.NewMemoryZoneCache())
		return usecase.NewServices(client, scoped, cfg.ZoneCacheTTL, logger), nil
	}

	h := rest.NewHandler(defaults, factory, store, logger)
	server := rest.NewServer(net.JoinHostPort(cfg.APIHost, cfg.APIPort), h, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Fatal("http server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("shutdown error")
	}
}

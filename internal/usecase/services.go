package usecase

import (
	"time"

	"github.com/sirupsen/logrus"

	"cf-bulk-manager/external_resource/cloudflare"
	"cf-bulk-manager/internal/repository"
	"cf-bulk-manager/pkg/storage"
)

// Services bundles the application's usecases over one provider client.
// Handlers that authenticate per request build a bundle per credential;
// single-credential handlers build one at startup.
type Services struct {
	Zones     ZoneUsecase
	DNS       DNSUsecase
	Redirects RedirectUsecase
	Bulk      BulkUsecase
}

// NewServices wires repositories and usecases over the given client. The
// zone cache is hydrated from storage; a broken snapshot only costs the
// warm start.
func NewServices(client cloudflare.Client, store storage.CombinedStorage, cacheTTL time.Duration, logger *logrus.Logger) *Services {
	zoneRepo := repository.NewZoneRepository(client, logger)
	dnsRepo := repository.NewDNSRepository(client)
	rulesetRepo := repository.NewRulesetRepository(client, logger)

	cache := NewZoneCache(store)
	if err := cache.Load(); err != nil {
		logger.WithError(err).Warn("starting with empty zone cache")
	}

	zones := NewZoneUsecase(zoneRepo, cache, cacheTTL, logger)
	redirects := NewRedirectUsecase(rulesetRepo, logger)

	return &Services{
		Zones:     zones,
		DNS:       NewDNSUsecase(dnsRepo, store),
		Redirects: redirects,
		Bulk:      NewBulkUsecase(zones, dnsRepo, redirects, logger),
	}
}

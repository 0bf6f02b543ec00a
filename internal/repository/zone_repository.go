package repository

import (
	"context"

	"github.com/sirupsen/logrus"

	"cf-bulk-manager/external_resource/cloudflare"
	"cf-bulk-manager/internal/domain"
)

// zoneRepository implements ZoneRepository using the Cloudflare client
type zoneRepository struct {
	client cloudflare.Client
	logger *logrus.Entry
}

// NewZoneRepository creates a new zone repository
func NewZoneRepository(client cloudflare.Client, logger *logrus.Logger) ZoneRepository {
	return &zoneRepository{
		client: client,
		logger: logger.WithField("component", "zone-repository"),
	}
}

// ListZonesPage returns one page of the account's zone list
func (r *zoneRepository) ListZonesPage(ctx context.Context, page, perPage int) (*domain.ZonePage, error) {
	cfPage, err := r.client.ListZonesPage(ctx, page, perPage)
	if err != nil {
		r.logger.WithField("page", page).WithError(err).Warn("failed to list zones page")
		return nil, mapClientError(err)
	}

	zones := make([]domain.Zone, len(cfPage.Zones))
	for i, z := range cfPage.Zones {
		zones[i] = mapToDomainZone(z)
	}

	return &domain.ZonePage{
		Zones:      zones,
		Page:       cfPage.Page,
		TotalPages: cfPage.TotalPages,
		TotalCount: cfPage.TotalCount,
	}, nil
}

// GetZone returns a zone by its ID
func (r *zoneRepository) GetZone(ctx context.Context, zoneID string) (*domain.Zone, error) {
	zone, err := r.client.GetZone(ctx, zoneID)
	if err != nil {
		return nil, mapClientError(err)
	}

	result := mapToDomainZone(*zone)
	return &result, nil
}

// GetZoneByName returns a zone by its name
func (r *zoneRepository) GetZoneByName(ctx context.Context, name string) (*domain.Zone, error) {
	zone, err := r.client.GetZoneByName(ctx, name)
	if err != nil {
		return nil, mapClientError(err)
	}

	result := mapToDomainZone(*zone)
	return &result, nil
}

// CreateZone onboards a new domain to the account
func (r *zoneRepository) CreateZone(ctx context.Context, name string) (*domain.Zone, error) {
	zone, err := r.client.CreateZone(ctx, name)
	if err != nil {
		r.logger.WithField("zone", name).WithError(err).Warn("failed to create zone")
		return nil, mapClientError(err)
	}

	result := mapToDomainZone(*zone)
	return &result, nil
}

// mapToDomainZone maps external resource zone to domain zone
func mapToDomainZone(z cloudflare.Zone) domain.Zone {
	return domain.Zone{
		ID:          z.ID,
		Name:        z.Name,
		Status:      domain.ParseZoneStatus(z.Status),
		Plan:        z.Plan,
		NameServers: z.NameServers,
	}
}

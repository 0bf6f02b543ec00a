package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"cf-bulk-manager/internal/domain"
	"cf-bulk-manager/internal/repository"
)

// syncPageSize is the fixed per_page value for the zone listing. The
// provider caps page size, so the only way to a complete list is walking
// every page before committing anything.
const syncPageSize = 50

// zoneUsecase implements ZoneUsecase
type zoneUsecase struct {
	zoneRepo repository.ZoneRepository
	cache    *ZoneCache
	ttl      time.Duration
	syncing  atomic.Bool
	logger   *logrus.Entry
}

// NewZoneUsecase creates a new zone usecase. ttl is the cache staleness
// threshold; the cache should already be hydrated via Load.
func NewZoneUsecase(zoneRepo repository.ZoneRepository, cache *ZoneCache, ttl time.Duration, logger *logrus.Logger) ZoneUsecase {
	return &zoneUsecase{
		zoneRepo: zoneRepo,
		cache:    cache,
		ttl:      ttl,
		logger:   logger.WithField("component", "zone-sync"),
	}
}

// CachedZones returns the current cache snapshot
func (u *zoneUsecase) CachedZones() *domain.ZoneCacheEntry {
	return u.cache.Read()
}

// IsStale reports whether a sync is due
func (u *zoneUsecase) IsStale() bool {
	return u.cache.IsStale(u.ttl)
}

// SyncZones walks every page of the provider's zone listing and replaces
// the cache only once the whole list has been accumulated. Any page
// failure aborts the sync with the cache left exactly as it was.
func (u *zoneUsecase) SyncZones(ctx context.Context) ([]domain.Zone, error) {
	if !u.syncing.CompareAndSwap(false, true) {
		return nil, domain.ErrSyncInProgress
	}
	defer u.syncing.Store(false)

	var all []domain.Zone
	page := 1
	for {
		p, err := u.zoneRepo.ListZonesPage(ctx, page, syncPageSize)
		if err != nil {
			return nil, fmt.Errorf("zone sync aborted on page %d: %w", page, err)
		}

		all = append(all, p.Zones...)
		u.logger.WithFields(logrus.Fields{
			"page":  page,
			"got":   len(p.Zones),
			"total": p.TotalCount,
		}).Debug("fetched zone page")

		if page >= p.TotalPages {
			break
		}
		page++
	}

	if err := u.cache.Replace(all); err != nil {
		// the sync itself succeeded; a persist failure only costs the
		// warm start on the next run
		u.logger.WithError(err).Warn("zone cache not persisted")
	}

	u.logger.WithField("zones", len(all)).Info("zone sync complete")
	return all, nil
}

// EnsureFresh returns the cached snapshot, syncing first when stale
func (u *zoneUsecase) EnsureFresh(ctx context.Context) (*domain.ZoneCacheEntry, error) {
	if u.IsStale() {
		if _, err := u.SyncZones(ctx); err != nil {
			return nil, err
		}
	}
	return u.cache.Read(), nil
}

// CreateZones onboards each domain in order, one provider call per domain.
// A failing domain never stops the remaining ones.
func (u *zoneUsecase) CreateZones(ctx context.Context, domains []string) ([]domain.ZoneCreateResult, error) {
	if len(domains) == 0 {
		return nil, domain.ErrEmptyTargets
	}

	results := make([]domain.ZoneCreateResult, 0, len(domains))
	for _, name := range domains {
		zone, err := u.zoneRepo.CreateZone(ctx, name)
		if err != nil {
			results = append(results, domain.ZoneCreateResult{Name: name, Error: err.Error()})
			continue
		}
		results = append(results, domain.ZoneCreateResult{
			Name:        zone.Name,
			Created:     true,
			NameServers: zone.NameServers,
		})
	}
	return results, nil
}

// ResolveZone returns the zone for an ID, preferring the cache and
// falling back to the provider for zones synced elsewhere.
func (u *zoneUsecase) ResolveZone(ctx context.Context, zoneID string) (*domain.Zone, error) {
	if entry := u.cache.Read(); entry != nil {
		for i := range entry.Zones {
			if entry.Zones[i].ID == zoneID {
				z := entry.Zones[i]
				return &z, nil
			}
		}
	}
	return u.zoneRepo.GetZone(ctx, zoneID)
}

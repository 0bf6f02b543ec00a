package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cf-bulk-manager/internal/domain"
)

type fakeZoneRepo struct {
	pages     map[int]*domain.ZonePage
	pageErrs  map[int]error
	requested []int

	zones      map[string]*domain.Zone
	createErrs map[string]error
}

func (f *fakeZoneRepo) ListZonesPage(_ context.Context, page, _ int) (*domain.ZonePage, error) {
	f.requested = append(f.requested, page)
	if err := f.pageErrs[page]; err != nil {
		return nil, err
	}
	p, ok := f.pages[page]
	if !ok {
		return nil, fmt.Errorf("unexpected page %d", page)
	}
	return p, nil
}

func (f *fakeZoneRepo) GetZone(_ context.Context, zoneID string) (*domain.Zone, error) {
	if z, ok := f.zones[zoneID]; ok {
		return z, nil
	}
	return nil, domain.ErrZoneNotFound
}

func (f *fakeZoneRepo) GetZoneByName(_ context.Context, name string) (*domain.Zone, error) {
	for _, z := range f.zones {
		if z.Name == name {
			return z, nil
		}
	}
	return nil, domain.ErrZoneNotFound
}

func (f *fakeZoneRepo) CreateZone(_ context.Context, name string) (*domain.Zone, error) {
	if err := f.createErrs[name]; err != nil {
		return nil, err
	}
	return &domain.Zone{ID: "id-" + name, Name: name, Status: domain.ZoneStatusPending, NameServers: []string{"ns1.example.org"}}, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestZoneUsecase(repo *fakeZoneRepo) (*zoneUsecase, *ZoneCache) {
	cache := NewZoneCache(&fakeCacheStore{})
	u := NewZoneUsecase(repo, cache, time.Hour, testLogger()).(*zoneUsecase)
	return u, cache
}

func page(n, totalPages int, names ...string) *domain.ZonePage {
	zones := make([]domain.Zone, len(names))
	for i, name := range names {
		zones[i] = domain.Zone{ID: "id-" + name, Name: name, Status: domain.ZoneStatusActive}
	}
	return &domain.ZonePage{Zones: zones, Page: n, TotalPages: totalPages}
}

func TestSyncZonesWalksEveryPage(t *testing.T) {
	repo := &fakeZoneRepo{pages: map[int]*domain.ZonePage{
		1: page(1, 3, "a.com", "b.com"),
		2: page(2, 3, "c.com"),
		3: page(3, 3, "d.com"),
	}}
	u, cache := newTestZoneUsecase(repo)

	zones, err := u.SyncZones(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, repo.requested)
	require.Len(t, zones, 4)
	// provider page order is preserved
	assert.Equal(t, "a.com", zones[0].Name)
	assert.Equal(t, "d.com", zones[3].Name)

	entry := cache.Read()
	require.NotNil(t, entry)
	assert.Len(t, entry.Zones, 4)
	assert.False(t, u.IsStale())
}

func TestSyncZonesEmptyAccountSingleRequest(t *testing.T) {
	repo := &fakeZoneRepo{pages: map[int]*domain.ZonePage{
		1: {Zones: nil, Page: 1, TotalPages: 0, TotalCount: 0},
	}}
	u, cache := newTestZoneUsecase(repo)

	zones, err := u.SyncZones(context.Background())
	require.NoError(t, err)

	// the first request always happens; TotalPages 0 stops after it
	assert.Equal(t, []int{1}, repo.requested)
	assert.Empty(t, zones)
	require.NotNil(t, cache.Read())
}

func TestSyncZonesFailureLeavesCacheUntouched(t *testing.T) {
	repo := &fakeZoneRepo{pages: map[int]*domain.ZonePage{
		1: page(1, 1, "old.com"),
	}}
	u, cache := newTestZoneUsecase(repo)

	_, err := u.SyncZones(context.Background())
	require.NoError(t, err)

	// second sync fails mid-walk
	repo.pages = map[int]*domain.ZonePage{1: page(1, 3, "new.com")}
	repo.pageErrs = map[int]error{2: errors.New("upstream 500")}
	repo.requested = nil

	_, err = u.SyncZones(context.Background())
	require.Error(t, err)
	assert.Equal(t, []int{1, 2}, repo.requested)

	entry := cache.Read()
	require.NotNil(t, entry)
	require.Len(t, entry.Zones, 1)
	assert.Equal(t, "old.com", entry.Zones[0].Name)
}

func TestSyncZonesRejectsConcurrentRun(t *testing.T) {
	u, _ := newTestZoneUsecase(&fakeZoneRepo{})
	u.syncing.Store(true)

	_, err := u.SyncZones(context.Background())
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)
}

func TestEnsureFreshSyncsOnlyWhenStale(t *testing.T) {
	repo := &fakeZoneRepo{pages: map[int]*domain.ZonePage{
		1: page(1, 1, "a.com"),
	}}
	u, _ := newTestZoneUsecase(repo)

	entry, err := u.EnsureFresh(context.Background())
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, []int{1}, repo.requested)

	// fresh cache: no further provider traffic
	_, err = u.EnsureFresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1}, repo.requested)
}

func TestCreateZonesContinuesPastFailures(t *testing.T) {
	repo := &fakeZoneRepo{createErrs: map[string]error{
		"taken.com": errors.New("zone already exists"),
	}}
	u, _ := newTestZoneUsecase(repo)

	results, err := u.CreateZones(context.Background(), []string{"a.com", "taken.com", "b.com"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Created)
	assert.NotEmpty(t, results[0].NameServers)
	assert.False(t, results[1].Created)
	assert.Contains(t, results[1].Error, "already exists")
	assert.True(t, results[2].Created)
}

func TestCreateZonesRejectsEmptyInput(t *testing.T) {
	u, _ := newTestZoneUsecase(&fakeZoneRepo{})
	_, err := u.CreateZones(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrEmptyTargets)
}

func TestResolveZonePrefersCache(t *testing.T) {
	repo := &fakeZoneRepo{
		pages: map[int]*domain.ZonePage{1: page(1, 1, "cached.com")},
		zones: map[string]*domain.Zone{"remote": {ID: "remote", Name: "remote.com"}},
	}
	u, _ := newTestZoneUsecase(repo)
	_, err := u.SyncZones(context.Background())
	require.NoError(t, err)

	z, err := u.ResolveZone(context.Background(), "id-cached.com")
	require.NoError(t, err)
	assert.Equal(t, "cached.com", z.Name)

	// not in the cache: falls back to the provider
	z, err = u.ResolveZone(context.Background(), "remote")
	require.NoError(t, err)
	assert.Equal(t, "remote.com", z.Name)

	_, err = u.ResolveZone(context.Background(), "nowhere")
	assert.ErrorIs(t, err, domain.ErrZoneNotFound)
}

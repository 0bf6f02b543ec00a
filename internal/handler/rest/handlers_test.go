package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cf-bulk-manager/internal/domain"
	"cf-bulk-manager/internal/usecase"
	"cf-bulk-manager/pkg/storage"
)

type fakeZones struct {
	entry   *domain.ZoneCacheEntry
	syncErr error
	synced  int
}

func (f *fakeZones) CachedZones() *domain.ZoneCacheEntry { return f.entry }
func (f *fakeZones) IsStale() bool                       { return f.entry == nil }

func (f *fakeZones) SyncZones(context.Context) ([]domain.Zone, error) {
	f.synced++
	if f.syncErr != nil {
		return nil, f.syncErr
	}
	return f.entry.Zones, nil
}

func (f *fakeZones) EnsureFresh(ctx context.Context) (*domain.ZoneCacheEntry, error) {
	if f.entry == nil {
		if _, err := f.SyncZones(ctx); err != nil {
			return nil, err
		}
	}
	return f.entry, nil
}

func (f *fakeZones) CreateZones(_ context.Context, domains []string) ([]domain.ZoneCreateResult, error) {
	if len(domains) == 0 {
		return nil, domain.ErrEmptyTargets
	}
	out := make([]domain.ZoneCreateResult, len(domains))
	for i, d := range domains {
		out[i] = domain.ZoneCreateResult{Name: d, Created: true}
	}
	return out, nil
}

func (f *fakeZones) ResolveZone(_ context.Context, zoneID string) (*domain.Zone, error) {
	if f.entry != nil {
		for _, z := range f.entry.Zones {
			if z.ID == zoneID {
				return &z, nil
			}
		}
	}
	return nil, domain.ErrZoneNotFound
}

type fakeDNS struct {
	records map[string][]domain.DNSRecord
	err     error
}

func (f *fakeDNS) ListRecords(_ context.Context, zoneID string) ([]domain.DNSRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	recs, ok := f.records[zoneID]
	if !ok {
		return nil, domain.ErrZoneNotFound
	}
	return recs, nil
}

func (f *fakeDNS) CreateRecord(_ context.Context, zoneID string, input usecase.RecordInput) (*domain.DNSRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.DNSRecord{ID: "r-new", ZoneID: zoneID, Name: input.Name, Type: input.Type, Content: input.Content}, nil
}

func (f *fakeDNS) UpdateRecord(_ context.Context, zoneID, recordID string, input usecase.RecordInput) (*domain.DNSRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.DNSRecord{ID: recordID, ZoneID: zoneID, Name: input.Name, Type: input.Type, Content: input.Content}, nil
}

func (f *fakeDNS) DeleteRecord(context.Context, string, string) error { return f.err }

type fakeRedirects struct {
	lastZone string
	lastTpl  domain.RedirectTemplate
	err      error
}

func (f *fakeRedirects) AppendRule(_ context.Context, zoneID string, tpl domain.RedirectTemplate) (*domain.Ruleset, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastZone = zoneID
	f.lastTpl = tpl
	return &domain.Ruleset{ID: "rs-1", Rules: []domain.RedirectRule{domain.NewRedirectRule(tpl.Render(zoneID))}}, nil
}

type fakeBulk struct {
	report *domain.ExecutionReport
	state  usecase.ExecutionState
	runErr error
}

func (f *fakeBulk) Run(_ context.Context, job domain.BulkJob, _ usecase.ProgressFunc) (*domain.ExecutionReport, error) {
	if f.runErr != nil {
		return nil, f.runErr
	}
	if len(job.Targets) == 0 {
		return nil, domain.ErrEmptyTargets
	}
	r := domain.NewExecutionReport(len(job.Targets))
	for _, id := range job.Targets {
		r = r.Append(domain.ZoneOutcome{ZoneName: id, Classification: domain.ClassSuccess})
	}
	f.report = &r
	f.state = usecase.StateComplete
	return &r, nil
}

func (f *fakeBulk) State() usecase.ExecutionState   { return f.state }
func (f *fakeBulk) Report() *domain.ExecutionReport { return f.report }
func (f *fakeBulk) Dismiss()                        { f.report = nil; f.state = usecase.StateIdle }

type fakeSettings struct {
	settings storage.Settings
}

func (f *fakeSettings) LoadSettings() (*storage.Settings, error) {
	s := f.settings
	return &s, nil
}

func (f *fakeSettings) SaveSettings(s *storage.Settings) error {
	f.settings = *s
	return nil
}

type fixture struct {
	zones     *fakeZones
	dns       *fakeDNS
	redirects *fakeRedirects
	bulk      *fakeBulk
	router    http.Handler
}

func newFixture() *fixture {
	gin.SetMode(gin.TestMode)

	f := &fixture{
		zones: &fakeZones{entry: &domain.ZoneCacheEntry{
			Zones: []domain.Zone{
				{ID: "z1", Name: "one.com", Status: domain.ZoneStatusActive},
				{ID: "z2", Name: "two.com", Status: domain.ZoneStatusPending},
			},
			FetchedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		}},
		dns: &fakeDNS{records: map[string][]domain.DNSRecord{
			"z1": {{ID: "r1", ZoneID: "z1", Name: "one.com", Type: "A", Content: "192.0.2.1"}},
		}},
		redirects: &fakeRedirects{},
		bulk:      &fakeBulk{},
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	services := &usecase.Services{Zones: f.zones, DNS: f.dns, Redirects: f.redirects, Bulk: f.bulk}
	factory := func(string) (*usecase.Services, error) { return services, nil }
	handler := NewHandler(services, factory, &fakeSettings{settings: storage.Settings{DefaultTTL: 1}}, logger)

	router := gin.New()
	api := router.Group("/api")
	api.GET("/zones", handler.ListZones)
	api.POST("/zones/bulk", handler.CreateZones)
	api.GET("/zones/:id/dns_records", handler.ListRecords)
	api.POST("/zones/:id/dns_records", handler.CreateRecord)
	api.PUT("/zones/:id/dns_records/:recordID", handler.UpdateRecord)
	api.DELETE("/zones/:id/dns_records/:recordID", handler.DeleteRecord)
	api.POST("/zones/:id/redirect_rules", handler.CreateRedirect)
	api.POST("/bulk", handler.RunBulk)
	api.GET("/bulk/report", handler.BulkReport)
	api.DELETE("/bulk/report", handler.DismissBulkReport)
	api.GET("/settings", handler.GetSettings)
	api.PUT("/settings", handler.PutSettings)

	f.router = router
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestListZones(t *testing.T) {
	f := newFixture()
	w := f.do(t, http.MethodGet, "/api/zones", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ZonesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Result, 2)
	assert.Equal(t, "one.com", resp.Result[0].Name)
	assert.Equal(t, int64(1748779200000), resp.FetchedAt)
	assert.Equal(t, 0, f.zones.synced)
}

func TestListZonesForceSync(t *testing.T) {
	f := newFixture()
	w := f.do(t, http.MethodGet, "/api/zones?force=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.zones.synced)
}

func TestListZonesWithoutCredential(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	factory := func(string) (*usecase.Services, error) { return nil, assert.AnError }
	handler := NewHandler(nil, factory, &fakeSettings{}, logger)

	router := gin.New()
	router.GET("/api/zones", handler.ListZones)

	req := httptest.NewRequest(http.MethodGet, "/api/zones", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// a bad bearer token is also rejected
	req = httptest.NewRequest(http.MethodGet, "/api/zones", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateZonesFromPastedText(t *testing.T) {
	f := newFixture()
	w := f.do(t, http.MethodPost, "/api/zones/bulk", BulkZonesRequest{Text: "a.com\nb.com, a.com"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Results []domain.ZoneCreateResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "a.com", resp.Results[0].Name)
	assert.Equal(t, "b.com", resp.Results[1].Name)
}

func TestListRecords(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodGet, "/api/zones/z1/dns_records", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/zones/unknown/dns_records", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRecordValidation(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodPost, "/api/zones/z1/dns_records", map[string]string{"type": "A"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/zones/z1/dns_records", RecordRequest{Type: "A", Name: "www", Content: "192.0.2.7"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteRecord(t *testing.T) {
	f := newFixture()
	w := f.do(t, http.MethodDelete, "/api/zones/z1/dns_records/r1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProviderFailureMapsToBadGateway(t *testing.T) {
	f := newFixture()
	f.dns.err = &domain.ProviderError{Op: "list dns records", Messages: []string{"9103: unauthorized"}}

	w := f.do(t, http.MethodGet, "/api/zones/z1/dns_records", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestCreateRedirect(t *testing.T) {
	f := newFixture()
	w := f.do(t, http.MethodPost, "/api/zones/z1/redirect_rules", RedirectRequest{
		SourceURL: "one.com/promo",
		TargetURL: "https://shop.one.com/",
	})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "z1", f.redirects.lastZone)
	assert.Equal(t, "one.com/promo", f.redirects.lastTpl.SourcePattern)
}

func TestRunBulkAndReportLifecycle(t *testing.T) {
	f := newFixture()

	// no run yet
	w := f.do(t, http.MethodGet, "/api/bulk/report", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/api/bulk", BulkJobRequest{
		Targets: []string{"z1", "z2"},
		Kind:    string(domain.OperationDNSBulk),
		Records: []domain.RecordTemplate{domain.PresetGoogleSPF()},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var report domain.ExecutionReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 2, report.Current)
	assert.Len(t, report.Success, 2)

	w = f.do(t, http.MethodGet, "/api/bulk/report", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodDelete, "/api/bulk/report", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/bulk/report", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunBulkEmptyTargetsRejected(t *testing.T) {
	f := newFixture()
	w := f.do(t, http.MethodPost, "/api/bulk", map[string]interface{}{
		"targets": []string{},
		"kind":    "dns_bulk",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsRoundTrip(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodPut, "/api/settings", storage.Settings{DefaultTTL: 300, DMARCReportEmail: "dmarc@ops.example"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var s storage.Settings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	assert.Equal(t, 300, s.DefaultTTL)
	assert.Equal(t, "dmarc@ops.example", s.DMARCReportEmail)
}

func TestPerTokenBundlesIsolatedAndReused(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	zonesFor := map[string]*fakeZones{
		"tok-a": {entry: &domain.ZoneCacheEntry{
			Zones:     []domain.Zone{{ID: "za", Name: "alpha.com", Status: domain.ZoneStatusActive}},
			FetchedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		}},
		"tok-b": {entry: &domain.ZoneCacheEntry{
			Zones:     []domain.Zone{{ID: "zb", Name: "beta.com", Status: domain.ZoneStatusActive}},
			FetchedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		}},
	}
	built := map[string]int{}
	factory := func(token string) (*usecase.Services, error) {
		zones, ok := zonesFor[token]
		if !ok {
			return nil, assert.AnError
		}
		built[token]++
		return &usecase.Services{Zones: zones, DNS: &fakeDNS{}, Redirects: &fakeRedirects{}, Bulk: &fakeBulk{}}, nil
	}
	handler := NewHandler(nil, factory, &fakeSettings{}, logger)

	router := gin.New()
	router.GET("/api/zones", handler.ListZones)
	router.POST("/api/bulk", handler.RunBulk)
	router.GET("/api/bulk/report", handler.BulkReport)

	do := func(method, path, token string, body interface{}) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != nil {
			data, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
		req := httptest.NewRequest(method, path, reader)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// each token sees only its own zone list
	w := do(http.MethodGet, "/api/zones", "tok-a", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp ZonesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Result, 1)
	assert.Equal(t, "alpha.com", resp.Result[0].Name)

	w = do(http.MethodGet, "/api/zones", "tok-b", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = ZonesResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Result, 1)
	assert.Equal(t, "beta.com", resp.Result[0].Name)

	// a run's report stays with its token and survives across requests
	w = do(http.MethodPost, "/api/bulk", "tok-a", BulkJobRequest{Targets: []string{"za"}, Kind: "dnsBulk"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(http.MethodGet, "/api/bulk/report", "tok-a", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(http.MethodGet, "/api/bulk/report", "tok-b", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// one bundle per token, reused for every request
	assert.Equal(t, 1, built["tok-a"])
	assert.Equal(t, 1, built["tok-b"])
}

package rest

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"cf-bulk-manager/internal/domain"
	"cf-bulk-manager/internal/usecase"
	"cf-bulk-manager/pkg/storage"
)

// ServiceFactory builds a usecase bundle for a caller-supplied API token.
// The original frontend sends its stored credential on every request, so
// the API never holds a token of its own unless one is configured.
type ServiceFactory func(token string) (*usecase.Services, error)

// Handler carries the REST API's dependencies. Factory-built bundles are
// kept per token so state like the held bulk report and the zone cache
// survives across requests with the same credential.
type Handler struct {
	defaults *usecase.Services
	factory  ServiceFactory
	settings storage.SettingsStorage
	logger   *logrus.Entry

	mu      sync.Mutex
	byToken map[string]*usecase.Services
}

// NewHandler creates the REST handler. defaults may be nil when no
// server-side credential is configured; factory must not be nil.
func NewHandler(defaults *usecase.Services, factory ServiceFactory, settings storage.SettingsStorage, logger *logrus.Logger) *Handler {
	return &Handler{
		defaults: defaults,
		factory:  factory,
		settings: settings,
		logger:   logger.WithField("component", "rest"),
		byToken:  make(map[string]*usecase.Services),
	}
}

// services resolves the usecase bundle for a request: a bearer token in
// the Authorization header wins, otherwise the configured default.
func (h *Handler) services(c *gin.Context) (*usecase.Services, bool) {
	token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer"))
	if token == "" {
		if h.defaults == nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing API token"})
			return nil, false
		}
		return h.defaults, true
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if svc, ok := h.byToken[token]; ok {
		return svc, true
	}

	svc, err := h.factory(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid API token"})
		return nil, false
	}
	h.byToken[token] = svc
	return svc, true
}

// ListZones returns the synchronized zone list. ?force=true triggers a
// full re-sync; otherwise a sync happens only when the cache is stale.
func (h *Handler) ListZones(c *gin.Context) {
	svc, ok := h.services(c)
	if !ok {
		return
	}

	if c.Query("force") == "true" {
		if _, err := svc.Zones.SyncZones(c.Request.Context()); err != nil {
			h.fail(c, err)
			return
		}
	}

	entry, err := svc.Zones.EnsureFresh(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := ZonesResponse{Result: []domain.Zone{}}
	if entry != nil {
		resp.Result = entry.Zones
		resp.FetchedAt = entry.FetchedAt.UnixMilli()
	}
	c.JSON(http.StatusOK, resp)
}

// CreateZones onboards a pasted list of domains
func (h *Handler) CreateZones(c *gin.Context) {
	svc, ok := h.services(c)
	if !ok {
		return
	}

	var req BulkZonesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	domains := req.Domains
	if len(domains) == 0 {
		domains = domain.ParseDomainList(req.Text)
	}

	results, err := svc.Zones.CreateZones(c.Request.Context(), domains)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ListRecords returns all DNS records for a zone
func (h *Handler) ListRecords(c *gin.Context) {
	svc, ok := h.services(c)
	if !ok {
		return
	}

	records, err := svc.DNS.ListRecords(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": records})
}

// CreateRecord creates one DNS record
func (h *Handler) CreateRecord(c *gin.Context) {
	svc, ok := h.services(c)
	if !ok {
		return
	}

	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	record, err := svc.DNS.CreateRecord(c.Request.Context(), c.Param("id"), recordInput(req))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": record})
}

// UpdateRecord updates one DNS record
func (h *Handler) UpdateRecord(c *gin.Context) {
	svc, ok := h.services(c)
	if !ok {
		return
	}

	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	record, err := svc.DNS.UpdateRecord(c.Request.Context(), c.Param("id"), c.Param("recordID"), recordInput(req))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": record})
}

// DeleteRecord deletes one DNS record
func (h *Handler) DeleteRecord(c *gin.Context) {
	svc, ok := h.services(c)
	if !ok {
		return
	}

	if err := svc.DNS.DeleteRecord(c.Request.Context(), c.Param("id"), c.Param("recordID")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": gin.H{"id": c.Param("recordID")}})
}

// BulkRecords applies a record batch to a single zone, reporting
// per-record sub-errors the way the original bulk endpoint did
func (h *Handler) BulkRecords(c *gin.Context) {
	svc, ok := h.services(c)
	if !ok {
		return
	}

	var req BulkRecordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	report, err := svc.Bulk.Run(c.Request.Context(), domain.BulkJob{
		Targets: []string{c.Param("id")},
		Operation: domain.Operation{
			Kind:    domain.OperationDNSBulk,
			Records: req.Records,
		},
	}, nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// CreateRedirect appends one forwarding rule to a zone's redirect ruleset
func (h *Handler) CreateRedirect(c *gin.Context) {
	svc, ok := h.services(c)
	if !ok {
		return
	}

	var req RedirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	ruleset, err := svc.Redirects.AppendRule(c.Request.Context(), c.Param("id"), domain.RedirectTemplate{
		SourcePattern: req.SourceURL,
		TargetURL:     req.TargetURL,
		StatusCode:    req.StatusCode,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": ruleset})
}

// RunBulk executes a full multi-zone bulk job and returns the terminal
// report. Progress streaming is left to the bot UI; HTTP callers poll
// GET /bulk/report.
func (h *Handler) RunBulk(c *gin.Context) {
	svc, ok := h.services(c)
	if !ok {
		return
	}

	var req BulkJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	report, err := svc.Bulk.Run(c.Request.Context(), domain.BulkJob{
		Targets: req.Targets,
		Operation: domain.Operation{
			Kind:     domain.OperationKind(req.Kind),
			Records:  req.Records,
			Redirect: req.Redirect,
		},
	}, nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// BulkReport returns the last run's report, if any
func (h *Handler) BulkReport(c *gin.Context) {
	svc, ok := h.services(c)
	if !ok {
		return
	}

	report := svc.Bulk.Report()
	if report == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no bulk report held"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": svc.Bulk.State().String(), "report": report})
}

// DismissBulkReport discards the held report
func (h *Handler) DismissBulkReport(c *gin.Context) {
	svc, ok := h.services(c)
	if !ok {
		return
	}

	svc.Bulk.Dismiss()
	c.JSON(http.StatusOK, gin.H{"state": svc.Bulk.State().String()})
}

// GetSettings returns the stored operator settings
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.settings.LoadSettings()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// PutSettings replaces the stored operator settings
func (h *Handler) PutSettings(c *gin.Context) {
	var settings storage.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.settings.SaveSettings(&settings); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// fail maps domain errors onto HTTP statuses
func (h *Handler) fail(c *gin.Context, err error) {
	h.logger.WithError(err).Warn("request failed")

	status := http.StatusInternalServerError
	var provErr *domain.ProviderError
	var netErr *domain.NetworkError
	switch {
	case domain.IsValidationError(err):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrZoneNotFound),
		errors.Is(err, domain.ErrRecordNotFound),
		errors.Is(err, domain.ErrRulesetNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrSyncInProgress):
		status = http.StatusConflict
	case errors.As(err, &provErr), errors.As(err, &netErr):
		status = http.StatusBadGateway
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

// recordInput maps the request payload to the usecase input
func recordInput(req RecordRequest) usecase.RecordInput {
	return usecase.RecordInput{
		Name:     req.Name,
		Type:     req.Type,
		Content:  req.Content,
		TTL:      req.TTL,
		Proxied:  req.Proxied,
		Priority: req.Priority,
	}
}

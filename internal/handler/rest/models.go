package rest

import "cf-bulk-manager/internal/domain"

// RecordRequest is the payload for single-record create/update
type RecordRequest struct {
	Type     string  `json:"type" binding:"required"`
	Name     string  `json:"name"`
	Content  string  `json:"content" binding:"required"`
	TTL      int     `json:"ttl"`
	Proxied  bool    `json:"proxied"`
	Priority *uint16 `json:"priority"`
}

// RedirectRequest is the payload for appending one forwarding rule
type RedirectRequest struct {
	SourceURL  string `json:"source_url" binding:"required"`
	TargetURL  string `json:"target_url" binding:"required"`
	StatusCode int    `json:"status_code"`
}

// BulkZonesRequest is the payload for mass domain onboarding. Either a
// ready list or free-form pasted text is accepted.
type BulkZonesRequest struct {
	Domains []string `json:"domains"`
	Text    string   `json:"text"`
}

// BulkRecordsRequest is the payload for a per-zone record batch
type BulkRecordsRequest struct {
	Records []domain.RecordTemplate `json:"records" binding:"required"`
}

// BulkJobRequest is the payload for a full multi-zone bulk run
type BulkJobRequest struct {
	Targets  []string                `json:"targets" binding:"required"`
	Kind     string                  `json:"kind" binding:"required"`
	Records  []domain.RecordTemplate `json:"records"`
	Redirect domain.RedirectTemplate `json:"redirect"`
}

// ZonesResponse carries the cached zone list plus its fetch time
type ZonesResponse struct {
	Result    []domain.Zone `json:"result"`
	FetchedAt int64         `json:"fetched_at,omitempty"`
}

// ErrorResponse is the uniform error body
type ErrorResponse struct {
	Error string `json:"error"`
}

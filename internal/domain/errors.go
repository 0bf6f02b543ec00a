package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors
var (
	ErrZoneNotFound     = errors.New("zone not found")
	ErrRecordNotFound   = errors.New("dns record not found")
	ErrRulesetNotFound  = errors.New("redirect ruleset not found")
	ErrInvalidRecord    = errors.New("invalid dns record")
	ErrEmptyTargets     = errors.New("no target zones selected")
	ErrEmptyTemplate    = errors.New("empty operation template")
	ErrInvalidOperation = errors.New("unsupported bulk operation")
	ErrSyncInProgress   = errors.New("zone sync already running")
)

// NetworkError indicates a transport-level failure: the request never
// produced an interpretable provider response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProviderError indicates the provider received the request and rejected
// it, either wholesale or per sub-item.
type ProviderError struct {
	Op       string
	Messages []string
	Err      error
}

func (e *ProviderError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("provider rejected %s: %s", e.Op, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("provider rejected %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsValidationError reports whether err is a caller-input error raised
// before any network call.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyTargets) || errors.Is(err, ErrEmptyTemplate) ||
		errors.Is(err, ErrInvalidRecord) || errors.Is(err, ErrInvalidOperation)
}

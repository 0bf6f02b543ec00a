package cloudflare

import (
	"errors"
	"fmt"

	"github.com/cloudflare/cloudflare-go"
)

// APIError is a provider-level rejection: the request reached Cloudflare
// and was refused, with zero or more per-item messages.
type APIError struct {
	Op       string
	Messages []string
	Err      error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cloudflare rejected %s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// TransportError is a network-level failure with no interpretable response
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("cloudflare request %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Every cloudflare-go API error type exposes the response error list
// through this accessor; anything that doesn't is a transport failure.
type responseErrors interface {
	Errors() []cloudflare.ResponseInfo
}

// classifyErr wraps an SDK error as either an APIError carrying the
// provider's messages or a TransportError.
func classifyErr(op string, err error) error {
	var re responseErrors
	if errors.As(err, &re) {
		infos := re.Errors()
		msgs := make([]string, 0, len(infos))
		for _, info := range infos {
			msgs = append(msgs, info.Message)
		}
		return &APIError{Op: op, Messages: msgs, Err: err}
	}
	return &TransportError{Op: op, Err: err}
}

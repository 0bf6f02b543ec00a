package repository

import (
	"errors"

	"cf-bulk-manager/external_resource/cloudflare"
	"cf-bulk-manager/internal/domain"
)

// mapClientError lifts external client errors into the domain taxonomy:
// provider rejections keep their per-item messages, everything else from
// the transport becomes a NetworkError.
func mapClientError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *cloudflare.APIError
	if errors.As(err, &apiErr) {
		return &domain.ProviderError{Op: apiErr.Op, Messages: apiErr.Messages, Err: err}
	}

	var trErr *cloudflare.TransportError
	if errors.As(err, &trErr) {
		return &domain.NetworkError{Op: trErr.Op, Err: err}
	}

	return err
}

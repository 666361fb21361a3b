package marketdata

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the discovery client.
var (
	// ErrInvalidQuery means the query was rejected before any network I/O.
	ErrInvalidQuery = errors.New("query must be at least 2 characters")

	// ErrNotFound means the provider has no data for the requested pair or symbol.
	ErrNotFound = errors.New("token not found")
)

// ProviderError represents a non-2xx response from the discovery API.
type ProviderError struct {
	Op         string
	StatusCode int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("discovery %s request failed with status %d", e.Op, e.StatusCode)
}

package services

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument indicates bad input shape or range, detected before any I/O.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrProviderUnavailable indicates a missing credential or an unresolvable provider.
var ErrProviderUnavailable = errors.New("provider unavailable")

// UpstreamError reports a non-success HTTP status or a malformed/empty
// response from a vendor API. A single failed attempt is terminal;
// no retries are performed.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API request failed (status %d): %s", e.Provider, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Body)
}

func invalidArgf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func unavailablef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrProviderUnavailable, fmt.Sprintf(format, args...))
}

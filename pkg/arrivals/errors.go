package arrivals

import (
	"errors"
	"fmt"
)

// NetworkError covers everything that goes wrong before a response body is in hand:
// transport failures, timeouts, unreadable bodies and non-2xx statuses.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("network error fetching %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError is returned when the response body does not have the expected shape.
type ParseError struct {
	Station string
	Reason  string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error for station %s: %s: %v", e.Station, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse error for station %s: %s", e.Station, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrorClass names the failure class of a cycle error for logs and the board status.
func ErrorClass(err error) string {
	var networkErr *NetworkError
	var parseErr *ParseError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &networkErr):
		return "network"
	case errors.As(err, &parseErr):
		return "parse"
	default:
		return "internal"
	}
}

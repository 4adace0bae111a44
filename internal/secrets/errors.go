package secrets

// Error types for secret resolution. Absence and backend outage are
// different conditions: callers try the next source on absence but may
// fall back to a stale cached value on outage.

import "fmt"

// NotFoundError indicates the key is not configured in this source.
// This is an expected outcome, not a failure.
type NotFoundError struct {
	Source string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: no value for %s", e.Source, e.Key)
}

// UnavailableError indicates the backend itself could not be reached or
// refused the request. Distinct from absence: the secret may well exist.
type UnavailableError struct {
	Backend string
	Key     string
	Reason  string
	Fix     string
	Err     error
}

func (e *UnavailableError) Error() string {
	msg := fmt.Sprintf("%s unavailable: %s", e.Backend, e.Reason)
	if e.Fix != "" {
		msg += "\n\n  " + e.Fix
	}
	return msg
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

package remote

import (
	"errors"
	"fmt"
)

// DuplicateError reports that the service already holds a bookmark for the
// URL being created (HTTP 409). ID and Title describe the existing server
// record so the caller can adopt it.
type DuplicateError struct {
	ID    int64
	Title string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("remote already has bookmark %d (%s)", e.ID, e.Title)
}

// NetworkError reports a request that never produced a usable answer:
// transport failures, timeouts, and unexpected HTTP statuses. Status is zero
// when the request never reached the service.
type NetworkError struct {
	Op     string
	URL    string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote %s %s: unexpected status %d", e.Op, e.URL, e.Status)
	}
	return fmt.Sprintf("remote %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsDuplicate reports whether err is or wraps a DuplicateError.
func IsDuplicate(err error) bool {
	var d *DuplicateError
	return errors.As(err, &d)
}

// IsNetwork reports whether err is or wraps a NetworkError.
func IsNetwork(err error) bool {
	var n *NetworkError
	return errors.As(err, &n)
}

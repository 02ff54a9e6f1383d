package db

import (
	"errors"
	"fmt"
)

// DuplicateError reports a create against a URL that already has a record.
// Existing carries the stored record so callers can amend it instead of
// treating the collision as a hard failure.
type DuplicateError struct {
	Existing *Bookmark
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("bookmark already exists for %s", e.Existing.URL)
}

// NotFoundError reports an operation against a bookmark that does not exist.
// URL is set for natural-key lookups, LocalID for identifier lookups.
type NotFoundError struct {
	URL     string
	LocalID string
}

func (e *NotFoundError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("bookmark not found: %s", e.URL)
	}
	return fmt.Sprintf("bookmark not found: %s", e.LocalID)
}

// StoreCorruptionError reports a row whose persisted state is not a valid
// bookmark (unknown sync state, empty natural key). It is scoped to the one
// affected row; scans log and skip it rather than aborting.
type StoreCorruptionError struct {
	LocalID string
	URL     string
	Reason  string
}

func (e *StoreCorruptionError) Error() string {
	return fmt.Sprintf("corrupt bookmark row %s: %s", e.LocalID, e.Reason)
}

// IsDuplicate reports whether err is or wraps a DuplicateError.
func IsDuplicate(err error) bool {
	var d *DuplicateError
	return errors.As(err, &d)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

// IsCorruption reports whether err is or wraps a StoreCorruptionError.
func IsCorruption(err error) bool {
	var c *StoreCorruptionError
	return errors.As(err, &c)
}

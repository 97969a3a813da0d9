// Package errkind defines the error taxonomy shared by the reward ledger
// packages. Package sentinels wrap exactly one kind so callers can branch on
// either the specific failure or its class with errors.Is.
package errkind

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks rejected input: duplicate or unknown assets, weight
	// totals other than one unit, stale timestamps.
	ErrValidation = errors.New("validation error")

	// ErrAuthorization marks a caller lacking the required privilege.
	ErrAuthorization = errors.New("authorization error")

	// ErrInvariantViolation marks an accounting invariant breach, such as
	// distributing more than was minted.
	ErrInvariantViolation = errors.New("invariant violation")
)

// New returns a sentinel error with message msg that also matches kind.
func New(kind error, msg string) error {
	return fmt.Errorf("%s: %w", msg, kind)
}

// Of returns the kind err belongs to, or nil when it carries none.
func Of(err error) error {
	for _, k := range []error{ErrValidation, ErrAuthorization, ErrInvariantViolation} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

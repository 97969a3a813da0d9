package schedule

import (
	"errors"

	"github.com/bitfsorg/rewardledger-go/errkind"
)

var (
	// ErrNilParam indicates a required dependency is nil.
	ErrNilParam = errors.New("schedule: required parameter is nil")

	// ErrInvalidEmission indicates a negative daily emission.
	ErrInvalidEmission = errkind.New(errkind.ErrValidation, "schedule: invalid daily emission")

	// ErrInvalidShares indicates category shares that are negative or sum
	// past one unit.
	ErrInvalidShares = errkind.New(errkind.ErrValidation, "schedule: invalid category shares")
)

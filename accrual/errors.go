package accrual

import (
	"errors"

	"github.com/bitfsorg/rewardledger-go/errkind"
)

var (
	// ErrNilParam indicates a required dependency or argument is nil.
	ErrNilParam = errors.New("accrual: required parameter is nil")

	// ErrNegativeSupply indicates a negative total supply or principal.
	ErrNegativeSupply = errkind.New(errkind.ErrValidation, "accrual: negative supply")
)

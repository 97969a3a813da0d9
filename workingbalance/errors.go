package workingbalance

import (
	"errors"

	"github.com/bitfsorg/rewardledger-go/errkind"
)

var (
	// ErrNilParam indicates a required argument is nil.
	ErrNilParam = errors.New("workingbalance: required parameter is nil")

	// ErrNegativeBalance indicates a negative balance or supply.
	ErrNegativeBalance = errkind.New(errkind.ErrValidation, "workingbalance: negative balance")
)

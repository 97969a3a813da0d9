package token

import (
	"errors"

	"github.com/bitfsorg/rewardledger-go/errkind"
)

var (
	// ErrInvalidAmount indicates a nil, zero or negative amount.
	ErrInvalidAmount = errkind.New(errkind.ErrValidation, "token: invalid amount")

	// ErrInsufficientBalance indicates the distributor cannot cover a transfer.
	ErrInsufficientBalance = errkind.New(errkind.ErrValidation, "token: insufficient balance")

	// ErrInvalidRecipient indicates an empty recipient address.
	ErrInvalidRecipient = errors.New("token: invalid recipient")
)

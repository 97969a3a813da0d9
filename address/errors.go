package address

import "github.com/bitfsorg/rewardledger-go/errkind"

var (
	// ErrInvalidAddress indicates the string is not a valid base58check address.
	ErrInvalidAddress = errkind.New(errkind.ErrValidation, "address: invalid address")

	// ErrWrongNetwork indicates a valid address of another network.
	ErrWrongNetwork = errkind.New(errkind.ErrValidation, "address: wrong network")

	// ErrUnknownNetwork indicates a network name ParseNetwork does not know.
	ErrUnknownNetwork = errkind.New(errkind.ErrValidation, "address: unknown network")

	// ErrInvalidHash indicates a public key hash that is not 20 bytes.
	ErrInvalidHash = errkind.New(errkind.ErrValidation, "address: public key hash must be 20 bytes")
)

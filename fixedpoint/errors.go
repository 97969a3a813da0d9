package fixedpoint

import (
	"github.com/bitfsorg/rewardledger-go/errkind"
)

var (
	// ErrInvalidDecimal indicates a decimal string could not be parsed.
	ErrInvalidDecimal = errkind.New(errkind.ErrValidation, "fixedpoint: invalid decimal")

	// ErrTooPrecise indicates a decimal carries more than 18 fractional digits.
	ErrTooPrecise = errkind.New(errkind.ErrValidation, "fixedpoint: more than 18 fractional digits")

	// ErrNegative indicates a value that must be non-negative is negative.
	ErrNegative = errkind.New(errkind.ErrValidation, "fixedpoint: negative value")

	// ErrInvalidEncoding indicates stored bytes do not decode to an integer.
	ErrInvalidEncoding = errkind.New(errkind.ErrValidation, "fixedpoint: invalid encoding")
)

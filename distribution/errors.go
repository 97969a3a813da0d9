package distribution

import (
	"errors"

	"github.com/bitfsorg/rewardledger-go/errkind"
)

var (
	// ErrNilParam indicates a required dependency or argument is nil.
	ErrNilParam = errors.New("distribution: required parameter is nil")

	// ErrDistributionExceedsMint indicates a tick would transfer more than it minted.
	ErrDistributionExceedsMint = errkind.New(errkind.ErrInvariantViolation, "distribution: transfers exceed minted amount")

	// ErrSubDistributionExceedsReward indicates a pro-rata split paid out more than its reward.
	ErrSubDistributionExceedsReward = errkind.New(errkind.ErrInvariantViolation, "distribution: sub-distribution exceeds reward")

	// ErrDayNotAdvanced indicates the emission authority reported a valid
	// distribution that does not move past the last distributed day.
	ErrDayNotAdvanced = errkind.New(errkind.ErrInvariantViolation, "distribution: day did not advance")

	// ErrUnauthorized indicates the caller is not the governance address.
	ErrUnauthorized = errkind.New(errkind.ErrAuthorization, "distribution: caller is not governance")

	// ErrClaimDisabled indicates reward claims are switched off.
	ErrClaimDisabled = errkind.New(errkind.ErrValidation, "distribution: reward claim disabled")

	// ErrUnknownRecipientKind indicates a pass-through recipient of an unsupported kind.
	ErrUnknownRecipientKind = errkind.New(errkind.ErrValidation, "distribution: unknown recipient kind")

	// ErrRecipientNotRegistered indicates a pass-through recipient that is not
	// a registered asset and so can never accrue.
	ErrRecipientNotRegistered = errkind.New(errkind.ErrValidation, "distribution: pass-through recipient not registered")

	// ErrInvalidAmount indicates a nil, zero or negative transfer amount.
	ErrInvalidAmount = errkind.New(errkind.ErrValidation, "distribution: invalid amount")
)

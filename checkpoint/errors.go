package checkpoint

import "github.com/bitfsorg/rewardledger-go/errkind"

var (
	// ErrDuplicateAsset indicates the address is already registered.
	ErrDuplicateAsset = errkind.New(errkind.ErrValidation, "checkpoint: duplicate asset")

	// ErrUnknownAsset indicates the address is not registered under the category.
	ErrUnknownAsset = errkind.New(errkind.ErrValidation, "checkpoint: unknown asset")

	// ErrAssetNotFound indicates no asset is registered at the address.
	ErrAssetNotFound = errkind.New(errkind.ErrValidation, "checkpoint: asset not found")

	// ErrStaleTimestamp indicates a weight update older than the latest checkpoint.
	ErrStaleTimestamp = errkind.New(errkind.ErrValidation, "checkpoint: timestamp older than latest checkpoint")

	// ErrWeightSum indicates the category weights do not sum to one unit.
	ErrWeightSum = errkind.New(errkind.ErrValidation, "checkpoint: weights must sum to one unit")

	// ErrInvalidWeight indicates a nil or negative weight.
	ErrInvalidWeight = errkind.New(errkind.ErrValidation, "checkpoint: invalid weight")

	// ErrInvalidCategory indicates an empty category name.
	ErrInvalidCategory = errkind.New(errkind.ErrValidation, "checkpoint: invalid category")

	// ErrReservedName indicates an asset name that is empty or collides with
	// TotalKey.
	ErrReservedName = errkind.New(errkind.ErrValidation, "checkpoint: reserved asset name")

	// ErrCheckpointNotFound indicates a sequence beyond the latest checkpoint.
	ErrCheckpointNotFound = errkind.New(errkind.ErrValidation, "checkpoint: checkpoint not found")
)

package distribution

import (
	"context"
	"math/big"

	"github.com/bitfsorg/rewardledger-go/accrual"
	"github.com/bitfsorg/rewardledger-go/address"
)

// DistributionInfo is the emission authority's answer for a day.
type DistributionInfo struct {
	IsValid bool     // false until the next day may be distributed
	Amount  *big.Int // emission to mint
	Day     int64    // day the distribution advances to
}

// EmissionAuthority owns the emission schedule.
type EmissionAuthority interface {
	accrual.EmissionSource

	// DistributionInfo reports what may be minted after lastDay.
	DistributionInfo(ctx context.Context, lastDay int64) (*DistributionInfo, error)

	// AssetDailyRewards returns the current daily reward of each asset, keyed
	// by asset name.
	AssetDailyRewards(ctx context.Context) (map[string]*big.Int, error)

	// TokenDistributionPerDay returns the total emission of day.
	TokenDistributionPerDay(ctx context.Context, day int64) (*big.Int, error)

	// Day returns the current emission day.
	Day(ctx context.Context) (int64, error)

	// StartTimestamp returns the unix time emission began.
	StartTimestamp(ctx context.Context) (int64, error)
}

// TokenLedger mints and moves the reward token. Transfers debit the
// distributor's own balance.
type TokenLedger interface {
	Mint(ctx context.Context, amount *big.Int) error
	Transfer(ctx context.Context, to address.Address, amount *big.Int) error
}

// Holding is one holder's balance in a pass-through pool.
type Holding struct {
	Holder  address.Address
	Balance *big.Int
}

// HolderSource lists the holders of a pass-through pool in a stable order.
type HolderSource interface {
	Holders(ctx context.Context) ([]Holding, error)
}

// HolderList is a fixed HolderSource.
type HolderList []Holding

func (l HolderList) Holders(context.Context) ([]Holding, error) {
	out := make([]Holding, len(l))
	copy(out, l)
	return out, nil
}

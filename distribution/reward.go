package distribution

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/bitfsorg/rewardledger-go/address"
	"github.com/bitfsorg/rewardledger-go/fixedpoint"
)

// UserDetails is a balance change reported by an asset.
type UserDetails struct {
	User        address.Address
	UserBalance *big.Int // native units
	TotalSupply *big.Int // native units
	Decimals    uint8
}

// HandleAction settles user's reward on asset at the balance held until now,
// then records the new working balance.
func (e *Engine) HandleAction(ctx context.Context, asset address.Address, d UserDetails) (*big.Int, error) {
	if d.UserBalance == nil || d.TotalSupply == nil {
		return nil, fmt.Errorf("%w: user details", ErrNilParam)
	}
	prev, err := e.balances.Balance(asset, d.User)
	if err != nil {
		return nil, fmt.Errorf("distribution: read balance: %w", err)
	}
	reward, err := e.accrual.AccrueUser(ctx, asset, d.User, prev, e.now())
	if err != nil {
		return nil, err
	}
	if err := e.balances.Update(asset, d.User, d.UserBalance, d.TotalSupply, d.Decimals); err != nil {
		return nil, err
	}
	e.log.Debug("action handled",
		zap.Stringer("asset", asset),
		zap.Stringer("user", d.User),
		zap.String("settled", fixedpoint.Format(reward)),
	)
	return reward, nil
}

// ClaimRewards transfers user's accrued rewards to it and returns the amount.
func (e *Engine) ClaimRewards(ctx context.Context, user address.Address) (*big.Int, error) {
	enabled, err := e.state.ClaimEnabled()
	if err != nil {
		return nil, fmt.Errorf("distribution: read claim flag: %w", err)
	}
	if !enabled {
		return nil, ErrClaimDisabled
	}
	amount, err := e.accrual.Indexes().TakeAccrued(user)
	if err != nil {
		return nil, fmt.Errorf("distribution: take accrued: %w", err)
	}
	if amount.Sign() == 0 {
		return amount, nil
	}
	if err := e.token.Transfer(ctx, user, amount); err != nil {
		if rerr := e.accrual.Indexes().AddAccrued(user, amount); rerr != nil {
			e.log.Error("restore accrued after failed claim",
				zap.Stringer("user", user),
				zap.String("amount", fixedpoint.Format(amount)),
				zap.Error(rerr),
			)
		}
		return nil, fmt.Errorf("distribution: claim transfer: %w", err)
	}
	e.events.Emit(Distribution{Recipient: "claim", User: user, Amount: new(big.Int).Set(amount)})
	e.log.Info("rewards claimed", zap.Stringer("user", user), zap.String("amount", fixedpoint.Format(amount)))
	return amount, nil
}

// PendingRewards returns user's accrued rewards that have not been claimed.
func (e *Engine) PendingRewards(user address.Address) (*big.Int, error) {
	return e.accrual.Indexes().Accrued(user)
}

// UserDailyReward estimates what user earns per day from each registered
// asset the authority currently rewards, keyed by asset name: reward times
// the user's share of the asset. An asset with no working supply reports zero.
func (e *Engine) UserDailyReward(ctx context.Context, user address.Address) (map[string]*big.Int, error) {
	rewards, err := e.authority.AssetDailyRewards(ctx)
	if err != nil {
		return nil, fmt.Errorf("distribution: asset daily rewards: %w", err)
	}
	categories, err := e.weights.Categories()
	if err != nil {
		return nil, err
	}
	out := make(map[string]*big.Int)
	for _, cat := range categories {
		assets, err := e.weights.Assets(cat)
		if err != nil {
			return nil, err
		}
		for _, a := range assets {
			reward, ok := rewards[a.Name]
			if !ok || reward == nil {
				continue
			}
			share, err := e.balances.Share(a.Address, user)
			if err != nil {
				return nil, err
			}
			out[a.Name] = fixedpoint.Mul(reward, share)
		}
	}
	return out, nil
}

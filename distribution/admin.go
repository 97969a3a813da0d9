package distribution

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/bitfsorg/rewardledger-go/address"
	"github.com/bitfsorg/rewardledger-go/fixedpoint"
)

func (e *Engine) requireGovernance(caller address.Address) error {
	if e.governance.IsZero() || caller != e.governance {
		return fmt.Errorf("%w: %s", ErrUnauthorized, caller)
	}
	return nil
}

// EnableRewardClaim allows users to claim accrued rewards.
func (e *Engine) EnableRewardClaim(caller address.Address) error {
	return e.setClaim(caller, true)
}

// DisableRewardClaim stops users from claiming accrued rewards. Accrual
// continues while claims are disabled.
func (e *Engine) DisableRewardClaim(caller address.Address) error {
	return e.setClaim(caller, false)
}

func (e *Engine) setClaim(caller address.Address, enabled bool) error {
	if err := e.requireGovernance(caller); err != nil {
		return err
	}
	if err := e.state.SetClaimEnabled(enabled); err != nil {
		return fmt.Errorf("distribution: store claim flag: %w", err)
	}
	e.log.Info("reward claim toggled", zap.Bool("enabled", enabled))
	return nil
}

// IsRewardClaimEnabled reports whether claims are allowed.
func (e *Engine) IsRewardClaimEnabled() (bool, error) {
	return e.state.ClaimEnabled()
}

// TransferToTreasury moves amount from the distributor to the treasury.
func (e *Engine) TransferToTreasury(ctx context.Context, caller address.Address, amount *big.Int) error {
	if err := e.requireGovernance(caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	if e.treasury.IsZero() {
		return fmt.Errorf("%w: treasury address", ErrNilParam)
	}
	if err := e.token.Transfer(ctx, e.treasury, amount); err != nil {
		return fmt.Errorf("distribution: transfer to treasury: %w", err)
	}
	e.events.Emit(Distribution{Recipient: KindTreasury, User: e.treasury, Amount: new(big.Int).Set(amount)})
	e.log.Info("transferred to treasury", zap.String("amount", fixedpoint.Format(amount)))
	return nil
}

// TokenDistributionPerDay forwards to the emission authority.
func (e *Engine) TokenDistributionPerDay(ctx context.Context, day int64) (*big.Int, error) {
	return e.authority.TokenDistributionPerDay(ctx, day)
}

// Day forwards to the emission authority.
func (e *Engine) Day(ctx context.Context) (int64, error) {
	return e.authority.Day(ctx)
}

// StartTimestamp forwards to the emission authority.
func (e *Engine) StartTimestamp(ctx context.Context) (int64, error) {
	return e.authority.StartTimestamp(ctx)
}

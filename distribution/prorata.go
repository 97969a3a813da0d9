package distribution

import (
	"fmt"
	"math/big"

	"github.com/bitfsorg/rewardledger-go/address"
)

// Payout is one planned transfer.
type Payout struct {
	Recipient string
	Address   address.Address
	Amount    *big.Int
}

// SplitProRata divides reward among holders in enumeration order. Each
// holder receives remainingReward * balance / remainingSupply, after which
// its balance and share leave the pool. The last holder with a balance
// divides by its own balance and so takes whatever truncation left over:
// the whole reward is paid whenever any holder has a balance. Holders with
// zero balance are skipped.
func SplitProRata(recipient string, reward *big.Int, holders []Holding) ([]Payout, error) {
	if reward == nil {
		return nil, fmt.Errorf("%w: reward", ErrNilParam)
	}
	remainingSupply := new(big.Int)
	for _, h := range holders {
		if h.Balance == nil || h.Balance.Sign() < 0 {
			return nil, fmt.Errorf("%w: holder %s balance", ErrInvalidAmount, h.Holder)
		}
		remainingSupply.Add(remainingSupply, h.Balance)
	}

	remainingReward := new(big.Int).Set(reward)
	distributed := new(big.Int)
	payouts := make([]Payout, 0, len(holders))
	for _, h := range holders {
		if h.Balance.Sign() == 0 || remainingSupply.Sign() == 0 {
			continue
		}
		share := new(big.Int).Mul(remainingReward, h.Balance)
		share.Quo(share, remainingSupply)

		payouts = append(payouts, Payout{Recipient: recipient, Address: h.Holder, Amount: share})
		remainingSupply.Sub(remainingSupply, h.Balance)
		remainingReward.Sub(remainingReward, share)
		distributed.Add(distributed, share)
	}

	if distributed.Cmp(reward) > 0 {
		return nil, fmt.Errorf("%w: distributed %s of %s", ErrSubDistributionExceedsReward, distributed, reward)
	}
	return payouts, nil
}

// sumPayouts returns the total amount of payouts.
func sumPayouts(payouts []Payout) *big.Int {
	total := new(big.Int)
	for _, p := range payouts {
		total.Add(total, p.Amount)
	}
	return total
}

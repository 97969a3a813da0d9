// Package token is a minimal reward-token ledger. Minted supply lands on
// the distributor account, and every transfer debits it.
package token

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/bitfsorg/rewardledger-go/address"
)

// Ledger is a token ledger owned by one distributor account.
type Ledger interface {
	Mint(ctx context.Context, amount *big.Int) error
	Transfer(ctx context.Context, to address.Address, amount *big.Int) error
	BalanceOf(holder address.Address) (*big.Int, error)
	TotalSupply() (*big.Int, error)
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	return nil
}

// MemLedger is an in-memory Ledger.
type MemLedger struct {
	mu          sync.RWMutex
	distributor address.Address
	balances    map[address.Address]*big.Int
	supply      *big.Int
}

// Compile-time interface check.
var _ Ledger = (*MemLedger)(nil)

// NewMemLedger creates an empty ledger whose mints credit distributor.
func NewMemLedger(distributor address.Address) *MemLedger {
	return &MemLedger{
		distributor: distributor,
		balances:    make(map[address.Address]*big.Int),
		supply:      new(big.Int),
	}
}

func (l *MemLedger) Mint(_ context.Context, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(l.distributor, amount)
	l.supply.Add(l.supply, amount)
	return nil
}

func (l *MemLedger) Transfer(_ context.Context, to address.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if to.IsZero() {
		return ErrInvalidRecipient
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	bal := l.balance(l.distributor)
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, bal, amount)
	}
	l.balances[l.distributor] = new(big.Int).Sub(bal, amount)
	l.credit(to, amount)
	return nil
}

func (l *MemLedger) BalanceOf(holder address.Address) (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balance(holder), nil
}

func (l *MemLedger) TotalSupply() (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.supply), nil
}

func (l *MemLedger) balance(holder address.Address) *big.Int {
	if b, ok := l.balances[holder]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (l *MemLedger) credit(holder address.Address, amount *big.Int) {
	l.balances[holder] = new(big.Int).Add(l.balance(holder), amount)
}

// Package workingbalance records the normalized principal each participant
// holds in each asset, and the per-asset aggregate used as the accrual
// denominator.
package workingbalance

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/bitfsorg/rewardledger-go/address"
	"github.com/bitfsorg/rewardledger-go/fixedpoint"
)

// Store persists working balances.
type Store interface {
	// Balance returns the working balance of user in asset.
	Balance(asset, user address.Address) (*big.Int, error)

	// Total returns the working total of asset.
	Total(asset address.Address) (*big.Int, error)

	// Put records the balance of user and the asset total together.
	Put(asset, user address.Address, balance, total *big.Int) error
}

// Ledger rescales native-precision balances to 18 decimals before storing
// them.
type Ledger struct {
	store Store
}

// NewLedger creates a Ledger over store.
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Update records the balance of user in asset and the asset's total supply,
// both given in the asset's native precision.
func (l *Ledger) Update(asset, user address.Address, userBalance, totalSupply *big.Int, decimals uint8) error {
	if userBalance == nil || totalSupply == nil {
		return ErrNilParam
	}
	if userBalance.Sign() < 0 || totalSupply.Sign() < 0 {
		return fmt.Errorf("%w: balance %s, supply %s", ErrNegativeBalance, userBalance, totalSupply)
	}
	return l.store.Put(asset, user,
		fixedpoint.FromNative(userBalance, decimals),
		fixedpoint.FromNative(totalSupply, decimals))
}

// Balance returns the normalized balance of user in asset.
func (l *Ledger) Balance(asset, user address.Address) (*big.Int, error) {
	return l.store.Balance(asset, user)
}

// Total returns the normalized total of asset.
func (l *Ledger) Total(asset address.Address) (*big.Int, error) {
	return l.store.Total(asset)
}

// Share returns balance/total of user in asset, zero when the total is zero.
func (l *Ledger) Share(asset, user address.Address) (*big.Int, error) {
	bal, err := l.store.Balance(asset, user)
	if err != nil {
		return nil, err
	}
	total, err := l.store.Total(asset)
	if err != nil {
		return nil, err
	}
	return fixedpoint.Div(bal, total), nil
}

type balanceKey struct {
	asset, user address.Address
}

// MemStore is an in-memory Store.
type MemStore struct {
	mu       sync.RWMutex
	balances map[balanceKey]*big.Int
	totals   map[address.Address]*big.Int
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		balances: make(map[balanceKey]*big.Int),
		totals:   make(map[address.Address]*big.Int),
	}
}

func (s *MemStore) Balance(asset, user address.Address) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.balances[balanceKey{asset, user}]; ok {
		return new(big.Int).Set(v), nil
	}
	return new(big.Int), nil
}

func (s *MemStore) Total(asset address.Address) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.totals[asset]; ok {
		return new(big.Int).Set(v), nil
	}
	return new(big.Int), nil
}

func (s *MemStore) Put(asset, user address.Address, balance, total *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[balanceKey{asset, user}] = new(big.Int).Set(balance)
	s.totals[asset] = new(big.Int).Set(total)
	return nil
}

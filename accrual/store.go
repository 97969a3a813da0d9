package accrual

import (
	"math/big"
	"sync"

	"github.com/bitfsorg/rewardledger-go/address"
)

// AssetIndex is the accumulator state of one asset.
type AssetIndex struct {
	Index      *big.Int
	LastUpdate int64 // zero until the asset is first touched
}

// IndexStore persists asset and user indexes plus the rewards accrued to
// each user.
type IndexStore interface {
	// AssetIndex returns the index of asset; unknown assets report zero.
	AssetIndex(asset address.Address) (*AssetIndex, error)

	// SetAssetIndex records a new index and its reference timestamp.
	SetAssetIndex(asset address.Address, index *big.Int, timestamp int64) error

	// UserIndex returns the asset index last settled for user.
	UserIndex(asset, user address.Address) (*big.Int, error)

	// SetUserIndex records the asset index settled for user.
	SetUserIndex(asset, user address.Address, index *big.Int) error

	// Accrued returns the unclaimed rewards of user.
	Accrued(user address.Address) (*big.Int, error)

	// AddAccrued adds amount to the unclaimed rewards of user.
	AddAccrued(user address.Address, amount *big.Int) error

	// TakeAccrued returns the unclaimed rewards of user and resets them.
	TakeAccrued(user address.Address) (*big.Int, error)
}

type userKey struct {
	asset, user address.Address
}

// MemIndexStore is an in-memory IndexStore.
type MemIndexStore struct {
	mu      sync.RWMutex
	assets  map[address.Address]AssetIndex
	users   map[userKey]*big.Int
	accrued map[address.Address]*big.Int
}

// Compile-time interface check.
var _ IndexStore = (*MemIndexStore)(nil)

// NewMemIndexStore creates an empty in-memory index store.
func NewMemIndexStore() *MemIndexStore {
	return &MemIndexStore{
		assets:  make(map[address.Address]AssetIndex),
		users:   make(map[userKey]*big.Int),
		accrued: make(map[address.Address]*big.Int),
	}
}

func (s *MemIndexStore) AssetIndex(asset address.Address) (*AssetIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ai, ok := s.assets[asset]
	if !ok {
		return &AssetIndex{Index: new(big.Int)}, nil
	}
	return &AssetIndex{Index: new(big.Int).Set(ai.Index), LastUpdate: ai.LastUpdate}, nil
}

func (s *MemIndexStore) SetAssetIndex(asset address.Address, index *big.Int, timestamp int64) error {
	if index == nil {
		return ErrNilParam
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[asset] = AssetIndex{Index: new(big.Int).Set(index), LastUpdate: timestamp}
	return nil
}

func (s *MemIndexStore) UserIndex(asset, user address.Address) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx, ok := s.users[userKey{asset, user}]; ok {
		return new(big.Int).Set(idx), nil
	}
	return new(big.Int), nil
}

func (s *MemIndexStore) SetUserIndex(asset, user address.Address, index *big.Int) error {
	if index == nil {
		return ErrNilParam
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userKey{asset, user}] = new(big.Int).Set(index)
	return nil
}

func (s *MemIndexStore) Accrued(user address.Address) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.accrued[user]; ok {
		return new(big.Int).Set(v), nil
	}
	return new(big.Int), nil
}

func (s *MemIndexStore) AddAccrued(user address.Address, amount *big.Int) error {
	if amount == nil {
		return ErrNilParam
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.accrued[user]
	if !ok {
		cur = new(big.Int)
	}
	s.accrued[user] = new(big.Int).Add(cur, amount)
	return nil
}

func (s *MemIndexStore) TakeAccrued(user address.Address) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.accrued[user]
	if !ok {
		return new(big.Int), nil
	}
	delete(s.accrued, user)
	return v, nil
}

package distribution

import (
	"context"
	"fmt"
	"math/big"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/rewardledger-go/address"
	"github.com/bitfsorg/rewardledger-go/fixedpoint"
)

var bucketHolders = []byte("distribution_holders")

// BoltHolders is a HolderSource persisted in bbolt, one sub-bucket per pool.
// Holders are enumerated in address order.
type BoltHolders struct {
	db   *bbolt.DB
	pool []byte
}

// Compile-time interface check.
var _ HolderSource = (*BoltHolders)(nil)

// NewBoltHolders creates the holder bucket of pool in db.
func NewBoltHolders(db *bbolt.DB, pool address.Address) (*BoltHolders, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(bucketHolders)
		if err != nil {
			return fmt.Errorf("boltstore: create bucket %q: %w", bucketHolders, err)
		}
		if _, err := root.CreateBucketIfNotExists([]byte(pool)); err != nil {
			return fmt.Errorf("boltstore: create pool bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("distribution: create holders: %w", err)
	}
	return &BoltHolders{db: db, pool: []byte(pool)}, nil
}

// SetHolding records the pool balance of holder. A zero balance removes it.
func (h *BoltHolders) SetHolding(holder address.Address, balance *big.Int) error {
	if holder.IsZero() {
		return fmt.Errorf("%w: holder", ErrNilParam)
	}
	if balance == nil || balance.Sign() < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, balance)
	}
	return h.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketHolders).Bucket(h.pool)
		if balance.Sign() == 0 {
			return b.Delete([]byte(holder))
		}
		return b.Put([]byte(holder), fixedpoint.Encode(balance))
	})
}

func (h *BoltHolders) Holders(context.Context) ([]Holding, error) {
	var out []Holding
	err := h.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketHolders).Bucket(h.pool).ForEach(func(k, v []byte) error {
			out = append(out, Holding{Holder: address.Address(k), Balance: fixedpoint.Decode(v)})
			return nil
		})
	})
	return out, err
}

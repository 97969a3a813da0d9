package workingbalance

import (
	"fmt"
	"math/big"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/rewardledger-go/address"
	"github.com/bitfsorg/rewardledger-go/fixedpoint"
)

var (
	bucketBalances = []byte("wb_balances")
	bucketTotals   = []byte("wb_totals")
)

// BoltStore persists working balances in bbolt.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// NewBoltStore creates the working-balance buckets in db.
func NewBoltStore(db *bbolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketBalances, bucketTotals} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("workingbalance: create buckets: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func balanceKeyBytes(asset, user address.Address) []byte {
	k := make([]byte, 0, len(asset)+1+len(user))
	k = append(k, asset...)
	k = append(k, 0)
	return append(k, user...)
}

func (s *BoltStore) Balance(asset, user address.Address) (*big.Int, error) {
	var v *big.Int
	err := s.db.View(func(tx *bbolt.Tx) error {
		v = fixedpoint.Decode(tx.Bucket(bucketBalances).Get(balanceKeyBytes(asset, user)))
		return nil
	})
	return v, err
}

func (s *BoltStore) Total(asset address.Address) (*big.Int, error) {
	var v *big.Int
	err := s.db.View(func(tx *bbolt.Tx) error {
		v = fixedpoint.Decode(tx.Bucket(bucketTotals).Get([]byte(asset)))
		return nil
	})
	return v, err
}

// Put writes the balance and total in one transaction.
func (s *BoltStore) Put(asset, user address.Address, balance, total *big.Int) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketBalances).Put(balanceKeyBytes(asset, user), fixedpoint.Encode(balance)); err != nil {
			return fmt.Errorf("boltstore: put balance: %w", err)
		}
		if err := tx.Bucket(bucketTotals).Put([]byte(asset), fixedpoint.Encode(total)); err != nil {
			return fmt.Errorf("boltstore: put total: %w", err)
		}
		return nil
	})
}

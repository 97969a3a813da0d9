package accrual

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/rewardledger-go/address"
	"github.com/bitfsorg/rewardledger-go/fixedpoint"
)

var (
	bucketAssetIndexes = []byte("accrual_asset_indexes")
	bucketUserIndexes  = []byte("accrual_user_indexes")
	bucketAccrued      = []byte("accrual_accrued")
)

// BoltIndexStore persists indexes in bbolt. Asset values are an 8-byte
// big-endian timestamp followed by the index bytes.
type BoltIndexStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ IndexStore = (*BoltIndexStore)(nil)

// NewBoltIndexStore creates the index buckets in db.
func NewBoltIndexStore(db *bbolt.DB) (*BoltIndexStore, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketAssetIndexes, bucketUserIndexes, bucketAccrued} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("accrual: create buckets: %w", err)
	}
	return &BoltIndexStore{db: db}, nil
}

// userIndexKey joins asset and user with a NUL separator; base58 never
// contains one.
func userIndexKey(asset, user address.Address) []byte {
	k := make([]byte, 0, len(asset)+1+len(user))
	k = append(k, asset...)
	k = append(k, 0)
	return append(k, user...)
}

func (s *BoltIndexStore) AssetIndex(asset address.Address) (*AssetIndex, error) {
	ai := &AssetIndex{Index: new(big.Int)}
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketAssetIndexes).Get([]byte(asset))
		if v == nil {
			return nil
		}
		if len(v) < 8 {
			return fmt.Errorf("%w: asset index for %s", fixedpoint.ErrInvalidEncoding, asset)
		}
		ai.LastUpdate = int64(binary.BigEndian.Uint64(v[:8]))
		ai.Index = fixedpoint.Decode(v[8:])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ai, nil
}

func (s *BoltIndexStore) SetAssetIndex(asset address.Address, index *big.Int, timestamp int64) error {
	if index == nil {
		return ErrNilParam
	}
	v := make([]byte, 8, 8+len(index.Bytes())+1)
	binary.BigEndian.PutUint64(v, uint64(timestamp))
	v = append(v, fixedpoint.Encode(index)...)
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketAssetIndexes).Put([]byte(asset), v); err != nil {
			return fmt.Errorf("boltstore: put asset index: %w", err)
		}
		return nil
	})
}

func (s *BoltIndexStore) getInt(bucket, key []byte) (*big.Int, error) {
	var out *big.Int
	err := s.db.View(func(tx *bbolt.Tx) error {
		out = fixedpoint.Decode(tx.Bucket(bucket).Get(key))
		return nil
	})
	return out, err
}

func (s *BoltIndexStore) UserIndex(asset, user address.Address) (*big.Int, error) {
	return s.getInt(bucketUserIndexes, userIndexKey(asset, user))
}

func (s *BoltIndexStore) SetUserIndex(asset, user address.Address, index *big.Int) error {
	if index == nil {
		return ErrNilParam
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketUserIndexes).Put(userIndexKey(asset, user), fixedpoint.Encode(index)); err != nil {
			return fmt.Errorf("boltstore: put user index: %w", err)
		}
		return nil
	})
}

func (s *BoltIndexStore) Accrued(user address.Address) (*big.Int, error) {
	return s.getInt(bucketAccrued, []byte(user))
}

func (s *BoltIndexStore) AddAccrued(user address.Address, amount *big.Int) error {
	if amount == nil {
		return ErrNilParam
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketAccrued)
		cur := fixedpoint.Decode(b.Get([]byte(user)))
		if err := b.Put([]byte(user), fixedpoint.Encode(cur.Add(cur, amount))); err != nil {
			return fmt.Errorf("boltstore: put accrued: %w", err)
		}
		return nil
	})
}

func (s *BoltIndexStore) TakeAccrued(user address.Address) (*big.Int, error) {
	var v *big.Int
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketAccrued)
		v = fixedpoint.Decode(b.Get([]byte(user)))
		if err := b.Delete([]byte(user)); err != nil {
			return fmt.Errorf("boltstore: delete accrued: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

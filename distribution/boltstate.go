package distribution

import (
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"
)

var (
	bucketState = []byte("distribution_state")

	keyLastDay      = []byte("last_distributed_day")
	keyClaimEnabled = []byte("claim_enabled")
)

// BoltState persists engine state in bbolt.
type BoltState struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ StateStore = (*BoltState)(nil)

// NewBoltState creates the state bucket in db. lastDay seeds the last
// distributed day when none is stored yet.
func NewBoltState(db *bbolt.DB, lastDay int64) (*BoltState, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketState)
		if err != nil {
			return fmt.Errorf("boltstore: create bucket %q: %w", bucketState, err)
		}
		if b.Get(keyLastDay) == nil {
			return b.Put(keyLastDay, encodeDay(lastDay))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("distribution: create state: %w", err)
	}
	return &BoltState{db: db}, nil
}

func encodeDay(day int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(day))
	return buf
}

func (s *BoltState) LastDistributedDay() (int64, error) {
	var day int64
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketState).Get(keyLastDay)
		if len(v) != 8 {
			return fmt.Errorf("distribution: corrupt last distributed day")
		}
		day = int64(binary.BigEndian.Uint64(v))
		return nil
	})
	return day, err
}

func (s *BoltState) SetLastDistributedDay(day int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketState).Put(keyLastDay, encodeDay(day))
	})
}

func (s *BoltState) ClaimEnabled() (bool, error) {
	var enabled bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketState).Get(keyClaimEnabled)
		enabled = len(v) == 1 && v[0] == 1
		return nil
	})
	return enabled, err
}

func (s *BoltState) SetClaimEnabled(enabled bool) error {
	v := []byte{0}
	if enabled {
		v[0] = 1
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketState).Put(keyClaimEnabled, v)
	})
}

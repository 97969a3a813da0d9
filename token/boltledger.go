package token

import (
	"context"
	"fmt"
	"math/big"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/rewardledger-go/address"
	"github.com/bitfsorg/rewardledger-go/fixedpoint"
)

var (
	bucketBalances = []byte("token_balances")
	bucketSupply   = []byte("token_supply")

	keySupply = []byte("total")
)

// BoltLedger persists balances in bbolt. Each mint or transfer is one
// write transaction.
type BoltLedger struct {
	db          *bbolt.DB
	distributor address.Address
}

// Compile-time interface check.
var _ Ledger = (*BoltLedger)(nil)

// NewBoltLedger creates the token buckets in db.
func NewBoltLedger(db *bbolt.DB, distributor address.Address) (*BoltLedger, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketBalances, bucketSupply} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("token: create buckets: %w", err)
	}
	return &BoltLedger{db: db, distributor: distributor}, nil
}

func addTo(b *bbolt.Bucket, key []byte, delta *big.Int) error {
	v := new(big.Int).Add(fixedpoint.Decode(b.Get(key)), delta)
	return b.Put(key, fixedpoint.Encode(v))
}

func (l *BoltLedger) Mint(_ context.Context, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	return l.db.Update(func(tx *bbolt.Tx) error {
		if err := addTo(tx.Bucket(bucketBalances), []byte(l.distributor), amount); err != nil {
			return fmt.Errorf("boltstore: credit distributor: %w", err)
		}
		if err := addTo(tx.Bucket(bucketSupply), keySupply, amount); err != nil {
			return fmt.Errorf("boltstore: add supply: %w", err)
		}
		return nil
	})
}

func (l *BoltLedger) Transfer(_ context.Context, to address.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if to.IsZero() {
		return ErrInvalidRecipient
	}
	return l.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketBalances)
		bal := fixedpoint.Decode(b.Get([]byte(l.distributor)))
		if bal.Cmp(amount) < 0 {
			return fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, bal, amount)
		}
		if err := addTo(b, []byte(l.distributor), new(big.Int).Neg(amount)); err != nil {
			return fmt.Errorf("boltstore: debit distributor: %w", err)
		}
		if err := addTo(b, []byte(to), amount); err != nil {
			return fmt.Errorf("boltstore: credit %s: %w", to, err)
		}
		return nil
	})
}

func (l *BoltLedger) BalanceOf(holder address.Address) (*big.Int, error) {
	var out *big.Int
	err := l.db.View(func(tx *bbolt.Tx) error {
		out = fixedpoint.Decode(tx.Bucket(bucketBalances).Get([]byte(holder)))
		return nil
	})
	return out, err
}

func (l *BoltLedger) TotalSupply() (*big.Int, error) {
	var out *big.Int
	err := l.db.View(func(tx *bbolt.Tx) error {
		out = fixedpoint.Decode(tx.Bucket(bucketSupply).Get(keySupply))
		return nil
	})
	return out, err
}

package checkpoint

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.etcd.io/bbolt"

	"github.com/bitfsorg/rewardledger-go/address"
	"github.com/bitfsorg/rewardledger-go/fixedpoint"
	"github.com/bitfsorg/rewardledger-go/metrics"
)

var (
	bucketAssets     = []byte("cp_assets")
	bucketCategories = []byte("cp_categories")

	// Sub-buckets of each category bucket.
	subMembers    = []byte("members")
	subTimestamps = []byte("timestamps")
	subTotals     = []byte("totals")
	subWeights    = []byte("weights")
)

// DefaultCacheSize bounds the number of decoded superseded snapshots kept
// in memory.
const DefaultCacheSize = 256

// assetRecord is the gob value stored per asset address.
type assetRecord struct {
	Category string
	Name     string
}

type snapshotKey struct {
	category string
	seq      uint64
}

// BoltStore persists assets and checkpoints in bbolt. Every category has its
// own bucket holding the member list plus timestamp, total and weight
// buckets keyed by big-endian sequence number.
type BoltStore struct {
	db    *bbolt.DB
	owned bool
	cache *lru.Cache[snapshotKey, map[address.Address]*big.Int]
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("checkpoint: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open bolt db: %w", err)
	}
	s, err := NewBoltStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// NewBoltStore wraps an already open database, creating the buckets it needs.
// The caller keeps ownership of db.
func NewBoltStore(db *bbolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketAssets, bucketCategories} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("checkpoint: create buckets: %w", err)
	}
	cache, err := lru.New[snapshotKey, map[address.Address]*big.Int](DefaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: create cache: %w", err)
	}
	return &BoltStore{db: db, cache: cache}, nil
}

// Close closes the database when the store opened it.
func (s *BoltStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// seqKey encodes a sequence as an 8-byte big-endian key for sorted storage.
func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

func encodeInt64(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func decodeInt64(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// categoryBucket returns the bucket of category, or nil if it was never used.
func categoryBucket(tx *bbolt.Tx, category string) *bbolt.Bucket {
	return tx.Bucket(bucketCategories).Bucket([]byte(category))
}

// ensureCategory creates the category bucket together with its genesis
// checkpoint at sequence 0 and timestamp 0.
func ensureCategory(tx *bbolt.Tx, category string) (*bbolt.Bucket, error) {
	if b := categoryBucket(tx, category); b != nil {
		return b, nil
	}
	b, err := tx.Bucket(bucketCategories).CreateBucket([]byte(category))
	if err != nil {
		return nil, fmt.Errorf("boltstore: create category %q: %w", category, err)
	}
	for _, name := range [][]byte{subMembers, subTimestamps, subTotals, subWeights} {
		if _, err := b.CreateBucket(name); err != nil {
			return nil, fmt.Errorf("boltstore: create %q/%q: %w", category, name, err)
		}
	}
	if err := b.Bucket(subTimestamps).Put(seqKey(0), encodeInt64(0)); err != nil {
		return nil, fmt.Errorf("boltstore: put genesis timestamp: %w", err)
	}
	if err := b.Bucket(subTotals).Put(seqKey(0), fixedpoint.Encode(new(big.Int))); err != nil {
		return nil, fmt.Errorf("boltstore: put genesis total: %w", err)
	}
	if _, err := b.Bucket(subWeights).CreateBucket(seqKey(0)); err != nil {
		return nil, fmt.Errorf("boltstore: create genesis weights: %w", err)
	}
	return b, nil
}

// latestSeq returns the newest sequence of a category bucket.
func latestSeq(b *bbolt.Bucket) uint64 {
	k, _ := b.Bucket(subTimestamps).Cursor().Last()
	if k == nil {
		return 0
	}
	return binary.BigEndian.Uint64(k)
}

func timestampAt(b *bbolt.Bucket) func(uint64) (int64, error) {
	ts := b.Bucket(subTimestamps)
	return func(seq uint64) (int64, error) {
		v := ts.Get(seqKey(seq))
		if v == nil {
			return 0, fmt.Errorf("%w: sequence %d", ErrCheckpointNotFound, seq)
		}
		return decodeInt64(v), nil
	}
}

func getAsset(tx *bbolt.Tx, addr address.Address) (*Asset, error) {
	data := tx.Bucket(bucketAssets).Get([]byte(addr))
	if data == nil {
		return nil, nil
	}
	var rec assetRecord
	if err := decodeGob(data, &rec); err != nil {
		return nil, fmt.Errorf("boltstore: decode asset: %w", err)
	}
	return &Asset{Address: addr, Category: rec.Category, Name: rec.Name}, nil
}

func members(b *bbolt.Bucket) []address.Address {
	var out []address.Address
	_ = b.Bucket(subMembers).ForEach(func(_, v []byte) error {
		out = append(out, address.Address(v))
		return nil
	})
	return out
}

// RegisterAsset adds an asset under category.
func (s *BoltStore) RegisterAsset(category string, addr address.Address, name string) error {
	if err := validateCategory(category); err != nil {
		return err
	}
	if addr.IsZero() {
		return fmt.Errorf("%w: empty address", ErrUnknownAsset)
	}
	if err := validateAssetName(name); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		ab := tx.Bucket(bucketAssets)
		if ab.Get([]byte(addr)) != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateAsset, addr)
		}
		data, err := encodeGob(assetRecord{Category: category, Name: name})
		if err != nil {
			return fmt.Errorf("encode asset: %w", err)
		}
		if err := ab.Put([]byte(addr), data); err != nil {
			return fmt.Errorf("boltstore: put asset: %w", err)
		}
		cb, err := ensureCategory(tx, category)
		if err != nil {
			return err
		}
		mb := cb.Bucket(subMembers)
		order, err := mb.NextSequence()
		if err != nil {
			return fmt.Errorf("boltstore: member sequence: %w", err)
		}
		if err := mb.Put(seqKey(order), []byte(addr)); err != nil {
			return fmt.Errorf("boltstore: put member: %w", err)
		}
		return nil
	})
}

// Asset returns the asset registered at addr.
func (s *BoltStore) Asset(addr address.Address) (*Asset, error) {
	var asset *Asset
	err := s.db.View(func(tx *bbolt.Tx) error {
		a, err := getAsset(tx, addr)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("%w: %s", ErrAssetNotFound, addr)
		}
		asset = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// Assets returns the assets of category in registration order.
func (s *BoltStore) Assets(category string) ([]Asset, error) {
	var out []Asset
	err := s.db.View(func(tx *bbolt.Tx) error {
		cb := categoryBucket(tx, category)
		if cb == nil {
			return nil
		}
		for _, addr := range members(cb) {
			a, err := getAsset(tx, addr)
			if err != nil {
				return err
			}
			if a != nil {
				out = append(out, *a)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Categories returns every category with at least one asset, sorted.
func (s *BoltStore) Categories() ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCategories).ForEach(func(k, _ []byte) error {
			cb := tx.Bucket(bucketCategories).Bucket(k)
			if cb == nil {
				return nil
			}
			if first, _ := cb.Bucket(subMembers).Cursor().First(); first != nil {
				out = append(out, string(k))
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// bucketSink writes weights straight into a checkpoint bucket; the enclosing
// write transaction provides rollback.
type bucketSink struct{ b *bbolt.Bucket }

func (s bucketSink) weight(addr address.Address) (*big.Int, error) {
	return fixedpoint.Decode(s.b.Get([]byte(addr))), nil
}

func (s bucketSink) setWeight(addr address.Address, w *big.Int) error {
	if err := s.b.Put([]byte(addr), fixedpoint.Encode(w)); err != nil {
		return fmt.Errorf("boltstore: put weight: %w", err)
	}
	return nil
}

// SetWeights applies weight updates to category at timestamp inside a single
// write transaction.
func (s *BoltStore) SetWeights(category string, weights []WeightEntry, timestamp int64) (err error) {
	label := metrics.UnregisteredCategory
	defer func() { metrics.ObserveWeightUpdate(label, err) }()

	if err := validateCategory(category); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if categoryBucket(tx, category) != nil {
			label = category
		}
		cb, err := ensureCategory(tx, category)
		if err != nil {
			return err
		}
		latest := latestSeq(cb)
		latestTs, err := timestampAt(cb)(latest)
		if err != nil {
			return err
		}
		if timestamp < latestTs {
			return fmt.Errorf("%w: latest %d, got %d", ErrStaleTimestamp, latestTs, timestamp)
		}

		wb := cb.Bucket(subWeights)
		target := latest
		if timestamp > latestTs {
			target = latest + 1
			prev := wb.Bucket(seqKey(latest))
			next, err := wb.CreateBucket(seqKey(target))
			if err != nil {
				return fmt.Errorf("boltstore: create checkpoint %d: %w", target, err)
			}
			for _, addr := range members(cb) {
				w := prev.Get([]byte(addr))
				if w == nil {
					w = fixedpoint.Encode(new(big.Int))
				}
				if err := next.Put([]byte(addr), append([]byte(nil), w...)); err != nil {
					return fmt.Errorf("boltstore: copy weight: %w", err)
				}
			}
			if err := cb.Bucket(subTimestamps).Put(seqKey(target), encodeInt64(timestamp)); err != nil {
				return fmt.Errorf("boltstore: put timestamp: %w", err)
			}
		}

		lookup := func(addr address.Address) (*Asset, error) { return getAsset(tx, addr) }
		prevTotal := fixedpoint.Decode(cb.Bucket(subTotals).Get(seqKey(latest)))
		total, err := applyWeights(category, prevTotal, weights, lookup, bucketSink{wb.Bucket(seqKey(target))})
		if err != nil {
			return err
		}
		if err := cb.Bucket(subTotals).Put(seqKey(target), fixedpoint.Encode(total)); err != nil {
			return fmt.Errorf("boltstore: put total: %w", err)
		}
		return nil
	})
}

// locate finds the checkpoint for timestamp. It returns nil bucket when the
// category does not exist.
func locate(tx *bbolt.Tx, category string, timestamp int64) (*bbolt.Bucket, uint64, int64, error) {
	cb := categoryBucket(tx, category)
	if cb == nil {
		return nil, 0, 0, nil
	}
	tsAt := timestampAt(cb)
	seq, err := searchCheckpoint(latestSeq(cb), tsAt, timestamp)
	if err != nil {
		return nil, 0, 0, err
	}
	ts, err := tsAt(seq)
	if err != nil {
		return nil, 0, 0, err
	}
	return cb, seq, ts, nil
}

// GetWeight returns the weight of addr at the checkpoint located by timestamp.
func (s *BoltStore) GetWeight(category string, addr address.Address, timestamp int64) (*WeightAt, error) {
	result := &WeightAt{Weight: new(big.Int)}
	err := s.db.View(func(tx *bbolt.Tx) error {
		cb, seq, ts, err := locate(tx, category, timestamp)
		if err != nil || cb == nil {
			return err
		}
		result.Sequence = seq
		result.Timestamp = ts
		result.Weight = fixedpoint.Decode(cb.Bucket(subWeights).Bucket(seqKey(seq)).Get([]byte(addr)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetTotal returns the recorded total at the checkpoint located by timestamp.
func (s *BoltStore) GetTotal(category string, timestamp int64) (*big.Int, error) {
	total := new(big.Int)
	err := s.db.View(func(tx *bbolt.Tx) error {
		cb, seq, _, err := locate(tx, category, timestamp)
		if err != nil || cb == nil {
			return err
		}
		total = fixedpoint.Decode(cb.Bucket(subTotals).Get(seqKey(seq)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return total, nil
}

// snapshot decodes the weights of checkpoint seq. Superseded checkpoints
// never change, so they are served from and added to the cache.
func (s *BoltStore) snapshot(cb *bbolt.Bucket, category string, seq uint64) map[address.Address]*big.Int {
	key := snapshotKey{category: category, seq: seq}
	if snap, ok := s.cache.Get(key); ok {
		return snap
	}
	snap := make(map[address.Address]*big.Int)
	_ = cb.Bucket(subWeights).Bucket(seqKey(seq)).ForEach(func(k, v []byte) error {
		snap[address.Address(k)] = fixedpoint.Decode(v)
		return nil
	})
	if seq < latestSeq(cb) {
		s.cache.Add(key, snap)
	}
	return snap
}

// WeightsAt returns every asset's weight at the checkpoint located by timestamp.
func (s *BoltStore) WeightsAt(category string, timestamp int64) (map[address.Address]*big.Int, error) {
	result := make(map[address.Address]*big.Int)
	err := s.db.View(func(tx *bbolt.Tx) error {
		cb, seq, _, err := locate(tx, category, timestamp)
		if err != nil || cb == nil {
			return err
		}
		snap := s.snapshot(cb, category, seq)
		for _, addr := range members(cb) {
			if w, ok := snap[addr]; ok {
				result[addr] = new(big.Int).Set(w)
			} else {
				result[addr] = new(big.Int)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AggregatedWeight returns each asset's weight times scale keyed by name.
func (s *BoltStore) AggregatedWeight(category string, timestamp int64, scale *big.Int) (map[string]*big.Int, error) {
	weights, err := s.WeightsAt(category, timestamp)
	if err != nil {
		return nil, err
	}
	assets, err := s.Assets(category)
	if err != nil {
		return nil, err
	}
	return aggregate(assets, weights, scale), nil
}

// LatestSequence returns the sequence of the newest checkpoint.
func (s *BoltStore) LatestSequence(category string) (uint64, error) {
	var seq uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		if cb := categoryBucket(tx, category); cb != nil {
			seq = latestSeq(cb)
		}
		return nil
	})
	return seq, err
}

// Checkpoint returns the snapshot stored at seq.
func (s *BoltStore) Checkpoint(category string, seq uint64) (*Checkpoint, error) {
	var cp *Checkpoint
	err := s.db.View(func(tx *bbolt.Tx) error {
		cb := categoryBucket(tx, category)
		if cb == nil {
			if seq == 0 {
				cp = &Checkpoint{Category: category, Weights: map[address.Address]*big.Int{}, Total: new(big.Int)}
				return nil
			}
			return fmt.Errorf("%w: %q sequence %d", ErrCheckpointNotFound, category, seq)
		}
		ts, err := timestampAt(cb)(seq)
		if err != nil {
			return err
		}
		weights := make(map[address.Address]*big.Int)
		for addr, w := range s.snapshot(cb, category, seq) {
			weights[addr] = new(big.Int).Set(w)
		}
		cp = &Checkpoint{
			Category:  category,
			Sequence:  seq,
			Timestamp: ts,
			Weights:   weights,
			Total:     fixedpoint.Decode(cb.Bucket(subTotals).Get(seqKey(seq))),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cp, nil
}

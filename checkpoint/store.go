package checkpoint

import (
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/bitfsorg/rewardledger-go/address"
	"github.com/bitfsorg/rewardledger-go/metrics"
)

// history is the checkpoint list of one category. Index i of each slice
// belongs to sequence i; index 0 is the genesis snapshot.
type history struct {
	timestamps []int64
	snapshots  []map[address.Address]*big.Int
	totals     []*big.Int
	members    []address.Address
}

func newHistory() *history {
	return &history{
		timestamps: []int64{0},
		snapshots:  []map[address.Address]*big.Int{{}},
		totals:     []*big.Int{new(big.Int)},
	}
}

func (h *history) latest() uint64 { return uint64(len(h.timestamps) - 1) }

func (h *history) locate(ts int64) uint64 {
	seq, _ := searchCheckpoint(h.latest(), func(i uint64) (int64, error) {
		return h.timestamps[i], nil
	}, ts)
	return seq
}

// mapSink stages writes against a copy of a snapshot.
type mapSink map[address.Address]*big.Int

func (m mapSink) weight(addr address.Address) (*big.Int, error) {
	if w, ok := m[addr]; ok {
		return w, nil
	}
	return new(big.Int), nil
}

func (m mapSink) setWeight(addr address.Address, w *big.Int) error {
	m[addr] = w
	return nil
}

// MemStore is an in-memory Store. Each category owns an append-only list of
// snapshots paired with a sorted timestamp slice.
type MemStore struct {
	mu         sync.RWMutex
	assets     map[address.Address]*Asset
	categories map[string]*history
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		assets:     make(map[address.Address]*Asset),
		categories: make(map[string]*history),
	}
}

// RegisterAsset adds an asset under category.
func (s *MemStore) RegisterAsset(category string, addr address.Address, name string) error {
	if err := validateCategory(category); err != nil {
		return err
	}
	if addr.IsZero() {
		return fmt.Errorf("%w: empty address", ErrUnknownAsset)
	}
	if err := validateAssetName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.assets[addr]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAsset, addr)
	}
	s.assets[addr] = &Asset{Address: addr, Category: category, Name: name}
	h := s.history(category)
	h.members = append(h.members, addr)
	return nil
}

// history returns the category history, creating it on first use.
// Callers hold the write lock.
func (s *MemStore) history(category string) *history {
	h, ok := s.categories[category]
	if !ok {
		h = newHistory()
		s.categories[category] = h
	}
	return h
}

// Asset returns the asset registered at addr.
func (s *MemStore) Asset(addr address.Address) (*Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assets[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, addr)
	}
	cp := *a
	return &cp, nil
}

// Assets returns the assets of category in registration order.
func (s *MemStore) Assets(category string) ([]Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assetsLocked(category), nil
}

func (s *MemStore) assetsLocked(category string) []Asset {
	h, ok := s.categories[category]
	if !ok {
		return nil
	}
	out := make([]Asset, 0, len(h.members))
	for _, addr := range h.members {
		out = append(out, *s.assets[addr])
	}
	return out
}

// Categories returns every category with at least one asset, sorted.
func (s *MemStore) Categories() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.categories))
	for c, h := range s.categories {
		if len(h.members) > 0 {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out, nil
}

// SetWeights applies weight updates to category at timestamp. Updates are
// staged on a copy of the target snapshot and only published when the new
// total is exactly one unit.
func (s *MemStore) SetWeights(category string, weights []WeightEntry, timestamp int64) (err error) {
	label := metrics.UnregisteredCategory
	defer func() { metrics.ObserveWeightUpdate(label, err) }()

	if err := validateCategory(category); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.categories[category]
	if ok {
		label = category
	} else {
		h = newHistory()
	}
	latest := h.latest()
	latestTs := h.timestamps[latest]
	if timestamp < latestTs {
		return fmt.Errorf("%w: latest %d, got %d", ErrStaleTimestamp, latestTs, timestamp)
	}

	staged := make(mapSink, len(h.members))
	if timestamp == latestTs {
		for addr, w := range h.snapshots[latest] {
			staged[addr] = w
		}
	} else {
		// A new checkpoint starts as a copy of every member's current weight.
		prev := h.snapshots[latest]
		for _, addr := range h.members {
			if w, ok := prev[addr]; ok {
				staged[addr] = w
			} else {
				staged[addr] = new(big.Int)
			}
		}
	}

	lookup := func(addr address.Address) (*Asset, error) {
		return s.assets[addr], nil
	}
	total, err := applyWeights(category, h.totals[latest], weights, lookup, staged)
	if err != nil {
		return err
	}

	if timestamp == latestTs {
		h.snapshots[latest] = staged
		h.totals[latest] = total
	} else {
		h.snapshots = append(h.snapshots, staged)
		h.totals = append(h.totals, total)
		h.timestamps = append(h.timestamps, timestamp)
	}
	s.categories[category] = h
	return nil
}

// GetWeight returns the weight of addr at the checkpoint located by timestamp.
func (s *MemStore) GetWeight(category string, addr address.Address, timestamp int64) (*WeightAt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.categories[category]
	if !ok {
		return &WeightAt{Weight: new(big.Int)}, nil
	}
	seq := h.locate(timestamp)
	w, ok := h.snapshots[seq][addr]
	if !ok {
		w = new(big.Int)
	}
	return &WeightAt{
		Sequence:  seq,
		Weight:    new(big.Int).Set(w),
		Timestamp: h.timestamps[seq],
	}, nil
}

// GetTotal returns the recorded total at the checkpoint located by timestamp.
func (s *MemStore) GetTotal(category string, timestamp int64) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.categories[category]
	if !ok {
		return new(big.Int), nil
	}
	return new(big.Int).Set(h.totals[h.locate(timestamp)]), nil
}

// WeightsAt returns every asset's weight at the checkpoint located by timestamp.
func (s *MemStore) WeightsAt(category string, timestamp int64) (map[address.Address]*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[address.Address]*big.Int)
	h, ok := s.categories[category]
	if !ok {
		return result, nil
	}
	snap := h.snapshots[h.locate(timestamp)]
	for _, addr := range h.members {
		if w, ok := snap[addr]; ok {
			result[addr] = new(big.Int).Set(w)
		} else {
			result[addr] = new(big.Int)
		}
	}
	return result, nil
}

// AggregatedWeight returns each asset's weight times scale keyed by name.
func (s *MemStore) AggregatedWeight(category string, timestamp int64, scale *big.Int) (map[string]*big.Int, error) {
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
func (s *MemStore) LatestSequence(category string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.categories[category]
	if !ok {
		return 0, nil
	}
	return h.latest(), nil
}

// Checkpoint returns a copy of the snapshot stored at seq.
func (s *MemStore) Checkpoint(category string, seq uint64) (*Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.categories[category]
	if !ok {
		h = newHistory()
	}
	if seq > h.latest() {
		return nil, fmt.Errorf("%w: %q sequence %d", ErrCheckpointNotFound, category, seq)
	}
	weights := make(map[address.Address]*big.Int, len(h.snapshots[seq]))
	for addr, w := range h.snapshots[seq] {
		weights[addr] = new(big.Int).Set(w)
	}
	return &Checkpoint{
		Category:  category,
		Sequence:  seq,
		Timestamp: h.timestamps[seq],
		Weights:   weights,
		Total:     new(big.Int).Set(h.totals[seq]),
	}, nil
}

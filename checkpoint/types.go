package checkpoint

import (
	"math/big"

	"github.com/bitfsorg/rewardledger-go/address"
)

// TotalKey is the key under which AggregatedWeight reports the category sum.
const TotalKey = "total"

// Asset is a registered recipient. Address and Category never change after
// registration.
type Asset struct {
	Address  address.Address
	Category string
	Name     string
}

// WeightEntry is one (address, weight) pair of a weight update.
type WeightEntry struct {
	Address address.Address
	Weight  *big.Int
}

// WeightAt is the result of a point-in-time weight lookup.
type WeightAt struct {
	Sequence  uint64   // checkpoint that answered the query
	Weight    *big.Int // zero when the address has no weight there
	Timestamp int64    // timestamp recorded for that checkpoint
}

// Checkpoint is a full weight snapshot of one category.
type Checkpoint struct {
	Category  string
	Sequence  uint64
	Timestamp int64
	Weights   map[address.Address]*big.Int
	Total     *big.Int
}

// Store is the weight registry: assets grouped by category plus the
// checkpointed weight history of each category.
type Store interface {
	// RegisterAsset adds an asset under category.
	RegisterAsset(category string, addr address.Address, name string) error

	// Asset returns the asset registered at addr.
	Asset(addr address.Address) (*Asset, error)

	// Assets returns the assets of category in registration order.
	Assets(category string) ([]Asset, error)

	// Categories returns every category with at least one asset, sorted.
	Categories() ([]string, error)

	// SetWeights applies weight updates to category at timestamp. The call
	// is all-or-nothing.
	SetWeights(category string, weights []WeightEntry, timestamp int64) error

	// GetWeight returns the weight of addr at the latest checkpoint whose
	// timestamp is not after timestamp.
	GetWeight(category string, addr address.Address, timestamp int64) (*WeightAt, error)

	// GetTotal returns the recorded total at the located checkpoint.
	GetTotal(category string, timestamp int64) (*big.Int, error)

	// WeightsAt returns the weight of every asset of category at the located
	// checkpoint.
	WeightsAt(category string, timestamp int64) (map[address.Address]*big.Int, error)

	// AggregatedWeight returns each asset's weight multiplied by scale, keyed
	// by asset name, plus the sum under TotalKey.
	AggregatedWeight(category string, timestamp int64, scale *big.Int) (map[string]*big.Int, error)

	// LatestSequence returns the sequence of the newest checkpoint.
	LatestSequence(category string) (uint64, error)

	// Checkpoint returns the snapshot stored at seq.
	Checkpoint(category string, seq uint64) (*Checkpoint, error)
}

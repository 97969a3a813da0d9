package checkpoint

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/bitfsorg/rewardledger-go/address"
	"github.com/bitfsorg/rewardledger-go/fixedpoint"
)

// weightSink is the mutable view of one checkpoint that applyWeights writes
// through. Implementations either stage changes in memory or inside a bbolt
// write transaction; both discard everything when applyWeights fails.
type weightSink interface {
	weight(addr address.Address) (*big.Int, error)
	setWeight(addr address.Address, w *big.Int) error
}

// applyWeights applies entries in order and returns the new category total.
// Entries naming an address twice are applied sequentially.
func applyWeights(category string, total *big.Int, entries []WeightEntry,
	lookup func(address.Address) (*Asset, error), sink weightSink) (*big.Int, error) {

	total = new(big.Int).Set(total)
	for _, e := range entries {
		if e.Weight == nil || e.Weight.Sign() < 0 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidWeight, e.Address)
		}
		asset, err := lookup(e.Address)
		if err != nil {
			return nil, err
		}
		if asset == nil || asset.Category != category {
			return nil, fmt.Errorf("%w: %s in %q", ErrUnknownAsset, e.Address, category)
		}
		prev, err := sink.weight(e.Address)
		if err != nil {
			return nil, err
		}
		total.Sub(total, prev)
		total.Add(total, e.Weight)
		if err := sink.setWeight(e.Address, new(big.Int).Set(e.Weight)); err != nil {
			return nil, err
		}
	}
	if !fixedpoint.IsUnit(total) {
		return nil, fmt.Errorf("%w: got %s", ErrWeightSum, fixedpoint.Format(total))
	}
	return total, nil
}

func validateCategory(category string) error {
	if strings.TrimSpace(category) == "" {
		return ErrInvalidCategory
	}
	return nil
}

// validateAssetName rejects names AggregatedWeight cannot report apart from
// the category sum.
func validateAssetName(name string) error {
	if strings.TrimSpace(name) == "" || name == TotalKey {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	return nil
}

// aggregate multiplies each weight by scale and keys the result by asset
// name. A nil scale reports the raw weights.
func aggregate(assets []Asset, weights map[address.Address]*big.Int, scale *big.Int) map[string]*big.Int {
	result := make(map[string]*big.Int, len(assets)+1)
	total := new(big.Int)
	for _, a := range assets {
		w, ok := weights[a.Address]
		if !ok {
			w = new(big.Int)
		}
		v := new(big.Int).Set(w)
		if scale != nil {
			v = fixedpoint.Mul(w, scale)
		}
		result[a.Name] = v
		total.Add(total, v)
	}
	result[TotalKey] = total
	return result
}

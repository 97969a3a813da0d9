// Package accrual advances per-asset reward indexes. An index grows by the
// emission an asset earned per unit of working supply; a participant's
// reward over an interval is its principal times the index delta.
package accrual

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/bitfsorg/rewardledger-go/address"
	"github.com/bitfsorg/rewardledger-go/checkpoint"
	"github.com/bitfsorg/rewardledger-go/fixedpoint"
)

// EmissionSource reports how much a category earns per day.
type EmissionSource interface {
	DailyEmission(ctx context.Context, category string, timestamp int64) (*big.Int, error)
}

// SupplySource reports the total working supply of an asset.
type SupplySource interface {
	Total(asset address.Address) (*big.Int, error)
}

// Config wires an Engine.
type Config struct {
	Weights  checkpoint.Store
	Emission EmissionSource
	Indexes  IndexStore
	Supply   SupplySource // optional; required only by AdvanceAssetIndex
	Logger   *zap.Logger
}

// Validate checks required dependencies and fills defaults.
func (c *Config) Validate() error {
	if c.Weights == nil {
		return fmt.Errorf("%w: weight store", ErrNilParam)
	}
	if c.Emission == nil {
		return fmt.Errorf("%w: emission source", ErrNilParam)
	}
	if c.Indexes == nil {
		return fmt.Errorf("%w: index store", ErrNilParam)
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return nil
}

// Engine is the accrual engine.
type Engine struct {
	weights  checkpoint.Store
	emission EmissionSource
	indexes  IndexStore
	supply   SupplySource
	log      *zap.Logger
}

// NewEngine creates an Engine from cfg.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		weights:  cfg.Weights,
		emission: cfg.Emission,
		indexes:  cfg.Indexes,
		supply:   cfg.Supply,
		log:      cfg.Logger.Named("accrual"),
	}, nil
}

// Indexes returns the underlying index store.
func (e *Engine) Indexes() IndexStore { return e.indexes }

// InitIndex starts accrual for asset at timestamp without crediting anything
// for the time before it.
func (e *Engine) InitIndex(asset address.Address, timestamp int64) error {
	cur, err := e.indexes.AssetIndex(asset)
	if err != nil {
		return err
	}
	return e.indexes.SetAssetIndex(asset, cur.Index, timestamp)
}

// AdvanceIndex computes the index of asset at referenceTimestamp:
//
//	rate     = dailyEmission(category) * weight / 86400
//	newIndex = index + rate * elapsed / totalSupply
//
// A zero totalSupply adds nothing. An asset never touched before only has
// its timestamp started. With persist the new index and timestamp are
// stored; otherwise the call is a pure read.
func (e *Engine) AdvanceIndex(ctx context.Context, asset address.Address, totalSupply *big.Int, referenceTimestamp int64, persist bool) (*big.Int, error) {
	if totalSupply == nil {
		return nil, fmt.Errorf("%w: total supply", ErrNilParam)
	}
	if totalSupply.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNegativeSupply, totalSupply)
	}

	a, err := e.weights.Asset(asset)
	if err != nil {
		return nil, err
	}
	cur, err := e.indexes.AssetIndex(asset)
	if err != nil {
		return nil, fmt.Errorf("accrual: read index: %w", err)
	}

	elapsed := referenceTimestamp - cur.LastUpdate
	if elapsed <= 0 {
		return cur.Index, nil
	}

	newIndex := new(big.Int).Set(cur.Index)
	if cur.LastUpdate != 0 {
		accrued, err := e.accruedSince(ctx, a, elapsed, referenceTimestamp)
		if err != nil {
			return nil, err
		}
		newIndex.Add(newIndex, fixedpoint.Div(accrued, totalSupply))
	}

	if persist {
		if err := e.indexes.SetAssetIndex(asset, newIndex, referenceTimestamp); err != nil {
			return nil, fmt.Errorf("accrual: store index: %w", err)
		}
		e.log.Debug("index advanced",
			zap.Stringer("asset", asset),
			zap.String("index", newIndex.String()),
			zap.Int64("elapsed", elapsed),
			zap.Int64("timestamp", referenceTimestamp),
		)
	}
	return newIndex, nil
}

// accruedSince returns the emission asset earned over elapsed seconds,
// priced at its weight and category emission at ts.
func (e *Engine) accruedSince(ctx context.Context, a *checkpoint.Asset, elapsed, ts int64) (*big.Int, error) {
	w, err := e.weights.GetWeight(a.Category, a.Address, ts)
	if err != nil {
		return nil, fmt.Errorf("accrual: read weight: %w", err)
	}
	daily, err := e.emission.DailyEmission(ctx, a.Category, ts)
	if err != nil {
		return nil, fmt.Errorf("accrual: daily emission for %q: %w", a.Category, err)
	}
	perDay := fixedpoint.Mul(daily, w.Weight)
	return fixedpoint.MulDiv(perDay, big.NewInt(elapsed), big.NewInt(fixedpoint.SecondsPerDay)), nil
}

// AdvanceAssetIndex is AdvanceIndex with the asset's working supply as the
// denominator.
func (e *Engine) AdvanceAssetIndex(ctx context.Context, asset address.Address, referenceTimestamp int64, persist bool) (*big.Int, error) {
	if e.supply == nil {
		return nil, fmt.Errorf("%w: supply source", ErrNilParam)
	}
	total, err := e.supply.Total(asset)
	if err != nil {
		return nil, fmt.Errorf("accrual: read supply: %w", err)
	}
	return e.AdvanceIndex(ctx, asset, total, referenceTimestamp, persist)
}

// AccrueUser settles the reward user earned on asset since its last
// settlement, given the balance it held over that interval. The settled
// amount is added to the user's accrued rewards and returned.
func (e *Engine) AccrueUser(ctx context.Context, asset, user address.Address, balance *big.Int, referenceTimestamp int64) (*big.Int, error) {
	if balance == nil {
		return nil, fmt.Errorf("%w: balance", ErrNilParam)
	}
	assetIndex, err := e.AdvanceAssetIndex(ctx, asset, referenceTimestamp, true)
	if err != nil {
		return nil, err
	}
	userIndex, err := e.indexes.UserIndex(asset, user)
	if err != nil {
		return nil, fmt.Errorf("accrual: read user index: %w", err)
	}
	reward := Reward(balance, assetIndex, userIndex)
	if err := e.indexes.SetUserIndex(asset, user, assetIndex); err != nil {
		return nil, fmt.Errorf("accrual: store user index: %w", err)
	}
	if reward.Sign() > 0 {
		if err := e.indexes.AddAccrued(user, reward); err != nil {
			return nil, fmt.Errorf("accrual: store accrued: %w", err)
		}
	}
	return reward, nil
}

// Reward returns principal * (newIndex - oldIndex) in fixed point,
// truncated toward zero so rounding never pays out more than was earned.
func Reward(principal, newIndex, oldIndex *big.Int) *big.Int {
	delta := new(big.Int).Sub(newIndex, oldIndex)
	return fixedpoint.Mul(principal, delta)
}

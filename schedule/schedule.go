// Package schedule is a static emission authority: a constant daily
// emission split across categories by fixed shares, counted in whole days
// from a start timestamp.
package schedule

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/jonboulle/clockwork"

	"github.com/bitfsorg/rewardledger-go/checkpoint"
	"github.com/bitfsorg/rewardledger-go/distribution"
	"github.com/bitfsorg/rewardledger-go/fixedpoint"
)

// DefaultRewardCategory is the category whose assets earn user rewards.
const DefaultRewardCategory = "assets"

// Config configures a Schedule.
type Config struct {
	Start          int64               // unix seconds; day 0 begins here
	DailyEmission  *big.Int            // fixed point
	Shares         map[string]*big.Int // category -> fixed-point fraction
	RewardCategory string              // defaults to DefaultRewardCategory
	Weights        checkpoint.Store
	Clock          clockwork.Clock // defaults to the real clock
}

// Validate checks cfg and fills defaults.
func (c *Config) Validate() error {
	if c.DailyEmission == nil {
		return fmt.Errorf("%w: daily emission", ErrNilParam)
	}
	if c.DailyEmission.Sign() < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidEmission, c.DailyEmission)
	}
	if c.Weights == nil {
		return fmt.Errorf("%w: weight store", ErrNilParam)
	}
	sum := new(big.Int)
	for cat, s := range c.Shares {
		if s == nil || s.Sign() < 0 {
			return fmt.Errorf("%w: %q", ErrInvalidShares, cat)
		}
		sum.Add(sum, s)
	}
	if sum.Cmp(fixedpoint.Unit()) > 0 {
		return fmt.Errorf("%w: shares sum to %s", ErrInvalidShares, fixedpoint.Format(sum))
	}
	if c.RewardCategory == "" {
		c.RewardCategory = DefaultRewardCategory
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return nil
}

// Schedule implements distribution.EmissionAuthority.
type Schedule struct {
	start          int64
	daily          *big.Int
	shares         map[string]*big.Int
	rewardCategory string
	weights        checkpoint.Store
	clock          clockwork.Clock
}

// Compile-time interface check.
var _ distribution.EmissionAuthority = (*Schedule)(nil)

// New creates a Schedule from cfg.
func New(cfg Config) (*Schedule, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	shares := make(map[string]*big.Int, len(cfg.Shares))
	for cat, s := range cfg.Shares {
		shares[cat] = new(big.Int).Set(s)
	}
	return &Schedule{
		start:          cfg.Start,
		daily:          new(big.Int).Set(cfg.DailyEmission),
		shares:         shares,
		rewardCategory: cfg.RewardCategory,
		weights:        cfg.Weights,
		clock:          cfg.Clock,
	}, nil
}

// dayAt returns the day containing ts, or -1 before the start.
func (s *Schedule) dayAt(ts int64) int64 {
	if ts < s.start {
		return -1
	}
	return (ts - s.start) / fixedpoint.SecondsPerDay
}

// Day returns the current day, zero before the start.
func (s *Schedule) Day(context.Context) (int64, error) {
	d := s.dayAt(s.clock.Now().Unix())
	if d < 0 {
		return 0, nil
	}
	return d, nil
}

// StartTimestamp returns the unix time day 0 begins.
func (s *Schedule) StartTimestamp(context.Context) (int64, error) {
	return s.start, nil
}

// TokenDistributionPerDay returns the emission of day.
func (s *Schedule) TokenDistributionPerDay(_ context.Context, day int64) (*big.Int, error) {
	if day < 0 {
		return new(big.Int), nil
	}
	return new(big.Int).Set(s.daily), nil
}

// DistributionInfo reports the emission of every day completed since
// lastDay. It is invalid until the current day has moved past lastDay.
func (s *Schedule) DistributionInfo(_ context.Context, lastDay int64) (*distribution.DistributionInfo, error) {
	today := s.dayAt(s.clock.Now().Unix())
	if today <= lastDay {
		return &distribution.DistributionInfo{Amount: new(big.Int), Day: lastDay}, nil
	}
	days := big.NewInt(today - lastDay)
	return &distribution.DistributionInfo{
		IsValid: true,
		Amount:  new(big.Int).Mul(s.daily, days),
		Day:     today,
	}, nil
}

// DailyEmission returns the share of the daily emission earned by category
// at timestamp. Categories without a share and times before the start earn
// nothing.
func (s *Schedule) DailyEmission(_ context.Context, category string, timestamp int64) (*big.Int, error) {
	share, ok := s.shares[category]
	if !ok || timestamp < s.start {
		return new(big.Int), nil
	}
	return fixedpoint.Mul(s.daily, share), nil
}

// AssetDailyRewards splits the reward category's daily emission across its
// assets by current weight, keyed by asset name plus checkpoint.TotalKey.
func (s *Schedule) AssetDailyRewards(ctx context.Context) (map[string]*big.Int, error) {
	now := s.clock.Now().Unix()
	emission, err := s.DailyEmission(ctx, s.rewardCategory, now)
	if err != nil {
		return nil, err
	}
	out, err := s.weights.AggregatedWeight(s.rewardCategory, now, emission)
	if err != nil {
		return nil, fmt.Errorf("schedule: aggregate weights: %w", err)
	}
	return out, nil
}

// Categories returns the categories with a share, sorted.
func (s *Schedule) Categories() []string {
	out := make([]string, 0, len(s.shares))
	for cat := range s.shares {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

package distribution

import (
	"context"
	"math/big"
)

// MockAuthority is a test double for EmissionAuthority.
// All function fields must be set before the corresponding method is called.
type MockAuthority struct {
	DistributionInfoFn        func(ctx context.Context, lastDay int64) (*DistributionInfo, error)
	DailyEmissionFn           func(ctx context.Context, category string, timestamp int64) (*big.Int, error)
	AssetDailyRewardsFn       func(ctx context.Context) (map[string]*big.Int, error)
	TokenDistributionPerDayFn func(ctx context.Context, day int64) (*big.Int, error)
	DayFn                     func(ctx context.Context) (int64, error)
	StartTimestampFn          func(ctx context.Context) (int64, error)
}

// Compile-time interface check.
var _ EmissionAuthority = (*MockAuthority)(nil)

func (m *MockAuthority) DistributionInfo(ctx context.Context, lastDay int64) (*DistributionInfo, error) {
	return m.DistributionInfoFn(ctx, lastDay)
}
func (m *MockAuthority) DailyEmission(ctx context.Context, category string, timestamp int64) (*big.Int, error) {
	return m.DailyEmissionFn(ctx, category, timestamp)
}
func (m *MockAuthority) AssetDailyRewards(ctx context.Context) (map[string]*big.Int, error) {
	return m.AssetDailyRewardsFn(ctx)
}
func (m *MockAuthority) TokenDistributionPerDay(ctx context.Context, day int64) (*big.Int, error) {
	return m.TokenDistributionPerDayFn(ctx, day)
}
func (m *MockAuthority) Day(ctx context.Context) (int64, error) {
	return m.DayFn(ctx)
}
func (m *MockAuthority) StartTimestamp(ctx context.Context) (int64, error) {
	return m.StartTimestampFn(ctx)
}

package distribution

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bitfsorg/rewardledger-go/accrual"
	"github.com/bitfsorg/rewardledger-go/address"
	"github.com/bitfsorg/rewardledger-go/checkpoint"
	"github.com/bitfsorg/rewardledger-go/errkind"
	"github.com/bitfsorg/rewardledger-go/fixedpoint"
	"github.com/bitfsorg/rewardledger-go/token"
	"github.com/bitfsorg/rewardledger-go/workingbalance"
)

const t0 = int64(1_700_000_000)

var (
	governance  = address.FromSeed(0x60)
	distributor = address.FromSeed(0xD1)
	usdc        = address.FromSeed(0x01)
	pool        = address.FromSeed(0x02)
	treasury    = address.FromSeed(0x03)
	alice       = address.FromSeed(0x11)
	bob         = address.FromSeed(0x12)
	carol       = address.FromSeed(0x13)
)

func units(n int64) *big.Int { return fixedpoint.FromInt(n) }

// dailyAuthority mints perDay for every whole day since t0 and pays each
// category a fixed daily emission.
func dailyAuthority(clock clockwork.Clock, perDay *big.Int, daily map[string]*big.Int) *MockAuthority {
	return &MockAuthority{
		DistributionInfoFn: func(_ context.Context, lastDay int64) (*DistributionInfo, error) {
			today := (clock.Now().Unix() - t0) / fixedpoint.SecondsPerDay
			if today <= lastDay {
				return &DistributionInfo{Amount: new(big.Int), Day: lastDay}, nil
			}
			return &DistributionInfo{
				IsValid: true,
				Amount:  new(big.Int).Mul(perDay, big.NewInt(today-lastDay)),
				Day:     today,
			}, nil
		},
		DailyEmissionFn: func(_ context.Context, category string, _ int64) (*big.Int, error) {
			if v, ok := daily[category]; ok {
				return v, nil
			}
			return new(big.Int), nil
		},
		AssetDailyRewardsFn: func(context.Context) (map[string]*big.Int, error) {
			return map[string]*big.Int{"usdc": daily["assets"], checkpoint.TotalKey: daily["assets"]}, nil
		},
		TokenDistributionPerDayFn: func(context.Context, int64) (*big.Int, error) { return perDay, nil },
		DayFn: func(context.Context) (int64, error) {
			return (clock.Now().Unix() - t0) / fixedpoint.SecondsPerDay, nil
		},
		StartTimestampFn: func(context.Context) (int64, error) { return t0, nil },
	}
}

type harness struct {
	engine   *Engine
	clock    *clockwork.FakeClock
	weights  *checkpoint.MemStore
	indexes  *accrual.MemIndexStore
	balances *workingbalance.Ledger
	token    *token.MemLedger
	state    *MemState
	events   *EventLog
	logs     *observer.ObservedLogs
	auth     *MockAuthority
}

type option func(*Config)

func withToken(l TokenLedger) option { return func(c *Config) { c.Token = l } }

func withAuthority(a EmissionAuthority) option { return func(c *Config) { c.Authority = a } }

func newHarness(t *testing.T, opts ...option) *harness {
	t.Helper()
	h := &harness{
		clock:    clockwork.NewFakeClockAt(time.Unix(t0, 0)),
		weights:  checkpoint.NewMemStore(),
		indexes:  accrual.NewMemIndexStore(),
		balances: workingbalance.NewLedger(workingbalance.NewMemStore()),
		token:    token.NewMemLedger(distributor),
		state:    NewMemState(0),
		events:   &EventLog{},
	}
	h.auth = dailyAuthority(h.clock, units(1000), map[string]*big.Int{
		"assets":      units(600),
		"worker-pool": units(300),
		"treasury":    units(100),
	})

	for _, a := range []struct {
		category string
		addr     address.Address
		name     string
	}{
		{"assets", usdc, "usdc"},
		{"worker-pool", pool, "pool"},
		{"treasury", treasury, "treasury"},
	} {
		require.NoError(t, h.weights.RegisterAsset(a.category, a.addr, a.name))
		require.NoError(t, h.weights.SetWeights(a.category, []checkpoint.WeightEntry{
			{Address: a.addr, Weight: fixedpoint.Unit()},
		}, t0))
	}

	acc, err := accrual.NewEngine(accrual.Config{
		Weights:  h.weights,
		Emission: h.auth,
		Indexes:  h.indexes,
		Supply:   h.balances,
	})
	require.NoError(t, err)
	require.NoError(t, acc.InitIndex(pool, t0))
	require.NoError(t, acc.InitIndex(treasury, t0))

	core, logs := observer.New(zapcore.InfoLevel)
	h.logs = logs

	cfg := Config{
		Accrual:    acc,
		Weights:    h.weights,
		Balances:   h.balances,
		Authority:  h.auth,
		Token:      h.token,
		State:      h.state,
		Events:     h.events,
		Clock:      h.clock,
		Logger:     zap.New(core),
		Governance: governance,
		Treasury:   treasury,
		PassThrough: []PassThrough{
			{Address: pool, Kind: KindWorkerPool, Holders: HolderList{
				{Holder: alice, Balance: big.NewInt(50)},
				{Holder: bob, Balance: big.NewInt(50)},
			}},
			{Address: treasury, Kind: KindTreasury},
		},
	}
	for _, o := range opts {
		o(&cfg)
	}
	h.engine, err = NewEngine(cfg)
	require.NoError(t, err)
	return h
}

func (h *harness) balanceOf(t *testing.T, a address.Address) string {
	t.Helper()
	b, err := h.token.BalanceOf(a)
	require.NoError(t, err)
	return fixedpoint.Format(b)
}

// -----------------------------------------------------------------------------
// Config
// -----------------------------------------------------------------------------

func TestConfigValidate(t *testing.T) {
	h := newHarness(t)
	base := func() Config {
		return Config{
			Accrual:   h.engine.accrual,
			Weights:   h.weights,
			Balances:  h.balances,
			Authority: h.auth,
			Token:     h.token,
			State:     h.state,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		err    error
	}{
		{"nil accrual", func(c *Config) { c.Accrual = nil }, ErrNilParam},
		{"nil weights", func(c *Config) { c.Weights = nil }, ErrNilParam},
		{"nil balances", func(c *Config) { c.Balances = nil }, ErrNilParam},
		{"nil authority", func(c *Config) { c.Authority = nil }, ErrNilParam},
		{"nil token", func(c *Config) { c.Token = nil }, ErrNilParam},
		{"nil state", func(c *Config) { c.State = nil }, ErrNilParam},
		{"unknown kind", func(c *Config) {
			c.PassThrough = []PassThrough{{Address: pool, Kind: "staking"}}
		}, ErrUnknownRecipientKind},
		{"pool without holders", func(c *Config) {
			c.PassThrough = []PassThrough{{Address: pool, Kind: KindWorkerPool}}
		}, ErrNilParam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			_, err := NewEngine(cfg)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	cfg := base()
	require.NoError(t, cfg.Validate())
	assert.NotNil(t, cfg.Events)
	assert.NotNil(t, cfg.Clock)
	assert.NotNil(t, cfg.Logger)
}

// -----------------------------------------------------------------------------
// Tick
// -----------------------------------------------------------------------------

func TestTick_MintsAndDistributes(t *testing.T) {
	h := newHarness(t)
	h.clock.Advance(24 * time.Hour)

	res, err := h.engine.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Minted)
	assert.Equal(t, int64(1), res.Day)
	assert.Equal(t, int64(1), res.Days)
	assert.Equal(t, "1000", fixedpoint.Format(res.Amount))
	assert.NotEmpty(t, res.RunID)
	require.Len(t, res.Payouts, 3)

	assert.Equal(t, "150", h.balanceOf(t, alice))
	assert.Equal(t, "150", h.balanceOf(t, bob))
	assert.Equal(t, "100", h.balanceOf(t, treasury))
	assert.Equal(t, "600", h.balanceOf(t, distributor))

	day, err := h.engine.LastDistributedDay()
	require.NoError(t, err)
	assert.Equal(t, int64(1), day)

	idx, err := h.engine.AssetIndex(pool)
	require.NoError(t, err)
	assert.Equal(t, "300", fixedpoint.Format(idx.Index))
	assert.Equal(t, t0+fixedpoint.SecondsPerDay, idx.LastUpdate)

	minted := h.events.ByTopic(MintedTopic)
	require.Len(t, minted, 1)
	m := minted[0].(Minted)
	assert.Equal(t, int64(1), m.Day)
	assert.Equal(t, int64(1), m.Days)
	assert.Equal(t, "1000", fixedpoint.Format(m.Amount))

	dists := h.events.ByTopic(DistributionTopic)
	require.Len(t, dists, 3)
	last := dists[2].(Distribution)
	assert.Equal(t, KindTreasury, last.Recipient)
	assert.Equal(t, treasury, last.User)
	assert.Equal(t, "100", fixedpoint.Format(last.Amount))

	entries := h.logs.FilterMessage("minted").All()
	require.Len(t, entries, 1)
	assert.Equal(t, res.RunID, entries[0].ContextMap()["run_id"])
}

func TestTick_SameDayDoesNotMintTwice(t *testing.T) {
	h := newHarness(t)
	h.clock.Advance(24 * time.Hour)
	ctx := context.Background()

	_, err := h.engine.Tick(ctx)
	require.NoError(t, err)

	res, err := h.engine.Tick(ctx)
	require.NoError(t, err)
	assert.False(t, res.Minted)

	supply, err := h.token.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, "1000", fixedpoint.Format(supply))
	assert.Len(t, h.events.ByTopic(MintedTopic), 1)
}

func TestTick_CatchesUpSkippedDays(t *testing.T) {
	h := newHarness(t)
	h.clock.Advance(3 * 24 * time.Hour)

	res, err := h.engine.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Day)
	assert.Equal(t, int64(3), res.Days)
	assert.Equal(t, "3000", fixedpoint.Format(res.Amount))
	assert.Equal(t, "450", h.balanceOf(t, alice))
	assert.Equal(t, "300", h.balanceOf(t, treasury))
}

func TestTick_Noop(t *testing.T) {
	h := newHarness(t)

	res, err := h.engine.Tick(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Minted)
	assert.Empty(t, h.events.Events())

	supply, err := h.token.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, 0, supply.Sign())
}

func TestTick_ZeroAmountIsNoop(t *testing.T) {
	auth := *dailyAuthority(clockwork.NewFakeClock(), units(1), nil)
	auth.DistributionInfoFn = func(context.Context, int64) (*DistributionInfo, error) {
		return &DistributionInfo{IsValid: true, Amount: new(big.Int), Day: 1}, nil
	}
	h := newHarness(t, withAuthority(&auth))

	res, err := h.engine.Tick(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Minted)
	assert.Empty(t, h.events.Events())
}

func TestTick_DayMustAdvance(t *testing.T) {
	auth := *dailyAuthority(clockwork.NewFakeClock(), units(1), nil)
	auth.DistributionInfoFn = func(_ context.Context, lastDay int64) (*DistributionInfo, error) {
		return &DistributionInfo{IsValid: true, Amount: units(1), Day: lastDay}, nil
	}
	h := newHarness(t, withAuthority(&auth))

	_, err := h.engine.Tick(context.Background())
	require.ErrorIs(t, err, ErrDayNotAdvanced)
	assert.ErrorIs(t, err, errkind.ErrInvariantViolation)
}

func TestTick_ExceedsMintAborts(t *testing.T) {
	h := newHarness(t)
	// The authority mints 100 while pass-through recipients accrue 400.
	auth := *h.auth
	auth.DistributionInfoFn = func(context.Context, int64) (*DistributionInfo, error) {
		return &DistributionInfo{IsValid: true, Amount: units(100), Day: 1}, nil
	}
	h.engine.authority = &auth
	h.clock.Advance(24 * time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := h.engine.Tick(ctx)
		require.ErrorIs(t, err, ErrDistributionExceedsMint)
		assert.ErrorIs(t, err, errkind.ErrInvariantViolation)
	}

	// Nothing was minted, transferred or stored by any attempt.
	supply, err := h.token.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, 0, supply.Sign())
	assert.Equal(t, "0", h.balanceOf(t, alice))
	assert.Empty(t, h.events.Events())

	day, err := h.engine.LastDistributedDay()
	require.NoError(t, err)
	assert.Equal(t, int64(0), day)

	idx, err := h.engine.AssetIndex(pool)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Index.Sign())
	assert.Equal(t, t0, idx.LastUpdate)

	assert.Equal(t, 3, h.logs.FilterMessage("tick failed").Len())
}

func TestTick_UnregisteredRecipientFailsBeforeMint(t *testing.T) {
	stranger := address.FromSeed(0x7E)
	h := newHarness(t, func(c *Config) {
		c.PassThrough = append(c.PassThrough, PassThrough{Address: stranger, Kind: KindTreasury})
	})
	h.clock.Advance(24 * time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := h.engine.Tick(ctx)
		require.ErrorIs(t, err, ErrRecipientNotRegistered)
		assert.ErrorIs(t, err, errkind.ErrValidation)
	}
	assert.ErrorIs(t, h.engine.CheckRecipients(), ErrRecipientNotRegistered)

	assert.Equal(t, "0", h.balanceOf(t, distributor))
	day, err := h.engine.LastDistributedDay()
	require.NoError(t, err)
	assert.Equal(t, int64(0), day)

	require.NoError(t, h.weights.RegisterAsset("treasury", stranger, "reserve"))
	require.NoError(t, h.engine.CheckRecipients())
}

type mockToken struct {
	mock.Mock
}

func (m *mockToken) Mint(ctx context.Context, amount *big.Int) error {
	return m.Called(ctx, amount).Error(0)
}

func (m *mockToken) Transfer(ctx context.Context, to address.Address, amount *big.Int) error {
	return m.Called(ctx, to, amount).Error(0)
}

func TestTick_TransferFailureDoesNotMintAgain(t *testing.T) {
	tok := &mockToken{}
	tok.On("Mint", mock.Anything, mock.Anything).Return(nil)
	tok.On("Transfer", mock.Anything, alice, mock.Anything).Return(nil)
	tok.On("Transfer", mock.Anything, bob, mock.Anything).Return(errors.New("ledger offline")).Once()
	h := newHarness(t, withToken(tok))
	h.clock.Advance(24 * time.Hour)
	ctx := context.Background()

	_, err := h.engine.Tick(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger offline")
	assert.Equal(t, 1, h.logs.FilterMessage("payouts left with distributor").Len())

	// The day and the pool index are stored with the mint.
	day, err := h.engine.LastDistributedDay()
	require.NoError(t, err)
	assert.Equal(t, int64(1), day)
	idx, err := h.engine.AssetIndex(pool)
	require.NoError(t, err)
	assert.Equal(t, "300", fixedpoint.Format(idx.Index))

	res, err := h.engine.Tick(ctx)
	require.NoError(t, err)
	assert.False(t, res.Minted)

	tok.AssertNumberOfCalls(t, "Mint", 1)
	tok.AssertNumberOfCalls(t, "Transfer", 2)
	tok.AssertNotCalled(t, "Transfer", mock.Anything, treasury, mock.Anything)
	assert.Len(t, h.events.ByTopic(MintedTopic), 1)
	assert.Len(t, h.events.ByTopic(DistributionTopic), 1)
}

func TestTick_MintFailureRestoresState(t *testing.T) {
	tok := &mockToken{}
	tok.On("Mint", mock.Anything, mock.Anything).Return(errors.New("mint refused")).Once()
	tok.On("Mint", mock.Anything, mock.Anything).Return(nil)
	tok.On("Transfer", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	h := newHarness(t, withToken(tok))
	h.clock.Advance(24 * time.Hour)
	ctx := context.Background()

	_, err := h.engine.Tick(ctx)
	require.Error(t, err)
	assert.Empty(t, h.events.Events())
	tok.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything)

	day, err := h.engine.LastDistributedDay()
	require.NoError(t, err)
	assert.Equal(t, int64(0), day)
	idx, err := h.engine.AssetIndex(pool)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Index.Sign())
	assert.Equal(t, t0, idx.LastUpdate)

	// The retry mints the same day once and pays the full interval.
	res, err := h.engine.Tick(ctx)
	require.NoError(t, err)
	assert.True(t, res.Minted)
	assert.Equal(t, int64(1), res.Day)
	require.Len(t, res.Payouts, 3)
	assert.Equal(t, "150", fixedpoint.Format(res.Payouts[0].Amount))
	tok.AssertNumberOfCalls(t, "Mint", 2)
	tok.AssertNumberOfCalls(t, "Transfer", 3)
}

// -----------------------------------------------------------------------------
// Governance
// -----------------------------------------------------------------------------

func TestRewardClaimToggle(t *testing.T) {
	h := newHarness(t)

	enabled, err := h.engine.IsRewardClaimEnabled()
	require.NoError(t, err)
	assert.False(t, enabled)

	err = h.engine.EnableRewardClaim(alice)
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, errkind.ErrAuthorization)

	require.NoError(t, h.engine.EnableRewardClaim(governance))
	enabled, err = h.engine.IsRewardClaimEnabled()
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, h.engine.DisableRewardClaim(governance))
	enabled, err = h.engine.IsRewardClaimEnabled()
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestTransferToTreasury(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.token.Mint(ctx, units(50)))

	assert.ErrorIs(t, h.engine.TransferToTreasury(ctx, alice, units(1)), ErrUnauthorized)
	assert.ErrorIs(t, h.engine.TransferToTreasury(ctx, governance, nil), ErrInvalidAmount)
	assert.ErrorIs(t, h.engine.TransferToTreasury(ctx, governance, units(0)), ErrInvalidAmount)

	require.NoError(t, h.engine.TransferToTreasury(ctx, governance, units(20)))
	assert.Equal(t, "20", h.balanceOf(t, treasury))
	assert.Equal(t, "30", h.balanceOf(t, distributor))
	assert.Len(t, h.events.ByTopic(DistributionTopic), 1)

	assert.ErrorIs(t, h.engine.TransferToTreasury(ctx, governance, units(31)), token.ErrInsufficientBalance)
}

func TestScheduleForwarding(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.clock.Advance(49 * time.Hour)

	day, err := h.engine.Day(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), day)

	start, err := h.engine.StartTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, t0, start)

	perDay, err := h.engine.TokenDistributionPerDay(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "1000", fixedpoint.Format(perDay))
}

// -----------------------------------------------------------------------------
// User rewards
// -----------------------------------------------------------------------------

func TestHandleActionAndClaim(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// Alice and Bob each hold 50 of 100 from t0.
	_, err := h.engine.HandleAction(ctx, usdc, UserDetails{User: alice, UserBalance: big.NewInt(50), TotalSupply: big.NewInt(100)})
	require.NoError(t, err)
	_, err = h.engine.HandleAction(ctx, usdc, UserDetails{User: bob, UserBalance: big.NewInt(50), TotalSupply: big.NewInt(100)})
	require.NoError(t, err)

	daily, err := h.engine.UserDailyReward(ctx, alice)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, "300", fixedpoint.Format(daily["usdc"]))

	h.clock.Advance(24 * time.Hour)
	_, err = h.engine.Tick(ctx)
	require.NoError(t, err)

	// Alice exits after one day and settles half the asset's 600.
	settled, err := h.engine.HandleAction(ctx, usdc, UserDetails{User: alice, UserBalance: big.NewInt(0), TotalSupply: big.NewInt(50)})
	require.NoError(t, err)
	assert.Equal(t, "300", fixedpoint.Format(settled))

	pending, err := h.engine.PendingRewards(alice)
	require.NoError(t, err)
	assert.Equal(t, "300", fixedpoint.Format(pending))

	_, err = h.engine.ClaimRewards(ctx, alice)
	require.ErrorIs(t, err, ErrClaimDisabled)

	require.NoError(t, h.engine.EnableRewardClaim(governance))
	claimed, err := h.engine.ClaimRewards(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "300", fixedpoint.Format(claimed))
	assert.Equal(t, "450", h.balanceOf(t, alice)) // 150 from the pool plus the claim

	pending, err = h.engine.PendingRewards(alice)
	require.NoError(t, err)
	assert.Equal(t, 0, pending.Sign())

	again, err := h.engine.ClaimRewards(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Sign())

	require.NoError(t, h.engine.DisableRewardClaim(governance))
	_, err = h.engine.ClaimRewards(ctx, bob)
	assert.ErrorIs(t, err, ErrClaimDisabled)
}

func TestClaimRewards_TransferFailureRestoresAccrued(t *testing.T) {
	tok := &mockToken{}
	tok.On("Transfer", mock.Anything, alice, mock.Anything).Return(errors.New("ledger offline"))
	h := newHarness(t, withToken(tok))
	require.NoError(t, h.indexes.AddAccrued(alice, units(7)))
	require.NoError(t, h.engine.EnableRewardClaim(governance))

	_, err := h.engine.ClaimRewards(context.Background(), alice)
	require.Error(t, err)

	pending, err := h.engine.PendingRewards(alice)
	require.NoError(t, err)
	assert.Equal(t, "7", fixedpoint.Format(pending))
}

func TestHandleAction_Errors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.engine.HandleAction(ctx, usdc, UserDetails{User: alice})
	assert.ErrorIs(t, err, ErrNilParam)

	_, err = h.engine.HandleAction(ctx, address.FromSeed(0x7F), UserDetails{
		User: alice, UserBalance: big.NewInt(1), TotalSupply: big.NewInt(1),
	})
	assert.ErrorIs(t, err, checkpoint.ErrAssetNotFound)
}

func TestUserDailyReward_ZeroTotal(t *testing.T) {
	sicx := address.FromSeed(0x04)
	h := newHarness(t)
	require.NoError(t, h.weights.RegisterAsset("assets", sicx, "sicx"))
	auth := *h.auth
	auth.AssetDailyRewardsFn = func(context.Context) (map[string]*big.Int, error) {
		return map[string]*big.Int{"usdc": units(360), "sicx": units(240), checkpoint.TotalKey: units(600)}, nil
	}
	h.engine.authority = &auth
	ctx := context.Background()

	_, err := h.engine.HandleAction(ctx, usdc, UserDetails{User: alice, UserBalance: big.NewInt(25), TotalSupply: big.NewInt(100)})
	require.NoError(t, err)

	daily, err := h.engine.UserDailyReward(ctx, alice)
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.Equal(t, "90", fixedpoint.Format(daily["usdc"]))
	require.Contains(t, daily, "sicx")
	assert.Equal(t, 0, daily["sicx"].Sign())
}

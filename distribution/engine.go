// Package distribution mints the daily emission and routes it to
// pass-through recipients, and tracks the per-user rewards of the asset
// category.
//
// A tick mints whatever the emission authority allows since the last
// distributed day. Each pass-through recipient is an asset with one unit of
// working supply, so its accrued index delta is exactly the amount it earned.
// Worker-pool recipients split their amount pro rata across pool holders;
// treasury recipients receive theirs directly. The remainder of the mint
// stays with the distributor and backs user claims.
package distribution

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/bitfsorg/rewardledger-go/accrual"
	"github.com/bitfsorg/rewardledger-go/address"
	"github.com/bitfsorg/rewardledger-go/checkpoint"
	"github.com/bitfsorg/rewardledger-go/fixedpoint"
	"github.com/bitfsorg/rewardledger-go/metrics"
	"github.com/bitfsorg/rewardledger-go/workingbalance"
)

// Recipient kinds.
const (
	KindWorkerPool = "worker-pool"
	KindTreasury   = "treasury"
)

// PassThrough is a recipient paid out on every tick.
type PassThrough struct {
	Address address.Address
	Kind    string
	Holders HolderSource // worker-pool only
}

// Config wires an Engine.
type Config struct {
	Accrual     *accrual.Engine
	Weights     checkpoint.Store
	Balances    *workingbalance.Ledger
	Authority   EmissionAuthority
	Token       TokenLedger
	State       StateStore
	Events      EventSink       // optional
	Clock       clockwork.Clock // optional; defaults to the real clock
	Logger      *zap.Logger     // optional
	Governance  address.Address
	Treasury    address.Address
	PassThrough []PassThrough
}

// Validate checks required dependencies and fills defaults.
func (c *Config) Validate() error {
	switch {
	case c.Accrual == nil:
		return fmt.Errorf("%w: accrual engine", ErrNilParam)
	case c.Weights == nil:
		return fmt.Errorf("%w: weight store", ErrNilParam)
	case c.Balances == nil:
		return fmt.Errorf("%w: working balances", ErrNilParam)
	case c.Authority == nil:
		return fmt.Errorf("%w: emission authority", ErrNilParam)
	case c.Token == nil:
		return fmt.Errorf("%w: token ledger", ErrNilParam)
	case c.State == nil:
		return fmt.Errorf("%w: state store", ErrNilParam)
	}
	for _, p := range c.PassThrough {
		switch p.Kind {
		case KindTreasury:
		case KindWorkerPool:
			if p.Holders == nil {
				return fmt.Errorf("%w: holders of %s", ErrNilParam, p.Address)
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownRecipientKind, p.Kind)
		}
	}
	if c.Events == nil {
		c.Events = discardSink{}
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return nil
}

// Engine is the distribution engine.
type Engine struct {
	accrual     *accrual.Engine
	weights     checkpoint.Store
	balances    *workingbalance.Ledger
	authority   EmissionAuthority
	token       TokenLedger
	state       StateStore
	events      EventSink
	clock       clockwork.Clock
	log         *zap.Logger
	governance  address.Address
	treasury    address.Address
	passThrough []PassThrough

	tickMu sync.Mutex
}

// NewEngine creates an Engine from cfg.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pt := make([]PassThrough, len(cfg.PassThrough))
	copy(pt, cfg.PassThrough)
	return &Engine{
		accrual:     cfg.Accrual,
		weights:     cfg.Weights,
		balances:    cfg.Balances,
		authority:   cfg.Authority,
		token:       cfg.Token,
		state:       cfg.State,
		events:      cfg.Events,
		clock:       cfg.Clock,
		log:         cfg.Logger.Named("distribution"),
		governance:  cfg.Governance,
		treasury:    cfg.Treasury,
		passThrough: pt,
	}, nil
}

// TickResult describes one tick.
type TickResult struct {
	RunID   string
	Minted  bool
	Day     int64
	Days    int64
	Amount  *big.Int
	Payouts []Payout
}

// stagedIndex is a pass-through index advanced by a tick, with the value it
// replaces.
type stagedIndex struct {
	addr  address.Address
	prev  *accrual.AssetIndex
	index *big.Int
}

// Tick mints and distributes the emission due since the last distributed
// day. It is a no-op when the authority reports nothing to distribute.
// Calls are serialized. The new day and pass-through indexes are stored
// before the mint, so a day is minted at most once even when a later
// transfer fails.
func (e *Engine) Tick(ctx context.Context) (*TickResult, error) {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	start := e.clock.Now()
	res := &TickResult{RunID: uuid.NewString(), Amount: new(big.Int)}
	log := e.log.With(zap.String("run_id", res.RunID))

	outcome, err := e.tick(ctx, log, res)
	metrics.TicksTotal.WithLabelValues(outcome).Inc()
	metrics.TickDuration.Observe(e.clock.Since(start).Seconds())
	if err != nil {
		log.Error("tick failed", zap.String("outcome", outcome), zap.Error(err))
		return nil, err
	}
	return res, nil
}

func (e *Engine) tick(ctx context.Context, log *zap.Logger, res *TickResult) (string, error) {
	lastDay, err := e.state.LastDistributedDay()
	if err != nil {
		return metrics.TickFailed, fmt.Errorf("distribution: read last day: %w", err)
	}
	info, err := e.authority.DistributionInfo(ctx, lastDay)
	if err != nil {
		return metrics.TickFailed, fmt.Errorf("distribution: distribution info: %w", err)
	}
	if info == nil || !info.IsValid || info.Amount == nil || info.Amount.Sign() <= 0 {
		log.Debug("nothing to distribute", zap.Int64("last_day", lastDay))
		return metrics.TickNoop, nil
	}
	if info.Day <= lastDay {
		return metrics.TickFailed, fmt.Errorf("%w: day %d after %d", ErrDayNotAdvanced, info.Day, lastDay)
	}
	if err := e.CheckRecipients(); err != nil {
		return metrics.TickFailed, err
	}

	now := e.clock.Now().Unix()
	var staged []stagedIndex
	for _, p := range e.passThrough {
		prev, accrued, newIndex, err := e.passThroughAccrued(ctx, p.Address, now)
		if err != nil {
			return metrics.TickFailed, err
		}
		staged = append(staged, stagedIndex{addr: p.Address, prev: prev, index: newIndex})

		payouts, err := e.plan(ctx, p, accrued)
		if err != nil {
			return metrics.TickFailed, err
		}
		res.Payouts = append(res.Payouts, payouts...)
	}

	// Nothing has been minted or stored yet.
	if total := sumPayouts(res.Payouts); total.Cmp(info.Amount) > 0 {
		return metrics.TickAborted, fmt.Errorf("%w: %s > %s", ErrDistributionExceedsMint,
			fixedpoint.Format(total), fixedpoint.Format(info.Amount))
	}

	if err := e.commit(log, staged, info.Day, now); err != nil {
		return metrics.TickFailed, err
	}
	if err := e.token.Mint(ctx, info.Amount); err != nil {
		e.restore(log, staged)
		if rerr := e.state.SetLastDistributedDay(lastDay); rerr != nil {
			log.Error("restore last day after failed mint", zap.Int64("day", lastDay), zap.Error(rerr))
		}
		return metrics.TickFailed, fmt.Errorf("distribution: mint: %w", err)
	}
	res.Minted = true
	res.Day = info.Day
	res.Days = info.Day - lastDay
	res.Amount.Set(info.Amount)
	metrics.MintedTotal.Add(metrics.Units(info.Amount))
	metrics.LastDistributedDay.Set(float64(info.Day))
	e.events.Emit(Minted{Day: info.Day, Amount: new(big.Int).Set(info.Amount), Days: res.Days})
	log.Info("minted",
		zap.Int64("day", info.Day),
		zap.Int64("days", res.Days),
		zap.String("amount", fixedpoint.Format(info.Amount)),
	)

	for i, p := range res.Payouts {
		if p.Amount.Sign() == 0 {
			continue
		}
		if err := e.token.Transfer(ctx, p.Address, p.Amount); err != nil {
			// The day is stored; what is left unpaid stays with the distributor.
			log.Error("payouts left with distributor",
				zap.Int64("day", info.Day),
				zap.Int("unpaid_payouts", len(res.Payouts)-i),
				zap.String("unpaid", fixedpoint.Format(sumPayouts(res.Payouts[i:]))),
			)
			return metrics.TickFailed, fmt.Errorf("distribution: transfer to %s: %w", p.Address, err)
		}
		metrics.DistributedTotal.WithLabelValues(p.Recipient).Add(metrics.Units(p.Amount))
		e.events.Emit(Distribution{Recipient: p.Recipient, User: p.Address, Amount: new(big.Int).Set(p.Amount)})
	}

	log.Info("distributed",
		zap.Int64("day", info.Day),
		zap.Int("payouts", len(res.Payouts)),
		zap.String("total", fixedpoint.Format(sumPayouts(res.Payouts))),
	)
	return metrics.TickMinted, nil
}

// commit stores the advanced pass-through indexes and the new last day.
// On failure the indexes already written are put back.
func (e *Engine) commit(log *zap.Logger, staged []stagedIndex, day, now int64) error {
	for i, s := range staged {
		if err := e.accrual.Indexes().SetAssetIndex(s.addr, s.index, now); err != nil {
			e.restore(log, staged[:i])
			return fmt.Errorf("distribution: commit index of %s: %w", s.addr, err)
		}
	}
	if err := e.state.SetLastDistributedDay(day); err != nil {
		e.restore(log, staged)
		return fmt.Errorf("distribution: commit last day: %w", err)
	}
	return nil
}

// restore writes back the indexes staged replaced.
func (e *Engine) restore(log *zap.Logger, staged []stagedIndex) {
	for _, s := range staged {
		if err := e.accrual.Indexes().SetAssetIndex(s.addr, s.prev.Index, s.prev.LastUpdate); err != nil {
			log.Error("restore index", zap.Stringer("asset", s.addr), zap.Error(err))
		}
	}
}

// CheckRecipients reports ErrRecipientNotRegistered for the first
// pass-through recipient that is not a registered asset.
func (e *Engine) CheckRecipients() error {
	for _, p := range e.passThrough {
		if _, err := e.weights.Asset(p.Address); err != nil {
			if errors.Is(err, checkpoint.ErrAssetNotFound) {
				return fmt.Errorf("%w: %s %s", ErrRecipientNotRegistered, p.Kind, p.Address)
			}
			return fmt.Errorf("distribution: look up %s: %w", p.Address, err)
		}
	}
	return nil
}

// passThroughAccrued returns the current index of a pass-through recipient,
// what it earned up to now and the index to commit for it. The recipient
// holds one unit of supply, so its reward is the index delta itself.
func (e *Engine) passThroughAccrued(ctx context.Context, addr address.Address, now int64) (*accrual.AssetIndex, *big.Int, *big.Int, error) {
	cur, err := e.accrual.Indexes().AssetIndex(addr)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("distribution: read index of %s: %w", addr, err)
	}
	newIndex, err := e.accrual.AdvanceIndex(ctx, addr, fixedpoint.Unit(), now, false)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("distribution: advance index of %s: %w", addr, err)
	}
	return cur, accrual.Reward(fixedpoint.Unit(), newIndex, cur.Index), newIndex, nil
}

// plan turns a recipient's accrued amount into payouts.
func (e *Engine) plan(ctx context.Context, p PassThrough, accrued *big.Int) ([]Payout, error) {
	if accrued.Sign() <= 0 {
		return nil, nil
	}
	switch p.Kind {
	case KindTreasury:
		return []Payout{{Recipient: KindTreasury, Address: p.Address, Amount: accrued}}, nil
	case KindWorkerPool:
		holders, err := p.Holders.Holders(ctx)
		if err != nil {
			return nil, fmt.Errorf("distribution: holders of %s: %w", p.Address, err)
		}
		return SplitProRata(KindWorkerPool, accrued, holders)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRecipientKind, p.Kind)
	}
}

// LastDistributedDay returns the day of the last successful tick.
func (e *Engine) LastDistributedDay() (int64, error) {
	return e.state.LastDistributedDay()
}

// AssetIndex returns the accrual index of asset.
func (e *Engine) AssetIndex(asset address.Address) (*accrual.AssetIndex, error) {
	return e.accrual.Indexes().AssetIndex(asset)
}

// now returns the engine clock in unix seconds.
func (e *Engine) now() int64 {
	return e.clock.Now().Unix()
}

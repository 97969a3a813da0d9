package main

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/bitfsorg/rewardledger-go/accrual"
	"github.com/bitfsorg/rewardledger-go/address"
	"github.com/bitfsorg/rewardledger-go/checkpoint"
	"github.com/bitfsorg/rewardledger-go/config"
	"github.com/bitfsorg/rewardledger-go/distribution"
	"github.com/bitfsorg/rewardledger-go/schedule"
	"github.com/bitfsorg/rewardledger-go/token"
	"github.com/bitfsorg/rewardledger-go/workingbalance"
)

// dbFileName is the bbolt database inside the data directory.
const dbFileName = "rewardledger.db"

var errNoDistributor = errors.New("rewardctl: distributor address not configured")

// app is one open deployment: every store shares a single bbolt database.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	db       *bbolt.DB
	weights  *checkpoint.BoltStore
	balances *workingbalance.Ledger
	token    *token.BoltLedger
	holders  *distribution.BoltHolders // nil without a worker pool
	schedule *schedule.Schedule
	engine   *distribution.Engine
}

func openApp(cfg config.Config, log *zap.Logger, clock clockwork.Clock) (*app, error) {
	if cfg.Distributor == "" {
		return nil, errNoDistributor
	}
	distributor, err := address.ParseNetwork(cfg.Distributor, cfg.Network)
	if err != nil {
		return nil, err
	}
	emission, err := cfg.Emission()
	if err != nil {
		return nil, err
	}
	shares, err := cfg.Shares()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("rewardctl: create data dir: %w", err)
	}
	db, err := bbolt.Open(filepath.Join(cfg.DataDir, dbFileName), 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("rewardctl: open db: %w", err)
	}

	a := &app{cfg: cfg, log: log, db: db}
	if err := a.wire(distributor, emission, shares, clock); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(distributor address.Address, emission *big.Int, shares map[string]*big.Int, clock clockwork.Clock) error {
	var err error
	if a.weights, err = checkpoint.NewBoltStore(a.db); err != nil {
		return err
	}
	wbStore, err := workingbalance.NewBoltStore(a.db)
	if err != nil {
		return err
	}
	a.balances = workingbalance.NewLedger(wbStore)
	indexes, err := accrual.NewBoltIndexStore(a.db)
	if err != nil {
		return err
	}
	if a.token, err = token.NewBoltLedger(a.db, distributor); err != nil {
		return err
	}
	state, err := distribution.NewBoltState(a.db, 0)
	if err != nil {
		return err
	}

	a.schedule, err = schedule.New(schedule.Config{
		Start:         a.cfg.StartTimestamp,
		DailyEmission: emission,
		Shares:        shares,
		Weights:       a.weights,
		Clock:         clock,
	})
	if err != nil {
		return err
	}

	acc, err := accrual.NewEngine(accrual.Config{
		Weights:  a.weights,
		Emission: a.schedule,
		Indexes:  indexes,
		Supply:   a.balances,
		Logger:   a.log,
	})
	if err != nil {
		return err
	}

	var passThrough []distribution.PassThrough
	var treasury address.Address
	if a.cfg.WorkerPool != "" {
		pool, err := a.parse(a.cfg.WorkerPool)
		if err != nil {
			return err
		}
		if a.holders, err = distribution.NewBoltHolders(a.db, pool); err != nil {
			return err
		}
		passThrough = append(passThrough, distribution.PassThrough{
			Address: pool, Kind: distribution.KindWorkerPool, Holders: a.holders,
		})
	}
	if a.cfg.Treasury != "" {
		if treasury, err = a.parse(a.cfg.Treasury); err != nil {
			return err
		}
		passThrough = append(passThrough, distribution.PassThrough{
			Address: treasury, Kind: distribution.KindTreasury,
		})
	}
	// Pass-through recipients accrue from the schedule start.
	for _, p := range passThrough {
		if err := startIndex(a.weights, acc, p.Address, a.cfg.StartTimestamp); err != nil {
			return err
		}
	}

	var governance address.Address
	if a.cfg.Governance != "" {
		if governance, err = a.parse(a.cfg.Governance); err != nil {
			return err
		}
	}

	a.engine, err = distribution.NewEngine(distribution.Config{
		Accrual:     acc,
		Weights:     a.weights,
		Balances:    a.balances,
		Authority:   a.schedule,
		Token:       a.token,
		State:       state,
		Clock:       clock,
		Logger:      a.log,
		Governance:  governance,
		Treasury:    treasury,
		PassThrough: passThrough,
	})
	return err
}

// startIndex seeds the index clock of a registered recipient that has never
// accrued. A recipient not registered yet is seeded on a later open, once
// "asset register" has run; ticks refuse to mint until then.
func startIndex(weights checkpoint.Store, acc *accrual.Engine, addr address.Address, start int64) error {
	if _, err := weights.Asset(addr); err != nil {
		if errors.Is(err, checkpoint.ErrAssetNotFound) {
			return nil
		}
		return err
	}
	cur, err := acc.Indexes().AssetIndex(addr)
	if err != nil {
		return err
	}
	if cur.LastUpdate != 0 {
		return nil
	}
	return acc.InitIndex(addr, start)
}

// parse reads an address of the configured network.
func (a *app) parse(s string) (address.Address, error) {
	return address.ParseNetwork(s, a.cfg.Network)
}

func (a *app) Close() error {
	_ = a.log.Sync()
	return a.db.Close()
}

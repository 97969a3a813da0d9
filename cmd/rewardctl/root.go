package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/bitfsorg/rewardledger-go/config"
)

// cli carries state shared by every command.
type cli struct {
	dataDir string
	clock   clockwork.Clock
	app     *app
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithClock(clockwork.NewRealClock())
}

func newRootCmdWithClock(clock clockwork.Clock) *cobra.Command {
	c := &cli{clock: clock}

	root := &cobra.Command{
		Use:           "rewardctl",
		Short:         "Reward ledger control",
		Long:          `rewardctl manages the weight registry and runs the daily reward distribution of a local reward ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.dataDir, "datadir", config.DefaultDataDir(), "data directory holding the config file and database")

	root.AddCommand(
		c.initCmd(),
		c.assetCmd(),
		c.weightsCmd(),
		c.actionCmd(),
		c.poolCmd(),
		c.tickCmd(),
		c.claimCmd(),
		c.claimsCmd(),
		c.treasuryCmd(),
		c.rewardsCmd(),
		c.statusCmd(),
		c.runCmd(),
	)
	return root
}

// open loads the config in the data directory and opens the deployment.
func (c *cli) open() error {
	cfg, err := config.LoadConfig(config.ConfigPath(c.dataDir))
	if err != nil {
		return err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}
	log, err := config.NewLogger(cfg)
	if err != nil {
		return err
	}
	c.app, err = openApp(cfg, log, c.clock)
	return err
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

// withApp runs cmd against an open deployment, closing it afterwards.
func (c *cli) withApp(cmd *cobra.Command) *cobra.Command {
	run := cmd.RunE
	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		if err := c.open(); err != nil {
			return err
		}
		defer func() {
			if cerr := c.close(); err == nil {
				err = cerr
			}
		}()
		return run(cmd, args)
	}
	return cmd
}

// timestampFlag resolves an optional --at flag, defaulting to now.
func (c *cli) timestampFlag(cmd *cobra.Command) (int64, error) {
	at, _ := cmd.Flags().GetString("at")
	if at == "" {
		return c.clock.Now().Unix(), nil
	}
	ts, err := strconv.ParseInt(at, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("rewardctl: --at: %w", err)
	}
	return ts, nil
}

func (c *cli) initCmd() *cobra.Command {
	cfg := config.DefaultConfig()
	var start string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file to the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.DataDir = c.dataDir
			cfg.StartTimestamp = c.clock.Now().Truncate(24 * time.Hour).Unix()
			if start != "" {
				ts, err := strconv.ParseInt(start, 10, 64)
				if err != nil {
					return fmt.Errorf("rewardctl: --start: %w", err)
				}
				cfg.StartTimestamp = ts
			}
			if err := config.ValidateConfig(cfg); err != nil {
				return err
			}
			path := config.ConfigPath(c.dataDir)
			if err := config.SaveConfig(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.Network, "network", cfg.Network, "mainnet, testnet or regtest")
	f.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "metrics listen address")
	f.StringVar(&cfg.LogLevel, "loglevel", cfg.LogLevel, "debug, info, warn or error")
	f.StringVar(&cfg.LogFile, "logfile", cfg.LogFile, "log file (stderr when empty)")
	f.StringVar(&cfg.DailyEmission, "emission", cfg.DailyEmission, "daily emission in tokens")
	f.StringVar(&cfg.CategoryShares, "shares", cfg.CategoryShares, "category shares as category:share,...")
	f.StringVar(&start, "start", "", "unix time of day 0 (defaults to today 00:00 UTC)")
	f.StringVar(&cfg.Governance, "governance", "", "governance address")
	f.StringVar(&cfg.Distributor, "distributor", "", "distributor address holding minted tokens")
	f.StringVar(&cfg.Treasury, "treasury", "", "treasury address")
	f.StringVar(&cfg.WorkerPool, "workerpool", "", "worker pool address")
	return cmd
}

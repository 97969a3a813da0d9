package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bitfsorg/rewardledger-go/address"
	"github.com/bitfsorg/rewardledger-go/checkpoint"
	"github.com/bitfsorg/rewardledger-go/distribution"
	"github.com/bitfsorg/rewardledger-go/fixedpoint"
)

var errNoWorkerPool = errors.New("rewardctl: worker pool address not configured")

func (c *cli) assetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asset",
		Short: "Manage registered assets",
	}
	cmd.AddCommand(c.withApp(&cobra.Command{
		Use:   "register <category> <address> <name>",
		Short: "Register an asset under a category",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := c.app.parse(args[1])
			if err != nil {
				return err
			}
			if err := c.app.weights.RegisterAsset(args[0], addr, args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s as %s in %s\n", addr, args[2], args[0])
			return nil
		},
	}))
	cmd.AddCommand(c.withApp(&cobra.Command{
		Use:   "list",
		Short: "List registered assets by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cats, err := c.app.weights.Categories()
			if err != nil {
				return err
			}
			for _, cat := range cats {
				assets, err := c.app.weights.Assets(cat)
				if err != nil {
					return err
				}
				for _, a := range assets {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", cat, a.Name, a.Address)
				}
			}
			return nil
		},
	}))
	return cmd
}

func (c *cli) weightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Read and update category weights",
	}

	set := c.withApp(&cobra.Command{
		Use:   "set <category> <address=weight>...",
		Short: "Apply weight updates to a category",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := c.timestampFlag(cmd)
			if err != nil {
				return err
			}
			entries := make([]checkpoint.WeightEntry, 0, len(args)-1)
			for _, arg := range args[1:] {
				addr, weight, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("rewardctl: expected address=weight, got %q", arg)
				}
				a, err := c.app.parse(addr)
				if err != nil {
					return err
				}
				w, err := fixedpoint.Parse(weight)
				if err != nil {
					return err
				}
				entries = append(entries, checkpoint.WeightEntry{Address: a, Weight: w})
			}
			if err := c.app.weights.SetWeights(args[0], entries, ts); err != nil {
				return err
			}
			seq, err := c.app.weights.LatestSequence(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s checkpoint %d at %d\n", args[0], seq, ts)
			return nil
		},
	})
	set.Flags().String("at", "", "unix timestamp of the update (defaults to now)")

	get := c.withApp(&cobra.Command{
		Use:   "get <category> <address>",
		Short: "Show the weight of an asset at a time",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := c.timestampFlag(cmd)
			if err != nil {
				return err
			}
			addr, err := c.app.parse(args[1])
			if err != nil {
				return err
			}
			w, err := c.app.weights.GetWeight(args[0], addr, ts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sequence %d\ttimestamp %d\tweight %s\n",
				w.Sequence, w.Timestamp, fixedpoint.Format(w.Weight))
			return nil
		},
	})
	get.Flags().String("at", "", "unix timestamp to query (defaults to now)")

	show := c.withApp(&cobra.Command{
		Use:   "show <category>",
		Short: "Show every asset weight of a category, optionally scaled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := c.timestampFlag(cmd)
			if err != nil {
				return err
			}
			var scale = fixedpoint.Unit()
			if s, _ := cmd.Flags().GetString("scale"); s != "" {
				if scale, err = fixedpoint.Parse(s); err != nil {
					return err
				}
			}
			agg, err := c.app.weights.AggregatedWeight(args[0], ts, scale)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(agg))
			for name := range agg {
				if name != checkpoint.TotalKey {
					names = append(names, name)
				}
			}
			sort.Strings(names)
			for _, name := range append(names, checkpoint.TotalKey) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, fixedpoint.Format(agg[name]))
			}
			return nil
		},
	})
	show.Flags().String("at", "", "unix timestamp to query (defaults to now)")
	show.Flags().String("scale", "", "multiply each weight by this amount")

	cmd.AddCommand(set, get, show)
	return cmd
}

func (c *cli) actionCmd() *cobra.Command {
	cmd := c.withApp(&cobra.Command{
		Use:   "action <asset> <user> <balance> <total-supply>",
		Short: "Report a user's new asset balance in native units",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			asset, err := c.app.parse(args[0])
			if err != nil {
				return err
			}
			user, err := c.app.parse(args[1])
			if err != nil {
				return err
			}
			balance, err := fixedpoint.ParseInt(args[2])
			if err != nil {
				return err
			}
			total, err := fixedpoint.ParseInt(args[3])
			if err != nil {
				return err
			}
			decimals, _ := cmd.Flags().GetUint8("decimals")
			settled, err := c.app.engine.HandleAction(cmd.Context(), asset, distribution.UserDetails{
				User:        user,
				UserBalance: balance,
				TotalSupply: total,
				Decimals:    decimals,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "settled %s\n", fixedpoint.Format(settled))
			return nil
		},
	})
	cmd.Flags().Uint8("decimals", fixedpoint.Decimals, "decimals of the asset's native units")
	return cmd
}

func (c *cli) poolCmd() *cobra.Command {
	return c.withApp(&cobra.Command{
		Use:   "pool <holder> <balance>",
		Short: "Set a worker pool holder's balance; zero removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.app.holders == nil {
				return errNoWorkerPool
			}
			holder, err := c.app.parse(args[0])
			if err != nil {
				return err
			}
			bal, err := fixedpoint.Parse(args[1])
			if err != nil {
				return err
			}
			return c.app.holders.SetHolding(holder, bal)
		},
	})
}

func (c *cli) tickCmd() *cobra.Command {
	return c.withApp(&cobra.Command{
		Use:   "tick",
		Short: "Mint and distribute the emission due since the last distributed day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.app.engine.Tick(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !res.Minted {
				fmt.Fprintln(out, "nothing to distribute")
				return nil
			}
			fmt.Fprintf(out, "day %d: minted %s over %d day(s)\n", res.Day, fixedpoint.Format(res.Amount), res.Days)
			for _, p := range res.Payouts {
				fmt.Fprintf(out, "%s\t%s\t%s\n", p.Recipient, p.Address, fixedpoint.Format(p.Amount))
			}
			return nil
		},
	})
}

func (c *cli) claimCmd() *cobra.Command {
	return c.withApp(&cobra.Command{
		Use:   "claim <user>",
		Short: "Transfer a user's accrued rewards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.app.parse(args[0])
			if err != nil {
				return err
			}
			amount, err := c.app.engine.ClaimRewards(cmd.Context(), user)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "claimed %s\n", fixedpoint.Format(amount))
			return nil
		},
	})
}

func (c *cli) claimsCmd() *cobra.Command {
	var caller string
	cmd := c.withApp(&cobra.Command{
		Use:       "claims <enable|disable>",
		Short:     "Switch reward claims on or off",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"enable", "disable"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "enable" {
				return c.app.engine.EnableRewardClaim(address.Address(caller))
			}
			return c.app.engine.DisableRewardClaim(address.Address(caller))
		},
	})
	cmd.Flags().StringVar(&caller, "caller", "", "address authorizing the change")
	return cmd
}

func (c *cli) treasuryCmd() *cobra.Command {
	var caller string
	cmd := c.withApp(&cobra.Command{
		Use:   "treasury <amount>",
		Short: "Move tokens from the distributor to the treasury",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := fixedpoint.Parse(args[0])
			if err != nil {
				return err
			}
			return c.app.engine.TransferToTreasury(cmd.Context(), address.Address(caller), amount)
		},
	})
	cmd.Flags().StringVar(&caller, "caller", "", "address authorizing the transfer")
	return cmd
}

func (c *cli) rewardsCmd() *cobra.Command {
	return c.withApp(&cobra.Command{
		Use:   "rewards <user>",
		Short: "Show a user's pending and estimated daily rewards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.app.parse(args[0])
			if err != nil {
				return err
			}
			pending, err := c.app.engine.PendingRewards(user)
			if err != nil {
				return err
			}
			daily, err := c.app.engine.UserDailyReward(cmd.Context(), user)
			if err != nil {
				return err
			}
			balance, err := c.app.token.BalanceOf(user)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pending\t%s\n", fixedpoint.Format(pending))
			names := make([]string, 0, len(daily))
			for name := range daily {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "daily\t%s\t%s\n", name, fixedpoint.Format(daily[name]))
			}
			fmt.Fprintf(out, "balance\t%s\n", fixedpoint.Format(balance))
			return nil
		},
	})
}

func (c *cli) statusCmd() *cobra.Command {
	return c.withApp(&cobra.Command{
		Use:   "status",
		Short: "Show the distribution state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			day, err := c.app.engine.Day(ctx)
			if err != nil {
				return err
			}
			last, err := c.app.engine.LastDistributedDay()
			if err != nil {
				return err
			}
			enabled, err := c.app.engine.IsRewardClaimEnabled()
			if err != nil {
				return err
			}
			perDay, err := c.app.engine.TokenDistributionPerDay(ctx, day)
			if err != nil {
				return err
			}
			start, err := c.app.engine.StartTimestamp(ctx)
			if err != nil {
				return err
			}
			supply, err := c.app.token.TotalSupply()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "start\t%d\n", start)
			fmt.Fprintf(out, "day\t%d\n", day)
			fmt.Fprintf(out, "last distributed day\t%d\n", last)
			fmt.Fprintf(out, "emission per day\t%s\n", fixedpoint.Format(perDay))
			fmt.Fprintf(out, "claims enabled\t%s\n", strconv.FormatBool(enabled))
			fmt.Fprintf(out, "total supply\t%s\n", fixedpoint.Format(supply))
			return nil
		},
	})
}

func (c *cli) runCmd() *cobra.Command {
	var interval time.Duration
	cmd := c.withApp(&cobra.Command{
		Use:   "run",
		Short: "Serve metrics and tick on an interval until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := c.app.engine.CheckRecipients(); err != nil {
				return err
			}
			log := c.app.log
			listener, err := net.Listen("tcp", c.app.cfg.ListenAddr)
			if err != nil {
				return fmt.Errorf("rewardctl: metrics listener: %w", err)
			}
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
			go func() {
				log.Info("metrics server listening", zap.String("address", listener.Addr().String()))
				if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("metrics server failed", zap.Error(err))
				}
			}()

			c.app.engine.Run(ctx, interval)

			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		},
	})
	cmd.Flags().DurationVar(&interval, "interval", time.Hour, "time between ticks")
	return cmd
}

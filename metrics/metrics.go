// Package metrics exposes prometheus instrumentation for the weight registry
// and the distribution engine.
package metrics

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bitfsorg/rewardledger-go/fixedpoint"
)

const (
	StatusOK    = "ok"
	StatusError = "error"

	// UnregisteredCategory labels weight updates for a category no asset
	// belongs to, keeping label values bounded by registrations.
	UnregisteredCategory = "unregistered"

	TickNoop    = "noop"
	TickMinted  = "minted"
	TickFailed  = "failed"
	TickAborted = "aborted"
)

var (
	WeightUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewardledger_weight_updates_total",
			Help: "Total number of weight update calls by category and status",
		},
		[]string{"category", "status"},
	)

	TicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewardledger_distribution_ticks_total",
			Help: "Total number of distribution ticks by outcome",
		},
		[]string{"outcome"},
	)

	TickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rewardledger_distribution_tick_duration_seconds",
			Help:    "Duration of distribution ticks",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)

	MintedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rewardledger_minted_units_total",
			Help: "Total emission minted, in whole token units",
		},
	)

	DistributedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewardledger_distributed_units_total",
			Help: "Total emission transferred to recipients, in whole token units",
		},
		[]string{"recipient"},
	)

	LastDistributedDay = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rewardledger_last_distributed_day",
			Help: "Last emission day distributed",
		},
	)
)

// ObserveWeightUpdate counts one weight update for category, which callers
// pass as UnregisteredCategory unless an asset is registered under it.
func ObserveWeightUpdate(category string, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	WeightUpdatesTotal.WithLabelValues(category, status).Inc()
}

// Units converts a fixed-point amount to a float of whole units. Precision
// loss is acceptable for reporting.
func Units(x *big.Int) float64 {
	if x == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(x), new(big.Float).SetInt(fixedpoint.Unit())).Float64()
	return f
}

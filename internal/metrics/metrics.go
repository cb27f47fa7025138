// Package metrics exposes prometheus collectors for the scoring pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PoolsScored counts pools that produced a composite result.
	PoolsScored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "poolfinder_pools_scored_total",
		Help: "Total pools scored across all scan cycles",
	})

	// PoolsExcluded counts pools rejected for malformed input, by reason.
	PoolsExcluded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poolfinder_pools_excluded_total",
		Help: "Total pools excluded from scoring",
	}, []string{"reason"})

	// ScanDuration observes wall time of a full scoring pass.
	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "poolfinder_scan_duration_seconds",
		Help:    "Duration of a full scoring pass",
		Buckets: prometheus.DefBuckets,
	})

	// LastScanTimestamp tracks the unix time of the latest completed pass.
	LastScanTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "poolfinder_last_scan_timestamp_seconds",
		Help: "Unix timestamp of the last completed scoring pass",
	})

	// ProviderRequests counts upstream API requests by provider and outcome.
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poolfinder_provider_requests_total",
		Help: "Upstream provider requests",
	}, []string{"provider", "outcome"})
)

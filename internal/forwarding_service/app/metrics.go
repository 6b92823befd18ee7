package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dialCodeResolutionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "forwarding",
			Name:      "dial_code_resolutions_total",
			Help:      "Dial code resolutions by carrier family and result kind.",
		},
		[]string{"carrier_family", "kind"},
	)

	statePatchesCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "forwarding",
			Name:      "state_patches_total",
			Help:      "Forwarding-state patches by confirmation status and outcome.",
		},
		[]string{"confirmation_status", "outcome"}, // outcome: "success", "rate_limited", "error"
	)

	staleResponsesCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "forwarding",
			Name:      "stale_responses_discarded_total",
			Help:      "Upstream responses discarded because a newer operation superseded them.",
		},
	)

	upstreamRequestDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "forwarding",
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of requests to the state store and number service.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"upstream", "operation"},
	)
)

package app

import "github.com/prometheus/client_golang/prometheus"

var (
	rebuildsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "aardd",
			Subsystem: "sources",
			Name:      "rebuilds_total",
			Help:      "Source set rebuilds",
		},
	)

	rebuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "aardd",
			Subsystem: "sources",
			Name:      "rebuild_duration_seconds",
			Help:      "Time to close and reopen every dictionary",
			Buckets:   prometheus.DefBuckets,
		},
	)

	sourcesOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "aardd",
			Subsystem: "sources",
			Name:      "open",
			Help:      "Dictionaries published to the search engine",
		},
	)

	openFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "aardd",
			Subsystem: "sources",
			Name:      "open_failures_total",
			Help:      "Dictionaries that failed to open during a rebuild",
		},
	)
)

func init() {
	prometheus.MustRegister(rebuildsTotal, rebuildDuration, sourcesOpen, openFailures)
}

package lookup

import "github.com/prometheus/client_golang/prometheus"

var (
	lookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aardd",
			Name:      "lookups_total",
			Help:      "Lookups by outcome (finished, canceled, empty, error)",
		},
		[]string{"outcome"},
	)

	lookupDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "aardd",
			Name:      "lookup_duration_seconds",
			Help:      "Time from lookup start to publish or discard",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(lookupsTotal, lookupDuration)
}

package discovery

import "github.com/prometheus/client_golang/prometheus"

var (
	discoveryRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aardd",
			Subsystem: "discovery",
			Name:      "runs_total",
			Help:      "Discovery runs by result (ok, error, rejected)",
		},
		[]string{"result"},
	)

	discoveryFound = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "aardd",
			Subsystem: "discovery",
			Name:      "dictionaries_added_total",
			Help:      "Dictionaries added to the source set by discovery",
		},
	)
)

func init() {
	prometheus.MustRegister(discoveryRuns, discoveryFound)
}

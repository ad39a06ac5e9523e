package bootstrap

import "github.com/prometheus/client_golang/prometheus"

var bindAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "aardd",
		Name:      "bind_attempts_total",
		Help:      "Content server bind attempts by result",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(bindAttempts)
}

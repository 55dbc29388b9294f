package state

import "github.com/prometheus/client_golang/prometheus"

var (
	SavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spark_state_saves_total",
			Help: "Snapshot saves by result (ok, error)",
		},
		[]string{"result"},
	)

	LoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spark_state_loads_total",
			Help: "Snapshot loads by outcome status",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(SavesTotal)
	prometheus.MustRegister(LoadsTotal)
}

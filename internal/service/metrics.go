package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RoundsPlayed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rps_rounds_played_total",
			Help: "Rounds recorded, by result",
		},
		[]string{"result"},
	)
	StoreErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rps_store_errors_total",
			Help: "Statistics store failures, by operation",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(RoundsPlayed)
	prometheus.MustRegister(StoreErrors)
}

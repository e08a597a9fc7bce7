package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	syncRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_sync_records_total",
			Help: "Batch and single sync outcomes per record",
		},
		[]string{"outcome"}, // updated / synced / failed / skipped
	)

	gatewayCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reconcile_gateway_call_duration_seconds",
			Help:    "Gateway call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"gateway", "op", "result"},
	)

	refundsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_refunds_total",
			Help: "Refund attempts by mode and result",
		},
		[]string{"mode", "result"},
	)
)

func init() {
	prometheus.MustRegister(syncRecordsTotal, gatewayCallDuration, refundsTotal)
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

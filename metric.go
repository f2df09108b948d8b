package arnames

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const (
	MetricNameSpace = "arnames"
)

var (
	eventTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "event_total",
			Help:      "registry events by action",
		},
		[]string{"action"},
	)

	registryBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "registry_balance",
			Help:      "accumulated fees and deposits held by the registry",
		},
	)

	recordTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "record_total",
			Help:      "registered names",
		},
	)
)

func init() {
	prometheus.MustRegister(
		eventTotal,
		registryBalance,
		recordTotal,
	)
}

func metricEvent(action string) {
	eventTotal.WithLabelValues(action).Inc()
}

func metricRegistryState(balance decimal.Decimal, records int64) {
	bal, _ := balance.Float64()
	registryBalance.Set(bal)
	recordTotal.Set(float64(records))
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GatewayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_bot_gateway_requests_total",
		Help: "Exchange REST calls by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	KlineFetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_bot_kline_upstream_fetches_total",
		Help: "Kline requests that reached the exchange.",
	})

	KlineCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_bot_kline_cache_hits_total",
		Help: "Kline requests served from cache or a shared in-flight call.",
	})

	Detections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_bot_detections_total",
		Help: "Detection tasks run by monitor kind.",
	}, []string{"monitor"})

	Signals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_bot_signals_total",
		Help: "Fired signals by monitor kind and direction.",
	}, []string{"monitor", "type"})

	Orders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_bot_orders_total",
		Help: "Orders sent by kind and outcome.",
	}, []string{"kind", "outcome"})

	HighFrequency = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "signal_bot_scheduler_high_frequency",
		Help: "1 when the scheduler polls at the fast cadence.",
	})
)

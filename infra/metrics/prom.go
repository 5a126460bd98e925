package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/plugpoint/plugpoint/core/metrics"
)

// PromSink records cache, session and pricing events as Prometheus metrics.
type PromSink struct {
	cacheEvents   *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec
	sessionEvents *prometheus.CounterVec
	spotPrice     prometheus.Gauge
}

// NewPromSink registers the client metrics on the provided registerer. If
// reg is nil, the default registerer is used. Already-registered collectors
// are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	cacheEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "query_cache_events_total",
		Help: "Cache query resolutions by key and outcome",
	}, []string{"key", "outcome"})
	fetchLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "query_fetch_duration_seconds",
		Help:    "Time to resolve a cache query",
		Buckets: prometheus.DefBuckets,
	}, []string{"key"})
	sessionEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "charging_session_events_total",
		Help: "Charging session lifecycle transitions",
	}, []string{"station_id", "status"})
	spotPrice := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "spot_price_rate",
		Help: "Most recent spot price sample",
	})

	s := &PromSink{
		cacheEvents:   cacheEvents,
		fetchLatency:  fetchLatency,
		sessionEvents: sessionEvents,
		spotPrice:     spotPrice,
	}
	for _, c := range []prometheus.Collector{cacheEvents, fetchLatency, sessionEvents, spotPrice} {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			switch existing := are.ExistingCollector.(type) {
			case *prometheus.CounterVec:
				if c == cacheEvents {
					s.cacheEvents = existing
				} else {
					s.sessionEvents = existing
				}
			case *prometheus.HistogramVec:
				s.fetchLatency = existing
			case prometheus.Gauge:
				s.spotPrice = existing
			}
		}
	}
	return s, nil
}

// RecordCacheEvent increments the per-key outcome counter and observes the
// fetch latency.
func (s *PromSink) RecordCacheEvent(ev coremetrics.CacheEvent) error {
	s.cacheEvents.WithLabelValues(ev.Key, ev.Outcome).Inc()
	s.fetchLatency.WithLabelValues(ev.Key).Observe(ev.Latency.Seconds())
	return nil
}

// RecordSessionEvent increments the lifecycle transition counter.
func (s *PromSink) RecordSessionEvent(ev coremetrics.SessionEvent) error {
	s.sessionEvents.WithLabelValues(ev.StationID, ev.Status).Inc()
	return nil
}

// RecordPriceSample sets the spot price gauge.
func (s *PromSink) RecordPriceSample(p coremetrics.PriceSample) error {
	s.spotPrice.Set(p.Rate)
	return nil
}

package metrics

import "time"

// Cache fetch outcomes recorded per query key.
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheStale  = "stale"
	CacheShared = "shared"
	CacheError  = "error"
)

// CacheEvent describes one resolution of a cache query.
type CacheEvent struct {
	Key     string
	Outcome string
	Latency time.Duration
	Time    time.Time
}

// Sink records cache events for observability purposes.
type Sink interface {
	RecordCacheEvent(ev CacheEvent) error
}

// SessionEvent is emitted when a charging session changes lifecycle state.
type SessionEvent struct {
	SessionID  string
	StationID  string
	Status     string
	ChargeRate float64
	Time       time.Time
}

// SessionRecorder records session lifecycle transitions.
type SessionRecorder interface {
	RecordSessionEvent(ev SessionEvent) error
}

// PriceSample is one spot price draw.
type PriceSample struct {
	Rate     float64
	Currency string
	Time     time.Time
}

// PriceRecorder records spot price samples.
type PriceRecorder interface {
	RecordPriceSample(s PriceSample) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordCacheEvent(CacheEvent) error     { return nil }
func (NopSink) RecordSessionEvent(SessionEvent) error { return nil }
func (NopSink) RecordPriceSample(PriceSample) error   { return nil }

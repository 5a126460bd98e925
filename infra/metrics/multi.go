package metrics

import coremetrics "github.com/plugpoint/plugpoint/core/metrics"

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordCacheEvent forwards the event to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordCacheEvent(ev coremetrics.CacheEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordCacheEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSessionEvent forwards the event to sinks that record sessions.
func (m *MultiSink) RecordSessionEvent(ev coremetrics.SessionEvent) error {
	for _, s := range m.Sinks {
		if sr, ok := s.(coremetrics.SessionRecorder); ok {
			if err := sr.RecordSessionEvent(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPriceSample forwards the sample to sinks that record prices.
func (m *MultiSink) RecordPriceSample(p coremetrics.PriceSample) error {
	for _, s := range m.Sinks {
		if pr, ok := s.(coremetrics.PriceRecorder); ok {
			if err := pr.RecordPriceSample(p); err != nil {
				return err
			}
		}
	}
	return nil
}

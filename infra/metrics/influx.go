package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/plugpoint/plugpoint/config"
	coremetrics "github.com/plugpoint/plugpoint/core/metrics"
	"github.com/plugpoint/plugpoint/infra/logger"
)

// InfluxSink writes cache, session and pricing events to InfluxDB using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink when the health check fails, so a dead backend never blocks the
// client.
func NewInfluxSinkWithFallback(cfg config.MetricsConfig) coremetrics.Sink {
	sink := NewInfluxSink(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordCacheEvent writes one cache_event point.
func (s *InfluxSink) RecordCacheEvent(ev coremetrics.CacheEvent) error {
	p := write.NewPointWithMeasurement("cache_event").
		AddTag("key", ev.Key).
		AddTag("outcome", ev.Outcome).
		AddField("latency_ms", float64(ev.Latency.Microseconds())/1000).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordSessionEvent writes one session_event point.
func (s *InfluxSink) RecordSessionEvent(ev coremetrics.SessionEvent) error {
	p := write.NewPointWithMeasurement("session_event").
		AddTag("station_id", ev.StationID).
		AddTag("status", ev.Status).
		AddField("session_id", ev.SessionID).
		AddField("charge_rate", ev.ChargeRate).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordPriceSample writes one spot_price point.
func (s *InfluxSink) RecordPriceSample(sample coremetrics.PriceSample) error {
	p := write.NewPointWithMeasurement("spot_price").
		AddTag("currency", sample.Currency).
		AddField("rate", sample.Rate).
		SetTime(sample.Time)
	return s.write(p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// Package app wires the configured components into a ready-to-use client
// service: the REST client, the shared query cache, the pricing feed, the
// metrics sinks and the optional MQTT notifier.
package app

import (
	"context"
	"time"

	"github.com/plugpoint/plugpoint/config"
	"github.com/plugpoint/plugpoint/core/cache"
	"github.com/plugpoint/plugpoint/core/events"
	coremetrics "github.com/plugpoint/plugpoint/core/metrics"
	"github.com/plugpoint/plugpoint/core/model"
	"github.com/plugpoint/plugpoint/core/pricing"
	"github.com/plugpoint/plugpoint/core/session"
	"github.com/plugpoint/plugpoint/infra/logger"
	"github.com/plugpoint/plugpoint/infra/metrics"
	"github.com/plugpoint/plugpoint/infra/notify"
	"github.com/plugpoint/plugpoint/internal/eventbus"
	mockpricing "github.com/plugpoint/plugpoint/pricing"
	"github.com/plugpoint/plugpoint/rest"
)

// Service owns the shared cache and the components behind it. It is
// constructed once per process; every command goes through it.
type Service struct {
	Cfg      *config.Config
	Store    *cache.Store
	API      *rest.Client
	Prices   *mockpricing.Generator
	Bus      *eventbus.Bus
	Notifier *notify.Notifier

	sink coremetrics.Sink
	log  logger.Logger
}

// New builds a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	store := cache.NewStore(
		cache.WithLogger(logger.New("cache")),
		cache.WithSink(sink),
	)
	api := rest.NewClient(cfg.API.BaseURL, cfg.API.Timeout(), rest.WithLogger(logger.New("rest")))
	prices := mockpricing.New(cfg.Pricing,
		mockpricing.WithLogger(logger.New("pricing")),
		mockpricing.WithRecorder(recorderOf(sink)),
	)
	bus := eventbus.New()

	svc := &Service{
		Cfg:    cfg,
		Store:  store,
		API:    api,
		Prices: prices,
		Bus:    bus,
		sink:   sink,
		log:    logg,
	}
	if cfg.Notify.Enabled {
		notifier, err := notify.New(cfg.Notify)
		if err != nil {
			return nil, err
		}
		svc.Notifier = notifier
	}
	return svc, nil
}

// Stations resolves the station list through the cache.
func (s *Service) Stations(ctx context.Context) cache.Result[[]model.Station] {
	return cache.Fetch(ctx, s.Store, cache.KeyStations, s.Cfg.Cache.StationsStale(), s.API.FetchStations)
}

// Sessions resolves the charging session history through the cache.
func (s *Service) Sessions(ctx context.Context) cache.Result[[]model.ChargingSession] {
	return cache.Fetch(ctx, s.Store, cache.KeySessions, s.Cfg.Cache.SessionsStale(), s.API.FetchChargingSessions)
}

// SpotPrice resolves the current spot price through the cache.
func (s *Service) SpotPrice(ctx context.Context) cache.Result[model.SpotPrice] {
	return cache.Fetch(ctx, s.Store, cache.KeySpotPrice, s.Cfg.Cache.SpotPriceStale(), s.Prices.SpotPrice)
}

// NewController creates a session lifecycle controller bound to the shared
// cache. The controller reads the charge rate from the cached spot price.
func (s *Service) NewController() *session.Controller {
	source := pricing.SourceFunc(func(ctx context.Context) (model.SpotPrice, error) {
		res := s.SpotPrice(ctx)
		return res.Data, res.Err
	})
	return session.NewController(s.API, source, s.Store,
		session.WithBus(s.Bus),
		session.WithRecorder(recorderOf(s.sink)),
		session.WithLogger(logger.New("session")),
	)
}

// Run is watch mode: it refreshes stations and the spot price through the
// cache on an interval, publishes the results on the bus, and serves
// Prometheus metrics when enabled. Blocks until the context ends.
func (s *Service) Run(ctx context.Context) error {
	if s.Cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.Cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.Notifier != nil {
		go s.Notifier.Run(ctx, s.Bus)
	}

	ticker := time.NewTicker(s.Cfg.Watch.Interval())
	defer ticker.Stop()
	s.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Service) refresh(ctx context.Context) {
	if res := s.Stations(ctx); res.Err == nil {
		s.Bus.Publish(events.StationsRefreshed{Stations: res.Data})
	}
	if res := s.SpotPrice(ctx); res.Err == nil {
		s.Bus.Publish(events.PriceUpdated{Price: res.Data})
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.Notifier != nil {
		s.Notifier.Close()
	}
	s.Bus.Close()
	return nil
}

// recorderOf returns the sink when it records the richer event kinds, or a
// NopSink otherwise.
func recorderOf(sink coremetrics.Sink) interface {
	coremetrics.SessionRecorder
	coremetrics.PriceRecorder
} {
	if r, ok := sink.(interface {
		coremetrics.SessionRecorder
		coremetrics.PriceRecorder
	}); ok {
		return r
	}
	return coremetrics.NopSink{}
}

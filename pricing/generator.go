// Package pricing provides the synthetic spot price feed used in place of a
// real market data source.
package pricing

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/plugpoint/plugpoint/config"
	corelogger "github.com/plugpoint/plugpoint/core/logger"
	coremetrics "github.com/plugpoint/plugpoint/core/metrics"
	"github.com/plugpoint/plugpoint/core/model"
)

// Generator produces synthetic spot prices: a fixed simulated feed delay,
// then rate = baseRate x uniform(minFactor, maxFactor) rounded to two
// decimals. Successive draws are independent; there is deliberately no
// smoothing between calls.
type Generator struct {
	cfg  config.PricingConfig
	log  corelogger.Logger
	sink coremetrics.PriceRecorder
	now  func() time.Time

	mu   sync.Mutex
	rand *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the generator logger.
func WithLogger(log corelogger.Logger) Option {
	return func(g *Generator) { g.log = log }
}

// WithRecorder sets the metrics recorder receiving price samples.
func WithRecorder(sink coremetrics.PriceRecorder) Option {
	return func(g *Generator) { g.sink = sink }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New creates a Generator. A zero seed draws from the wall clock; any other
// seed makes the sequence reproducible.
func New(cfg config.PricingConfig, opts ...Option) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Generator{
		cfg:  cfg,
		sink: coremetrics.NopSink{},
		now:  time.Now,
		rand: rand.New(rand.NewSource(seed)),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// SpotPrice draws a fresh price sample. The simulated feed delay respects
// context cancellation.
func (g *Generator) SpotPrice(ctx context.Context) (model.SpotPrice, error) {
	if d := g.cfg.Delay(); d > 0 {
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return model.SpotPrice{}, ctx.Err()
		case <-timer.C:
		}
	}

	g.mu.Lock()
	factor := g.cfg.MinFactor + g.rand.Float64()*(g.cfg.MaxFactor-g.cfg.MinFactor)
	g.mu.Unlock()

	price := model.SpotPrice{
		Rate:        math.Round(g.cfg.BaseRate*factor*100) / 100,
		Currency:    "EUR",
		LastUpdated: g.now(),
	}
	if g.log != nil {
		g.log.Debugf("spot price %.2f %s", price.Rate, price.Currency)
	}
	if err := g.sink.RecordPriceSample(coremetrics.PriceSample{Rate: price.Rate, Currency: price.Currency, Time: price.LastUpdated}); err != nil && g.log != nil {
		g.log.Warnf("record price sample: %v", err)
	}
	return price, nil
}

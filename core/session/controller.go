// Package session drives the lifecycle of one charging session: NONE until
// the user starts charging, ACTIVE while current is flowing, COMPLETED once
// stopped. COMPLETED is terminal; the record is never mutated again.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/plugpoint/plugpoint/core/cache"
	"github.com/plugpoint/plugpoint/core/events"
	corelogger "github.com/plugpoint/plugpoint/core/logger"
	coremetrics "github.com/plugpoint/plugpoint/core/metrics"
	"github.com/plugpoint/plugpoint/core/model"
	"github.com/plugpoint/plugpoint/core/pricing"
	"github.com/plugpoint/plugpoint/internal/eventbus"
)

// State of the controller instance.
type State int

const (
	StateNone State = iota
	StateActive
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "ACTIVE"
	case StateCompleted:
		return "COMPLETED"
	default:
		return "NONE"
	}
}

// Writer issues session mutations against the backend.
type Writer interface {
	CreateChargingSession(ctx context.Context, s model.ChargingSession) (model.ChargingSession, error)
	UpdateChargingSession(ctx context.Context, u model.SessionUpdate) (model.ChargingSession, error)
}

// StartRequest carries the user's selections from the start-charging view.
type StartRequest struct {
	StationID string
	// Connectors lists the selected connector slots, zero-based. At least
	// one must be selected.
	Connectors  []int
	PowerRating float64
}

// Handoff carries the display parameters forwarded to the active-session
// view after a successful start.
type Handoff struct {
	SessionID   string
	ChargeRate  float64
	Connector   int
	PowerRating float64
}

// Controller is the per-session state machine.
type Controller struct {
	api     Writer
	prices  pricing.SpotPriceSource
	store   *cache.Store
	bus     eventbus.EventBus
	sink    coremetrics.SessionRecorder
	log     corelogger.Logger
	now     func() time.Time
	newID   func() string
	state   State
	session model.ChargingSession
	handoff Handoff
}

// Option configures a Controller.
type Option func(*Controller)

// WithBus sets the event bus receiving lifecycle events.
func WithBus(bus eventbus.EventBus) Option {
	return func(c *Controller) { c.bus = bus }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(sink coremetrics.SessionRecorder) Option {
	return func(c *Controller) { c.sink = sink }
}

// WithLogger sets the controller logger.
func WithLogger(log corelogger.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDGenerator overrides session id generation, for tests.
func WithIDGenerator(gen func() string) Option {
	return func(c *Controller) { c.newID = gen }
}

// NewController creates a Controller in StateNone.
func NewController(api Writer, prices pricing.SpotPriceSource, store *cache.Store, opts ...Option) *Controller {
	c := &Controller{
		api:    api,
		prices: prices,
		store:  store,
		sink:   coremetrics.NopSink{},
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// Session returns the session record as last seen by the controller.
func (c *Controller) Session() model.ChargingSession { return c.session }

// Resume adopts an already-persisted ACTIVE session, e.g. when stopping a
// session started by an earlier process.
func (c *Controller) Resume(sess model.ChargingSession) error {
	if c.state != StateNone {
		return &model.ValidationError{Reason: "controller already bound to a session"}
	}
	switch sess.Status {
	case model.SessionActive:
		c.state = StateActive
	case model.SessionCompleted:
		c.state = StateCompleted
	default:
		return &model.ValidationError{Reason: fmt.Sprintf("unknown session status %q", sess.Status)}
	}
	c.session = sess
	return nil
}

// Start performs the NONE -> ACTIVE transition. With no connector selected
// the request is rejected before any network call. The session id is
// generated client-side, charge_rate is taken from the current spot price,
// and the backend's persisted copy replaces the optimistic one. On failure
// the controller remains in StateNone.
func (c *Controller) Start(ctx context.Context, req StartRequest) (Handoff, error) {
	if c.state != StateNone {
		return Handoff{}, &model.ValidationError{Reason: "session already started"}
	}
	if len(req.Connectors) == 0 {
		return Handoff{}, &model.ValidationError{Reason: "please choose a connector"}
	}

	price, err := c.prices.SpotPrice(ctx)
	if err != nil {
		c.errorf("spot price: %v", err)
		return Handoff{}, fmt.Errorf("spot price: %w", err)
	}

	start := c.now()
	sess := model.ChargingSession{
		ID:         c.newID(),
		StationID:  req.StationID,
		StartTime:  &start,
		ChargeRate: price.Rate,
		Status:     model.SessionActive,
	}
	created, err := cache.Mutate(ctx, c.store, func(ctx context.Context) (model.ChargingSession, error) {
		return c.api.CreateChargingSession(ctx, sess)
	}, cache.MutateOpts{Invalidates: cache.KeySessions})
	if err != nil {
		c.errorf("start session: %v", err)
		return Handoff{}, err
	}

	c.session = created
	c.state = StateActive
	c.handoff = Handoff{
		SessionID:   created.ID,
		ChargeRate:  price.Rate,
		Connector:   req.Connectors[0],
		PowerRating: req.PowerRating,
	}
	c.publish(events.SessionStarted{Session: created})
	c.recordEvent(created)
	return c.handoff, nil
}

// Stop performs the ACTIVE -> COMPLETED transition. The backend merges
// end_time and status into the persisted record, preserving untouched
// fields. On failure the controller remains ACTIVE. Calling Stop again after
// completion performs no further mutation.
func (c *Controller) Stop(ctx context.Context) (model.ChargingSession, error) {
	switch c.state {
	case StateCompleted:
		return c.session, nil
	case StateNone:
		return model.ChargingSession{}, &model.ValidationError{Reason: "no active session"}
	}

	end := c.now()
	update := model.SessionUpdate{ID: c.session.ID, EndTime: &end, Status: model.SessionCompleted}
	updated, err := cache.Mutate(ctx, c.store, func(ctx context.Context) (model.ChargingSession, error) {
		return c.api.UpdateChargingSession(ctx, update)
	}, cache.MutateOpts{Invalidates: cache.KeySessions})
	if err != nil {
		c.errorf("stop session %s: %v", c.session.ID, err)
		return model.ChargingSession{}, err
	}

	c.session = updated
	c.state = StateCompleted
	c.publish(events.SessionCompleted{Session: updated})
	c.recordEvent(updated)
	return updated, nil
}

func (c *Controller) publish(ev eventbus.Event) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}

func (c *Controller) recordEvent(sess model.ChargingSession) {
	if c.sink == nil {
		return
	}
	ev := coremetrics.SessionEvent{
		SessionID:  sess.ID,
		StationID:  sess.StationID,
		Status:     sess.Status,
		ChargeRate: sess.ChargeRate,
		Time:       c.now(),
	}
	if err := c.sink.RecordSessionEvent(ev); err != nil {
		c.errorf("record session event: %v", err)
	}
}

func (c *Controller) errorf(format string, args ...any) {
	if c.log != nil {
		c.log.Errorf(format, args...)
	}
}

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/plugpoint/plugpoint/core/cache"
	"github.com/plugpoint/plugpoint/core/model"
	"github.com/plugpoint/plugpoint/core/pricing"
)

type fakeWriter struct {
	created []model.ChargingSession
	updated []model.SessionUpdate
	// persisted plays the backend's copy of the session for merges.
	persisted model.ChargingSession
	createErr error
	updateErr error
}

func (w *fakeWriter) CreateChargingSession(_ context.Context, s model.ChargingSession) (model.ChargingSession, error) {
	if w.createErr != nil {
		return model.ChargingSession{}, w.createErr
	}
	w.created = append(w.created, s)
	w.persisted = s
	return s, nil
}

func (w *fakeWriter) UpdateChargingSession(_ context.Context, u model.SessionUpdate) (model.ChargingSession, error) {
	if w.updateErr != nil {
		return model.ChargingSession{}, w.updateErr
	}
	w.updated = append(w.updated, u)
	merged := w.persisted
	merged.EndTime = u.EndTime
	merged.Status = u.Status
	w.persisted = merged
	return merged, nil
}

func fixedPrice(rate float64) pricing.SpotPriceSource {
	return pricing.SourceFunc(func(context.Context) (model.SpotPrice, error) {
		return model.SpotPrice{Rate: rate, Currency: "EUR"}, nil
	})
}

func newTestController(w *fakeWriter, opts ...Option) (*Controller, *cache.Store) {
	store := cache.NewStore()
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	base := []Option{
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string { return "sess-1" }),
	}
	return NewController(w, fixedPrice(0.30), store, append(base, opts...)...), store
}

func TestStartRequiresConnectorSelection(t *testing.T) {
	w := &fakeWriter{}
	c, _ := newTestController(w)

	_, err := c.Start(context.Background(), StartRequest{StationID: "st1"})
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Empty(t, w.created, "no network call without a connector")
	require.Equal(t, StateNone, c.State())
}

func TestStartCreatesActiveSession(t *testing.T) {
	w := &fakeWriter{}
	c, _ := newTestController(w)

	handoff, err := c.Start(context.Background(), StartRequest{
		StationID:   "st1",
		Connectors:  []int{2},
		PowerRating: 50,
	})
	require.NoError(t, err)
	require.Equal(t, StateActive, c.State())

	require.Len(t, w.created, 1)
	created := w.created[0]
	require.Equal(t, "sess-1", created.ID)
	require.Equal(t, "st1", created.StationID)
	require.Equal(t, model.SessionActive, created.Status)
	require.Nil(t, created.EndTime, "active session has no end_time")
	require.NotNil(t, created.StartTime)
	require.Equal(t, 0.30, created.ChargeRate)

	require.Equal(t, Handoff{SessionID: "sess-1", ChargeRate: 0.30, Connector: 2, PowerRating: 50}, handoff)
}

func TestStartFailureStaysNone(t *testing.T) {
	w := &fakeWriter{createErr: &model.NetworkError{Op: "POST /charging_sessions", Err: errors.New("refused")}}
	c, _ := newTestController(w)

	_, err := c.Start(context.Background(), StartRequest{StationID: "st1", Connectors: []int{0}})
	require.Error(t, err)
	require.Equal(t, StateNone, c.State())
}

func TestStartTwiceRejected(t *testing.T) {
	w := &fakeWriter{}
	c, _ := newTestController(w)

	_, err := c.Start(context.Background(), StartRequest{StationID: "st1", Connectors: []int{0}})
	require.NoError(t, err)
	_, err = c.Start(context.Background(), StartRequest{StationID: "st1", Connectors: []int{0}})
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, w.created, 1)
}

func TestStopCompletesSession(t *testing.T) {
	w := &fakeWriter{}
	c, store := newTestController(w)

	_, err := c.Start(context.Background(), StartRequest{StationID: "st1", Connectors: []int{0}})
	require.NoError(t, err)

	// Prime the sessions cache so the stop-side invalidation is observable.
	calls := 0
	cache.Fetch(context.Background(), store, cache.KeySessions, time.Hour, func(context.Context) ([]model.ChargingSession, error) {
		calls++
		return nil, nil
	})
	require.Equal(t, 1, calls)

	sess, err := c.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateCompleted, c.State())
	require.Equal(t, model.SessionCompleted, sess.Status)
	require.NotNil(t, sess.EndTime)
	require.Equal(t, 0.30, sess.ChargeRate, "merge must preserve charge_rate")

	cache.Fetch(context.Background(), store, cache.KeySessions, time.Hour, func(context.Context) ([]model.ChargingSession, error) {
		calls++
		return nil, nil
	})
	require.Equal(t, 2, calls, "stop must invalidate the sessions key")
}

func TestStopFailureStaysActive(t *testing.T) {
	w := &fakeWriter{}
	c, _ := newTestController(w)
	_, err := c.Start(context.Background(), StartRequest{StationID: "st1", Connectors: []int{0}})
	require.NoError(t, err)

	w.updateErr = &model.NetworkError{Op: "PUT", Err: errors.New("timeout")}
	_, err = c.Stop(context.Background())
	require.Error(t, err)
	require.Equal(t, StateActive, c.State())

	// The retry succeeds once the backend recovers.
	w.updateErr = nil
	sess, err := c.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.SessionCompleted, sess.Status)
}

func TestStopAfterCompletedIsNoOp(t *testing.T) {
	w := &fakeWriter{}
	c, _ := newTestController(w)
	_, err := c.Start(context.Background(), StartRequest{StationID: "st1", Connectors: []int{0}})
	require.NoError(t, err)

	first, err := c.Stop(context.Background())
	require.NoError(t, err)
	second, err := c.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Len(t, w.updated, 1, "completed session must never be mutated again")
}

func TestStopWithoutStartRejected(t *testing.T) {
	w := &fakeWriter{}
	c, _ := newTestController(w)
	_, err := c.Stop(context.Background())
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestResumeActiveSession(t *testing.T) {
	w := &fakeWriter{}
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	w.persisted = model.ChargingSession{ID: "old", StationID: "st2", StartTime: &start, ChargeRate: 0.52, Status: model.SessionActive}

	c, _ := newTestController(w)
	require.NoError(t, c.Resume(w.persisted))
	require.Equal(t, StateActive, c.State())

	sess, err := c.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, "old", sess.ID)
	require.Equal(t, 0.52, sess.ChargeRate)
	require.Equal(t, model.SessionCompleted, sess.Status)
}

func TestResumeRejectsUnknownStatus(t *testing.T) {
	c, _ := newTestController(&fakeWriter{})
	err := c.Resume(model.ChargingSession{ID: "x", Status: "PAUSED"})
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
}

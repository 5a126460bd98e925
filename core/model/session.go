package model

import (
	"fmt"
	"math"
	"time"
)

// Charging session statuses.
const (
	SessionActive    = "ACTIVE"
	SessionCompleted = "COMPLETED"
)

// ChargingSession is one charging visit at a station. EndTime is nil
// while the session is still active.
type ChargingSession struct {
	ID         string     `json:"id"`
	StationID  string     `json:"station_id"`
	StartTime  *time.Time `json:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	ChargeRate float64    `json:"charge_rate"`
	TotalCost  float64    `json:"total_cost"`
	Status     string     `json:"status"`
}

// SessionUpdate carries the fields a completion writes back. The rest of
// the record is merged from the persisted copy before the update is sent.
type SessionUpdate struct {
	ID      string
	EndTime *time.Time
	Status  string
}

// DurationSeconds returns the whole seconds between start and end,
// rounded toward negative infinity. ok is false when either timestamp
// is missing or zero.
func (s ChargingSession) DurationSeconds() (int64, bool) {
	if s.StartTime == nil || s.EndTime == nil || s.StartTime.IsZero() || s.EndTime.IsZero() {
		return 0, false
	}
	return int64(math.Floor(s.EndTime.Sub(*s.StartTime).Seconds())), true
}

// DurationText renders the session duration for display, matching the
// backend's history format.
func (s ChargingSession) DurationText() string {
	secs, ok := s.DurationSeconds()
	if !ok {
		return "Duration NaN seconds"
	}
	return fmt.Sprintf("Duration %d seconds", secs)
}

package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func ts(t *testing.T, s string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return &parsed
}

func TestDurationText(t *testing.T) {
	cases := []struct {
		name  string
		start *time.Time
		end   *time.Time
		want  string
	}{
		{
			"ninety minutes",
			ts(t, "2025-01-01T10:00:00.000Z"),
			ts(t, "2025-01-01T11:30:00.000Z"),
			"Duration 5400 seconds",
		},
		{
			"negative when out of order",
			ts(t, "2025-01-01T11:30:00.000Z"),
			ts(t, "2025-01-01T10:00:00.000Z"),
			"Duration -5400 seconds",
		},
		{"missing end", ts(t, "2025-01-01T10:00:00.000Z"), nil, "Duration NaN seconds"},
		{"missing start", nil, ts(t, "2025-01-01T10:00:00.000Z"), "Duration NaN seconds"},
		{"missing both", nil, nil, "Duration NaN seconds"},
		{"zero timestamp", &time.Time{}, ts(t, "2025-01-01T10:00:00.000Z"), "Duration NaN seconds"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sess := ChargingSession{StartTime: tc.start, EndTime: tc.end}
			if got := sess.DurationText(); got != tc.want {
				t.Errorf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestDurationSecondsFloorsSubSecond(t *testing.T) {
	start := ts(t, "2025-01-01T10:00:00.000Z")
	end := start.Add(2500 * time.Millisecond)
	sess := ChargingSession{StartTime: start, EndTime: &end}
	secs, ok := sess.DurationSeconds()
	if !ok || secs != 2 {
		t.Errorf("got %d ok=%v, want 2", secs, ok)
	}
}

func TestActiveSessionOmitsEndTime(t *testing.T) {
	start := ts(t, "2025-01-01T10:00:00.000Z")
	sess := ChargingSession{ID: "s1", StationID: "st1", StartTime: start, Status: SessionActive}
	data, err := json.Marshal(sess)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "end_time") {
		t.Errorf("active session serialized an end_time: %s", data)
	}
	if !strings.Contains(string(data), `"status":"ACTIVE"`) {
		t.Errorf("missing status: %s", data)
	}
}

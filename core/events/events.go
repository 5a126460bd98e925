package events

import "github.com/plugpoint/plugpoint/core/model"

// SessionStarted is published when a charging session transitions to ACTIVE.
type SessionStarted struct {
	Session model.ChargingSession
}

// SessionCompleted is published when a charging session transitions to
// COMPLETED.
type SessionCompleted struct {
	Session model.ChargingSession
}

// StationsRefreshed is published after a successful stations fetch.
type StationsRefreshed struct {
	Stations []model.Station
}

// PriceUpdated is published after a fresh spot price sample.
type PriceUpdated struct {
	Price model.SpotPrice
}

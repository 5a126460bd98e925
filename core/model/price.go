package model

import "time"

// SpotPrice is the market rate for a kWh at a point in time.
type SpotPrice struct {
	Rate        float64   `json:"rate"`
	Currency    string    `json:"currency"`
	LastUpdated time.Time `json:"lastUpdated"`
}

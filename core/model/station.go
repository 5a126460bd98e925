// Package model holds the domain types exchanged with the charging
// backend and the errors raised while talking to it.
package model

import "strings"

// Station statuses as reported by the backend.
const (
	StatusAvailable    = "available"
	StatusOccupied     = "occupied"
	StatusOutOfService = "out_of_service"
)

// Geocode is a WGS84 coordinate pair.
type Geocode struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Connector describes one connector type offered by a station and how
// many physical plugs of that type it has.
type Connector struct {
	Power    float64 `json:"power"`
	Quantity int     `json:"quantity"`
}

// Station is a public charging station.
type Station struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Geocode     Geocode     `json:"geocode"`
	Address     string      `json:"address"`
	Status      string      `json:"status"`
	PowerRating float64     `json:"power_rating"`
	Distance    float64     `json:"distance"`
	Connectors  []Connector `json:"connectors"`
}

// Available reports whether new sessions may be started at the station.
func (s Station) Available() bool {
	return s.Status == StatusAvailable
}

// ConnectorSlots returns the number of connector types the station offers.
func (s Station) ConnectorSlots() int {
	return len(s.Connectors)
}

// FilterStations returns the stations whose name contains search,
// case-insensitively, preserving input order. An empty search returns
// the input slice unchanged.
func FilterStations(stations []Station, search string) []Station {
	if search == "" {
		return stations
	}
	needle := strings.ToLower(search)
	out := make([]Station, 0, len(stations))
	for _, st := range stations {
		if strings.Contains(strings.ToLower(st.Name), needle) {
			out = append(out, st)
		}
	}
	return out
}

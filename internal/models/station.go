package models

import (
	"log"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type StationStatus string

const (
	StatusActive            StationStatus = "active"
	StatusInactive          StationStatus = "inactive"
	StatusTemporaryClosed   StationStatus = "temporary_closed"
	StatusPermanentlyClosed StationStatus = "permanently_closed"
)

type OperatingHours struct {
	Open      string   `json:"open"`
	Close     string   `json:"close"`
	Is24Hours bool     `json:"is_24_hours"`
	DaysOpen  []string `json:"days_open,omitempty"`
}

type GasStation struct {
	StationId string         `json:"station_id"`
	Name      string         `json:"name"`
	Brand     string         `json:"brand"`
	City      string         `json:"city"`
	Province  string         `json:"province"`
	Address   string         `json:"address"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Amenities []string       `json:"amenities"`
	Status    StationStatus  `json:"status"`
	Hours     OperatingHours `json:"operating_hours"`
}

// StationWithDistance decorates a copy of a station with the computed
// great-circle distance (in km) from a reference point. The original
// station is never mutated.
type StationWithDistance struct {
	GasStation
	DistanceKm float64 `json:"distance_km"`
}

func (st *GasStation) ToTuple() []any {
	return []any{
		st.StationId,
		st.Name,
		st.Brand,
		st.City,
		st.Province,
		st.Address,
		st.Latitude,
		st.Longitude,
		toJSON(st.Amenities),
		string(st.Status),
		toJSON(st.Hours),
	}
}

func toJSON(v any) string {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		log.Fatalf("Error marshaling to JSON: %v", err)
	}
	return string(jsonBytes)
}

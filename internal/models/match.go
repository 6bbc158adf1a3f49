package models

// ConfidenceLevel is the coarse display bucket derived from a numeric
// confidence. Confidence itself is always the float64 in [0,1]; the two
// representations are never mixed in a single field.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "High"
	ConfidenceMedium ConfidenceLevel = "Medium"
	ConfidenceLow    ConfidenceLevel = "Low"
)

const (
	highConfidenceThreshold   = 0.8
	mediumConfidenceThreshold = 0.5
)

// LevelFor buckets a numeric confidence: High >= 0.8, Medium >= 0.5,
// Low otherwise. Monotonic in the confidence value.
func LevelFor(confidence float64) ConfidenceLevel {
	switch {
	case confidence >= highConfidenceThreshold:
		return ConfidenceHigh
	case confidence >= mediumConfidenceThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Match links one price observation to one candidate station. Created
// transiently per matching operation, never persisted.
type Match struct {
	Price      FuelPrice       `json:"price"`
	Station    *GasStation     `json:"station,omitempty"`
	Confidence float64         `json:"confidence"`
	Level      ConfidenceLevel `json:"confidence_level"`
}

// StationPriceMatch is a price observation attributed to a known station,
// as returned by the prices-for-station lookup.
type StationPriceMatch struct {
	Price           FuelPrice       `json:"price"`
	MatchConfidence float64         `json:"match_confidence"`
	ConfidenceLevel ConfidenceLevel `json:"confidence_level"`
}

// BestPriceItem is one row of the "best prices near me" view. StationId
// is nil when no station could be linked to the observation.
type BestPriceItem struct {
	FuelType    string  `json:"fuel_type"`
	Price       float64 `json:"price"`
	StationName string  `json:"station_name"`
	StationId   *string `json:"station_id,omitempty"`
	Area        string  `json:"area"`
	Rank        int     `json:"rank"`
}

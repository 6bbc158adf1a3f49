package models

import (
	"strconv"
	"strings"
	"time"
)

// FuelPrice is one weekly price observation. It carries only a loose
// textual area/brand description, not a station identifier; linking an
// observation to a concrete station is the matching engine's job.
type FuelPrice struct {
	PriceId     string    `json:"price_id"`
	FuelType    string    `json:"fuel_type"`
	CommonPrice float64   `json:"common_price"`
	MinPrice    float64   `json:"min_price"`
	MaxPrice    float64   `json:"max_price"`
	Area        string    `json:"area"`
	Region      string    `json:"region,omitempty"`
	Brand       string    `json:"brand"`
	WeekOf      string    `json:"week_of"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasValidPrices reports whether all three monetary fields are present
// and positive. An observation failing this check is never surfaced as a
// high-confidence match.
func (fp *FuelPrice) HasValidPrices() bool {
	return fp.CommonPrice > 0 && fp.MinPrice > 0 && fp.MaxPrice > 0
}

func (fp *FuelPrice) ToTuple() []any {
	return []any{
		fp.PriceId,
		fp.FuelType,
		fp.CommonPrice,
		fp.MinPrice,
		fp.MaxPrice,
		fp.Area,
		fp.Region,
		fp.Brand,
		fp.WeekOf,
		fp.UpdatedAt,
	}
}

// CompareWeeks orders two week identifiers of the form "YYYY-WW". Both
// fields are compared numerically so that unpadded upstream data
// ("2023-9") still sorts before "2023-44"; anything unparseable falls
// back to plain string comparison.
func CompareWeeks(a, b string) int {
	ay, aw, aok := splitWeek(a)
	by, bw, bok := splitWeek(b)
	if aok && bok {
		if ay != by {
			return ay - by
		}
		return aw - bw
	}
	return strings.Compare(a, b)
}

func splitWeek(week string) (year, wk int, ok bool) {
	parts := strings.SplitN(week, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	wk, err = strconv.Atoi(strings.TrimPrefix(parts[1], "W"))
	if err != nil {
		return 0, 0, false
	}
	return year, wk, true
}

package models

import "time"

type PriceStatistics struct {
	CheapestStations  map[string][]string       `json:"cheapest_stations"`
	LowestPrice       map[string]float64        `json:"lowest_price"`
	AveragePrice      map[string]float64        `json:"average_price"`
	HighestPrice      map[string]float64        `json:"highest_price"`
	PriceDistribution map[string]map[string]int `json:"price_distribution"`
	StandardDeviation map[string]float64        `json:"standard_deviation"`
	AreaDistribution  map[string]int            `json:"area_distribution"`
}

type BestPricesResponse struct {
	Week        string                     `json:"week_of,omitempty"`
	BestPrices  map[string][]BestPriceItem `json:"best_prices"`
	Statistics  *PriceStatistics           `json:"statistics,omitempty"`
	Attribution []string                   `json:"attribution"`
}

type StationPricesResponse struct {
	Station     GasStation          `json:"station"`
	Week        string              `json:"week_of,omitempty"`
	Prices      []StationPriceMatch `json:"prices"`
	Attribution []string            `json:"attribution"`
}

type PriceHistoryResponse struct {
	Area        string      `json:"area"`
	FuelType    string      `json:"fuel_type"`
	Prices      []FuelPrice `json:"prices"`
	Attribution []string    `json:"attribution"`
}

type StationSearchResponse struct {
	Results     []GasStation `json:"results"`
	Attribution []string     `json:"attribution"`
	LastUpdated *time.Time   `json:"last_updated,omitempty"`
}

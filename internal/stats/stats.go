package stats

import (
	"fmt"
	"math"

	"github.com/fuelwatch-ph/fuelwatch-api/internal/models"
)

// Derive summarises the grouped best-price view: lowest/average/highest
// price, standard deviation and a bucketed distribution per normalized
// fuel type, plus the stations carrying the lowest price and how the
// observations spread across areas.
func Derive(grouped map[string][]models.BestPriceItem, bucketSize int) *models.PriceStatistics {
	if bucketSize <= 0 {
		bucketSize = 3
	}
	stats := &models.PriceStatistics{
		CheapestStations:  make(map[string][]string),
		LowestPrice:       make(map[string]float64),
		AveragePrice:      make(map[string]float64),
		HighestPrice:      make(map[string]float64),
		PriceDistribution: make(map[string]map[string]int),
		StandardDeviation: make(map[string]float64),
		AreaDistribution:  make(map[string]int),
	}

	for fuelType, items := range grouped {
		if len(items) == 0 {
			continue
		}

		lowest := items[0].Price
		highest := items[0].Price
		sum := 0.0
		for _, item := range items {
			if item.Price < lowest {
				lowest = item.Price
			}
			if item.Price > highest {
				highest = item.Price
			}
			sum += item.Price
		}
		stats.LowestPrice[fuelType] = lowest
		stats.HighestPrice[fuelType] = highest

		for _, item := range items {
			if item.Price == lowest && item.StationName != "" {
				stats.CheapestStations[fuelType] = append(stats.CheapestStations[fuelType], item.StationName)
			}
		}

		avg := sum / float64(len(items))
		stats.AveragePrice[fuelType] = math.Round(avg*100) / 100

		if len(items) > 1 {
			variance := 0.0
			for _, item := range items {
				variance += math.Pow(item.Price-avg, 2)
			}
			variance /= float64(len(items))
			stats.StandardDeviation[fuelType] = math.Sqrt(variance)
		}

		stats.PriceDistribution[fuelType] = make(map[string]int)
		for _, item := range items {
			price := int(item.Price)
			bucketStart := (price / bucketSize) * bucketSize
			bucketEnd := bucketStart + bucketSize - 1
			bucketKey := fmt.Sprintf("%d-%d", bucketStart, bucketEnd)
			stats.PriceDistribution[fuelType][bucketKey]++
		}
	}

	for _, items := range grouped {
		for _, item := range items {
			if item.Area != "" {
				stats.AreaDistribution[item.Area]++
			}
		}
	}

	return stats
}

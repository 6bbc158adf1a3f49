// Package rank holds the pure sorting and filtering helpers that shape
// price and station collections for display. Every function is
// deterministic and non-mutating: inputs are copied, never reordered or
// decorated in place.
package rank

import (
	"math"
	"sort"
	"strings"

	"github.com/fuelwatch-ph/fuelwatch-api/internal/models"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// SortPricesByPrice returns a copy sorted by common price. Stable, so
// equal prices keep their input order.
func SortPricesByPrice(prices []models.FuelPrice, ascending bool) []models.FuelPrice {
	sorted := make([]models.FuelPrice, len(prices))
	copy(sorted, prices)
	sort.SliceStable(sorted, func(i, j int) bool {
		if ascending {
			return sorted[i].CommonPrice < sorted[j].CommonPrice
		}
		return sorted[i].CommonPrice > sorted[j].CommonPrice
	})
	return sorted
}

// SortPricesByBrand returns a copy sorted by brand, case-insensitive.
func SortPricesByBrand(prices []models.FuelPrice, ascending bool) []models.FuelPrice {
	sorted := make([]models.FuelPrice, len(prices))
	copy(sorted, prices)
	sort.SliceStable(sorted, func(i, j int) bool {
		a := strings.ToLower(sorted[i].Brand)
		b := strings.ToLower(sorted[j].Brand)
		if ascending {
			return a < b
		}
		return a > b
	})
	return sorted
}

// SortStationsByDistance orders stations by great-circle distance from the
// reference point, nearest first. Each result is a copy of the input
// station decorated with the computed distance; the input is untouched.
func SortStationsByDistance(stations []models.GasStation, lat, lon float64) []models.StationWithDistance {
	decorated := make([]models.StationWithDistance, len(stations))
	for i, station := range stations {
		decorated[i] = models.StationWithDistance{
			GasStation: station,
			DistanceKm: Haversine(lat, lon, station.Latitude, station.Longitude),
		}
	}
	sort.SliceStable(decorated, func(i, j int) bool {
		return decorated[i].DistanceKm < decorated[j].DistanceKm
	})
	return decorated
}

// FilterPricesByBrand keeps prices whose brand equals the filter,
// case-insensitive. An empty filter is a no-op.
func FilterPricesByBrand(prices []models.FuelPrice, brand string) []models.FuelPrice {
	if brand == "" {
		return prices
	}
	var filtered []models.FuelPrice
	for _, price := range prices {
		if strings.EqualFold(price.Brand, brand) {
			filtered = append(filtered, price)
		}
	}
	return filtered
}

// FilterPricesByFuelType keeps prices whose fuel type equals the filter,
// case-insensitive. An empty filter is a no-op.
func FilterPricesByFuelType(prices []models.FuelPrice, fuelType string) []models.FuelPrice {
	if fuelType == "" {
		return prices
	}
	var filtered []models.FuelPrice
	for _, price := range prices {
		if strings.EqualFold(price.FuelType, fuelType) {
			filtered = append(filtered, price)
		}
	}
	return filtered
}

// FilterStationsByStatus keeps stations with the given lifecycle status.
// An empty filter is a no-op.
func FilterStationsByStatus(stations []models.GasStation, status models.StationStatus) []models.GasStation {
	if status == "" {
		return stations
	}
	var filtered []models.GasStation
	for _, station := range stations {
		if strings.EqualFold(string(station.Status), string(status)) {
			filtered = append(filtered, station)
		}
	}
	return filtered
}

// FilterStationsByAmenity keeps stations with at least one amenity tag
// containing the filter as a case-insensitive substring. An empty filter
// is a no-op.
func FilterStationsByAmenity(stations []models.GasStation, amenity string) []models.GasStation {
	if amenity == "" {
		return stations
	}
	needle := strings.ToLower(amenity)
	var filtered []models.GasStation
	for _, station := range stations {
		for _, tag := range station.Amenities {
			if strings.Contains(strings.ToLower(tag), needle) {
				filtered = append(filtered, station)
				break
			}
		}
	}
	return filtered
}

// Haversine computes the great-circle distance between two points, in km.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

package matching

import (
	"strings"

	"github.com/fuelwatch-ph/fuelwatch-api/internal/brands"
	"github.com/fuelwatch-ph/fuelwatch-api/internal/models"
)

// StationIndex groups a snapshot of stations by city and by (normalized
// brand, city) for cheap candidate lookup during a matching pass. The
// index is immutable once built.
type StationIndex struct {
	byCity      map[string][]models.GasStation
	byBrandCity map[string][]models.GasStation
}

func NewStationIndex(normalizer *brands.Normalizer, stations []models.GasStation) *StationIndex {
	idx := &StationIndex{
		byCity:      make(map[string][]models.GasStation),
		byBrandCity: make(map[string][]models.GasStation),
	}

	for _, station := range stations {
		city := strings.ToLower(strings.TrimSpace(station.City))
		idx.byCity[city] = append(idx.byCity[city], station)

		key := brandCityKey(normalizer.NormalizeBrandName(station.Brand), city)
		idx.byBrandCity[key] = append(idx.byBrandCity[key], station)
	}

	return idx
}

// ByCity returns the stations recorded for a city (case-insensitive).
func (idx *StationIndex) ByCity(city string) []models.GasStation {
	return idx.byCity[strings.ToLower(strings.TrimSpace(city))]
}

// ByBrandAndCity returns the stations whose normalized brand and city both
// match. The brand argument is normalized before lookup, so raw bulletin
// text is acceptable.
func (idx *StationIndex) ByBrandAndCity(normalizer *brands.Normalizer, brand, city string) []models.GasStation {
	key := brandCityKey(normalizer.NormalizeBrandName(brand), strings.ToLower(strings.TrimSpace(city)))
	return idx.byBrandCity[key]
}

func brandCityKey(canonicalBrand, lowerCity string) string {
	return strings.ToLower(canonicalBrand) + "\x00" + lowerCity
}

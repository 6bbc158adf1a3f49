// Package matching links weekly price observations to concrete stations.
// An observation carries only a loose textual area/brand description, so
// the linkage is best-effort: exact brand+area matches first, then a
// weighted partial match, with a numeric confidence in [0,1] attached to
// every result.
package matching

import (
	"sort"
	"strings"

	"github.com/fuelwatch-ph/fuelwatch-api/internal/brands"
	"github.com/fuelwatch-ph/fuelwatch-api/internal/models"
)

const (
	// ExactMatchConfidence is assigned to a brand+area exact hit. No
	// partial credit on this path.
	ExactMatchConfidence = 0.9

	// acceptanceFloor is the minimum weighted score for a partial match
	// to be surfaced at all.
	acceptanceFloor = 0.4

	// invalidPriceCeiling caps the confidence of any match whose price
	// fails validation, landing it strictly inside the Low bucket while
	// preserving relative order among downgraded matches.
	invalidPriceCeiling = 0.45

	brandWeight = 0.6
	areaWeight  = 0.4
)

type Matcher struct {
	brands *brands.Normalizer
}

func NewMatcher(normalizer *brands.Normalizer) *Matcher {
	return &Matcher{brands: normalizer}
}

// FindExactMatches returns every station whose normalized brand equals the
// price's normalized brand and whose city equals the price's area
// (case-insensitive), each at ExactMatchConfidence.
func (m *Matcher) FindExactMatches(price models.FuelPrice, stations []models.GasStation) []models.Match {
	priceBrand := m.brands.NormalizeBrandName(price.Brand)

	var matches []models.Match
	for i := range stations {
		station := stations[i]
		if !strings.EqualFold(station.City, price.Area) {
			continue
		}
		if !strings.EqualFold(m.brands.NormalizeBrandName(station.Brand), priceBrand) {
			continue
		}
		matches = append(matches, models.Match{
			Price:      price,
			Station:    &station,
			Confidence: ExactMatchConfidence,
			Level:      models.LevelFor(ExactMatchConfidence),
		})
	}

	return matches
}

// FindBestMatchingStation scores every station by a weighted combination
// of brand similarity and area overlap, returning the single best
// candidate. ok is false when no station scores at or above the
// acceptance floor.
func (m *Matcher) FindBestMatchingStation(price models.FuelPrice, stations []models.GasStation) (station *models.GasStation, score float64, ok bool) {
	best := -1.0
	bestIdx := -1

	for i := range stations {
		brandScore := m.brands.CalculateBrandSimilarity(price.Brand, stations[i].Brand)
		areaScore := areaSimilarity(price.Area, stations[i].City)
		weighted := brandWeight*brandScore + areaWeight*areaScore
		if weighted > best {
			best = weighted
			bestIdx = i
		}
	}

	if bestIdx < 0 || best < acceptanceFloor {
		return nil, 0, false
	}

	candidate := stations[bestIdx]
	return &candidate, best, true
}

// FindExactStationMatches is the inverse direction: all price records
// whose area matches the station's city and whose normalized brand matches
// the station's.
func (m *Matcher) FindExactStationMatches(station models.GasStation, prices []models.FuelPrice) []models.FuelPrice {
	stationBrand := m.brands.NormalizeBrandName(station.Brand)

	var matches []models.FuelPrice
	for _, price := range prices {
		if !strings.EqualFold(price.Area, station.City) {
			continue
		}
		if !strings.EqualFold(m.brands.NormalizeBrandName(price.Brand), stationBrand) {
			continue
		}
		matches = append(matches, price)
	}

	return matches
}

// AdjustConfidenceForInvalidPrice caps confidence into the Low bucket when
// any of the price's monetary fields is missing or non-positive. Runs as
// the last step before a match is surfaced, regardless of how strong the
// textual match was.
func (m *Matcher) AdjustConfidenceForInvalidPrice(confidence float64, price models.FuelPrice) float64 {
	if price.HasValidPrices() {
		return confidence
	}
	return min(confidence, invalidPriceCeiling)
}

// FindMatchingStations is the aggregate entry point: exact matches first,
// best partial match as fallback, invalid-price adjustment last. The
// result is ordered by descending confidence. An empty station list
// yields an empty result, not an error.
func (m *Matcher) FindMatchingStations(price models.FuelPrice, stations []models.GasStation) []models.Match {
	if len(stations) == 0 {
		return nil
	}

	matches := m.FindExactMatches(price, stations)
	if len(matches) == 0 {
		if station, score, ok := m.FindBestMatchingStation(price, stations); ok {
			matches = append(matches, models.Match{
				Price:      price,
				Station:    station,
				Confidence: score,
			})
		}
	}

	for i := range matches {
		matches[i].Confidence = m.AdjustConfidenceForInvalidPrice(matches[i].Confidence, price)
		matches[i].Level = models.LevelFor(matches[i].Confidence)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})

	return matches
}

// areaSimilarity scores the textual overlap between a bulletin area and a
// station city: 1.0 equal, 0.7 containment, 0.4 a shared word, 0 otherwise.
func areaSimilarity(area, city string) float64 {
	a := strings.ToLower(strings.TrimSpace(area))
	c := strings.ToLower(strings.TrimSpace(city))
	if a == "" || c == "" {
		return 0
	}
	if a == c {
		return 1.0
	}
	if strings.Contains(a, c) || strings.Contains(c, a) {
		return 0.7
	}
	for _, word := range strings.Fields(a) {
		if len(word) <= 2 {
			continue
		}
		for _, other := range strings.Fields(c) {
			if word == other {
				return 0.4
			}
		}
	}
	return 0
}

// Package connector orchestrates the matching engine against the external
// query collaborators: resolve the observation week, fetch prices, link
// them to stations, and shape the grouped results. It is a best-effort
// linkage service, not a transactional one: any collaborator failure
// degrades to an empty result at the boundary of the operation that made
// the call, and is never propagated to the caller.
package connector

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/fuelwatch-ph/fuelwatch-api/internal/brands"
	"github.com/fuelwatch-ph/fuelwatch-api/internal/matching"
	"github.com/fuelwatch-ph/fuelwatch-api/internal/models"
	"github.com/fuelwatch-ph/fuelwatch-api/internal/rank"
)

// PriceSource is the persistence collaborator contract. A failure from
// any method is treated identically to "no data". LatestWeek returns ""
// when no observation week exists yet.
type PriceSource interface {
	LatestWeek(ctx context.Context) (string, error)
	PricesForWeek(ctx context.Context, week string) ([]models.FuelPrice, error)
	RegionPricesForWeek(ctx context.Context, week string) ([]models.FuelPrice, error)
	HistoricalPrices(ctx context.Context, area, fuelType string) ([]models.FuelPrice, error)
}

// FuelTypeNormalizer maps a raw fuel-type label to the canonical grouping
// key.
type FuelTypeNormalizer func(raw string) string

type Connector struct {
	source        PriceSource
	matcher       *matching.Matcher
	brands        *brands.Normalizer
	normalizeFuel FuelTypeNormalizer
}

// New wires the connector against explicit collaborators; there is no
// package-level client state.
func New(source PriceSource, normalizer *brands.Normalizer, normalizeFuel FuelTypeNormalizer) *Connector {
	return &Connector{
		source:        source,
		matcher:       matching.NewMatcher(normalizer),
		brands:        normalizer,
		normalizeFuel: normalizeFuel,
	}
}

// Matcher exposes the underlying matcher for callers that run their own
// matching passes over externally supplied snapshots.
func (c *Connector) Matcher() *matching.Matcher {
	return c.matcher
}

// PricesForStation returns the latest week's observations linked to a
// single station, each with its numeric confidence and derived level.
// No resolvable week, or any collaborator failure, yields an empty slice.
func (c *Connector) PricesForStation(ctx context.Context, station models.GasStation) []models.StationPriceMatch {
	week := c.latestWeek(ctx)
	if week == "" {
		return nil
	}

	prices, err := c.source.PricesForWeek(ctx, week)
	if err != nil {
		log.Printf("failed to fetch prices for week %s: %v", week, err)
		return nil
	}

	candidates := []models.GasStation{station}
	var results []models.StationPriceMatch
	for _, price := range prices {
		matches := c.matcher.FindMatchingStations(price, candidates)
		if len(matches) == 0 {
			continue
		}
		results = append(results, models.StationPriceMatch{
			Price:           price,
			MatchConfidence: matches[0].Confidence,
			ConfidenceLevel: matches[0].Level,
		})
	}

	return results
}

// BestPricesForLocation links the latest week's region-scoped observations
// to the candidate stations and groups the results by normalized fuel
// type, cheapest first within each group. When an observation matches
// several stations exactly, the one nearest to (lat, lon) wins.
// Observations failing price validation are excluded outright; a zeroed
// bulletin row must never rank as a best price. An empty candidate set or
// unresolvable week yields an empty mapping.
func (c *Connector) BestPricesForLocation(ctx context.Context, lat, lon float64, stations []models.GasStation) map[string][]models.BestPriceItem {
	grouped := make(map[string][]models.BestPriceItem)
	if len(stations) == 0 {
		return grouped
	}

	week := c.latestWeek(ctx)
	if week == "" {
		return grouped
	}

	prices, err := c.source.RegionPricesForWeek(ctx, week)
	if err != nil {
		log.Printf("failed to fetch region prices for week %s: %v", week, err)
		return grouped
	}

	idx := matching.NewStationIndex(c.brands, stations)

	for _, price := range prices {
		if !price.HasValidPrices() {
			continue
		}
		station := c.linkStation(price, idx, stations, lat, lon)

		item := models.BestPriceItem{
			FuelType: c.normalizeFuel(price.FuelType),
			Price:    price.CommonPrice,
			Area:     price.Area,
		}
		if station != nil {
			item.StationName = station.Name
			item.StationId = &station.StationId
		}
		grouped[item.FuelType] = append(grouped[item.FuelType], item)
	}

	for fuelType, items := range grouped {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Price < items[j].Price
		})
		for i := range items {
			items[i].Rank = i + 1
		}
		grouped[fuelType] = items
	}

	return grouped
}

// MatchPricesWithStations runs the bulk linkage: the best match per price,
// grouped by normalized fuel type. Empty inputs yield an empty mapping,
// not an error.
func (c *Connector) MatchPricesWithStations(prices []models.FuelPrice, stations []models.GasStation) map[string][]models.Match {
	grouped := make(map[string][]models.Match)

	for _, price := range prices {
		matches := c.matcher.FindMatchingStations(price, stations)
		if len(matches) == 0 {
			continue
		}
		key := c.normalizeFuel(price.FuelType)
		grouped[key] = append(grouped[key], matches[0])
	}

	return grouped
}

// PriceHistory returns all historical observations for an area/fuel-type
// pair, filtered on the normalized fuel type and sorted by week
// descending (most recent first). A blank area or collaborator failure
// yields an empty slice.
func (c *Connector) PriceHistory(ctx context.Context, area, fuelType string) []models.FuelPrice {
	if strings.TrimSpace(area) == "" {
		return nil
	}

	records, err := c.source.HistoricalPrices(ctx, area, fuelType)
	if err != nil {
		log.Printf("failed to fetch historical prices for %s/%s: %v", area, fuelType, err)
		return nil
	}

	key := c.normalizeFuel(fuelType)
	var history []models.FuelPrice
	for _, record := range records {
		if c.normalizeFuel(record.FuelType) == key {
			history = append(history, record)
		}
	}

	sort.SliceStable(history, func(i, j int) bool {
		return models.CompareWeeks(history[i].WeekOf, history[j].WeekOf) > 0
	})

	return history
}

func (c *Connector) latestWeek(ctx context.Context) string {
	week, err := c.source.LatestWeek(ctx)
	if err != nil {
		log.Printf("failed to resolve latest week: %v", err)
		return ""
	}
	return week
}

// linkStation picks the station for one observation: exact brand+city
// candidates from the index first (nearest wins), then the generic
// matching fallback over the full candidate set.
func (c *Connector) linkStation(price models.FuelPrice, idx *matching.StationIndex, stations []models.GasStation, lat, lon float64) *models.GasStation {
	if candidates := idx.ByBrandAndCity(c.brands, price.Brand, price.Area); len(candidates) > 0 {
		exact := c.matcher.FindExactMatches(price, candidates)
		if len(exact) == 1 {
			return exact[0].Station
		}
		if len(exact) > 1 {
			pool := make([]models.GasStation, 0, len(exact))
			for _, match := range exact {
				pool = append(pool, *match.Station)
			}
			nearest := rank.SortStationsByDistance(pool, lat, lon)[0].GasStation
			return &nearest
		}
	}

	matches := c.matcher.FindMatchingStations(price, stations)
	if len(matches) == 0 {
		return nil
	}
	return matches[0].Station
}

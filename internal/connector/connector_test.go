package connector

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelwatch-ph/fuelwatch-api/internal"
	"github.com/fuelwatch-ph/fuelwatch-api/internal/brands"
	"github.com/fuelwatch-ph/fuelwatch-api/internal/fueltype"
	"github.com/fuelwatch-ph/fuelwatch-api/internal/models"
)

type fakeSource struct {
	week       string
	weekErr    error
	prices     []models.FuelPrice
	pricesErr  error
	region     []models.FuelPrice
	regionErr  error
	history    []models.FuelPrice
	historyErr error
}

func (f *fakeSource) LatestWeek(context.Context) (string, error) {
	return f.week, f.weekErr
}

func (f *fakeSource) PricesForWeek(context.Context, string) ([]models.FuelPrice, error) {
	return f.prices, f.pricesErr
}

func (f *fakeSource) RegionPricesForWeek(context.Context, string) ([]models.FuelPrice, error) {
	return f.region, f.regionErr
}

func (f *fakeSource) HistoricalPrices(context.Context, string, string) ([]models.FuelPrice, error) {
	return f.history, f.historyErr
}

func newConnector(t *testing.T, source PriceSource) *Connector {
	t.Helper()
	normalizer, err := brands.NewNormalizer()
	require.NoError(t, err)
	return New(source, normalizer, fueltype.Normalize)
}

func price(id, fuelType, brand, area string, common float64, week string) models.FuelPrice {
	return models.FuelPrice{
		PriceId:     id,
		FuelType:    fuelType,
		CommonPrice: common,
		MinPrice:    common - 1,
		MaxPrice:    common + 1,
		Area:        area,
		Brand:       brand,
		WeekOf:      week,
		UpdatedAt:   time.Now().UTC(),
	}
}

func station(id, name, brand, city string) models.GasStation {
	return models.GasStation{
		StationId: id,
		Name:      name,
		Brand:     brand,
		City:      city,
		Status:    models.StatusActive,
	}
}

func TestPricesForStation(t *testing.T) {
	shellManila := station("s1", "Shell Station", "Shell", "Manila")

	t.Run("matches the week's observations against one station", func(t *testing.T) {
		conn := newConnector(t, &fakeSource{
			week: "2023-44",
			prices: []models.FuelPrice{
				price("p1", "RON 95", "Shell", "Manila", 62.50, "2023-44"),
				price("p2", "Diesel", "Petron", "Davao", 58.20, "2023-44"),
			},
		})

		results := conn.PricesForStation(context.Background(), shellManila)
		require.NotEmpty(t, results)
		assert.Equal(t, "p1", results[0].Price.PriceId)
		assert.GreaterOrEqual(t, results[0].MatchConfidence, 0.9)
		assert.Equal(t, models.ConfidenceHigh, results[0].ConfidenceLevel)
	})

	t.Run("no resolvable week degrades to empty", func(t *testing.T) {
		conn := newConnector(t, &fakeSource{week: ""})
		assert.Empty(t, conn.PricesForStation(context.Background(), shellManila))
	})

	t.Run("collaborator failure degrades to empty", func(t *testing.T) {
		conn := newConnector(t, &fakeSource{weekErr: errors.New("storage offline")})
		assert.Empty(t, conn.PricesForStation(context.Background(), shellManila))

		conn = newConnector(t, &fakeSource{week: "2023-44", pricesErr: errors.New("fetch failed")})
		assert.Empty(t, conn.PricesForStation(context.Background(), shellManila))
	})
}

func TestBestPricesForLocation(t *testing.T) {
	stations := []models.GasStation{
		station("s1", "Shell Station", "Shell", "Manila"),
		station("s2", "Petron Station", "Petron", "Manila"),
	}

	t.Run("groups by normalized fuel type, cheapest first with ranks", func(t *testing.T) {
		conn := newConnector(t, &fakeSource{
			week: "2023-44",
			region: []models.FuelPrice{
				price("p1", "Gasoline (RON 95)", "Shell", "Manila", 62.50, "2023-44"),
				price("p2", "RON 95", "Petron", "Manila", 61.80, "2023-44"),
				price("p3", "Diesel", "Shell", "Manila", 58.90, "2023-44"),
			},
		})

		best := conn.BestPricesForLocation(context.Background(), 14.5995, 120.9842, stations)
		require.Len(t, best, 2)

		ron95 := best["ron 95"]
		require.Len(t, ron95, 2)
		assert.Equal(t, 61.80, ron95[0].Price)
		assert.Equal(t, 1, ron95[0].Rank)
		require.NotNil(t, ron95[0].StationId)
		assert.Equal(t, "s2", *ron95[0].StationId)
		assert.Equal(t, 62.50, ron95[1].Price)
		assert.Equal(t, 2, ron95[1].Rank)

		diesel := best["diesel"]
		require.Len(t, diesel, 1)
		assert.Equal(t, "Shell Station", diesel[0].StationName)
	})

	t.Run("unlinkable observation keeps a nil station id", func(t *testing.T) {
		conn := newConnector(t, &fakeSource{
			week: "2023-44",
			region: []models.FuelPrice{
				price("p1", "RON 95", "zzq", "qqz", 60.00, "2023-44"),
			},
		})

		best := conn.BestPricesForLocation(context.Background(), 14.5995, 120.9842, stations)
		require.Len(t, best["ron 95"], 1)
		assert.Nil(t, best["ron 95"][0].StationId)
		assert.Empty(t, best["ron 95"][0].StationName)
	})

	t.Run("invalid observations are excluded, never rank-1 at zero", func(t *testing.T) {
		zeroed := models.FuelPrice{
			PriceId: "p0", FuelType: "RON 95", Brand: "Shell", Area: "Manila",
			WeekOf: "2023-44", UpdatedAt: time.Now().UTC(),
		}
		conn := newConnector(t, &fakeSource{
			week: "2023-44",
			region: []models.FuelPrice{
				zeroed,
				price("p1", "RON 95", "Shell", "Manila", 62.50, "2023-44"),
			},
		})

		best := conn.BestPricesForLocation(context.Background(), 14.5995, 120.9842, stations)
		ron95 := best["ron 95"]
		require.Len(t, ron95, 1)
		assert.Equal(t, 62.50, ron95[0].Price)
		assert.Equal(t, 1, ron95[0].Rank)
	})

	t.Run("empty candidate stations yields empty mapping", func(t *testing.T) {
		conn := newConnector(t, &fakeSource{week: "2023-44"})
		assert.Empty(t, conn.BestPricesForLocation(context.Background(), 14.5995, 120.9842, nil))
	})

	t.Run("no latest week yields empty mapping", func(t *testing.T) {
		conn := newConnector(t, &fakeSource{week: ""})
		assert.Empty(t, conn.BestPricesForLocation(context.Background(), 14.5995, 120.9842, stations))
	})

	t.Run("region fetch failure yields empty mapping", func(t *testing.T) {
		conn := newConnector(t, &fakeSource{week: "2023-44", regionErr: errors.New("boom")})
		assert.Empty(t, conn.BestPricesForLocation(context.Background(), 14.5995, 120.9842, stations))
	})
}

func TestBestPricesFromBulletinWithUnparseableRows(t *testing.T) {
	// An "n/a" bulletin row survives parsing with zeroed price fields; it
	// must not surface as the cheapest observation downstream.
	const bulletin = `<table class="price-bulletin" data-week-of="2023-44"><tbody>
	  <tr><td>Manila</td><td>Shell</td><td>RON 95</td><td>62.50</td><td>61.00</td><td>64.00</td></tr>
	  <tr><td>Makati</td><td>Caltex</td><td>RON 95</td><td>n/a</td><td>n/a</td><td>n/a</td></tr>
	</tbody></table>`

	parsed, err := internal.ParseBulletin(strings.NewReader(bulletin), "NCR", time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	require.False(t, parsed[1].HasValidPrices())

	conn := newConnector(t, &fakeSource{week: "2023-44", region: parsed})
	stations := []models.GasStation{station("s1", "Shell Station", "Shell", "Manila")}

	best := conn.BestPricesForLocation(context.Background(), 14.5995, 120.9842, stations)
	ron95 := best["ron 95"]
	require.Len(t, ron95, 1)
	assert.Greater(t, ron95[0].Price, 0.0)
	assert.Equal(t, 62.50, ron95[0].Price)
	assert.Equal(t, 1, ron95[0].Rank)
	assert.Equal(t, "Manila", ron95[0].Area)
}

func TestMatchPricesWithStations(t *testing.T) {
	t.Run("empty inputs yield an empty mapping, not an error", func(t *testing.T) {
		conn := newConnector(t, &fakeSource{})
		grouped := conn.MatchPricesWithStations(nil, nil)
		require.NotNil(t, grouped)
		assert.Empty(t, grouped)
	})

	t.Run("a matching pair lands under the normalized fuel type", func(t *testing.T) {
		conn := newConnector(t, &fakeSource{})
		prices := []models.FuelPrice{
			price("p1", "Premium Gasoline", "Shell", "Manila", 61.75, "2023-44"),
		}
		stations := []models.GasStation{
			station("s1", "Shell Station", "Shell", "Manila"),
		}

		grouped := conn.MatchPricesWithStations(prices, stations)
		require.Len(t, grouped, 1)

		matches, ok := grouped["premium gasoline"]
		require.True(t, ok, "expected the normalized fuel type as grouping key")
		require.Len(t, matches, 1)
		assert.Equal(t, "s1", matches[0].Station.StationId)
		assert.GreaterOrEqual(t, matches[0].Confidence, 0.9)
		assert.Equal(t, models.ConfidenceHigh, matches[0].Level)
	})

	t.Run("keeps only the best match per price", func(t *testing.T) {
		conn := newConnector(t, &fakeSource{})
		prices := []models.FuelPrice{
			price("p1", "Diesel", "Shell", "Manila", 58.90, "2023-44"),
		}
		stations := []models.GasStation{
			station("s1", "Shell A", "Shell", "Manila"),
			station("s2", "Shell B", "Shell", "Manila"),
		}

		grouped := conn.MatchPricesWithStations(prices, stations)
		require.Len(t, grouped["diesel"], 1)
	})
}

func TestPriceHistory(t *testing.T) {
	t.Run("sorted by week descending", func(t *testing.T) {
		conn := newConnector(t, &fakeSource{
			history: []models.FuelPrice{
				price("p1", "RON 95", "Shell", "Manila", 62.50, "2023-43"),
				price("p2", "RON 95", "Shell", "Manila", 63.10, "2023-44"),
				price("p3", "RON 95", "Shell", "Manila", 61.90, "2023-9"),
			},
		})

		history := conn.PriceHistory(context.Background(), "Manila", "RON 95")
		require.Len(t, history, 3)
		assert.Equal(t, "2023-44", history[0].WeekOf)
		assert.Equal(t, "2023-43", history[1].WeekOf)
		assert.Equal(t, "2023-9", history[2].WeekOf)
	})

	t.Run("filters on the normalized fuel type", func(t *testing.T) {
		conn := newConnector(t, &fakeSource{
			history: []models.FuelPrice{
				price("p1", "Gasoline (RON 95)", "Shell", "Manila", 62.50, "2023-44"),
				price("p2", "Diesel", "Shell", "Manila", 58.20, "2023-44"),
			},
		})

		history := conn.PriceHistory(context.Background(), "Manila", "RON 95")
		require.Len(t, history, 1)
		assert.Equal(t, "p1", history[0].PriceId)
	})

	t.Run("blank area or failure degrades to empty", func(t *testing.T) {
		conn := newConnector(t, &fakeSource{history: []models.FuelPrice{price("p1", "RON 95", "Shell", "Manila", 62.50, "2023-44")}})
		assert.Empty(t, conn.PriceHistory(context.Background(), "  ", "RON 95"))

		conn = newConnector(t, &fakeSource{historyErr: errors.New("boom")})
		assert.Empty(t, conn.PriceHistory(context.Background(), "Manila", "RON 95"))
	})
}

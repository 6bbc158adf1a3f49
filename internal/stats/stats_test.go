package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelwatch-ph/fuelwatch-api/internal/models"
)

func TestDerive(t *testing.T) {
	s1 := "s1"
	s2 := "s2"
	grouped := map[string][]models.BestPriceItem{
		"ron 95": {
			{FuelType: "ron 95", Price: 61.80, StationName: "Petron Station", StationId: &s2, Area: "Manila", Rank: 1},
			{FuelType: "ron 95", Price: 62.50, StationName: "Shell Station", StationId: &s1, Area: "Makati", Rank: 2},
			{FuelType: "ron 95", Price: 64.10, Area: "Pasig", Rank: 3},
		},
		"diesel": {
			{FuelType: "diesel", Price: 58.90, StationName: "Shell Station", StationId: &s1, Area: "Manila", Rank: 1},
		},
	}

	stats := Derive(grouped, 3)
	require.NotNil(t, stats)

	t.Run("lowest, average, highest per fuel type", func(t *testing.T) {
		assert.Equal(t, 61.80, stats.LowestPrice["ron 95"])
		assert.Equal(t, 64.10, stats.HighestPrice["ron 95"])
		assert.InDelta(t, 62.80, stats.AveragePrice["ron 95"], 0.01)
		assert.Equal(t, 58.90, stats.LowestPrice["diesel"])
	})

	t.Run("cheapest stations, skipping unlinked observations", func(t *testing.T) {
		assert.Equal(t, []string{"Petron Station"}, stats.CheapestStations["ron 95"])
	})

	t.Run("standard deviation only when more than one observation", func(t *testing.T) {
		assert.Greater(t, stats.StandardDeviation["ron 95"], 0.0)
		_, ok := stats.StandardDeviation["diesel"]
		assert.False(t, ok)
	})

	t.Run("price distribution buckets", func(t *testing.T) {
		dist := stats.PriceDistribution["ron 95"]
		require.NotNil(t, dist)
		assert.Equal(t, 2, dist["60-62"])
		assert.Equal(t, 1, dist["63-65"])
	})

	t.Run("area distribution counts all observations", func(t *testing.T) {
		assert.Equal(t, 2, stats.AreaDistribution["Manila"])
		assert.Equal(t, 1, stats.AreaDistribution["Makati"])
	})

	t.Run("empty input yields empty maps", func(t *testing.T) {
		empty := Derive(map[string][]models.BestPriceItem{}, 3)
		assert.Empty(t, empty.LowestPrice)
		assert.Empty(t, empty.AreaDistribution)
	})
}

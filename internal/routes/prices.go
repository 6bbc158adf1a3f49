package routes

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fuelwatch-ph/fuelwatch-api/internal"
	"github.com/fuelwatch-ph/fuelwatch-api/internal/connector"
	"github.com/fuelwatch-ph/fuelwatch-api/internal/models"
	"github.com/fuelwatch-ph/fuelwatch-api/internal/rank"
	"github.com/fuelwatch-ph/fuelwatch-api/internal/stats"
)

const MAX_RADIUS_KM = 50.0
const DEFAULT_RADIUS_KM = 5.0

// StationSearch is the narrow capability the search route depends on,
// rather than the full repository surface.
type StationSearch interface {
	SearchStations(ctx context.Context, query string) ([]models.GasStation, error)
}

// BestPrices handles GET /best?lat=&lon=&radius_km=, returning grouped
// best prices per normalized fuel type for the stations around a point.
func BestPrices(repo internal.FuelDataRepository, conn *connector.Connector) func(c *gin.Context) {
	return func(c *gin.Context) {
		lat, lon, err := parseLatLon(c.Query("lat"), c.Query("lon"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		radius := DEFAULT_RADIUS_KM
		if radiusStr := c.Query("radius_km"); radiusStr != "" {
			radius, err = strconv.ParseFloat(radiusStr, 64)
			if err != nil || radius <= 0 || radius > MAX_RADIUS_KM {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("radius_km must be in (0, %.0f]", MAX_RADIUS_KM)})
				return
			}
		}

		ctx := c.Request.Context()
		stations, err := repo.StationsWithin(ctx, boundingBox(lat, lon, radius))
		if err != nil {
			log.Printf("error while fetching stations: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal server error occurred"})
			return
		}

		best := conn.BestPricesForLocation(ctx, lat, lon, stations)

		week, err := repo.LatestWeek(ctx)
		if err != nil {
			week = ""
		}

		c.JSON(http.StatusOK, models.BestPricesResponse{
			Week:        week,
			BestPrices:  best,
			Statistics:  stats.Derive(best, 3),
			Attribution: internal.ATTRIBUTION,
		})
	}
}

// StationPrices handles GET /stations/:id, returning the latest week's
// observations linked to one station, with match confidence.
func StationPrices(repo internal.FuelDataRepository, conn *connector.Connector) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		station, err := repo.StationById(ctx, c.Param("id"))
		if err != nil {
			log.Printf("error while fetching station: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal server error occurred"})
			return
		}
		if station == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "station not found"})
			return
		}

		week, err := repo.LatestWeek(ctx)
		if err != nil {
			week = ""
		}

		c.JSON(http.StatusOK, models.StationPricesResponse{
			Station:     *station,
			Week:        week,
			Prices:      conn.PricesForStation(ctx, *station),
			Attribution: internal.ATTRIBUTION,
		})
	}
}

// PriceHistory handles GET /history?area=&fuel_type=, returning the
// historical series for an area/fuel-type pair, most recent week first.
func PriceHistory(conn *connector.Connector) func(c *gin.Context) {
	return func(c *gin.Context) {
		area := c.Query("area")
		fuelType := c.Query("fuel_type")
		if area == "" || fuelType == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "area and fuel_type query parameters are required"})
			return
		}

		c.JSON(http.StatusOK, models.PriceHistoryResponse{
			Area:        area,
			FuelType:    fuelType,
			Prices:      conn.PriceHistory(c.Request.Context(), area, fuelType),
			Attribution: internal.ATTRIBUTION,
		})
	}
}

// SearchStations handles GET /search?q= with optional status= and
// amenity= filters.
func SearchStations(search StationSearch, client internal.FuelDataClient) func(c *gin.Context) {
	return func(c *gin.Context) {
		query := c.Query("q")
		if len(query) < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "q must be at least 2 characters"})
			return
		}

		results, err := search.SearchStations(c.Request.Context(), query)
		if err != nil {
			log.Printf("error while searching stations: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal server error occurred"})
			return
		}

		results = rank.FilterStationsByStatus(results, models.StationStatus(c.Query("status")))
		results = rank.FilterStationsByAmenity(results, c.Query("amenity"))

		c.JSON(http.StatusOK, models.StationSearchResponse{
			Results:     results,
			Attribution: internal.ATTRIBUTION,
			LastUpdated: client.LastUpdated(),
		})
	}
}

func parseLatLon(latStr, lonStr string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("invalid lat value '%s'", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("invalid lon value '%s'", lonStr)
	}
	return lat, lon, nil
}

// boundingBox converts a point + radius into [minLon, minLat, maxLon,
// maxLat] for the station lookup.
func boundingBox(lat, lon, radiusKm float64) []float64 {
	dLat := radiusKm / 111.32
	dLon := radiusKm / (111.32 * math.Cos(lat*math.Pi/180.0))
	return []float64{lon - dLon, lat - dLat, lon + dLon, lat + dLat}
}

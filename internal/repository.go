package internal

import (
	"context"
	"database/sql"
	_ "embed"
	"log"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kofalt/go-memoize"
	"github.com/tavsec/gin-healthcheck/checks"

	"github.com/fuelwatch-ph/fuelwatch-api/internal/models"
)

//go:embed sql/insert_station.sql
var insertStationSQL string

//go:embed sql/insert_price.sql
var insertPriceSQL string

//go:embed sql/latest_week.sql
var latestWeekSQL string

//go:embed sql/prices_for_week.sql
var pricesForWeekSQL string

//go:embed sql/region_prices_for_week.sql
var regionPricesForWeekSQL string

//go:embed sql/historical_prices.sql
var historicalPricesSQL string

//go:embed sql/stations_within.sql
var stationsWithinSQL string

//go:embed sql/station_by_id.sql
var stationByIdSQL string

//go:embed sql/search_stations.sql
var searchStationsSQL string

// FuelDataRepository is the persistence collaborator: weekly price
// observations and station records, plus the batched upserts used by the
// feed importer. The query methods double as the connector's PriceSource
// and the routes' StationSearch capabilities.
type FuelDataRepository interface {
	LatestWeek(ctx context.Context) (string, error)
	PricesForWeek(ctx context.Context, week string) ([]models.FuelPrice, error)
	RegionPricesForWeek(ctx context.Context, week string) ([]models.FuelPrice, error)
	HistoricalPrices(ctx context.Context, area, fuelType string) ([]models.FuelPrice, error)

	StationsWithin(ctx context.Context, boundingBox []float64) ([]models.GasStation, error)
	StationById(ctx context.Context, stationId string) (*models.GasStation, error)
	SearchStations(ctx context.Context, query string) ([]models.GasStation, error)

	InsertStations(batch []models.GasStation) (int, error)
	InsertPrices(batch []models.FuelPrice) (int, error)

	Check() checks.Check
	Close() error
}

type sqliteRepository struct {
	db     *sql.DB
	region string
	memo   *memoize.Memoizer
}

// NewFuelDataRepository wraps db. The region name scopes
// RegionPricesForWeek; the upstream port takes no region argument, so the
// scope is fixed per deployment.
func NewFuelDataRepository(db *sql.DB, region string) FuelDataRepository {
	return &sqliteRepository{
		db:     db,
		region: region,
		memo:   memoize.NewMemoizer(90*time.Second, 10*time.Minute),
	}
}

// LatestWeek returns the most recent observation week, or "" when no
// prices have been imported yet. Memoized for a short TTL since every
// read path starts here.
func (repo *sqliteRepository) LatestWeek(ctx context.Context) (string, error) {
	week, err, _ := repo.memo.Memoize("latest-week", func() (any, error) {
		var week string
		if err := repo.db.QueryRowContext(ctx, latestWeekSQL).Scan(&week); err != nil {
			return "", errors.Wrap(err, "failed to resolve latest week")
		}
		return week, nil
	})
	if err != nil {
		return "", err
	}
	return week.(string), nil
}

func (repo *sqliteRepository) PricesForWeek(ctx context.Context, week string) ([]models.FuelPrice, error) {
	return repo.queryPrices(ctx, pricesForWeekSQL, week)
}

func (repo *sqliteRepository) RegionPricesForWeek(ctx context.Context, week string) ([]models.FuelPrice, error) {
	return repo.queryPrices(ctx, regionPricesForWeekSQL, week, repo.region)
}

func (repo *sqliteRepository) HistoricalPrices(ctx context.Context, area, fuelType string) ([]models.FuelPrice, error) {
	// Fuel-type filtering happens in the connector against normalized
	// labels; the raw column is free text and not reliable to filter on.
	return repo.queryPrices(ctx, historicalPricesSQL, area)
}

func (repo *sqliteRepository) queryPrices(ctx context.Context, query string, args ...any) ([]models.FuelPrice, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute price query")
	}
	defer closeRows(rows)

	var prices []models.FuelPrice
	for rows.Next() {
		var price models.FuelPrice
		if err := rows.Scan(
			&price.PriceId, &price.FuelType, &price.CommonPrice, &price.MinPrice, &price.MaxPrice,
			&price.Area, &price.Region, &price.Brand, &price.WeekOf, &price.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan price row")
		}
		prices = append(prices, price)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating over price rows")
	}

	return prices, nil
}

func (repo *sqliteRepository) StationsWithin(ctx context.Context, boundingBox []float64) ([]models.GasStation, error) {
	if len(boundingBox) != 4 {
		return nil, errors.Newf("bounding box must have 4 values, got %d", len(boundingBox))
	}
	// boundingBox is [minLon, minLat, maxLon, maxLat].
	return repo.queryStations(ctx, stationsWithinSQL, boundingBox[1], boundingBox[3], boundingBox[0], boundingBox[2])
}

func (repo *sqliteRepository) StationById(ctx context.Context, stationId string) (*models.GasStation, error) {
	stations, err := repo.queryStations(ctx, stationByIdSQL, stationId)
	if err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		return nil, nil
	}
	return &stations[0], nil
}

func (repo *sqliteRepository) SearchStations(ctx context.Context, query string) ([]models.GasStation, error) {
	pattern := "%" + query + "%"
	return repo.queryStations(ctx, searchStationsSQL, pattern, pattern, pattern)
}

func (repo *sqliteRepository) queryStations(ctx context.Context, query string, args ...any) ([]models.GasStation, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute station query")
	}
	defer closeRows(rows)

	var stations []models.GasStation
	for rows.Next() {
		var station models.GasStation
		var amenitiesJSON, hoursJSON string
		if err := rows.Scan(
			&station.StationId, &station.Name, &station.Brand, &station.City, &station.Province,
			&station.Address, &station.Latitude, &station.Longitude,
			&amenitiesJSON, &station.Status, &hoursJSON,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan station row")
		}
		if err := json.Unmarshal([]byte(amenitiesJSON), &station.Amenities); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal amenities")
		}
		if err := json.Unmarshal([]byte(hoursJSON), &station.Hours); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal operating hours")
		}
		stations = append(stations, station)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating over station rows")
	}

	return stations, nil
}

func (repo *sqliteRepository) InsertStations(batch []models.GasStation) (int, error) {
	count := 0
	err := repo.withTransaction(insertStationSQL, func(stmt *sql.Stmt) error {
		for i := range batch {
			if _, err := stmt.Exec(batch[i].ToTuple()...); err != nil {
				return errors.Wrap(err, "failed to execute individual station insert")
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *sqliteRepository) InsertPrices(batch []models.FuelPrice) (int, error) {
	count := 0
	err := repo.withTransaction(insertPriceSQL, func(stmt *sql.Stmt) error {
		for i := range batch {
			if _, err := stmt.Exec(batch[i].ToTuple()...); err != nil {
				return errors.Wrap(err, "failed to execute individual price insert")
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	// New observations may move the latest week forward.
	repo.memo.Storage.Flush()
	return count, nil
}

func (repo *sqliteRepository) withTransaction(query string, fn func(stmt *sql.Stmt) error) error {
	tx, err := repo.db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("error rolling back transaction: %v", rbErr)
			}
		}
	}()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return errors.Wrap(err, "failed to prepare statement")
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Printf("failed to close statement: %v", err)
		}
	}()

	if err = fn(stmt); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	return nil
}

func (repo *sqliteRepository) Check() checks.Check {
	return checks.SqlCheck{Sql: repo.db}
}

func (repo *sqliteRepository) Close() error {
	return repo.db.Close()
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		log.Printf("failed to close rows: %v", err)
	}
}

package internal

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	jsoniter "github.com/json-iterator/go"

	"github.com/fuelwatch-ph/fuelwatch-api/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ATTRIBUTION is returned with every API response, crediting the upstream
// data sources.
var ATTRIBUTION = []string{
	"Weekly fuel price bulletins © DOE Philippines",
	"Station directory via the FuelWatch places feed",
}

// HTTPStatusError is returned when the remote server responds with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	Status     string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http status response from %s: %s", e.URL, e.Status)
}

type BatchCallback[T any] func([]T) (int, error)

// FuelDataClient pulls station records and weekly price bulletins from the
// hosted feed. Batches are handed to the callback as they arrive so the
// caller controls persistence.
type FuelDataClient interface {
	GetStations(BatchCallback[models.GasStation]) (int, error)
	GetWeeklyPrices(BatchCallback[models.FuelPrice]) (int, error)
	LastUpdated() *time.Time
}

type timeTracker struct {
	started          time.Time
	lastAuth         time.Time
	lastStationFetch time.Time
	lastPricesFetch  time.Time
}

type fuelDataManager struct {
	baseUrl     string
	region      string
	authReq     models.AuthRequest
	tokenData   models.TokenData
	timeTracker timeTracker
	client      *http.Client
}

func NewFuelDataClient(clientId, clientSecret, region string) (FuelDataClient, error) {
	mgr := &fuelDataManager{
		baseUrl: "https://feeds.fuelwatch.ph/api/v1",
		region:  region,
		timeTracker: timeTracker{
			started: time.Now(),
		},
		client: &http.Client{Timeout: 30 * time.Second},
		authReq: models.AuthRequest{
			GrantType:    "client_credentials",
			ClientId:     clientId,
			ClientSecret: clientSecret,
		},
	}

	err := mgr.authenticate()
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %v", err)
	}

	return mgr, nil
}

// LastUpdated reports when prices were last pulled, or nil before the
// first successful fetch.
func (mgr *fuelDataManager) LastUpdated() *time.Time {
	if mgr.timeTracker.lastPricesFetch.IsZero() {
		return nil
	}
	t := mgr.timeTracker.lastPricesFetch
	return &t
}

// GetStations walks the batched station feed, handing each batch to the
// callback, and returns the total number of records accepted.
func (mgr *fuelDataManager) GetStations(callback BatchCallback[models.GasStation]) (int, error) {
	if err := mgr.checkTokenExpiry(); err != nil {
		return 0, fmt.Errorf("failed to refresh token: %w", err)
	}

	batchNo := 1
	count := 0
	startTime := time.Now()

	for {
		url := fmt.Sprintf("%s/stations?region=%s&batch-number=%d", mgr.baseUrl, mgr.region, batchNo)
		body, err := mgr.get(url)
		if err != nil {
			var stErr *HTTPStatusError
			if errors.As(err, &stErr) && stErr.StatusCode == 400 {
				log.Printf("No more station batches available, stopping at batch %d", batchNo-1)
				break
			}
			return 0, err
		}

		var resp models.StationFeedResponse
		decoder := json.NewDecoder(body)
		err = decoder.Decode(&resp)
		_ = body.Close()
		if err != nil {
			return 0, fmt.Errorf("failed to unmarshal station batch: %w", err)
		}
		if !resp.Success {
			return 0, fmt.Errorf("feed error: %s", resp.Message)
		}

		numRecords, err := callback(resp.Data)
		if err != nil {
			return 0, fmt.Errorf("callback error: %w", err)
		}
		count += numRecords
		batchNo++

		if numRecords == 0 || (resp.MetaData.TotalBatches > 0 && batchNo > resp.MetaData.TotalBatches) {
			break
		}
	}

	mgr.timeTracker.lastStationFetch = startTime
	return count, nil
}

// GetWeeklyPrices fetches the current weekly price bulletin (an HTML
// table: area, brand, fuel type, common/min/max) and hands the parsed
// observations to the callback in one batch.
func (mgr *fuelDataManager) GetWeeklyPrices(callback BatchCallback[models.FuelPrice]) (int, error) {
	if err := mgr.checkTokenExpiry(); err != nil {
		return 0, fmt.Errorf("failed to refresh token: %w", err)
	}

	startTime := time.Now()
	url := fmt.Sprintf("%s/bulletins/current?region=%s", mgr.baseUrl, mgr.region)
	body, err := mgr.get(url)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := body.Close(); err != nil {
			log.Printf("failed to close body: %v", err)
		}
	}()

	prices, err := ParseBulletin(body, mgr.region, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	count, err := callback(prices)
	if err != nil {
		return 0, fmt.Errorf("callback error: %w", err)
	}

	mgr.timeTracker.lastPricesFetch = startTime
	return count, nil
}

// ParseBulletin extracts price observations from a bulletin HTML document.
// The bulletin's own week marker ("data-week-of" on the table) wins; when
// absent, the ISO week of fetchedAt is used. Rows with unparseable price
// cells are kept with zeroed fields; the matching engine downgrades them
// rather than the importer dropping them.
func ParseBulletin(r io.Reader, region string, fetchedAt time.Time) ([]models.FuelPrice, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bulletin HTML: %w", err)
	}

	table := doc.Find("table.price-bulletin").First()
	week := table.AttrOr("data-week-of", "")
	if week == "" {
		year, wk := fetchedAt.ISOWeek()
		week = fmt.Sprintf("%d-%02d", year, wk)
	}

	var prices []models.FuelPrice
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td").Map(func(_ int, cell *goquery.Selection) string {
			return strings.TrimSpace(cell.Text())
		})
		if len(cells) < 6 {
			return
		}

		price := models.FuelPrice{
			Area:        cells[0],
			Brand:       cells[1],
			FuelType:    cells[2],
			CommonPrice: parsePrice(cells[3]),
			MinPrice:    parsePrice(cells[4]),
			MaxPrice:    parsePrice(cells[5]),
			Region:      region,
			WeekOf:      week,
			UpdatedAt:   fetchedAt,
		}
		price.PriceId = observationId(price)
		prices = append(prices, price)
	})

	return prices, nil
}

// observationId derives a stable identifier from the observation's natural
// key, so re-importing the same bulletin upserts instead of duplicating.
func observationId(price models.FuelPrice) string {
	sum := sha1.Sum([]byte(strings.ToLower(
		price.WeekOf + "|" + price.Area + "|" + price.Brand + "|" + price.FuelType,
	)))
	return hex.EncodeToString(sum[:])
}

func parsePrice(raw string) float64 {
	cleaned := strings.NewReplacer("₱", "", "PHP", "", ",", "", " ", "").Replace(raw)
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

func (mgr *fuelDataManager) authenticate() error {
	url := fmt.Sprintf("%s/oauth/token", mgr.baseUrl)
	body, err := mgr.post(url, "application/json", mgr.authReq)
	if err != nil {
		return err
	}
	defer func() {
		if err := body.Close(); err != nil {
			log.Printf("failed to close body: %v", err)
		}
	}()

	var resp models.AuthResponse
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(&resp); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("authentication failed: %s", resp.Message)
	}

	mgr.tokenData = resp.Data
	mgr.timeTracker.lastAuth = time.Now()
	log.Printf("Authenticated successfully, token expires in %d seconds", resp.Data.ExpiresIn)

	return nil
}

func (mgr *fuelDataManager) tokenRefresh() error {
	tokenReq := models.TokenRefreshRequest{
		GrantType:    "refresh_token",
		ClientId:     mgr.authReq.ClientId,
		RefreshToken: mgr.tokenData.RefreshToken,
	}
	url := fmt.Sprintf("%s/oauth/refresh", mgr.baseUrl)
	body, err := mgr.post(url, "application/json", tokenReq)
	if err != nil {
		return err
	}
	defer func() {
		if err := body.Close(); err != nil {
			log.Printf("failed to close body: %v", err)
		}
	}()

	var resp models.AuthResponse
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(&resp); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("authentication failed: %s", resp.Message)
	}

	mgr.tokenData.AccessToken = resp.Data.AccessToken
	mgr.tokenData.ExpiresIn = resp.Data.ExpiresIn
	mgr.timeTracker.lastAuth = time.Now()
	log.Printf("Token refresh completed successfully, token expires in %d seconds", mgr.tokenData.ExpiresIn)

	return nil
}

func (mgr *fuelDataManager) checkTokenExpiry() error {
	expiryTime := mgr.timeTracker.lastAuth.Add(time.Duration(mgr.tokenData.ExpiresIn) * time.Second)
	expiresSoon := time.Until(expiryTime) < 5*time.Minute

	if expiresSoon {
		log.Printf("Access token has either expired or is expiring soon, refreshing...")
		if err := mgr.tokenRefresh(); err != nil {
			return fmt.Errorf("failed to refresh token: %w", err)
		}
	}
	return nil
}

func (mgr *fuelDataManager) get(url string) (io.ReadCloser, error) {
	log.Printf("GET %s", url)
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+mgr.tokenData.AccessToken)
	req.Header.Set("Accept", "application/json, text/html")

	resp, err := mgr.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from %s: %w", url, err)
	}

	if resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, &HTTPStatusError{URL: url, Status: resp.Status, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

func (mgr *fuelDataManager) post(url, contentType string, data any) (io.ReadCloser, error) {
	log.Printf("POST %s", url)
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := mgr.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

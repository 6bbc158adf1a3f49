package internal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBulletin = `
<html><body>
<h1>Weekly Fuel Price Bulletin</h1>
<table class="price-bulletin" data-week-of="2023-44">
  <thead>
    <tr><th>Area</th><th>Brand</th><th>Fuel</th><th>Common</th><th>Min</th><th>Max</th></tr>
  </thead>
  <tbody>
    <tr><td>Manila</td><td>Shell</td><td>RON 95</td><td>&#8369;62.50</td><td>61.00</td><td>64.00</td></tr>
    <tr><td>Quezon City</td><td>Petron</td><td>Diesel</td><td>58.20</td><td>57.50</td><td>59.90</td></tr>
    <tr><td>Makati</td><td>Caltex</td><td>RON 95</td><td>n/a</td><td>n/a</td><td>n/a</td></tr>
    <tr><td>malformed row</td></tr>
  </tbody>
</table>
</body></html>`

func TestParseBulletin(t *testing.T) {
	fetchedAt := time.Date(2023, 11, 1, 6, 0, 0, 0, time.UTC)

	prices, err := ParseBulletin(strings.NewReader(sampleBulletin), "NCR", fetchedAt)
	require.NoError(t, err)
	require.Len(t, prices, 3)

	t.Run("columns map to the observation fields", func(t *testing.T) {
		first := prices[0]
		assert.Equal(t, "Manila", first.Area)
		assert.Equal(t, "Shell", first.Brand)
		assert.Equal(t, "RON 95", first.FuelType)
		assert.Equal(t, 62.50, first.CommonPrice)
		assert.Equal(t, 61.00, first.MinPrice)
		assert.Equal(t, 64.00, first.MaxPrice)
		assert.Equal(t, "NCR", first.Region)
	})

	t.Run("the bulletin's own week marker wins", func(t *testing.T) {
		for _, price := range prices {
			assert.Equal(t, "2023-44", price.WeekOf)
		}
	})

	t.Run("unparseable price cells are zeroed, not dropped", func(t *testing.T) {
		caltex := prices[2]
		assert.Equal(t, "Caltex", caltex.Brand)
		assert.Equal(t, 0.0, caltex.CommonPrice)
		assert.False(t, caltex.HasValidPrices())
	})

	t.Run("observation ids are stable across re-imports", func(t *testing.T) {
		again, err := ParseBulletin(strings.NewReader(sampleBulletin), "NCR", fetchedAt.Add(2*time.Hour))
		require.NoError(t, err)
		require.Len(t, again, 3)
		for i := range prices {
			assert.Equal(t, prices[i].PriceId, again[i].PriceId)
		}
	})
}

func TestParseBulletinWeekFallback(t *testing.T) {
	html := `<table class="price-bulletin"><tbody>
      <tr><td>Manila</td><td>Shell</td><td>Diesel</td><td>58.90</td><td>58.00</td><td>60.00</td></tr>
    </tbody></table>`

	// 2023-11-01 falls in ISO week 44.
	fetchedAt := time.Date(2023, 11, 1, 6, 0, 0, 0, time.UTC)
	prices, err := ParseBulletin(strings.NewReader(html), "NCR", fetchedAt)
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, "2023-44", prices[0].WeekOf)
}

func TestParsePrice(t *testing.T) {
	assert.Equal(t, 62.5, parsePrice("₱62.50"))
	assert.Equal(t, 1062.5, parsePrice("PHP 1,062.50"))
	assert.Equal(t, 0.0, parsePrice("n/a"))
	assert.Equal(t, 0.0, parsePrice(""))
}

package fueltype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		raw      string
		expected string
	}{
		{"RON 95", "ron 95"},
		{"ron95", "ron 95"},
		{"Gasoline (RON 95)", "ron 95"},
		{"Premium Gasoline (RON 97)", "ron 97"},
		{"Premium Gasoline", "premium gasoline"},
		{"PREMIUM", "premium gasoline"},
		{"DIESEL", "diesel"},
		{"Diesel Fuel", "diesel"},
		{"Premium Diesel", "diesel plus"},
		{"Household Kerosene", "kerosene"},
		{"Auto LPG", "lpg"},
		{"  Regular   Gasoline ", "ron 91"},
		// Unrecognized labels pass through lower-cased and collapsed.
		{"Avgas 100LL", "avgas 100ll"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.raw))
		})
	}
}

func TestNormalizeCollapsesVariants(t *testing.T) {
	// The whole point: textual variants land in the same bucket.
	assert.Equal(t, Normalize("RON 95"), Normalize("Gasoline (RON 95)"))
	assert.Equal(t, Normalize("diesel"), Normalize("Automotive Diesel"))
}

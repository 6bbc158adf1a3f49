// Package fueltype collapses the free-text fuel labels found in weekly
// price bulletins ("RON 95", "Gasoline (RON 95)", "DIESEL", ...) into the
// canonical lower-case keys used for grouping.
package fueltype

import "strings"

var aliases = map[string]string{
	"ron91":              "ron 91",
	"ron 91":             "ron 91",
	"gasoline (ron 91)":  "ron 91",
	"regular gasoline":   "ron 91",
	"ron95":              "ron 95",
	"ron 95":             "ron 95",
	"gasoline (ron 95)":  "ron 95",
	"ron97":              "ron 97",
	"ron 97":             "ron 97",
	"gasoline (ron 97)":  "ron 97",
	"premium":            "premium gasoline",
	"premium gasoline":   "premium gasoline",
	"premium gas":        "premium gasoline",
	"diesel":             "diesel",
	"diesel fuel":        "diesel",
	"automotive diesel":  "diesel",
	"diesel plus":        "diesel plus",
	"premium diesel":     "diesel plus",
	"kerosene":           "kerosene",
	"household kerosene": "kerosene",
	"lpg":                "lpg",
	"auto lpg":           "lpg",
}

// Normalize returns the canonical grouping key for a raw fuel-type label.
// A parenthesized "(RON xx)" qualifier wins over the surrounding words, so
// "Premium Gasoline (RON 97)" and "RON 97" land in the same bucket.
// Unrecognized labels pass through lower-cased and whitespace-collapsed.
func Normalize(raw string) string {
	key := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	if key == "" {
		return key
	}

	if canonical, ok := aliases[key]; ok {
		return canonical
	}

	if start := strings.IndexByte(key, '('); start >= 0 {
		if end := strings.IndexByte(key[start:], ')'); end > 0 {
			inner := strings.TrimSpace(key[start+1 : start+end])
			if canonical, ok := aliases[inner]; ok {
				return canonical
			}
		}
	}

	return key
}

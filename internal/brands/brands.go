// Package brands canonicalizes free-text fuel brand names against a fixed
// alias table, and scores how similar two brand strings are. The similarity
// score is a layered heuristic, not an edit-distance metric: each branch is
// a fallback for the misses of the branches above it, so the ordering of
// checks is load-bearing.
package brands

import (
	_ "embed"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/fuelwatch-ph/fuelwatch-api/internal"
	"github.com/fuelwatch-ph/fuelwatch-api/internal/models"
)

//go:embed aliases.csv
var aliasesCSV string

// Normalizer resolves raw brand strings to canonical names. The table is
// fixed at construction; lookups preserve the table's row order so that
// resolution is deterministic when more than one row could match.
type Normalizer struct {
	table []*models.Brand
}

func NewNormalizer() (*Normalizer, error) {
	table, err := loadBrandTable()
	if err != nil {
		return nil, err
	}
	return &Normalizer{table: table}, nil
}

func loadBrandTable() ([]*models.Brand, error) {
	arr := make([]*models.Brand, 0, 20)
	reader := strings.NewReader(aliasesCSV)

	for record := range internal.ParseCSV(reader, false, models.BrandFromCSV) {
		if record.Error != nil {
			return nil, errors.Wrap(record.Error, "failed to load brand alias table")
		}
		arr = append(arr, record.Value)
	}

	return arr, nil
}

// NormalizeBrandName resolves raw to a canonical brand name. Resolution
// order, first hit wins:
//  1. exact (case-insensitive) equality with a canonical name,
//  2. exact equality with any alias,
//  3. the input contains a canonical name or alias,
//  4. a canonical name or alias contains the input (inputs longer than 3
//     characters only, to guard against false positives on short tokens),
//  5. no match: the input is returned with its first character upper-cased.
func (n *Normalizer) NormalizeBrandName(raw string) string {
	input := strings.TrimSpace(raw)
	if input == "" {
		return input
	}

	for _, brand := range n.table {
		if strings.EqualFold(input, brand.Canonical) {
			return brand.Canonical
		}
	}

	for _, brand := range n.table {
		for _, alias := range brand.Aliases {
			if strings.EqualFold(input, alias) {
				return brand.Canonical
			}
		}
	}

	lower := strings.ToLower(input)
	for _, brand := range n.table {
		for _, name := range brand.Names() {
			if strings.Contains(lower, strings.ToLower(name)) {
				return brand.Canonical
			}
		}
	}

	if len(input) > 3 {
		for _, brand := range n.table {
			for _, name := range brand.Names() {
				if strings.Contains(strings.ToLower(name), lower) {
					return brand.Canonical
				}
			}
		}
	}

	first, size := utf8.DecodeRuneInString(input)
	return string(unicode.ToUpper(first)) + input[size:]
}

// CalculateBrandSimilarity scores how alike two brand strings are, in
// [0,1]. The score is approximate: exact and normalized equality first, then
// containment, then shared words, then a weak positional character bonus.
func (n *Normalizer) CalculateBrandSimilarity(a, b string) float64 {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)

	if strings.EqualFold(a, b) {
		return 1.0
	}

	normA := n.NormalizeBrandName(a)
	normB := n.NormalizeBrandName(b)
	if strings.EqualFold(normA, normB) {
		return 1.0
	}

	lowerA := strings.ToLower(a)
	lowerB := strings.ToLower(b)
	if containsEither(lowerA, lowerB) {
		return 0.9
	}

	if containsEither(strings.ToLower(normA), strings.ToLower(normB)) {
		return 0.8
	}

	if shared, maxWords := sharedWordCount(lowerA, lowerB); shared > 0 {
		return 0.5 + 0.3*float64(shared)/float64(maxWords)
	}

	return positionalBonus(lowerA, lowerB)
}

func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// sharedWordCount counts words longer than 2 characters that appear in
// both strings, tokenized on whitespace.
func sharedWordCount(a, b string) (shared, maxWords int) {
	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)

	seen := make(map[string]bool, len(wordsA))
	for _, w := range wordsA {
		if len(w) > 2 {
			seen[w] = true
		}
	}
	for _, w := range wordsB {
		if len(w) > 2 && seen[w] {
			shared++
			seen[w] = false
		}
	}

	return shared, max(len(wordsA), len(wordsB))
}

// positionalBonus is the last-resort score: a weak bonus for characters
// matching at the same position in both strings.
func positionalBonus(a, b string) float64 {
	minLen := min(len(a), len(b))
	matching := 0
	for i := range minLen {
		if a[i] == b[i] {
			matching++
		}
	}
	if matching > 3 {
		return 0.3 + 0.2*float64(matching)/float64(minLen)
	}
	return 0.1
}

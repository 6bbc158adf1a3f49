package models

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Brand is one row of the canonical brand table: a canonical name plus
// the known alias spellings that should resolve to it.
type Brand struct {
	Canonical string
	Aliases   []string
}

// Names returns the canonical name followed by all aliases, in table order.
func (b *Brand) Names() []string {
	names := make([]string, 0, len(b.Aliases)+1)
	names = append(names, b.Canonical)
	return append(names, b.Aliases...)
}

func (b *Brand) ToCSV() []string {
	return []string{
		b.Canonical,
		strings.Join(b.Aliases, "|"),
	}
}

func BrandFromCSV(record, headers []string) (*Brand, error) {
	if len(record) < 1 || record[0] == "" {
		return nil, errors.New("brand record is missing a canonical name")
	}
	brand := &Brand{
		Canonical: record[0],
	}
	if len(record) > 1 && record[1] != "" {
		for _, alias := range strings.Split(record[1], "|") {
			alias = strings.TrimSpace(alias)
			if alias != "" {
				brand.Aliases = append(brand.Aliases, alias)
			}
		}
	}
	return brand, nil
}

package internal

import (
	"encoding/csv"
	"io"
	"iter"
)

type CSVRecord[T any] struct {
	Value T
	Error error
}

// ParseCSV streams records from r, mapping each row through fromCSV. When
// hasHeader is true the first row is consumed and passed to fromCSV as the
// headers argument for every subsequent row.
func ParseCSV[T any](r io.Reader, hasHeader bool, fromCSV func(record, headers []string) (T, error)) iter.Seq[CSVRecord[T]] {
	return func(yield func(CSVRecord[T]) bool) {
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1

		var headers []string
		if hasHeader {
			row, err := reader.Read()
			if err != nil {
				var zero T
				yield(CSVRecord[T]{Value: zero, Error: err})
				return
			}
			headers = row
		}

		for {
			row, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				var zero T
				if !yield(CSVRecord[T]{Value: zero, Error: err}) {
					return
				}
				continue
			}
			value, err := fromCSV(row, headers)
			if !yield(CSVRecord[T]{Value: value, Error: err}) {
				return
			}
		}
	}
}

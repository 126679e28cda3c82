// Package csvio reads and writes domain tables as comma-delimited text with a header row.
package csvio

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"csvmerge/internal/domain"
)

const bom = "\uFEFF"

// naValues are the field spellings that load as null. Matching is exact and
// case-sensitive; header cells are never treated as null.
var naValues = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// IsNA reports whether field loads as null.
func IsNA(field string) bool {
	return naValues[field]
}

// Read parses delimited text from r into a table. source names the input in errors.
// Empty fields and the usual missing-value markers (NA, NULL, NaN, ...) load
// as null; rows shorter than the header are null-padded. Bare quotes inside
// unquoted fields are kept literally.
func Read(r io.Reader, source string) (*domain.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.ErrFileRead(source, nil, "%s: no columns to parse from file", source)
	}
	if err != nil {
		return nil, domain.ErrFileRead(source, err, "parse %s", source)
	}
	header[0] = strings.TrimPrefix(header[0], bom)

	tbl, err := domain.NewTable(dedupeHeader(header)...)
	if err != nil {
		return nil, domain.ErrFileRead(source, err, "parse %s header", source)
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.ErrFileRead(source, err, "parse %s", source)
		}
		if len(record) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, domain.ErrFileRead(source, nil,
				"parse %s: expected %d fields in line %d, saw %d", source, len(header), line, len(record))
		}
		row := make([]sql.NullString, len(header))
		for i, field := range record {
			if !IsNA(field) {
				row[i] = domain.Value(field)
			}
		}
		if err := tbl.AppendRow(row); err != nil {
			return nil, domain.ErrFileRead(source, err, "parse %s", source)
		}
	}
	return tbl, nil
}

// dedupeHeader renames repeated column names to name.1, name.2, ...
func dedupeHeader(header []string) []string {
	seen := make(map[string]bool, len(header))
	counts := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, name := range header {
		candidate := name
		for seen[candidate] {
			counts[name]++
			candidate = fmt.Sprintf("%s.%d", name, counts[name])
		}
		seen[candidate] = true
		out[i] = candidate
	}
	return out
}

// Write serializes tbl to w: a header row, then one record per row with nulls as empty fields.
// No row-index column is emitted.
func Write(w io.Writer, tbl *domain.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tbl.ColumnNames()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, tbl.Width())
	for i := 0; i < tbl.Height(); i++ {
		for j, cell := range tbl.Row(i) {
			record[j] = cell.String
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

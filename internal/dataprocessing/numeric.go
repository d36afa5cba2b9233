package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"vendasetl/internal/errors"
)

// NumericColumns returns every column that is not an identity column, in
// table order. The split is by name so a reordered export still coerces the
// right columns.
func NumericColumns(t *Table, identity []string) []string {
	skip := make(map[string]bool, len(identity))
	for _, name := range identity {
		skip[name] = true
	}

	var cols []string
	for _, h := range t.header {
		if !skip[h] {
			cols = append(cols, h)
		}
	}
	return cols
}

// NumericColumnsFrom returns the columns at or after position start.
func NumericColumnsFrom(t *Table, start int) []string {
	if start < 0 {
		start = 0
	}
	if start >= len(t.header) {
		return nil
	}
	return append([]string(nil), t.header[start:]...)
}

// ParseEuropeanNumber parses a value written with dot thousands separators
// and a decimal comma ("1.234,56"). An empty value is zero. Values beyond
// the float64 range are rejected.
func ParseEuropeanNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s is out of range", s)
	}
	return f, nil
}

// CoerceNumeric converts the named columns to numbers. Text cells go through
// ParseEuropeanNumber, empty cells become 0 and numbers are kept. The first
// value that does not parse fails the whole call.
func CoerceNumeric(t *Table, columns []string) (*Table, error) {
	idx, err := t.indexes(columns)
	if err != nil {
		return nil, err
	}

	out := t.clone()
	for k, c := range idx {
		for r, row := range out.rows {
			switch cell := row[c]; cell.Kind {
			case CellEmpty:
				row[c] = NumberCell(0)
			case CellText:
				n, err := ParseEuropeanNumber(cell.Text)
				if err != nil {
					return nil, errors.NewParsingError(
						fmt.Sprintf("column %q row %d: cannot parse %q as a number", columns[k], r+1, cell.Text), err).
						WithContext("column", columns[k]).
						WithContext("row", r+1).
						WithContext("value", cell.Text)
				}
				row[c] = NumberCell(n)
			}
		}
		out.kinds[c] = ColumnNumber
	}
	return out, nil
}

// CoerceText turns the named columns into text, rendering any numeric cell
// the way it would be written out. Workbook identity columns (customer
// numbers) arrive as numbers.
func CoerceText(t *Table, columns []string) (*Table, error) {
	idx, err := t.indexes(columns)
	if err != nil {
		return nil, err
	}

	out := t.clone()
	for _, c := range idx {
		for _, row := range out.rows {
			if row[c].Kind == CellNumber {
				row[c] = TextCell(strconv.FormatFloat(row[c].Num, 'f', -1, 64))
			}
		}
		out.kinds[c] = ColumnText
	}
	return out, nil
}

package dataprocessing

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"vendasetl/internal/errors"
)

// SelectMonthlyColumns returns, in table order, the columns whose name
// contains marker but not cumulative. Both checks ignore case.
func SelectMonthlyColumns(t *Table, marker, cumulative string) []string {
	if marker == "" {
		return nil
	}
	marker = strings.ToLower(marker)
	cumulative = strings.ToLower(cumulative)

	var cols []string
	for _, h := range t.header {
		name := strings.ToLower(h)
		if !strings.Contains(name, marker) {
			continue
		}
		if cumulative != "" && strings.Contains(name, cumulative) {
			continue
		}
		cols = append(cols, h)
	}
	return cols
}

// MonthLabel strips marker from a monthly column name and capitalizes the
// rest: "Jan_ac" becomes "Jan", "FEV_AC" becomes "Fev".
func MonthLabel(column, marker string) string {
	if marker != "" {
		re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(marker))
		column = re.ReplaceAllString(column, "")
	}
	return capitalizeWord(strings.TrimSpace(column))
}

// Unpivot turns every monthly column into its own row. For each source row,
// in order, one row per monthly column is emitted holding the identity
// columns, the month label and the value.
func Unpivot(t *Table, idColumns, monthly []string, marker, labelCol, valueCol string) (*Table, error) {
	idIdx, err := t.indexes(idColumns)
	if err != nil {
		return nil, err
	}
	monthIdx, err := t.indexes(monthly)
	if err != nil {
		return nil, err
	}
	for i, c := range monthIdx {
		if t.kinds[c] != ColumnNumber {
			return nil, errors.NewSchemaError(fmt.Sprintf("monthly column %q is not numeric", monthly[i])).
				WithContext("column", monthly[i])
		}
	}

	header := append(append([]string(nil), idColumns...), labelCol, valueCol)
	if err := checkUnique(header); err != nil {
		return nil, err
	}

	labels := make([]string, len(monthly))
	for i, col := range monthly {
		labels[i] = MonthLabel(col, marker)
	}

	out := &Table{
		header: header,
		kinds:  make([]ColumnKind, len(header)),
		rows:   make([][]Cell, 0, len(t.rows)*len(monthly)),
	}
	for i, c := range idIdx {
		out.kinds[i] = t.kinds[c]
	}
	out.kinds[len(header)-2] = ColumnText
	out.kinds[len(header)-1] = ColumnNumber

	for _, src := range t.rows {
		for m, c := range monthIdx {
			row := make([]Cell, 0, len(header))
			for _, id := range idIdx {
				row = append(row, src[id])
			}
			row = append(row, TextCell(labels[m]), src[c])
			out.rows = append(out.rows, row)
		}
	}
	return out, nil
}

// capitalizeWord upper-cases the first rune and lower-cases the rest
func capitalizeWord(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func checkUnique(names []string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return errors.NewSchemaError(fmt.Sprintf("duplicate column %q", n)).WithContext("column", n)
		}
		seen[n] = true
	}
	return nil
}

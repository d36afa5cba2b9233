package dataprocessing

import (
	"unicode"
	"unicode/utf8"
)

// ProjectSummary keeps exactly the given columns in the given order.
func ProjectSummary(t *Table, columns []string) (*Table, error) {
	idx, err := t.indexes(columns)
	if err != nil {
		return nil, err
	}
	if err := checkUnique(columns); err != nil {
		return nil, err
	}

	out := &Table{
		header: append([]string(nil), columns...),
		kinds:  make([]ColumnKind, len(columns)),
		rows:   make([][]Cell, len(t.rows)),
	}
	for i, c := range idx {
		out.kinds[i] = t.kinds[c]
	}
	for r, src := range t.rows {
		row := make([]Cell, len(idx))
		for i, c := range idx {
			row[i] = src[c]
		}
		out.rows[r] = row
	}
	return out, nil
}

// RenameForTarget upper-cases the first character of every column name and
// leaves the rest as is.
func RenameForTarget(t *Table) (*Table, error) {
	out := t.clone()
	for i, h := range out.header {
		out.header[i] = capitalizeFirst(h)
	}
	if err := checkUnique(out.header); err != nil {
		return nil, err
	}
	return out, nil
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

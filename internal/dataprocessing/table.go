package dataprocessing

import (
	"fmt"
	"strconv"

	"vendasetl/internal/errors"
)

// CellKind identifies which variant a Cell holds.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	// CellNull marks a derived value that is undefined, such as growth over a zero base.
	CellNull
)

// Cell is one value of a Table. Only the field matching Kind is meaningful.
type Cell struct {
	Kind CellKind
	Text string
	Num  float64
}

func EmptyCell() Cell           { return Cell{Kind: CellEmpty} }
func TextCell(s string) Cell    { return Cell{Kind: CellText, Text: s} }
func NumberCell(f float64) Cell { return Cell{Kind: CellNumber, Num: f} }
func NullCell() Cell            { return Cell{Kind: CellNull} }

func (c Cell) IsNumber() bool { return c.Kind == CellNumber }
func (c Cell) IsNull() bool   { return c.Kind == CellNull }

// Float returns the numeric value and whether the cell holds one.
func (c Cell) Float() (float64, bool) { return c.Num, c.Kind == CellNumber }

// String renders the cell the way it is written to the output tables:
// numbers as the shortest decimal that round-trips, Empty and Null as "".
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	default:
		return ""
	}
}

// ColumnKind is the single type a column resolves to.
type ColumnKind int

const (
	ColumnText ColumnKind = iota
	ColumnNumber
)

func (k ColumnKind) String() string {
	if k == ColumnNumber {
		return "number"
	}
	return "text"
}

// Table is an in-memory table with an ordered header. Stages never modify a
// Table they receive; they return a new one.
type Table struct {
	header []string
	kinds  []ColumnKind
	rows   [][]Cell
}

// NewTable builds a table whose columns all start as text. Every row must be
// exactly as wide as the header.
func NewTable(header []string, rows [][]Cell) (*Table, error) {
	t := &Table{
		header: append([]string(nil), header...),
		kinds:  make([]ColumnKind, len(header)),
		rows:   make([][]Cell, len(rows)),
	}
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+1, len(row), len(header))
		}
		t.rows[i] = append([]Cell(nil), row...)
	}
	return t, nil
}

// Header returns a copy of the column names.
func (t *Table) Header() []string {
	return append([]string(nil), t.header...)
}

func (t *Table) NumRows() int { return len(t.rows) }
func (t *Table) NumCols() int { return len(t.header) }

// At returns the cell at row r, column c.
func (t *Table) At(r, c int) Cell {
	return t.rows[r][c]
}

// Kind returns the resolved kind of column c.
func (t *Table) Kind(c int) ColumnKind {
	return t.kinds[c]
}

// Index returns the position of the named column or -1.
func (t *Table) Index(name string) int {
	for i, h := range t.header {
		if h == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named column's cells.
func (t *Table) Column(name string) ([]Cell, bool) {
	idx := t.Index(name)
	if idx < 0 {
		return nil, false
	}
	col := make([]Cell, len(t.rows))
	for i, row := range t.rows {
		col[i] = row[idx]
	}
	return col, true
}

// Records renders the table body as strings, one slice per row.
func (t *Table) Records() [][]string {
	records := make([][]string, len(t.rows))
	for i, row := range t.rows {
		rec := make([]string, len(row))
		for j, cell := range row {
			rec[j] = cell.String()
		}
		records[i] = rec
	}
	return records
}

// clone returns a deep copy.
func (t *Table) clone() *Table {
	c := &Table{
		header: append([]string(nil), t.header...),
		kinds:  append([]ColumnKind(nil), t.kinds...),
		rows:   make([][]Cell, len(t.rows)),
	}
	for i, row := range t.rows {
		c.rows[i] = append([]Cell(nil), row...)
	}
	return c
}

// indexes resolves column names to positions, failing on the first unknown name.
func (t *Table) indexes(names []string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		pos := t.Index(name)
		if pos < 0 {
			return nil, missingColumn(name)
		}
		idx[i] = pos
	}
	return idx, nil
}

func missingColumn(name string) error {
	return errors.NewSchemaError(fmt.Sprintf("column %q not found", name)).WithContext("column", name)
}

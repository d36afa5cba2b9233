package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// textTable builds a table of text cells; "" becomes an empty cell.
func textTable(t *testing.T, header []string, rows ...[]string) *Table {
	t.Helper()
	cells := make([][]Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]Cell, len(row))
		for j, v := range row {
			if v == "" {
				cells[i][j] = EmptyCell()
			} else {
				cells[i][j] = TextCell(v)
			}
		}
	}
	table, err := NewTable(header, cells)
	require.NoError(t, err)
	return table
}

func TestCell_String(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{name: "text", cell: TextCell("Loja"), want: "Loja"},
		{name: "integer number", cell: NumberCell(1000), want: "1000"},
		{name: "fractional number", cell: NumberCell(1234.56), want: "1234.56"},
		{name: "negative number", cell: NumberCell(-0.5), want: "-0.5"},
		{name: "large number has no exponent", cell: NumberCell(12345678912), want: "12345678912"},
		{name: "empty", cell: EmptyCell(), want: ""},
		{name: "null", cell: NullCell(), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cell.String())
		})
	}
}

func TestCell_Float(t *testing.T) {
	v, ok := NumberCell(2.5).Float()
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)

	_, ok = NullCell().Float()
	assert.False(t, ok)
	_, ok = TextCell("2.5").Float()
	assert.False(t, ok)

	assert.True(t, NullCell().IsNull())
	assert.False(t, EmptyCell().IsNull())
	assert.True(t, NumberCell(0).IsNumber())
}

func TestNewTable(t *testing.T) {
	table := textTable(t, []string{"A", "B"}, []string{"1", "2"}, []string{"3", ""})

	assert.Equal(t, 2, table.NumRows())
	assert.Equal(t, 2, table.NumCols())
	assert.Equal(t, ColumnText, table.Kind(0))
	assert.Equal(t, ColumnText, table.Kind(1))
	assert.Equal(t, CellEmpty, table.At(1, 1).Kind)
	assert.Equal(t, "text", table.Kind(0).String())

	_, err := NewTable([]string{"A", "B"}, [][]Cell{{TextCell("only one")}})
	assert.Error(t, err)
}

func TestTable_Accessors(t *testing.T) {
	table := textTable(t, []string{"Cliente", "Tipo"}, []string{"X", "Retalho"}, []string{"Y", ""})

	assert.Equal(t, 1, table.Index("Tipo"))
	assert.Equal(t, -1, table.Index("Missing"))

	col, ok := table.Column("Cliente")
	require.True(t, ok)
	assert.Equal(t, []Cell{TextCell("X"), TextCell("Y")}, col)

	_, ok = table.Column("Missing")
	assert.False(t, ok)

	assert.Equal(t, [][]string{{"X", "Retalho"}, {"Y", ""}}, table.Records())

	header := table.Header()
	header[0] = "changed"
	assert.Equal(t, "Cliente", table.Header()[0])
}

func TestTable_CloneIsDeep(t *testing.T) {
	table := textTable(t, []string{"A"}, []string{"1"})
	c := table.clone()
	c.rows[0][0] = TextCell("2")
	c.header[0] = "B"
	c.kinds[0] = ColumnNumber

	assert.Equal(t, "1", table.At(0, 0).Text)
	assert.Equal(t, "A", table.Header()[0])
	assert.Equal(t, ColumnText, table.Kind(0))
}

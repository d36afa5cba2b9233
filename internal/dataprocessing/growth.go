package dataprocessing

import (
	"fmt"

	"vendasetl/internal/errors"
)

// Growth returns the percentage change from prior to current. ok is false
// when prior is exactly zero and growth is undefined.
func Growth(current, prior float64) (value float64, ok bool) {
	if prior == 0 {
		return 0, false
	}
	return (current - prior) / prior * 100, true
}

// ComputeGrowth sets target to the growth of current over prior for every
// row, appending the column when it does not exist yet. Rows with a zero
// prior get a null.
func ComputeGrowth(t *Table, current, prior, target string) (*Table, error) {
	idx, err := t.indexes([]string{current, prior})
	if err != nil {
		return nil, err
	}
	for i, c := range idx {
		if t.kinds[c] != ColumnNumber {
			name := []string{current, prior}[i]
			return nil, errors.NewSchemaError(fmt.Sprintf("column %q is not numeric", name)).
				WithContext("column", name)
		}
	}
	curIdx, priorIdx := idx[0], idx[1]

	out := t.clone()
	targetIdx := out.Index(target)
	if targetIdx < 0 {
		out.header = append(out.header, target)
		out.kinds = append(out.kinds, ColumnNumber)
		targetIdx = len(out.header) - 1
		for i := range out.rows {
			out.rows[i] = append(out.rows[i], NullCell())
		}
	}
	out.kinds[targetIdx] = ColumnNumber

	for _, row := range out.rows {
		cur, curOK := row[curIdx].Float()
		pri, priOK := row[priorIdx].Float()
		if !curOK || !priOK {
			row[targetIdx] = NullCell()
			continue
		}
		if g, ok := Growth(cur, pri); ok {
			row[targetIdx] = NumberCell(g)
		} else {
			row[targetIdx] = NullCell()
		}
	}
	return out, nil
}

package dataprocessing

import (
	"fmt"
	"regexp"
	"strings"

	"vendasetl/internal/config"
	"vendasetl/internal/errors"
)

// Substitution is a compiled find-replace applied to headers and text cells.
type Substitution struct {
	pattern     *regexp.Regexp
	replacement string
}

// CompileSubstitutions compiles the configured repair table, keeping its order.
func CompileSubstitutions(subs []config.Substitution) ([]Substitution, error) {
	compiled := make([]Substitution, 0, len(subs))
	for i, s := range subs {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, errors.NewConfigError(fmt.Sprintf("invalid substitution pattern %q", s.Pattern), err).
				WithContext("index", i)
		}
		compiled = append(compiled, Substitution{pattern: re, replacement: s.Replacement})
	}
	return compiled, nil
}

func (s Substitution) apply(v string) string {
	return s.pattern.ReplaceAllString(v, s.replacement)
}

// NormalizeText trims every header and text cell, then applies subs in order
// anywhere inside each value. Numbers and empty cells pass through. Headers
// must be unique afterwards.
func NormalizeText(t *Table, subs []Substitution) (*Table, error) {
	out := t.clone()

	seen := make(map[string]int, len(out.header))
	for i, h := range out.header {
		h = repair(h, subs)
		if prev, dup := seen[h]; dup {
			return nil, errors.NewSchemaError(fmt.Sprintf("duplicate column %q", h)).
				WithContext("column", h).
				WithContext("positions", []int{prev + 1, i + 1})
		}
		seen[h] = i
		out.header[i] = h
	}

	for _, row := range out.rows {
		for j, cell := range row {
			if cell.Kind == CellText {
				row[j] = TextCell(repair(cell.Text, subs))
			}
		}
	}
	return out, nil
}

func repair(v string, subs []Substitution) string {
	v = strings.TrimSpace(v)
	for _, s := range subs {
		v = s.apply(v)
	}
	return v
}

package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"vendasetl/internal/errors"
)

// LoadOptions controls how the source export is read.
type LoadOptions struct {
	// Encoding of delimited input; ignored for workbooks.
	Encoding  string
	Delimiter rune
	// Sheet of a workbook to read; the first sheet when empty.
	Sheet string
}

// sourceEncoding is a resolved text encoding
type sourceEncoding struct {
	name string
	enc  encoding.Encoding
	utf8 bool
}

// Load reads the source export into a table of text cells. Workbooks
// (.xlsx, .xlsm) keep their numeric cells as numbers.
func Load(ctx context.Context, path string, opts LoadOptions) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("input file "+path, err).WithContext("path", path)
		}
		return nil, errors.NewStorageError("failed to access input file", err).WithContext("path", path)
	}

	if isWorkbook(path) {
		return loadWorkbook(path, opts.Sheet)
	}
	return loadDelimited(path, opts)
}

func isWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

func loadDelimited(path string, opts LoadOptions) (*Table, error) {
	enc, err := resolveEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to read input file", err).WithContext("path", path)
	}

	if err := validateBytes(data, enc); err != nil {
		return nil, err.WithContext("path", path)
	}

	reader := csv.NewReader(transform.NewReader(bytes.NewReader(data), enc.enc.NewDecoder()))
	reader.Comma = opts.Delimiter
	if reader.Comma == 0 {
		reader.Comma = ','
	}

	records, err := reader.ReadAll()
	if err != nil {
		appErr := errors.NewDecodeError("malformed delimited input", err).WithContext("path", path)
		var parseErr *csv.ParseError
		if stderrors.As(err, &parseErr) {
			appErr.WithContext("line", parseErr.Line)
		}
		return nil, appErr
	}

	if len(records) == 0 {
		return NewTable(nil, nil)
	}

	rows := make([][]Cell, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]Cell, len(rec))
		for i, field := range rec {
			if field == "" {
				row[i] = EmptyCell()
			} else {
				row[i] = TextCell(field)
			}
		}
		rows = append(rows, row)
	}
	return NewTable(records[0], rows)
}

// resolveEncoding maps a configured name to a decoder. Common names of the
// ERP's code pages are matched directly; anything else goes through the IANA
// registry.
func resolveEncoding(name string) (sourceEncoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "", "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return sourceEncoding{name: "iso-8859-1", enc: charmap.ISO8859_1}, nil
	case "cp1252", "windows-1252":
		return sourceEncoding{name: "windows-1252", enc: charmap.Windows1252}, nil
	case "cp850", "ibm850":
		return sourceEncoding{name: "ibm850", enc: charmap.CodePage850}, nil
	case "utf-8", "utf8":
		return sourceEncoding{name: "utf-8", enc: unicode.UTF8BOM, utf8: true}, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return sourceEncoding{}, errors.NewConfigError(fmt.Sprintf("unsupported encoding %q", name), err)
	}
	if enc == unicode.UTF8 {
		return sourceEncoding{name: "utf-8", enc: unicode.UTF8BOM, utf8: true}, nil
	}
	return sourceEncoding{name: key, enc: enc}, nil
}

// validateBytes rejects input the decoder would silently replace.
func validateBytes(data []byte, enc sourceEncoding) *errors.AppError {
	if enc.utf8 {
		for offset := 0; offset < len(data); {
			r, size := utf8.DecodeRune(data[offset:])
			if r == utf8.RuneError && size <= 1 {
				return invalidByte(enc.name, data[offset], offset)
			}
			offset += size
		}
		return nil
	}

	if cm, ok := enc.enc.(*charmap.Charmap); ok {
		for offset, b := range data {
			if b >= utf8.RuneSelf && cm.DecodeByte(b) == utf8.RuneError {
				return invalidByte(enc.name, b, offset)
			}
		}
		return nil
	}

	if _, err := enc.enc.NewDecoder().Bytes(data); err != nil {
		return errors.NewDecodeError(fmt.Sprintf("input is not valid %s", enc.name), err)
	}
	return nil
}

func invalidByte(encName string, b byte, offset int) *errors.AppError {
	return errors.NewDecodeError(fmt.Sprintf("byte 0x%02X at offset %d is not valid %s", b, offset, encName), nil).
		WithContext("offset", offset).
		WithContext("encoding", encName)
}

// loadWorkbook reads one sheet of an Excel workbook
func loadWorkbook(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewDecodeError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.NewDecodeError("workbook has no sheets", nil).WithContext("path", path)
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, errors.NewNotFoundError(fmt.Sprintf("sheet %q", sheet), err).WithContext("path", path)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.NewDecodeError("failed to read sheet", err).
			WithContext("path", path).
			WithContext("sheet", sheet)
	}
	if len(rows) == 0 {
		return NewTable(nil, nil)
	}

	header := rows[0]
	body := make([][]Cell, 0, len(rows)-1)
	for r := 1; r < len(rows); r++ {
		if isBlankRow(rows[r]) {
			continue
		}
		if len(rows[r]) > len(header) {
			return nil, errors.NewDecodeError(
				fmt.Sprintf("row %d has %d fields, header has %d", r+1, len(rows[r]), len(header)), nil).
				WithContext("path", path).
				WithContext("sheet", sheet)
		}

		row := make([]Cell, len(header))
		for c := range header {
			if c >= len(rows[r]) || rows[r][c] == "" {
				row[c] = EmptyCell()
				continue
			}
			row[c] = workbookCell(f, sheet, r, c, rows[r][c])
		}
		body = append(body, row)
	}
	return NewTable(header, body)
}

// workbookCell keeps numbers stored as numbers; everything else is text
func workbookCell(f *excelize.File, sheet string, r, c int, raw string) Cell {
	name, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		return TextCell(raw)
	}
	cellType, err := f.GetCellType(sheet, name)
	if err != nil {
		return TextCell(raw)
	}
	if cellType == excelize.CellTypeNumber || cellType == excelize.CellTypeUnset {
		if n, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
			return NumberCell(n)
		}
	}
	return TextCell(raw)
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

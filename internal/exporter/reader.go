package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"vendasetl/internal/errors"
	"vendasetl/pkg/contracts/domain"
)

// ReadSummary loads a summary table written by CSVWriter back into domain rows.
func ReadSummary(path string, delimiter rune) ([]domain.SummaryRow, error) {
	var rows []domain.SummaryRow
	if err := readTable(path, delimiter, domain.SummaryColumns, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ReadMonthly loads a monthly table written by CSVWriter back into domain rows.
func ReadMonthly(path string, delimiter rune) ([]domain.MonthlyRow, error) {
	var rows []domain.MonthlyRow
	if err := readTable(path, delimiter, domain.MonthlyColumns, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// readTable checks the header against want, then lets gocsv parse the body.
// A leading BOM is dropped.
func readTable(path string, delimiter rune, want []string, out interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("output file "+path, err).WithContext("path", path)
		}
		return errors.NewStorageError("failed to read "+path, err).WithContext("path", path)
	}

	data, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), raw)
	if err != nil {
		return errors.NewDecodeError("output file is not valid UTF-8", err).WithContext("path", path)
	}

	header, err := newReader(bytes.NewReader(data), delimiter).Read()
	if err != nil && err != io.EOF {
		return errors.NewDecodeError("failed to read header", err).WithContext("path", path)
	}
	if err := checkHeader(header, want); err != nil {
		return err.WithContext("path", path)
	}

	if err := gocsv.UnmarshalCSV(newReader(bytes.NewReader(data), delimiter), out); err != nil {
		return errors.NewParsingError(fmt.Sprintf("failed to parse %s", path), err).WithContext("path", path)
	}
	return nil
}

func newReader(r io.Reader, delimiter rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	return reader
}

func checkHeader(got, want []string) *errors.AppError {
	if len(got) != len(want) {
		return errors.NewSchemaError(fmt.Sprintf("expected %d columns %v, got %d %v", len(want), want, len(got), got))
	}
	for i := range want {
		if got[i] != want[i] {
			return errors.NewSchemaError(fmt.Sprintf("column %d is %q, expected %q", i+1, got[i], want[i])).
				WithContext("column", want[i])
		}
	}
	return nil
}

package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/go-playground/validator/v10"

	"vendasetl/internal/errors"
)

// growthTolerance is the relative error allowed when recomputing Crescimento
const growthTolerance = 1e-9

// VerifyReport summarizes a successful reload of the two output tables.
type VerifyReport struct {
	SummaryRows    int      `json:"summary_rows"`
	MonthlyRows    int      `json:"monthly_rows"`
	Months         []string `json:"months"`
	NullGrowthRows int      `json:"null_growth_rows"`
}

// Verify reloads both output tables as standard decimals and checks them
// against each other: growth is null exactly when Acum_aa is zero and
// matches the ratio otherwise, every monthly row names a month, and the
// monthly table holds the same number of months for every summary row.
func Verify(ctx context.Context, summaryPath, monthlyPath string, delimiter rune, logger *slog.Logger) (*VerifyReport, error) {
	if logger == nil {
		logger = slog.Default()
	}

	summary, err := ReadSummary(summaryPath, delimiter)
	if err != nil {
		return nil, err
	}
	monthly, err := ReadMonthly(monthlyPath, delimiter)
	if err != nil {
		return nil, err
	}

	report := &VerifyReport{SummaryRows: len(summary), MonthlyRows: len(monthly)}

	for i, row := range summary {
		want, ok := row.ExpectedGrowth()
		switch {
		case !ok && row.Crescimento != nil:
			return nil, rowError(summaryPath, i, "Crescimento must be empty when Acum_aa is 0")
		case ok && row.Crescimento == nil:
			return nil, rowError(summaryPath, i, "Crescimento is empty but Acum_aa is not 0")
		case ok && !closeEnough(*row.Crescimento, want):
			return nil, rowError(summaryPath, i, fmt.Sprintf("Crescimento %v does not match %v", *row.Crescimento, want))
		}
		if row.Crescimento == nil {
			report.NullGrowthRows++
		}
	}

	validate := validator.New()
	perMonth := make(map[string]int)
	for i, row := range monthly {
		if err := validate.Struct(row); err != nil {
			return nil, rowError(monthlyPath, i, err.Error())
		}
		if perMonth[row.Mes] == 0 {
			report.Months = append(report.Months, row.Mes)
		}
		perMonth[row.Mes]++
	}

	if len(summary) > 0 && len(monthly)%len(summary) != 0 {
		return nil, errors.NewAppValidationError(fmt.Sprintf(
			"monthly rows (%d) are not a multiple of summary rows (%d)", len(monthly), len(summary)))
	}
	if len(summary) > 0 && len(monthly)/len(summary) != len(report.Months) {
		return nil, errors.NewAppValidationError(fmt.Sprintf(
			"expected %d months per row, found %d distinct months", len(monthly)/len(summary), len(report.Months)))
	}
	for _, month := range report.Months {
		if perMonth[month] != len(summary) {
			return nil, errors.NewAppValidationError(fmt.Sprintf(
				"month %q appears in %d rows, expected %d", month, perMonth[month], len(summary))).
				WithContext("month", month)
		}
	}

	logger.InfoContext(ctx, "Output tables verified",
		slog.Int("summary_rows", report.SummaryRows),
		slog.Int("monthly_rows", report.MonthlyRows),
		slog.Int("months", len(report.Months)),
		slog.Int("null_growth_rows", report.NullGrowthRows))

	return report, nil
}

func rowError(path string, index int, msg string) error {
	return errors.NewAppValidationError(fmt.Sprintf("%s row %d: %s", path, index+1, msg)).
		WithContext("path", path).
		WithContext("row", index+1)
}

func closeEnough(got, want float64) bool {
	return math.Abs(got-want) <= growthTolerance*math.Max(1, math.Abs(want))
}

package dataprocessing

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"
)

// UndefinedType groups summary rows with an empty Tipo.
const UndefinedType = "Não Definido"

// ReportColumns names the summary columns the KPIs are computed from.
type ReportColumns struct {
	Customer string
	Type     string
	Current  string
	Prior    string
	Growth   string
}

// RunReport holds the KPIs of one run over the summary table.
type RunReport struct {
	RunID          string    `json:"run_id"`
	GeneratedAt    time.Time `json:"generated_at"`
	SourceRows     int       `json:"source_rows"`
	SummaryRows    int       `json:"summary_rows"`
	MonthlyRows    int       `json:"monthly_rows"`
	MonthlyColumns []string  `json:"monthly_columns"`

	TotalCurrent  float64  `json:"total_acum_ac"`
	TotalPrior    float64  `json:"total_acum_aa"`
	OverallGrowth *float64 `json:"overall_growth"`

	// Distinct customers with sales this year and last year
	ActiveClients int      `json:"active_clients"`
	PriorClients  int      `json:"prior_clients"`
	ClientGrowth  *float64 `json:"client_growth"`

	AverageTicket      float64 `json:"average_ticket"`
	PriorAverageTicket float64 `json:"prior_average_ticket"`

	// Pareto: share of current sales held by the top 20% of customers
	TopClientCount int     `json:"top_client_count"`
	TopClientSales float64 `json:"top_client_sales"`
	TopClientShare float64 `json:"top_client_share"`

	GrowthMean     *float64 `json:"growth_mean"`
	GrowthMedian   *float64 `json:"growth_median"`
	NullGrowthRows int      `json:"null_growth_rows"`

	ByType []TypeBreakdown `json:"by_type"`
}

// TypeBreakdown aggregates the summary per customer type.
type TypeBreakdown struct {
	Type    string   `json:"tipo"`
	Rows    int      `json:"rows"`
	Current float64  `json:"acum_ac"`
	Prior   float64  `json:"acum_aa"`
	Growth  *float64 `json:"crescimento"`
	Share   float64  `json:"participacao"`
}

type clientTotals struct {
	current float64
	prior   float64
}

// BuildReport computes the KPIs of a summary table.
func BuildReport(summary *Table, cols ReportColumns) (*RunReport, error) {
	idx, err := summary.indexes([]string{cols.Customer, cols.Type, cols.Current, cols.Prior, cols.Growth})
	if err != nil {
		return nil, err
	}
	custIdx, typeIdx, curIdx, priorIdx, growthIdx := idx[0], idx[1], idx[2], idx[3], idx[4]

	report := &RunReport{SummaryRows: summary.NumRows()}

	activeClients := make(map[string]bool)
	priorClients := make(map[string]bool)
	activeTotals := make(map[string]*clientTotals)
	types := make(map[string]*TypeBreakdown)
	var growths stats.Float64Data

	for _, row := range summary.rows {
		customer := row[custIdx].String()
		cur, _ := row[curIdx].Float()
		pri, _ := row[priorIdx].Float()

		report.TotalCurrent += cur
		report.TotalPrior += pri

		if cur > 0 {
			activeClients[customer] = true
			totals, ok := activeTotals[customer]
			if !ok {
				totals = &clientTotals{}
				activeTotals[customer] = totals
			}
			totals.current += cur
			totals.prior += pri
		}
		if pri > 0 {
			priorClients[customer] = true
		}

		if g, ok := row[growthIdx].Float(); ok {
			growths = append(growths, g)
		} else {
			report.NullGrowthRows++
		}

		tipo := row[typeIdx].String()
		if tipo == "" {
			tipo = UndefinedType
		}
		tb, ok := types[tipo]
		if !ok {
			tb = &TypeBreakdown{Type: tipo}
			types[tipo] = tb
		}
		tb.Rows++
		tb.Current += cur
		tb.Prior += pri
	}

	report.OverallGrowth = growthPtr(report.TotalCurrent, report.TotalPrior)

	report.ActiveClients = len(activeClients)
	report.PriorClients = len(priorClients)
	report.ClientGrowth = growthPtr(float64(report.ActiveClients), float64(report.PriorClients))

	computeTickets(report, activeTotals)
	computeConcentration(report, activeTotals)

	if mean, err := stats.Mean(growths); err == nil {
		report.GrowthMean = &mean
	}
	if median, err := stats.Median(growths); err == nil {
		report.GrowthMedian = &median
	}

	report.ByType = make([]TypeBreakdown, 0, len(types))
	for _, tb := range types {
		tb.Growth = growthPtr(tb.Current, tb.Prior)
		if report.TotalCurrent > 0 {
			tb.Share = tb.Current / report.TotalCurrent * 100
		}
		report.ByType = append(report.ByType, *tb)
	}
	sort.Slice(report.ByType, func(i, j int) bool {
		if report.ByType[i].Current != report.ByType[j].Current {
			return report.ByType[i].Current > report.ByType[j].Current
		}
		return report.ByType[i].Type < report.ByType[j].Type
	})

	return report, nil
}

// computeTickets averages sales over active customers. The prior ticket only
// counts active customers that also bought last year.
func computeTickets(report *RunReport, active map[string]*clientTotals) {
	var totalCur, totalPrior float64
	withPrior := 0
	for _, c := range active {
		totalCur += c.current
		totalPrior += c.prior
		if c.prior > 0 {
			withPrior++
		}
	}
	if len(active) > 0 {
		report.AverageTicket = totalCur / float64(len(active))
	}
	if withPrior > 0 {
		report.PriorAverageTicket = totalPrior / float64(withPrior)
	}
}

// computeConcentration sums the sales of the top 20% customers, rounded up.
func computeConcentration(report *RunReport, active map[string]*clientTotals) {
	sales := make([]float64, 0, len(active))
	var total float64
	for _, c := range active {
		sales = append(sales, c.current)
		total += c.current
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sales)))

	report.TopClientCount = (len(sales) + 4) / 5
	for _, s := range sales[:report.TopClientCount] {
		report.TopClientSales += s
	}
	if total > 0 {
		report.TopClientShare = report.TopClientSales / total * 100
	}
}

func growthPtr(current, prior float64) *float64 {
	g, ok := Growth(current, prior)
	if !ok {
		return nil
	}
	return &g
}

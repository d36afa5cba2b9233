package domain

// SummaryRow is one line of vendas_resumo.csv: a customer/family/type tuple
// with its accumulated totals. The csv tags are the column names the
// analytics store expects.
//
// Crescimento is nil when the prior-year accumulation is zero and growth is
// undefined; it is written as an empty field.
type SummaryRow struct {
	Vendedor    string   `json:"Vendedor" csv:"Vendedor"`
	NoCliente   string   `json:"No_cliente" csv:"No_cliente"`
	Cliente     string   `json:"Cliente" csv:"Cliente"`
	Familia     string   `json:"Familia" csv:"Familia"`
	Tipo        string   `json:"Tipo" csv:"Tipo"`
	AcumAc      float64  `json:"Acum_ac" csv:"Acum_ac"`
	AcumAa      float64  `json:"Acum_aa" csv:"Acum_aa"`
	PerAcum     float64  `json:"Per_acum" csv:"Per_acum"`
	Crescimento *float64 `json:"Crescimento" csv:"Crescimento,omitempty"`
}

// MonthlyRow is one line of vendas_mensais.csv: the value of one month for
// one source row.
type MonthlyRow struct {
	Vendedor  string  `json:"Vendedor" csv:"Vendedor"`
	NoCliente string  `json:"No_cliente" csv:"No_cliente"`
	Cliente   string  `json:"Cliente" csv:"Cliente"`
	Familia   string  `json:"Familia" csv:"Familia"`
	Tipo      string  `json:"Tipo" csv:"Tipo"`
	Mes       string  `json:"Mes" csv:"Mes" validate:"required"`
	Valor     float64 `json:"Valor" csv:"Valor"`
}

// SummaryColumns is the header of vendas_resumo.csv, in order.
var SummaryColumns = []string{
	"Vendedor", "No_cliente", "Cliente", "Familia", "Tipo",
	"Acum_ac", "Acum_aa", "Per_acum", "Crescimento",
}

// MonthlyColumns is the header of vendas_mensais.csv, in order.
var MonthlyColumns = []string{
	"Vendedor", "No_cliente", "Cliente", "Familia", "Tipo", "Mes", "Valor",
}

// ExpectedGrowth recomputes Crescimento from the accumulated totals.
func (r SummaryRow) ExpectedGrowth() (float64, bool) {
	if r.AcumAa == 0 {
		return 0, false
	}
	return (r.AcumAc - r.AcumAa) / r.AcumAa * 100, true
}

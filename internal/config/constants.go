package config

// Application constants
const (
	// Application Info
	AppName    = "vendasetl"
	AppVersion = "1.0.0"

	// Fixed file names used when nothing overrides them
	DefaultInputFile   = "VendasSetembro.csv"
	DefaultSummaryFile = "vendas_resumo.csv"
	DefaultMonthlyFile = "vendas_mensais.csv"

	// The export is produced by a legacy ERP that writes ISO-8859-1
	DefaultEncoding = "latin1"

	// Column names in the source export
	ColumnSalesperson  = "Vendedor"
	ColumnCustomerNo   = "No_cliente"
	ColumnCustomer     = "Cliente"
	ColumnFamily       = "Familia"
	ColumnType         = "Tipo"
	ColumnCurrentAccum = "Acum_ac"
	ColumnPriorAccum   = "Acum_aa"
	ColumnPeriodShare  = "Per_acum"

	// Derived and reshaped columns
	ColumnGrowth = "Crescimento"
	ColumnMonth  = "Mes"
	ColumnValue  = "Valor"

	// Monthly columns carry this marker ("Jan_ac"); cumulative ones also carry "acum"
	DefaultMonthlyMarker    = "_ac"
	DefaultCumulativeMarker = "acum"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Confirmation lines printed after a successful run
	MsgSuccess      = "✅ Dados tratados e exportados com sucesso!"
	MsgFilesCreated = "➡️ Ficheiros criados: %s e %s"
	MsgVerified     = "✅ %s: %d linhas; %s: %d linhas, %d meses"
)

// DefaultIdentityColumns are the text columns that identify a source row.
// Every other column in the export is numeric.
var DefaultIdentityColumns = []string{
	ColumnSalesperson,
	ColumnCustomerNo,
	ColumnCustomer,
	ColumnFamily,
	ColumnType,
}

// DefaultSubstitutions repairs the characters the ERP export garbles when its
// code page is read as Latin-1.
func DefaultSubstitutions() []Substitution {
	return []Substitution{
		{Pattern: "¢", Replacement: "o"},
		{Pattern: "€", Replacement: "e"},
		{Pattern: "å", Replacement: "a"},
		{Pattern: "\u0090", Replacement: "i"},
		{Pattern: "�", Replacement: "i"},
	}
}

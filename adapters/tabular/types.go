package tabular

// RowData represents one parsed row as header-keyed string cells
type RowData map[string]string

// Table is the raw payload read from a CSV or XLSX file before any
// record mapping is applied.
type Table struct {
	Headers []string
	Rows    []RowData
}

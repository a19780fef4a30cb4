package explorer

import (
	"fmt"
	"strings"
)

// ColumnDef defines a single column of an explorer table.
// The column lists below are the single source of truth for SELECT lists and test DDL.
type ColumnDef struct {
	Name string
	// Type is the PostgreSQL type including constraints (e.g. "BIGINT NOT NULL").
	Type string
}

// SQL returns the column definition for CREATE TABLE statements.
func (c ColumnDef) SQL() string {
	return fmt.Sprintf("%s %s", c.Name, c.Type)
}

// SelectList joins the column names for a SELECT clause.
func SelectList(cols []ColumnDef) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}

// CreateTableSQL renders a CREATE TABLE IF NOT EXISTS statement for the given columns.
func CreateTableSQL(table string, cols []ColumnDef) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = "\t" + c.SQL()
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)", table, strings.Join(defs, ",\n"))
}

// Table pairs a table name with its columns.
type Table struct {
	Name    string
	Columns []ColumnDef
}

// Tables lists every explorer table in creation order.
func Tables() []Table {
	return []Table{
		{Name: TransactionsTableName, Columns: TransactionColumns},
		{Name: QXTransactionsTableName, Columns: QXTradeColumns},
		{Name: QEARNTransactionsTableName, Columns: QEARNTransactionColumns},
		{Name: CCFTransactionsTableName, Columns: CCFTransactionColumns},
		{Name: QBAYTransactionsTableName, Columns: QBAYTransactionColumns},
		{Name: AddressesTableName, Columns: WalletActivityColumns},
		{Name: TicksTableName, Columns: TickColumns},
	}
}

package explorer

import (
	"context"

	"github.com/qubic-network/qubicx/pkg/db"
	explorermodels "github.com/qubic-network/qubicx/pkg/db/models/explorer"
)

// AssetTrades returns the newest QX events, optionally filtered by asset and event.
func (d *DB) AssetTrades(ctx context.Context, f db.TradeFilter) ([]explorermodels.QXTrade, error) {
	var w where
	w.eq("asset_name", f.AssetName)
	w.eq("event", f.Event)
	query := "SELECT " + explorermodels.SelectList(explorermodels.QXTradeColumns) +
		" FROM " + explorermodels.QXTransactionsTableName + w.sql() +
		" ORDER BY tick_number DESC LIMIT " + w.next(f.Limit)

	return selectRows[explorermodels.QXTrade](ctx, d.Pool, "qx transactions", query, w.args...)
}

// QEARNTransactions returns the newest QEARN events, optionally filtered by event.
func (d *DB) QEARNTransactions(ctx context.Context, f db.EventFilter) ([]explorermodels.QEARNTransaction, error) {
	query, args := eventQuery(explorermodels.QEARNTransactionsTableName, explorermodels.QEARNTransactionColumns, f)
	return selectRows[explorermodels.QEARNTransaction](ctx, d.Pool, "qearn transactions", query, args...)
}

// CCFTransactions returns the newest CCF events, optionally filtered by event.
func (d *DB) CCFTransactions(ctx context.Context, f db.EventFilter) ([]explorermodels.CCFTransaction, error) {
	query, args := eventQuery(explorermodels.CCFTransactionsTableName, explorermodels.CCFTransactionColumns, f)
	return selectRows[explorermodels.CCFTransaction](ctx, d.Pool, "ccf transactions", query, args...)
}

// QBAYTransactions returns the newest QBAY events, optionally filtered by event.
func (d *DB) QBAYTransactions(ctx context.Context, f db.EventFilter) ([]explorermodels.QBAYTransaction, error) {
	query, args := eventQuery(explorermodels.QBAYTransactionsTableName, explorermodels.QBAYTransactionColumns, f)
	return selectRows[explorermodels.QBAYTransaction](ctx, d.Pool, "qbay transactions", query, args...)
}

func eventQuery(table string, cols []explorermodels.ColumnDef, f db.EventFilter) (string, []any) {
	var w where
	w.eq("event", f.Event)
	query := "SELECT " + explorermodels.SelectList(cols) + " FROM " + table + w.sql() +
		" ORDER BY tick_number DESC LIMIT " + w.next(f.Limit)
	return query, w.args
}

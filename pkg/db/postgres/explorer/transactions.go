package explorer

import (
	"context"
	"fmt"

	"github.com/qubic-network/qubicx/pkg/db"
	explorermodels "github.com/qubic-network/qubicx/pkg/db/models/explorer"
)

var transactionSelect = "SELECT " + explorermodels.SelectList(explorermodels.TransactionColumns) +
	" FROM " + explorermodels.TransactionsTableName

// RecentTransactions returns the newest transactions, optionally filtered by category and contract.
func (d *DB) RecentTransactions(ctx context.Context, f db.TransactionFilter) ([]explorermodels.Transaction, error) {
	var w where
	w.eq("category", f.Category)
	w.eq("contract_name", f.Contract)
	query := transactionSelect + w.sql() + " ORDER BY tick_number DESC LIMIT " + w.next(f.Limit)

	return selectRows[explorermodels.Transaction](ctx, d.Pool, "transactions", query, w.args...)
}

// WalletTransactions returns transactions sent or received by the address, newest first.
func (d *DB) WalletTransactions(ctx context.Context, addressID string, limit int) ([]explorermodels.Transaction, error) {
	query := transactionSelect + `
		WHERE source_id = $1 OR dest_id = $1
		ORDER BY tick_number DESC
		LIMIT $2`

	return selectRows[explorermodels.Transaction](ctx, d.Pool, "wallet transactions", query, addressID, limit)
}

// TickTransactions returns the transactions of one tick ordered by id.
func (d *DB) TickTransactions(ctx context.Context, tickNumber int64, limit int) ([]explorermodels.Transaction, error) {
	query := transactionSelect + `
		WHERE tick_number = $1
		ORDER BY tx_id
		LIMIT $2`

	return selectRows[explorermodels.Transaction](ctx, d.Pool, "tick transactions", query, tickNumber, limit)
}

// WhaleTransactions returns transfers of at least minAmount.
func (d *DB) WhaleTransactions(ctx context.Context, minAmount int64, limit int) ([]explorermodels.Transaction, error) {
	query := transactionSelect + `
		WHERE amount >= $1
		ORDER BY amount DESC, tick_number DESC
		LIMIT $2`

	return selectRows[explorermodels.Transaction](ctx, d.Pool, "whale transactions", query, minAmount, limit)
}

// WalletActivity returns the address summary row.
func (d *DB) WalletActivity(ctx context.Context, addressID string) (*explorermodels.WalletActivity, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE address_id = $1",
		explorermodels.SelectList(explorermodels.WalletActivityColumns), explorermodels.AddressesTableName)

	return selectOne[explorermodels.WalletActivity](ctx, d.Pool, "wallet activity", query, addressID)
}

// ActiveAddresses ranks senders by transaction count.
func (d *DB) ActiveAddresses(ctx context.Context, limit int) ([]explorermodels.ActiveAddress, error) {
	query := `
		SELECT source_id, COUNT(*), MIN(tick_number), MAX(tick_number)
		FROM transactions
		WHERE category <> 'heartbeat' AND category <> 'system'
		GROUP BY source_id
		ORDER BY COUNT(*) DESC, source_id
		LIMIT $1`

	rows, err := d.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query active addresses: %w", err)
	}
	defer rows.Close()

	out := []explorermodels.ActiveAddress{}
	for rows.Next() {
		var a explorermodels.ActiveAddress
		if err := rows.Scan(&a.AddressID, &a.TxCount, &a.FirstSeenTick, &a.LastActiveTick); err != nil {
			return nil, fmt.Errorf("failed to scan active address: %w", err)
		}
		if a.AddressID == "" {
			return nil, fmt.Errorf("%w: transactions.source_id is empty", db.ErrMalformedRow)
		}
		out = append(out, a)
	}

	return out, rows.Err()
}

package explorer

import (
	"context"
	"fmt"

	explorermodels "github.com/qubic-network/qubicx/pkg/db/models/explorer"
)

// Tick returns one stored tick.
func (d *DB) Tick(ctx context.Context, tickNumber int64) (*explorermodels.Tick, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE tick_number = $1",
		explorermodels.SelectList(explorermodels.TickColumns), explorermodels.TicksTableName)

	return selectOne[explorermodels.Tick](ctx, d.Pool, "tick", query, tickNumber)
}

// DatabaseStats counts stored transactions and ticks and reports the tick range.
func (d *DB) DatabaseStats(ctx context.Context) (explorermodels.DatabaseStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM transactions),
			(SELECT COUNT(*) FROM ticks),
			(SELECT MIN(tick_number) FROM ticks),
			(SELECT MAX(tick_number) FROM ticks)`

	var stats explorermodels.DatabaseStats
	if err := d.Pool.QueryRow(ctx, query).Scan(&stats.TotalTransactions, &stats.TotalTicks, &stats.MinTick, &stats.MaxTick); err != nil {
		return explorermodels.DatabaseStats{}, fmt.Errorf("failed to query database stats: %w", err)
	}
	return stats, nil
}

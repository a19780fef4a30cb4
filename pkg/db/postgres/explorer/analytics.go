package explorer

import (
	"context"
	"fmt"

	explorermodels "github.com/qubic-network/qubicx/pkg/db/models/explorer"
)

// MarketStats aggregates every QX Buy and Sell event.
// The most traded asset breaks ties by ascending asset name.
func (d *DB) MarketStats(ctx context.Context) (explorermodels.MarketStats, error) {
	query := `
		WITH trades AS (
			SELECT asset_name, source_id, price, shares, tick_number
			FROM qx_transactions
			WHERE event IN ('Buy', 'Sell')
		), top_asset AS (
			SELECT asset_name, COUNT(*) AS trade_count
			FROM trades
			GROUP BY asset_name
			ORDER BY trade_count DESC, asset_name ASC
			LIMIT 1
		)
		SELECT
			COUNT(DISTINCT t.asset_name),
			COUNT(*),
			COALESCE(SUM(CASE WHEN t.price IS NOT NULL AND t.shares IS NOT NULL THEN t.price * t.shares ELSE 0 END), 0)::BIGINT,
			COUNT(DISTINCT t.source_id),
			COALESCE(MAX(t.tick_number), 0),
			(SELECT asset_name FROM top_asset),
			COALESCE((SELECT trade_count FROM top_asset), 0)
		FROM trades t`

	var s explorermodels.MarketStats
	err := d.Pool.QueryRow(ctx, query).Scan(
		&s.TotalAssets, &s.TotalTrades, &s.TotalVolumeQubic, &s.UniqueTraders,
		&s.LatestTick, &s.MostTradedAsset, &s.MostTradedCount,
	)
	if err != nil {
		return explorermodels.MarketStats{}, fmt.Errorf("failed to query market stats: %w", err)
	}
	return s, nil
}

// AssetStats aggregates the priced Buy and Sell events of one asset.
func (d *DB) AssetStats(ctx context.Context, assetName string) (explorermodels.AssetStats, error) {
	query := `
		WITH priced AS (
			SELECT source_id, price, shares, tick_number
			FROM qx_transactions
			WHERE asset_name = $1 AND event IN ('Buy', 'Sell') AND price IS NOT NULL
		)
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN shares IS NOT NULL THEN price * shares ELSE 0 END), 0)::BIGINT,
			COUNT(DISTINCT source_id),
			AVG(price)::DOUBLE PRECISION,
			MIN(price),
			MAX(price),
			COALESCE(MAX(tick_number), 0),
			(SELECT price FROM priced ORDER BY tick_number ASC LIMIT 1),
			(SELECT price FROM priced ORDER BY tick_number DESC LIMIT 1)
		FROM priced`

	s := explorermodels.AssetStats{AssetName: assetName}
	err := d.Pool.QueryRow(ctx, query, assetName).Scan(
		&s.TotalTrades, &s.TotalVolume, &s.UniqueTraders, &s.AvgPrice,
		&s.MinPrice, &s.MaxPrice, &s.LastTradeTick, &s.FirstPrice, &s.LastPrice,
	)
	if err != nil {
		return explorermodels.AssetStats{}, fmt.Errorf("failed to query stats for asset %s: %w", assetName, err)
	}
	return s, nil
}

// WalletPositions aggregates the wallet's Buy and Sell events per asset and keeps positive positions.
func (d *DB) WalletPositions(ctx context.Context, walletID string) ([]explorermodels.AssetPosition, error) {
	query := `
		SELECT
			asset_name,
			SUM(CASE WHEN event = 'Buy' THEN shares ELSE 0 END)::BIGINT AS total_bought,
			SUM(CASE WHEN event = 'Sell' THEN shares ELSE 0 END)::BIGINT AS total_sold,
			SUM(CASE WHEN event = 'Buy' THEN shares ELSE -shares END)::BIGINT AS net_shares,
			AVG(CASE WHEN event = 'Buy' THEN price END)::DOUBLE PRECISION,
			AVG(CASE WHEN event = 'Sell' THEN price END)::DOUBLE PRECISION,
			MAX(price),
			MAX(tick_number),
			COUNT(*)
		FROM qx_transactions
		WHERE source_id = $1
			AND event IN ('Buy', 'Sell')
			AND shares IS NOT NULL
		GROUP BY asset_name
		HAVING SUM(CASE WHEN event = 'Buy' THEN shares ELSE -shares END) > 0
		ORDER BY net_shares DESC, asset_name`

	rows, err := d.Pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet positions: %w", err)
	}
	defer rows.Close()

	out := []explorermodels.AssetPosition{}
	for rows.Next() {
		var p explorermodels.AssetPosition
		err := rows.Scan(
			&p.AssetName, &p.TotalBought, &p.TotalSold, &p.NetShares,
			&p.AvgBuyPrice, &p.AvgSellPrice, &p.LastTradePrice, &p.LastTradeTick, &p.TradeCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet position: %w", err)
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

// LastAssetTrade returns the most recent priced Buy or Sell of the asset.
func (d *DB) LastAssetTrade(ctx context.Context, assetName string) (*explorermodels.QXTrade, error) {
	query := "SELECT " + explorermodels.SelectList(explorermodels.QXTradeColumns) + `
		FROM qx_transactions
		WHERE asset_name = $1 AND event IN ('Buy', 'Sell') AND price IS NOT NULL
		ORDER BY tick_number DESC
		LIMIT 1`

	return selectOne[explorermodels.QXTrade](ctx, d.Pool, "last asset trade", query, assetName)
}

// AssetVolumeSince counts Buy and Sell events with shares after the given tick.
func (d *DB) AssetVolumeSince(ctx context.Context, assetName string, afterTick int64) (explorermodels.AssetVolume, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(shares), 0)::BIGINT
		FROM qx_transactions
		WHERE asset_name = $1
			AND event IN ('Buy', 'Sell')
			AND tick_number > $2
			AND shares IS NOT NULL`

	var v explorermodels.AssetVolume
	if err := d.Pool.QueryRow(ctx, query, assetName, afterTick).Scan(&v.Trades, &v.Shares); err != nil {
		return explorermodels.AssetVolume{}, fmt.Errorf("failed to query volume for asset %s: %w", assetName, err)
	}
	return v, nil
}


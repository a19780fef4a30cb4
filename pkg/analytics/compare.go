package analytics

import (
	"github.com/qubic-network/qubicx/pkg/db/models/explorer"
)

// AssetComparison is one row of a side-by-side asset comparison.
type AssetComparison struct {
	AssetName          string   `json:"asset_name"`
	TotalTrades        int64    `json:"total_trades"`
	TotalVolume        int64    `json:"total_volume"`
	UniqueTraders      int64    `json:"unique_traders"`
	AvgPrice           *float64 `json:"avg_price"`
	MinPrice           *int64   `json:"min_price"`
	MaxPrice           *int64   `json:"max_price"`
	LastPrice          *int64   `json:"last_price"`
	LastTradeTick      int64    `json:"last_trade_tick"`
	PriceChangePercent *float64 `json:"price_change_percent"`
}

// AssetStats aggregates the priced Buy and Sell events of assetName found in trades.
func AssetStats(assetName string, trades []explorer.QXTrade) explorer.AssetStats {
	stats := explorer.AssetStats{AssetName: assetName}
	traders := map[string]struct{}{}
	var (
		priceSum            int64
		firstTick, lastTick int64
	)

	for _, t := range trades {
		if t.AssetName != assetName || !t.IsPricedTrade() {
			continue
		}
		price := *t.Price
		stats.TotalTrades++
		priceSum += price
		traders[t.SourceID] = struct{}{}
		if t.Shares != nil {
			stats.TotalVolume += price * *t.Shares
		}
		if stats.MinPrice == nil || price < *stats.MinPrice {
			stats.MinPrice = ptr(price)
		}
		if stats.MaxPrice == nil || price > *stats.MaxPrice {
			stats.MaxPrice = ptr(price)
		}
		if stats.FirstPrice == nil || t.TickNumber < firstTick {
			firstTick = t.TickNumber
			stats.FirstPrice = ptr(price)
		}
		if stats.LastPrice == nil || t.TickNumber > lastTick {
			lastTick = t.TickNumber
			stats.LastPrice = ptr(price)
		}
	}

	stats.UniqueTraders = int64(len(traders))
	stats.LastTradeTick = lastTick
	if stats.TotalTrades > 0 {
		stats.AvgPrice = ptr(float64(priceSum) / float64(stats.TotalTrades))
	}
	return stats
}

// Compare turns aggregated asset stats into a comparison row.
func Compare(stats explorer.AssetStats) AssetComparison {
	return AssetComparison{
		AssetName:          stats.AssetName,
		TotalTrades:        stats.TotalTrades,
		TotalVolume:        stats.TotalVolume,
		UniqueTraders:      stats.UniqueTraders,
		AvgPrice:           stats.AvgPrice,
		MinPrice:           stats.MinPrice,
		MaxPrice:           stats.MaxPrice,
		LastPrice:          stats.LastPrice,
		LastTradeTick:      stats.LastTradeTick,
		PriceChangePercent: PriceChangePercent(stats.FirstPrice, stats.LastPrice),
	}
}

// PriceChangePercent is (last - first) / first * 100, or nil when either price is missing
// or the first price is zero.
func PriceChangePercent(first, last *int64) *float64 {
	if first == nil || last == nil || *first == 0 {
		return nil
	}
	change := float64(*last-*first) / float64(*first) * 100
	return &change
}

func ptr[T any](v T) *T { return &v }

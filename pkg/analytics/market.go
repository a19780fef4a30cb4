package analytics

import (
	"sort"

	"github.com/qubic-network/qubicx/pkg/db/models/explorer"
)

// MarketOverview aggregates QX Buy and Sell events. Other events are ignored.
// Volume only counts events carrying both price and shares.
// The most traded asset breaks count ties by ascending name.
func MarketOverview(trades []explorer.QXTrade) explorer.MarketStats {
	var stats explorer.MarketStats
	assetCounts := map[string]int64{}
	traders := map[string]struct{}{}

	for _, t := range trades {
		if !t.IsTrade() {
			continue
		}
		stats.TotalTrades++
		assetCounts[t.AssetName]++
		traders[t.SourceID] = struct{}{}
		if t.Price != nil && t.Shares != nil {
			stats.TotalVolumeQubic += *t.Price * *t.Shares
		}
		if t.TickNumber > stats.LatestTick {
			stats.LatestTick = t.TickNumber
		}
	}

	stats.TotalAssets = int64(len(assetCounts))
	stats.UniqueTraders = int64(len(traders))

	ranked := rankCounts(assetCounts)
	if len(ranked) > 0 {
		name := ranked[0].key
		stats.MostTradedAsset = &name
		stats.MostTradedCount = ranked[0].count
	}
	return stats
}

type keyCount struct {
	key   string
	count int64
}

// rankCounts orders keys by count descending, then key ascending.
func rankCounts(m map[string]int64) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, c := range m {
		out = append(out, keyCount{key: k, count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}

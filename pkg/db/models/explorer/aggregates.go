package explorer

import "fmt"

// DatabaseStats summarizes database coverage.
type DatabaseStats struct {
	TotalTransactions int64  `json:"totalTransactions"`
	TotalTicks        int64  `json:"totalTicks"`
	MinTick           *int64 `json:"-"`
	MaxTick           *int64 `json:"-"`
}

// TickRange renders the stored tick coverage as "min → max".
func (s DatabaseStats) TickRange() string {
	return fmt.Sprintf("%s → %s", tickOrNone(s.MinTick), tickOrNone(s.MaxTick))
}

func tickOrNone(v *int64) string {
	if v == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *v)
}

// ActiveAddress is a top-holder candidate ranked by transaction count.
type ActiveAddress struct {
	AddressID      string `json:"address_id"`
	TxCount        int64  `json:"tx_count"`
	FirstSeenTick  int64  `json:"first_seen_tick"`
	LastActiveTick int64  `json:"last_active_tick"`
}

// MarketStats is the QX market overview over Buy and Sell events.
type MarketStats struct {
	TotalAssets      int64   `json:"total_assets"`
	TotalTrades      int64   `json:"total_trades"`
	TotalVolumeQubic int64   `json:"total_volume_qubic"`
	UniqueTraders    int64   `json:"unique_traders"`
	MostTradedAsset  *string `json:"most_traded_asset"`
	MostTradedCount  int64   `json:"most_traded_count"`
	LatestTick       int64   `json:"latest_tick"`
}

// AssetStats aggregates priced Buy and Sell events of one asset.
type AssetStats struct {
	AssetName     string
	TotalTrades   int64
	TotalVolume   int64
	UniqueTraders int64
	AvgPrice      *float64
	MinPrice      *int64
	MaxPrice      *int64
	LastTradeTick int64
	// FirstPrice and LastPrice are the prices of the earliest and latest priced trade by tick.
	FirstPrice *int64
	LastPrice  *int64
}

// AssetPosition is one wallet's aggregated Buy/Sell history for an asset.
type AssetPosition struct {
	AssetName    string   `json:"asset_name"`
	TotalBought  int64    `json:"total_bought"`
	TotalSold    int64    `json:"total_sold"`
	NetShares    int64    `json:"net_shares"`
	AvgBuyPrice  *float64 `json:"avg_buy_price"`
	AvgSellPrice *float64 `json:"avg_sell_price"`
	// LastTradePrice is the highest observed price, not the most recent one.
	LastTradePrice *int64 `json:"last_trade_price"`
	LastTradeTick  int64  `json:"last_trade_tick"`
	TradeCount     int64  `json:"trade_count"`
}

// AssetVolume counts trades and shares in a tick window.
type AssetVolume struct {
	Trades int64
	Shares int64
}

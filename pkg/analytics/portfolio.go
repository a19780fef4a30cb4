package analytics

import (
	"sort"

	"github.com/qubic-network/qubicx/pkg/db/models/explorer"
)

// WalletPositions aggregates walletID's Buy and Sell events carrying shares, one position per asset.
// Closed and short positions are kept; use OpenPositions to drop them.
func WalletPositions(walletID string, trades []explorer.QXTrade) []explorer.AssetPosition {
	type acc struct {
		pos                 explorer.AssetPosition
		buySum, sellSum     int64
		buyCount, sellCount int64
	}
	byAsset := map[string]*acc{}
	order := []string{}

	for _, t := range trades {
		if t.SourceID != walletID || !t.IsTrade() || t.Shares == nil {
			continue
		}
		a, ok := byAsset[t.AssetName]
		if !ok {
			a = &acc{pos: explorer.AssetPosition{AssetName: t.AssetName}}
			byAsset[t.AssetName] = a
			order = append(order, t.AssetName)
		}
		shares := *t.Shares
		a.pos.TradeCount++
		if t.TickNumber > a.pos.LastTradeTick {
			a.pos.LastTradeTick = t.TickNumber
		}
		if t.Price != nil && (a.pos.LastTradePrice == nil || *t.Price > *a.pos.LastTradePrice) {
			a.pos.LastTradePrice = ptr(*t.Price)
		}
		switch t.Event {
		case explorer.QXEventBuy:
			a.pos.TotalBought += shares
			if t.Price != nil {
				a.buySum += *t.Price
				a.buyCount++
			}
		case explorer.QXEventSell:
			a.pos.TotalSold += shares
			if t.Price != nil {
				a.sellSum += *t.Price
				a.sellCount++
			}
		}
	}

	out := make([]explorer.AssetPosition, 0, len(order))
	for _, name := range order {
		a := byAsset[name]
		a.pos.NetShares = a.pos.TotalBought - a.pos.TotalSold
		if a.buyCount > 0 {
			a.pos.AvgBuyPrice = ptr(float64(a.buySum) / float64(a.buyCount))
		}
		if a.sellCount > 0 {
			a.pos.AvgSellPrice = ptr(float64(a.sellSum) / float64(a.sellCount))
		}
		out = append(out, a.pos)
	}
	return out
}

// OpenPositions keeps positions with positive net shares, largest first, ties by asset name.
func OpenPositions(positions []explorer.AssetPosition) []explorer.AssetPosition {
	out := make([]explorer.AssetPosition, 0, len(positions))
	for _, p := range positions {
		if p.NetShares > 0 {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].NetShares != out[j].NetShares {
			return out[i].NetShares > out[j].NetShares
		}
		return out[i].AssetName < out[j].AssetName
	})
	return out
}

// Portfolio combines a wallet's open QX positions with its live QUBIC balance.
type Portfolio struct {
	WalletID     string                   `json:"walletId"`
	QubicBalance *int64                   `json:"qubicBalance"`
	Assets       []explorer.AssetPosition `json:"assets"`
	// AssetsValue is the sum of net shares times last_trade_price, in QU.
	AssetsValue int64 `json:"assetsValue"`
	// TotalValue adds the QUBIC balance to AssetsValue; an unknown balance counts as zero.
	TotalValue int64 `json:"totalValue"`
}

// ValuePortfolio values open positions and adds the balance.
// Positions without a price contribute nothing.
func ValuePortfolio(walletID string, positions []explorer.AssetPosition, balance *int64) Portfolio {
	p := Portfolio{
		WalletID:     walletID,
		QubicBalance: balance,
		Assets:       OpenPositions(positions),
	}
	for _, pos := range p.Assets {
		if pos.LastTradePrice != nil {
			p.AssetsValue += pos.NetShares * *pos.LastTradePrice
		}
	}
	p.TotalValue = p.AssetsValue
	if balance != nil {
		p.TotalValue += *balance
	}
	return p
}

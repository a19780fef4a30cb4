// Package prices reads the QUBIC market price from CoinGecko.
package prices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qubic-network/qubicx/pkg/rpc"
)

// CoinID is QUBIC's CoinGecko identifier.
const CoinID = "qubic-network"

// Response cache lifetimes.
const (
	USDPriceTTL = 60 * time.Second
	DetailsTTL  = 60 * time.Second
	HistoryTTL  = 5 * time.Minute
)

const (
	simplePricePath = "/simple/price?ids=" + CoinID + "&vs_currencies=usd"
	coinDetailsPath = "/coins/" + CoinID + "?localization=false&tickers=false&community_data=false&developer_data=false"
	marketChartPath = "/coins/" + CoinID + "/market_chart?vs_currency=usd&days=%d&interval=daily"
)

// ErrNoMarketData is returned when CoinGecko answers without the requested figures.
var ErrNoMarketData = errors.New("no market data for " + CoinID)

// Provider is the price feed used by the tools.
type Provider interface {
	USDPrice(ctx context.Context) (float64, error)
	Details(ctx context.Context) (*Details, error)
	History(ctx context.Context, days int) ([]PricePoint, error)
}

// Details is the QUBIC market snapshot. Missing figures are reported as zero.
type Details struct {
	CurrentPrice             float64 `json:"currentPrice"`
	PriceChange24h           float64 `json:"priceChange24h"`
	PriceChangePercentage24h float64 `json:"priceChangePercentage24h"`
	MarketCap                float64 `json:"marketCap"`
	Volume24h                float64 `json:"volume24h"`
	// LastUpdated is unix milliseconds, zero when CoinGecko omits it.
	LastUpdated int64 `json:"lastUpdated"`
}

// PricePoint is one daily sample. Timestamp is unix milliseconds.
type PricePoint struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
}

// CoinGecko implements Provider over the public v3 API.
type CoinGecko struct {
	http *rpc.HTTPClient
}

var _ Provider = (*CoinGecko)(nil)

// NewCoinGecko builds a provider. Opts.Endpoints should hold the API base, e.g. https://api.coingecko.com/api/v3.
func NewCoinGecko(opts rpc.Opts) *CoinGecko {
	return &CoinGecko{http: rpc.NewHTTPWithOpts(opts)}
}

func (c *CoinGecko) USDPrice(ctx context.Context) (float64, error) {
	var resp map[string]struct {
		USD *float64 `json:"usd"`
	}
	if err := c.http.GetJSON(ctx, simplePricePath, USDPriceTTL, &resp); err != nil {
		return 0, fmt.Errorf("failed to fetch QUBIC price: %w", err)
	}
	entry, ok := resp[CoinID]
	if !ok || entry.USD == nil || *entry.USD == 0 {
		return 0, ErrNoMarketData
	}
	return *entry.USD, nil
}

type usdValue struct {
	USD float64 `json:"usd"`
}

func (c *CoinGecko) Details(ctx context.Context) (*Details, error) {
	var resp struct {
		LastUpdated string `json:"last_updated"`
		MarketData  *struct {
			CurrentPrice             usdValue `json:"current_price"`
			PriceChange24h           float64  `json:"price_change_24h"`
			PriceChangePercentage24h float64  `json:"price_change_percentage_24h"`
			MarketCap                usdValue `json:"market_cap"`
			TotalVolume              usdValue `json:"total_volume"`
		} `json:"market_data"`
	}
	if err := c.http.GetJSON(ctx, coinDetailsPath, DetailsTTL, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch QUBIC details: %w", err)
	}
	if resp.MarketData == nil {
		return nil, ErrNoMarketData
	}

	md := resp.MarketData
	d := &Details{
		CurrentPrice:             md.CurrentPrice.USD,
		PriceChange24h:           md.PriceChange24h,
		PriceChangePercentage24h: md.PriceChangePercentage24h,
		MarketCap:                md.MarketCap.USD,
		Volume24h:                md.TotalVolume.USD,
	}
	if t, err := time.Parse(time.RFC3339Nano, resp.LastUpdated); err == nil {
		d.LastUpdated = t.UnixMilli()
	}
	return d, nil
}

func (c *CoinGecko) History(ctx context.Context, days int) ([]PricePoint, error) {
	if days <= 0 {
		days = 7
	}
	var resp struct {
		Prices [][2]float64 `json:"prices"`
	}
	if err := c.http.GetJSON(ctx, fmt.Sprintf(marketChartPath, days), HistoryTTL, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch QUBIC price history: %w", err)
	}
	if resp.Prices == nil {
		return nil, ErrNoMarketData
	}

	points := make([]PricePoint, len(resp.Prices))
	for i, p := range resp.Prices {
		points[i] = PricePoint{Timestamp: int64(p[0]), Price: p[1]}
	}
	return points, nil
}

package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alitto/pond/v2"
	"github.com/qubic-network/qubicx/pkg/analytics"
	"github.com/qubic-network/qubicx/pkg/db"
	"github.com/qubic-network/qubicx/pkg/db/models/explorer"
	"github.com/qubic-network/qubicx/pkg/nft"
	"github.com/qubic-network/qubicx/pkg/prices"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"
)

const (
	holdersDefaultLimit = 20
	holdersMaxLimit     = 50

	// ticksPerDay approximates 24 hours of ticks.
	ticksPerDay = 8640

	priceHistoryDays = 7
)

var errPriceUnavailable = errors.New("unable to fetch QUBIC price from CoinGecko, the API may be temporarily unavailable")

// waitGroup waits for a pond group. It returns the context error when the caller went away,
// in which case the task outputs must not be read.
func (h *handlers) waitGroup(ctx context.Context, wait func() error, what string) error {
	err := wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		h.Logger.Warn("concurrent fetch encountered error", zap.String("fetch", what), zap.Error(err))
	}
	return nil
}

type holdersArgs struct {
	Limit Int `json:"limit"`
}

type holdersPayload struct {
	Count    int                   `json:"count"`
	Holders  []analytics.TopHolder `json:"holders"`
	Analysis string                `json:"analysis,omitempty"`
}

func (h *handlers) topHolders() *Tool {
	return define(Tool{
		Name:         TopHolders,
		Description:  "Query the top QUBIC holders based on transaction activity. Combines local database analysis with live RPC balance queries. Use this for questions about main holders, richest wallets, or whale addresses. Returns addresses with their balances and activity metrics.",
		IDPrefix:     "top-holders",
		DefaultLimit: holdersDefaultLimit,
		MaxLimit:     holdersMaxLimit,
		Parameters: object(map[string]jsonschema.Definition{
			"limit": numberParam("Maximum number of holders to return (default: 20, max: 50)"),
		}),
	}, func(ctx context.Context, args holdersArgs) (Result, error) {
		addresses, err := h.Store.ActiveAddresses(ctx, clampLimit(args.Limit, holdersDefaultLimit, holdersMaxLimit))
		if err != nil {
			return Result{}, err
		}
		holders := analytics.EnrichHolders(ctx, h.Logger, h.Pool, addresses, h.RPC)
		return found(holdersPayload{
			Count:    len(holders),
			Holders:  holders,
			Analysis: analytics.AnalyzeHolders(holders),
		})
	}, func(holdersArgs) any {
		return holdersPayload{Holders: []analytics.TopHolder{}}
	})
}

type assetArgs struct {
	AssetName string `json:"assetName"`
}

type assetPricePayload struct {
	AssetName          string   `json:"assetName"`
	PriceInQubic       *int64   `json:"priceInQubic"`
	PriceInUSD         *float64 `json:"priceInUSD"`
	QubicPriceUSD      *float64 `json:"qubicPriceUSD"`
	LastTradeEvent     *string  `json:"lastTradeEvent"`
	LastTradeTick      *int64   `json:"lastTradeTick"`
	LastTradeTimestamp *int64   `json:"lastTradeTimestamp"`
	// Volume24h counts shares over the last day of ticks before the last trade.
	Volume24h *int64 `json:"volume24h,omitempty"`
	Trades24h *int64 `json:"trades24h,omitempty"`
}

func (h *handlers) assetPrice() *Tool {
	return define(Tool{
		Name:        AssetPrice,
		Description: "Get the current price of a QX asset. Returns the last traded price in both QUBIC and USD. Use this for price queries like 'What's the price of CFB?' or 'How much is QUTIL worth?'",
		IDPrefix:    "asset-price",
		Parameters: object(map[string]jsonschema.Definition{
			"assetName": stringParam("The asset name to get the price for (e.g., 'CFB', 'QUTIL', 'GARTH', 'QCAP')"),
		}, "assetName"),
	}, func(ctx context.Context, args assetArgs) (Result, error) {
		name := strings.TrimSpace(args.AssetName)
		if name == "" {
			return Result{}, fmt.Errorf("%w: assetName is required", ErrInvalidArgs)
		}
		last, err := h.Store.LastAssetTrade(ctx, name)
		if errors.Is(err, db.ErrNotFound) {
			return missing(assetPricePayload{AssetName: name},
				"No trading data found for %s. This asset may not exist or hasn't been traded recently.", name)
		}
		if err != nil {
			return Result{}, err
		}

		var (
			usd       float64
			usdErr    error
			volume    explorer.AssetVolume
			volumeErr error
		)
		group := h.Pool.NewGroupContext(ctx)
		groupCtx := group.Context()
		group.Submit(func() {
			usd, usdErr = h.Prices.USDPrice(groupCtx)
		})
		group.Submit(func() {
			volume, volumeErr = h.Store.AssetVolumeSince(groupCtx, name, last.TickNumber-ticksPerDay)
		})
		if err := h.waitGroup(ctx, group.Wait, AssetPrice); err != nil {
			return Result{}, err
		}
		if volumeErr != nil {
			return Result{}, volumeErr
		}

		payload := assetPricePayload{
			AssetName:          name,
			PriceInQubic:       last.Price,
			LastTradeEvent:     &last.Event,
			LastTradeTick:      &last.TickNumber,
			LastTradeTimestamp: &last.Timestamp,
			Volume24h:          &volume.Shares,
			Trades24h:          &volume.Trades,
		}
		if usdErr != nil {
			h.Logger.Warn("QUBIC price unavailable for asset quote", zap.String("asset", name), zap.Error(usdErr))
		} else if last.Price != nil && usd > 0 {
			inUSD := float64(*last.Price) * usd
			payload.QubicPriceUSD = &usd
			payload.PriceInUSD = &inUSD
		}
		return found(payload)
	}, func(args assetArgs) any {
		return assetPricePayload{AssetName: strings.TrimSpace(args.AssetName)}
	})
}

type qubicPriceArgs struct {
	IncludePriceHistory *bool `json:"includePriceHistory"`
}

type qubicPricePayload struct {
	CurrentPrice             *float64            `json:"currentPrice"`
	PriceChange24h           *float64            `json:"priceChange24h"`
	PriceChangePercentage24h *float64            `json:"priceChangePercentage24h"`
	MarketCap                *float64            `json:"marketCap"`
	Volume24h                *float64            `json:"volume24h"`
	PriceHistory             []prices.PricePoint `json:"priceHistory,omitempty"`
}

func (h *handlers) qubicPrice() *Tool {
	return define(Tool{
		Name:         QubicPrice,
		Description:  "Get the current QUBIC price in USD with market data and price chart. Use this when users ask about QUBIC price, market cap, or want to see price trends.",
		IDPrefix:     "qubic-price",
		DefaultLimit: priceHistoryDays,
		MaxLimit:     priceHistoryDays,
		Parameters: object(map[string]jsonschema.Definition{
			"includePriceHistory": boolParam("Whether to include 7-day price history for chart (default: true)"),
		}),
	}, func(ctx context.Context, args qubicPriceArgs) (Result, error) {
		var (
			details    *prices.Details
			detailsErr error
			history    []prices.PricePoint
			historyErr error
		)
		group := h.Pool.NewGroupContext(ctx)
		groupCtx := group.Context()
		group.Submit(func() {
			details, detailsErr = h.Prices.Details(groupCtx)
		})
		if boolOr(args.IncludePriceHistory, true) {
			group.Submit(func() {
				history, historyErr = h.Prices.History(groupCtx, priceHistoryDays)
			})
		}
		if err := h.waitGroup(ctx, group.Wait, QubicPrice); err != nil {
			return Result{}, err
		}

		if detailsErr == nil && details == nil {
			detailsErr = prices.ErrNoMarketData
		}
		if detailsErr != nil {
			return Result{}, fmt.Errorf("%w: %v", errPriceUnavailable, detailsErr)
		}
		if historyErr != nil {
			h.Logger.Warn("QUBIC price history unavailable", zap.Error(historyErr))
		}
		return found(qubicPricePayload{
			CurrentPrice:             &details.CurrentPrice,
			PriceChange24h:           &details.PriceChange24h,
			PriceChangePercentage24h: &details.PriceChangePercentage24h,
			MarketCap:                &details.MarketCap,
			Volume24h:                &details.Volume24h,
			PriceHistory:             history,
		})
	}, func(qubicPriceArgs) any {
		return qubicPricePayload{}
	})
}

type portfolioArgs struct {
	WalletID string `json:"walletId"`
}

func (h *handlers) walletPortfolio() *Tool {
	return define(Tool{
		Name:        WalletPortfolio,
		Description: "Get all QX assets held by a specific wallet address. Shows current holdings with buy/sell history, profit/loss, and portfolio value. Use when users ask 'show me wallet assets', 'what does this wallet own', or 'wallet portfolio'.",
		IDPrefix:    "wallet-portfolio",
		Parameters: object(map[string]jsonschema.Definition{
			"walletId": stringParam("The Qubic wallet address (60 characters) to get portfolio for"),
		}, "walletId"),
	}, func(ctx context.Context, args portfolioArgs) (Result, error) {
		walletID := strings.TrimSpace(args.WalletID)
		if walletID == "" {
			return Result{}, fmt.Errorf("%w: walletId is required", ErrInvalidArgs)
		}

		var (
			positions    []explorer.AssetPosition
			positionsErr error
			balance      *int64
			balanceErr   error
		)
		group := h.Pool.NewGroupContext(ctx)
		groupCtx := group.Context()
		group.Submit(func() {
			positions, positionsErr = h.Store.WalletPositions(groupCtx, walletID)
		})
		group.Submit(func() {
			balance, balanceErr = h.RPC.Balance(groupCtx, walletID)
		})
		if err := h.waitGroup(ctx, group.Wait, WalletPortfolio); err != nil {
			return Result{}, err
		}

		if positionsErr != nil {
			return Result{}, positionsErr
		}
		if balanceErr != nil {
			h.Logger.Debug("wallet balance unavailable", zap.String("wallet", walletID), zap.Error(balanceErr))
			balance = nil
		}
		return found(analytics.ValuePortfolio(walletID, positions, balance))
	}, func(args portfolioArgs) any {
		return analytics.Portfolio{WalletID: strings.TrimSpace(args.WalletID), Assets: []explorer.AssetPosition{}}
	})
}

func (h *handlers) marketOverview() *Tool {
	return define(Tool{
		Name:        MarketOverview,
		Description: "Get comprehensive QX market statistics including total assets, trading volume, unique traders, and most traded assets. Use when users ask about 'market overview', 'QX statistics', or 'exchange summary'.",
		IDPrefix:    "market-overview",
		Parameters:  object(nil),
	}, func(ctx context.Context, _ noArgs) (Result, error) {
		stats, err := h.Store.MarketStats(ctx)
		if err != nil {
			return Result{}, err
		}
		return found(stats)
	}, func(noArgs) any {
		return explorer.MarketStats{}
	})
}

type compareArgs struct {
	AssetNames []string `json:"assetNames"`
}

type comparePayload struct {
	Assets []analytics.AssetComparison `json:"assets"`
}

func (h *handlers) compareAssets() *Tool {
	return define(Tool{
		Name:        CompareAssets,
		Description: "Compare multiple QX assets side-by-side in a SINGLE comparison table. Shows trading volume, price changes, unique traders, and performance metrics for ALL assets together. IMPORTANT: When user asks to 'compare CFB, QUTIL, and GARTH', call this tool ONCE with assetNames: ['CFB', 'QUTIL', 'GARTH']. Do NOT call it multiple times.",
		IDPrefix:    "compare-assets",
		Parameters: object(map[string]jsonschema.Definition{
			"assetNames": stringListParam("Array of 2 or more asset names to compare together (e.g., ['CFB', 'QUTIL', 'GARTH'])"),
		}, "assetNames"),
	}, func(ctx context.Context, args compareArgs) (Result, error) {
		if len(args.AssetNames) < 2 {
			return Result{}, fmt.Errorf("%w: assetNames needs at least 2 assets, got %d", ErrInvalidArgs, len(args.AssetNames))
		}
		rows := make([]analytics.AssetComparison, 0, len(args.AssetNames))
		for _, raw := range args.AssetNames {
			name := strings.TrimSpace(raw)
			if name == "" {
				return Result{}, fmt.Errorf("%w: assetNames contains an empty name", ErrInvalidArgs)
			}
			stats, err := h.Store.AssetStats(ctx, name)
			if err != nil {
				return Result{}, fmt.Errorf("failed to compare %s: %w", name, err)
			}
			rows = append(rows, analytics.Compare(stats))
		}
		return found(comparePayload{Assets: rows})
	}, func(compareArgs) any {
		return comparePayload{Assets: []analytics.AssetComparison{}}
	})
}

type nftArgs struct {
	NFTID Int `json:"nftId"`
}

type nftPayload struct {
	NFT *nft.Metadata `json:"nft"`
}

func (h *handlers) nftDetails() *Tool {
	return define(Tool{
		Name:        NFTDetails,
		Description: "Get detailed information about a specific NFT from QUBICBAY marketplace. Returns NFT image, metadata, traits, collection info, owner details, and trading history. Use this when users ask about a specific NFT by ID or want to see NFT details.",
		IDPrefix:    "nft",
		Parameters: object(map[string]jsonschema.Definition{
			"nftId": numberParam("The NFT ID to fetch details for"),
		}, "nftId"),
	}, func(ctx context.Context, args nftArgs) (Result, error) {
		if !args.NFTID.IsSet() {
			return Result{}, fmt.Errorf("%w: nftId is required", ErrInvalidArgs)
		}
		id := args.NFTID.Or(0)
		prefix := fmt.Sprintf("nft-%d", id)
		meta, err := h.NFTs.NFT(ctx, id)
		if errors.Is(err, nft.ErrNotFound) {
			res, _ := missing(nftPayload{}, "NFT #%d not found. It may not exist or the QUBICBAY API is temporarily unavailable.", id)
			res.IDPrefix = prefix
			return res, nil
		}
		if err != nil {
			return Result{}, err
		}
		return Result{Payload: nftPayload{NFT: meta}, IDPrefix: prefix}, nil
	}, func(nftArgs) any {
		return nftPayload{}
	})
}

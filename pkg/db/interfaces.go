package db

import (
	"context"

	"github.com/qubic-network/qubicx/pkg/db/models/explorer"
)

// ExplorerStore exposes the read-only queries over the indexed Qubic database.
// Implementations validate every row they return and report absent single rows with ErrNotFound.
type ExplorerStore interface {
	RecentTransactions(ctx context.Context, f TransactionFilter) ([]explorer.Transaction, error)
	AssetTrades(ctx context.Context, f TradeFilter) ([]explorer.QXTrade, error)
	WalletActivity(ctx context.Context, addressID string) (*explorer.WalletActivity, error)
	WalletTransactions(ctx context.Context, addressID string, limit int) ([]explorer.Transaction, error)
	Tick(ctx context.Context, tickNumber int64) (*explorer.Tick, error)
	TickTransactions(ctx context.Context, tickNumber int64, limit int) ([]explorer.Transaction, error)
	DatabaseStats(ctx context.Context) (explorer.DatabaseStats, error)

	QEARNTransactions(ctx context.Context, f EventFilter) ([]explorer.QEARNTransaction, error)
	CCFTransactions(ctx context.Context, f EventFilter) ([]explorer.CCFTransaction, error)
	QBAYTransactions(ctx context.Context, f EventFilter) ([]explorer.QBAYTransaction, error)

	// ActiveAddresses ranks senders by transaction count, heartbeat and system traffic excluded.
	ActiveAddresses(ctx context.Context, limit int) ([]explorer.ActiveAddress, error)
	// WalletPositions returns the wallet's assets with positive net shares, largest first.
	WalletPositions(ctx context.Context, walletID string) ([]explorer.AssetPosition, error)
	MarketStats(ctx context.Context) (explorer.MarketStats, error)
	AssetStats(ctx context.Context, assetName string) (explorer.AssetStats, error)
	// LastAssetTrade returns the most recent priced Buy or Sell of the asset.
	LastAssetTrade(ctx context.Context, assetName string) (*explorer.QXTrade, error)
	// AssetVolumeSince counts Buy and Sell events with shares strictly after the given tick.
	AssetVolumeSince(ctx context.Context, assetName string, afterTick int64) (explorer.AssetVolume, error)
	// WhaleTransactions returns transfers of at least minAmount, largest first then newest first.
	WhaleTransactions(ctx context.Context, minAmount int64, limit int) ([]explorer.Transaction, error)

	Ping(ctx context.Context) error
	Close() error
}

// TransactionFilter narrows RecentTransactions. Empty strings mean no filter.
type TransactionFilter struct {
	Category string
	Contract string
	Limit    int
}

// TradeFilter narrows AssetTrades. Empty strings mean no filter.
type TradeFilter struct {
	AssetName string
	Event     string
	Limit     int
}

// EventFilter narrows contract event queries. An empty Event means all events.
type EventFilter struct {
	Event string
	Limit int
}

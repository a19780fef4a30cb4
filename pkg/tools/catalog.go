package tools

import (
	"time"

	"github.com/alitto/pond/v2"
	"github.com/qubic-network/qubicx/pkg/db"
	"github.com/qubic-network/qubicx/pkg/nft"
	"github.com/qubic-network/qubicx/pkg/prices"
	"github.com/qubic-network/qubicx/pkg/rpc"
	"go.uber.org/zap"
)

// Deps are the collaborators the tool handlers read from.
type Deps struct {
	Store  db.ExplorerStore
	RPC    rpc.Client
	Prices prices.Provider
	NFTs   nft.Provider
	// Pool runs the concurrent fan-outs (holder balances, price details and history).
	Pool   pond.Pool
	Logger *zap.Logger
	Now    func() time.Time
}

// Tool names.
const (
	RecentTransactions = "query_recent_transactions"
	AssetTrades        = "query_asset_trades"
	WalletActivity     = "query_wallet_activity"
	TickInfo           = "get_tick_info"
	DatabaseStats      = "get_database_stats"
	CurrentTick        = "get_current_tick"
	QEARNTransactions  = "query_qearn_transactions"
	CCFTransactions    = "query_ccf_transactions"
	QBAYTransactions   = "query_qbay_transactions"
	TopHolders         = "query_top_holders"
	AssetPrice         = "get_asset_price"
	QubicPrice         = "get_qubic_price"
	WalletPortfolio    = "query_wallet_portfolio"
	MarketOverview     = "get_market_overview"
	CompareAssets      = "compare_assets"
	WhaleTransactions  = "query_whale_transactions"
	NFTDetails         = "get_nft_details"
)

// NewCatalog returns a registry holding every tool, wired to deps.
func NewCatalog(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	h := &handlers{Deps: deps}
	r := NewRegistry(deps.Logger, deps.Now)
	r.Register(
		h.recentTransactions(),
		h.assetTrades(),
		h.walletActivity(),
		h.tickInfo(),
		h.databaseStats(),
		h.currentTick(),
		h.qearnTransactions(),
		h.ccfTransactions(),
		h.qbayTransactions(),
		h.topHolders(),
		h.assetPrice(),
		h.qubicPrice(),
		h.walletPortfolio(),
		h.marketOverview(),
		h.compareAssets(),
		h.whaleTransactions(),
		h.nftDetails(),
	)
	return r
}

type handlers struct {
	Deps
}

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/qubic-network/qubicx/pkg/db"
	"github.com/qubic-network/qubicx/pkg/db/memory"
	"github.com/qubic-network/qubicx/pkg/nft"
	"github.com/qubic-network/qubicx/pkg/prices"
	"github.com/qubic-network/qubicx/pkg/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const fixedMillis = 1_760_400_500_000

type fakeRPC struct {
	mu       sync.Mutex
	tick     *rpc.TickInfo
	tickErr  error
	balances map[string]int64
	failing  map[string]bool
	calls    int
}

func (f *fakeRPC) CurrentTick(context.Context) (*rpc.TickInfo, error) {
	if f.tickErr != nil {
		return nil, f.tickErr
	}
	return f.tick, nil
}

func (f *fakeRPC) Balance(_ context.Context, id string) (*int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failing[id] {
		return nil, errors.New("rpc unavailable")
	}
	b, ok := f.balances[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

type fakePrices struct {
	usd          float64
	usdErr       error
	details      *prices.Details
	detailsErr   error
	history      []prices.PricePoint
	historyCalls int
	mu           sync.Mutex
}

func (f *fakePrices) USDPrice(context.Context) (float64, error) { return f.usd, f.usdErr }

func (f *fakePrices) Details(context.Context) (*prices.Details, error) {
	return f.details, f.detailsErr
}

func (f *fakePrices) History(_ context.Context, days int) ([]prices.PricePoint, error) {
	f.mu.Lock()
	f.historyCalls++
	f.mu.Unlock()
	return f.history[:min(days, len(f.history))], nil
}

type fakeNFTs struct {
	items map[int64]*nft.Metadata
	err   error
}

func (f *fakeNFTs) NFT(_ context.Context, id int64) (*nft.Metadata, error) {
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.items[id]
	if !ok {
		return nil, nft.ErrNotFound
	}
	return m, nil
}

type fixture struct {
	deps   Deps
	rpc    *fakeRPC
	prices *fakePrices
	nfts   *fakeNFTs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pool := pond.NewPool(4)
	t.Cleanup(pool.StopAndWait)

	f := &fixture{
		rpc: &fakeRPC{
			tick:     &rpc.TickInfo{CurrentTick: 30_000_200, Epoch: 180, Timestamp: fixedMillis},
			balances: map[string]int64{memory.Alice: 1000},
		},
		prices: &fakePrices{
			usd: 0.000002,
			details: &prices.Details{
				CurrentPrice:             0.000002,
				PriceChange24h:           0.0000001,
				PriceChangePercentage24h: 5.2,
				MarketCap:                250_000_000,
				Volume24h:                4_000_000,
			},
			history: []prices.PricePoint{
				{Timestamp: 1, Price: 0.0000019}, {Timestamp: 2, Price: 0.000002},
			},
		},
		nfts: &fakeNFTs{items: map[int64]*nft.Metadata{42: {ID: 42, Name: "Qubic Cat #42"}}},
	}
	f.deps = Deps{
		Store:  memory.New(memory.Sample()),
		RPC:    f.rpc,
		Prices: f.prices,
		NFTs:   f.nfts,
		Pool:   pool,
		Logger: zaptest.NewLogger(t),
		Now:    func() time.Time { return time.UnixMilli(fixedMillis) },
	}
	return f
}

func (f *fixture) invoke(t *testing.T, name, args string) map[string]any {
	t.Helper()
	env, err := NewCatalog(f.deps).Invoke(context.Background(), name, json.RawMessage(args))
	require.NoError(t, err)
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, RoleInformation, out["role"])
	return out
}

func list(t *testing.T, v any) []map[string]any {
	t.Helper()
	items, ok := v.([]any)
	require.True(t, ok, "expected a list, got %T", v)
	out := make([]map[string]any, len(items))
	for i, item := range items {
		out[i] = item.(map[string]any)
	}
	return out
}

func TestCatalog_ListsEveryTool(t *testing.T) {
	r := NewCatalog(newFixture(t).deps)
	want := []string{
		RecentTransactions, AssetTrades, WalletActivity, TickInfo, DatabaseStats, CurrentTick,
		QEARNTransactions, CCFTransactions, QBAYTransactions, TopHolders, AssetPrice, QubicPrice,
		WalletPortfolio, MarketOverview, CompareAssets, WhaleTransactions, NFTDetails,
	}
	got := r.List()
	require.Len(t, got, len(want))
	for i, tool := range got {
		assert.Equal(t, want[i], tool.Name)
		assert.NotEmpty(t, tool.Description)
		assert.NotEmpty(t, tool.IDPrefix)
		assert.Equal(t, "object", string(tool.Parameters.Type))
	}

	compare, ok := r.Get(CompareAssets)
	require.True(t, ok)
	assert.Equal(t, []string{"assetNames"}, compare.Parameters.Required)
}

func TestInvoke_UnknownTool(t *testing.T) {
	_, err := NewCatalog(newFixture(t).deps).Invoke(context.Background(), "drop_tables", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestRecentTransactions_ClampsAndEchoes(t *testing.T) {
	f := newFixture(t)

	out := f.invoke(t, RecentTransactions, `{"limit":"2"}`)
	assert.Equal(t, "tx-query-1760400500000", out["id"])
	assert.Equal(t, true, out["success"])
	assert.NotContains(t, out, "error")
	assert.Equal(t, 2.0, out["count"])
	rows := list(t, out["transactions"])
	assert.Equal(t, "sampletx09", rows[0]["tx_id"])
	assert.Equal(t, "KEMUBCRDLSBQ...", rows[0]["from"])

	out = f.invoke(t, RecentTransactions, `{"limit":500,"category":"defi"}`)
	assert.Equal(t, 3.0, out["count"])
	assert.Equal(t, map[string]any{"limit": 500.0, "category": "defi", "contract": nil}, out["filters"])
}

func TestRecentTransactions_MalformedArgs(t *testing.T) {
	out := newFixture(t).invoke(t, RecentTransactions, `{"limit":{}}`)
	assert.Equal(t, "tx-query-error-1760400500000", out["id"])
	assert.Equal(t, false, out["success"])
	assert.Contains(t, out["error"], "invalid tool arguments")
	assert.Equal(t, 0.0, out["count"])
	assert.Equal(t, []any{}, out["transactions"])
}

type panicStore struct {
	db.ExplorerStore
}

func TestInvoke_RecoversPanics(t *testing.T) {
	f := newFixture(t)
	f.deps.Store = panicStore{}

	out := f.invoke(t, MarketOverview, `{}`)
	assert.Equal(t, false, out["success"])
	assert.Contains(t, out["error"], "failed unexpectedly")
	assert.Equal(t, "market-overview-error-1760400500000", out["id"])
	assert.Nil(t, out["most_traded_asset"])
	assert.Equal(t, 0.0, out["total_trades"])
}

func TestWalletActivity(t *testing.T) {
	f := newFixture(t)

	out := f.invoke(t, WalletActivity, `{"walletId":"NOSUCHWALLET"}`)
	assert.Equal(t, true, out["success"])
	assert.Contains(t, out, "wallet")
	assert.Nil(t, out["wallet"])
	assert.Equal(t, "Wallet address not found: NOSUCHWALLET", out["error"])

	out = f.invoke(t, WalletActivity, `{"walletId":"`+memory.Alice+`","transactionLimit":2}`)
	assert.Equal(t, true, out["success"])
	wallet := out["wallet"].(map[string]any)
	assert.Equal(t, 3.0, wallet["tx_count"])
	rows := list(t, out["transactions"])
	require.Len(t, rows, 2)
	assert.NotContains(t, rows[0], "contract")

	out = f.invoke(t, WalletActivity, `{"walletId":"`+memory.Alice+`","includeTransactions":false}`)
	assert.NotContains(t, out, "transactions")

	out = f.invoke(t, WalletActivity, `{}`)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "wallet-error-1760400500000", out["id"])
}

func TestTickInfo(t *testing.T) {
	f := newFixture(t)

	out := f.invoke(t, TickInfo, `{"tickNumber":999999999}`)
	assert.Equal(t, true, out["success"])
	assert.Nil(t, out["tick"])
	assert.Equal(t, "Tick 999999999 not found in database. The database covers ticks 30000100 → 30000105. Note: Not all ticks are stored - the blockchain may skip some ticks.", out["error"])

	out = f.invoke(t, TickInfo, `{"tickNumber":"30000101"}`)
	assert.Equal(t, true, out["success"])
	tick := out["tick"].(map[string]any)
	assert.Equal(t, 30_000_101.0, tick["tick_number"])
	rows := list(t, out["transactions"])
	require.Len(t, rows, 2)
	assert.Equal(t, "QX", rows[0]["contract"])

	out = f.invoke(t, TickInfo, `{}`)
	assert.Equal(t, false, out["success"])
}

func TestDatabaseStatsAndCurrentTick(t *testing.T) {
	f := newFixture(t)

	out := f.invoke(t, DatabaseStats, ``)
	assert.Equal(t, map[string]any{
		"totalTransactions": 10.0,
		"totalTicks":        5.0,
		"tickRange":         "30000100 → 30000105",
	}, out["stats"])

	out = f.invoke(t, CurrentTick, `{}`)
	assert.Equal(t, "current-tick-1760400500000", out["id"])
	assert.Equal(t, 30_000_200.0, out["currentTick"])
	assert.Equal(t, 180.0, out["epoch"])

	f.rpc.tickErr = errors.New("connection refused")
	out = f.invoke(t, CurrentTick, `{}`)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "connection refused", out["error"])
	assert.NotContains(t, out, "currentTick")
}

func TestWhaleTransactions_PageStats(t *testing.T) {
	out := newFixture(t).invoke(t, WhaleTransactions, `{}`)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, 5.0, out["count"])
	assert.Equal(t, 1_000_000.0, out["minAmount"])
	assert.Equal(t, 8_018_500_000.0, out["totalValue"])
	assert.Equal(t, 8_000_000_000.0, out["largestAmount"])
	assert.Equal(t, "page", out["statsScope"])
	assert.Equal(t, map[string]any{"minAmount": 1_000_000.0}, out["filters"])

	rows := list(t, out["transactions"])
	assert.Equal(t, memory.Exchange, rows[0]["from"])
	var prev float64
	for i, row := range rows {
		amount := row["amount"].(float64)
		assert.GreaterOrEqual(t, amount, 1_000_000.0)
		if i > 0 {
			assert.LessOrEqual(t, amount, prev)
		}
		prev = amount
	}
}

func TestWhaleTransactions_HugeThresholdSaturates(t *testing.T) {
	out := newFixture(t).invoke(t, WhaleTransactions, `{"minAmount": 1e19}`)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, float64(math.MaxInt64), out["minAmount"])
	assert.Empty(t, list(t, out["transactions"]))
}

func TestContractTools(t *testing.T) {
	f := newFixture(t)

	out := f.invoke(t, QEARNTransactions, `{"event":"lock"}`)
	rows := list(t, out["transactions"])
	require.Len(t, rows, 1)
	assert.Equal(t, 180.0, rows[0]["locked_epoch"])
	assert.Equal(t, "qearn-1760400500000", out["id"])

	out = f.invoke(t, CCFTransactions, `{}`)
	rows = list(t, out["transactions"])
	require.Len(t, rows, 2)
	assert.Equal(t, "Vote", rows[0]["event"])
	assert.Equal(t, "yes", rows[0]["vote_text"])
	assert.Nil(t, rows[0]["url"])

	out = f.invoke(t, QBAYTransactions, `{"limit":1}`)
	rows = list(t, out["transactions"])
	require.Len(t, rows, 1)
	assert.Equal(t, 42.0, rows[0]["nft_id"])
	assert.Equal(t, 1.0, rows[0]["payment_method"])
}

func TestAssetTrades(t *testing.T) {
	out := newFixture(t).invoke(t, AssetTrades, `{"assetName":"CFB"}`)
	assert.Equal(t, 5.0, out["count"])
	assert.NotEmpty(t, out["analysis"])
	filters := out["filters"].(map[string]any)
	assert.Equal(t, "CFB", filters["assetName"])
	for _, row := range list(t, out["trades"]) {
		assert.Equal(t, "CFB", row["asset"])
	}
}

func TestTopHolders_EnrichesAndSorts(t *testing.T) {
	f := newFixture(t)
	f.rpc.balances = map[string]int64{
		memory.Alice:    100,
		memory.Carol:    500,
		memory.Exchange: 1_000_000_000,
	}
	f.rpc.failing = map[string]bool{memory.Bob: true}

	out := f.invoke(t, TopHolders, `{"limit":100}`)
	assert.Equal(t, true, out["success"])
	holders := list(t, out["holders"])
	require.Len(t, holders, 5)
	assert.Equal(t, 5, f.rpc.calls)

	assert.Equal(t, memory.Exchange, holders[0]["address_id"])
	assert.Equal(t, memory.Carol, holders[1]["address_id"])
	assert.Equal(t, memory.Alice, holders[2]["address_id"])
	for _, h := range holders[3:] {
		assert.Nil(t, h["balance"])
	}
	statuses := map[any]any{}
	for _, h := range holders {
		statuses[h["address_id"]] = h["balance_status"]
	}
	assert.Equal(t, "error", statuses[memory.Bob])
	assert.Equal(t, "error", statuses[memory.Dave], "answered without a balance")
	assert.Equal(t, "loaded", statuses[memory.Alice])
	assert.NotEmpty(t, out["analysis"])
}

func TestAssetPrice(t *testing.T) {
	f := newFixture(t)

	out := f.invoke(t, AssetPrice, `{"assetName":"CFB"}`)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, 1200.0, out["priceInQubic"])
	assert.InDelta(t, 0.0024, out["priceInUSD"], 1e-12)
	assert.Equal(t, 0.000002, out["qubicPriceUSD"])
	assert.Equal(t, "Buy", out["lastTradeEvent"])
	assert.Equal(t, 30_000_101.0, out["lastTradeTick"])
	assert.Equal(t, 380.0, out["volume24h"])
	assert.Equal(t, 4.0, out["trades24h"])

	out = f.invoke(t, AssetPrice, `{"assetName":"NOPE"}`)
	assert.Equal(t, true, out["success"])
	assert.Nil(t, out["priceInQubic"])
	assert.Equal(t, "No trading data found for NOPE. This asset may not exist or hasn't been traded recently.", out["error"])

	f.prices.usdErr = errors.New("coingecko down")
	out = f.invoke(t, AssetPrice, `{"assetName":"CFB"}`)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, 1200.0, out["priceInQubic"])
	assert.Nil(t, out["priceInUSD"])
	assert.Nil(t, out["qubicPriceUSD"])
}

func TestQubicPrice(t *testing.T) {
	f := newFixture(t)

	out := f.invoke(t, QubicPrice, `{}`)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, 5.2, out["priceChangePercentage24h"])
	assert.Len(t, out["priceHistory"], 2)

	out = f.invoke(t, QubicPrice, `{"includePriceHistory":false}`)
	assert.NotContains(t, out, "priceHistory")
	assert.Equal(t, 1, f.prices.historyCalls)

	f.prices.detailsErr = errors.New("status 429")
	out = f.invoke(t, QubicPrice, `{}`)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "qubic-price-error-1760400500000", out["id"])
	assert.Contains(t, out["error"], "unable to fetch QUBIC price from CoinGecko")
	assert.Contains(t, out, "currentPrice")
	assert.Nil(t, out["currentPrice"])
}

func TestWalletPortfolio(t *testing.T) {
	f := newFixture(t)

	out := f.invoke(t, WalletPortfolio, `{"walletId":"`+memory.Alice+`"}`)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, 1000.0, out["qubicBalance"])
	assert.Equal(t, 363_500.0, out["assetsValue"])
	assert.Equal(t, 364_500.0, out["totalValue"])
	assets := list(t, out["assets"])
	require.Len(t, assets, 2)
	for _, a := range assets {
		assert.Greater(t, a["net_shares"], 0.0)
		assert.Equal(t, a["total_bought"].(float64)-a["total_sold"].(float64), a["net_shares"])
	}

	f.rpc.failing = map[string]bool{memory.Alice: true}
	out = f.invoke(t, WalletPortfolio, `{"walletId":"`+memory.Alice+`"}`)
	assert.Equal(t, true, out["success"])
	assert.Nil(t, out["qubicBalance"])
	assert.Equal(t, 363_500.0, out["totalValue"])
}

func TestMarketOverview(t *testing.T) {
	out := newFixture(t).invoke(t, MarketOverview, ``)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, 3.0, out["total_assets"])
	assert.Equal(t, 7.0, out["total_trades"])
	assert.Equal(t, 471_000.0, out["total_volume_qubic"])
	assert.Equal(t, "CFB", out["most_traded_asset"])
	assert.Equal(t, 4.0, out["most_traded_count"])
}

func TestCompareAssets(t *testing.T) {
	f := newFixture(t)

	out := f.invoke(t, CompareAssets, `{"assetNames":["QUTIL","CFB","ZZZ"]}`)
	assert.Equal(t, true, out["success"])
	rows := list(t, out["assets"])
	require.Len(t, rows, 3)
	assert.Equal(t, "QUTIL", rows[0]["asset_name"])
	assert.Equal(t, 12.5, rows[0]["price_change_percent"])
	assert.Equal(t, "CFB", rows[1]["asset_name"])
	assert.Equal(t, 20.0, rows[1]["price_change_percent"])
	assert.Equal(t, "ZZZ", rows[2]["asset_name"])
	assert.Equal(t, 0.0, rows[2]["total_trades"])
	assert.Nil(t, rows[2]["avg_price"])

	out = f.invoke(t, CompareAssets, `{"assetNames":["CFB"]}`)
	assert.Equal(t, false, out["success"])
	assert.Contains(t, out["error"], "at least 2")
	assert.Equal(t, []any{}, out["assets"])
}

func TestNFTDetails(t *testing.T) {
	f := newFixture(t)

	out := f.invoke(t, NFTDetails, `{"nftId":42}`)
	assert.Equal(t, "nft-42-1760400500000", out["id"])
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Qubic Cat #42", out["nft"].(map[string]any)["name"])

	out = f.invoke(t, NFTDetails, `{"nftId":7}`)
	assert.Equal(t, "nft-7-1760400500000", out["id"])
	assert.Equal(t, true, out["success"])
	assert.Nil(t, out["nft"])
	assert.Equal(t, "NFT #7 not found. It may not exist or the QUBICBAY API is temporarily unavailable.", out["error"])

	f.nfts.err = errors.New("bad gateway")
	out = f.invoke(t, NFTDetails, `{"nftId":42}`)
	assert.Equal(t, "nft-error-1760400500000", out["id"])
	assert.Equal(t, false, out["success"])
}

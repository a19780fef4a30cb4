package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/qubic-network/qubicx/pkg/db"
	"github.com/qubic-network/qubicx/pkg/db/models/explorer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txIDs(txs []explorer.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.TxID
	}
	return out
}

func TestRecentTransactions_Filters(t *testing.T) {
	ctx := context.Background()
	s := New(Sample())

	all, err := s.RecentTransactions(ctx, db.TransactionFilter{Limit: 3})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(30_000_105), all[0].TickNumber)
	assert.GreaterOrEqual(t, all[1].TickNumber, all[2].TickNumber)

	defi, err := s.RecentTransactions(ctx, db.TransactionFilter{Category: explorer.CategoryDefi, Contract: explorer.ContractQX, Limit: 20})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sampletx03", "sampletx04"}, txIDs(defi))

	none, err := s.RecentTransactions(ctx, db.TransactionFilter{Contract: "NOPE", Limit: 20})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestWalletActivity_NotFound(t *testing.T) {
	s := New(Sample())

	w, err := s.WalletActivity(context.Background(), Alice)
	require.NoError(t, err)
	assert.Equal(t, int64(3), w.TxCount)

	_, err = s.WalletActivity(context.Background(), "MISSING")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestWalletTransactions_BothDirections(t *testing.T) {
	s := New(Sample())
	txs, err := s.WalletTransactions(context.Background(), Alice, 50)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sampletx01", "sampletx03", "sampletx07", "sampletx09", "sampletx10"}, txIDs(txs))
}

func TestTick(t *testing.T) {
	ctx := context.Background()
	s := New(Sample())

	tick, err := s.Tick(ctx, 30_000_101)
	require.NoError(t, err)
	assert.Equal(t, int32(2), tick.QXCount)

	_, err = s.Tick(ctx, 30_000_103)
	assert.ErrorIs(t, err, db.ErrNotFound)

	txs, err := s.TickTransactions(ctx, 30_000_101, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"sampletx03", "sampletx04"}, txIDs(txs))
}

func TestDatabaseStats(t *testing.T) {
	stats, err := New(Sample()).DatabaseStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalTransactions)
	assert.Equal(t, int64(5), stats.TotalTicks)
	assert.Equal(t, "30000100 → 30000105", stats.TickRange())

	empty, err := New(Fixture{}).DatabaseStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "none → none", empty.TickRange())
}

func TestActiveAddresses_ExcludesHeartbeatAndSystem(t *testing.T) {
	got, err := New(Sample()).ActiveAddresses(context.Background(), 10)
	require.NoError(t, err)

	ids := make([]string, len(got))
	for i, a := range got {
		ids[i] = a.AddressID
	}
	assert.Equal(t, []string{Alice, Carol, Exchange, Dave, Bob}, ids)
	assert.Equal(t, int64(3), got[0].TxCount)
	assert.Equal(t, int64(30_000_100), got[0].FirstSeenTick)
	assert.Equal(t, int64(30_000_105), got[0].LastActiveTick)
	assert.NotContains(t, ids, QXAddress)
}

func TestMarketAndAssetAggregates(t *testing.T) {
	ctx := context.Background()
	s := New(Sample())

	m, err := s.MarketStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), m.TotalAssets)
	assert.Equal(t, int64(7), m.TotalTrades)
	assert.Equal(t, int64(471_000), m.TotalVolumeQubic)
	assert.Equal(t, int64(3), m.UniqueTraders)
	assert.Equal(t, "CFB", *m.MostTradedAsset)
	assert.Equal(t, int64(4), m.MostTradedCount)
	assert.Equal(t, int64(30_000_104), m.LatestTick)

	cfb, err := s.AssetStats(ctx, "CFB")
	require.NoError(t, err)
	assert.Equal(t, int64(409_500), cfb.TotalVolume)
	assert.Equal(t, int64(1000), *cfb.FirstPrice)
	assert.Equal(t, int64(1200), *cfb.LastPrice)

	last, err := s.LastAssetTrade(ctx, "CFB")
	require.NoError(t, err)
	assert.Equal(t, "sampleqx03", last.TxID)

	_, err = s.LastAssetTrade(ctx, "NOPE")
	assert.ErrorIs(t, err, db.ErrNotFound)

	vol, err := s.AssetVolumeSince(ctx, "CFB", 30_000_101-8640)
	require.NoError(t, err)
	assert.Equal(t, explorer.AssetVolume{Trades: 4, Shares: 380}, vol)
}

func TestWalletPositions_OpenOnly(t *testing.T) {
	positions, err := New(Sample()).WalletPositions(context.Background(), Alice)
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, "GARTH", positions[0].AssetName)
	assert.Equal(t, int64(500), positions[0].NetShares)
	assert.Equal(t, "CFB", positions[1].AssetName)
	assert.Equal(t, int64(300), positions[1].NetShares)
	assert.Equal(t, int64(1200), *positions[1].LastTradePrice)
}

func TestWhaleTransactions_Order(t *testing.T) {
	txs, err := New(Sample()).WhaleTransactions(context.Background(), 1_000_000, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"sampletx02", "sampletx05", "sampletx08", "sampletx01", "sampletx09"}, txIDs(txs))
}

func TestContractEvents(t *testing.T) {
	ctx := context.Background()
	s := New(Sample())

	locks, err := s.QEARNTransactions(ctx, db.EventFilter{Event: explorer.QEARNEventLock, Limit: 50})
	require.NoError(t, err)
	require.Len(t, locks, 1)
	assert.Equal(t, Carol, locks[0].SourceID)

	votes, err := s.CCFTransactions(ctx, db.EventFilter{Limit: 50})
	require.NoError(t, err)
	require.Len(t, votes, 2)
	assert.Equal(t, explorer.CCFEventVote, votes[0].Event)

	qbay, err := s.QBAYTransactions(ctx, db.EventFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, qbay, 2)
	assert.Equal(t, "sampleqb01", qbay[0].TxID)
}

func TestMalformedRowsAreRejected(t *testing.T) {
	f := Sample()
	f.Transactions = append(f.Transactions, explorer.Transaction{TxID: "bad", TickNumber: 30_000_105, Category: "mystery"})
	s := New(f)

	_, err := s.RecentTransactions(context.Background(), db.TransactionFilter{Limit: 100})
	assert.ErrorIs(t, err, db.ErrMalformedRow)

	// rows outside the result are not inspected
	_, err = s.WhaleTransactions(context.Background(), 1_000_000, 50)
	assert.NoError(t, err)
}

func TestLoadAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"ticks": [{"tick_number": 7, "transaction_count": 1}],
		"transactions": [{"tx_id": "a", "tick_number": 7, "source_id": "X", "dest_id": "Y", "amount": 5, "category": "user"}]
	}`), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, s.Ping(context.Background()))

	stats, err := s.DatabaseStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalTransactions)

	require.NoError(t, s.Close())
	assert.Error(t, s.Ping(context.Background()))
	_, err = s.Tick(context.Background(), 7)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

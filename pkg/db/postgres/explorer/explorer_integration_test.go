package explorer_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/qubic-network/qubicx/pkg/db"
	"github.com/qubic-network/qubicx/pkg/db/memory"
	explorermodels "github.com/qubic-network/qubicx/pkg/db/models/explorer"
	"github.com/qubic-network/qubicx/pkg/db/postgres"
	"github.com/qubic-network/qubicx/pkg/db/postgres/explorer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
)

// setupExplorerDB starts a PostgreSQL container, creates the explorer tables, seeds the sample
// dataset and returns a read-only store over it.
func setupExplorerDB(t *testing.T) *explorer.DB {
	t.Helper()
	if testing.Short() || os.Getenv("QUBICX_INTEGRATION") != "1" {
		t.Skip("set QUBICX_INTEGRATION=1 to run postgres integration tests")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	seed, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer seed.Close()

	for _, table := range explorermodels.Tables() {
		_, err := seed.Exec(ctx, explorermodels.CreateTableSQL(table.Name, table.Columns))
		require.NoError(t, err, "failed to create %s", table.Name)
	}

	sample := memory.Sample()
	insertRows(t, seed, explorermodels.TransactionsTableName, sample.Transactions)
	insertRows(t, seed, explorermodels.QXTransactionsTableName, sample.QXTrades)
	insertRows(t, seed, explorermodels.QEARNTransactionsTableName, sample.QEARNTransactions)
	insertRows(t, seed, explorermodels.CCFTransactionsTableName, sample.CCFTransactions)
	insertRows(t, seed, explorermodels.QBAYTransactionsTableName, sample.QBAYTransactions)
	insertRows(t, seed, explorermodels.AddressesTableName, sample.Addresses)
	insertRows(t, seed, explorermodels.TicksTableName, sample.Ticks)

	cfg := postgres.DefaultPoolConfig(dsn)
	cfg.MinConns = 1
	store, err := explorer.New(ctx, zaptest.NewLogger(t), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// insertRows relies on the json tags of the row models matching the column names.
func insertRows[T any](t *testing.T, pool *pgxpool.Pool, table string, rows []T) {
	t.Helper()
	raw, err := json.Marshal(rows)
	require.NoError(t, err)
	query := fmt.Sprintf("INSERT INTO %s SELECT * FROM json_populate_recordset(NULL::%s, $1::json)", table, table)
	_, err = pool.Exec(context.Background(), query, string(raw))
	require.NoError(t, err, "failed to seed %s", table)
}

func TestExplorerDB_MatchesMemoryStore(t *testing.T) {
	pg := setupExplorerDB(t)
	mem := memory.New(memory.Sample())
	ctx := context.Background()

	t.Run("recent transactions", func(t *testing.T) {
		f := db.TransactionFilter{Category: explorermodels.CategoryDefi, Limit: 20}
		want, err := mem.RecentTransactions(ctx, f)
		require.NoError(t, err)
		got, err := pg.RecentTransactions(ctx, f)
		require.NoError(t, err)
		assert.ElementsMatch(t, want, got)
	})

	t.Run("wallet activity", func(t *testing.T) {
		got, err := pg.WalletActivity(ctx, memory.Alice)
		require.NoError(t, err)
		assert.Equal(t, int64(3), got.TxCount)

		_, err = pg.WalletActivity(ctx, "MISSING")
		assert.ErrorIs(t, err, db.ErrNotFound)
	})

	t.Run("ticks", func(t *testing.T) {
		_, err := pg.Tick(ctx, 30_000_103)
		assert.ErrorIs(t, err, db.ErrNotFound)

		want, err := mem.TickTransactions(ctx, 30_000_101, 100)
		require.NoError(t, err)
		got, err := pg.TickTransactions(ctx, 30_000_101, 100)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		stats, err := pg.DatabaseStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, "30000100 → 30000105", stats.TickRange())
		assert.Equal(t, int64(10), stats.TotalTransactions)
	})

	t.Run("active addresses", func(t *testing.T) {
		want, err := mem.ActiveAddresses(ctx, 10)
		require.NoError(t, err)
		got, err := pg.ActiveAddresses(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("aggregates", func(t *testing.T) {
		wantMarket, err := mem.MarketStats(ctx)
		require.NoError(t, err)
		gotMarket, err := pg.MarketStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, wantMarket, gotMarket)

		wantAsset, err := mem.AssetStats(ctx, "CFB")
		require.NoError(t, err)
		gotAsset, err := pg.AssetStats(ctx, "CFB")
		require.NoError(t, err)
		assert.Equal(t, wantAsset, gotAsset)

		wantPositions, err := mem.WalletPositions(ctx, memory.Alice)
		require.NoError(t, err)
		gotPositions, err := pg.WalletPositions(ctx, memory.Alice)
		require.NoError(t, err)
		assert.Equal(t, wantPositions, gotPositions)

		vol, err := pg.AssetVolumeSince(ctx, "CFB", 30_000_101-8640)
		require.NoError(t, err)
		assert.Equal(t, explorermodels.AssetVolume{Trades: 4, Shares: 380}, vol)

		last, err := pg.LastAssetTrade(ctx, "CFB")
		require.NoError(t, err)
		assert.Equal(t, "sampleqx03", last.TxID)
	})

	t.Run("whales", func(t *testing.T) {
		want, err := mem.WhaleTransactions(ctx, 1_000_000, 50)
		require.NoError(t, err)
		got, err := pg.WhaleTransactions(ctx, 1_000_000, 50)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("read only session", func(t *testing.T) {
		_, err := pg.Pool.Exec(ctx, "DELETE FROM transactions")
		assert.Error(t, err)
	})
}

package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/qubic-network/qubicx/pkg/analytics"
	"github.com/qubic-network/qubicx/pkg/db"
	"github.com/qubic-network/qubicx/pkg/db/models/explorer"
	"github.com/qubic-network/qubicx/pkg/rpc"
	"github.com/qubic-network/qubicx/pkg/utils"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const (
	recentDefaultLimit = 20
	recentMaxLimit     = 100

	walletTxDefaultLimit = 20
	walletTxMaxLimit     = 50

	tickTxLimit = 100

	whaleDefaultMinAmount = 1_000_000
	whalePageSize         = 50
)

// TransactionRow is the display shape of a transaction with shortened identities.
type TransactionRow struct {
	TxID     string  `json:"tx_id"`
	Tick     int64   `json:"tick"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	Amount   int64   `json:"amount"`
	Category string  `json:"category"`
	Contract *string `json:"contract"`
	Event    *string `json:"event"`
	Summary  *string `json:"summary"`
}

func transactionRows(txs []explorer.Transaction, shorten bool) []TransactionRow {
	rows := make([]TransactionRow, len(txs))
	for i, tx := range txs {
		from, to := tx.SourceID, tx.DestID
		if shorten {
			from, to = utils.ShortID(from), utils.ShortID(to)
		}
		rows[i] = TransactionRow{
			TxID:     tx.TxID,
			Tick:     tx.TickNumber,
			From:     from,
			To:       to,
			Amount:   tx.Amount,
			Category: tx.Category,
			Contract: tx.ContractName,
			Event:    tx.Event,
			Summary:  tx.DecodedSummary,
		}
	}
	return rows
}

// WalletTransactionRow is a wallet transaction without contract columns.
type WalletTransactionRow struct {
	TxID     string  `json:"tx_id"`
	Tick     int64   `json:"tick"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	Amount   int64   `json:"amount"`
	Category string  `json:"category"`
	Summary  *string `json:"summary"`
}

type recentArgs struct {
	Category string `json:"category"`
	Contract string `json:"contract"`
	Limit    Int    `json:"limit"`
}

type recentFilters struct {
	Limit    Int     `json:"limit"`
	Category *string `json:"category"`
	Contract *string `json:"contract"`
}

type transactionsPayload struct {
	Count        int              `json:"count"`
	Transactions []TransactionRow `json:"transactions"`
	Filters      *recentFilters   `json:"filters,omitempty"`
}

func (h *handlers) recentTransactions() *Tool {
	return define(Tool{
		Name:         RecentTransactions,
		Description:  "Query recent transactions from the Qubic blockchain database. Returns up to 20 transactions by default. Use this for general transaction queries or when filtering by contract name.",
		IDPrefix:     "tx-query",
		DefaultLimit: recentDefaultLimit,
		MaxLimit:     recentMaxLimit,
		Parameters: object(map[string]jsonschema.Definition{
			"category": stringParam("Filter by category: 'defi', 'nft', 'heartbeat', 'system', 'user'"),
			"contract": stringParam("Filter by smart contract: 'QX', 'QEARN', 'CCF', 'QBAY' (NOT asset names)"),
			"limit":    numberParam("Maximum number of transactions to return (default: 20, max: 100)"),
		}),
	}, func(ctx context.Context, args recentArgs) (Result, error) {
		txs, err := h.Store.RecentTransactions(ctx, db.TransactionFilter{
			Category: strings.TrimSpace(args.Category),
			Contract: strings.TrimSpace(args.Contract),
			Limit:    clampLimit(args.Limit, recentDefaultLimit, recentMaxLimit),
		})
		if err != nil {
			return Result{}, err
		}
		return found(transactionsPayload{
			Count:        len(txs),
			Transactions: transactionRows(txs, true),
			Filters:      &recentFilters{Limit: args.Limit, Category: optional(args.Category), Contract: optional(args.Contract)},
		})
	}, func(recentArgs) any {
		return transactionsPayload{Transactions: []TransactionRow{}}
	})
}

type walletArgs struct {
	WalletID            string `json:"walletId"`
	IncludeTransactions *bool  `json:"includeTransactions"`
	TransactionLimit    Int    `json:"transactionLimit"`
}

type walletPayload struct {
	Wallet       *explorer.WalletActivity `json:"wallet"`
	Transactions []WalletTransactionRow   `json:"transactions,omitempty"`
}

func (h *handlers) walletActivity() *Tool {
	return define(Tool{
		Name:         WalletActivity,
		Description:  "Look up information about a specific Qubic wallet address. Returns wallet statistics including transaction count, first/last activity, and address type. Also optionally returns recent transactions for that wallet.",
		IDPrefix:     "wallet",
		DefaultLimit: walletTxDefaultLimit,
		MaxLimit:     walletTxMaxLimit,
		Parameters: object(map[string]jsonschema.Definition{
			"walletId":            stringParam("The Qubic wallet address (60 characters) to look up"),
			"includeTransactions": boolParam("Whether to include recent transactions (default: true)"),
			"transactionLimit":    numberParam("Number of transactions to include if includeTransactions is true (default: 20, max: 50)"),
		}, "walletId"),
	}, func(ctx context.Context, args walletArgs) (Result, error) {
		walletID := strings.TrimSpace(args.WalletID)
		if walletID == "" {
			return Result{}, fmt.Errorf("%w: walletId is required", ErrInvalidArgs)
		}
		activity, err := h.Store.WalletActivity(ctx, walletID)
		if errors.Is(err, db.ErrNotFound) {
			return missing(walletPayload{}, "Wallet address not found: %s", walletID)
		}
		if err != nil {
			return Result{}, err
		}

		payload := walletPayload{Wallet: activity}
		if boolOr(args.IncludeTransactions, true) {
			limit := clampLimit(args.TransactionLimit, walletTxDefaultLimit, walletTxMaxLimit)
			txs, err := h.Store.WalletTransactions(ctx, walletID, limit)
			if err != nil {
				return Result{}, err
			}
			payload.Transactions = make([]WalletTransactionRow, len(txs))
			for i, tx := range txs {
				payload.Transactions[i] = WalletTransactionRow{
					TxID:     tx.TxID,
					Tick:     tx.TickNumber,
					From:     utils.ShortID(tx.SourceID),
					To:       utils.ShortID(tx.DestID),
					Amount:   tx.Amount,
					Category: tx.Category,
					Summary:  tx.DecodedSummary,
				}
			}
		}
		return found(payload)
	}, func(walletArgs) any {
		return walletPayload{}
	})
}

type tickArgs struct {
	TickNumber Int `json:"tickNumber"`
}

type tickPayload struct {
	Tick         *explorer.Tick   `json:"tick"`
	Transactions []TransactionRow `json:"transactions,omitempty"`
}

func (h *handlers) tickInfo() *Tool {
	return define(Tool{
		Name:         TickInfo,
		Description:  "Get detailed information about a specific tick (block) in the Qubic blockchain. Shows transaction counts by category and timestamp.",
		IDPrefix:     "tick",
		DefaultLimit: tickTxLimit,
		MaxLimit:     tickTxLimit,
		Parameters: object(map[string]jsonschema.Definition{
			"tickNumber": numberParam("The tick number to look up"),
		}, "tickNumber"),
	}, func(ctx context.Context, args tickArgs) (Result, error) {
		if !args.TickNumber.IsSet() {
			return Result{}, fmt.Errorf("%w: tickNumber is required", ErrInvalidArgs)
		}
		number := args.TickNumber.Or(0)
		tick, err := h.Store.Tick(ctx, number)
		if errors.Is(err, db.ErrNotFound) {
			stats, err := h.Store.DatabaseStats(ctx)
			if err != nil {
				return Result{}, err
			}
			return missing(tickPayload{},
				"Tick %d not found in database. The database covers ticks %s. Note: Not all ticks are stored - the blockchain may skip some ticks.",
				number, stats.TickRange())
		}
		if err != nil {
			return Result{}, err
		}

		txs, err := h.Store.TickTransactions(ctx, number, tickTxLimit)
		if err != nil {
			return Result{}, err
		}
		return found(tickPayload{Tick: tick, Transactions: transactionRows(txs, true)})
	}, func(tickArgs) any {
		return tickPayload{}
	})
}

// StatsView is the database coverage summary.
type StatsView struct {
	TotalTransactions int64  `json:"totalTransactions"`
	TotalTicks        int64  `json:"totalTicks"`
	TickRange         string `json:"tickRange"`
}

type statsPayload struct {
	Stats *StatsView `json:"stats,omitempty"`
}

type noArgs struct{}

func (h *handlers) databaseStats() *Tool {
	return define(Tool{
		Name:        DatabaseStats,
		Description: "Get overview statistics about the entire blockchain database, including total transaction count, tick range, and coverage period.",
		IDPrefix:    "stats",
		Parameters:  object(nil),
	}, func(ctx context.Context, _ noArgs) (Result, error) {
		stats, err := h.Store.DatabaseStats(ctx)
		if err != nil {
			return Result{}, err
		}
		return found(statsPayload{Stats: &StatsView{
			TotalTransactions: stats.TotalTransactions,
			TotalTicks:        stats.TotalTicks,
			TickRange:         stats.TickRange(),
		}})
	}, func(noArgs) any {
		return statsPayload{}
	})
}

func (h *handlers) currentTick() *Tool {
	return define(Tool{
		Name:        CurrentTick,
		Description: "Get the current tick number from the live Qubic network via RPC. Use this to show real-time network status or compare with historical data.",
		IDPrefix:    "current-tick",
		Parameters:  object(nil),
	}, func(ctx context.Context, _ noArgs) (Result, error) {
		info, err := h.RPC.CurrentTick(ctx)
		if err != nil {
			return Result{}, err
		}
		return found(info)
	}, func(noArgs) any {
		return (*rpc.TickInfo)(nil)
	})
}

type whaleArgs struct {
	MinAmount Int `json:"minAmount"`
}

type whaleFilters struct {
	MinAmount int64 `json:"minAmount"`
}

type whalePayload struct {
	analytics.WhaleSummary
	MinAmount int64 `json:"minAmount"`
	// StatsScope is always "page": the totals cover the returned transactions only.
	StatsScope   string           `json:"statsScope"`
	Transactions []TransactionRow `json:"transactions"`
	Filters      whaleFilters     `json:"filters"`
}

func whaleMinAmount(args whaleArgs) int64 {
	v := args.MinAmount.Or(whaleDefaultMinAmount)
	if v < 0 {
		return 0
	}
	return v
}

func (h *handlers) whaleTransactions() *Tool {
	return define(Tool{
		Name: WhaleTransactions,
		Description: "Query whale transactions (large QUBIC transfers) above a specified minimum amount. " +
			"Returns transactions sorted by amount in descending order with summary statistics. " +
			"Use this for: 'Show me whale transactions', 'Large QUBIC transfers', 'Transactions over X QUBIC', 'Biggest movements'.",
		IDPrefix:     "whale-tx",
		DefaultLimit: whalePageSize,
		MaxLimit:     whalePageSize,
		Parameters: object(map[string]jsonschema.Definition{
			"minAmount": numberParam("Minimum amount in QUBIC to filter whale transactions. Default is 1 million QUBIC. Common values: 1M, 5M, 10M, 100M."),
		}),
	}, func(ctx context.Context, args whaleArgs) (Result, error) {
		minAmount := whaleMinAmount(args)
		txs, err := h.Store.WhaleTransactions(ctx, minAmount, whalePageSize)
		if err != nil {
			return Result{}, err
		}
		return found(whalePayload{
			WhaleSummary: analytics.SummarizeWhales(txs),
			MinAmount:    minAmount,
			StatsScope:   "page",
			Transactions: transactionRows(txs, false),
			Filters:      whaleFilters{MinAmount: minAmount},
		})
	}, func(args whaleArgs) any {
		minAmount := whaleMinAmount(args)
		return whalePayload{
			MinAmount:    minAmount,
			StatsScope:   "page",
			Transactions: []TransactionRow{},
			Filters:      whaleFilters{MinAmount: minAmount},
		}
	})
}

package tools

import (
	"context"
	"strings"

	"github.com/qubic-network/qubicx/pkg/analytics"
	"github.com/qubic-network/qubicx/pkg/db"
	"github.com/qubic-network/qubicx/pkg/db/models/explorer"
	"github.com/qubic-network/qubicx/pkg/utils"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const (
	contractDefaultLimit = 50
	contractMaxLimit     = 100
)

// TradeRow is the display shape of a QX event.
type TradeRow struct {
	TxID   string `json:"tx_id"`
	Tick   int64  `json:"tick"`
	From   string `json:"from"`
	Event  string `json:"event"`
	Asset  string `json:"asset"`
	Price  *int64 `json:"price"`
	Shares *int64 `json:"shares"`
}

type tradesArgs struct {
	AssetName string `json:"assetName"`
	Event     string `json:"event"`
	Limit     Int    `json:"limit"`
}

type tradesFilters struct {
	AssetName *string `json:"assetName"`
	Limit     Int     `json:"limit"`
	Event     *string `json:"event"`
}

type tradesPayload struct {
	Count    int            `json:"count"`
	Trades   []TradeRow     `json:"trades"`
	Filters  *tradesFilters `json:"filters,omitempty"`
	Analysis string         `json:"analysis,omitempty"`
}

func (h *handlers) assetTrades() *Tool {
	return define(Tool{
		Name:         AssetTrades,
		Description:  "Query QX exchange asset trades and transactions. Use this for questions about CFB, QUTIL, QCAP, or other QX assets. Returns trading activity including buys, sells, transfers, and asset issuance.",
		IDPrefix:     "asset-trades",
		DefaultLimit: contractDefaultLimit,
		MaxLimit:     contractMaxLimit,
		Parameters: object(map[string]jsonschema.Definition{
			"assetName": stringParam("Asset name to filter by (e.g., 'CFB', 'QUTIL', 'QCAP', 'RANDOM')"),
			"event": stringParam("Filter by event type: 'Buy', 'Sell', 'Transfer', 'IssueAsset', 'CancelBuy', 'CancelSell'",
				explorer.QXEventBuy, explorer.QXEventSell, explorer.QXEventTransfer,
				explorer.QXEventIssueAsset, explorer.QXEventCancelBuy, explorer.QXEventCancelSell),
			"limit": numberParam("Maximum number of trades to return (default: 50, max: 100)"),
		}),
	}, func(ctx context.Context, args tradesArgs) (Result, error) {
		assetName := strings.TrimSpace(args.AssetName)
		trades, err := h.Store.AssetTrades(ctx, db.TradeFilter{
			AssetName: assetName,
			Event:     strings.TrimSpace(args.Event),
			Limit:     clampLimit(args.Limit, contractDefaultLimit, contractMaxLimit),
		})
		if err != nil {
			return Result{}, err
		}

		rows := make([]TradeRow, len(trades))
		for i, t := range trades {
			rows[i] = TradeRow{
				TxID:   t.TxID,
				Tick:   t.TickNumber,
				From:   utils.ShortID(t.SourceID),
				Event:  t.Event,
				Asset:  t.AssetName,
				Price:  t.Price,
				Shares: t.Shares,
			}
		}
		return found(tradesPayload{
			Count:    len(rows),
			Trades:   rows,
			Filters:  &tradesFilters{AssetName: optional(args.AssetName), Limit: args.Limit, Event: optional(args.Event)},
			Analysis: analytics.AnalyzeTrades(trades, assetName),
		})
	}, func(tradesArgs) any {
		return tradesPayload{Trades: []TradeRow{}}
	})
}

type eventArgs struct {
	Event string `json:"event"`
	Limit Int    `json:"limit"`
}

func (a eventArgs) filter() db.EventFilter {
	return db.EventFilter{
		Event: strings.TrimSpace(a.Event),
		Limit: clampLimit(a.Limit, contractDefaultLimit, contractMaxLimit),
	}
}

type eventFilters struct {
	Event *string `json:"event"`
	Limit Int     `json:"limit"`
}

func (a eventArgs) echo() *eventFilters {
	return &eventFilters{Event: optional(a.Event), Limit: a.Limit}
}

// contractPayload is shared by the QEARN, CCF and QBAY tools.
type contractPayload[T any] struct {
	Count        int           `json:"count"`
	Transactions []T           `json:"transactions"`
	Filters      *eventFilters `json:"filters,omitempty"`
}

func contractFallback[T any](eventArgs) any {
	return contractPayload[T]{Transactions: []T{}}
}

// QEARNRow is the display shape of a staking event.
type QEARNRow struct {
	TxID        string `json:"tx_id"`
	Tick        int64  `json:"tick"`
	From        string `json:"from"`
	Event       string `json:"event"`
	Amount      int64  `json:"amount"`
	LockedEpoch *int32 `json:"locked_epoch"`
}

func (h *handlers) qearnTransactions() *Tool {
	return define(Tool{
		Name:         QEARNTransactions,
		Description:  "Query QEARN staking contract transactions. Use this for QEARN staking activity, lock/unlock events. Returns detailed staking information including amounts and locked epochs.",
		IDPrefix:     "qearn",
		DefaultLimit: contractDefaultLimit,
		MaxLimit:     contractMaxLimit,
		Parameters: object(map[string]jsonschema.Definition{
			"event": stringParam("Filter by event: 'lock' or 'unlock'", explorer.QEARNEventLock, explorer.QEARNEventUnlock),
			"limit": numberParam("Maximum number of transactions to return (default: 50, max: 100)"),
		}),
	}, func(ctx context.Context, args eventArgs) (Result, error) {
		txs, err := h.Store.QEARNTransactions(ctx, args.filter())
		if err != nil {
			return Result{}, err
		}
		rows := make([]QEARNRow, len(txs))
		for i, tx := range txs {
			rows[i] = QEARNRow{
				TxID:        tx.TxID,
				Tick:        tx.TickNumber,
				From:        utils.ShortID(tx.SourceID),
				Event:       tx.Event,
				Amount:      tx.Amount,
				LockedEpoch: tx.LockedEpoch,
			}
		}
		return found(contractPayload[QEARNRow]{Count: len(rows), Transactions: rows, Filters: args.echo()})
	}, contractFallback[QEARNRow])
}

// CCFRow is the display shape of a governance event. Proposal fields are null on votes
// and vote fields are null on proposals.
type CCFRow struct {
	TxID           string  `json:"tx_id"`
	Tick           int64   `json:"tick"`
	From           string  `json:"from"`
	Event          string  `json:"event"`
	ProposalType   *int32  `json:"proposal_type"`
	Epoch          *int32  `json:"epoch"`
	URL            *string `json:"url"`
	TransferAmount *int64  `json:"transfer_amount"`
	ProposalIndex  *int32  `json:"proposal_index"`
	VoteText       *string `json:"vote_text"`
}

func (h *handlers) ccfTransactions() *Tool {
	return define(Tool{
		Name:         CCFTransactions,
		Description:  "Query CCF community fund governance transactions. Use this for CCF governance activity, proposals, and voting. Returns proposal details and vote results.",
		IDPrefix:     "ccf",
		DefaultLimit: contractDefaultLimit,
		MaxLimit:     contractMaxLimit,
		Parameters: object(map[string]jsonschema.Definition{
			"event": stringParam("Filter by event: 'SetProposal' or 'Vote'", explorer.CCFEventSetProposal, explorer.CCFEventVote),
			"limit": numberParam("Maximum number of transactions to return (default: 50, max: 100)"),
		}),
	}, func(ctx context.Context, args eventArgs) (Result, error) {
		txs, err := h.Store.CCFTransactions(ctx, args.filter())
		if err != nil {
			return Result{}, err
		}
		rows := make([]CCFRow, len(txs))
		for i, tx := range txs {
			rows[i] = CCFRow{
				TxID:           tx.TxID,
				Tick:           tx.TickNumber,
				From:           utils.ShortID(tx.SourceID),
				Event:          tx.Event,
				ProposalType:   tx.ProposalType,
				Epoch:          tx.Epoch,
				URL:            tx.URL,
				TransferAmount: tx.TransferAmount,
				ProposalIndex:  tx.ProposalIndex,
				VoteText:       tx.VoteText,
			}
		}
		return found(contractPayload[CCFRow]{Count: len(rows), Transactions: rows, Filters: args.echo()})
	}, contractFallback[CCFRow])
}

// QBAYRow is the display shape of a marketplace event.
type QBAYRow struct {
	TxID          string  `json:"tx_id"`
	Tick          int64   `json:"tick"`
	From          string  `json:"from"`
	Event         string  `json:"event"`
	NFTID         *int64  `json:"nft_id"`
	CollectionID  *int64  `json:"collection_id"`
	Price         *int64  `json:"price"`
	// PaymentMethod is 0 for CFB and 1 for QUBIC.
	PaymentMethod *int16  `json:"payment_method"`
	Volume        *int64  `json:"volume"`
	URI           *string `json:"uri"`
}

func (h *handlers) qbayTransactions() *Tool {
	return define(Tool{
		Name:         QBAYTransactions,
		Description:  "Query QBAY NFT marketplace transactions. Use this for QBAY NFT activity, minting, buying, selling, and transferring NFTs. Returns NFT details including IDs, prices, and payment methods.",
		IDPrefix:     "qbay",
		DefaultLimit: contractDefaultLimit,
		MaxLimit:     contractMaxLimit,
		Parameters: object(map[string]jsonschema.Definition{
			"event": stringParam("Filter by event: 'mint', 'buy', 'transfer', 'listInMarket', etc."),
			"limit": numberParam("Maximum number of transactions to return (default: 50, max: 100)"),
		}),
	}, func(ctx context.Context, args eventArgs) (Result, error) {
		txs, err := h.Store.QBAYTransactions(ctx, args.filter())
		if err != nil {
			return Result{}, err
		}
		rows := make([]QBAYRow, len(txs))
		for i, tx := range txs {
			rows[i] = QBAYRow{
				TxID:          tx.TxID,
				Tick:          tx.TickNumber,
				From:          utils.ShortID(tx.SourceID),
				Event:         tx.Event,
				NFTID:         tx.NFTID,
				CollectionID:  tx.CollectionID,
				Price:         tx.Price,
				PaymentMethod: tx.PaymentMethod,
				Volume:        tx.Volume,
				URI:           tx.URI,
			}
		}
		return found(contractPayload[QBAYRow]{Count: len(rows), Transactions: rows, Filters: args.echo()})
	}, contractFallback[QBAYRow])
}

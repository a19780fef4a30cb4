package analytics

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/qubic-network/qubicx/pkg/db/models/explorer"
	"github.com/qubic-network/qubicx/pkg/utils"
	"go.uber.org/zap"
)

// BalanceStatus reports whether a holder's live balance lookup succeeded.
type BalanceStatus string

const (
	BalanceLoaded BalanceStatus = "loaded"
	BalanceError  BalanceStatus = "error"
)

// TopHolder is an active address enriched with its live QUBIC balance.
type TopHolder struct {
	AddressID      string        `json:"address_id"`
	AddressShort   string        `json:"address_short"`
	Balance        *int64        `json:"balance"`
	BalanceStatus  BalanceStatus `json:"balance_status"`
	TxCount        int64         `json:"tx_count"`
	FirstSeenTick  int64         `json:"first_seen_tick"`
	LastActiveTick int64         `json:"last_active_tick"`
}

// BalanceFetcher looks up the live balance of one identity. A nil balance with a nil error
// means the provider answered without a balance.
type BalanceFetcher interface {
	Balance(ctx context.Context, identity string) (*int64, error)
}

// EnrichHolders fetches each address balance concurrently on pool.
// A failed lookup, or an answer without a balance, marks only that holder with
// BalanceError and a nil balance.
// The result is ordered by SortHoldersByBalance.
func EnrichHolders(ctx context.Context, logger *zap.Logger, pool pond.Pool, addresses []explorer.ActiveAddress, fetcher BalanceFetcher) []TopHolder {
	holders := make([]TopHolder, len(addresses))
	group := pool.NewGroupContext(ctx)
	groupCtx := group.Context()
	var (
		mu   sync.Mutex
		done bool
	)

	for i, a := range addresses {
		holders[i] = TopHolder{
			AddressID:      a.AddressID,
			AddressShort:   utils.ShortID(a.AddressID),
			BalanceStatus:  BalanceError,
			TxCount:        a.TxCount,
			FirstSeenTick:  a.FirstSeenTick,
			LastActiveTick: a.LastActiveTick,
		}
		group.Submit(func() {
			if err := groupCtx.Err(); err != nil {
				return
			}
			balance, err := fetcher.Balance(groupCtx, a.AddressID)
			if err != nil {
				logger.Debug("balance lookup failed", zap.String("address", a.AddressID), zap.Error(err))
				return
			}
			if balance == nil {
				logger.Debug("balance lookup returned no balance", zap.String("address", a.AddressID))
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if done {
				return
			}
			holders[i].Balance = balance
			holders[i].BalanceStatus = BalanceLoaded
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		logger.Warn("balance enrichment encountered error", zap.Error(err))
	}
	// Lookups still in flight after a cancelled wait must not touch holders.
	mu.Lock()
	done = true
	mu.Unlock()

	SortHoldersByBalance(holders)
	return holders
}

// SortHoldersByBalance orders holders by balance descending with nil balances last.
// Holders with equal balances keep their incoming order.
func SortHoldersByBalance(holders []TopHolder) {
	sort.SliceStable(holders, func(i, j int) bool {
		a, b := holders[i].Balance, holders[j].Balance
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
}

// Package memory is an in-process db.ExplorerStore over plain row slices.
// Aggregates are computed with pkg/analytics so both stores share one definition of each metric.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/qubic-network/qubicx/pkg/analytics"
	"github.com/qubic-network/qubicx/pkg/db"
	"github.com/qubic-network/qubicx/pkg/db/models/explorer"
)

var errClosed = errors.New("memory store closed")

// Fixture is the full contents of a memory store, keyed like the Postgres tables.
type Fixture struct {
	Transactions      []explorer.Transaction      `json:"transactions"`
	QXTrades          []explorer.QXTrade          `json:"qx_transactions"`
	QEARNTransactions []explorer.QEARNTransaction `json:"qearn_transactions"`
	CCFTransactions   []explorer.CCFTransaction   `json:"ccf_transactions"`
	QBAYTransactions  []explorer.QBAYTransaction  `json:"qbay_transactions"`
	Addresses         []explorer.WalletActivity   `json:"addresses"`
	Ticks             []explorer.Tick             `json:"ticks"`
}

// Store implements db.ExplorerStore. Rows are validated when read, not when loaded,
// so a malformed fixture row surfaces as db.ErrMalformedRow on the query that touches it.
type Store struct {
	mu     sync.RWMutex
	data   Fixture
	closed bool
}

var _ db.ExplorerStore = (*Store)(nil)

// New returns a store over f. The store does not copy f.
func New(f Fixture) *Store {
	return &Store{data: f}
}

// Load reads a JSON fixture from path.
func Load(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to decode fixture %s: %w", path, err)
	}
	return New(f), nil
}

type validator interface {
	Validate() error
}

// collect filters rows by keep, orders them with less (stable), validates and caps at limit.
// A limit <= 0 returns every match.
func collect[T validator](rows []T, keep func(T) bool, less func(a, b T) bool, limit int) ([]T, error) {
	out := []T{}
	for _, r := range rows {
		if keep == nil || keep(r) {
			out = append(out, r)
		}
	}
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		if err := out[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", db.ErrMalformedRow, err)
		}
	}
	return out, nil
}

func (s *Store) read() (*Fixture, func(), error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, nil, errClosed
	}
	return &s.data, s.mu.RUnlock, nil
}

func orEmpty(filter, value string) bool {
	return filter == "" || filter == value
}

func optEq(filter string, value *string) bool {
	if filter == "" {
		return true
	}
	return value != nil && *value == filter
}

// RecentTransactions returns the newest transactions matching f.
func (s *Store) RecentTransactions(_ context.Context, f db.TransactionFilter) ([]explorer.Transaction, error) {
	d, unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return collect(d.Transactions,
		func(t explorer.Transaction) bool {
			return orEmpty(f.Category, t.Category) && optEq(f.Contract, t.ContractName)
		},
		func(a, b explorer.Transaction) bool { return a.TickNumber > b.TickNumber },
		f.Limit)
}

// AssetTrades returns the newest QX events, optionally filtered by asset and event.
func (s *Store) AssetTrades(_ context.Context, f db.TradeFilter) ([]explorer.QXTrade, error) {
	d, unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return collect(d.QXTrades,
		func(t explorer.QXTrade) bool {
			return orEmpty(f.AssetName, t.AssetName) && orEmpty(f.Event, t.Event)
		},
		func(a, b explorer.QXTrade) bool { return a.TickNumber > b.TickNumber },
		f.Limit)
}

// WalletActivity summarizes addressID, or returns db.ErrNotFound when it never transacted.
func (s *Store) WalletActivity(_ context.Context, addressID string) (*explorer.WalletActivity, error) {
	d, unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, a := range d.Addresses {
		if a.AddressID != addressID {
			continue
		}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", db.ErrMalformedRow, err)
		}
		return &a, nil
	}
	return nil, db.ErrNotFound
}

// WalletTransactions returns the newest transactions sent or received by addressID.
func (s *Store) WalletTransactions(_ context.Context, addressID string, limit int) ([]explorer.Transaction, error) {
	d, unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return collect(d.Transactions,
		func(t explorer.Transaction) bool { return t.SourceID == addressID || t.DestID == addressID },
		func(a, b explorer.Transaction) bool { return a.TickNumber > b.TickNumber },
		limit)
}

// Tick returns the stored tick, or db.ErrNotFound when it is not in the fixture.
func (s *Store) Tick(_ context.Context, tickNumber int64) (*explorer.Tick, error) {
	d, unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, t := range d.Ticks {
		if t.TickNumber != tickNumber {
			continue
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", db.ErrMalformedRow, err)
		}
		return &t, nil
	}
	return nil, db.ErrNotFound
}

// TickTransactions returns the transactions included in tickNumber.
func (s *Store) TickTransactions(_ context.Context, tickNumber int64, limit int) ([]explorer.Transaction, error) {
	d, unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return collect(d.Transactions,
		func(t explorer.Transaction) bool { return t.TickNumber == tickNumber },
		func(a, b explorer.Transaction) bool { return a.TxID < b.TxID },
		limit)
}

// DatabaseStats counts rows and reports the stored tick range.
func (s *Store) DatabaseStats(_ context.Context) (explorer.DatabaseStats, error) {
	d, unlock, err := s.read()
	if err != nil {
		return explorer.DatabaseStats{}, err
	}
	defer unlock()
	stats := explorer.DatabaseStats{
		TotalTransactions: int64(len(d.Transactions)),
		TotalTicks:        int64(len(d.Ticks)),
	}
	for _, t := range d.Ticks {
		n := t.TickNumber
		if stats.MinTick == nil || n < *stats.MinTick {
			stats.MinTick = &n
		}
		if stats.MaxTick == nil || n > *stats.MaxTick {
			m := n
			stats.MaxTick = &m
		}
	}
	return stats, nil
}

// QEARNTransactions returns the newest QEARN events matching f.
func (s *Store) QEARNTransactions(_ context.Context, f db.EventFilter) ([]explorer.QEARNTransaction, error) {
	d, unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return collect(d.QEARNTransactions,
		func(t explorer.QEARNTransaction) bool { return orEmpty(f.Event, t.Event) },
		func(a, b explorer.QEARNTransaction) bool { return a.TickNumber > b.TickNumber },
		f.Limit)
}

// CCFTransactions returns the newest CCF events matching f.
func (s *Store) CCFTransactions(_ context.Context, f db.EventFilter) ([]explorer.CCFTransaction, error) {
	d, unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return collect(d.CCFTransactions,
		func(t explorer.CCFTransaction) bool { return orEmpty(f.Event, t.Event) },
		func(a, b explorer.CCFTransaction) bool { return a.TickNumber > b.TickNumber },
		f.Limit)
}

// QBAYTransactions returns the newest QBAY events matching f.
func (s *Store) QBAYTransactions(_ context.Context, f db.EventFilter) ([]explorer.QBAYTransaction, error) {
	d, unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return collect(d.QBAYTransactions,
		func(t explorer.QBAYTransaction) bool { return orEmpty(f.Event, t.Event) },
		func(a, b explorer.QBAYTransaction) bool { return a.TickNumber > b.TickNumber },
		f.Limit)
}

// ActiveAddresses ranks addresses by transaction count.
func (s *Store) ActiveAddresses(_ context.Context, limit int) ([]explorer.ActiveAddress, error) {
	d, unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()

	byID := map[string]*explorer.ActiveAddress{}
	for _, t := range d.Transactions {
		if t.Category == explorer.CategoryHeartbeat || t.Category == explorer.CategorySystem {
			continue
		}
		if t.SourceID == "" {
			return nil, fmt.Errorf("%w: transactions.source_id is empty", db.ErrMalformedRow)
		}
		a, ok := byID[t.SourceID]
		if !ok {
			a = &explorer.ActiveAddress{AddressID: t.SourceID, FirstSeenTick: t.TickNumber, LastActiveTick: t.TickNumber}
			byID[t.SourceID] = a
		}
		a.TxCount++
		a.FirstSeenTick = min(a.FirstSeenTick, t.TickNumber)
		a.LastActiveTick = max(a.LastActiveTick, t.TickNumber)
	}

	out := make([]explorer.ActiveAddress, 0, len(byID))
	for _, a := range byID {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TxCount != out[j].TxCount {
			return out[i].TxCount > out[j].TxCount
		}
		return out[i].AddressID < out[j].AddressID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// trades returns every QX row after validation.
func (d *Fixture) trades() ([]explorer.QXTrade, error) {
	return collect(d.QXTrades, nil, nil, 0)
}

// WalletPositions aggregates the QX trades of walletID per asset.
func (s *Store) WalletPositions(_ context.Context, walletID string) ([]explorer.AssetPosition, error) {
	d, unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()
	trades, err := d.trades()
	if err != nil {
		return nil, err
	}
	return analytics.OpenPositions(analytics.WalletPositions(walletID, trades)), nil
}

// MarketStats aggregates every QX trade.
func (s *Store) MarketStats(_ context.Context) (explorer.MarketStats, error) {
	d, unlock, err := s.read()
	if err != nil {
		return explorer.MarketStats{}, err
	}
	defer unlock()
	trades, err := d.trades()
	if err != nil {
		return explorer.MarketStats{}, err
	}
	return analytics.MarketOverview(trades), nil
}

// AssetStats aggregates the QX trades of one asset.
func (s *Store) AssetStats(_ context.Context, assetName string) (explorer.AssetStats, error) {
	d, unlock, err := s.read()
	if err != nil {
		return explorer.AssetStats{}, err
	}
	defer unlock()
	trades, err := d.trades()
	if err != nil {
		return explorer.AssetStats{}, err
	}
	return analytics.AssetStats(assetName, trades), nil
}

// LastAssetTrade returns the newest priced trade of assetName, or db.ErrNotFound.
func (s *Store) LastAssetTrade(_ context.Context, assetName string) (*explorer.QXTrade, error) {
	d, unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()
	rows, err := collect(d.QXTrades,
		func(t explorer.QXTrade) bool { return t.AssetName == assetName && t.IsPricedTrade() },
		func(a, b explorer.QXTrade) bool { return a.TickNumber > b.TickNumber },
		1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, db.ErrNotFound
	}
	return &rows[0], nil
}

// AssetVolumeSince sums trades and shares of assetName after afterTick.
func (s *Store) AssetVolumeSince(_ context.Context, assetName string, afterTick int64) (explorer.AssetVolume, error) {
	d, unlock, err := s.read()
	if err != nil {
		return explorer.AssetVolume{}, err
	}
	defer unlock()
	var v explorer.AssetVolume
	for _, t := range d.QXTrades {
		if t.AssetName != assetName || !t.IsTrade() || t.TickNumber <= afterTick || t.Shares == nil {
			continue
		}
		v.Trades++
		v.Shares += *t.Shares
	}
	return v, nil
}

// WhaleTransactions returns transfers of at least minAmount, largest first.
func (s *Store) WhaleTransactions(_ context.Context, minAmount int64, limit int) ([]explorer.Transaction, error) {
	d, unlock, err := s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return collect(d.Transactions,
		func(t explorer.Transaction) bool { return t.Amount >= minAmount },
		func(a, b explorer.Transaction) bool {
			if a.Amount != b.Amount {
				return a.Amount > b.Amount
			}
			return a.TickNumber > b.TickNumber
		},
		limit)
}

// Ping fails once the store is closed.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errClosed
	}
	return nil
}

// Close marks the store closed; later reads fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

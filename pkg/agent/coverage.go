package agent

import (
	"context"
	"sync"

	"github.com/qubic-network/qubicx/pkg/db"
	"github.com/qubic-network/qubicx/pkg/db/models/explorer"
	"go.uber.org/zap"
)

// Coverage keeps the last successfully read database coverage for the system prompt.
type Coverage struct {
	store  db.ExplorerStore
	logger *zap.Logger

	mu     sync.RWMutex
	stats  explorer.DatabaseStats
	loaded bool
}

func NewCoverage(store db.ExplorerStore, logger *zap.Logger) *Coverage {
	return &Coverage{store: store, logger: logger}
}

// Refresh reads the current coverage. On failure the previous snapshot is kept.
func (c *Coverage) Refresh(ctx context.Context) error {
	stats, err := c.store.DatabaseStats(ctx)
	if err != nil {
		c.logger.Warn("Failed to refresh database coverage, keeping last snapshot", zap.Error(err))
		return err
	}

	c.mu.Lock()
	c.stats, c.loaded = stats, true
	c.mu.Unlock()

	c.logger.Debug("Database coverage refreshed",
		zap.Int64("transactions", stats.TotalTransactions),
		zap.String("tick_range", stats.TickRange()),
	)
	return nil
}

// Snapshot returns the last coverage and whether one was ever loaded.
func (c *Coverage) Snapshot() (explorer.DatabaseStats, bool) {
	if c == nil {
		return explorer.DatabaseStats{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats, c.loaded
}

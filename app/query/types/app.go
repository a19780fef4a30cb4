package types

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/qubic-network/qubicx/pkg/agent"
	"github.com/qubic-network/qubicx/pkg/cache"
	"github.com/qubic-network/qubicx/pkg/db"
	"github.com/qubic-network/qubicx/pkg/prices"
	"github.com/qubic-network/qubicx/pkg/tools"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type App struct {
	// Store is the read-only explorer database.
	Store db.ExplorerStore
	// Cache holds provider responses (Redis or in-process).
	Cache cache.Store

	// Pool bounds the fan-outs inside tools (holder balances, price lookups, portfolio reads).
	Pool     pond.Pool
	// ToolPool runs the agent's concurrent tool calls. Those tasks wait on Pool, so it is kept apart.
	ToolPool pond.Pool

	Registry *tools.Registry
	Prices   prices.Provider
	// Agent is nil when no model key is configured.
	Agent    *agent.Agent
	Coverage *agent.Coverage

	// Cron refreshes coverage (and sweeps the in-process cache) according to CronSpec.
	Cron     *cron.Cron
	CronSpec string

	// Zap Logger
	Logger *zap.Logger
	// Server represents the HTTP server instance used to handle incoming client requests and manage HTTP routes.
	Server *http.Server
}

// Start starts the application.
func (a *App) Start(ctx context.Context) {
	a.StartCron()

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a.Logger.Info("shutting down server")
	_ = a.Server.Shutdown(shutdownCtx)

	a.StopCron()

	if a.ToolPool != nil {
		a.ToolPool.StopAndWait()
	}
	if a.Pool != nil {
		a.Pool.StopAndWait()
	}

	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.Error("Failed to close cache", zap.Error(err))
		}
	}

	if err := a.Store.Close(); err != nil {
		a.Logger.Error("Failed to close database connection", zap.Error(err))
	}

	time.Sleep(200 * time.Millisecond)
	a.Logger.Info("さようなら!")
}

package query

import (
	"context"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/joho/godotenv"
	"github.com/qubic-network/qubicx/app/query/types"
	"github.com/qubic-network/qubicx/pkg/agent"
	"github.com/qubic-network/qubicx/pkg/cache"
	"github.com/qubic-network/qubicx/pkg/db"
	"github.com/qubic-network/qubicx/pkg/db/memory"
	"github.com/qubic-network/qubicx/pkg/db/postgres"
	explorerstore "github.com/qubic-network/qubicx/pkg/db/postgres/explorer"
	"github.com/qubic-network/qubicx/pkg/logging"
	"github.com/qubic-network/qubicx/pkg/nft"
	"github.com/qubic-network/qubicx/pkg/prices"
	"github.com/qubic-network/qubicx/pkg/redis"
	"github.com/qubic-network/qubicx/pkg/rpc"
	"github.com/qubic-network/qubicx/pkg/tools"
	"github.com/qubic-network/qubicx/pkg/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Initialize initializes the application.
func Initialize(ctx context.Context) *types.App {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	logger, err := logging.New("query")
	if err != nil {
		// nothing else to do here, we'll just log to stderr'
		panic(err)
	}

	store, err := NewStore(ctx, logger)
	if err != nil {
		logger.Fatal("Unable to initialize explorer store", zap.Error(err))
	}

	cacheStore := newCache(ctx, logger)

	// Tool calls block on provider fan-outs, so the two never share workers.
	pool := pond.NewPool(utils.EnvInt("BALANCE_PARALLELISM", 10))
	toolPool := pond.NewPool(utils.EnvInt("TOOL_PARALLELISM", 8))

	priceProvider := prices.NewCoinGecko(providerOpts(logger, cacheStore, utils.Env("COINGECKO_API_URL", "https://api.coingecko.com/api/v3")))

	registry := tools.NewCatalog(tools.Deps{
		Store:  store,
		RPC:    rpc.NewHTTPWithOpts(providerOpts(logger, cacheStore, utils.Env("QUBIC_RPC_URL", "https://rpc.qubic.org"))),
		Prices: priceProvider,
		NFTs:   nft.NewQubicBay(providerOpts(logger, cacheStore, utils.Env("QUBICBAY_API_URL", "https://api.qubicbay.io/v1"))),
		Pool:   pool,
		Logger: logger.With(zap.String("component", "tools")),
	})

	coverage := agent.NewCoverage(store, logger.With(zap.String("component", "coverage")))

	app := &types.App{
		Store:    store,
		Cache:    cacheStore,
		Pool:     pool,
		ToolPool: toolPool,
		Registry: registry,
		Prices:   priceProvider,
		Agent:    newAgent(logger, registry, toolPool, coverage),
		Coverage: coverage,
		Logger:   logger,
	}

	scheduleErr := app.SetupScheduler(ctx, types.CronLogger{Logger: logger}, utils.Env("COVERAGE_CRON", "@every 1m"))
	if scheduleErr != nil {
		logger.Fatal("Unable to set up scheduler", zap.Error(scheduleErr))
	}

	return app
}

// NewStore opens the explorer store selected by STORE_DRIVER.
func NewStore(ctx context.Context, logger *zap.Logger) (db.ExplorerStore, error) {
	switch driver := utils.Env("STORE_DRIVER", "postgres"); driver {
	case "postgres":
		cfg := postgres.DefaultPoolConfig(utils.Env("POSTGRES_URL", "postgres://localhost:5432/qubic"))
		store, err := explorerstore.New(ctx, logger, cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "memory":
		path := utils.Env("MEMORY_FIXTURE", "")
		if path == "" {
			logger.Info("Using the built-in sample dataset")
			return memory.New(memory.Sample()), nil
		}
		store, err := memory.Load(path)
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded in-memory dataset", zap.String("path", path))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (expected postgres or memory)", driver)
	}
}

// newCache returns Redis when enabled and reachable, otherwise the in-process cache.
func newCache(ctx context.Context, logger *zap.Logger) cache.Store {
	if !utils.EnvBool("REDIS_ENABLED", false) {
		logger.Info("Redis disabled - provider responses are cached in process")
		return cache.NewMemory()
	}

	redisClient, err := redis.NewClient(ctx, logger)
	if err != nil {
		logger.Warn("Failed to initialize Redis client - falling back to the in-process cache", zap.Error(err))
		return cache.NewMemory()
	}
	logger.Info("Redis client initialized for provider response caching")
	return redisClient
}

func providerOpts(logger *zap.Logger, store cache.Store, endpoint string) rpc.Opts {
	return rpc.Opts{
		Endpoints: []string{endpoint},
		Timeout:   utils.EnvDuration("RPC_TIMEOUT", 15*time.Second),
		RPS:       utils.EnvInt("RPC_RPS", 20),
		Burst:     utils.EnvInt("RPC_BURST", 40),
		Cache:     store,
		Logger:    logger.With(zap.String("endpoint", endpoint)),
	}
}

// newAgent returns nil when OPENAI_API_KEY is unset; chat routes then answer 503.
// toolPool must not be the pool the tools fan out on.
func newAgent(logger *zap.Logger, registry *tools.Registry, toolPool pond.Pool, coverage *agent.Coverage) *agent.Agent {
	key := utils.Env("OPENAI_API_KEY", "")
	if key == "" {
		logger.Warn("OPENAI_API_KEY is not set - chat endpoints are disabled")
		return nil
	}

	cfg := openai.DefaultConfig(key)
	if base := utils.Env("OPENAI_BASE_URL", ""); base != "" {
		cfg.BaseURL = base
	}

	model := utils.Env("OPENAI_MODEL", agent.DefaultModel)
	logger.Info("Chat agent enabled", zap.String("model", model))

	return agent.New(openai.NewClientWithConfig(cfg), registry, toolPool, coverage,
		logger.With(zap.String("component", "agent")),
		agent.Config{Model: model, MaxSteps: utils.EnvInt("AGENT_MAX_STEPS", agent.DefaultMaxSteps)},
	)
}

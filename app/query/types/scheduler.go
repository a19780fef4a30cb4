package types

import (
	"context"
	"time"

	"github.com/qubic-network/qubicx/pkg/cache"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronLogger adapts zap to cron.Logger.
type CronLogger struct {
	Logger *zap.Logger
}

func (l CronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.Logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}

// SetupScheduler registers the coverage refresh and, for the in-process cache, the expiry sweep.
// The first coverage refresh runs synchronously so the first prompt already knows the tick range.
func (a *App) SetupScheduler(ctx context.Context, logger cron.Logger, cronSpec string) error {
	// Seconds field, optional
	a.Cron = cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(logger)))
	a.CronSpec = cronSpec

	if a.Coverage != nil {
		rctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		_ = a.Coverage.Refresh(rctx)
		cancel()

		_, err := a.Cron.AddFunc(cronSpec, func() {
			// keep each run bounded
			rctx, cancel := context.WithTimeout(ctx, 25*time.Second)
			defer cancel()
			_ = a.Coverage.Refresh(rctx)
		})
		if err != nil {
			return err
		}
	}

	if mem, ok := a.Cache.(*cache.Memory); ok {
		_, err := a.Cron.AddFunc(cronSpec, func() {
			if n := mem.Sweep(); n > 0 {
				a.Logger.Debug("Swept expired cache entries", zap.Int("dropped", n), zap.Int("remaining", mem.Len()))
			}
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// StartCron starts the cron scheduler.
func (a *App) StartCron() {
	if a.Cron == nil {
		return
	}
	a.Cron.Start()
	a.Logger.Info("Cron started", zap.String("cronSpec", a.CronSpec))
}

// StopCron stops the cron scheduler and waits for running jobs.
func (a *App) StopCron() {
	if a.Cron != nil {
		<-a.Cron.Stop().Done()
	}
}

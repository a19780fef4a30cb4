package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/qubic-network/qubicx/app/query"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := query.Initialize(ctx)

	if err := query.NewServer(app); err != nil {
		app.Logger.Fatal("Unable to initialize server", zap.Error(err))
	}

	app.Logger.Info("Query service ready",
		zap.Int("tools", len(app.Registry.List())),
		zap.Bool("chat", app.Agent != nil),
	)
	app.Start(ctx)
}

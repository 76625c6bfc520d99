package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"pocketbook/internal/amqp"
	"pocketbook/internal/cli"
	"pocketbook/internal/config"
	"pocketbook/internal/core"
	"pocketbook/internal/ledger"
	"pocketbook/internal/log"
	gsheet "pocketbook/internal/sheets/google"
	"pocketbook/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig((*config.Config).ValidateWorker)
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting pocketbook-worker")

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	store, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to open data backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer store.Close()

	mirror, err := gsheet.NewFromEnv(ctx)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	mw := worker.NewMirrorWorker(mirror, func(ctx context.Context) ([]core.Transaction, error) {
		return ledger.ReadSnapshot(ctx, store.Store)
	})

	// Catch up on anything published while the worker was down.
	if err := mw.Resync(ctx); err != nil {
		logger.Error("Startup resync failed", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.Consume(gctx, mw.HandleEvent)
	})
	g.Go(func() error {
		return mw.RunPeriodicResync(gctx, cfg.SyncInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

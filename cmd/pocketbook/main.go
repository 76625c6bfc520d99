package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"pocketbook/internal/amqp"
	"pocketbook/internal/budget"
	"pocketbook/internal/cli"
	"pocketbook/internal/config"
	apphttp "pocketbook/internal/http"
	"pocketbook/internal/ledger"
	"pocketbook/internal/log"
	"pocketbook/internal/receipt"
	"pocketbook/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig((*config.Config).Validate)
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	store, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to open data backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer store.Close()

	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP broker", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("Publishing ledger events", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP_URL not set, ledger events disabled")
	}

	var classifier receipt.Classifier
	if cfg.AIAPIKey != "" {
		classifier = receipt.NewOpenAIClassifier(receipt.Config{
			APIKey:  cfg.AIAPIKey,
			BaseURL: cfg.AIBaseURL,
			Model:   cfg.AIModel,
		})
	} else {
		logger.Info("AI_API_KEY not set, receipt recognition disabled")
	}

	book := ledger.New(store.Store, ledger.WithDemoSeed(cfg.SeedDemo))
	ledgerSvc := services.NewLedgerService(book, budget.NewTracker(store.Store), publisher)
	if err := ledgerSvc.Load(ctx); err != nil {
		logger.Error("Failed to load ledger", log.FieldError, err)
		os.Exit(1)
	}
	captureSvc := services.NewCaptureService(ledgerSvc, classifier)

	srv := apphttp.NewServer(":"+cfg.Port, ledgerSvc, captureSvc, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CacheTTL:           cfg.CacheTTL,
		Logger:             logger,
		Ready:              store.Ready,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting pocketbook server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		srv.RunMaintenance(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

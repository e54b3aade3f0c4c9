// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"iedi-workers/internal/analysis"
	"iedi-workers/internal/backend"
	"iedi-workers/internal/cache"
	"iedi-workers/internal/common/aws"
	"iedi-workers/internal/common/camunda"
	"iedi-workers/internal/common/config"
	"iedi-workers/internal/common/database"
	"iedi-workers/internal/common/logger"
	"iedi-workers/internal/common/observability"
	"iedi-workers/internal/server"

	cas "iedi-workers/internal/workers/analysis/check-analysis-status"
	ca "iedi-workers/internal/workers/analysis/create-analysis"
	da "iedi-workers/internal/workers/analysis/delete-analysis"
	fbr "iedi-workers/internal/workers/analysis/fetch-bank-results"
	na "iedi-workers/internal/workers/communication/notify-analysis"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

type registeredHandler interface {
	camunda.JobHandler
	IsEnabled() bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format).With(zap.String("service", cfg.App.Name))
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	if err := cfg.RequireEngine(); err != nil {
		zapLog.Fatal("invalid configuration", zap.Error(err))
	}

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	var engine *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		engine, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully", zap.String("gateway", cfg.Camunda.BrokerAddress))

	checks := map[string]server.Check{"zeebe": engine.HealthCheck}

	// --- Redis bank cache ---
	var rdb redis.Cmdable
	if cfg.Cache.Enabled {
		rc := database.NewRedis(cfg.Redis)
		err = retryWithBackoff(func() error {
			return rc.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rc.Close()
		rdb = rc.Client
		checks["redis"] = rc.Ping
		zapLog.Info("Redis connected successfully")
	}

	// --- Backend ---
	api := backend.NewFromConfig(cfg.Backend, log)
	catalog := cache.NewBankCatalog(api, rdb, config.GetDuration(cfg.Cache.BankTTL), log)

	loc, err := cfg.Backend.Location()
	if err != nil {
		zapLog.Fatal("invalid backend timezone", zap.Error(err))
	}
	builder := analysis.NewBuilder(nil, analysis.WithLocation(loc))

	// --- Notifications ---
	notifyDeps := na.ServiceDependencies{}
	if cfg.Notifications.Enabled {
		switch cfg.Notifications.Channel {
		case config.ChannelSNS:
			notifyDeps.Publisher, err = aws.NewSNSClient(ctx, cfg.Notifications.Region)
		case config.ChannelSES:
			notifyDeps.Mailer, err = aws.NewSESClient(ctx, cfg.Notifications.Region)
		}
		if err != nil {
			zapLog.Fatal("notification client failed", zap.Error(err))
		}
	}

	// --- Workers ---
	handlers := make([]registeredHandler, 0, 5)
	register := func(name string, h registeredHandler, err error) {
		if err != nil {
			zapLog.Fatal("worker setup failed", zap.String("worker", name), zap.Error(err))
		}
		handlers = append(handlers, h)
	}

	createHandler, err := ca.NewHandler(ca.HandlerOptions{
		AppConfig:     cfg,
		Dependencies:  ca.ServiceDependencies{Backend: api, Banks: catalog, Builder: builder},
		Observability: obs,
		Logger:        log,
	})
	register(ca.WorkerName, createHandler, err)

	statusHandler, err := cas.NewHandler(cas.HandlerOptions{
		AppConfig:     cfg,
		Dependencies:  cas.ServiceDependencies{Backend: api},
		Observability: obs,
		Logger:        log,
	})
	register(cas.WorkerName, statusHandler, err)

	resultsHandler, err := fbr.NewHandler(fbr.HandlerOptions{
		AppConfig:     cfg,
		Dependencies:  fbr.ServiceDependencies{Backend: api},
		Observability: obs,
		Logger:        log,
	})
	register(fbr.WorkerName, resultsHandler, err)

	deleteHandler, err := da.NewHandler(da.HandlerOptions{
		AppConfig:     cfg,
		Dependencies:  da.ServiceDependencies{Backend: api},
		Observability: obs,
		Logger:        log,
	})
	register(da.WorkerName, deleteHandler, err)

	notifyHandler, err := na.NewHandler(na.HandlerOptions{
		AppConfig:     cfg,
		Dependencies:  notifyDeps,
		Observability: obs,
		Logger:        log,
	})
	register(na.WorkerName, notifyHandler, err)

	workerNames := map[string]string{
		ca.TaskType:  ca.WorkerName,
		cas.TaskType: cas.WorkerName,
		fbr.TaskType: fbr.WorkerName,
		da.TaskType:  da.WorkerName,
		na.TaskType:  na.WorkerName,
	}

	var workers []worker.JobWorker
	for _, h := range handlers {
		wcfg := config.GetWorkerConfig(cfg, workerNames[h.GetTaskType()])
		wcfg.Enabled = h.IsEnabled()
		if jw := camunda.StartWorker(engine.GetClient(), h, wcfg, log); jw != nil {
			workers = append(workers, jw)
		}
	}
	zapLog.Info("Workers registered", zap.Int("active", len(workers)), zap.Int("total", len(handlers)))

	// --- Health & Metrics Server ---
	srv := server.New(log, server.Config{
		Addr:            cfg.Server.Address,
		ShutdownTimeout: config.GetDuration(cfg.Server.ShutdownTimeout),
		Version:         cfg.App.Version,
		Checks:          checks,
	})
	go func() {
		if err := srv.Start(); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, jw := range workers {
		jw.Close()
		jw.AwaitClose()
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := engine.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped")
}

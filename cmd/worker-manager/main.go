// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"vehicle-search/internal/common/camunda"
	"vehicle-search/internal/common/config"
	"vehicle-search/internal/common/logger"
	"vehicle-search/internal/common/observability"
	"vehicle-search/internal/parser"
	"vehicle-search/internal/queryservice"
	"vehicle-search/internal/relax"
	"vehicle-search/pkg/registry"

	qv "vehicle-search/internal/workers/data-access/query-vehicles"
	pvq "vehicle-search/internal/workers/search/parse-vehicle-query"
	rvf "vehicle-search/internal/workers/search/relax-vehicle-filters"
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

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}
	if err := cfg.RequireCamunda(); err != nil {
		bootLog.Fatal("invalid camunda config", zap.Error(err))
	}

	zapLog := logger.NewFromConfig(cfg.Logging)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...", zap.String("version", cfg.App.Version))

	obs, err := observability.New(cfg.Tracing.ServiceName,
		observability.WithTracing(cfg.Tracing.Enabled, cfg.Tracing.SampleRatio),
		observability.WithGlobal(),
	)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.String("path", cfg.Registry.Path), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 5, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init vehicle store with retry ---
	var backend *queryservice.Backend
	err = retryWithBackoff(func() error {
		var err error
		backend, err = queryservice.Open(ctx, cfg, log)
		return err
	}, 15, 2*time.Second, zapLog, "Vehicle store connection")
	if err != nil {
		zapLog.Fatal("vehicle store failed after retries", zap.Error(err))
	}

	p := parser.New(cfg.Parser)
	engine := relax.New(cfg.Relax)

	handlers := map[string]camunda.JobHandler{
		pvq.TaskType: pvq.NewHandler(&pvq.Config{
			Timeout: activityTimeout(reg, pvq.TaskType, pvq.LoadConfig().Timeout),
		}, p, log),
		rvf.TaskType: rvf.NewHandler(&rvf.Config{
			Timeout:   activityTimeout(reg, rvf.TaskType, rvf.LoadConfig().Timeout),
			MaxRounds: cfg.Relax.MaxRounds,
		}, engine, log),
		qv.TaskType: qv.NewHandler(&qv.Config{
			Timeout: activityTimeout(reg, qv.TaskType, qv.LoadConfig().Timeout),
		}, backend.Store, log),
	}

	// --- Register workers for every implemented activity ---
	var workers []*camunda.CamundaWorker
	for _, activity := range reg.Implemented() {
		handler, ok := handlers[activity.TaskType]
		if !ok {
			zapLog.Warn("no handler for activity", zap.String("taskType", activity.TaskType))
			continue
		}
		wcfg := config.GetWorkerConfig(cfg, activity.TaskType)
		if !wcfg.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", activity.TaskType))
			continue
		}
		validator, err := activity.InputValidator()
		if err != nil {
			zapLog.Fatal("input schema compile failed", zap.String("taskType", activity.TaskType), zap.Error(err))
		}

		w := camunda.NewWorker(zeebe.GetClient(), activity.TaskType, handler, zapLog, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
			Validator:     validator,
			Observability: obs,
		})
		w.Start()
		workers = append(workers, w)
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status, code := "healthy", http.StatusOK
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  status,
			"workers": len(workers),
			"time":    time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: cfg.Metrics.Address, Handler: mux}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping metrics server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := backend.Close(); err != nil {
		zapLog.Error("Error closing vehicle store", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing telemetry", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// activityTimeout prefers the registry's timeout for taskType.
func activityTimeout(reg *registry.ActivityRegistry, taskType string, def time.Duration) time.Duration {
	if a, ok := reg.Find(taskType); ok {
		return a.TimeoutDuration(def)
	}
	return def
}

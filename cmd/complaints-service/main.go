// cmd/complaints-service/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"reclamations/internal/api"
	"reclamations/internal/common/auth"
	"reclamations/internal/common/camunda"
	"reclamations/internal/common/config"
	"reclamations/internal/common/database"
	commonhttp "reclamations/internal/common/http"
	commonkafka "reclamations/internal/common/kafka"
	"reclamations/internal/common/logger"
	"reclamations/internal/common/observability"
	"reclamations/internal/complaints/casemgmt"
	"reclamations/internal/complaints/enrichment"
	"reclamations/internal/complaints/payload"
	"reclamations/internal/complaints/publisher"
	"reclamations/internal/complaints/submission"
	"reclamations/internal/complaints/tracking"
	"reclamations/internal/workers/runner"

	al "reclamations/internal/workers/complaints/audit-log"
	ic "reclamations/internal/workers/complaints/index-complaint"
	tw "reclamations/internal/workers/complaints/trigger-workflow"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialDelay
	b.MaxElapsedTime = 0

	attempt := 0
	err := backoff.RetryNotify(operation, backoff.WithMaxRetries(b, uint64(maxRetries-1)), func(err error, next time.Duration) {
		attempt++
		log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Int("maxRetries", maxRetries),
			zap.Duration("nextRetryIn", next),
		)
	})
	if err != nil {
		return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)
	zapLog.Info("Starting complaints service...", zap.String("environment", cfg.App.Environment))

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("observability disabled", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Kafka topics ---
	err = retryWithBackoff(func() error {
		return commonkafka.EnsureTopics(ctx, cfg.Kafka)
	}, 10, 2*time.Second, zapLog, "Kafka topic setup")
	if err != nil {
		zapLog.Fatal("kafka unavailable after retries", zap.Error(err))
	}
	zapLog.Info("Kafka topics ready", zap.String("topic", cfg.Kafka.Topic), zap.String("dlq", cfg.Kafka.DLQTopic()))

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Redis is only a lookup cache; run without it if unreachable ---
	var lookupCache *enrichment.Cache
	redisClient := database.NewRedis(cfg.Database.Redis)
	defer redisClient.Close()
	if cfg.Accounts.CacheTTL > 0 {
		err = retryWithBackoff(func() error {
			return redisClient.Ping(ctx)
		}, 3, time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Warn("customer cache disabled", zap.Error(err))
		} else {
			lookupCache = enrichment.NewCache(redisClient.Client, time.Duration(cfg.Accounts.CacheTTL)*time.Second)
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Submission path ---
	tokens := auth.NewClientCredentials(cfg.Auth)
	accountsTimeout := config.GetDuration(cfg.Accounts.Timeout)
	caseTimeout := config.GetDuration(cfg.CaseManagement.Timeout)

	enricher := enrichment.NewEnricher(
		enrichment.NewClient(commonhttp.NewClient(accountsTimeout), cfg.Accounts.DetailsURL, tokens),
		lookupCache,
		accountsTimeout,
		log,
	)
	records := casemgmt.NewClient(commonhttp.NewClient(caseTimeout), cfg.CaseManagement, tokens)

	writer := commonkafka.NewWriter(cfg.Kafka)
	defer writer.Close()
	pub := publisher.New(writer, config.GetDuration(cfg.Kafka.WriteTimeout), log)

	defaults, err := payload.LoadDefaults(cfg.Defaults.PayloadPath)
	if err != nil {
		zapLog.Fatal("payload defaults unreadable", zap.Error(err))
	}

	store := tracking.NewStore()
	orchestrator := submission.NewOrchestrator(
		submission.Config{
			Topic:         cfg.Kafka.Topic,
			RecordTimeout: caseTimeout,
			Departement:   cfg.Defaults.Departement,
			MotifBCC:      cfg.Defaults.MotifBCC,
			AvisMotive:    cfg.Defaults.AvisMotive,
		},
		defaults, enricher, records, pub, store, obs, log,
	)

	// --- Workflow backend ---
	readiness := map[string]api.ReadinessCheck{
		"elasticsearch": esClient.Ping,
	}
	wfConfig := tw.LoadConfig(cfg.Workflow)
	var workflow tw.Workflow
	switch cfg.Workflow.Provider {
	case "zeebe":
		var zeebe *camunda.Client
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Workflow.Zeebe.GatewayAddress,
				UsePlaintextConnection: cfg.Workflow.Zeebe.Plaintext,
				ProcessID:              cfg.Workflow.Zeebe.ProcessID,
			})
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()
		workflow = zeebe
		readiness["zeebe"] = zeebe.HealthCheck
		zapLog.Info("Zeebe client connected successfully")
	default:
		workflow = tw.NewHTTPWorkflow(commonhttp.NewClient(wfConfig.Timeout), wfConfig)
	}

	// --- Consumer groups ---
	dlq := commonkafka.NewDLQWriter(cfg.Kafka)
	defer dlq.Close()
	policy := runner.PolicyFromConfig(cfg.Retry)

	groups := []struct {
		id      string
		handler runner.Handler
	}{
		{cfg.Kafka.Groups.Audit, al.NewHandler(al.LoadConfig(), log)},
		{cfg.Kafka.Groups.Indexer, ic.NewHandler(ic.LoadConfig(cfg.Database.Elasticsearch), esClient, log)},
		{cfg.Kafka.Groups.Workflow, tw.NewHandler(wfConfig, workflow, store, log)},
	}

	var wg sync.WaitGroup
	for _, g := range groups {
		reader := commonkafka.NewReader(cfg.Kafka, g.id)
		group := runner.NewGroup(g.id, reader, dlq, g.handler, policy, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer reader.Close()
			if err := group.Run(ctx); err != nil {
				zapLog.Error("consumer group stopped", zap.String("group", group.Name()), zap.Error(err))
			}
		}()
		zapLog.Info("consumer group started", zap.String("group", g.id), zap.Duration("firstRetry", policy.InitialInterval))
	}

	// --- HTTP server ---
	handler := api.NewHandler(orchestrator, store, enricher, readiness, cfg.Server.MaxBodyBytes, log)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(handler, cfg.Server.AllowedOrigins, log),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	wg.Wait()
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping observability", zap.Error(err))
	}

	zapLog.Info("Complaints service stopped gracefully")
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bokji/internal/history"
	"bokji/internal/matching"
	"bokji/internal/platform/config"
	"bokji/internal/platform/httpserver"
	"bokji/internal/platform/logger"
	platformredis "bokji/internal/platform/redis"
	profilestore "bokji/internal/profile/store"
	programstore "bokji/internal/program/store"
	"bokji/internal/ratelimit"
	"bokji/internal/ratelimit/store/cooldown"
	"bokji/internal/recommend/cache"
	"bokji/internal/recommend/handler"
	"bokji/internal/recommend/metrics"
	"bokji/internal/recommend/service"
	recstore "bokji/internal/recommend/store/recommendation"
	dErrors "bokji/pkg/domain-errors"
	"bokji/pkg/platform/httputil"
	"bokji/pkg/platform/tx"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		return err
	}

	// Redis and Kafka are optional: without them the cache misses, the
	// limiter fails open, and history stays Postgres-only.
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, cache and cooldown degraded", "error", err.Error())
	}
	workerOpts := []history.WorkerOption{history.WithLogger(log)}
	publisher, err := history.NewKafkaPublisher(cfg.Kafka.SeedBrokers, cfg.Kafka.HistoryTopic)
	if err != nil {
		log.Warn("kafka unavailable, history events stay local", "error", err.Error())
	}
	if publisher != nil {
		defer publisher.Close()
		workerOpts = append(workerOpts, history.WithPublisher(publisher))
	}

	historyWorker := history.NewWorker(history.NewPostgres(db), workerOpts...)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go historyWorker.Run(workerCtx)

	limiter, err := ratelimit.New(cooldown.NewRedis(redisClient.Unwrap()), ratelimit.WithLogger(log))
	if err != nil {
		return err
	}

	catalog := programstore.NewPostgres(db)
	profiles := profilestore.NewPostgres(db)
	recs := recstore.NewPostgres(db)

	runTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		dbTx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := fn(tx.WithTx(ctx, dbTx)); err != nil {
			_ = dbTx.Rollback()
			return err
		}
		return dbTx.Commit()
	}

	svc, err := service.New(recs, catalog, profiles,
		service.WithCache(cache.NewRedis(redisClient.Unwrap(), cache.WithLogger(log))),
		service.WithLimiter(limiter),
		service.WithHistory(historyWorker),
		service.WithOrchestrator(matching.NewOrchestrator(
			matching.WithMinScore(cfg.Recommend.MinMatchScore),
			matching.WithBatchSize(cfg.Recommend.MatchBatchSize),
		)),
		service.WithTxRunner(runTx),
		service.WithCacheTTL(cfg.Recommend.CacheTTL),
		service.WithRefreshPolicy(cfg.Recommend.RefreshWindow, cfg.Recommend.RefreshMax),
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
	)
	if err != nil {
		return err
	}

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "database unreachable"))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", promhttp.Handler())
	handler.New(svc, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	// Let the history worker drain its queue before the process exits.
	stopWorker()
	historyWorker.Wait()

	if redisClient != nil {
		_ = redisClient.Close()
	}
	return nil
}

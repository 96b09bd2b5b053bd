package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sprintsense/balance-service/internal/balance"
	"github.com/sprintsense/balance-service/internal/cache"
	"github.com/sprintsense/balance-service/internal/config"
	"github.com/sprintsense/balance-service/internal/repository/postgres"
	"github.com/sprintsense/balance-service/internal/service"
	myhttp "github.com/sprintsense/balance-service/internal/transport/http"
	"github.com/sprintsense/balance-service/internal/transport/ws"
	"github.com/sprintsense/balance-service/pkg/logger/sl"
	"github.com/sprintsense/balance-service/pkg/logger/slogpretty"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := slogpretty.SetupLogger(cfg.Env, slogpretty.WithFile(slogpretty.FileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   true,
	}))

	log.Info("starting sprintsense balance service", slog.String("env", cfg.Env))

	db, err := postgres.NewDB(ctx, cfg.Postgres, log)
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("db close failed", sl.Err(err))
		}
	}()

	analyzer := balance.NewAnalyzer(balance.WithThresholds(balance.Thresholds{
		NominalCapacityHours: cfg.Balance.NominalCapacityHours,
		OverloadHours:        cfg.Balance.OverloadHours,
		MinSkillCoverage:     cfg.Balance.MinSkillCoverage,
	}))

	var metricsCache service.MetricsCache
	if !cfg.Cache.Disabled {
		metricsCache = cache.NewBalanceCache(cfg.Cache.Size, cfg.Cache.TTL)
		log.Info("balance cache enabled", slog.Int("size", cfg.Cache.Size), slog.Duration("ttl", cfg.Cache.TTL))
	}

	repo := postgres.NewSprintRepository(db.DB(), log)
	balanceService := service.NewBalanceService(log, repo, analyzer, metricsCache)

	hub := ws.NewHub(log)
	defer hub.Close()

	srv := myhttp.NewServer(log, balanceService, db, hub, cfg.WebSocket)
	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)

	go startServer(log, httpServer, errChan)

	select {
	case err, ok := <-errChan:
		if ok {
			return fmt.Errorf("http server error: %w", err)
		}

		return nil
	case <-ctx.Done():
		log.Info("stopping server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down http server: %w", err)
	}

	log.Info("server stopped")

	return nil
}

func startServer(log *slog.Logger, httpServer *http.Server, errChan chan error) {
	defer close(errChan)

	log.Info("service started", slog.String("addr", httpServer.Addr))

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errChan <- fmt.Errorf("error listening and serving: %w", err)
	}
}

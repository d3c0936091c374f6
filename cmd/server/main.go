package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"warungpos/backend/internal/analytics"
	"warungpos/backend/internal/cache"
	"warungpos/backend/internal/config"
	"warungpos/backend/internal/httpapi"
	"warungpos/backend/internal/logger"
	"warungpos/backend/internal/service"
	"warungpos/backend/internal/store"
	"warungpos/backend/internal/store/jsonfile"
	"warungpos/backend/internal/store/memory"
	pgstore "warungpos/backend/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := validateConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	closers := make([]func() error, 0, 2)
	defer func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				log.Warn("close failed", zap.Error(err))
			}
		}
	}()

	var repo store.Repository
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("postgres unavailable: %w", err)
		}
		repo = pg
		closers = append(closers, pg.Close)
	case config.DriverMemory:
		repo = memory.NewSeeded()
	default:
		files, err := jsonfile.New(cfg.DataDir)
		if err != nil {
			return err
		}
		repo = files
	}
	log.Info("repository ready", zap.String("driver", cfg.StoreDriver))

	cacheStore := cache.AnalyticsCache(cache.NoopAnalyticsCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisAnalyticsCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn("redis unavailable, analytics cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			_ = redisCache.Close()
		} else {
			cacheStore = redisCache
			closers = append(closers, redisCache.Close)
			log.Info("analytics cache: redis", zap.String("addr", cfg.RedisAddr))
		}
	}

	// validateConfig already accepted both of these.
	pricing, _ := service.ParsePricingPolicy(cfg.PricingPolicy)
	exportLoc, _ := time.LoadLocation(cfg.ExportTimezone)

	engine := analytics.NewEngine(cacheStore, cfg.AnalyticsCacheTTL(), log.Named("analytics"))
	svc := service.New(repo, engine, pricing, log.Named("service"))
	api := httpapi.New(svc, log.Named("http"), cfg.AllowedOrigin, exportLoc)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("POS backend listening", zap.String("addr", cfg.Address()), zap.String("pricing", string(pricing)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case <-sig:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown error", zap.Error(err))
	}

	log.Info("server stopped")
	return nil
}

func validateConfig(cfg config.Config) error {
	switch cfg.StoreDriver {
	case config.DriverFile:
		if cfg.DataDir == "" {
			return errors.New("DATA_DIR must be set for the file driver")
		}
	case config.DriverMemory:
	case config.DriverPostgres:
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL must be set for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if _, err := service.ParsePricingPolicy(cfg.PricingPolicy); err != nil {
		return fmt.Errorf("PRICING_POLICY: %w", err)
	}
	if _, err := time.LoadLocation(cfg.ExportTimezone); err != nil {
		return fmt.Errorf("EXPORT_TIMEZONE: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"customer-accounts/internal/config"
	"customer-accounts/internal/credential"
	"customer-accounts/internal/db"
	"customer-accounts/internal/httpserver"
	"customer-accounts/internal/logger"
	"customer-accounts/internal/migrate"
	addressrepo "customer-accounts/internal/repository/address"
	customerrepo "customer-accounts/internal/repository/customer"
	"customer-accounts/internal/repository/memory"
	addresssvc "customer-accounts/internal/service/address"
	customersvc "customer-accounts/internal/service/customer"
	"go.uber.org/zap"
)

type storage struct {
	customers customerrepo.Repository
	addresses addressrepo.Repository
	pinger    httpserver.Pinger
	close     func()
}

func openStorage(ctx context.Context, cfg config.Config, log *zap.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		store := memory.New()
		return &storage{
			customers: store.Customers(),
			addresses: store.Addresses(),
			pinger:    store,
			close:     func() {},
		}, nil
	case config.DriverPostgres:
		pool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			return nil, fmt.Errorf("connect to db: %w", err)
		}
		if err := migrate.Apply(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		return &storage{
			customers: customerrepo.NewPostgres(pool, log),
			addresses: addressrepo.NewPostgres(pool, log),
			pinger:    pool,
			close:     pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func main() {
	cfg := config.Load()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}).Named("api")
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("open storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer store.close()

	srv, err := httpserver.New(httpserver.Options{
		Addr:               cfg.HTTPAddr,
		ActorHeader:        cfg.ActorHeader,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, log, httpserver.Deps{
		CustomerSvc: customersvc.New(store.customers, credential.New(cfg.BcryptCost), log),
		AddressSvc:  addresssvc.New(store.addresses, log),
		Store:       store.pinger,
	})
	if err != nil {
		log.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting http server", zap.String("addr", cfg.HTTPAddr), zap.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	} else {
		log.Info("server stopped")
	}
}

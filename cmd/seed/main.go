package main

import (
	"context"

	"customer-accounts/internal/config"
	"customer-accounts/internal/credential"
	"customer-accounts/internal/db"
	"customer-accounts/internal/logger"
	"customer-accounts/internal/migrate"
	customerrepo "customer-accounts/internal/repository/customer"
	"customer-accounts/internal/seed"
	customersvc "customer-accounts/internal/service/customer"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}).Named("seed")
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		log.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		log.Fatal("apply migrations", zap.Error(err))
	}

	svc := customersvc.New(customerrepo.NewPostgres(pool, log), credential.New(cfg.BcryptCost), log)
	if err := seed.Apply(ctx, svc, log); err != nil {
		log.Fatal("seed apply", zap.Error(err))
	}

	log.Info("seed applied")
}

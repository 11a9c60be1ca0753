package main

import (
	"context"
	"flag"
	"os"
	"time"

	"customer-accounts/internal/config"
	"customer-accounts/internal/credential"
	"customer-accounts/internal/db"
	"customer-accounts/internal/importer"
	"customer-accounts/internal/logger"
	"customer-accounts/internal/migrate"
	customerrepo "customer-accounts/internal/repository/customer"
	customersvc "customer-accounts/internal/service/customer"
	"go.uber.org/zap"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to customer CSV export")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}).Named("importer")
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

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal("open file", zap.String("file", filePath), zap.Error(err))
	}
	defer f.Close()

	svc := customersvc.New(customerrepo.NewPostgres(pool, log), credential.New(cfg.BcryptCost), log)
	imp := importer.NewCSVImporter(f, svc, log)

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		log.Fatal("import failed", zap.Int("imported", res.Imported), zap.Int("skipped", res.Skipped), zap.Error(err))
	}

	log.Info("import finished",
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
		zap.Duration("took", time.Since(start).Truncate(time.Millisecond)),
	)
}

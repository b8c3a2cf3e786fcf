package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"totem-kiosk/internal/config"
	"totem-kiosk/internal/db"
	"totem-kiosk/internal/migrate"
	"totem-kiosk/internal/observability"
)

func main() {
	var direction string
	flag.StringVar(&direction, "direction", "up", "up applies pending migrations, down rolls back one, version prints the current version")
	flag.Parse()

	cfg := config.FromEnv()
	baseLogger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("migrate")

	if cfg.DB.DSN == "" {
		logger.Fatal("DB_DSN is required")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DB, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	switch direction {
	case "up":
		if err := migrate.Apply(ctx, pool); err != nil {
			logger.Fatal("apply migrations", zap.Error(err))
		}
		logger.Info("migrations applied")
	case "down":
		if err := migrate.Rollback(ctx, pool); err != nil {
			logger.Fatal("roll back migration", zap.Error(err))
		}
		logger.Info("rolled back one migration")
	case "version":
		version, dirty, err := migrate.Version(ctx, pool)
		if err != nil {
			logger.Fatal("read migration version", zap.Error(err))
		}
		logger.Info("migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	default:
		flag.Usage()
		os.Exit(2)
	}
}

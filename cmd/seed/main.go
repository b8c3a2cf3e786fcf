package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"totem-kiosk/internal/config"
	"totem-kiosk/internal/db"
	"totem-kiosk/internal/gateway/fake"
	"totem-kiosk/internal/migrate"
	"totem-kiosk/internal/observability"
	"totem-kiosk/internal/repository/kv"
	orderrepo "totem-kiosk/internal/repository/order"
	"totem-kiosk/internal/seed"
)

func main() {
	var withOrders bool
	flag.BoolVar(&withOrders, "orders", false, "also append a demo order history built from the fake gateway menu")
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
	logger := baseLogger.Named("seed")

	if cfg.DB.DSN == "" {
		logger.Fatal("DB_DSN is required")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DB, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	wrote, err := seed.StoreConfig(ctx, kv.NewPostgres(pool), logger)
	if err != nil {
		logger.Fatal("seed store config", zap.Error(err))
	}
	logger.Info("store config seeded", zap.Bool("written", wrote))

	if withOrders {
		menu := fake.SeedMenu()
		if cfg.Menu.CSVPath != "" {
			gw, err := fake.FromCSV(ctx, cfg.Menu.CSVPath, logger)
			if err != nil {
				logger.Fatal("load menu csv", zap.Error(err))
			}
			if menu, err = gw.GetMenu(ctx); err != nil {
				logger.Fatal("read menu", zap.Error(err))
			}
		}
		n, err := seed.Orders(ctx, orderrepo.NewPostgres(pool), menu, time.Now())
		if err != nil {
			logger.Fatal("seed orders", zap.Error(err))
		}
		logger.Info("demo orders seeded", zap.Int("count", n))
	}
}

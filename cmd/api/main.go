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

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"totem-kiosk/internal/config"
	"totem-kiosk/internal/db"
	"totem-kiosk/internal/events"
	"totem-kiosk/internal/gateway/provider"
	"totem-kiosk/internal/httpserver"
	"totem-kiosk/internal/migrate"
	"totem-kiosk/internal/observability"
	"totem-kiosk/internal/repository/kv"
	orderrepo "totem-kiosk/internal/repository/order"
	"totem-kiosk/internal/service/checkout"
	"totem-kiosk/internal/service/menu"
	"totem-kiosk/internal/service/session"
	"totem-kiosk/internal/service/storeconfig"
	"totem-kiosk/internal/service/webhook"
)

const sessionSweepInterval = time.Minute

func main() {
	cfg := config.FromEnv()

	baseLogger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("api")

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		dbpool  *pgxpool.Pool
		history orderrepo.Repository
		kvRepo  kv.Repository
	)
	if cfg.DB.DSN != "" {
		dbpool, err = db.Connect(ctx, cfg.DB, logger)
		if err != nil {
			logger.Fatal("connect to db", zap.Error(err))
		}
		defer dbpool.Close()
		if err := migrate.Apply(ctx, dbpool); err != nil {
			logger.Fatal("apply migrations", zap.Error(err))
		}
		history = orderrepo.NewPostgres(dbpool)
		kvRepo = kv.NewPostgres(dbpool)
		logger.Info("storage ready", zap.String("backend", "postgres"))
	} else {
		history = orderrepo.NewMemory()
		kvRepo = kv.NewMemory()
		logger.Warn("DB_DSN not set; order history and store config are kept in memory")
	}

	var publisher events.Publisher = events.LogPublisher{Logger: logger.Named("events")}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				logger.Warn("close kafka writer", zap.Error(err))
			}
		}()
		publisher = kafkaPublisher
		logger.Info("publishing events to kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	gw, err := provider.New(ctx, cfg.Gateway, cfg.Menu.CSVPath, logger)
	if err != nil {
		logger.Fatal("init gateway", zap.Error(err))
	}

	menuService := menu.New(gw, cfg.Menu.CacheTTL, logger)
	configService := storeconfig.New(kvRepo, logger)
	dispatcher := checkout.New(gw, history, publisher, logger)

	store := session.NewStore(cfg.Session.IdleTTL, session.AdminGate{
		Taps:   cfg.Session.AdminTapCount,
		Window: cfg.Session.AdminTapWindow,
	})
	go store.Run(ctx, sessionSweepInterval)
	sessionService := session.NewService(store, menuService, dispatcher, configService, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Sessions: sessionService,
		Menu:     menuService,
		Config:   configService,
		Orders:   history,
		Webhooks: webhook.New(publisher, logger),
	}, cfg.CORSOrigins)
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr), zap.String("gateway", cfg.Gateway.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	storefront "gofalre.io/storefront"
	"gofalre.io/storefront/account"
	"gofalre.io/storefront/catalog"
	"gofalre.io/storefront/config"
	"gofalre.io/storefront/driver"
	"gofalre.io/storefront/event"
	"gofalre.io/storefront/httpapi"
	"gofalre.io/storefront/storage"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	db, err := driver.ConnectSQL(cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer db.Pool.Close()

	redisClient, err := driver.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Cart and session records live until explicitly removed; only the
	// product cache expires on its own.
	records := storage.NewRedisAdapter(redisClient, 0)
	productCache := storage.NewRedisAdapter(redisClient, cfg.ProductCacheTTL)

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn("Failed to connect to NATS, events disabled", zap.Error(err))
		} else {
			defer natsConn.Close()
		}
	}

	svc := storefront.NewService(
		catalog.NewRepository(db.Pool, productCache, logger),
		account.NewRepository(db.Pool, logger),
		event.NewRepository(db.Pool, logger),
		records,
		driver.NewTransactionManager(db.Pool, logger),
		natsConn,
		cfg.WorkerCount,
		logger,
	)
	defer svc.Close()

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.NewRouter(httpapi.NewApp(svc, logger), logger),
	}

	go func() {
		logger.Info("Storefront listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

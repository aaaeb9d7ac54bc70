package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"chefconnect/internal/config"
	"chefconnect/internal/handler"
	"chefconnect/internal/infra/cache"
	"chefconnect/internal/infra/db"
	infraRepo "chefconnect/internal/infra/repository"
	"chefconnect/internal/metrics"
	"chefconnect/internal/realtime"
	"chefconnect/internal/repository"
	"chefconnect/internal/server"
	"chefconnect/internal/usecase"
	"chefconnect/internal/validator"
	"chefconnect/internal/worker"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now().UTC()
}

// 本番はJSON（ログ収集向け）、それ以外はテキスト
func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	if cfg.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithField("level", cfg.LogLevel).Warn("unknown LOG_LEVEL, using info")
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

func main() {
	//.envはなくてもよい（本番は環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logger := newLogger(cfg)

	//DB接続
	gormDB, err := db.Open(cfg.DSN())
	if err != nil {
		logger.WithError(err).Fatal("connect db")
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.WithError(err).Fatal("migrate db")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	//スイープロック（REDIS_ADDRがあるときだけ）
	var sweepLock repository.SweepLock = repository.NoopSweepLock{}
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis not reachable, sweep lock will retry per tick")
		}
		hostname, _ := os.Hostname()
		sweepLock = cache.NewRedisSweepLock(rdb, hostname+"-"+uuid.NewString())
	}

	m := metrics.New()

	//Repository（GORM実装）生成
	txManager := infraRepo.NewTxManagerGorm(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)

	//プッシュ
	registry := realtime.NewRegistry(m)
	dispatcher := realtime.NewDispatcher(registry, logger, m)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//Usecase生成
	expiryUC := usecase.NewExpiryUsecase(txManager, dispatcher, clock, logger, m)
	orderUC := usecase.NewOrderUsecase(txManager, expiryUC, dispatcher, validator.NewOrderValidator(), idGen, clock, m)
	chefUC := usecase.NewChefOrderUsecase(txManager, dispatcher, clock, m)

	//Handler生成
	srv := server.New(cfg, userRepo, m, logger, server.Handlers{
		Orders:     handler.NewOrderHandler(orderUC),
		ChefOrders: handler.NewChefOrderHandler(orderUC, chefUC),
		WS:         handler.NewWSHandler(cfg.JWTSecret, registry, userRepo, logger),
	})

	//期限切れスイープ
	var wg sync.WaitGroup
	sweeper := worker.NewExpirySweeper(expiryUC, sweepLock, cfg.SweepInterval, logger, m)
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()

	//Server起動
	go func() {
		if err := srv.Start(); err != nil {
			logger.WithError(err).Fatal("http server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("http shutdown")
	}

	cancel()
	wg.Wait()

	if rdb != nil {
		rdb.Close()
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("stopped")
}
